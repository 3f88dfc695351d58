package httpclient

import "unicode/utf8"

// Request is one outbound call. Path is joined to Config.BaseURL unless it
// is already an absolute http or https URL.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    []byte
}

// JSON returns a request that sends and accepts application/json. A nil
// body sends nothing.
func JSON(method, path string, body []byte) Request {
	return Request{
		Method: method,
		Path:   path,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: body,
	}
}

// Response is a fully read reply; the underlying body is already closed.
// Headers keep the first value of each canonical header name.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Snippet returns at most n bytes of the body, cut on a rune boundary, for
// use in log lines.
func (r *Response) Snippet(n int) string {
	if len(r.Body) <= n {
		return string(r.Body)
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(r.Body[cut]) {
		cut--
	}
	return string(r.Body[:cut]) + "..."
}
