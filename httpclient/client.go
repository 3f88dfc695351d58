package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// Client sends Requests to one registry. It is safe for concurrent use.
type Client struct {
	hc  *http.Client
	cfg Config
}

// New validates cfg and builds a client on a clone of the default transport.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	rt := http.DefaultTransport.(*http.Transport).Clone()
	if tlsCfg != nil {
		rt.TLSClientConfig = tlsCfg
	}
	return &Client{hc: &http.Client{Transport: rt, Timeout: cfg.Timeout}, cfg: cfg}, nil
}

// Do sends req and reads the whole body. Any status code is a response, not
// an error; errors mean no response was obtained and carry an ErrorCode.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		var ne net.Error
		if ctx.Err() != nil || (errors.As(err, &ne) && ne.Timeout()) {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}
	out := &Response{StatusCode: resp.StatusCode, Body: body, Headers: make(map[string]string, len(resp.Header))}
	for k := range resp.Header {
		out.Headers[k] = resp.Header.Get(k)
	}
	return out, nil
}

func (c *Client) target(path string) string {
	if c.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.target(req.Path), body)
	if err != nil {
		return nil, NewValidationError("create request: " + err.Error())
	}
	for _, headers := range []map[string]string{c.cfg.Headers, req.Headers} {
		for k, v := range headers {
			httpReq.Header.Set(k, v)
		}
	}
	if c.cfg.RequestID && httpReq.Header.Get(requestIDHeader) == "" {
		httpReq.Header.Set(requestIDHeader, uuid.NewString())
	}
	if c.cfg.Auth != nil {
		c.cfg.Auth.Authenticate(httpReq)
	}
	return httpReq, nil
}
