// Package httpclient is the HTTP transport used to talk to the Eureka registry.
//
// Unlike a general-purpose REST client it does not turn non-2xx responses
// into errors: the registry protocol gives meaning to specific status codes
// (204 on register, 200 on renew), so the status is always handed back to
// the caller. Only failures to obtain a response at all are errors, typed
// with an ErrorCode (timeout, connection, validation).
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "http://localhost:8761",
//	    Timeout: 10 * time.Second,
//	    Auth:    httpclient.BasicAuth("eureka", "secret"),
//	})
//
//	resp, err := client.Do(ctx, httpclient.Request{
//	    Method: http.MethodGet,
//	    Path:   "/eureka/apps/billing",
//	})
package httpclient
