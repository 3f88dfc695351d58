package eureka

import (
	"context"

	"github.com/kbukum/eurekaclient/httpclient"
)

// Transport sends a request to the registry. A returned error means no
// response was received; any status code is returned as a Response.
// *httpclient.Client satisfies Transport.
type Transport interface {
	Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
}

var _ Transport = (*httpclient.Client)(nil)

// rejectionSnippet bounds how much of a rejecting registry's body is logged.
const rejectionSnippet = 256
