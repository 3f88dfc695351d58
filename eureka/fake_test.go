package eureka

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/kbukum/eurekaclient/httpclient"
)

// fakeTransport records requests and answers them with handle.
type fakeTransport struct {
	mu     sync.Mutex
	calls  []httpclient.Request
	handle func(req httpclient.Request) (*httpclient.Response, error)
}

func (f *fakeTransport) Do(_ context.Context, req httpclient.Request) (*httpclient.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	handle := f.handle
	f.mu.Unlock()
	if handle == nil {
		return &httpclient.Response{StatusCode: 200}, nil
	}
	return handle(req)
}

func (f *fakeTransport) requests() []httpclient.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]httpclient.Request, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeTransport) count(method string) int {
	n := 0
	for _, r := range f.requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

func status(code int, body string) func(httpclient.Request) (*httpclient.Response, error) {
	return func(httpclient.Request) (*httpclient.Response, error) {
		return &httpclient.Response{StatusCode: code, Body: []byte(body)}, nil
	}
}

func unreachable(httpclient.Request) (*httpclient.Response, error) {
	return nil, httpclient.NewConnectionError(io.ErrUnexpectedEOF)
}

func testConfig() *InstanceConfig {
	return NewInstanceConfig(Options{
		AppName: "ORDERS",
		IP:      "10.0.0.1",
		Port:    NewPort(8080, true),
	})
}

func newTestClient(tr Transport, opts ...Option) *Client {
	opts = append([]Option{WithConsole(io.Discard, false)}, opts...)
	return NewClient(testConfig(), tr, opts...)
}

// immediate makes the heartbeat loop fire without waiting.
func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// never blocks the heartbeat loop until the context ends.
func never(time.Duration) <-chan time.Time {
	return nil
}

const twoInstances = `{"application":{"name":"BILLING","instance":[
	{"instanceId":"b1:BILLING:9000","hostName":"b1","app":"BILLING","ipAddr":"10.0.1.1","status":"UP","port":{"$":9000,"@enabled":"true"}},
	{"instanceId":"b2:BILLING:9000","hostName":"b2","app":"BILLING","ipAddr":"10.0.1.2","status":"UP","port":{"$":9000,"@enabled":"true"}}
]}}`
