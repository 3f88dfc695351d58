package eureka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/eurekaclient/errors"
	"github.com/kbukum/eurekaclient/httpclient"
)

func TestClient_Register(t *testing.T) {
	tr := &fakeTransport{handle: status(http.StatusNoContent, "")}
	c := newTestClient(tr)

	if err := c.Register(context.Background()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	reqs := tr.requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Method != http.MethodPost || req.Path != "http://localhost:8761/eureka/apps/ORDERS" {
		t.Errorf("unexpected request %s %s", req.Method, req.Path)
	}
	if req.Headers["Content-Type"] != "application/json" || req.Headers["Accept"] != "application/json" {
		t.Errorf("unexpected headers %v", req.Headers)
	}
	var body RegistrationRequest
	if err := json.Unmarshal(req.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Instance.InstanceID != "10.0.0.1:ORDERS:8080" {
		t.Errorf("unexpected instance id %q", body.Instance.InstanceID)
	}
}

func TestClient_Register_OnlyNoContentSucceeds(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		tr := &fakeTransport{handle: status(code, "")}
		err := newTestClient(tr).Register(context.Background())
		if !errors.Is(err, ErrRegisterFailure) {
			t.Errorf("status %d: expected ErrRegisterFailure, got %v", code, err)
			continue
		}
		appErr, ok := apperrors.AsAppError(err)
		if !ok {
			t.Fatalf("status %d: expected AppError", code)
		}
		if appErr.Details["status"] != code || appErr.Details["app"] != "ORDERS" {
			t.Errorf("status %d: unexpected details %v", code, appErr.Details)
		}
	}
}

func TestClient_Register_TransportError(t *testing.T) {
	c := newTestClient(&fakeTransport{handle: unreachable})
	err := c.Register(context.Background())
	if !errors.Is(err, ErrRegisterFailure) {
		t.Fatalf("expected ErrRegisterFailure, got %v", err)
	}
	if !httpclient.IsConnection(err) {
		t.Errorf("expected transport error as cause, got %v", err)
	}
}

func TestClient_DeRegister(t *testing.T) {
	tr := &fakeTransport{handle: status(http.StatusOK, "")}
	if err := newTestClient(tr).DeRegister(context.Background()); err != nil {
		t.Fatalf("DeRegister failed: %v", err)
	}
	req := tr.requests()[0]
	if req.Method != http.MethodDelete || req.Path != "http://localhost:8761/eureka/apps/ORDERS/10.0.0.1:ORDERS:8080" {
		t.Errorf("unexpected request %s %s", req.Method, req.Path)
	}

	for _, handle := range []func(httpclient.Request) (*httpclient.Response, error){
		status(http.StatusNoContent, ""), status(http.StatusNotFound, ""), unreachable,
	} {
		err := newTestClient(&fakeTransport{handle: handle}).DeRegister(context.Background())
		if !errors.Is(err, ErrDeRegisterFailure) {
			t.Errorf("expected ErrDeRegisterFailure, got %v", err)
		}
	}
}

func TestClient_IsRegistered(t *testing.T) {
	tests := []struct {
		name   string
		handle func(httpclient.Request) (*httpclient.Response, error)
		want   bool
	}{
		{"ok", status(http.StatusOK, "{}"), true},
		{"not found", status(http.StatusNotFound, ""), false},
		{"no content", status(http.StatusNoContent, ""), false},
		{"unreachable", unreachable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{handle: tt.handle}
			if got := newTestClient(tr).IsRegistered(context.Background()); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if m := tr.requests()[0].Method; m != http.MethodGet {
				t.Errorf("expected GET, got %s", m)
			}
		})
	}
}

func TestClient_Heartbeat(t *testing.T) {
	tests := []struct {
		name    string
		handle  func(httpclient.Request) (*httpclient.Response, error)
		outcome HeartbeatOutcome
		line    string
	}{
		{"ok", status(http.StatusOK, ""), HeartbeatOK, ""},
		{"rejected", status(http.StatusNotFound, ""), HeartbeatRejected, "Heartbeat failed... (code: 404)"},
		{"unreachable", unreachable, HeartbeatUnreachable, "Heartbeat failed because of connection error... (code: connection)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			tr := &fakeTransport{handle: tt.handle}
			c := newTestClient(tr, WithConsole(&out, true))

			res := c.Heartbeat(context.Background())
			if res.Outcome != tt.outcome {
				t.Errorf("expected outcome %s, got %s", tt.outcome, res.Outcome)
			}
			if req := tr.requests()[0]; req.Method != http.MethodPut {
				t.Errorf("expected PUT, got %s", req.Method)
			}
			if !strings.Contains(out.String(), "Sending heartbeat...") {
				t.Errorf("missing progress line in %q", out.String())
			}
			if tt.line != "" && !strings.Contains(out.String(), tt.line) {
				t.Errorf("expected %q in %q", tt.line, out.String())
			}
			last, ok := c.LastHeartbeat()
			if !ok || last.Outcome != tt.outcome {
				t.Errorf("unexpected last heartbeat %+v (%v)", last, ok)
			}
		})
	}
}

func TestClient_Console(t *testing.T) {
	var out bytes.Buffer
	c := newTestClient(&fakeTransport{handle: status(http.StatusNoContent, "")}, WithConsole(&out, true))
	_ = c.Register(context.Background())

	re := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] Registering\.\.\.\n$`)
	if !re.MatchString(out.String()) {
		t.Errorf("unexpected console output %q", out.String())
	}

	var quiet bytes.Buffer
	c = newTestClient(&fakeTransport{handle: status(http.StatusNoContent, "")}, WithConsole(&quiet, false))
	_ = c.Register(context.Background())
	if quiet.Len() != 0 {
		t.Errorf("expected no output when disabled, got %q", quiet.String())
	}
}

func TestClient_FetchInstances_Cached(t *testing.T) {
	tr := &fakeTransport{handle: status(http.StatusOK, twoInstances)}
	c := newTestClient(tr)
	ctx := context.Background()

	first, err := c.FetchInstances(ctx, "BILLING")
	if err != nil {
		t.Fatalf("FetchInstances failed: %v", err)
	}
	second, err := c.FetchInstances(ctx, "BILLING")
	if err != nil {
		t.Fatalf("FetchInstances failed: %v", err)
	}
	if len(tr.requests()) != 1 {
		t.Errorf("expected 1 registry call, got %d", len(tr.requests()))
	}
	if len(first) != 2 || len(second) != 2 || first[0].InstanceID != second[0].InstanceID {
		t.Errorf("expected identical lists, got %v and %v", first, second)
	}
	if p := tr.requests()[0].Path; p != "http://localhost:8761/eureka/apps/BILLING" {
		t.Errorf("unexpected path %q", p)
	}
}

func TestClient_FetchInstances_CaseSensitiveKeys(t *testing.T) {
	tr := &fakeTransport{handle: status(http.StatusOK, twoInstances)}
	c := newTestClient(tr)
	_, _ = c.FetchInstances(context.Background(), "BILLING")
	_, _ = c.FetchInstances(context.Background(), "billing")
	if len(tr.requests()) != 2 {
		t.Errorf("expected 2 registry calls, got %d", len(tr.requests()))
	}
}

func TestClient_FetchInstances_InvalidateAndClear(t *testing.T) {
	tr := &fakeTransport{handle: status(http.StatusOK, twoInstances)}
	c := newTestClient(tr)
	ctx := context.Background()

	_, _ = c.FetchInstances(ctx, "BILLING")
	c.Invalidate("BILLING")
	_, _ = c.FetchInstances(ctx, "BILLING")
	c.ClearCache()
	_, _ = c.FetchInstances(ctx, "BILLING")

	if len(tr.requests()) != 3 {
		t.Errorf("expected 3 registry calls, got %d", len(tr.requests()))
	}
}

func TestClient_FetchInstances_ProviderFallback(t *testing.T) {
	var providerCalls atomic.Int32
	fallback := instancesNamed("static-1")
	provider := ProviderFunc(func(_ context.Context, app string) ([]Instance, error) {
		providerCalls.Add(1)
		if app != "BILLING" {
			t.Errorf("unexpected app %q", app)
		}
		return fallback, nil
	})

	tests := []struct {
		name   string
		handle func(httpclient.Request) (*httpclient.Response, error)
	}{
		{"not found", status(http.StatusNotFound, "")},
		{"empty application", status(http.StatusOK, `{"application":{"name":"BILLING","instance":[]}}`)},
		{"unreachable", unreachable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providerCalls.Store(0)
			tr := &fakeTransport{handle: tt.handle}
			c := newTestClient(tr)
			c.Config().SetInstanceProvider(provider)

			for i := 0; i < 2; i++ {
				got, err := c.FetchInstances(context.Background(), "BILLING")
				if err != nil {
					t.Fatalf("FetchInstances failed: %v", err)
				}
				if len(got) != 1 || got[0].InstanceID != "static-1" {
					t.Errorf("expected provider result, got %v", got)
				}
			}
			if len(tr.requests()) != 2 || providerCalls.Load() != 2 {
				t.Errorf("provider results must not be cached: %d registry calls, %d provider calls",
					len(tr.requests()), providerCalls.Load())
			}
		})
	}
}

func TestClient_FetchInstances_NoProvider(t *testing.T) {
	tests := []struct {
		name    string
		handle  func(httpclient.Request) (*httpclient.Response, error)
		message string
	}{
		{"server error", status(http.StatusInternalServerError, ""), "could not get instances from eureka"},
		{"empty application", status(http.StatusOK, `{"application":{}}`), "no instance found for BILLING"},
		{"unreachable", unreachable, "could not get instances for BILLING from eureka"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(&fakeTransport{handle: tt.handle})
			_, err := c.FetchInstances(context.Background(), "BILLING")
			if !errors.Is(err, ErrInstanceFailure) {
				t.Fatalf("expected ErrInstanceFailure, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected %q in %q", tt.message, err.Error())
			}
		})
	}
}

func TestClient_FetchInstances_ProviderError(t *testing.T) {
	boom := errors.New("redis down")
	c := newTestClient(&fakeTransport{handle: unreachable})
	c.Config().SetInstanceProvider(ProviderFunc(func(context.Context, string) ([]Instance, error) {
		return nil, boom
	}))

	_, err := c.FetchInstances(context.Background(), "BILLING")
	if !errors.Is(err, ErrInstanceFailure) || !errors.Is(err, boom) {
		t.Errorf("expected instance failure wrapping provider error, got %v", err)
	}
}

func TestClient_FetchInstances_ConcurrentSingleCall(t *testing.T) {
	release := make(chan struct{})
	tr := &fakeTransport{handle: func(httpclient.Request) (*httpclient.Response, error) {
		<-release
		return &httpclient.Response{StatusCode: http.StatusOK, Body: []byte(twoInstances)}, nil
	}}
	c := newTestClient(tr)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := c.FetchInstances(context.Background(), "BILLING")
			if err == nil && len(list) != 2 {
				err = errors.New("wrong instance count")
			}
			errs <- err
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("FetchInstances failed: %v", err)
		}
	}
	if n := len(tr.requests()); n != 1 {
		t.Errorf("expected 1 registry call, got %d", n)
	}
}

// blockingTransport holds every request until release is closed or the
// request's context ends, like a real HTTP client would.
type blockingTransport struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (b *blockingTransport) Do(ctx context.Context, _ httpclient.Request) (*httpclient.Response, error) {
	b.calls.Add(1)
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return &httpclient.Response{StatusCode: http.StatusOK, Body: []byte(twoInstances)}, nil
	case <-ctx.Done():
		return nil, httpclient.NewConnectionError(ctx.Err())
	}
}

func TestClient_FetchInstances_FirstCallerCancelDoesNotFailOthers(t *testing.T) {
	tr := &blockingTransport{started: make(chan struct{}), release: make(chan struct{})}
	c := NewClient(testConfig(), tr, WithConsole(nil, false))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.FetchInstances(firstCtx, "BILLING")
		firstErr <- err
	}()
	<-tr.started

	type result struct {
		list []Instance
		err  error
	}
	second := make(chan result, 1)
	go func() {
		list, err := c.FetchInstances(context.Background(), "BILLING")
		second <- result{list, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("expected the canceled caller to get context.Canceled, got %v", err)
	}

	close(tr.release)
	got := <-second
	if got.err != nil {
		t.Fatalf("caller with a live context failed: %v", got.err)
	}
	if len(got.list) != 2 {
		t.Errorf("expected 2 instances, got %d", len(got.list))
	}
	if n := tr.calls.Load(); n != 1 {
		t.Errorf("expected 1 registry call, got %d", n)
	}
	if cached := c.cache.get("BILLING"); len(cached) != 2 {
		t.Errorf("expected the shared result to be cached, got %d", len(cached))
	}
}

func TestClient_NilResponseIsTransportFailure(t *testing.T) {
	tr := &fakeTransport{handle: func(httpclient.Request) (*httpclient.Response, error) { return nil, nil }}
	c := newTestClient(tr)
	ctx := context.Background()

	res := c.Heartbeat(ctx)
	if res.Outcome != HeartbeatUnreachable || res.TransportCode != httpclient.ErrCodeConnection {
		t.Errorf("unexpected heartbeat result %+v", res)
	}
	if err := c.Register(ctx); !errors.Is(err, ErrRegisterFailure) || !errors.Is(err, httpclient.ErrNoResponse) {
		t.Errorf("expected register failure caused by ErrNoResponse, got %v", err)
	}
	if err := c.DeRegister(ctx); !errors.Is(err, ErrDeRegisterFailure) {
		t.Errorf("expected de-register failure, got %v", err)
	}
	if c.IsRegistered(ctx) {
		t.Error("IsRegistered should be false without a response")
	}
	if _, err := c.FetchInstances(ctx, "BILLING"); !errors.Is(err, ErrInstanceFailure) {
		t.Errorf("expected instance failure, got %v", err)
	}
}

func TestClient_FetchInstance_UsesStrategy(t *testing.T) {
	c := newTestClient(&fakeTransport{handle: status(http.StatusOK, twoInstances)})
	c.Config().SetDiscoveryStrategy(StrategyFunc(func(list []Instance) (Instance, error) {
		return list[len(list)-1], nil
	}))

	inst, err := c.FetchInstance(context.Background(), "BILLING")
	if err != nil {
		t.Fatalf("FetchInstance failed: %v", err)
	}
	if inst.HostName != "b2" {
		t.Errorf("expected b2, got %q", inst.HostName)
	}
}

func TestClient_FetchInstance_EmptyProviderResult(t *testing.T) {
	c := newTestClient(&fakeTransport{handle: status(http.StatusNotFound, "")})
	c.Config().SetInstanceProvider(NewStaticProvider(nil))

	_, err := c.FetchInstance(context.Background(), "BILLING")
	if !errors.Is(err, ErrNoInstances) {
		t.Errorf("expected ErrNoInstances, got %v", err)
	}
}

func TestClient_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var beats atomic.Int32
	tr := &fakeTransport{handle: func(req httpclient.Request) (*httpclient.Response, error) {
		if req.Method == http.MethodPost {
			return &httpclient.Response{StatusCode: http.StatusNoContent}, nil
		}
		if beats.Add(1) == 3 {
			cancel()
		}
		return &httpclient.Response{StatusCode: http.StatusOK}, nil
	}}
	c := newTestClient(tr)
	c.after = immediate

	err := c.Start(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tr.count(http.MethodPost) != 1 {
		t.Errorf("expected 1 register call, got %d", tr.count(http.MethodPost))
	}
	if tr.count(http.MethodDelete) != 0 {
		t.Error("Start must not de-register")
	}
	if c.beats.Load() != 3 {
		t.Errorf("expected 3 heartbeats counted, got %d", c.beats.Load())
	}
}

func TestClient_Start_UsesInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waited atomic.Int64
	c := newTestClient(&fakeTransport{handle: func(req httpclient.Request) (*httpclient.Response, error) {
		if req.Method == http.MethodPost {
			return &httpclient.Response{StatusCode: http.StatusNoContent}, nil
		}
		return &httpclient.Response{StatusCode: http.StatusOK}, nil
	}})
	c.Config().SetHeartbeatInterval(7)
	c.after = func(d time.Duration) <-chan time.Time {
		waited.Store(int64(d))
		cancel()
		return nil
	}

	if err := c.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if time.Duration(waited.Load()) != 7*time.Second {
		t.Errorf("expected 7s wait, got %v", time.Duration(waited.Load()))
	}
}

func TestClient_Start_RegisterFailure(t *testing.T) {
	tr := &fakeTransport{handle: status(http.StatusInternalServerError, "")}
	c := newTestClient(tr)
	c.after = immediate

	err := c.Start(context.Background())
	if !errors.Is(err, ErrRegisterFailure) {
		t.Fatalf("expected ErrRegisterFailure, got %v", err)
	}
	if tr.count(http.MethodPut) != 0 {
		t.Error("expected no heartbeats after failed registration")
	}
}

func TestClient_Start_HeartbeatFailuresDoNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var beats atomic.Int32
	c := newTestClient(&fakeTransport{handle: func(req httpclient.Request) (*httpclient.Response, error) {
		if req.Method == http.MethodPost {
			return &httpclient.Response{StatusCode: http.StatusNoContent}, nil
		}
		if beats.Add(1) == 4 {
			cancel()
		}
		return unreachable(req)
	}})
	c.after = immediate

	if err := c.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if beats.Load() != 4 {
		t.Errorf("expected 4 heartbeats, got %d", beats.Load())
	}
}

type recordingSnapshotter struct {
	mu    sync.Mutex
	saved map[string][]Instance
}

func (r *recordingSnapshotter) Store(_ context.Context, app string, instances []Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved == nil {
		r.saved = make(map[string][]Instance)
	}
	r.saved[app] = instances
	return nil
}

// removableSnapshotter also implements SnapshotRemover.
type removableSnapshotter struct {
	recordingSnapshotter
	removeErr error
}

func (r *removableSnapshotter) Remove(_ context.Context, app string) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saved, app)
	return nil
}

func TestClient_Forget(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTransport{handle: status(http.StatusOK, twoInstances)}
	snap := &removableSnapshotter{}
	c := newTestClient(tr, WithSnapshotter(snap))

	_, _ = c.FetchInstances(ctx, "BILLING")
	if err := c.Forget(ctx, "BILLING"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}
	if _, ok := snap.saved["BILLING"]; ok {
		t.Error("expected snapshot to be removed")
	}
	_, _ = c.FetchInstances(ctx, "BILLING")
	if len(tr.requests()) != 2 {
		t.Errorf("expected a refetch after Forget, got %d calls", len(tr.requests()))
	}

	snap.removeErr = errors.New("store down")
	if err := c.Forget(ctx, "BILLING"); err == nil {
		t.Error("expected the remove error")
	}
	if c.cache.get("BILLING") != nil {
		t.Error("cache entry must be dropped even when the snapshot remove fails")
	}

	// A Snapshotter without Remove only loses the cache entry.
	plain := newTestClient(tr, WithSnapshotter(&recordingSnapshotter{}))
	if err := plain.Forget(ctx, "BILLING"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestClient_FetchInstances_Snapshot(t *testing.T) {
	snap := &recordingSnapshotter{}
	c := newTestClient(&fakeTransport{handle: status(http.StatusOK, twoInstances)}, WithSnapshotter(snap))

	if _, err := c.FetchInstances(context.Background(), "BILLING"); err != nil {
		t.Fatalf("FetchInstances failed: %v", err)
	}
	if len(snap.saved["BILLING"]) != 2 {
		t.Errorf("expected registry result to be snapshotted, got %v", snap.saved)
	}

	snap2 := &recordingSnapshotter{}
	c = newTestClient(&fakeTransport{handle: status(http.StatusNotFound, "")}, WithSnapshotter(snap2))
	c.Config().SetInstanceProvider(NewStaticProvider([]StaticEndpoint{{App: "BILLING", IP: "1.1.1.1", Port: 1}}))
	_, _ = c.FetchInstances(context.Background(), "BILLING")
	if len(snap2.saved) != 0 {
		t.Errorf("fallback results must not be snapshotted, got %v", snap2.saved)
	}
}
