package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/eurekaclient/component"
	apperrors "github.com/kbukum/eurekaclient/errors"
	"github.com/kbukum/eurekaclient/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	s := New(cfg, logger.Nop())
	s.ApplyMiddleware(nil, nil)
	return s
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.ReadTimeout != 15 || cfg.WriteTimeout != 15 || cfg.IdleTimeout != 60 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	bad := Config{Port: 70000}
	err := bad.Validate()
	if err == nil || !strings.Contains(err.Error(), "port") {
		t.Errorf("expected port error, got %v", err)
	}
}

func TestServerStartServeStop(t *testing.T) {
	s := newTestServer(t)
	s.GinEngine().GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	comp := NewComponent(s)
	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}

	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := s.Addr()
	if strings.HasSuffix(addr, ":0") {
		t.Fatalf("expected bound port, got %s", addr)
	}
	if h := comp.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy while serving, got %s", h.Status)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/ping")
	if err != nil {
		t.Fatalf("GET /ping: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "pong" {
		t.Errorf("unexpected response %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected request id from server middleware")
	}

	if err := comp.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy after stop, got %s", h.Status)
	}
}

func TestServerStartBindError(t *testing.T) {
	first := newTestServer(t)
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop(context.Background())

	_, port, _ := strings.Cut(first.Addr(), ":")
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port, _ = strconv.Atoi(port)
	second := New(cfg, logger.Nop())
	if err := second.Start(context.Background()); err == nil {
		second.Stop(context.Background())
		t.Fatal("expected bind error on a used port")
	}
}

func TestComponentRoutesAndDescribe(t *testing.T) {
	s := newTestServer(t)
	noop := func(*gin.Context) {}
	s.GinEngine().GET("/health", noop)
	s.GinEngine().DELETE("/cache/:app", noop)
	s.GinEngine().GET("/apps/:app", noop)
	s.GinEngine().GET("/cache", noop)

	routes := NewComponent(s).Routes()
	var got []string
	for _, r := range routes {
		got = append(got, r.Method+" "+r.Path)
	}
	want := "GET /apps/:app,GET /cache,DELETE /cache/:app,GET /health"
	if strings.Join(got, ",") != want {
		t.Errorf("routes = %v, want %s", got, want)
	}

	d := NewComponent(s).Describe()
	if d.Type != "server" || d.Details != "127.0.0.1:0" {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestHandlerName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"github.com/kbukum/eurekaclient/server/endpoint.Instances.func1", "endpoint.Instances"},
		{"github.com/kbukum/eurekaclient/server.(*Component).Start-fm", "server.Component.Start"},
		{"main.main.func2", "main.main"},
	}
	for _, tc := range tests {
		if got := handlerName(tc.in); got != tc.want {
			t.Errorf("handlerName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/known", func(c *gin.Context) {
		RespondWithError(c, fmt.Errorf("lookup: %w", apperrors.InstanceNotFound("BILLING", "no instance found for BILLING")))
	})
	engine.GET("/plain", func(c *gin.Context) {
		RespondWithError(c, stderrors.New("boom"))
	})

	tests := []struct {
		path string
		code int
		want apperrors.ErrorCode
	}{
		{"/known", http.StatusNotFound, apperrors.ErrCodeInstanceNotFound},
		{"/plain", http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
		req.Header.Set("X-Request-Id", "req-42")
		rr := httptest.NewRecorder()
		engine.ServeHTTP(rr, req)

		var body apperrors.ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: invalid JSON: %v", tc.path, err)
		}
		if rr.Code != tc.code || body.Error.Code != tc.want || body.Error.RequestID != "req-42" {
			t.Errorf("%s: got %d %+v", tc.path, rr.Code, body.Error)
		}
	}
}
