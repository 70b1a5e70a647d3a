package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/extractd/component"
	apperrors "github.com/kbukum/extractd/errors"
	"github.com/kbukum/extractd/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"port too high", Config{Port: 70000}},
		{"negative read timeout", Config{ReadTimeout: -1}},
		{"negative write timeout", Config{WriteTimeout: -1}},
		{"negative idle timeout", Config{IdleTimeout: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestServerLifecycle(t *testing.T) {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0

	srv := New(cfg, logger.NewNop())
	srv.ApplyDefaults("extractd", func(context.Context) []component.Health {
		return []component.Health{{Name: "x", Status: component.StatusHealthy}}
	})
	comp := NewComponent(srv)

	if h := comp.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Start(context.Background()); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	defer comp.Stop(context.Background())

	if h := comp.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + srv.Addr() + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected request id header from middleware")
	}
}

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  apperrors.ErrorCode
	}{
		{"app error", apperrors.InvalidInput("n", "must be a number"), http.StatusBadRequest, apperrors.ErrCodeInvalidInput},
		{"not found", apperrors.NotFound("run", "current"), http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tt.err)

			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Error.Code != tt.wantErr {
				t.Errorf("expected code %s, got %s", tt.wantErr, body.Error.Code)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	srv := New(Config{}, logger.NewNop())
	srv.RegisterDefaultEndpoints("extractd", nil)
	srv.GinEngine().GET("/active", func(c *gin.Context) {})

	var paths []string
	for _, r := range NewComponent(srv).Routes() {
		paths = append(paths, r.Path)
	}
	want := []string{"/active", "/alive", "/health", "/info"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("route order mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/kbukum/extractd/api.(*Handler).Start-fm", "Handler.Start"},
		{"github.com/kbukum/extractd/server/endpoint.Health.func1", "health"},
		{"main.handler", "handler"},
	}
	for _, tt := range tests {
		if got := formatHandlerName(tt.in); got != tt.want {
			t.Errorf("formatHandlerName(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
