package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/extractd/component"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func get(h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	e := gin.New()
	e.GET("/", h)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []component.HealthStatus
		wantCode   int
		wantStatus string
	}{
		{"no components", nil, http.StatusOK, "healthy"},
		{"all healthy", []component.HealthStatus{component.StatusHealthy, component.StatusHealthy}, http.StatusOK, "healthy"},
		{"degraded", []component.HealthStatus{component.StatusDegraded, component.StatusHealthy}, http.StatusOK, "degraded"},
		{"unhealthy wins", []component.HealthStatus{component.StatusDegraded, component.StatusUnhealthy}, http.StatusServiceUnavailable, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := func(context.Context) []component.Health {
				out := make([]component.Health, len(tt.statuses))
				for i, s := range tt.statuses {
					out[i] = component.Health{Name: "c", Status: s}
				}
				return out
			}
			rr, body := get(Health("extractd", checker))
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("expected status %s, got %v", tt.wantStatus, body["status"])
			}
			if body["service"] != "extractd" {
				t.Errorf("expected service extractd, got %v", body["service"])
			}
		})
	}
}

func TestLiveness(t *testing.T) {
	rr, body := get(Liveness("extractd"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["status"] != "alive" {
		t.Errorf("expected alive, got %v", body["status"])
	}
}

func TestInfo(t *testing.T) {
	rr, body := get(Info("extractd"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["version"] == "" || body["version"] == nil {
		t.Error("expected a version")
	}
	if _, ok := body["uptime"]; !ok {
		t.Error("expected uptime")
	}
}
