package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func doCheck(t *testing.T, h *Handler) (int, Response) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid healthz response: %v", err)
	}
	return rec.Code, resp
}

func TestHandler_NoCheckersIsHealthy(t *testing.T) {
	code, resp := doCheck(t, NewHandler("v1.0.0"))

	if code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", code)
	}
	if resp.Status != StatusHealthy {
		t.Fatalf("status = %q, want healthy", resp.Status)
	}
	if resp.Version != "v1.0.0" {
		t.Fatalf("version = %q", resp.Version)
	}
}

func TestHandler_UnhealthyCheckerDegradesOverallStatus(t *testing.T) {
	h := NewHandler("v1.0.0")
	h.RegisterChecker("storage", NewSimpleChecker("storage", func() error {
		return errors.New("connection refused")
	}))
	h.RegisterChecker("gateway", NewSimpleChecker("gateway", func() error {
		return nil
	}))

	code, resp := doCheck(t, h)

	if code != http.StatusServiceUnavailable {
		t.Fatalf("status code = %d, want 503", code)
	}
	if resp.Status != StatusUnhealthy {
		t.Fatalf("status = %q, want unhealthy", resp.Status)
	}
	if resp.Checks["storage"].Status != StatusUnhealthy {
		t.Error("storage check must be unhealthy")
	}
	if resp.Checks["storage"].Message != "connection refused" {
		t.Errorf("storage message = %q", resp.Checks["storage"].Message)
	}
	if resp.Checks["gateway"].Status != StatusHealthy {
		t.Error("gateway check must stay healthy")
	}
}

func TestSimpleChecker(t *testing.T) {
	ok := NewSimpleChecker("ok", func() error { return nil }).Check()
	if ok.Status != StatusHealthy || ok.Message != "" {
		t.Fatalf("check = %+v, want healthy without message", ok)
	}

	failed := NewSimpleChecker("failed", func() error { return errors.New("boom") }).Check()
	if failed.Status != StatusUnhealthy || failed.Message != "boom" {
		t.Fatalf("check = %+v, want unhealthy with message", failed)
	}
}
