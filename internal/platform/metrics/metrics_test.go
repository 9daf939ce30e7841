package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ehr/journal/internal/platform/store"
)

var _ store.Observer = (*Metrics)(nil)

func TestObserveRequest_CountsByRouteAndStatus(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/patients", http.StatusCreated, 5*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/patients", http.StatusCreated, 5*time.Millisecond)
	m.ObserveRequest(http.MethodPost, "/patients", http.StatusConflict, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/patients", "201")); got != 2 {
		t.Errorf("expected 2 created requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/patients", "409")); got != 1 {
		t.Errorf("expected 1 conflict, got %v", got)
	}
}

func TestObserveRequest_EmptyRoute(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("expected unmatched route to be counted, got %v", got)
	}
}

func TestObserveStoreOp_Result(t *testing.T) {
	m := New()
	m.ObserveStoreOp("patients", store.OpUpdate, time.Millisecond, nil)
	m.ObserveStoreOp("patients", store.OpLoad, time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("patients", "update", "ok")); got != 1 {
		t.Errorf("expected 1 successful update, got %v", got)
	}
	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("patients", "load", "error")); got != 1 {
		t.Errorf("expected 1 failed load, got %v", got)
	}
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.ObserveStoreOp("notes", store.OpSave, time.Millisecond, nil)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	for _, want := range []string{
		`journal_store_operations_total{collection="notes",op="save",result="ok"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected exposition to contain %q", want)
		}
	}
}
