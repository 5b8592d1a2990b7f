package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/books", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/books", 200, 5*time.Millisecond)
	m.ObserveRequest("POST", "/cart/items", 422, 2*time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "/books", "200")); got != 2 {
		t.Fatalf("expected 2 GET /books requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("POST", "/cart/items", "422")); got != 1 {
		t.Fatalf("expected 1 POST /cart/items request, got %v", got)
	}
}

func TestIncCheckoutNormalizesLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.IncCheckout("partial")
	m.IncCheckout("")

	if got := testutil.ToFloat64(m.checkout.WithLabelValues("partial")); got != 1 {
		t.Fatalf("expected 1 partial checkout, got %v", got)
	}
	if got := testutil.ToFloat64(m.checkout.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty outcome to map to unknown, got %v", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/", 200, time.Millisecond)
	m.IncCheckout("completed")
}
