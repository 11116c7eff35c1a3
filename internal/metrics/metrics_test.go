package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsRecordClaim(t *testing.T) {
	m := New("test")
	m.RecordClaim(ClaimResultRecorded)
	m.RecordClaim(ClaimResultDuplicate)
	m.RecordClaim(ClaimResultDuplicate)

	if got := counterValue(t, m.claimsTotal.WithLabelValues(ClaimResultDuplicate)); got != 2 {
		t.Fatalf("duplicate claims want 2 got %v", got)
	}
	if got := counterValue(t, m.claimsTotal.WithLabelValues(ClaimResultRecorded)); got != 1 {
		t.Fatalf("recorded claims want 1 got %v", got)
	}
}

func TestMetricsSettlementAmounts(t *testing.T) {
	m := New("test")
	m.RecordSettlement("settled", 300, 0)
	m.RecordSettlement("settled", 0, 100)
	m.RecordTask("yield:monthly_settlement", errors.New("boom"))

	if got := counterValue(t, m.reserveBanked); got != 300 {
		t.Fatalf("banked want 300 got %v", got)
	}
	if got := counterValue(t, m.reserveReleased); got != 100 {
		t.Fatalf("released want 100 got %v", got)
	}
	if got := counterValue(t, m.tasksProcessed.WithLabelValues("yield:monthly_settlement", "error")); got != 1 {
		t.Fatalf("task error count want 1 got %v", got)
	}
}

func TestMetricsNilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordClaim(ClaimResultRecorded)
	m.RecordPayout("payment_time", true, time.Millisecond)
	m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	if m.Registry() != nil {
		t.Fatalf("nil metrics should expose nil registry")
	}
}

func TestMetricsHandlerExposesNamespace(t *testing.T) {
	m := New("fleet")
	m.RecordPayout("payment_time", true, 2*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics handler status want 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "fleet_payout_computations_total") {
		t.Fatalf("expected payout counter in output")
	}
}

func counterValue(t *testing.T, metric prometheus.Metric) float64 {
	t.Helper()
	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		t.Fatalf("write metric failed: %v", err)
	}
	return pb.GetCounter().GetValue()
}
