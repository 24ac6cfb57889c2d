package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

func TestPrometheus_ObserveIndexOutcome(t *testing.T) {
	p := NewPrometheus()

	p.ObserveIndexOutcome(domain.IndexOutcomeIndexed)
	p.ObserveIndexOutcome(domain.IndexOutcomeAlreadyIndexed)
	p.ObserveIndexOutcome(domain.IndexOutcomeAlreadyIndexed)

	if got := testutil.ToFloat64(p.indexOutcomes.WithLabelValues("already_indexed")); got != 2 {
		t.Errorf("expected 2 already_indexed, got %v", got)
	}
	if got := testutil.ToFloat64(p.indexOutcomes.WithLabelValues("indexed")); got != 1 {
		t.Errorf("expected 1 indexed, got %v", got)
	}
}

func TestPrometheus_ObservePageLoad(t *testing.T) {
	p := NewPrometheus()

	p.ObservePageLoad(120*time.Millisecond, nil)
	p.ObservePageLoad(time.Second, errors.New("boom"))

	if n := testutil.CollectAndCount(p.pageLoads); n != 2 {
		t.Errorf("expected 2 histogram series, got %d", n)
	}
}

func TestPrometheus_ObserveRequest(t *testing.T) {
	p := NewPrometheus()

	p.ObserveRequest("GET", 200)
	p.ObserveRequest("GET", 200)
	p.ObserveRequest("GET", 503)

	if got := testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "200")); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.ObserveIndexOutcome(domain.IndexOutcomeFailed)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(string(body), `pagechat_index_outcomes_total{outcome="failed"} 1`) {
		t.Errorf("expected index outcome metric in output:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected runtime collector output")
	}
}
