package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Cycles.Inc()
	m.Cycles.Inc()
	m.Escalations.WithLabelValues("warning").Inc()
	m.AlertFailures.WithLabelValues("mail").Inc()
	m.TrustScore.Set(45)

	if got := testutil.ToFloat64(m.Cycles); got != 2 {
		t.Errorf("cycles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Escalations.WithLabelValues("warning")); got != 1 {
		t.Errorf("warning escalations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.TrustScore); got != 45 {
		t.Errorf("trust score = %v, want 45", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.FileAccess.Inc()

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, name := range []string{"trustwatch_cycles_total", "trustwatch_file_access_total 1", "trustwatch_trust_score"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %q in exposition output", name)
		}
	}
}

func TestNewRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Cycles.Inc()
	if got := testutil.ToFloat64(b.Cycles); got != 0 {
		t.Errorf("second registry saw %v cycles", got)
	}
}
