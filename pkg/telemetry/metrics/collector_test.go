package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"mosaic-hq/bento/pkg/layout"
)

func TestRecordRun(t *testing.T) {
	c := NewCollector(true, nil)

	c.RecordRun("bento-1-2", layout.Result{}, 5*time.Millisecond)
	c.RecordRun("bento-1-2", layout.Result{Violations: []layout.Violation{
		layout.CountMismatch(3, 1),
		layout.MissingAtPosition(2, "rightColumnBottomCard"),
	}}, 3*time.Millisecond)

	if got := testutil.ToFloat64(c.runsTotal.WithLabelValues("bento-1-2", "valid")); got != 1 {
		t.Errorf("expected 1 valid run, got %v", got)
	}
	if got := testutil.ToFloat64(c.runsTotal.WithLabelValues("bento-1-2", "invalid")); got != 1 {
		t.Errorf("expected 1 invalid run, got %v", got)
	}
	if got := testutil.ToFloat64(c.violationsTotal.WithLabelValues("count_mismatch")); got != 1 {
		t.Errorf("expected 1 count_mismatch violation, got %v", got)
	}
	if got := testutil.ToFloat64(c.violationsTotal.WithLabelValues("missing_at_position")); got != 1 {
		t.Errorf("expected 1 missing_at_position violation, got %v", got)
	}
}

func TestRecordRegistryReload(t *testing.T) {
	c := NewCollector(true, nil)

	c.RecordRegistryReload(true)
	c.RecordRegistryReload(true)
	c.RecordRegistryReload(false)

	if got := testutil.ToFloat64(c.registryReloads.WithLabelValues("success")); got != 2 {
		t.Errorf("expected 2 successful reloads, got %v", got)
	}
	if got := testutil.ToFloat64(c.registryReloads.WithLabelValues("failure")); got != 1 {
		t.Errorf("expected 1 failed reload, got %v", got)
	}
}

func TestDisabledCollectorRecordsNothing(t *testing.T) {
	c := NewCollector(false, nil)

	c.RecordRun("bento-1-2", layout.Result{}, time.Millisecond)
	c.RecordHTTPRequest("POST", "/v1/validate", "200", time.Millisecond)

	if got := testutil.ToFloat64(c.runsTotal.WithLabelValues("bento-1-2", "valid")); got != 0 {
		t.Errorf("expected no recorded runs, got %v", got)
	}
	if got := testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "/v1/validate", "200")); got != 0 {
		t.Errorf("expected no recorded requests, got %v", got)
	}
}
