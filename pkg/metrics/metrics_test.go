// Copyright (C) 2026  SPWM Host Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestCounter(t *testing.T) {
	c := NewCounter("test_total", "test counter")
	c.Inc(nil)
	c.Add(nil, 4)
	if got := c.Get(nil); got != 5 {
		t.Errorf("counter = %d, want 5", got)
	}

	c.Inc(Labels{"result": "error"})
	if got := c.Get(Labels{"result": "error"}); got != 1 {
		t.Errorf("labeled counter = %d, want 1", got)
	}

	var sb strings.Builder
	c.Write(&sb)
	out := sb.String()
	if !strings.Contains(out, "# TYPE test_total counter") {
		t.Errorf("missing TYPE line:\n%s", out)
	}
	if !strings.Contains(out, `test_total{result="error"} 1`) {
		t.Errorf("missing labeled sample:\n%s", out)
	}
}

func TestGauge(t *testing.T) {
	g := NewGauge("test_gauge", "test gauge")
	g.Set(nil, 2.5)
	g.Add(nil, 0.5)
	if got := g.Get(nil); got != 3.0 {
		t.Errorf("gauge = %f, want 3.0", got)
	}
}

func TestHistogram(t *testing.T) {
	h := NewHistogram("test_seconds", "test histogram", []float64{0.1, 1, 10})
	h.Observe(nil, 0.05)
	h.Observe(nil, 0.5)
	h.Observe(nil, 100)

	var sb strings.Builder
	h.Write(&sb)
	out := sb.String()
	if !strings.Contains(out, `test_seconds_bucket{le="0.1"} 1`) {
		t.Errorf("bad 0.1 bucket:\n%s", out)
	}
	if !strings.Contains(out, `test_seconds_bucket{le="1"} 2`) {
		t.Errorf("bad 1 bucket:\n%s", out)
	}
	// An observation below one bound must not leak into the later ones.
	if !strings.Contains(out, `test_seconds_bucket{le="10"} 2`) {
		t.Errorf("bad 10 bucket:\n%s", out)
	}
	if !strings.Contains(out, `test_seconds_bucket{le="+Inf"} 3`) {
		t.Errorf("bad +Inf bucket:\n%s", out)
	}
	if !strings.Contains(out, "test_seconds_count 3") {
		t.Errorf("bad count:\n%s", out)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewCounter("dup", "first")); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(NewCounter("dup", "second")); err == nil {
		t.Error("duplicate Register should fail")
	}
}

func TestHostMetricsSynthesis(t *testing.T) {
	r := NewRegistry()
	hm := NewHostMetrics(r)

	hm.ObserveSynthesis(5*time.Millisecond, 512, 1999872, 1200, 256, nil)
	hm.ObserveAnalysis(0.8, 0.01)

	out := hm.Gather()
	for _, want := range []string{
		`spwm_synthesis_total{result="ok"} 1`,
		"spwm_table_entries 512",
		"spwm_signal_duration_counts 1.999872e+06",
		"spwm_fundamental_magnitude 0.8",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestHostMetricsErrorResult(t *testing.T) {
	r := NewRegistry()
	hm := NewHostMetrics(r)

	hm.ObserveFrame(0, fmt.Errorf("driver timeout"))
	if got := hm.FramesTotal.Get(Labels{"result": "error"}); got != 1 {
		t.Errorf("error frames = %d, want 1", got)
	}
	if got := hm.FrameBytes.Get(nil); got != 0 {
		t.Errorf("bytes after failed frame = %d, want 0", got)
	}
}
