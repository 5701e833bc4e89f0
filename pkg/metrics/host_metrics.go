// SPWM host metric definitions
//
// Copyright (C) 2026  SPWM Host Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"sync"
	"time"
)

// HostMetrics aggregates the metrics the host emits during a run.
type HostMetrics struct {
	registry *Registry

	// Synthesis
	SynthesisTotal   *Counter
	SynthesisSeconds *Histogram
	FineScanSteps    *Counter
	Crossings        *Counter
	TableEntries     *Gauge
	SignalDuration   *Gauge

	// Analysis
	Fundamental *Gauge
	THD         *Gauge

	// Streaming
	FramesTotal *Counter
	FrameBytes  *Counter
}

// NewHostMetrics creates and registers the host metrics on a registry.
func NewHostMetrics(registry *Registry) *HostMetrics {
	hm := &HostMetrics{
		registry: registry,

		SynthesisTotal: NewCounter("spwm_synthesis_total",
			"Number of table synthesis runs by result"),
		SynthesisSeconds: NewHistogram("spwm_synthesis_seconds",
			"Wall time of one synthesis run", DefaultBuckets()),
		FineScanSteps: NewCounter("spwm_fine_scan_steps_total",
			"Single-count scan iterations spent locating crossings"),
		Crossings: NewCounter("spwm_crossings_total",
			"Reference/carrier crossings found"),
		TableEntries: NewGauge("spwm_table_entries",
			"Entries per lookup table in the last synthesis"),
		SignalDuration: NewGauge("spwm_signal_duration_counts",
			"Output cycle length of the last synthesis in 10ns counts"),

		Fundamental: NewGauge("spwm_fundamental_magnitude",
			"Normalized fundamental magnitude of the last analyzed table"),
		THD: NewGauge("spwm_thd_ratio",
			"Total harmonic distortion of the last analyzed table"),

		FramesTotal: NewCounter("spwm_stream_frames_total",
			"Table frames sent to the driver by result"),
		FrameBytes: NewCounter("spwm_stream_bytes_total",
			"Bytes written to the driver link"),
	}

	registry.MustRegister(hm.SynthesisTotal)
	registry.MustRegister(hm.SynthesisSeconds)
	registry.MustRegister(hm.FineScanSteps)
	registry.MustRegister(hm.Crossings)
	registry.MustRegister(hm.TableEntries)
	registry.MustRegister(hm.SignalDuration)
	registry.MustRegister(hm.Fundamental)
	registry.MustRegister(hm.THD)
	registry.MustRegister(hm.FramesTotal)
	registry.MustRegister(hm.FrameBytes)
	return hm
}

var (
	globalOnce sync.Once
	globalHM   *HostMetrics
)

// GlobalMetrics returns the host metrics bound to the default registry.
func GlobalMetrics() *HostMetrics {
	globalOnce.Do(func() {
		globalHM = NewHostMetrics(DefaultRegistry())
	})
	return globalHM
}

// ObserveSynthesis records the outcome of one synthesis run.
func (hm *HostMetrics) ObserveSynthesis(elapsed time.Duration, entries int,
	signalDuration uint32, scanSteps, crossings uint64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	hm.SynthesisTotal.Inc(Labels{"result": result})
	if err != nil {
		return
	}
	hm.SynthesisSeconds.Observe(nil, elapsed.Seconds())
	hm.FineScanSteps.Add(nil, scanSteps)
	hm.Crossings.Add(nil, crossings)
	hm.TableEntries.Set(nil, float64(entries))
	hm.SignalDuration.Set(nil, float64(signalDuration))
}

// ObserveAnalysis records the spectrum of the last analyzed table.
func (hm *HostMetrics) ObserveAnalysis(fundamental, thd float64) {
	hm.Fundamental.Set(nil, fundamental)
	hm.THD.Set(nil, thd)
}

// ObserveFrame records one streaming attempt.
func (hm *HostMetrics) ObserveFrame(bytes int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	hm.FramesTotal.Inc(Labels{"result": result})
	if err == nil {
		hm.FrameBytes.Add(nil, uint64(bytes))
	}
}

// Gather renders the backing registry in Prometheus text format.
func (hm *HostMetrics) Gather() string {
	return hm.registry.Gather()
}
