// Package spwm synthesizes switching-time lookup tables for a sinusoidal
// PWM unipolar H-bridge driver.
//
// Given a target AC frequency, a carrier-to-signal frequency ratio (mf)
// and an amplitude modulation ratio (ma), the synthesizer locates every
// intersection between a sampled sine reference and a triangular carrier
// at 10 ns resolution and converts the crossing times into alternating
// ON/OFF duration counts, one table per bridge half. Only the first
// quarter of the output cycle is searched explicitly; the rest of both
// tables is derived from the quarter-wave mirror symmetry of the sine
// reference and the 180° phase relationship between the two channels.
//
// The synthesis is a deterministic, single-shot computation: it performs
// no allocation, retains no state between calls and writes only into the
// caller-supplied buffers.
package spwm

import (
	"spwm-host/pkg/errors"
)

// Params holds the three synthesis inputs.
type Params struct {
	// SignalFreq is the target AC output frequency in Hz.
	SignalFreq uint32

	// MF is the carrier-to-signal frequency ratio. It must be a positive
	// multiple of 4 so a full cycle decomposes into whole carrier
	// quadrants; other values are rejected rather than silently
	// truncating the final quarter-cycle.
	MF uint32

	// MA is the amplitude modulation ratio, 0 < MA < 1. At MA >= 1 the
	// reference can exceed the carrier for an entire quadrant and no
	// crossing exists.
	MA float64
}

// Validate checks the synthesis preconditions.
func (p Params) Validate() error {
	if p.SignalFreq == 0 {
		return errors.InvalidParameterError("signal_freq", "must be greater than zero")
	}
	if p.MF == 0 || p.MF%4 != 0 {
		return errors.InvalidParameterError("mf", "must be a positive multiple of 4")
	}
	if p.MA <= 0 || p.MA >= 1 {
		return errors.InvalidParameterError("ma", "must satisfy 0 < ma < 1")
	}
	return nil
}

// TableLen returns the required length of each output table.
func (p Params) TableLen() int {
	return int(2 * p.MF)
}

// Result carries the per-invocation outputs that are not table entries.
type Result struct {
	// H1Sync and H2Sync are the absolute time counts of each channel's
	// first ON transition, used to align output hardware startup. They
	// are not duration entries.
	H1Sync uint32
	H2Sync uint32

	// SignalDuration is one full output cycle in time units; it equals
	// the sum of either table's entries.
	SignalDuration uint32

	// FineScanSteps and Crossings describe the search effort, for
	// diagnostics only.
	FineScanSteps uint64
	Crossings     uint64
}

// Tables bundles the two freshly allocated lookup tables with the
// synthesis result.
type Tables struct {
	H1 []uint32
	H2 []uint32
	Result
}

// SynthesizeInto fills the caller-supplied tables, which must each have
// length exactly 2*MF. All preconditions are checked before anything is
// written, so a failed call never partially mutates the buffers.
func SynthesizeInto(p Params, h1, h2 []uint32) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	want := p.TableLen()
	if len(h1) != want {
		return Result{}, errors.BufferSizeError("h1_table", len(h1), want)
	}
	if len(h2) != want {
		return Result{}, errors.BufferSizeError("h2_table", len(h2), want)
	}
	return synthesize(p, h1, h2), nil
}

// Synthesize is the allocating convenience wrapper around SynthesizeInto.
func Synthesize(p Params) (*Tables, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t := &Tables{
		H1: make([]uint32, p.TableLen()),
		H2: make([]uint32, p.TableLen()),
	}
	t.Result = synthesize(p, t.H1, t.H2)
	return t, nil
}
