// Package analysis reconstructs the switching waveform a table pair
// produces and measures its spectrum. It is the host-side sanity check
// that a synthesized table actually encodes the requested sine: the
// fundamental magnitude should track the modulation ratio and the
// low-order harmonic content should be small, with the switching energy
// parked up around twice the carrier frequency.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"spwm-host/pkg/errors"
	"spwm-host/pkg/pool"
	"spwm-host/pkg/spwm"
)

// Spectrum describes one analyzed table pair.
type Spectrum struct {
	// DC is the mean of the bridge output, normalized to the bus
	// voltage. It should be close to zero.
	DC float64

	// Fundamental is the normalized magnitude of the output at the
	// signal frequency. For a well-formed table it approximates the
	// modulation ratio.
	Fundamental float64

	// THD is the total harmonic distortion over the analyzed harmonics,
	// as a ratio of the fundamental.
	THD float64

	// Harmonics holds the normalized magnitude of harmonics 1..N, with
	// Harmonics[0] the fundamental.
	Harmonics []float64
}

// Analyze samples one full cycle of the bridge output described by tbl
// at table resolution and returns its spectrum up to maxHarmonic.
func Analyze(tbl *spwm.Tables, maxHarmonic int) (*Spectrum, error) {
	if maxHarmonic < 2 {
		return nil, errors.New(errors.ErrAnalysis, "max harmonic must be at least 2")
	}
	n := int(tbl.SignalDuration)
	if n == 0 {
		return nil, errors.New(errors.ErrAnalysis, "empty table: zero signal duration")
	}
	if maxHarmonic >= n/2 {
		return nil, errors.New(errors.ErrAnalysis, "max harmonic beyond Nyquist limit")
	}
	if n > 1<<24 {
		return nil, errors.New(errors.ErrAnalysis, "signal too long to sample at full resolution")
	}

	samples := pool.GetSamples(n)
	defer pool.PutSamples(samples)
	addLevels(samples, tbl.H1Sync, tbl.H1, +1)
	addLevels(samples, tbl.H2Sync, tbl.H2, -1)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, samples)

	// One exact cycle is sampled, so harmonic k lands in bin k.
	sp := &Spectrum{
		DC:        real(coeff[0]) / float64(n),
		Harmonics: make([]float64, maxHarmonic),
	}
	for k := 1; k <= maxHarmonic; k++ {
		sp.Harmonics[k-1] = 2 * cmplxAbs(coeff[k]) / float64(n)
	}
	sp.Fundamental = sp.Harmonics[0]

	var distortion float64
	for _, m := range sp.Harmonics[1:] {
		distortion += m * m
	}
	if sp.Fundamental > 0 {
		sp.THD = math.Sqrt(distortion) / sp.Fundamental
	}
	return sp, nil
}

// addLevels accumulates one channel's gate waveform into the sample
// buffer. The channel is off until its sync count, then the table
// entries alternate on/off durations starting with an on interval; the
// final off entry wraps past the end of the cycle and is clipped.
func addLevels(samples []float64, sync uint32, entries []uint32, polarity float64) {
	n := uint32(len(samples))
	t := sync
	on := true
	for _, d := range entries {
		if t >= n {
			break
		}
		end := t + d
		if end > n {
			end = n
		}
		if on {
			for i := t; i < end; i++ {
				samples[i] += polarity
			}
		}
		t = end
		on = !on
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
