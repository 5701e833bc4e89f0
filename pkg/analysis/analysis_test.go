package analysis

import (
	"testing"

	"spwm-host/pkg/errors"
	"spwm-host/pkg/spwm"
)

func synthesizeFor(t *testing.T, p spwm.Params) *spwm.Tables {
	t.Helper()
	tbl, err := spwm.Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize(%+v) failed: %v", p, err)
	}
	return tbl
}

func TestFundamentalTracksModulationRatio(t *testing.T) {
	cases := []spwm.Params{
		{SignalFreq: 50, MF: 256, MA: 0.8},
		{SignalFreq: 50, MF: 256, MA: 0.5},
		{SignalFreq: 60, MF: 128, MA: 0.9},
	}
	for _, p := range cases {
		tbl := synthesizeFor(t, p)
		sp, err := Analyze(tbl, 50)
		if err != nil {
			t.Fatalf("Analyze failed: %v", err)
		}

		// The fundamental of a unipolar SPWM bridge output equals the
		// modulation ratio times the bus voltage, up to switching
		// quantization.
		if diff := sp.Fundamental - p.MA; diff < -0.02 || diff > 0.02 {
			t.Errorf("%+v: fundamental = %.4f, want about %.2f", p, sp.Fundamental, p.MA)
		}
		if sp.DC < -0.01 || sp.DC > 0.01 {
			t.Errorf("%+v: dc offset = %.4f, want about 0", p, sp.DC)
		}
	}
}

func TestLowOrderHarmonicsAreSmall(t *testing.T) {
	tbl := synthesizeFor(t, spwm.Params{SignalFreq: 50, MF: 256, MA: 0.8})
	sp, err := Analyze(tbl, 50)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	// Unipolar modulation pushes switching energy to twice the carrier
	// frequency; the first 50 harmonics should be nearly clean.
	if sp.THD > 0.1 {
		t.Errorf("THD over first 50 harmonics = %.4f, want < 0.1", sp.THD)
	}
	for k, m := range sp.Harmonics[1:] {
		if m > 0.05 {
			t.Errorf("harmonic %d magnitude = %.4f, want < 0.05", k+2, m)
		}
	}
}

func TestHarmonicsSliceShape(t *testing.T) {
	tbl := synthesizeFor(t, spwm.Params{SignalFreq: 50, MF: 64, MA: 0.7})
	sp, err := Analyze(tbl, 13)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(sp.Harmonics) != 13 {
		t.Errorf("harmonics length = %d, want 13", len(sp.Harmonics))
	}
	if sp.Harmonics[0] != sp.Fundamental {
		t.Error("Harmonics[0] should be the fundamental")
	}
}

func TestAnalyzeRejectsBadArguments(t *testing.T) {
	tbl := synthesizeFor(t, spwm.Params{SignalFreq: 50, MF: 64, MA: 0.7})

	if _, err := Analyze(tbl, 1); !errors.Is(err, errors.ErrAnalysis) {
		t.Errorf("maxHarmonic=1: got %v, want ANALYSIS error", err)
	}
	if _, err := Analyze(tbl, int(tbl.SignalDuration)); !errors.Is(err, errors.ErrAnalysis) {
		t.Errorf("huge maxHarmonic: got %v, want ANALYSIS error", err)
	}
}
