package wavexport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"spwm-host/pkg/errors"
	"spwm-host/pkg/spwm"
)

func TestExportRoundTrip(t *testing.T) {
	tbl, err := spwm.Synthesize(spwm.Params{SignalFreq: 50, MF: 64, MA: 0.8})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "spwm.wav")
	cfg := Config{SampleRate: 8000, Seconds: 1, SignalFreq: 50}
	if err := Export(path, tbl, cfg); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open exported file: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if dec.SampleRate != 8000 || dec.NumChans != 1 || dec.BitDepth != 16 {
		t.Errorf("format = %d Hz, %d ch, %d bit", dec.SampleRate, dec.NumChans, dec.BitDepth)
	}
	if len(buf.Data) != 8000 {
		t.Errorf("sample count = %d, want 8000", len(buf.Data))
	}

	// The waveform must actually swing: positive and negative pulses.
	var maxSample, minSample int
	for _, s := range buf.Data {
		if s > maxSample {
			maxSample = s
		}
		if s < minSample {
			minSample = s
		}
	}
	if maxSample < 10000 || minSample > -10000 {
		t.Errorf("amplitude range [%d, %d] too small", minSample, maxSample)
	}
}

func TestExportRejectsMissingFrequency(t *testing.T) {
	tbl, err := spwm.Synthesize(spwm.Params{SignalFreq: 50, MF: 8, MA: 0.8})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := Export(path, tbl, Config{}); !errors.Is(err, errors.ErrExportWAV) {
		t.Errorf("expected EXPORT_WAV error, got %v", err)
	}
}
