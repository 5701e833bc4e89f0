package spwm

import (
	"testing"

	"spwm-host/pkg/errors"
)

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name string
		p    Params
	}{
		{"zero frequency", Params{SignalFreq: 0, MF: 256, MA: 0.8}},
		{"zero mf", Params{SignalFreq: 50, MF: 0, MA: 0.8}},
		{"mf not multiple of 4", Params{SignalFreq: 50, MF: 250, MA: 0.8}},
		{"ma zero", Params{SignalFreq: 50, MF: 256, MA: 0}},
		{"ma negative", Params{SignalFreq: 50, MF: 256, MA: -0.5}},
		{"ma unity", Params{SignalFreq: 50, MF: 256, MA: 1.0}},
		{"ma over unity", Params{SignalFreq: 50, MF: 256, MA: 1.2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.p.Validate()
			if !errors.Is(err, errors.ErrInvalidParameter) {
				t.Errorf("Validate() = %v, want INVALID_PARAMETER", err)
			}
			if _, serr := Synthesize(tc.p); serr == nil {
				t.Error("Synthesize accepted invalid params")
			}
		})
	}
}

func TestBufferSizeChecked(t *testing.T) {
	p := Params{SignalFreq: 50, MF: 8, MA: 0.8}

	_, err := SynthesizeInto(p, make([]uint32, 15), make([]uint32, 16))
	if !errors.Is(err, errors.ErrBufferSize) {
		t.Errorf("short h1 buffer: got %v, want BUFFER_SIZE", err)
	}
	_, err = SynthesizeInto(p, make([]uint32, 16), make([]uint32, 17))
	if !errors.Is(err, errors.ErrBufferSize) {
		t.Errorf("long h2 buffer: got %v, want BUFFER_SIZE", err)
	}
}

func TestFailedCallLeavesBuffersUntouched(t *testing.T) {
	const sentinel = 0xdeadbeef
	h1 := make([]uint32, 16)
	h2 := make([]uint32, 16)
	for i := range h1 {
		h1[i] = sentinel
		h2[i] = sentinel
	}

	// Invalid ma fails validation before any table write.
	if _, err := SynthesizeInto(Params{SignalFreq: 50, MF: 8, MA: 1.5}, h1, h2); err == nil {
		t.Fatal("expected validation error")
	}
	for i := range h1 {
		if h1[i] != sentinel || h2[i] != sentinel {
			t.Fatalf("buffer modified at %d after failed call", i)
		}
	}
}
