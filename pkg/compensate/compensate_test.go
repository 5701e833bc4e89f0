package compensate

import (
	"testing"

	"spwm-host/pkg/errors"
	"spwm-host/pkg/spwm"
)

func referenceTables(t *testing.T) *spwm.Tables {
	t.Helper()
	tbl, err := spwm.Synthesize(spwm.Params{SignalFreq: 50, MF: 256, MA: 0.8})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	return tbl
}

func TestApplyDefaults(t *testing.T) {
	tbl := referenceTables(t)
	out, err := Apply(DefaultSettings(), tbl)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	// Every count loses dead time plus the per-edge execution delay.
	const off = 50 + 3
	if out.H1Sync != tbl.H1Sync-off {
		t.Errorf("h1 sync = %d, want %d", out.H1Sync, tbl.H1Sync-off)
	}
	if out.H2Sync != tbl.H2Sync-off {
		t.Errorf("h2 sync = %d, want %d", out.H2Sync, tbl.H2Sync-off)
	}
	for i := range tbl.H1 {
		if out.H1[i] != tbl.H1[i]-off {
			t.Fatalf("h1[%d] = %d, want %d", i, out.H1[i], tbl.H1[i]-off)
		}
		if out.H2[i] != tbl.H2[i]-off {
			t.Fatalf("h2[%d] = %d, want %d", i, out.H2[i], tbl.H2[i]-off)
		}
	}

	if out.NetDeadTime != 48 {
		t.Errorf("net dead time = %d, want 48", out.NetDeadTime)
	}
	if want := tbl.SignalDuration/2 - 2; out.SyncOutHalfDuration != want {
		t.Errorf("sync out half duration = %d, want %d", out.SyncOutHalfDuration, want)
	}
}

func TestApplyLeavesInputIntact(t *testing.T) {
	tbl := referenceTables(t)
	before := make([]uint32, len(tbl.H1))
	copy(before, tbl.H1)

	if _, err := Apply(DefaultSettings(), tbl); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	for i := range before {
		if tbl.H1[i] != before[i] {
			t.Fatalf("input table modified at %d", i)
		}
	}
}

func TestApplyRejectsUnderflow(t *testing.T) {
	tbl := referenceTables(t)

	// An offset larger than the smallest table entry must be refused
	// rather than wrapping the count.
	huge := Settings{DeadTime: 5000, DeadTimeCompensation: 2, ExecDelay: 3}
	if _, err := Apply(huge, tbl); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER, got %v", err)
	}
}

func TestApplyRejectsBadCompensation(t *testing.T) {
	tbl := referenceTables(t)

	s := Settings{DeadTime: 5, DeadTimeCompensation: 10, ExecDelay: 3}
	if _, err := Apply(s, tbl); !errors.Is(err, errors.ErrInvalidParameter) {
		t.Errorf("expected INVALID_PARAMETER, got %v", err)
	}
}
