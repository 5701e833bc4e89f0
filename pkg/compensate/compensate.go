// Package compensate adjusts synthesized lookup tables for the fixed
// delays of the output stage. The driver inserts a dead time between
// the high-side and low-side switches, and its pulse engine spends a
// few instruction cycles per entry; both show up as constant offsets
// that must be subtracted from every duration before the tables are
// loaded, or the output period drifts long.
package compensate

import (
	"fmt"

	"spwm-host/pkg/errors"
	"spwm-host/pkg/spwm"
)

// Settings holds the delay counts of one driver build, in 10 ns units.
type Settings struct {
	// DeadTime is the interval both switches of a half-bridge are held
	// off around every transition.
	DeadTime uint32

	// DeadTimeCompensation is the instruction overhead of the driver's
	// dead-time insertion loop, already part of DeadTime on the wire.
	DeadTimeCompensation uint32

	// ExecDelay is the instruction overhead of emitting one pulse edge.
	ExecDelay uint32
}

// DefaultSettings matches the reference driver firmware.
func DefaultSettings() Settings {
	return Settings{
		DeadTime:             50,
		DeadTimeCompensation: 2,
		ExecDelay:            3,
	}
}

// entryOffset is the amount subtracted from every duration and sync.
func (s Settings) entryOffset() uint32 {
	return s.DeadTime + s.ExecDelay
}

// Tables is a compensated copy of a synthesis output, ready to load.
type Tables struct {
	H1, H2 []uint32

	H1Sync uint32
	H2Sync uint32

	// NetDeadTime is the dead-time count handed to the driver, with its
	// own insertion overhead taken back out.
	NetDeadTime uint32

	// SyncOutHalfDuration is the half-period of the cycle-sync output
	// pin, derived from the full signal duration.
	SyncOutHalfDuration uint32
}

// Apply produces a compensated copy of t. The input tables are never
// modified; re-applying different settings to the same synthesis output
// is safe. Apply fails if any duration or sync count is too small to
// absorb the offset, which would wrap it to a huge count.
func Apply(s Settings, t *spwm.Tables) (*Tables, error) {
	off := s.entryOffset()
	if s.DeadTimeCompensation > s.DeadTime {
		return nil, errors.InvalidParameterError("deadtime_compensation",
			"exceeds dead_time")
	}
	if t.H1Sync < off || t.H2Sync < off {
		return nil, underflow("sync", min(t.H1Sync, t.H2Sync), off)
	}
	halfCycle := t.SignalDuration / 2
	if halfCycle < s.DeadTimeCompensation {
		return nil, underflow("sync_out_half_duration", halfCycle, s.DeadTimeCompensation)
	}

	out := &Tables{
		H1:                  make([]uint32, len(t.H1)),
		H2:                  make([]uint32, len(t.H2)),
		H1Sync:              t.H1Sync - off,
		H2Sync:              t.H2Sync - off,
		NetDeadTime:         s.DeadTime - s.DeadTimeCompensation,
		SyncOutHalfDuration: halfCycle - s.DeadTimeCompensation,
	}
	if err := applyTable(out.H1, t.H1, off); err != nil {
		return nil, err
	}
	if err := applyTable(out.H2, t.H2, off); err != nil {
		return nil, err
	}
	return out, nil
}

func applyTable(dst, src []uint32, off uint32) error {
	for i, d := range src {
		if d < off {
			return underflow("table entry", d, off)
		}
		dst[i] = d - off
	}
	return nil
}

func underflow(what string, have, need uint32) error {
	return errors.InvalidParameterError(what,
		fmt.Sprintf("count %d cannot absorb compensation offset %d", have, need))
}
