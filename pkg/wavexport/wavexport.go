// Package wavexport renders the bridge output of a table pair to a WAV
// file. Listening to or plotting the exported audio is a quick way to
// eyeball a table before flashing a driver: the sine should be clearly
// visible under the switching ripple.
package wavexport

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"spwm-host/pkg/errors"
	"spwm-host/pkg/log"
	"spwm-host/pkg/spwm"
)

var exportLog = log.GetLogger("export")

// Config controls the rendering.
type Config struct {
	// SampleRate of the output file (default 48000).
	SampleRate int

	// Seconds of output to render (default 1).
	Seconds int

	// SignalFreq of the synthesized tables, used to repeat whole cycles.
	SignalFreq uint32
}

// countsPerSecond is the table time base: one count is 10 ns.
const countsPerSecond = 100000000

// Export writes the bridge output waveform of tbl to a 16-bit mono WAV
// file at path.
func Export(path string, tbl *spwm.Tables, cfg Config) error {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 48000
	}
	if cfg.Seconds <= 0 {
		cfg.Seconds = 1
	}
	if cfg.SignalFreq == 0 {
		return errors.New(errors.ErrExportWAV, "signal frequency required")
	}
	if tbl.SignalDuration == 0 {
		return errors.New(errors.ErrExportWAV, "empty table: zero signal duration")
	}

	levels := bridgeLevels(tbl)

	total := cfg.SampleRate * cfg.Seconds
	data := make([]int, total)
	const amplitude = 29000 // leave headroom below int16 full scale
	duration := uint64(tbl.SignalDuration)
	for i := 0; i < total; i++ {
		count := uint64(i) * countsPerSecond / uint64(cfg.SampleRate) % duration
		data[i] = int(levels[count]) * amplitude
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrExportWAV, "create output file")
	}
	defer f.Close()

	enc := wav.NewEncoder(f, cfg.SampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: cfg.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return errors.Wrap(err, errors.ErrExportWAV, "write samples")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrExportWAV, "finalize file")
	}

	exportLog.WithField("path", path).
		WithField("samples", total).
		Info("wrote waveform export")
	return nil
}

// bridgeLevels expands the two gate tables into the per-count bridge
// output level over one cycle: +1 when only channel 1 conducts, -1 when
// only channel 2 does, 0 otherwise.
func bridgeLevels(tbl *spwm.Tables) []int8 {
	levels := make([]int8, tbl.SignalDuration)
	accumulate(levels, tbl.H1Sync, tbl.H1, +1)
	accumulate(levels, tbl.H2Sync, tbl.H2, -1)
	return levels
}

func accumulate(levels []int8, sync uint32, entries []uint32, polarity int8) {
	n := uint32(len(levels))
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
				levels[i] += polarity
			}
		}
		t = end
		on = !on
	}
}
