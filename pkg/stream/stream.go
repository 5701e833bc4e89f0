package stream

import (
	"encoding/binary"
	"io"

	"spwm-host/pkg/compensate"
	"spwm-host/pkg/errors"
	"spwm-host/pkg/log"
	"spwm-host/pkg/spwm"
)

var streamLog = log.GetLogger("stream")

// NewFrame assembles a wire frame from a synthesis result and its
// compensated tables.
func NewFrame(p spwm.Params, signalDuration uint32, c *compensate.Tables) *Frame {
	return &Frame{
		MF:                  p.MF,
		SignalDuration:      signalDuration,
		H1Sync:              c.H1Sync,
		H2Sync:              c.H2Sync,
		NetDeadTime:         c.NetDeadTime,
		SyncOutHalfDuration: c.SyncOutHalfDuration,
		H1:                  c.H1,
		H2:                  c.H2,
	}
}

// Send writes the frame to rw and waits for the driver to echo the frame
// checksum, confirming the tables were loaded.
func Send(rw io.ReadWriter, f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}

	crc := f.CRC()
	streamLog.WithField("bytes", f.EncodedSize()).
		WithField("mf", f.MF).
		Info("sending table frame")

	if err := f.Encode(rw); err != nil {
		return err
	}

	var ack [4]byte
	if _, err := io.ReadFull(rw, ack[:]); err != nil {
		return errors.Wrap(err, errors.ErrStreamDevice, "read ack")
	}
	echoed := binary.LittleEndian.Uint32(ack[:])
	if echoed != crc {
		return errors.StreamCRCError(echoed, crc)
	}

	streamLog.Info("driver acknowledged table load")
	return nil
}
