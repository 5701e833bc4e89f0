package stream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"spwm-host/pkg/errors"
	"spwm-host/pkg/pool"
)

// Wire format, all fields little-endian uint32:
//
//	magic | version | mf | signal_duration | h1_sync | h2_sync |
//	net_dead_time | sync_out_half_duration |
//	h1 payload (2*mf words) | h2 payload (2*mf words) | crc32
//
// The CRC covers every byte before it. The driver echoes the CRC word
// after loading the tables.
const (
	frameMagic   uint32 = 0x53505746 // "FWPS" on the wire, LSB first
	frameVersion uint32 = 1

	headerWords = 8

	// maxMF bounds the frame size a reader will accept (1 MiB payload).
	maxMF = 65536
)

// Frame is one complete table load for the driver.
type Frame struct {
	MF                  uint32
	SignalDuration      uint32
	H1Sync              uint32
	H2Sync              uint32
	NetDeadTime         uint32
	SyncOutHalfDuration uint32
	H1, H2              []uint32
}

// Validate checks internal consistency before encoding.
func (f *Frame) Validate() error {
	if f.MF == 0 || f.MF%4 != 0 || f.MF > maxMF {
		return errors.StreamFrameError(fmt.Sprintf("bad mf %d", f.MF))
	}
	want := int(2 * f.MF)
	if len(f.H1) != want || len(f.H2) != want {
		return errors.StreamFrameError(fmt.Sprintf(
			"payload length %d/%d does not match mf %d", len(f.H1), len(f.H2), f.MF))
	}
	return nil
}

// EncodedSize returns the wire size of the frame in bytes.
func (f *Frame) EncodedSize() int {
	return 4 * (headerWords + 4*int(f.MF) + 1)
}

// Encode serializes the frame to w.
func (f *Frame) Encode(w io.Writer) error {
	if err := f.Validate(); err != nil {
		return err
	}

	buf := pool.GetByteBuffer()
	defer pool.PutByteBuffer(buf)
	buf.Grow(f.EncodedSize())
	putWord := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}

	putWord(frameMagic)
	putWord(frameVersion)
	putWord(f.MF)
	putWord(f.SignalDuration)
	putWord(f.H1Sync)
	putWord(f.H2Sync)
	putWord(f.NetDeadTime)
	putWord(f.SyncOutHalfDuration)
	for _, v := range f.H1 {
		putWord(v)
	}
	for _, v := range f.H2 {
		putWord(v)
	}
	putWord(crc32.ChecksumIEEE(buf.Bytes()))

	if _, err := w.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, errors.ErrStreamDevice, "write frame")
	}
	return nil
}

// CRC returns the checksum the driver is expected to echo back.
func (f *Frame) CRC() uint32 {
	var buf bytes.Buffer
	// Encode cannot fail into a bytes.Buffer once validated; ignore the
	// error and recompute from the encoded bytes minus the CRC word.
	if err := f.Encode(&buf); err != nil {
		return 0
	}
	b := buf.Bytes()
	return binary.LittleEndian.Uint32(b[len(b)-4:])
}

// Decode reads one frame from r, verifying magic, version, size and CRC.
func Decode(r io.Reader) (*Frame, error) {
	header := make([]byte, 4*headerWords)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, errors.ErrStreamDevice, "read frame header")
	}

	word := func(i int) uint32 {
		return binary.LittleEndian.Uint32(header[4*i:])
	}
	if word(0) != frameMagic {
		return nil, errors.StreamFrameError(fmt.Sprintf("bad magic %#08x", word(0)))
	}
	if word(1) != frameVersion {
		return nil, errors.StreamFrameError(fmt.Sprintf("unsupported version %d", word(1)))
	}

	f := &Frame{
		MF:                  word(2),
		SignalDuration:      word(3),
		H1Sync:              word(4),
		H2Sync:              word(5),
		NetDeadTime:         word(6),
		SyncOutHalfDuration: word(7),
	}
	if f.MF == 0 || f.MF%4 != 0 || f.MF > maxMF {
		return nil, errors.StreamFrameError(fmt.Sprintf("bad mf %d", f.MF))
	}

	payload := make([]byte, 4*(4*int(f.MF)+1))
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, errors.Wrap(err, errors.ErrStreamDevice, "read frame payload")
	}

	crc := crc32.ChecksumIEEE(header)
	crc = crc32.Update(crc, crc32.IEEETable, payload[:len(payload)-4])
	wire := binary.LittleEndian.Uint32(payload[len(payload)-4:])
	if crc != wire {
		return nil, errors.StreamCRCError(wire, crc)
	}

	n := 2 * int(f.MF)
	f.H1 = make([]uint32, n)
	f.H2 = make([]uint32, n)
	for i := 0; i < n; i++ {
		f.H1[i] = binary.LittleEndian.Uint32(payload[4*i:])
		f.H2[i] = binary.LittleEndian.Uint32(payload[4*(n+i):])
	}
	return f, nil
}
