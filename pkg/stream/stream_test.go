package stream

import (
	"encoding/binary"
	"net"
	"testing"

	"spwm-host/pkg/errors"
)

// echoDriver decodes one frame and echoes its checksum, like the real
// driver does after loading the tables.
func echoDriver(t *testing.T, conn net.Conn, corrupt bool) {
	t.Helper()
	f, err := Decode(conn)
	if err != nil {
		t.Errorf("driver decode failed: %v", err)
		conn.Close()
		return
	}
	crc := f.CRC()
	if corrupt {
		crc ^= 0xffffffff
	}
	var ack [4]byte
	binary.LittleEndian.PutUint32(ack[:], crc)
	conn.Write(ack[:])
	conn.Close()
}

func TestSendHandshake(t *testing.T) {
	host, driver := net.Pipe()
	defer host.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		echoDriver(t, driver, false)
	}()

	if err := Send(host, testFrame(t)); err != nil {
		t.Errorf("Send failed: %v", err)
	}
	<-done
}

func TestSendRejectsBadAck(t *testing.T) {
	host, driver := net.Pipe()
	defer host.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		echoDriver(t, driver, true)
	}()

	if err := Send(host, testFrame(t)); !errors.Is(err, errors.ErrStreamCRC) {
		t.Errorf("expected STREAM_CRC error, got %v", err)
	}
	<-done
}

func TestSendValidatesFrame(t *testing.T) {
	f := testFrame(t)
	f.MF = 6 // not a multiple of 4
	if err := Send(nil, f); !errors.Is(err, errors.ErrStreamFrame) {
		t.Errorf("expected STREAM_FRAME error, got %v", err)
	}
}
