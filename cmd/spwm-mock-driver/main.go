// spwm-mock-driver emulates the driver board's table-loading protocol
// on a Unix socket, for exercising the streaming path without hardware:
// it decodes each table frame, logs its header, and echoes the frame
// checksum the way the real driver does.
//
// Usage:
//
//	spwm-mock-driver -socket /tmp/spwm.sock
//	spwm-host -freq 50 -mf 256 -ma 0.8 -socket /tmp/spwm.sock
package main

import (
	"encoding/binary"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"spwm-host/pkg/log"
	"spwm-host/pkg/stream"
)

var mockLog = log.GetLogger("mock-driver")

func main() {
	socket := flag.String("socket", "/tmp/spwm.sock", "Unix socket to listen on")
	once := flag.Bool("once", false, "Exit after the first frame")
	flag.Parse()

	os.Remove(*socket)
	ln, err := net.Listen("unix", *socket)
	if err != nil {
		mockLog.WithError(err).Error("listen failed")
		os.Exit(1)
	}
	defer ln.Close()
	defer os.Remove(*socket)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		ln.Close()
	}()

	mockLog.WithField("socket", *socket).Info("mock driver listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		serve(conn)
		if *once {
			return
		}
	}
}

// serve handles one host connection: decode a frame, ack it.
func serve(conn net.Conn) {
	defer conn.Close()

	f, err := stream.Decode(conn)
	if err != nil {
		mockLog.WithError(err).Warn("rejecting frame")
		return
	}

	mockLog.WithField("mf", f.MF).
		WithField("h1_sync", f.H1Sync).
		WithField("h2_sync", f.H2Sync).
		WithField("net_dead_time", f.NetDeadTime).
		Info("tables loaded")

	var ack [4]byte
	binary.LittleEndian.PutUint32(ack[:], f.CRC())
	if _, err := conn.Write(ack[:]); err != nil {
		mockLog.WithError(err).Warn("ack write failed")
	}
}
