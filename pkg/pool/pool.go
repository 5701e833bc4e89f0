// Object pooling for the SPWM host hot paths
//
// Spectrum analysis samples a full signal cycle (a couple of million
// float64 values at typical timings) and streaming encodes a multi-KiB
// frame per table load. Both would otherwise allocate fresh buffers on
// every retune, so the buffers are recycled here.
//
// Copyright (C) 2026  SPWM Host Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// samplePools keyed by buffer length. Sample buffer sizes are set by the
// signal timing, so a handful of distinct lengths ever exist.
var samplePools sync.Map

// GetSamples returns a zeroed float64 buffer of length n.
func GetSamples(n int) []float64 {
	p, ok := samplePools.Load(n)
	if !ok {
		p, _ = samplePools.LoadOrStore(n, &sync.Pool{
			New: func() interface{} {
				buf := make([]float64, n)
				return &buf
			},
		})
	}
	buf := *p.(*sync.Pool).Get().(*[]float64)
	for i := range buf {
		buf[i] = 0
	}
	atomic.AddInt64(&stats.SampleGets, 1)
	return buf
}

// PutSamples returns a sample buffer to its pool. The caller must not
// use the buffer afterwards.
func PutSamples(buf []float64) {
	if buf == nil {
		return
	}
	if p, ok := samplePools.Load(len(buf)); ok {
		p.(*sync.Pool).Put(&buf)
		atomic.AddInt64(&stats.SamplePuts, 1)
	}
}

var byteBufferPool = sync.Pool{
	New: func() interface{} {
		return &ByteBuffer{buf: bytes.NewBuffer(make([]byte, 0, 4096))}
	},
}

// ByteBuffer wraps bytes.Buffer for pooled reuse.
type ByteBuffer struct {
	buf *bytes.Buffer
}

// GetByteBuffer returns an empty byte buffer from the pool.
func GetByteBuffer() *ByteBuffer {
	b := byteBufferPool.Get().(*ByteBuffer)
	b.buf.Reset()
	atomic.AddInt64(&stats.ByteBufferGets, 1)
	return b
}

// PutByteBuffer returns a byte buffer to the pool. Buffers that grew
// past a full mf=65536 frame are dropped to bound pool memory.
func PutByteBuffer(b *ByteBuffer) {
	if b == nil {
		return
	}
	if b.buf.Cap() > 1<<21 {
		return
	}
	byteBufferPool.Put(b)
	atomic.AddInt64(&stats.ByteBufferPuts, 1)
}

func (b *ByteBuffer) Bytes() []byte { return b.buf.Bytes() }

func (b *ByteBuffer) Write(p []byte) (int, error) { return b.buf.Write(p) }

func (b *ByteBuffer) WriteByte(c byte) error { return b.buf.WriteByte(c) }

func (b *ByteBuffer) WriteString(s string) (int, error) { return b.buf.WriteString(s) }

func (b *ByteBuffer) Len() int { return b.buf.Len() }

func (b *ByteBuffer) Cap() int { return b.buf.Cap() }

func (b *ByteBuffer) Reset() { b.buf.Reset() }

// Grow reserves capacity for n additional bytes.
func (b *ByteBuffer) Grow(n int) { b.buf.Grow(n) }

// PoolStats counts pool traffic, for tests and debugging.
type PoolStats struct {
	SampleGets     int64
	SamplePuts     int64
	ByteBufferGets int64
	ByteBufferPuts int64
}

var stats PoolStats

// Stats returns a snapshot of the pool counters.
func Stats() PoolStats {
	return PoolStats{
		SampleGets:     atomic.LoadInt64(&stats.SampleGets),
		SamplePuts:     atomic.LoadInt64(&stats.SamplePuts),
		ByteBufferGets: atomic.LoadInt64(&stats.ByteBufferGets),
		ByteBufferPuts: atomic.LoadInt64(&stats.ByteBufferPuts),
	}
}
