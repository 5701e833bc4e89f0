// Copyright (C) 2026  SPWM Host Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package pool

import "testing"

func TestGetSamplesZeroed(t *testing.T) {
	buf := GetSamples(64)
	if len(buf) != 64 {
		t.Fatalf("len = %d, want 64", len(buf))
	}
	for i := range buf {
		buf[i] = float64(i)
	}
	PutSamples(buf)

	buf = GetSamples(64)
	defer PutSamples(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("recycled buffer not zeroed at %d: %v", i, v)
		}
	}
}

func TestGetSamplesDistinctSizes(t *testing.T) {
	small := GetSamples(16)
	large := GetSamples(1024)
	if len(small) != 16 || len(large) != 1024 {
		t.Fatalf("lens = %d/%d, want 16/1024", len(small), len(large))
	}
	PutSamples(small)
	PutSamples(large)

	if got := GetSamples(16); len(got) != 16 {
		t.Errorf("len = %d, want 16", len(got))
	}
}

func TestByteBufferReuse(t *testing.T) {
	b := GetByteBuffer()
	b.WriteString("frame")
	if b.Len() != 5 {
		t.Errorf("Len = %d, want 5", b.Len())
	}
	PutByteBuffer(b)

	b = GetByteBuffer()
	defer PutByteBuffer(b)
	if b.Len() != 0 {
		t.Errorf("recycled buffer not reset: Len = %d", b.Len())
	}
}

func TestByteBufferWrite(t *testing.T) {
	b := GetByteBuffer()
	defer PutByteBuffer(b)

	b.Grow(16)
	if _, err := b.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := b.WriteByte(4); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	got := b.Bytes()
	want := []byte{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Bytes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Bytes = %v, want %v", got, want)
		}
	}
}

func TestStatsCount(t *testing.T) {
	before := Stats()
	b := GetByteBuffer()
	PutByteBuffer(b)
	after := Stats()
	if after.ByteBufferGets <= before.ByteBufferGets {
		t.Errorf("gets did not advance: %d -> %d",
			before.ByteBufferGets, after.ByteBufferGets)
	}
	if after.ByteBufferPuts <= before.ByteBufferPuts {
		t.Errorf("puts did not advance: %d -> %d",
			before.ByteBufferPuts, after.ByteBufferPuts)
	}
}
