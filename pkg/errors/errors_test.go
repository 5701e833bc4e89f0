// Copyright (C) 2026  SPWM Host Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrAnalysis, "empty table").SetSection("analysis")
	assert.Equal(t, "[ANALYSIS:analysis] empty table", err.Error())

	err = InvalidParameterError("mf", "must be a multiple of 4")
	assert.Equal(t, "[INVALID_PARAMETER:mf] parameter 'mf': must be a multiple of 4",
		err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("read /dev/ttyUSB0: input/output error")
	err := Wrap(cause, ErrStreamDevice, "write frame")

	require.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrStreamDevice))
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsMatchesCode(t *testing.T) {
	err := StreamCRCError(0xdeadbeef, 0x12345678)
	assert.True(t, Is(err, ErrStreamCRC))
	assert.False(t, Is(err, ErrStreamDevice))
	assert.False(t, Is(stderrors.New("plain"), ErrStreamCRC))
	assert.False(t, Is(nil, ErrStreamCRC))
}

func TestCategoryHelpers(t *testing.T) {
	assert.True(t, IsParameter(InvalidParameterError("ma", "out of range")))
	assert.True(t, IsParameter(BufferSizeError("h1_table", 10, 512)))
	assert.False(t, IsParameter(StreamFrameError("bad magic")))

	assert.True(t, IsConfig(ConfigSectionError("inverter")))
	assert.True(t, IsConfig(ConfigOptionError("inverter", "signal_freq")))
	assert.False(t, IsConfig(RuntimeError("boom")))

	assert.True(t, IsStream(StreamDeviceError("/dev/ttyUSB0", "no such device")))
	assert.True(t, IsStream(StreamFrameError("short payload")))
	assert.False(t, IsStream(New(ErrAnalysis, "nope")))
}

func TestBufferSizeContext(t *testing.T) {
	err := BufferSizeError("h2_table", 8, 512)
	require.NotNil(t, err.Context)
	assert.Equal(t, 8, err.Context["got"])
	assert.Equal(t, 512, err.Context["want"])
}

func TestConfigTypeErrorWraps(t *testing.T) {
	cause := fmt.Errorf("strconv.ParseUint: invalid syntax")
	err := ConfigTypeError("inverter", "mf", "abc", "uint32", cause)
	assert.True(t, IsConfig(err))
	assert.Equal(t, "inverter", err.Section)
	assert.Equal(t, "mf", err.Option)
	require.ErrorIs(t, err, cause)
}

func TestRecoverPanicWithoutPanic(t *testing.T) {
	assert.Nil(t, RecoverPanic())
}
