// Unified error handling for the SPWM host
//
// Copyright (C) 2026  SPWM Host Authors
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import (
	"fmt"
	"runtime"
)

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Parameter errors
	ErrInvalidParameter ErrorCode = "INVALID_PARAMETER"
	ErrBufferSize       ErrorCode = "BUFFER_SIZE"

	// Configuration errors
	ErrConfigSection    ErrorCode = "CONFIG_SECTION"
	ErrConfigOption     ErrorCode = "CONFIG_OPTION"
	ErrConfigValidation ErrorCode = "CONFIG_VALIDATION"
	ErrConfigType       ErrorCode = "CONFIG_TYPE"

	// Streaming errors
	ErrStreamDevice ErrorCode = "STREAM_DEVICE"
	ErrStreamFrame  ErrorCode = "STREAM_FRAME"
	ErrStreamCRC    ErrorCode = "STREAM_CRC"

	// Export errors
	ErrExportWAV ErrorCode = "EXPORT_WAV"

	// Analysis errors
	ErrAnalysis ErrorCode = "ANALYSIS"

	// Runtime errors
	ErrRuntime     ErrorCode = "RUNTIME"
	ErrRuntimeInit ErrorCode = "RUNTIME_INIT"
)

// HostError is the unified error type for the host tool
type HostError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Section is the config section or component context
	Section string

	// Option is the config option name (if applicable)
	Option string

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *HostError) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Code, e.Option, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Code, e.Section, e.Message)
}

// Unwrap returns the underlying error
func (e *HostError) Unwrap() error {
	return e.Err
}

// SetSection sets the context section
func (e *HostError) SetSection(section string) *HostError {
	e.Section = section
	return e
}

// SetOption sets the config option
func (e *HostError) SetOption(option string) *HostError {
	e.Option = option
	return e
}

// SetContext adds additional context
func (e *HostError) SetContext(key string, value interface{}) *HostError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// New creates a new HostError
func New(code ErrorCode, message string) *HostError {
	return &HostError{
		Code:    code,
		Message: message,
	}
}

// Parameter errors

// InvalidParameterError creates an error for a rejected synthesis parameter
func InvalidParameterError(param string, reason string) *HostError {
	return New(ErrInvalidParameter, fmt.Sprintf("parameter '%s': %s", param, reason)).
		SetOption(param)
}

// BufferSizeError creates an error for a mis-sized output buffer
func BufferSizeError(name string, got, want int) *HostError {
	return New(ErrBufferSize, fmt.Sprintf("buffer '%s' has length %d, need exactly %d", name, got, want)).
		SetOption(name).
		SetContext("got", got).
		SetContext("want", want)
}

// Config errors

// ConfigSectionError creates an error for missing config section
func ConfigSectionError(section string) *HostError {
	return New(ErrConfigSection, fmt.Sprintf("section '%s' not found", section)).
		SetSection(section)
}

// ConfigOptionError creates an error for missing or invalid config option
func ConfigOptionError(section, option string) *HostError {
	return New(ErrConfigOption, fmt.Sprintf("option '%s' not found in section '%s'", option, section)).
		SetSection(section).
		SetOption(option)
}

// ConfigValidationError creates an error for config validation failure
func ConfigValidationError(section, option string, reason string) *HostError {
	return New(ErrConfigValidation, fmt.Sprintf("option '%s' in section '%s': %s", option, section, reason)).
		SetSection(section).
		SetOption(option)
}

// ConfigTypeError creates an error for config type conversion failure
func ConfigTypeError(section, option, value string, targetType string, err error) *HostError {
	return Wrap(err, ErrConfigType, fmt.Sprintf("option '%s' in section '%s': failed to parse '%s' as %s", option, section, value, targetType)).
		SetSection(section).
		SetOption(option)
}

// Streaming errors

// StreamDeviceError creates an error for an output device failure
func StreamDeviceError(device string, reason string) *HostError {
	return New(ErrStreamDevice, fmt.Sprintf("device '%s': %s", device, reason)).
		SetContext("device", device)
}

// StreamFrameError creates an error for a malformed table frame
func StreamFrameError(reason string) *HostError {
	return New(ErrStreamFrame, reason)
}

// StreamCRCError creates an error for a frame checksum mismatch
func StreamCRCError(got, want uint32) *HostError {
	return New(ErrStreamCRC, fmt.Sprintf("frame CRC mismatch: got %08x, want %08x", got, want)).
		SetContext("got", got).
		SetContext("want", want)
}

// Runtime errors

// RuntimeError creates a general runtime error
func RuntimeError(message string) *HostError {
	return New(ErrRuntime, message)
}

// RuntimeErrorInit creates an error for initialization failure
func RuntimeErrorInit(component string, reason string) *HostError {
	return New(ErrRuntimeInit, fmt.Sprintf("failed to initialize %s: %s", component, reason))
}

// RecoverPanic safely recovers from panic and converts to error
func RecoverPanic() *HostError {
	if r := recover(); r != nil {
		var err error
		switch x := r.(type) {
		case string:
			err = RuntimeError(fmt.Sprintf("panic: %s", x))
		case error:
			err = RuntimeError(x.Error())
		case runtime.Error:
			err = RuntimeError(x.Error())
		default:
			err = RuntimeError(fmt.Sprintf("panic: %v", x))
		}
		return err.(*HostError)
	}
	return nil
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	if hostErr, ok := err.(*HostError); ok {
		return hostErr.Code == code
	}
	return false
}

// IsParameter checks if error is a parameter-precondition error
func IsParameter(err error) bool {
	return Is(err, ErrInvalidParameter) || Is(err, ErrBufferSize)
}

// IsConfig checks if error is a config error
func IsConfig(err error) bool {
	return Is(err, ErrConfigSection) ||
		Is(err, ErrConfigOption) ||
		Is(err, ErrConfigValidation) ||
		Is(err, ErrConfigType)
}

// IsStream checks if error is a streaming error
func IsStream(err error) bool {
	return Is(err, ErrStreamDevice) ||
		Is(err, ErrStreamFrame) ||
		Is(err, ErrStreamCRC)
}
