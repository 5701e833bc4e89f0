package config

import (
	"fmt"

	"spwm-host/pkg/errors"
)

// ErrMissingSection reports a section that is required but absent.
func ErrMissingSection(section string) error {
	return errors.ConfigSectionError(section)
}

// ErrMissingOption reports an option that is required but absent.
func ErrMissingOption(section, option string) error {
	return errors.ConfigOptionError(section, option)
}

// ErrInvalidValue reports an option value that failed type conversion.
func ErrInvalidValue(section, option, value, targetType string) error {
	return errors.ConfigTypeError(section, option, value, targetType,
		fmt.Errorf("cannot parse %q", value))
}

// ErrValidation reports an option value outside its permitted range.
func ErrValidation(section, option, reason string) error {
	return errors.ConfigValidationError(section, option, reason)
}
