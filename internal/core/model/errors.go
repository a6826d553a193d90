package model

import "fmt"

// ConfigurationError reports malformed caller-supplied options, such as a
// rename map that does not cover the selected fields. Operations abort on it
// immediately instead of degrading.
type ConfigurationError struct {
	Op     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Op + ": " + e.Reason
}

func NewConfigurationError(op, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
