package model

import "fmt"

// ConfigError is a fatal configuration problem: a malformed band schedule, a
// zero-sum allocation denominator, missing reference data. A run aborts on
// ConfigError before producing any output. Record-level problems (unmatched
// postcodes, malformed prices) are not ConfigErrors; they are excluded and
// tallied instead.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
