package domain

import "errors"

// Sentinel errors identifying each top-level analysis failure kind. Callers
// use errors.Is against these, never string matching.
var (
	ErrDissectorUnavailable = errors.New("dissector binary not found or not executable")
	ErrDissectorTimeout     = errors.New("dissector exceeded its time budget")
	ErrInvalidCapture       = errors.New("capture file is not a valid capture")
	ErrInvalidInput         = errors.New("input failed validation")
	ErrAnalysisNotFound     = errors.New("analysis not found")
	ErrLLMUnavailable       = errors.New("narrative generator unavailable")
)

// DissectorError wraps a non-zero exit or malformed-output failure from the
// external capture dissector, keeping the failed operation and its stderr for
// diagnostics without leaking them into the sentinel comparison.
type DissectorError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *DissectorError) Error() string {
	if e.Stderr == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error() + ": " + e.Stderr
}

func (e *DissectorError) Unwrap() error { return e.Err }

// PersistenceError wraps a failure reading or writing the analysis store
// (JSON tree or index).
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence " + e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// ValidationError reports a single field that failed validation; the
// fingerprint adapter's ParseMAC returns it for malformed MAC addresses.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return "validation failed for " + e.Field + " (" + e.Value + "): " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }
