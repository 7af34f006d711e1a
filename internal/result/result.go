// Package result implements the uniform result/error kind described in the
// system's error handling design: a facility code, an error code, and an
// error/warning bit pair, packed the way tsl/result.h's aresult_t is packed,
// exposed as a normal Go error so errors.Is/errors.As and %w wrapping work.
package result

import (
	"errors"
	"fmt"
)

// Code enumerates the error kinds the core must distinguish.
type Code int

const (
	OK Code = iota
	OutOfMemory
	InvalidArgument
	NotFound
	Busy
	InvalidState
	Empty
	NoEntity
	Overflow
	Full
	EndOfFile
	Rejected
	Timeout
	Done
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case OutOfMemory:
		return "out-of-memory"
	case InvalidArgument:
		return "invalid-argument"
	case NotFound:
		return "not-found"
	case Busy:
		return "busy"
	case InvalidState:
		return "invalid-state"
	case Empty:
		return "empty"
	case NoEntity:
		return "no-entity"
	case Overflow:
		return "overflow"
	case Full:
		return "full"
	case EndOfFile:
		return "end-of-file"
	case Rejected:
		return "rejected"
	case Timeout:
		return "timeout"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Result is the uniform result kind. It implements error so it composes with
// the rest of Go's error handling, but carries the facility/code/warning
// structure spec'd for the core.
type Result struct {
	Facility string
	Code     Code
	Warning  bool
	Msg      string
}

func (r *Result) Error() string {
	if r.Msg != "" {
		return fmt.Sprintf("%s: %s: %s", r.Facility, r.Code, r.Msg)
	}
	return fmt.Sprintf("%s: %s", r.Facility, r.Code)
}

// New builds an error-flagged Result.
func New(facility string, code Code, msg string) *Result {
	return &Result{Facility: facility, Code: code, Msg: msg}
}

// Newf builds an error-flagged Result with a formatted message.
func Newf(facility string, code Code, format string, args ...any) *Result {
	return New(facility, code, fmt.Sprintf(format, args...))
}

// Warn builds a warning-flagged Result. Warnings are still errors in the Go
// sense (they satisfy the error interface) but callers can distinguish them
// with IsWarning.
func Warn(facility string, code Code, msg string) *Result {
	return &Result{Facility: facility, Code: code, Warning: true, Msg: msg}
}

// IsWarning reports whether err is a *Result with the warning bit set.
func IsWarning(err error) bool {
	var r *Result
	if errors.As(err, &r) {
		return r.Warning
	}
	return false
}

// CodeOf extracts the Code from err, if err is (or wraps) a *Result.
func CodeOf(err error) (Code, bool) {
	var r *Result
	if errors.As(err, &r) {
		return r.Code, true
	}
	return OK, false
}
