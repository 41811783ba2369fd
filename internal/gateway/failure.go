package gateway

import (
	"errors"
	"fmt"
)

// Reason classifies why a gateway call produced no data.
type Reason string

const (
	ReasonRejected    Reason = "rejected"
	ReasonExec        Reason = "exec"
	ReasonOutputLimit Reason = "output_limit"
	ReasonTimeout     Reason = "timeout"
)

// Failure is the sentinel result of a gateway call that produced no usable
// output. Callers treat it the same as "no data yet".
type Failure struct {
	Reason  Reason
	Command string
	Cause   error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("gateway %s: %q: %v", f.Reason, f.Command, f.Cause)
	}
	return fmt.Sprintf("gateway %s: %q", f.Reason, f.Command)
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Cause
}

// IsFailure reports whether err is (or wraps) a gateway Failure.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// ReasonOf returns the Failure reason in err's chain, or "" if there is none.
func ReasonOf(err error) Reason {
	var f *Failure
	if errors.As(err, &f) {
		return f.Reason
	}
	return ""
}
