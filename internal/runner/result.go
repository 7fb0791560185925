// Package runner executes compiled programs, either directly or under the
// sio2jail sandbox, and classifies the outcome of each run.
package runner

import (
	"errors"
	"fmt"
)

// Execution carries best-effort resource usage for a run. It is produced even
// when the run failed. MemoryKiB is nil when memory was not measured; direct
// (unsandboxed) runs never measure it.
type Execution struct {
	TimeSec   float64
	MemoryKiB *int64
}

// ErrInterrupted reports that the child died from the interrupt signal while
// the harness itself is being torn down. The worker that sees it must drop
// the test without surfacing a verdict.
var ErrInterrupted = errors.New("run interrupted by harness shutdown")

// ErrorKind enumerates the ways a run can fail to be judged as pass/fail.
type ErrorKind int

const (
	ErrRuntime ErrorKind = iota
	ErrTimedOut
	ErrInvalidOutput
	ErrMemoryLimit
	ErrSio2jail
	ErrCheckerFormat
)

func (k ErrorKind) String() string {
	switch k {
	case ErrRuntime:
		return "runtime error"
	case ErrTimedOut:
		return "time limit exceeded"
	case ErrInvalidOutput:
		return "invalid output"
	case ErrMemoryLimit:
		return "memory limit exceeded"
	case ErrSio2jail:
		return "sio2jail error"
	case ErrCheckerFormat:
		return "incorrect checker format"
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// Error is the closed set of execution failures. Consumers extract it with
// errors.As and switch on Kind; any other error coming out of a runner is a
// harness-internal failure or a cancellation.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Message)
}

func runtimeErrorf(format string, args ...any) *Error {
	return &Error{Kind: ErrRuntime, Message: fmt.Sprintf(format, args...)}
}

func sio2jailErrorf(format string, args ...any) *Error {
	return &Error{Kind: ErrSio2jail, Message: fmt.Sprintf(format, args...)}
}
