package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// RunDirect executes the program with the given stdin/stdout bindings and no
// resource sandbox. The returned error is nil on a clean zero exit, a *Error
// for judgeable failures (timeout, signal, non-zero exit), ErrInterrupted or
// a ctx error when the harness is shutting down, and anything else for
// harness-internal failures.
func RunDirect(ctx context.Context, executable string, stdin, stdout *os.File, timeout time.Duration) (Execution, error) {
	return runBare(ctx, executable, stdin, stdout, timeout, "program")
}

// RunChecker is RunDirect with failure diagnostics that name the checker
// instead of the program under test.
func RunChecker(ctx context.Context, executable string, stdin, stdout *os.File, timeout time.Duration) (Execution, error) {
	return runBare(ctx, executable, stdin, stdout, timeout, "checker")
}

func runBare(ctx context.Context, executable string, stdin, stdout *os.File, timeout time.Duration, subject string) (Execution, error) {
	cmd := exec.Command(executable)
	cmd.Stdin = stdin
	cmd.Stdout = stdout

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Execution{}, fmt.Errorf("starting %s: %w", executable, err)
	}

	waitErr, outcome := waitChild(ctx, cmd, timeout)
	switch outcome {
	case waitCanceled:
		return Execution{TimeSec: time.Since(start).Seconds()}, waitErr
	case waitTimedOut:
		// elapsed time is reported as the limit, not measured
		return Execution{TimeSec: timeout.Seconds()}, &Error{Kind: ErrTimedOut}
	}

	elapsed := time.Since(start).Seconds()
	return Execution{TimeSec: elapsed}, classifyExit(ctx, waitErr, subject)
}
