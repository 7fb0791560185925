package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"
)

type waitOutcome int

const (
	waitFinished waitOutcome = iota
	waitTimedOut
	waitCanceled
)

// waitChild waits for an already-started command, killing it when the
// wall-clock timeout elapses or ctx fires. On waitFinished the returned error
// is the raw cmd.Wait result, still unclassified.
func waitChild(ctx context.Context, cmd *exec.Cmd, timeout time.Duration) (error, waitOutcome) {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err(), waitCanceled
	case <-timer.C:
		_ = cmd.Process.Kill()
		<-done
		return nil, waitTimedOut
	case err := <-done:
		return err, waitFinished
	}
}

// classifyExit turns a cmd.Wait error into the runner's error taxonomy.
// The subject names what was running ("program" or "checker") in diagnostics.
// A child killed by SIGINT means the whole process group received the user's
// interrupt; the run is dropped instead of being judged.
func classifyExit(ctx context.Context, waitErr error, subject string) error {
	if waitErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return fmt.Errorf("waiting for process: %w", waitErr)
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		if ws.Signal() == syscall.SIGINT {
			if err := ctx.Err(); err != nil {
				return err
			}
			return ErrInterrupted
		}
		return runtimeErrorf("- the process was terminated with the following error:\n%s", exitErr.String())
	}
	return runtimeErrorf("- the %s returned a non-zero return code: %d", subject, exitErr.ExitCode())
}
