package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

// sio2jail runs the target without container-style isolation; the harness
// only needs resource accounting.
var sio2jailFlags = []string{
	"-f", "3",
	"-o", "oiaug",
	"--mount-namespace", "off",
	"--pid-namespace", "off",
	"--uts-namespace", "off",
	"--ipc-namespace", "off",
	"--net-namespace", "off",
	"--capability-drop", "off",
	"--user-namespace", "off",
	"-s",
}

// glibc aborts with this exact message when the target exhausts the address
// space sio2jail granted it; it surfaces on stderr instead of in the report.
const oomAbortMessage = "terminate called after throwing an instance of 'std::bad_alloc'\n" +
	"  what():  std::bad_alloc\n"

// Run executes the program under sio2jail with the given memory limit,
// binding the machine-readable report to file descriptor 3 via reportPath and
// capturing sio2jail's own stderr at stderrPath. Both paths are scratch files
// owned by the caller. Classification follows the report; non-empty stderr is
// an infrastructure failure of the sandboxed run itself, except the
// recognized out-of-memory abort. Parsed time and memory are reported even on
// failure classifications.
func (s *Sio2jail) Run(
	ctx context.Context,
	executable string,
	stdin, stdout *os.File,
	timeout time.Duration,
	memoryLimitKiB int64,
	reportPath, stderrPath string,
) (Execution, error) {
	reportFile, err := os.Create(reportPath)
	if err != nil {
		return Execution{}, fmt.Errorf("creating sio2jail report file: %w", err)
	}
	defer reportFile.Close()

	stderrFile, err := os.Create(stderrPath)
	if err != nil {
		return Execution{}, fmt.Errorf("creating sio2jail stderr file: %w", err)
	}
	defer stderrFile.Close()

	args := append([]string{}, sio2jailFlags...)
	args = append(args, "-m", strconv.FormatInt(memoryLimitKiB, 10), "--", executable)

	cmd := exec.Command(s.path, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderrFile
	// ExtraFiles[0] becomes descriptor 3 in the child
	cmd.ExtraFiles = []*os.File{reportFile}

	if err := cmd.Start(); err != nil {
		return Execution{}, fmt.Errorf("starting sio2jail: %w", err)
	}

	waitErr, outcome := waitChild(ctx, cmd, timeout)
	switch outcome {
	case waitCanceled:
		return Execution{}, waitErr
	case waitTimedOut:
		return Execution{TimeSec: timeout.Seconds()}, &Error{Kind: ErrTimedOut}
	}

	stderrContent, err := os.ReadFile(stderrPath)
	if err != nil {
		return Execution{}, fmt.Errorf("reading sio2jail stderr: %w", err)
	}
	if len(stderrContent) > 0 {
		if string(stderrContent) == oomAbortMessage {
			limit := memoryLimitKiB
			return Execution{MemoryKiB: &limit}, &Error{Kind: ErrMemoryLimit}
		}
		return Execution{}, sio2jailErrorf("%s", string(stderrContent))
	}

	rawReport, err := os.ReadFile(reportPath)
	if err != nil {
		return Execution{}, fmt.Errorf("reading sio2jail report: %w", err)
	}
	rep, repErr := parseReport(string(rawReport))
	if repErr != nil {
		return Execution{}, repErr
	}

	measured := Execution{TimeSec: rep.timeSec, MemoryKiB: &rep.memoryKiB}

	// an abnormal exit here belongs to sio2jail itself, not the target
	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return measured, fmt.Errorf("waiting for sio2jail: %w", waitErr)
		}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			if ws.Signal() == syscall.SIGINT {
				if err := ctx.Err(); err != nil {
					return measured, err
				}
				return measured, ErrInterrupted
			}
			return measured, runtimeErrorf("- the process was terminated with the following error:\n%s", exitErr.String())
		}
		return measured, sio2jailErrorf("sio2jail returned a non-zero return code: %d", exitErr.ExitCode())
	}

	if stErr := rep.classify(); stErr != nil {
		return measured, stErr
	}
	return measured, nil
}
