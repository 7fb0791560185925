package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/sio2tools/stester/internal/tempfiles"
)

// ErrCompilerNotFound reports that the first token of the compile command
// does not resolve to an executable.
var ErrCompilerNotFound = errors.New("the compiler was not found")

// Compile runs the compile command template against sourcePath, producing an
// executable under scratchDir. The template carries <IN> and <OUT>
// placeholders and is tokenized with shell-style quoting, so arguments with
// embedded spaces are supported. Compiler stderr is captured and returned as
// the failure message on a non-zero exit. On success it returns the
// executable path and the elapsed wall-clock compile time in seconds.
func Compile(ctx context.Context, sourcePath, scratchDir string, timeout time.Duration, template string) (string, float64, error) {
	stem := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	executable := filepath.Join(scratchDir, stem+".o")

	cmdline := strings.ReplaceAll(template, "<IN>", sourcePath)
	cmdline = strings.ReplaceAll(cmdline, "<OUT>", executable)
	argv, err := shlex.Split(cmdline)
	if err != nil {
		return "", 0, fmt.Errorf("tokenizing compile command %q: %w", cmdline, err)
	}
	if len(argv) == 0 {
		return "", 0, fmt.Errorf("compile command %q is empty", template)
	}

	stderr, err := tempfiles.CreateTempFile()
	if err != nil {
		return "", 0, fmt.Errorf("creating compiler output file: %w", err)
	}
	defer stderr.Close()

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stderr = stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", 0, ErrCompilerNotFound
		}
		return "", 0, fmt.Errorf("starting compiler: %w", err)
	}

	waitErr, outcome := waitChild(ctx, cmd, timeout)
	switch outcome {
	case waitCanceled:
		return "", 0, waitErr
	case waitTimedOut:
		return "", 0, errors.New("compilation timed out")
	}
	elapsed := time.Since(start).Seconds()

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return "", 0, fmt.Errorf("waiting for compiler: %w", waitErr)
		}
		diagnostics, err := readBack(stderr)
		if err != nil {
			return "", 0, fmt.Errorf("reading compiler output: %w", err)
		}
		return "", 0, fmt.Errorf("compilation failed:\n%s", diagnostics)
	}

	return executable, elapsed, nil
}

func readBack(f *os.File) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	data, err := io.ReadAll(f)
	return string(data), err
}
