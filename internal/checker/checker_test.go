package checker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sio2tools/stester/internal/checker"
	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/verdict"
	"github.com/stretchr/testify/require"
)

func writeChecker(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checker")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func scratchPaths(t *testing.T) (in, out string) {
	t.Helper()
	dir := t.TempDir()
	return filepath.Join(dir, "chk-in"), filepath.Join(dir, "chk-out")
}

func verify(t *testing.T, checkerPath string) verdict.Verdict {
	t.Helper()
	in, out := scratchPaths(t)
	v, err := checker.Verify(context.Background(), "test01", checkerPath,
		"3 4", "7", in, out, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, "test01", v.TestName)
	return v
}

func TestVerifyCorrect(t *testing.T) {
	v := verify(t, writeChecker(t, "echo C\n"))
	require.Equal(t, verdict.Correct, v.Kind)
}

func TestVerifyIncorrectWithMessage(t *testing.T) {
	v := verify(t, writeChecker(t, "echo 'I: bad'\n"))
	require.Equal(t, verdict.Incorrect, v.Kind)
	require.Equal(t, "bad", v.Comment)
}

func TestVerifyBareIncorrect(t *testing.T) {
	v := verify(t, writeChecker(t, "echo I\n"))
	require.Equal(t, verdict.Incorrect, v.Kind)
	require.Empty(t, v.Comment)
}

func TestVerifyEmptyOutputIsFormatError(t *testing.T) {
	v := verify(t, writeChecker(t, "exit 0\n"))
	require.Equal(t, verdict.CheckerError, v.Kind)
	require.Equal(t, runner.ErrCheckerFormat, v.Err.Kind)
}

func TestVerifyUnknownFirstCharIsFormatError(t *testing.T) {
	v := verify(t, writeChecker(t, "echo X\n"))
	require.Equal(t, verdict.CheckerError, v.Kind)
	require.Equal(t, runner.ErrCheckerFormat, v.Err.Kind)
}

func TestVerifyCheckerSeesInputAndOutput(t *testing.T) {
	// accept only when stdin is exactly "3 4\n7"
	body := "content=$(cat)\nif [ \"$content\" = '3 4\n7' ]; then echo C; else echo 'I: wrong feed'; fi\n"
	v := verify(t, writeChecker(t, body))
	require.Equal(t, verdict.Correct, v.Kind)
}

func TestVerifyCheckerCrashIsCheckerError(t *testing.T) {
	v := verify(t, writeChecker(t, "exit 2\n"))
	require.Equal(t, verdict.CheckerError, v.Kind)
	require.Equal(t, runner.ErrRuntime, v.Err.Kind)
	require.Contains(t, v.Err.Message, "the checker returned a non-zero return code: 2")
}

func TestVerifyCheckerTimeoutIsCheckerError(t *testing.T) {
	in, out := scratchPaths(t)
	v, err := checker.Verify(context.Background(), "slow", writeChecker(t, "sleep 30\n"),
		"in", "out", in, out, 100*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, verdict.CheckerError, v.Kind)
	require.Equal(t, runner.ErrTimedOut, v.Err.Kind)
}
