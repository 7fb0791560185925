package judge_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/klauspost/compress/zstd"
	"github.com/sio2tools/stester/internal/judge"
	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/tempfiles"
	"github.com/sio2tools/stester/internal/verdict"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir  string
	pool *tempfiles.Pool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pool := tempfiles.NewPool(8)
	require.NoError(t, pool.Fill(t.TempDir()))
	return &fixture{dir: t.TempDir(), pool: pool}
}

func (f *fixture) writeExecutable(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(f.dir, "solution")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func (f *fixture) writeTest(t *testing.T, name, input, answer string) judge.Test {
	t.Helper()
	inPath := filepath.Join(f.dir, name+".in")
	require.NoError(t, os.WriteFile(inPath, []byte(input), 0o644))
	if answer != "" {
		require.NoError(t, os.WriteFile(filepath.Join(f.dir, name+".out"), []byte(answer), 0o644))
	}
	return judge.Test{Name: name, InputPath: inPath}
}

func (f *fixture) judge(t *testing.T, exe string) *judge.Judge {
	t.Helper()
	return judge.New(judge.Options{
		Executable: exe,
		OutputDir:  f.dir,
		OutExt:     ".out",
		Timeout:    5 * time.Second,
	}, f.pool)
}

func TestRunTestCorrect(t *testing.T) {
	f := newFixture(t)
	exe := f.writeExecutable(t, "cat\n")
	test := f.writeTest(t, "t1", "hello\n", "hello\n")

	v, res, err := f.judge(t, exe).RunTest(context.Background(), test)
	require.NoError(t, err)
	require.Equal(t, verdict.Correct, v.Kind)
	require.Greater(t, res.TimeSec, 0.0)
	require.Equal(t, f.pool.Capacity(), f.pool.Available(), "all scratch paths returned")
}

func TestRunTestCorrectModuloTrailingWhitespace(t *testing.T) {
	f := newFixture(t)
	exe := f.writeExecutable(t, "printf 'a  \\nb\\n\\n'\n")
	test := f.writeTest(t, "t1", "", "a\nb\n")

	v, _, err := f.judge(t, exe).RunTest(context.Background(), test)
	require.NoError(t, err)
	require.Equal(t, verdict.Correct, v.Kind)
}

func TestRunTestIncorrectCarriesDiff(t *testing.T) {
	color.NoColor = true
	f := newFixture(t)
	exe := f.writeExecutable(t, "printf '1\\n9\\n3\\n'\n")
	test := f.writeTest(t, "t1", "", "1\n2\n3\n")

	v, _, err := f.judge(t, exe).RunTest(context.Background(), test)
	require.NoError(t, err)
	require.Equal(t, verdict.Incorrect, v.Kind)
	require.Contains(t, v.Comment, "Output file")
	require.Contains(t, v.Comment, "9")
	require.Equal(t, f.pool.Capacity(), f.pool.Available())
}

func TestRunTestNoOutputFile(t *testing.T) {
	f := newFixture(t)
	exe := f.writeExecutable(t, "cat\n")
	test := f.writeTest(t, "t1", "x\n", "")

	v, _, err := f.judge(t, exe).RunTest(context.Background(), test)
	require.NoError(t, err)
	require.Equal(t, verdict.NoOutputFile, v.Kind)
}

func TestRunTestProgramCrash(t *testing.T) {
	f := newFixture(t)
	exe := f.writeExecutable(t, "exit 5\n")
	test := f.writeTest(t, "t1", "", "whatever\n")

	v, _, err := f.judge(t, exe).RunTest(context.Background(), test)
	require.NoError(t, err)
	require.Equal(t, verdict.ProgramError, v.Kind)
	require.Equal(t, runner.ErrRuntime, v.Err.Kind)
	require.Equal(t, f.pool.Capacity(), f.pool.Available(), "scratch paths returned on the error path too")
}

func TestRunTestTimeout(t *testing.T) {
	f := newFixture(t)
	exe := f.writeExecutable(t, "sleep 30\n")
	test := f.writeTest(t, "t1", "", "x\n")

	j := judge.New(judge.Options{
		Executable: exe,
		OutputDir:  f.dir,
		OutExt:     ".out",
		Timeout:    150 * time.Millisecond,
	}, f.pool)

	v, res, err := j.RunTest(context.Background(), test)
	require.NoError(t, err)
	require.Equal(t, verdict.ProgramError, v.Kind)
	require.Equal(t, runner.ErrTimedOut, v.Err.Kind)
	require.InDelta(t, 0.15, res.TimeSec, 1e-9)
}

func TestRunTestWithChecker(t *testing.T) {
	f := newFixture(t)
	exe := f.writeExecutable(t, "echo 7\n")
	test := f.writeTest(t, "t1", "3 4\n", "")

	checkerPath := filepath.Join(f.dir, "checker")
	require.NoError(t, os.WriteFile(checkerPath,
		[]byte("#!/bin/sh\nif grep -q 7; then echo C; else echo 'I: wrong sum'; fi\n"), 0o755))

	j := judge.New(judge.Options{
		Executable:  exe,
		CheckerPath: checkerPath,
		Timeout:     5 * time.Second,
	}, f.pool)

	v, _, err := j.RunTest(context.Background(), test)
	require.NoError(t, err)
	require.Equal(t, verdict.Correct, v.Kind)
	require.Equal(t, f.pool.Capacity(), f.pool.Available())
}

func TestRunTestZstCompressedFiles(t *testing.T) {
	f := newFixture(t)
	exe := f.writeExecutable(t, "cat\n")

	writeZst := func(path, content string) {
		out, err := os.Create(path)
		require.NoError(t, err)
		enc, err := zstd.NewWriter(out)
		require.NoError(t, err)
		_, err = enc.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, enc.Close())
		require.NoError(t, out.Close())
	}
	writeZst(filepath.Join(f.dir, "t1.in.zst"), "packed\n")
	writeZst(filepath.Join(f.dir, "t1.out.zst"), "packed\n")

	tests, err := judge.DiscoverTests(f.dir, ".in")
	require.NoError(t, err)
	require.Len(t, tests, 1)
	require.Equal(t, "t1", tests[0].Name)

	v, _, err := f.judge(t, exe).RunTest(context.Background(), tests[0])
	require.NoError(t, err)
	require.Equal(t, verdict.Correct, v.Kind)
}

func TestDiscoverTestsSortedAndDeduplicated(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.in", "a.in", "a.out", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	tests, err := judge.DiscoverTests(dir, ".in")
	require.NoError(t, err)
	require.Len(t, tests, 2)
	require.Equal(t, "a", tests[0].Name)
	require.Equal(t, "b", tests[1].Name)
}
