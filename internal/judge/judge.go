// Package judge runs a single dispatched test end to end: scratch file
// checkout, direct or sandboxed execution, output comparison or checker
// delegation, scratch file checkin.
package judge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/sio2tools/stester/internal/checker"
	"github.com/sio2tools/stester/internal/diff"
	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/tempfiles"
	"github.com/sio2tools/stester/internal/verdict"
)

// Test identifies one dispatched test case.
type Test struct {
	Name      string
	InputPath string
}

// Options configures a Judge for one executable.
type Options struct {
	Executable  string
	CheckerPath string // empty: compare against reference outputs
	OutputDir   string
	OutExt      string
	Timeout     time.Duration
	// Sandbox enables sio2jail execution with MemoryLimitKiB enforced.
	Sandbox        *runner.Sio2jail
	MemoryLimitKiB int64
}

// Judge shares a scratch pool between concurrently running tests. It holds
// no per-test state; RunTest is safe to call from many goroutines.
type Judge struct {
	opts Options
	pool *tempfiles.Pool
}

func New(opts Options, pool *tempfiles.Pool) *Judge {
	return &Judge{opts: opts, pool: pool}
}

// RunTest executes one test and judges the result. The returned error is
// non-nil only for harness-internal failures and cancellation; in that case
// no verdict is produced and the test must not be scored. Every scratch path
// acquired here is released before returning, on every path.
func (j *Judge) RunTest(ctx context.Context, test Test) (verdict.Verdict, runner.Execution, error) {
	stdin, err := openInput(test.InputPath)
	if err != nil {
		return verdict.Verdict{}, runner.Execution{}, fmt.Errorf("opening input for %s: %w", test.Name, err)
	}
	defer stdin.Close()

	outPath, err := j.pool.Acquire()
	if err != nil {
		return verdict.Verdict{}, runner.Execution{}, err
	}
	defer j.release(outPath)

	stdout, err := os.Create(outPath)
	if err != nil {
		return verdict.Verdict{}, runner.Execution{}, fmt.Errorf("creating output file for %s: %w", test.Name, err)
	}

	execution, runErr := j.execute(ctx, stdin, stdout)
	stdout.Close()

	if runErr != nil {
		var classified *runner.Error
		if errors.As(runErr, &classified) {
			return verdict.NewProgramError(test.Name, classified), execution, nil
		}
		return verdict.Verdict{}, execution, runErr
	}

	produced, err := os.ReadFile(outPath)
	if err != nil {
		return verdict.Verdict{}, execution, fmt.Errorf("reading output of %s: %w", test.Name, err)
	}
	if !utf8.Valid(produced) {
		classified := &runner.Error{Kind: runner.ErrInvalidOutput}
		return verdict.NewProgramError(test.Name, classified), execution, nil
	}

	if j.opts.CheckerPath == "" {
		v, err := j.compareWithReference(test, string(produced))
		if err == nil && v.Kind == verdict.NoOutputFile {
			// nothing was judged, so no resource usage is reported either
			return v, runner.Execution{}, nil
		}
		return v, execution, err
	}
	v, err := j.delegateToChecker(ctx, test, string(produced))
	return v, execution, err
}

func (j *Judge) execute(ctx context.Context, stdin, stdout *os.File) (runner.Execution, error) {
	if j.opts.Sandbox == nil {
		return runner.RunDirect(ctx, j.opts.Executable, stdin, stdout, j.opts.Timeout)
	}

	reportPath, err := j.pool.Acquire()
	if err != nil {
		return runner.Execution{}, err
	}
	defer j.release(reportPath)
	stderrPath, err := j.pool.Acquire()
	if err != nil {
		return runner.Execution{}, err
	}
	defer j.release(stderrPath)

	return j.opts.Sandbox.Run(ctx, j.opts.Executable, stdin, stdout,
		j.opts.Timeout, j.opts.MemoryLimitKiB, reportPath, stderrPath)
}

func (j *Judge) compareWithReference(test Test, produced string) (verdict.Verdict, error) {
	referencePath := filepath.Join(j.opts.OutputDir, test.Name+j.opts.OutExt)
	reference, err := ReadText(referencePath)
	if err != nil {
		if os.IsNotExist(err) {
			return verdict.NewNoOutputFile(test.Name), nil
		}
		return verdict.Verdict{}, fmt.Errorf("reading reference output for %s: %w", test.Name, err)
	}

	if diff.Equal(string(reference), produced) {
		return verdict.NewCorrect(test.Name), nil
	}
	return verdict.NewIncorrect(test.Name, diff.Render(string(reference), produced)), nil
}

func (j *Judge) delegateToChecker(ctx context.Context, test Test, produced string) (verdict.Verdict, error) {
	input, err := ReadText(test.InputPath)
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("reading input for %s: %w", test.Name, err)
	}

	scratchIn, err := j.pool.Acquire()
	if err != nil {
		return verdict.Verdict{}, err
	}
	defer j.release(scratchIn)
	scratchOut, err := j.pool.Acquire()
	if err != nil {
		return verdict.Verdict{}, err
	}
	defer j.release(scratchOut)

	return checker.Verify(ctx, test.Name, j.opts.CheckerPath,
		string(input), produced, scratchIn, scratchOut, j.opts.Timeout)
}

// release panics on failure: an unbalanced checkin is a harness bug that
// would silently shrink the pool for every later test.
func (j *Judge) release(path string) {
	if err := j.pool.Release(path); err != nil {
		panic(err)
	}
}
