// Package termgath prints evaluation progress to the terminal.
package termgath

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/sio2tools/stester/internal/gather"
	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/verdict"
)

type counts struct {
	correct, incorrect, programErr, checkerErr, noOutput int
}

// Gatherer writes one line per finished test plus a summary. Safe for
// concurrent FinishTest calls.
type Gatherer struct {
	mu        sync.Mutex
	out       io.Writer
	startedAt time.Time
	counts    counts
}

func New(out io.Writer) *Gatherer {
	return &Gatherer{out: out, startedAt: time.Now()}
}

func (g *Gatherer) StartJob(totalTests int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.startedAt = time.Now()
	fmt.Fprintf(g.out, "Running %d tests\n", totalTests)
}

func (g *Gatherer) StartCompilation() {
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintln(g.out, "Compiling...")
}

func (g *Gatherer) FinishCompilation(seconds float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fmt.Fprintf(g.out, "Compilation finished in %.2fs\n", seconds)
}

func (g *Gatherer) StartTest(testName string) {}

func (g *Gatherer) FinishTest(v verdict.Verdict, res runner.Execution) {
	g.mu.Lock()
	defer g.mu.Unlock()

	usage := fmt.Sprintf("%.2fs", res.TimeSec)
	if res.MemoryKiB != nil {
		usage += fmt.Sprintf(", %d KiB", *res.MemoryKiB)
	}

	switch v.Kind {
	case verdict.Correct:
		g.counts.correct++
		fmt.Fprintf(g.out, "%s %s (%s)\n", color.GreenString("OK"), v.TestName, usage)
	case verdict.Incorrect:
		g.counts.incorrect++
		fmt.Fprintf(g.out, "%s %s (%s)\n", color.RedString("WA"), v.TestName, usage)
		if v.Comment != "" {
			fmt.Fprintln(g.out, v.Comment)
		}
	case verdict.ProgramError:
		g.counts.programErr++
		fmt.Fprintf(g.out, "%s %s (%s) %s\n", color.RedString("RE"), v.TestName, usage, v.Err)
	case verdict.CheckerError:
		g.counts.checkerErr++
		fmt.Fprintf(g.out, "%s %s: %s\n", color.YellowString("CHECKER ERROR"), v.TestName, v.Err)
	case verdict.NoOutputFile:
		g.counts.noOutput++
		fmt.Fprintf(g.out, "%s %s: no reference output file\n", color.YellowString("SKIP"), v.TestName)
	}
}

func (g *Gatherer) FinishJob(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		fmt.Fprintf(g.out, "%s %v\n", color.RedString("Run aborted:"), err)
		return
	}
	c := g.counts
	total := c.correct + c.incorrect + c.programErr + c.checkerErr + c.noOutput
	dur := time.Since(g.startedAt).Round(time.Millisecond)
	fmt.Fprintf(g.out, "%d/%d correct", c.correct, total)
	if c.incorrect > 0 {
		fmt.Fprintf(g.out, ", %d wrong", c.incorrect)
	}
	if c.programErr > 0 {
		fmt.Fprintf(g.out, ", %d failed", c.programErr)
	}
	if c.checkerErr > 0 {
		fmt.Fprintf(g.out, ", %d checker errors", c.checkerErr)
	}
	if c.noOutput > 0 {
		fmt.Fprintf(g.out, ", %d skipped", c.noOutput)
	}
	fmt.Fprintf(g.out, " in %s\n", dur)
}

var _ gather.Gatherer = (*Gatherer)(nil)
