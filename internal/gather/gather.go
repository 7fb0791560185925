// Package gather defines where per-test results go. The judging core calls a
// Gatherer as tests progress; implementations stream to the terminal, to a
// NATS subject, or anywhere else.
package gather

import (
	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/verdict"
)

// Gatherer receives evaluation progress. Implementations must tolerate
// concurrent FinishTest calls from parallel workers.
type Gatherer interface {
	StartJob(totalTests int)
	StartCompilation()
	FinishCompilation(seconds float64)
	StartTest(testName string)
	FinishTest(v verdict.Verdict, res runner.Execution)
	FinishJob(err error)
}

// Multi fans events out to several gatherers in order.
type Multi []Gatherer

func (m Multi) StartJob(totalTests int) {
	for _, g := range m {
		g.StartJob(totalTests)
	}
}

func (m Multi) StartCompilation() {
	for _, g := range m {
		g.StartCompilation()
	}
}

func (m Multi) FinishCompilation(seconds float64) {
	for _, g := range m {
		g.FinishCompilation(seconds)
	}
}

func (m Multi) StartTest(testName string) {
	for _, g := range m {
		g.StartTest(testName)
	}
}

func (m Multi) FinishTest(v verdict.Verdict, res runner.Execution) {
	for _, g := range m {
		g.FinishTest(v, res)
	}
}

func (m Multi) FinishJob(err error) {
	for _, g := range m {
		g.FinishJob(err)
	}
}
