// Package verdict defines the externally visible outcome of a single test.
package verdict

import (
	"fmt"

	"github.com/sio2tools/stester/internal/runner"
)

// Kind enumerates the closed set of verdicts. Switch over it exhaustively;
// a new kind must force review of every consumption site.
type Kind int

const (
	// Correct: the program's output was accepted.
	Correct Kind = iota
	// Incorrect: the output was rejected; Comment explains how.
	Incorrect
	// ProgramError: the program's run could not be judged (crash, timeout,
	// memory limit, invalid output); Err carries the classification.
	ProgramError
	// CheckerError: the external checker misbehaved; judgment is
	// inconclusive and must not count against the program.
	CheckerError
	// NoOutputFile: no reference output exists for this test.
	NoOutputFile
)

func (k Kind) String() string {
	switch k {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case ProgramError:
		return "program error"
	case CheckerError:
		return "checker error"
	case NoOutputFile:
		return "no output file"
	}
	return fmt.Sprintf("unknown verdict kind %d", int(k))
}

// Verdict is the judgment for one test case.
type Verdict struct {
	TestName string
	Kind     Kind
	// Comment holds the Incorrect explanation or rendered diff.
	Comment string
	// Err is set for ProgramError and CheckerError.
	Err *runner.Error
}

func NewCorrect(testName string) Verdict {
	return Verdict{TestName: testName, Kind: Correct}
}

func NewIncorrect(testName, comment string) Verdict {
	return Verdict{TestName: testName, Kind: Incorrect, Comment: comment}
}

func NewProgramError(testName string, err *runner.Error) Verdict {
	return Verdict{TestName: testName, Kind: ProgramError, Err: err}
}

func NewCheckerError(testName string, err *runner.Error) Verdict {
	return Verdict{TestName: testName, Kind: CheckerError, Err: err}
}

func NewNoOutputFile(testName string) Verdict {
	return Verdict{TestName: testName, Kind: NoOutputFile}
}
