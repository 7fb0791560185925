// Package checker runs an external verifier program and interprets its
// one-character verdict convention: the first byte of the checker's output is
// C (correct) or I (incorrect, optionally followed by ": <message>").
package checker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/verdict"
)

// Verify feeds the checker the test's input, a newline and the program's
// output on stdin, and reads its verdict from stdout. scratchIn and
// scratchOut are pool-owned paths; fresh files are created at them here.
//
// A checker that crashes, exits non-zero or times out yields a CheckerError
// verdict: the verifier misbehaving must never count as the program under
// test being wrong. The returned error is non-nil only for harness-internal
// failures or cancellation.
func Verify(
	ctx context.Context,
	testName, checkerPath string,
	programInput, programOutput string,
	scratchIn, scratchOut string,
	timeout time.Duration,
) (verdict.Verdict, error) {
	blob := programInput + "\n" + programOutput
	if err := os.WriteFile(scratchIn, []byte(blob), 0o644); err != nil {
		return verdict.Verdict{}, fmt.Errorf("writing checker input: %w", err)
	}
	stdin, err := os.Open(scratchIn)
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("opening checker input: %w", err)
	}
	defer stdin.Close()

	stdout, err := os.Create(scratchOut)
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("creating checker output: %w", err)
	}
	defer stdout.Close()

	_, err = runner.RunChecker(ctx, checkerPath, stdin, stdout, timeout)
	if err != nil {
		var runErr *runner.Error
		if errors.As(err, &runErr) {
			return verdict.NewCheckerError(testName, runErr), nil
		}
		return verdict.Verdict{}, err
	}

	response, err := os.ReadFile(scratchOut)
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("reading checker output: %w", err)
	}
	return interpret(testName, string(response)), nil
}

func interpret(testName, response string) verdict.Verdict {
	if len(response) == 0 {
		return verdict.NewCheckerError(testName, &runner.Error{
			Kind:    runner.ErrCheckerFormat,
			Message: "the checker returned an empty output",
		})
	}
	switch response[0] {
	case 'C':
		return verdict.NewCorrect(testName)
	case 'I':
		// the remainder after the 2-byte "I " / "I:" prefix explains why
		comment := ""
		if len(response) > 2 {
			comment = strings.TrimSpace(response[2:])
		}
		return verdict.NewIncorrect(testName, comment)
	}
	return verdict.NewCheckerError(testName, &runner.Error{
		Kind:    runner.ErrCheckerFormat,
		Message: "the first character of the checker's output wasn't C or I",
	})
}
