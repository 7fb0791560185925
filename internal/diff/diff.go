// Package diff renders a bounded, human-scannable comparison between a
// reference output and the program's output. It is an intentionally simple
// positional diff: lines are compared index by index with no
// insertion/deletion alignment, which is cheap, deterministic and good
// enough to show where two otherwise-aligned outputs diverge.
package diff

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	// rendering stops after this many differing rows
	maxRows       = 99
	fallbackWidth = 40
	minWidth      = 24
)

// SplitTrimEnd normalizes text for comparison: split into lines, right-trim
// all whitespace from each line, drop trailing all-whitespace lines.
func SplitTrimEnd(text string) []string {
	var lines []string
	current := strings.Builder{}
	for _, ch := range text {
		if ch == '\n' {
			lines = append(lines, strings.TrimRightFunc(current.String(), unicode.IsSpace))
			current.Reset()
		} else {
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		lines = append(lines, strings.TrimRightFunc(current.String(), unicode.IsSpace))
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Equal reports whether two outputs match after normalization.
func Equal(expected, actual string) bool {
	a := SplitTrimEnd(expected)
	b := SplitTrimEnd(actual)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Render produces the diff table sized to the current terminal, falling back
// to a fixed width when stdout is not a terminal.
func Render(expected, actual string) string {
	width := fallbackWidth
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	return RenderWidth(expected, actual, width)
}

// RenderWidth is Render with an explicit table width. It is a pure function
// of the normalized inputs.
func RenderWidth(expected, actual string, width int) string {
	if width < minWidth {
		width = minWidth
	}
	expectedLines := SplitTrimEnd(expected)
	actualLines := SplitTrimEnd(actual)

	type row struct {
		line             string
		expected, actual string
	}
	var rows []row

	longer := len(expectedLines)
	if len(actualLines) > longer {
		longer = len(actualLines)
	}
	for i := 0; i < longer; i++ {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e == a {
			continue
		}
		rows = append(rows, row{line: fmt.Sprint(i + 1), expected: e, actual: a})
		if len(rows) >= maxRows {
			rows = append(rows, row{line: "...", expected: "...", actual: "..."})
			break
		}
	}

	const lineHeader = "Line"
	lineCol := len(lineHeader)
	for _, r := range rows {
		if len(r.line) > lineCol {
			lineCol = len(r.line)
		}
	}
	// two " | " separators between the three columns
	cell := (width - lineCol - 6) / 2
	if cell < 4 {
		cell = 4
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	bold := color.New(color.Bold)

	var b strings.Builder
	writeRow := func(line, e, a string, lineC, eC, aC *color.Color) {
		b.WriteString(lineC.Sprintf("%-*s", lineCol, clip(line, lineCol)))
		b.WriteString(" | ")
		b.WriteString(eC.Sprintf("%-*s", cell, clip(e, cell)))
		b.WriteString(" | ")
		b.WriteString(aC.Sprintf("%-*s", cell, clip(a, cell)))
		b.WriteString("\n")
	}
	writeRow(lineHeader, "Output file", "Your program's output", bold, green, red)
	b.WriteString(strings.Repeat("-", lineCol+2*cell+6))
	b.WriteString("\n")
	plain := color.New()
	for _, r := range rows {
		writeRow(r.line, r.expected, r.actual, plain, green, red)
	}
	return b.String()
}

func clip(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
