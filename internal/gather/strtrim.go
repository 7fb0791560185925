package gather

import "strings"

// TrimToRect clamps multi-line text to at most maxHeight lines of maxWidth
// bytes, marking elisions, so streamed messages stay bounded no matter what
// a program printed.
func TrimToRect(s string, maxHeight, maxWidth int) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	res := ""
	for i, line := range lines {
		if i > 0 {
			res += "\n"
		}
		if len(line) > maxWidth {
			res += line[:maxWidth] + "[...]"
		} else {
			res += line
		}
	}
	return res
}
