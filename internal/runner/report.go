package runner

import (
	"strconv"
	"strings"
)

// report is the parsed form of sio2jail's machine-readable output, emitted on
// file descriptor 3 in the "oiaug" format: one line of at least six
// whitespace-separated fields (status, _, time in ms, _, memory in KiB, _),
// optionally followed by a human-readable message line.
type report struct {
	status    string
	timeSec   float64
	memoryKiB int64
	message   string
}

func parseReport(raw string) (report, *Error) {
	fields := strings.Fields(raw)
	if len(fields) < 6 {
		return report{}, sio2jailErrorf("the sio2jail report is too short: %s", raw)
	}

	timeMs, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return report{}, sio2jailErrorf("the sio2jail report carries an invalid runtime: %s", fields[2])
	}
	memoryKiB, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return report{}, sio2jailErrorf("the sio2jail report carries an invalid memory usage: %s", fields[4])
	}

	r := report{
		status:    fields[0],
		timeSec:   timeMs / 1000.0,
		memoryKiB: memoryKiB,
	}
	if lines := strings.Split(raw, "\n"); len(lines) > 1 {
		r.message = strings.TrimSpace(lines[1])
	}
	return r, nil
}

// classify maps the report's status token onto the error taxonomy. nil means
// the target ran to completion within its limits.
func (r report) classify() *Error {
	switch r.status {
	case "OK":
		return nil
	case "RE", "RV":
		if r.message == "" {
			return &Error{Kind: ErrRuntime}
		}
		return runtimeErrorf("- %s", r.message)
	case "TLE":
		return &Error{Kind: ErrTimedOut}
	case "MLE":
		return &Error{Kind: ErrMemoryLimit}
	case "OLE":
		return runtimeErrorf("- output limit exceeded")
	}
	return sio2jailErrorf("the sio2jail report carries an invalid status: %s", r.status)
}
