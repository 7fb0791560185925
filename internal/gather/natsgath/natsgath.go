// Package natsgath streams evaluation progress as JSON messages to a NATS
// subject, so a dashboard or contest frontend can follow a run live.
package natsgath

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/sio2tools/stester/internal/gather"
	"github.com/sio2tools/stester/internal/runner"
	"github.com/sio2tools/stester/internal/verdict"
)

// Runtime data size constraints for streamed comments
const (
	maxCommentHeight = 40
	maxCommentWidth  = 80
)

type msgHeader struct {
	RunUuid string `json:"run_uuid"`
	MsgType string `json:"msg_type"`
}

type startJobMsg struct {
	msgHeader
	TotalTests int `json:"total_tests"`
}

type finishCompilationMsg struct {
	msgHeader
	Seconds float64 `json:"seconds"`
}

type testMsg struct {
	msgHeader
	Test string `json:"test"`
}

type finishTestMsg struct {
	msgHeader
	Test      string  `json:"test"`
	Verdict   string  `json:"verdict"`
	Comment   string  `json:"comment,omitempty"`
	Error     string  `json:"error,omitempty"`
	TimeSec   float64 `json:"time_sec"`
	MemoryKiB *int64  `json:"memory_kib,omitempty"`
}

type finishJobMsg struct {
	msgHeader
	Error string `json:"error,omitempty"`
}

// Gatherer publishes one message per event to a fixed subject. Publish
// failures are logged and otherwise ignored; result streaming must never
// fail a run.
type Gatherer struct {
	nc      *nats.Conn
	subject string
	runUuid string
}

func New(nc *nats.Conn, subject, runUuid string) *Gatherer {
	return &Gatherer{nc: nc, subject: subject, runUuid: runUuid}
}

func (g *Gatherer) header(msgType string) msgHeader {
	return msgHeader{RunUuid: g.runUuid, MsgType: msgType}
}

func (g *Gatherer) StartJob(totalTests int) {
	g.send(startJobMsg{msgHeader: g.header("job_start"), TotalTests: totalTests})
}

func (g *Gatherer) StartCompilation() {
	g.send(g.header("compile_start"))
}

func (g *Gatherer) FinishCompilation(seconds float64) {
	g.send(finishCompilationMsg{msgHeader: g.header("compile_finish"), Seconds: seconds})
}

func (g *Gatherer) StartTest(testName string) {
	g.send(testMsg{msgHeader: g.header("test_start"), Test: testName})
}

func (g *Gatherer) FinishTest(v verdict.Verdict, res runner.Execution) {
	msg := finishTestMsg{
		msgHeader: g.header("test_finish"),
		Test:      v.TestName,
		Verdict:   v.Kind.String(),
		Comment:   gather.TrimToRect(v.Comment, maxCommentHeight, maxCommentWidth),
		TimeSec:   res.TimeSec,
		MemoryKiB: res.MemoryKiB,
	}
	if v.Err != nil {
		msg.Error = v.Err.Error()
	}
	g.send(msg)
}

func (g *Gatherer) FinishJob(err error) {
	msg := finishJobMsg{msgHeader: g.header("job_finish")}
	if err != nil {
		msg.Error = err.Error()
	}
	g.send(msg)
	_ = g.nc.Flush()
}

func (g *Gatherer) send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal gatherer message", "error", err)
		return
	}
	if err := g.nc.Publish(g.subject, b); err != nil {
		slog.Error("failed to publish gatherer message", "error", err)
	}
}

var _ gather.Gatherer = (*Gatherer)(nil)
