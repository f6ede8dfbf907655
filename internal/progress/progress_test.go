package progress

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func TestSignalsEmitsBoth(t *testing.T) {
	var (
		events   []Event
		statuses []string
	)
	s := Signals{
		OnProgress: func(e Event) { events = append(events, e) },
		OnStatus:   func(msg string) { statuses = append(statuses, msg) },
	}

	s.Report(Event{Stage: StageAssets, Message: "Downloading assets", Current: 50, Total: 3000})
	s.Report(Event{Stage: StageLaunch, Message: "Starting game"})

	assert.Len(t, events, 2)
	assert.Equal(t, []string{"Downloading assets (50/3000)", "Starting game"}, statuses)
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Report(Event{Stage: StageManifest})
	r.Report(Event{Stage: StageAssets, Current: 1})
	r.Report(Event{Stage: StageAssets, Current: 2})
	r.Report(Event{Stage: StageDone})

	assert.Equal(t, []Stage{StageManifest, StageAssets, StageDone}, r.Stages())
	assert.Equal(t, 2, r.Count(StageAssets))
	assert.Len(t, r.Events(), 4)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Name: "progress_test", Level: hclog.Trace, Output: &buf})

	Multi(Log(logger), Nop).Report(Event{Stage: StageWarning, Message: "mod missing"})
	assert.Contains(t, buf.String(), "mod missing")
	assert.Contains(t, buf.String(), "[WARN]")
}
