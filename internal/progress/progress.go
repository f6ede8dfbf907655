// Package progress carries staged progress events from the launch pipeline
// to whatever front end is listening.
package progress

import (
	"fmt"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// Stage identifies a step of the launch pipeline.
type Stage string

const (
	StageManifest  Stage = "manifest"
	StageMetadata  Stage = "metadata"
	StageClient    Stage = "client"
	StageLibraries Stage = "libraries"
	StageAssets    Stage = "assets"
	StageLoader    Stage = "loader"
	StageMods      Stage = "mods"
	StageRuntime   Stage = "runtime"
	StageLaunch    Stage = "launch"
	StageDone      Stage = "done"
	StageError     Stage = "error"
	StageWarning   Stage = "warning"
)

// Event is one progress update. Total is zero when the stage has no count.
type Event struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
}

// Status renders the plain status line shown next to a progress bar.
func (e Event) Status() string {
	if e.Total > 0 {
		return fmt.Sprintf("%s (%d/%d)", e.Message, e.Current, e.Total)
	}
	return e.Message
}

// Reporter receives progress events. Implementations must be safe for
// concurrent use; asset downloads report from several goroutines.
type Reporter interface {
	Report(Event)
}

// Func adapts a function to Reporter.
type Func func(Event)

func (f Func) Report(e Event) { f(e) }

// Nop discards every event.
var Nop Reporter = Func(func(Event) {})

// Signals emits each event twice, once structured and once as a status line.
type Signals struct {
	OnProgress func(Event)
	OnStatus   func(string)
}

func (s Signals) Report(e Event) {
	if s.OnProgress != nil {
		s.OnProgress(e)
	}
	if s.OnStatus != nil {
		s.OnStatus(e.Status())
	}
}

// Log writes events to an hclog logger.
func Log(logger hclog.Logger) Reporter {
	return Func(func(e Event) {
		switch e.Stage {
		case StageWarning:
			logger.Warn("⚠️ "+e.Message, "current", e.Current, "total", e.Total)
		case StageError:
			logger.Error("❌ "+e.Message)
		default:
			logger.Info(e.Message, "stage", string(e.Stage), "current", e.Current, "total", e.Total)
		}
	})
}

// Multi fans an event out to several reporters in order.
func Multi(reporters ...Reporter) Reporter {
	return Func(func(e Event) {
		for _, r := range reporters {
			r.Report(e)
		}
	})
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Stages returns the distinct stages in first-seen order.
func (r *Recorder) Stages() []Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[Stage]bool)
	var out []Stage
	for _, e := range r.events {
		if !seen[e.Stage] {
			seen[e.Stage] = true
			out = append(out, e.Stage)
		}
	}
	return out
}

// Count returns how many events were recorded for a stage.
func (r *Recorder) Count(stage Stage) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Stage == stage {
			n++
		}
	}
	return n
}
