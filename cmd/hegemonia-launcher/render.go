package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/hegemonia/launcher/internal/progress"
)

// renderer draws progress events on the console. On a terminal the current
// status is redrawn in place; elsewhere each stage change prints one line.
type renderer struct {
	mu    sync.Mutex
	out   io.Writer
	live  bool
	width int
	last  progress.Stage
	dirty bool
}

func newRenderer(f *os.File) *renderer {
	r := &renderer{out: f}
	if fd := int(f.Fd()); term.IsTerminal(fd) {
		r.live = true
		if w, _, err := term.GetSize(fd); err == nil {
			r.width = w
		}
	}
	return r
}

func (r *renderer) Report(e progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch e.Stage {
	case progress.StageWarning:
		r.line("⚠️  " + e.Message)
		return
	case progress.StageError:
		r.line("❌ " + e.Message)
		return
	case progress.StageDone:
		r.line("✅ " + e.Message)
		return
	}

	status := fmt.Sprintf("[%s] %s", e.Stage, e.Status())
	if !r.live {
		if e.Stage != r.last {
			fmt.Fprintln(r.out, status)
		}
		r.last = e.Stage
		return
	}
	if r.width > 1 && len(status) >= r.width {
		status = status[:r.width-1]
	}
	fmt.Fprintf(r.out, "\r\033[K%s", status)
	r.dirty = true
	r.last = e.Stage
}

// line prints a message on its own line, clearing any live status first.
func (r *renderer) line(msg string) {
	if r.dirty {
		fmt.Fprint(r.out, "\r\033[K")
		r.dirty = false
	}
	fmt.Fprintln(r.out, strings.TrimRight(msg, "\n"))
}

// Close ends a live status line.
func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty {
		fmt.Fprintln(r.out)
		r.dirty = false
	}
}
