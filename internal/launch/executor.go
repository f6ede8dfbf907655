package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/platform"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// DefaultGracePeriod is how long the game gets to fail before it is
// considered started.
const DefaultGracePeriod = 2 * time.Second

// Status is the result of the single liveness poll.
type Status int

const (
	Running Status = iota
	Crashed
)

func (s Status) String() string {
	if s == Crashed {
		return "crashed"
	}
	return "running"
}

// Outcome describes the game process after the grace period.
type Outcome struct {
	Status   Status
	PID      int
	ExitCode int // only meaningful when Crashed
}

// Executor starts the game and watches it for the grace period.
type Executor struct {
	layout  *layout.Layout
	profile platform.Profile
	grace   time.Duration
	now     func() time.Time
	logger  hclog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithGracePeriod sets the wait before the liveness poll.
func WithGracePeriod(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.grace = d
		}
	}
}

// WithClock replaces the time source used in the launch log.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

// NewExecutor creates an executor writing its diagnostics under l.
func NewExecutor(l *layout.Layout, profile platform.Profile, logger hclog.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		layout:  l,
		profile: profile,
		grace:   DefaultGracePeriod,
		now:     time.Now,
		logger:  logger.Named("launch"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Launch writes launch.log, starts the game detached from the launcher, and
// polls it once after the grace period. An early exit is reported through
// the Outcome, not as an error; errors mean the process never started.
func (e *Executor) Launch(ctx context.Context, s Spec) (*Outcome, error) {
	args, err := BuildArgs(s, e.profile)
	if err != nil {
		return nil, err
	}
	argv := append([]string{s.Java}, args...)

	if err := os.MkdirAll(e.layout.Logs(), 0755); err != nil {
		return nil, fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err)
	}
	log := newLaunchLog(e.layout.LaunchLog(), s, argv, e.now())
	if err := log.write(); err != nil {
		e.logger.Warn("⚠️ could not write launch log", "path", e.layout.LaunchLog(), "error", err)
	}

	stdout, err := os.Create(e.layout.StdoutCapture())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err)
	}
	stderr, err := os.Create(e.layout.StderrCapture())
	if err != nil {
		_ = stdout.Close()
		return nil, fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err)
	}
	closeCaptures := func() {
		_ = stdout.Close()
		_ = stderr.Close()
	}

	// Not bound to ctx: the game outlives the launch request.
	cmd := exec.Command(s.Java, args...)
	cmd.Dir = s.GameDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	platform.Detach(cmd)

	e.logger.Info("🚀 starting game", "java", s.Java, "version", s.VersionName, "username", s.Username)
	e.logger.Debug("🚀 full command", "args", RedactArgs(args))

	if err := cmd.Start(); err != nil {
		closeCaptures()
		_ = log.write("ERROR: " + err.Error())
		e.logger.Error("❌ failed to start game", "error", err)
		return nil, fmt.Errorf("%w: %w", lerrors.ErrProcessSpawn, err)
	}
	pid := cmd.Process.Pid
	_ = log.write(fmt.Sprintf("PID: %d", pid))

	exited := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		closeCaptures()
		exited <- err
	}()

	timer := time.NewTimer(e.grace)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}

	select {
	case waitErr := <-exited:
		code := exitCode(cmd, waitErr)
		e.logger.Error("💥 game exited during startup", "pid", pid, "code", code)
		_ = log.write(
			fmt.Sprintf("PID: %d\nProcess exited with: %d", pid, code),
			"STDERR:\n"+tail(e.layout.StderrCapture()),
			"STDOUT:\n"+tail(e.layout.StdoutCapture()),
		)
		return &Outcome{Status: Crashed, PID: pid, ExitCode: code}, nil
	default:
		e.logger.Info("✅ game running", "pid", pid)
		return &Outcome{Status: Running, PID: pid}, nil
	}
}

func exitCode(cmd *exec.Cmd, waitErr error) int {
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode()
	}
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	return -1
}
