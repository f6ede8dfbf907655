// Package orchestrator runs the provisioning pipeline and starts the game:
// version metadata, client jar, libraries and natives, assets, loader,
// modpack, runtime, then the JVM itself.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/hegemonia/launcher/internal/config"
	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/javaruntime"
	"github.com/hegemonia/launcher/internal/launch"
	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/modpack"
	"github.com/hegemonia/launcher/internal/platform"
	"github.com/hegemonia/launcher/internal/progress"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// Fetcher is the download surface shared by every stage.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
	Fetch(ctx context.Context, url, dest string, opts ...fetch.Option) error
}

// RuntimeProvider yields a verified Java runtime.
type RuntimeProvider interface {
	Provision(ctx context.Context) (*javaruntime.Handle, error)
}

// GameExecutor starts the game and reports the liveness poll.
type GameExecutor interface {
	Launch(ctx context.Context, s launch.Spec) (*launch.Outcome, error)
}

// Request carries the per-launch inputs supplied by the front end.
type Request struct {
	Username    string
	UUID        string
	AccessToken string
	UserType    string
	Server      string
	Port        int
	// MemoryMB overrides the configured heap size when positive.
	MemoryMB int
}

// Orchestrator owns one game directory and the configuration it runs with.
type Orchestrator struct {
	cfg      config.Config
	profile  platform.Profile
	layout   *layout.Layout
	fetcher  Fetcher
	runtime  RuntimeProvider
	executor GameExecutor
	reporter progress.Reporter
	logger   hclog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithFetcher replaces the HTTP fetcher built from the configuration.
func WithFetcher(f Fetcher) Option {
	return func(o *Orchestrator) { o.fetcher = f }
}

// WithRuntime replaces the runtime provisioner.
func WithRuntime(r RuntimeProvider) Option {
	return func(o *Orchestrator) { o.runtime = r }
}

// WithExecutor replaces the process executor.
func WithExecutor(e GameExecutor) Option {
	return func(o *Orchestrator) { o.executor = e }
}

// WithReporter sets the progress sink.
func WithReporter(r progress.Reporter) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.reporter = r
		}
	}
}

// New creates an orchestrator for cfg. Collaborators not supplied through
// options are built from the configuration.
func New(cfg config.Config, profile platform.Profile, logger hclog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		profile:  profile,
		layout:   layout.New(cfg.GameDir),
		reporter: progress.Nop,
		logger:   logger.Named("orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.fetcher == nil {
		o.fetcher = fetch.New(logger,
			fetch.WithTimeout(cfg.HTTPTimeout),
			fetch.WithUserAgent(cfg.UserAgent),
			fetch.WithValidation(cfg.Validation),
		)
	}
	if o.runtime == nil {
		o.runtime = javaruntime.NewProvisioner(profile, o.layout, cfg.RuntimeMajor, o.fetcher, logger,
			javaruntime.WithDownloadURL(cfg.RuntimeURL),
			javaruntime.WithReporter(o.reporter),
		)
	}
	if o.executor == nil {
		o.executor = launch.NewExecutor(o.layout, profile, logger, launch.WithGracePeriod(cfg.GracePeriod))
	}
	return o
}

// Layout returns the game directory layout.
func (o *Orchestrator) Layout() *layout.Layout {
	return o.layout
}

// Run provisions everything and starts the game. An early crash is returned
// as an Outcome, not as an error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (outcome *launch.Outcome, err error) {
	defer func() {
		if err != nil {
			o.reporter.Report(progress.Event{Stage: progress.StageError, Message: err.Error()})
		}
	}()

	if req.Username == "" {
		return nil, errors.New("❌ username is required")
	}

	prepared, err := o.Prepare(ctx)
	if err != nil {
		return nil, err
	}

	handle, err := o.ProvisionRuntime(ctx)
	if err != nil {
		return nil, err
	}

	memory := o.cfg.MemoryMB
	if req.MemoryMB > 0 {
		memory = req.MemoryMB
	}
	spec := launch.Spec{
		Java:           handle.Path,
		RuntimeVersion: handle.Version,
		MemoryMB:       memory,
		MinHeapMB:      o.cfg.MinHeapMB,
		JVMArgs:        o.cfg.JVMArgs,
		NativesDir:     o.layout.Natives(),
		Classpath:      prepared.Classpath,
		MainClass:      prepared.MainClass,
		Username:       req.Username,
		UUID:           req.UUID,
		AccessToken:    req.AccessToken,
		UserType:       req.UserType,
		VersionName:    o.cfg.VersionName(),
		GameDir:        o.layout.Root(),
		AssetsDir:      o.layout.Assets(),
		AssetIndex:     prepared.AssetIndex,
		Server:         req.Server,
		Port:           req.Port,
	}

	o.report(progress.StageLaunch, "Starting the game", 0, 0)
	outcome, err = o.executor.Launch(ctx, spec)
	if err != nil {
		return nil, err
	}

	switch outcome.Status {
	case launch.Crashed:
		o.report(progress.StageError, fmt.Sprintf("The game exited during startup (code %d)", outcome.ExitCode), 0, 0)
	default:
		o.report(progress.StageDone, fmt.Sprintf("Game started (PID: %d)", outcome.PID), 0, 0)
	}
	return outcome, nil
}

// Launch is the front end contract: a message carrying the PID on success,
// or an error whose text is the message to show.
func (o *Orchestrator) Launch(ctx context.Context, req Request) (string, error) {
	outcome, err := o.Run(ctx, req)
	if err != nil {
		return "", err
	}
	if outcome.Status == launch.Crashed {
		return "", fmt.Errorf("%w (exit code %d); see %s for details",
			lerrors.ErrEarlyCrash, outcome.ExitCode, o.layout.LaunchLog())
	}
	return fmt.Sprintf("Game started (PID: %d)", outcome.PID), nil
}

// ProvisionRuntime finds or downloads the Java runtime.
func (o *Orchestrator) ProvisionRuntime(ctx context.Context) (*javaruntime.Handle, error) {
	o.report(progress.StageRuntime, fmt.Sprintf("Looking for Java %d", o.cfg.RuntimeMajor), 0, 0)
	handle, err := o.runtime.Provision(ctx)
	if err != nil {
		return nil, err
	}
	o.report(progress.StageRuntime, fmt.Sprintf("Using Java %s", handle.Version), 0, 0)
	return handle, nil
}

// Status inspects the game directory without network access.
func (o *Orchestrator) Status() modpack.Status {
	s := modpack.CheckStatus(o.layout, o.cfg.GameVersion, o.cfg.LoaderVersion)
	s.RuntimeInstalled = javaruntime.IsComplete(
		filepath.Join(o.layout.Runtime(), fmt.Sprintf("java-%d", o.cfg.RuntimeMajor)), o.cfg.RuntimeMajor)
	return s
}

func (o *Orchestrator) report(stage progress.Stage, msg string, current, total int) {
	o.reporter.Report(progress.Event{Stage: stage, Message: msg, Current: current, Total: total})
}

func (o *Orchestrator) warn(msg string) {
	o.report(progress.StageWarning, msg, 0, 0)
}
