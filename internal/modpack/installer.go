package modpack

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/progress"
)

// Fetcher is the slice of fetch.Fetcher the installer needs.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string, v any) error
	Fetch(ctx context.Context, url, dest string, opts ...fetch.Option) error
}

// Report summarises one Install.
type Report struct {
	PackVersion     string
	Mods            int
	Present         int
	Fetched         int
	Failed          []string // display names of items that could not be installed
	MissingRequired []string
	ResourcePack    bool
	VersionMismatch bool // manifest targets another game or loader version
}

// Installer downloads the modpack into the game directory.
type Installer struct {
	fetcher       Fetcher
	layout        *layout.Layout
	manifestURL   string
	cdnBaseURL    string
	gameVersion   string
	loaderVersion string
	workers       int
	now           func() time.Time
	reporter      progress.Reporter
	logger        hclog.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithWorkers bounds concurrent downloads.
func WithWorkers(n int) Option {
	return func(i *Installer) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithReporter sets the progress sink.
func WithReporter(r progress.Reporter) Option {
	return func(i *Installer) { i.reporter = r }
}

// WithPinnedVersions sets the game and loader versions the manifest is
// checked against.
func WithPinnedVersions(game, loader string) Option {
	return func(i *Installer) {
		i.gameVersion = game
		i.loaderVersion = loader
	}
}

// WithClock replaces the install timestamp source.
func WithClock(now func() time.Time) Option {
	return func(i *Installer) { i.now = now }
}

// NewInstaller creates an installer. Files are fetched from
// <cdnBaseURL>/mods/<file> and <cdnBaseURL>/resourcepacks/<file>.
func NewInstaller(fetcher Fetcher, l *layout.Layout, manifestURL, cdnBaseURL string, logger hclog.Logger, opts ...Option) *Installer {
	i := &Installer{
		fetcher:     fetcher,
		layout:      l,
		manifestURL: manifestURL,
		cdnBaseURL:  strings.TrimRight(cdnBaseURL, "/"),
		workers:     4,
		now:         time.Now,
		reporter:    progress.Nop,
		logger:      logger.Named("modpack"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Manifest fetches the modpack manifest.
func (i *Installer) Manifest(ctx context.Context) (*Manifest, error) {
	var m Manifest
	if err := i.fetcher.FetchJSON(ctx, i.manifestURL, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Install downloads missing mods and the resource pack, then records the
// installed pack version. Only a missing manifest or an unwritable record
// is an error; individual downloads fail with a warning.
func (i *Installer) Install(ctx context.Context) (*Report, error) {
	i.reporter.Report(progress.Event{Stage: progress.StageMods, Message: "Fetching modpack manifest"})
	m, err := i.Manifest(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{PackVersion: m.Version, Mods: len(m.Mods)}
	if (i.gameVersion != "" && m.MinecraftVersion != i.gameVersion) ||
		(i.loaderVersion != "" && m.FabricVersion != i.loaderVersion) {
		report.VersionMismatch = true
		i.warn(fmt.Sprintf("Modpack %s targets %s / Fabric %s", m.Version, m.MinecraftVersion, m.FabricVersion))
	}

	i.logger.Info("🧩 installing modpack", "version", m.Version, "mods", len(m.Mods))

	type job struct {
		name     string
		url      string
		dest     string
		checksum string
		required bool
		pack     bool
	}
	var jobs []job
	for _, mod := range m.Mods {
		name := firstNonEmpty(mod.Name, mod.ID, mod.FileName)
		if err := safeFileName(mod.FileName); err != nil {
			report.Failed = append(report.Failed, name)
			if mod.Required {
				report.MissingRequired = append(report.MissingRequired, name)
			}
			i.warn(fmt.Sprintf("Skipping %s: %v", name, err))
			continue
		}
		dest := filepath.Join(i.layout.Mods(), mod.FileName)
		if layout.Exists(dest) {
			report.Present++
			continue
		}
		jobs = append(jobs, job{
			name:     name,
			url:      i.cdnBaseURL + "/mods/" + mod.FileName,
			dest:     dest,
			checksum: checksum(mod.SHA256),
			required: mod.Required,
		})
	}
	if rp := m.ResourcePack; rp != nil {
		name := firstNonEmpty(rp.Name, rp.FileName)
		if err := safeFileName(rp.FileName); err != nil {
			report.Failed = append(report.Failed, name)
			i.warn(fmt.Sprintf("Skipping resource pack: %v", err))
		} else if dest := filepath.Join(i.layout.ResourcePacks(), rp.FileName); layout.Exists(dest) {
			report.ResourcePack = true
		} else {
			jobs = append(jobs, job{
				name:     name,
				url:      i.cdnBaseURL + "/resourcepacks/" + rp.FileName,
				dest:     dest,
				checksum: checksum(rp.SHA256),
				pack:     true,
			})
		}
	}

	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for _, j := range jobs {
		g.Go(func() error {
			var opts []fetch.Option
			if j.checksum != "" {
				opts = append(opts, fetch.WithChecksum(j.checksum))
			}
			err := i.fetcher.Fetch(gctx, j.url, j.dest, opts...)

			mu.Lock()
			defer mu.Unlock()
			done++
			switch {
			case err != nil:
				report.Failed = append(report.Failed, j.name)
				if j.required {
					report.MissingRequired = append(report.MissingRequired, j.name)
				}
				i.logger.Warn("⚠️ modpack download failed", "item", j.name, "url", j.url, "error", err)
				i.warn(fmt.Sprintf("Failed to download %s: %v", j.name, err))
			case j.pack:
				report.ResourcePack = true
			default:
				report.Fetched++
			}
			i.reporter.Report(progress.Event{
				Stage:   progress.StageMods,
				Message: "Downloading " + j.name,
				Current: done,
				Total:   len(jobs),
			})
			return nil
		})
	}
	_ = g.Wait()

	if err := writeRecord(i.layout, InstallRecord{
		PackVersion:      m.Version,
		MinecraftVersion: m.MinecraftVersion,
		FabricVersion:    m.FabricVersion,
		InstalledAt:      i.now().UTC(),
	}); err != nil {
		return report, err
	}

	i.logger.Info("✅ modpack installed", "version", m.Version, "fetched", report.Fetched,
		"present", report.Present, "failed", len(report.Failed))
	return report, nil
}

func (i *Installer) warn(msg string) {
	i.reporter.Report(progress.Event{Stage: progress.StageWarning, Message: msg})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
