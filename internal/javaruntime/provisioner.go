// Package javaruntime finds a Java runtime able to start the game, or
// downloads one into the game directory.
package javaruntime

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/hegemonia/launcher/internal/archive"
	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/platform"
	"github.com/hegemonia/launcher/internal/progress"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// requiredDiskSpace is the free space demanded before a runtime download.
const requiredDiskSpace = 512 << 20

// Source tells where a runtime was found.
type Source string

const (
	SourceBundled    Source = "bundled"
	SourceVendor     Source = "vendor-launcher"
	SourceCommon     Source = "system-install"
	SourceJavaHome   Source = "JAVA_HOME"
	SourcePath       Source = "PATH"
	SourceDownloaded Source = "downloaded"
)

// Handle is a verified runtime executable.
type Handle struct {
	Path    string
	Version string
	Major   int
	Source  Source
}

// Candidate is one executable the search will try.
type Candidate struct {
	Path   string
	Source Source
}

// Downloader fetches the runtime archive.
type Downloader interface {
	Fetch(ctx context.Context, url, dest string, opts ...fetch.Option) error
}

// Provisioner runs the runtime search and, failing that, the download.
type Provisioner struct {
	profile     platform.Profile
	env         platform.Env
	layout      *layout.Layout
	major       int
	downloadURL string
	fetcher     Downloader
	verifier    Verifier
	lookPath    func(string) (string, error)
	diskSpace   func(string) (int64, error)
	reporter    progress.Reporter
	logger      hclog.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithVerifier replaces the "-version" probe.
func WithVerifier(v Verifier) Option {
	return func(p *Provisioner) { p.verifier = v }
}

// WithEnv replaces the host environment consulted for search locations.
func WithEnv(env platform.Env) Option {
	return func(p *Provisioner) { p.env = env }
}

// WithLookPath replaces the search path lookup.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Provisioner) { p.lookPath = fn }
}

// WithDownloadURL overrides the platform's runtime archive URL.
func WithDownloadURL(url string) Option {
	return func(p *Provisioner) {
		if url != "" {
			p.downloadURL = url
		}
	}
}

// WithDiskSpace replaces the free space query.
func WithDiskSpace(fn func(string) (int64, error)) Option {
	return func(p *Provisioner) { p.diskSpace = fn }
}

// WithReporter sets the progress sink for the download.
func WithReporter(r progress.Reporter) Option {
	return func(p *Provisioner) { p.reporter = r }
}

// NewProvisioner creates a provisioner for runtimes of at least major.
func NewProvisioner(profile platform.Profile, l *layout.Layout, major int, fetcher Downloader, logger hclog.Logger, opts ...Option) *Provisioner {
	p := &Provisioner{
		profile:     profile,
		env:         platform.HostEnv(),
		layout:      l,
		major:       major,
		downloadURL: profile.RuntimeDownloadURL(major),
		fetcher:     fetcher,
		verifier:    CommandVerifier{MinMajor: major},
		lookPath:    exec.LookPath,
		diskSpace:   availableDiskSpace,
		reporter:    progress.Nop,
		logger:      logger.Named("runtime"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision returns the first verified runtime on the host, downloading one
// when the search comes up empty. Only a failed download is an error.
func (p *Provisioner) Provision(ctx context.Context) (*Handle, error) {
	handle, err := p.Discover(ctx)
	if err == nil {
		return handle, nil
	}
	p.logger.Info("☕ no usable Java runtime found, downloading one", "major", p.major)
	return p.Download(ctx)
}

// Candidates lists the search in order: bundled runtimes, the vendor game
// launcher's runtime, common install locations, JAVA_HOME, then PATH.
func (p *Provisioner) Candidates() []Candidate {
	var out []Candidate
	for _, path := range p.bundled() {
		out = append(out, Candidate{Path: path, Source: SourceBundled})
	}
	for _, path := range p.profile.VendorRuntimes(p.env) {
		out = append(out, Candidate{Path: path, Source: SourceVendor})
	}
	for _, path := range p.profile.CommonRuntimes(p.env, p.major) {
		out = append(out, Candidate{Path: path, Source: SourceCommon})
	}
	if home := p.env.Getenv("JAVA_HOME"); home != "" {
		out = append(out, Candidate{Path: filepath.Join(home, "bin", p.profile.JavaBinary()), Source: SourceJavaHome})
	}
	if p.lookPath != nil {
		if path, err := p.lookPath(p.profile.JavaBinary()); err == nil && path != "" {
			out = append(out, Candidate{Path: path, Source: SourcePath})
		}
	}
	return out
}

// Discover verifies each candidate in order and returns the first that
// passes, or ErrRuntimeNotFound.
func (p *Provisioner) Discover(ctx context.Context) (*Handle, error) {
	for _, c := range p.Candidates() {
		if p.profile.IsShim(c.Path) {
			p.logger.Debug("skipping shim", "path", c.Path)
			continue
		}
		if c.Source != SourcePath {
			if _, err := os.Stat(c.Path); err != nil {
				p.logger.Trace("candidate absent", "source", string(c.Source), "path", c.Path)
				continue
			}
		}
		version, err := p.verifier.Verify(ctx, c.Path)
		if err != nil {
			p.logger.Debug("candidate rejected", "source", string(c.Source), "path", c.Path, "error", err)
			continue
		}
		p.logger.Info("☕ using Java runtime", "source", string(c.Source), "path", c.Path, "version", version.Raw)
		return &Handle{Path: c.Path, Version: version.Raw, Major: version.Major, Source: c.Source}, nil
	}
	return nil, fmt.Errorf("%w: need Java %d (64-bit)", lerrors.ErrRuntimeNotFound, p.major)
}

// bundled lists executables of completed runtimes under the runtime dir,
// newest major first.
func (p *Provisioner) bundled() []string {
	entries, err := os.ReadDir(p.layout.Runtime())
	if err != nil {
		return nil
	}

	type found struct {
		path  string
		major int
	}
	var list []found
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(p.layout.Runtime(), e.Name())
		if !IsComplete(dir, p.major) {
			continue
		}
		marker, err := ReadMarker(dir)
		if err != nil {
			continue
		}
		list = append(list, found{
			path:  filepath.Join(dir, filepath.FromSlash(marker.Executable)),
			major: marker.Major,
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].major > list[j].major })

	out := make([]string, len(list))
	for i, f := range list {
		out[i] = f.path
	}
	return out
}

// Download fetches the runtime archive for this platform, unpacks it into
// runtime/java-<major>, and verifies the result.
func (p *Provisioner) Download(ctx context.Context) (*Handle, error) {
	fail := func(err error) (*Handle, error) {
		return nil, fmt.Errorf("%w: %w", lerrors.ErrRuntimeProvisioning, err)
	}

	runtimeDir := p.layout.Runtime()
	if err := os.MkdirAll(runtimeDir, 0755); err != nil {
		return fail(fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err))
	}

	if free, err := p.diskSpace(runtimeDir); err != nil {
		p.logger.Debug("disk space check unavailable", "error", err)
	} else if free < requiredDiskSpace {
		return fail(fmt.Errorf("%w: %d MiB free in %s, need %d MiB",
			lerrors.ErrFilesystem, free>>20, runtimeDir, requiredDiskSpace>>20))
	}

	format, err := p.archiveFormat()
	if err != nil {
		return fail(err)
	}
	ext := format.String()

	p.reporter.Report(progress.Event{Stage: progress.StageRuntime, Message: fmt.Sprintf("Downloading Java %d", p.major)})
	archivePath := filepath.Join(runtimeDir, fmt.Sprintf("java-%d.%s", p.major, ext))
	err = p.fetcher.Fetch(ctx, p.downloadURL, archivePath, fetch.WithProgress(func(current, total int64) {
		p.reporter.Report(progress.Event{
			Stage:   progress.StageRuntime,
			Message: fmt.Sprintf("Downloading Java %d", p.major),
			Current: int(current >> 20),
			Total:   int(max(total, 0) >> 20),
		})
	}))
	if err != nil {
		return fail(fmt.Errorf("downloading runtime: %w", err))
	}

	p.reporter.Report(progress.Event{Stage: progress.StageRuntime, Message: fmt.Sprintf("Installing Java %d", p.major)})
	staging, err := os.MkdirTemp(runtimeDir, ".extract-*")
	if err != nil {
		return fail(fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err))
	}
	defer func() { _ = os.RemoveAll(staging) }()

	if err := archive.Extract(archivePath, staging, format, p.logger); err != nil {
		_ = os.Remove(archivePath)
		return fail(fmt.Errorf("extracting runtime: %w", err))
	}
	_ = os.Remove(archivePath)

	rel, err := findExecutable(staging, p.profile.RuntimeExecutables())
	if err != nil {
		return fail(err)
	}
	if runtime.GOOS != "windows" {
		_ = os.Chmod(filepath.Join(staging, filepath.FromSlash(rel)), 0755)
	}

	if err := MarkComplete(staging, ProvisionMarker{Major: p.major, Source: p.downloadURL, Executable: rel}); err != nil {
		return fail(fmt.Errorf("%w: writing marker: %w", lerrors.ErrFilesystem, err))
	}

	final := filepath.Join(runtimeDir, fmt.Sprintf("java-%d", p.major))
	if _, err := os.Stat(final); err == nil {
		// A runtime that failed verification earlier; replaced wholesale.
		if err := os.RemoveAll(final); err != nil {
			return fail(fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err))
		}
	}
	if err := os.Rename(staging, final); err != nil {
		return fail(fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err))
	}

	exe := filepath.Join(final, filepath.FromSlash(rel))
	version, err := p.verifier.Verify(ctx, exe)
	if err != nil {
		_ = MarkIncomplete(final, err.Error())
		return fail(fmt.Errorf("downloaded runtime failed verification: %w", err))
	}

	p.logger.Info("☕ Java runtime installed", "path", exe, "version", version.Raw)
	return &Handle{Path: exe, Version: version.Raw, Major: version.Major, Source: SourceDownloaded}, nil
}

// archiveFormat names the format of the download: the URL's file name when it
// carries a known archive suffix, the platform default otherwise. Vendor API
// URLs have no suffix.
func (p *Provisioner) archiveFormat() (archive.Format, error) {
	if u, err := url.Parse(p.downloadURL); err == nil {
		if format, err := archive.FormatFromName(path.Base(u.Path)); err == nil {
			return format, nil
		}
	}
	return archive.FormatFromName(p.profile.RuntimeArchiveExt())
}

// findExecutable looks for the runtime executable at the root of dir or one
// directory below it, which is how vendor archives are laid out.
func findExecutable(dir string, rels []string) (string, error) {
	for _, rel := range rels {
		if fileExists(filepath.Join(dir, filepath.FromSlash(rel))) {
			return rel, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, rel := range rels {
			candidate := e.Name() + "/" + rel
			if fileExists(filepath.Join(dir, filepath.FromSlash(candidate))) {
				return candidate, nil
			}
		}
	}
	return "", errors.New("no Java executable inside the downloaded archive")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
