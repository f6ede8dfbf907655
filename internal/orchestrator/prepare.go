package orchestrator

import (
	"context"
	"fmt"

	"github.com/hegemonia/launcher/internal/archive"
	"github.com/hegemonia/launcher/internal/assets"
	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/launch"
	"github.com/hegemonia/launcher/internal/layout"
	"github.com/hegemonia/launcher/internal/meta"
	"github.com/hegemonia/launcher/internal/modpack"
	"github.com/hegemonia/launcher/internal/progress"
	"github.com/hegemonia/launcher/internal/resolver"
	lerrors "github.com/hegemonia/launcher/pkg/errors"
)

// Prepared is the game installation ready to be started.
type Prepared struct {
	Version    *meta.VersionMetadata
	ClientJar  string
	Classpath  []string // game libraries, loader libraries, client jar
	MainClass  string
	AssetIndex string
	Assets     *assets.Result
	Modpack    *modpack.Report // nil when the modpack stage was skipped or failed
	ModCount   int
}

// libraryFile is one download selected from the game metadata.
type libraryFile struct {
	name      string
	artifact  meta.Artifact
	classpath bool // goes on the classpath
	natives   bool // native code to extract
}

// planLibraries applies the platform rules and returns the files to fetch in
// metadata order.
func planLibraries(libs []meta.Library, osName, archBits string) []libraryFile {
	var out []libraryFile
	for _, lib := range libs {
		if !meta.Applies(lib.Rules, osName) {
			continue
		}
		if art := lib.Artifact(); art != nil {
			a := *art
			if a.Path == "" {
				a.Path = meta.CoordinatePath(lib.Name)
			}
			out = append(out, libraryFile{
				name:      lib.Name,
				artifact:  a,
				classpath: true,
				natives:   lib.IsNativeArtifact(),
			})
		}
		if art, ok := lib.NativeClassifier(osName, archBits); ok {
			out = append(out, libraryFile{name: lib.Name, artifact: *art, natives: true})
		}
	}
	return out
}

// Prepare runs every download stage up to, but excluding, the runtime. The
// version metadata, client jar, libraries and loader are required; assets
// and the modpack are best effort.
func (o *Orchestrator) Prepare(ctx context.Context) (*Prepared, error) {
	if err := o.layout.Ensure(); err != nil {
		return nil, fmt.Errorf("%w: %w", lerrors.ErrFilesystem, err)
	}

	// Version
	o.report(progress.StageManifest, fmt.Sprintf("Resolving version %s", o.cfg.GameVersion), 0, 0)
	versions := resolver.NewVersionResolver(o.fetcher, o.cfg.ManifestURL, o.logger)
	version, err := versions.Resolve(ctx, o.cfg.GameVersion)
	if err != nil {
		return nil, err
	}
	o.report(progress.StageMetadata, fmt.Sprintf("Version %s metadata loaded", version.ID), 0, 0)

	// Client
	o.report(progress.StageClient, "Downloading the game client", 0, 0)
	clientJar := o.layout.ClientJar(version.ID)
	client := version.Downloads.Client
	if err := o.fetcher.Fetch(ctx, client.URL, clientJar, checksumOpts(client.SHA1)...); err != nil {
		return nil, fmt.Errorf("downloading client jar: %w", err)
	}

	// Libraries and natives
	gameLibs, err := o.fetchLibraries(ctx, version.Libraries)
	if err != nil {
		return nil, err
	}

	// Assets
	syncer := assets.NewSyncer(o.fetcher, o.layout, o.cfg.AssetBaseURL, o.logger,
		assets.WithWorkers(o.cfg.AssetWorkers),
		assets.WithProgressEvery(o.cfg.AssetProgressEvery),
		assets.WithReporter(o.reporter),
	)
	assetResult, err := syncer.Sync(ctx, version.AssetIndex)
	if err != nil {
		return nil, err
	}

	// Loader
	o.report(progress.StageLoader, fmt.Sprintf("Installing Fabric %s", o.cfg.LoaderVersion), 0, 0)
	loader := resolver.NewLoaderResolver(o.fetcher, o.fetcher, o.layout,
		o.cfg.LoaderProfileURL(), o.cfg.LoaderMavenURL, o.logger)
	loaderResult, err := loader.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	// Mods
	var report *modpack.Report
	if o.cfg.ModpackManifestURL != "" {
		installer := modpack.NewInstaller(o.fetcher, o.layout, o.cfg.ModpackManifestURL, o.cfg.CDNBaseURL, o.logger,
			modpack.WithReporter(o.reporter),
			modpack.WithPinnedVersions(o.cfg.GameVersion, o.cfg.LoaderVersion),
		)
		report, err = installer.Install(ctx)
		if err != nil {
			o.logger.Warn("⚠️ modpack install failed", "error", err)
			o.warn(fmt.Sprintf("Modpack could not be installed: %v", err))
			report = nil
		}
	}
	modCount := layout.CountFiles(o.layout.Mods(), ".jar")
	o.report(progress.StageMods, fmt.Sprintf("%d mods installed", modCount), modCount, modCount)

	prepared := &Prepared{
		Version:    version,
		ClientJar:  clientJar,
		Classpath:  launch.MergeClasspath(gameLibs, loaderResult.Classpath, []string{clientJar}),
		MainClass:  loaderResult.MainClass,
		AssetIndex: version.AssetIndex.ID,
		Assets:     assetResult,
		Modpack:    report,
		ModCount:   modCount,
	}
	o.logger.Info("📦 game prepared", "version", version.ID, "classpath", len(prepared.Classpath),
		"main_class", prepared.MainClass, "mods", modCount)
	return prepared, nil
}

// fetchLibraries downloads the selected libraries in order and extracts
// native code. It returns the classpath entries in metadata order.
func (o *Orchestrator) fetchLibraries(ctx context.Context, libs []meta.Library) ([]string, error) {
	files := planLibraries(libs, o.profile.Name(), o.profile.ArchBits())
	classpath := make([]string, 0, len(files))

	for i, f := range files {
		o.report(progress.StageLibraries, "Downloading libraries", i+1, len(files))

		dest := o.layout.Library(f.artifact.Path)
		if err := o.fetcher.Fetch(ctx, f.artifact.URL, dest, checksumOpts(f.artifact.SHA1)...); err != nil {
			return nil, fmt.Errorf("downloading library %s: %w", f.name, err)
		}
		if f.classpath {
			classpath = append(classpath, dest)
		}
		if f.natives {
			n, err := archive.ExtractNatives(dest, o.layout.Natives(), o.logger)
			if err != nil {
				o.logger.Warn("⚠️ natives extraction failed", "library", f.name, "error", err)
				o.warn(fmt.Sprintf("Native libraries of %s could not be extracted", f.name))
				continue
			}
			o.logger.Debug("🔧 natives extracted", "library", f.name, "files", n)
		}
	}
	return classpath, nil
}

func checksumOpts(sha1 string) []fetch.Option {
	if sha1 == "" {
		return nil
	}
	return []fetch.Option{fetch.WithChecksum("sha1:" + sha1)}
}
