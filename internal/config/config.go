// Package config builds the immutable launcher configuration from defaults,
// an optional config file, .env files, HEGEMONIA_* variables and CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hegemonia/launcher/internal/fetch"
	"github.com/hegemonia/launcher/internal/platform"
)

// Pinned version triad.
const (
	DefaultGameVersion   = "1.20.4"
	DefaultLoaderVersion = "0.16.9"
	DefaultRuntimeMajor  = 17
)

// Upstream endpoints.
const (
	DefaultManifestURL        = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
	DefaultLoaderMetaURL      = "https://meta.fabricmc.net/v2"
	DefaultLoaderMavenURL     = "https://maven.fabricmc.net/"
	DefaultAssetBaseURL       = "https://resources.download.minecraft.net"
	DefaultCDNBaseURL         = "https://cdn.hegemonia.net"
	DefaultModpackManifestURL = DefaultCDNBaseURL + "/modpack/manifest.json"
)

// DefaultJVMArgs are the G1 tuning flags the modpack is tested with.
const DefaultJVMArgs = "-XX:+UnlockExperimentalVMOptions -XX:+UseG1GC -XX:G1NewSizePercent=20 -XX:G1ReservePercent=20 -XX:MaxGCPauseMillis=50 -XX:G1HeapRegionSize=32M"

// EnvPrefix namespaces every environment override.
const EnvPrefix = "HEGEMONIA"

// ConfigName is the base name of the optional config file in the game dir.
const ConfigName = "launcher"

// Config is passed by value to every stage and never modified after Load.
type Config struct {
	GameVersion   string
	LoaderVersion string
	RuntimeMajor  int

	ManifestURL        string
	LoaderMetaURL      string
	LoaderMavenURL     string
	AssetBaseURL       string
	RuntimeURL         string // empty selects the platform vendor URL
	CDNBaseURL         string
	ModpackManifestURL string // empty disables the modpack stage

	GameDir string

	HTTPTimeout        time.Duration
	UserAgent          string
	Validation         fetch.ValidationLevel
	AssetWorkers       int
	AssetProgressEvery int

	MemoryMB    int
	MinHeapMB   int
	JVMArgs     string
	GracePeriod time.Duration
}

// Default returns the pinned configuration for the given platform.
func Default(profile platform.Profile, env platform.Env) Config {
	return Config{
		GameVersion:        DefaultGameVersion,
		LoaderVersion:      DefaultLoaderVersion,
		RuntimeMajor:       DefaultRuntimeMajor,
		ManifestURL:        DefaultManifestURL,
		LoaderMetaURL:      DefaultLoaderMetaURL,
		LoaderMavenURL:     DefaultLoaderMavenURL,
		AssetBaseURL:       DefaultAssetBaseURL,
		CDNBaseURL:         DefaultCDNBaseURL,
		ModpackManifestURL: DefaultModpackManifestURL,
		GameDir:            profile.DefaultGameDir(env),
		HTTPTimeout:        fetch.DefaultTimeout,
		UserAgent:          fetch.DefaultUserAgent,
		Validation:         fetch.ValidationStandard,
		AssetWorkers:       8,
		AssetProgressEvery: 50,
		MemoryMB:           4096,
		MinHeapMB:          512,
		JVMArgs:            DefaultJVMArgs,
		GracePeriod:        2 * time.Second,
	}
}

// LoaderProfileURL returns the loader launch profile endpoint for the pinned
// game and loader versions.
func (c Config) LoaderProfileURL() string {
	return fmt.Sprintf("%s/versions/loader/%s/%s/profile/json",
		strings.TrimRight(c.LoaderMetaURL, "/"), c.GameVersion, c.LoaderVersion)
}

// VersionName is the version string passed to the game.
func (c Config) VersionName() string {
	return fmt.Sprintf("fabric-loader-%s-%s", c.LoaderVersion, c.GameVersion)
}

// Validate rejects configurations no launch could succeed with.
func (c Config) Validate() error {
	var errs []error
	if c.GameVersion == "" {
		errs = append(errs, errors.New("game_version is empty"))
	}
	if c.LoaderVersion == "" {
		errs = append(errs, errors.New("loader_version is empty"))
	}
	if c.GameDir == "" {
		errs = append(errs, errors.New("game_dir is empty"))
	}
	if c.RuntimeMajor < 8 {
		errs = append(errs, fmt.Errorf("runtime_major %d is below 8", c.RuntimeMajor))
	}
	if c.MemoryMB < 256 {
		errs = append(errs, fmt.Errorf("memory_mb %d is below 256", c.MemoryMB))
	}
	if c.AssetWorkers < 1 {
		errs = append(errs, fmt.Errorf("asset_workers %d must be positive", c.AssetWorkers))
	}
	if c.AssetProgressEvery < 1 {
		errs = append(errs, fmt.Errorf("asset_progress_every %d must be positive", c.AssetProgressEvery))
	}
	return errors.Join(errs...)
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set.
	ConfigFile string
	// EnvFiles are .env files loaded into the process environment. Nil means
	// ".env" in the working directory when present.
	EnvFiles []string
	// Flags are bound by name: game-dir, memory, jvm-args, validation,
	// grace-period, timeout.
	Flags *pflag.FlagSet

	Profile platform.Profile
	Env     platform.Env
}

var flagKeys = map[string]string{
	"game-dir":     "game_dir",
	"memory":       "memory_mb",
	"jvm-args":     "jvm_args",
	"validation":   "validation",
	"grace-period": "grace_period",
	"timeout":      "http_timeout",
}

// Load resolves the configuration. Later sources override earlier ones:
// defaults, config file, environment (.env included), flags.
func Load(opts LoadOptions) (Config, string, error) {
	if opts.Profile == nil {
		opts.Profile = platform.Current()
	}
	if opts.Env.Getenv == nil {
		opts.Env = platform.HostEnv()
	}

	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return Config{}, "", err
	}

	def := Default(opts.Profile, opts.Env)
	v := viper.New()
	v.SetDefault("game_version", def.GameVersion)
	v.SetDefault("loader_version", def.LoaderVersion)
	v.SetDefault("runtime_major", def.RuntimeMajor)
	v.SetDefault("manifest_url", def.ManifestURL)
	v.SetDefault("loader_meta_url", def.LoaderMetaURL)
	v.SetDefault("loader_maven_url", def.LoaderMavenURL)
	v.SetDefault("asset_base_url", def.AssetBaseURL)
	v.SetDefault("runtime_url", def.RuntimeURL)
	v.SetDefault("cdn_base_url", def.CDNBaseURL)
	v.SetDefault("modpack_manifest_url", def.ModpackManifestURL)
	v.SetDefault("game_dir", def.GameDir)
	v.SetDefault("http_timeout", def.HTTPTimeout)
	v.SetDefault("user_agent", def.UserAgent)
	v.SetDefault("validation", def.Validation.String())
	v.SetDefault("asset_workers", def.AssetWorkers)
	v.SetDefault("asset_progress_every", def.AssetProgressEvery)
	v.SetDefault("memory_mb", def.MemoryMB)
	v.SetDefault("min_heap_mb", def.MinHeapMB)
	v.SetDefault("jvm_args", def.JVMArgs)
	v.SetDefault("grace_period", def.GracePeriod)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, "", fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	resolvedPath := ""
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, "", fmt.Errorf("reading config file %s: %w", opts.ConfigFile, err)
		}
		resolvedPath = opts.ConfigFile
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(v.GetString("game_dir"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, "", fmt.Errorf("reading config file: %w", err)
			}
		} else {
			resolvedPath = v.ConfigFileUsed()
		}
	}

	validation, err := fetch.ParseValidationLevel(v.GetString("validation"))
	if err != nil {
		return Config{}, "", err
	}

	cfg := Config{
		GameVersion:        v.GetString("game_version"),
		LoaderVersion:      v.GetString("loader_version"),
		RuntimeMajor:       v.GetInt("runtime_major"),
		ManifestURL:        v.GetString("manifest_url"),
		LoaderMetaURL:      v.GetString("loader_meta_url"),
		LoaderMavenURL:     v.GetString("loader_maven_url"),
		AssetBaseURL:       v.GetString("asset_base_url"),
		RuntimeURL:         v.GetString("runtime_url"),
		CDNBaseURL:         v.GetString("cdn_base_url"),
		ModpackManifestURL: v.GetString("modpack_manifest_url"),
		GameDir:            v.GetString("game_dir"),
		HTTPTimeout:        v.GetDuration("http_timeout"),
		UserAgent:          v.GetString("user_agent"),
		Validation:         validation,
		AssetWorkers:       v.GetInt("asset_workers"),
		AssetProgressEvery: v.GetInt("asset_progress_every"),
		MemoryMB:           v.GetInt("memory_mb"),
		MinHeapMB:          v.GetInt("min_heap_mb"),
		JVMArgs:            v.GetString("jvm_args"),
		GracePeriod:        v.GetDuration("grace_period"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, resolvedPath, nil
}

func loadEnvFiles(files []string) error {
	if files == nil {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		files = []string{".env"}
	}
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("loading env files: %w", err)
	}
	return nil
}
