package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/hegemonia/launcher/internal/config"
	"github.com/hegemonia/launcher/internal/orchestrator"
	"github.com/hegemonia/launcher/internal/platform"
	"github.com/hegemonia/launcher/internal/progress"
	"github.com/hegemonia/launcher/pkg/logging"
)

var version = "0.1.0"

func getBuildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return "unknown"
}

type app struct {
	configFile string
	logLevel   string

	username    string
	uuid        string
	accessToken string
	userType    string
	server      string
	port        int

	// progress is where the renderer draws; nil disables it.
	progress *os.File
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "hegemonia-launcher",
		Short:         "Install and start the Hegemonia game client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Path to a config file (yaml, toml or json)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error; json[:level] for JSON)")
	pf.String("game-dir", "", "Game directory")
	pf.Int("memory", 0, "Maximum heap in MiB")
	pf.String("jvm-args", "", "Extra JVM arguments")
	pf.String("validation", "", "Checksum validation (strict, standard, relaxed, minimal, none)")
	pf.Duration("grace-period", 0, "How long to watch the game for an early crash")
	pf.Duration("timeout", 0, "HTTP timeout")

	launchCmd := &cobra.Command{
		Use:   "launch",
		Short: "Install anything missing and start the game",
		Args:  cobra.NoArgs,
		RunE:  a.runLaunch,
	}
	f := launchCmd.Flags()
	f.StringVarP(&a.username, "username", "u", "", "Player name (required)")
	f.StringVar(&a.uuid, "uuid", "", "Player UUID (derived from the name when empty)")
	f.StringVar(&a.accessToken, "access-token", "", "Session access token")
	f.StringVar(&a.userType, "user-type", "", "Account type passed to the game")
	f.StringVar(&a.server, "server", "", "Server to join on start")
	f.IntVar(&a.port, "port", 0, "Server port")

	root.AddCommand(
		launchCmd,
		&cobra.Command{
			Use:   "install",
			Short: "Download the game, loader, modpack and Java runtime without starting",
			Args:  cobra.NoArgs,
			RunE:  a.runInstall,
		},
		&cobra.Command{
			Use:   "runtime",
			Short: "Find or download the Java runtime and print its location",
			Args:  cobra.NoArgs,
			RunE:  a.runRuntime,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print what is installed in the game directory as JSON",
			Args:  cobra.NoArgs,
			RunE:  a.runStatus,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "hegemonia-launcher %s\n", version)
				fmt.Fprintf(out, "Built: %s\n", getBuildTimestamp())
				fmt.Fprintf(out, "Minecraft %s, Fabric %s, Java %d\n",
					config.DefaultGameVersion, config.DefaultLoaderVersion, config.DefaultRuntimeMajor)
			},
		},
	)
	return root
}

// session is one configured orchestrator plus what has to be torn down.
type session struct {
	orch     *orchestrator.Orchestrator
	renderer *renderer
}

func (s *session) close() {
	if s.renderer != nil {
		s.renderer.Close()
	}
}

func (a *app) open(cmd *cobra.Command) (*session, error) {
	logger := logging.NewLogger("hegemonia-launcher", logging.GetLogLevel(a.logLevel, "info"), nil)

	profile := platform.Current()
	cfg, cfgPath, err := config.Load(config.LoadOptions{
		ConfigFile: a.configFile,
		Flags:      cmd.Flags(),
		Profile:    profile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	logger.Debug("🔧 configuration loaded", "file", cfgPath, "game_dir", cfg.GameDir,
		"game", cfg.GameVersion, "loader", cfg.LoaderVersion, "validation", cfg.Validation.String())

	s := &session{}
	var reporters []progress.Reporter
	if a.progress != nil {
		s.renderer = newRenderer(a.progress)
		reporters = append(reporters, s.renderer)
	}
	if logger.IsDebug() {
		reporters = append(reporters, progress.Log(logger.Named("progress")))
	}
	s.orch = orchestrator.New(cfg, profile, logger, orchestrator.WithReporter(progress.Multi(reporters...)))
	return s, nil
}

func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func (a *app) runLaunch(cmd *cobra.Command, _ []string) error {
	if a.username == "" {
		return fmt.Errorf("%w: --username is required", errUsage)
	}
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := interruptible(cmd)
	defer stop()

	msg, err := s.orch.Launch(ctx, orchestrator.Request{
		Username:    a.username,
		UUID:        a.uuid,
		AccessToken: a.accessToken,
		UserType:    a.userType,
		Server:      a.server,
		Port:        a.port,
	})
	if err != nil {
		return err
	}
	s.close()
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

func (a *app) runInstall(cmd *cobra.Command, _ []string) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := interruptible(cmd)
	defer stop()

	prepared, err := s.orch.Prepare(ctx)
	if err != nil {
		return err
	}
	handle, err := s.orch.ProvisionRuntime(ctx)
	if err != nil {
		return err
	}
	s.close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Minecraft %s installed in %s\n", prepared.Version.ID, s.orch.Layout().Root())
	fmt.Fprintf(out, "Classpath: %d entries, main class %s\n", len(prepared.Classpath), prepared.MainClass)
	if prepared.Assets != nil {
		fmt.Fprintf(out, "Assets: %d objects, %d downloaded, %d failed\n",
			prepared.Assets.Total, prepared.Assets.Fetched, prepared.Assets.Failed)
	}
	fmt.Fprintf(out, "Mods: %d installed\n", prepared.ModCount)
	if prepared.Modpack != nil && len(prepared.Modpack.MissingRequired) > 0 {
		fmt.Fprintf(out, "Missing required mods: %v\n", prepared.Modpack.MissingRequired)
	}
	fmt.Fprintf(out, "Java %s (%s): %s\n", handle.Version, handle.Source, handle.Path)
	return nil
}

func (a *app) runRuntime(cmd *cobra.Command, _ []string) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := interruptible(cmd)
	defer stop()

	handle, err := s.orch.ProvisionRuntime(ctx)
	if err != nil {
		return err
	}
	s.close()
	fmt.Fprintf(cmd.OutOrStdout(), "Java %s (%s): %s\n", handle.Version, handle.Source, handle.Path)
	return nil
}

func (a *app) runStatus(cmd *cobra.Command, _ []string) error {
	s, err := a.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	return writeJSON(cmd.OutOrStdout(), s.orch.Status())
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func run(args []string, stdout, stderr io.Writer, progressOut *os.File) int {
	a := &app{progress: progressOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil {
		msg := err.Error()
		if errors.Is(err, errUsage) {
			msg += "\nRun 'hegemonia-launcher --help' for usage."
		}
		fmt.Fprintln(stderr, msg)
	}
	return exitCode(err)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC: %v\n", r)
			debug.PrintStack()
			os.Exit(ExitPanic)
		}
	}()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Stderr))
}
