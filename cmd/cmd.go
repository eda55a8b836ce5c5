package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitscope/internal/buildinfo"
	"github.com/thiagokokada/gitscope/internal/config"
	"github.com/thiagokokada/gitscope/internal/git"
	gitbackend "github.com/thiagokokada/gitscope/internal/git/backend"
	"github.com/thiagokokada/gitscope/internal/telemetry"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

type app struct {
	repoPath   string
	configPath string
	backend    string
	verbose    bool

	stderr   io.Writer
	cfg      *config.Config
	svc      *git.Service
	shutdown telemetry.ShutdownFunc
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (err error) {
	a := &app{stderr: stderr}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	defer func() {
		if a.shutdown == nil {
			return
		}
		if shutdownErr := a.shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("telemetry shutdown: %w", shutdownErr))
		}
	}()
	return root.ExecuteContext(ctx)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gitscope",
		Short: "List the files changed against a branch, tag, or commit",
		Long: `gitscope computes the set of files that differ between the working tree
and a chosen reference: committed changes since the merge-base (or the
reference tip when pinned) plus staged and unstaged edits.`,
		Version:           buildinfo.VersionWithTags(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&a.repoPath, "repo", "C", ".", "path inside the repository")
	flags.StringVar(&a.configPath, "config", "", "config file (default <repo root>/"+config.DefaultFile+")")
	flags.StringVar(&a.backend, "backend", "", "repository backend: native or gitcli (overrides config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(
		a.changesetCmd(),
		a.branchesCmd(),
		a.commitsCmd(),
		a.tagsCmd(),
		a.hydrateCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) setupLogging() {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level})))
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.setupLogging()
	if cmd.Name() == "version" || cmd.Name() == "help" {
		return nil
	}

	root, err := git.FindRepositoryRoot(a.repoPath)
	if err != nil {
		return err
	}
	config.LoadDotEnv(filepath.Join(root, ".env"))
	cfgPath := a.configPath
	if cfgPath == "" {
		cfgPath = filepath.Join(root, config.DefaultFile)
	}
	a.cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}

	a.shutdown, err = telemetry.Setup(cmd.Context(), telemetry.Config{
		Endpoint:       a.cfg.Telemetry.OTLPEndpoint,
		ServiceVersion: buildinfo.Version(),
	})
	if err != nil {
		return err
	}

	name := a.cfg.Backend
	if a.backend != "" {
		name = a.backend
	}
	opener, err := gitbackend.ForName(name)
	if err != nil {
		return err
	}
	a.svc, err = git.Open(root, opener)
	if err != nil {
		return err
	}
	slog.Debug("repository opened", slog.String("root", a.svc.Root()), slog.String("backend", name))
	return nil
}
