package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mcoot/gamerhub/internal/factory"
	"github.com/mcoot/gamerhub/internal/services/guard"
	"github.com/mcoot/gamerhub/internal/storage"
	"github.com/mcoot/gamerhub/internal/workspace"
)

// workspaceID scopes the state the CLI persists between runs
const workspaceID = "cli"

var (
	cfg *Config
	app *factory.App
	ws  *workspace.Workspace
	out *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "gamerhub",
		Short: "CLI client for the GamerHub API",
		Long: `gamerhub is a command-line client for the GamerHub game catalog API.

It logs in, manages household profiles, browses the catalog as the active
profile, keeps per-profile watchlists and runs the admin operations.
The session and active profile are kept in a state file between runs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			out = NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return open(cmd.Context(), cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "GamerHub API base URL (env: GAMERHUB_API_URL)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Bearer token for this run only (env: GAMERHUB_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.StateFile, "state-file", cfg.StateFile, "State file path (env: GAMERHUB_STATE_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.Profile, "profile", cfg.Profile, "Profile id to act as")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newWatchlistCmd())
	rootCmd.AddCommand(newAdminCmd())

	return rootCmd
}

// Run executes the CLI with args and releases everything it opened
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	defer closeApp()
	return cmd.ExecuteContext(ctx)
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		NewOutput(cfg.Output, os.Stdout, os.Stderr).PrintError(err)
		stop()
		os.Exit(1)
	}
}

// open wires the client and restores the saved session. A token passed in
// is kept in memory and never written to the state file.
func open(ctx context.Context, stderr io.Writer) error {
	level := slog.LevelError
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	factoryCfg := factory.Config{
		APIURL:      cfg.APIURL,
		Logger:      logger,
		StorageType: factory.StorageTypeFile,
		StatePath:   cfg.StateFile,
	}
	if cfg.Token != "" {
		factoryCfg.StorageType = factory.StorageTypeMemory
	}

	a, err := factory.New(factoryCfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	app = a

	if cfg.Token != "" {
		if err := a.Storage.SaveToken(ctx, storage.Scope(workspaceID), cfg.Token); err != nil {
			return fmt.Errorf("failed to use token: %w", err)
		}
	}

	w := a.Workspace(workspaceID)
	if err := w.Open(ctx); err != nil {
		return err
	}
	ws = w

	if cfg.Profile != "" && w.Session.Authenticated() {
		if _, err := w.UseProfile(ctx, cfg.Profile); err != nil {
			return fmt.Errorf("failed to select profile %s: %w", cfg.Profile, err)
		}
	}
	return nil
}

func closeApp() {
	if ws != nil {
		ws.Close()
		ws = nil
	}
	if app != nil {
		_ = app.Close()
		app = nil
	}
}

// require checks the workspace against a route requirement, the same one the
// web client applies to the matching screen
func require(req guard.Requirement) error {
	decision := guard.Evaluate(ws.Subject(), req)
	if decision.Allowed() {
		return nil
	}
	switch decision.State {
	case guard.StateUnauthenticated:
		if ws.Session.Unverified() {
			return errors.New("could not reach the API to check the saved session; try again")
		}
		return errors.New("not logged in: run 'gamerhub auth login' first")
	case guard.StateNeedsProfile:
		return errors.New("no profile selected: run 'gamerhub profile select <id>' or pass --profile")
	default:
		return errors.New(decision.Notice.Message)
	}
}
