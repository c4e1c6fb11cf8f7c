// Package cli builds the grpm command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atomicstack/grpm/internal/app"
	"github.com/atomicstack/grpm/internal/backend"
	"github.com/atomicstack/grpm/internal/config"
	"github.com/atomicstack/grpm/internal/logging"
	"github.com/atomicstack/grpm/internal/release"
	"github.com/spf13/cobra"
)

const usageArgs = "[OWNER[/REPO]] [REPO] [RELEASE-PATTERN] [ASSET-PATTERN]"

// Deps are the collaborators the commands reach out to.
type Deps struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Environ []string
	// Startup runs once the configuration is resolved, before any command work.
	Startup func(config.Config)
	// RunTUI runs the interactive session.
	RunTUI func(context.Context, app.Config) (*release.Asset, error)
	// NewClient builds the repository client for non-interactive commands.
	NewClient func(app.Config) (backend.Client, func() error, error)
}

func (d Deps) withDefaults() Deps {
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
	if d.Startup == nil {
		d.Startup = func(config.Config) {}
	}
	if d.RunTUI == nil {
		d.RunTUI = app.Run
	}
	if d.NewClient == nil {
		d.NewClient = app.NewClient
	}
	return d
}

// Execute runs the command tree for args and returns the process exit code.
func Execute(ctx context.Context, args []string, deps Deps) int {
	deps = deps.withDefaults()
	root := NewRootCommand(deps)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	logging.Error(err)
	fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
	if config.IsConfigError(err) {
		return 2
	}
	return 1
}

// NewRootCommand assembles the root command and its subcommands.
func NewRootCommand(deps Deps) *cobra.Command {
	deps = deps.withDefaults()
	root := &cobra.Command{
		Use:           "grpm " + usageArgs,
		Short:         "Browse GitHub releases and their assets in the terminal",
		Args:          maxArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          tuiRunE(deps),
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	config.RegisterFlags(root.PersistentFlags())
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &config.Error{Err: err}
	})
	root.AddCommand(newTUICommand(deps), newSearchCommand(deps), newVersionCommand())
	return root
}

func newTUICommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "tui " + usageArgs,
		Short: "Start the interactive release browser",
		Args:  maxArgs(4),
		RunE:  tuiRunE(deps),
	}
}

func tuiRunE(deps Deps) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := resolve(cmd, args, deps)
		if err != nil {
			return err
		}
		selected, err := deps.RunTUI(cmd.Context(), cfg.App)
		if err != nil {
			return err
		}
		if selected != nil && selected.DownloadURL != "" {
			fmt.Fprintln(cmd.OutOrStdout(), selected.DownloadURL)
		}
		return nil
	}
}

// resolve turns the parsed command line into a Config and configures logging.
func resolve(cmd *cobra.Command, args []string, deps Deps) (config.Config, error) {
	cfg, err := config.Resolve(cmd.Flags(), args, deps.Environ)
	if err != nil {
		return config.Config{}, err
	}
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)
	deps.Startup(cfg)
	return cfg, nil
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) > n {
			return &config.Error{Err: fmt.Errorf("accepts at most %d arg(s), received %d", n, len(args))}
		}
		return nil
	}
}
