package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"orion/config"
	"orion/reveal"
	"orion/search"
)

var version = "0.3"

// exitCancelled is returned when the user interrupts a search
const exitCancelled = 130

// app carries state shared by every subcommand
type app struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	verbose    bool
	cfg        *config.Config

	revealer   reveal.Revealer
	isTerminal func() bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		revealer: reveal.System(),
		isTerminal: func() bool {
			fd := os.Stderr.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// logger returns the diagnostics logger for non-interactive commands
func (a *app) logger() *log.Logger {
	if !a.verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(a.stderr, "orion ", log.LstdFlags)
}

// NewRootCommand builds the orion command tree writing to the given streams
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	return newRootCommand(newApp(stdout, stderr))
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "orion",
		Short: "Orion - fast file name search",
		Long: `Orion finds files beneath a directory whose relative path contains a
case-insensitive substring, optionally restricted to one extension:

  orion find report extension:pdf`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := config.NewViper(a.configFile)
			for _, key := range []string{"root", "workers"} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
					return fmt.Errorf("failed to bind flag %s: %w", key, err)
				}
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is "+config.DefaultPath()+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log search diagnostics to stderr")
	flags.StringP("root", "r", ".", "directory to search")
	flags.IntP("workers", "w", 0, "available parallelism (0 = all cores)")

	root.AddCommand(
		newFindCommand(a),
		newTUICommand(a),
		newRevealCommand(a),
		newConfigCommand(a),
		newVersionCommand(a),
	)
	return root
}

func newFindCommand(a *app) *cobra.Command {
	var noProgress bool
	cmd := &cobra.Command{
		Use:   "find [query...]",
		Short: "Search once and print matching paths",
		Long: `Search once and print matching paths. The query words are joined with
spaces; append "extension:<ext>" to filter by extension.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFind(cmd.Context(), strings.Join(args, " "), noProgress)
		},
	}
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not draw a progress bar")
	return cmd
}

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Search interactively (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd.Context())
		},
	}
}

func newRevealCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reveal <path>",
		Short: "Show a file in the system file manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[0], err)
			}
			return a.revealer.Reveal(path)
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.WriteDefault(path, force); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, successStyle.Render("Wrote "+path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().StringVar(&path, "path", "", "destination (default is "+config.DefaultPath()+")")

	cmd.AddCommand(initCmd)
	return cmd
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, successStyle.Render("orion v"+version))
		},
	}
}

// Run executes the command line and returns a process exit code
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, search.ErrCancelled) {
			fmt.Fprintln(os.Stderr, warningStyle.Render("search cancelled"))
			return exitCancelled
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}
