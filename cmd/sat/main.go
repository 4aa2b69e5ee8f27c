// Package main is the entry point for the Smart Anesthesia terminal log.
// The root command runs the Bubble Tea program; subcommands cover one-shot
// interpretation and build info.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/smart-anesthesia-tui/internal/app"
	"github.com/j-veylop/smart-anesthesia-tui/internal/config"
	"github.com/j-veylop/smart-anesthesia-tui/internal/logger"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services"
	"github.com/j-veylop/smart-anesthesia-tui/internal/services/interpreter"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/tabs/eventlog"
	"github.com/j-veylop/smart-anesthesia-tui/internal/ui/tabs/info"
	"github.com/j-veylop/smart-anesthesia-tui/internal/version"
)

func main() {
	if err := newRootCmd(nil).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// overrides are command-line settings applied on top of the loaded config.
type overrides struct {
	model string
	store string
}

func (o overrides) apply(cfg *config.Config) error {
	if o.model != "" {
		cfg.GeminiModel = o.model
	}
	if o.store != "" {
		cfg.SessionStore = strings.ToLower(o.store)
	}
	return cfg.Validate()
}

// newRootCmd builds the command tree. A nil completer selects the Gemini
// client from configuration.
func newRootCmd(completer interpreter.Completer) *cobra.Command {
	var opts overrides

	root := &cobra.Command{
		Use:   "sat",
		Short: "Smart Anesthesia - terminal anesthesia event log",
		Long: `Smart Anesthesia turns free-text clinical commands such as
"Give Fentanyl 50 mcg" into categorized log events and shows live
session metrics.

Keyboard Shortcuts:
  Enter           Submit the command
  Esc / i         Leave / focus the command field
  1-3             Switch between tabs (Dashboard, Log, Info)
  Tab/Shift+Tab   Navigate between tabs
  f / x           Cycle / clear the category filter (Log)
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  GEMINI_API_KEY   Text-generation credential (.env or environment)
  GEMINI_MODEL     Model name (default: gemini-pro)
  SESSION_STORE    memory or sqlite (default: memory)
  LOG_PATH         Log file for the TUI session`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, completer)
		},
	}

	root.PersistentFlags().StringVar(&opts.model, "model", "", "override GEMINI_MODEL")
	root.PersistentFlags().StringVar(&opts.store, "store", "", "override SESSION_STORE (memory|sqlite)")

	root.AddCommand(newInterpretCmd(&opts, completer), newVersionCmd())
	return root
}

func newInterpretCmd(opts *overrides, completer interpreter.Completer) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "interpret <command>",
		Short: "Interpret one clinical command and print the event as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := opts.apply(cfg); err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = logger.ParseLevel(cfg.LogLevel)
			}
			logger.Init(cmd.ErrOrStderr(), level)

			// One-shot runs never raise desktop alerts.
			cfg.DesktopAlerts = false

			mgr, err := services.NewManager(cfg, completer)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			defer mgr.Close()

			event, err := mgr.Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), event)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at LOG_LEVEL to stderr")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// runTUI loads configuration, starts the session and blocks until quit.
func runTUI(parent context.Context, opts overrides, completer interpreter.Completer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file.
	logFile, err := logger.OpenFile(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger.Init(logFile, logger.ParseLevel(cfg.LogLevel))

	svcManager, err := services.NewManager(cfg, completer)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	model := app.NewModel(svcManager).WithContext(ctx)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		eventlog.New(state),
		info.New(state, cfg),
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
