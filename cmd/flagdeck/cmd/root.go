package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wilbur182/flagdeck/internal/app"
	"github.com/wilbur182/flagdeck/internal/config"
	"github.com/wilbur182/flagdeck/internal/features"
	"github.com/wilbur182/flagdeck/internal/prefstore"
	"github.com/wilbur182/flagdeck/internal/store"
	"github.com/wilbur182/flagdeck/internal/version"
	"github.com/wilbur182/flagdeck/internal/watch"
)

var (
	cfgFile     string
	debugFlag   bool
	enableList  []string
	disableList []string
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flagdeck",
	Short: "Preview and apply experimental feature flags",
	Long: `flagdeck shows the experimental feature flags and preferences stored in
~/.config/flagdeck/config.json. Changes made in the settings modal are drafts
until applied; applying commits every draft at once and reloads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = cliLogger(cmd.ErrOrStderr())
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return printFlags(cmd.OutOrStdout())
		}
		return runTUI()
	},
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/flagdeck/config.json)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&enableList, "enable", nil, "Force a feature flag on for this run")
	rootCmd.PersistentFlags().StringSliceVar(&disableList, "disable", nil, "Force a feature flag off for this run")

	rootCmd.AddCommand(flagsCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(hintsCmd)
	rootCmd.AddCommand(versionCmd)
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.ConfigPath()
}

func configDir() string {
	return filepath.Dir(configPath())
}

// cliLogger logs warnings to w, or everything with --debug.
func cliLogger(w io.Writer) *slog.Logger {
	level := log.WarnLevel
	if debugFlag {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "flagdeck",
	}))
}

// tuiLogger writes to debug.log in the config directory with --debug. The
// TUI owns the terminal, so logs are dropped otherwise.
func tuiLogger(dir string) (*slog.Logger, func()) {
	if !debugFlag {
		return slog.New(log.NewWithOptions(io.Discard, log.Options{})), func() {}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return slog.New(log.NewWithOptions(io.Discard, log.Options{})), func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return slog.New(log.NewWithOptions(io.Discard, log.Options{})), func() {}
	}
	l := log.NewWithOptions(f, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Formatter:       log.LogfmtFormatter,
	})
	return slog.New(l), func() { _ = f.Close() }
}

// overrides merges --enable and --disable. Naming a flag in both is an error.
func overrides() (map[string]bool, error) {
	out := make(map[string]bool, len(enableList)+len(disableList))
	for _, name := range enableList {
		out[name] = true
	}
	for _, name := range disableList {
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("flag %q given to both --enable and --disable", name)
		}
		out[name] = false
	}
	return out, nil
}

// loadState loads the config and builds a store that saves back to it.
func loadState() (*store.Store, *config.Config, error) {
	path := configPath()
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	extra, err := features.LoadCatalog(cfg.Features.Catalog, configDir())
	if err != nil {
		logger.Warn("flag catalog ignored", "err", err)
	}
	flags := features.NewManager(cfg, extra...)

	ov, err := overrides()
	if err != nil {
		return nil, nil, err
	}
	for name, v := range ov {
		if err := flags.SetOverride(name, v); err != nil {
			return nil, nil, err
		}
	}

	st := store.New(cfg, flags,
		store.WithPersister(func(c *config.Config) error { return config.SaveTo(path, c) }),
		store.WithLogger(logger),
	)
	return st, cfg, nil
}

func runTUI() error {
	ov, err := overrides()
	if err != nil {
		return err
	}
	path := configPath()
	dir := configDir()

	tuiLog, closeLog := tuiLogger(dir)
	defer closeLog()

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ps, err := prefstore.Open(dir)
	if err != nil {
		tuiLog.Warn("preference store unavailable, hints disabled", "err", err)
		ps = nil
	} else {
		defer ps.Close()
	}

	w, err := watch.New(path)
	if err != nil {
		tuiLog.Warn("config watcher unavailable", "err", err)
		w = nil
	} else {
		defer w.Stop()
	}

	m, err := app.New(app.Options{
		ConfigPath: path,
		Overrides:  ov,
		Prefs:      ps,
		Version:    effectiveVersion(Version),
		Checker:    version.NewChecker(cfg.Version.Owner, cfg.Version.Repo),
		Watcher:    w,
		Logger:     tuiLog,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}
