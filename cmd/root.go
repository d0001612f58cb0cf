package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/diskprune/internal/clearing"
	"github.com/lumipallolabs/diskprune/internal/config"
	"github.com/lumipallolabs/diskprune/internal/core"
	"github.com/lumipallolabs/diskprune/internal/logging"
	"github.com/lumipallolabs/diskprune/internal/scanner"
	"github.com/lumipallolabs/diskprune/internal/stats"
	"github.com/lumipallolabs/diskprune/internal/ui/tui"
)

var errNoTerminal = errors.New("diskprune needs an interactive terminal")

// options holds the command line flags
type options struct {
	configPath string
	exclude    []string
	noConfirm  bool
	crossFS    bool
	workers    int
}

var (
	// Version info populated from main
	appVersion = "dev"

	rootCmd = newRootCmd(&options{})
)

// SetVersion sets the build-time version
func SetVersion(version string) {
	appVersion = version
	rootCmd.Version = version
}

func newRootCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diskprune [path]",
		Short: "Browse disk usage and clear directories",
		Long: `DiskPrune scans a directory, shows what takes up the space,
and empties the directories you pick while keeping the view in step.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: first of the standard locations)")
	flags.StringArrayVar(&opts.exclude, "exclude", nil, "gitignore-style pattern to list but not descend (repeatable)")
	flags.BoolVar(&opts.noConfirm, "no-confirm", false, "clear without asking first")
	flags.BoolVar(&opts.crossFS, "cross-fs", false, "descend into other filesystems")
	flags.IntVar(&opts.workers, "workers", 0, "parallel scan workers")
	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies the flags on top
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, path, err := config.LoadDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		logging.Debug.WithField("path", path).Debug("config loaded")
	}

	cfg.Exclude = append(cfg.Exclude, opts.exclude...)
	if cmd.Flags().Changed("no-confirm") {
		confirm := !opts.noConfirm
		cfg.Confirm = &confirm
	}
	if cmd.Flags().Changed("cross-fs") {
		oneFS := !opts.crossFS
		cfg.OneFileSystem = &oneFS
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = opts.workers
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
		return errNoTerminal
	}

	statsManager := stats.NewManager("")
	if err := statsManager.Load(); err != nil {
		logging.Debug.WithError(err).Warn("loading stats")
	}

	ctrl, err := core.NewController(core.Options{
		Path:    path,
		Workers: cfg.Workers,
		Scan: scanner.Options{
			OneFileSystem: cfg.OneFileSystemEnabled(),
			Exclude:       cfg.Exclude,
		},
		Stats: statsManager,
		Prefs: &clearing.Prefs{NoConfirm: !cfg.ConfirmEnabled()},
	})
	if err != nil {
		return err
	}
	defer ctrl.Stop()

	p := tea.NewProgram(
		tui.NewApp(appVersion, ctrl),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
