package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lun-4/obsidian-maid/internal/config"
	"github.com/spf13/cobra"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	logFormat  string
	verbose    bool

	settings config.Settings
	logger   *slog.Logger
	now      func() time.Time
}

// NewRootCommand builds the maid command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{now: time.Now}

	root := &cobra.Command{
		Use:   "maid",
		Short: "Sample and reorder markdown checklist tasks",
		Long: `maid reads markdown checklists, picks the next task to work on
weighted by priority, and reorders documents into status buckets.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "settings file (default ./"+config.DefaultFileName+")")
	pf.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.Int("default-priority", config.DefaultSettings().DefaultPriority, "priority of tasks with no priority and no prioritized ancestor")
	pf.Bool("inherit", config.DefaultSettings().PriorityInheritance, "inherit priority from the nearest prioritized ancestor")
	pf.String("journal", config.DefaultSettings().JournalPath, "run journal database (empty disables it)")

	root.AddCommand(
		newSampleCommand(a),
		newReorderCommand(a),
		newBucketsCommand(a),
		newPriorityCommand(a),
		newHistoryCommand(a),
		newTUICommand(a),
		newConfigCommand(a),
	)
	return root
}

// Execute runs the root command and reports errors on stderr.
func Execute(version string) error {
	root := NewRootCommand(version)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.logFormat, a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	settings, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.settings = settings
	a.logger.Debug("settings loaded",
		"config", a.configPath,
		"default_priority", settings.DefaultPriority,
		"priority_inheritance", settings.PriorityInheritance,
		"reorder_enabled", settings.ReorderEnabled,
	)
	return nil
}

func newLogger(w io.Writer, format string, verbose bool) (*slog.Logger, error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}
