package cli

import (
	"math/rand/v2"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lun-4/obsidian-maid/internal/scheduler"
	"github.com/lun-4/obsidian-maid/internal/update"
	"github.com/spf13/cobra"
)

func newTUICommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui FILE",
		Short: "Browse buckets, sample tasks and preview reorders interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.loadForest(args[0])
			if err != nil {
				return err
			}
			engine := scheduler.NewEngine(a.settings.ReminderBuffer)
			engine.Start()
			defer engine.Stop()

			m := update.NewModel(update.Options{
				Document:  args[0],
				Forest:    f,
				Settings:  a.settings,
				Scheduler: engine,
				Rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
				Now:       a.now,
			})
			a.logger.Debug("starting tui", "path", args[0], "due", engine.Pending())
			program := tea.NewProgram(m, tea.WithContext(cmd.Context()), tea.WithAltScreen())
			if _, err := program.Run(); err != nil {
				return err
			}
			if dropped := engine.Dropped(); dropped > 0 {
				a.logger.Warn("due events dropped", "count", dropped)
			}
			return nil
		},
	}
	cmd.Flags().Bool("median-split", false, "split prioritized tasks at the median priority")
	return cmd
}
