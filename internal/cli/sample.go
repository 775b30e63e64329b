package cli

import (
	"fmt"
	"math/rand/v2"

	"github.com/lun-4/obsidian-maid/internal/scheduler"
	"github.com/lun-4/obsidian-maid/internal/storage"
	"github.com/spf13/cobra"
)

func newSampleCommand(a *app) *cobra.Command {
	var (
		under string
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "sample FILE",
		Short: "Pick an open task weighted by priority",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := a.loadForest(path)
			if err != nil {
				return err
			}

			rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
			if cmd.Flags().Changed("seed") {
				rng = rand.New(rand.NewPCG(seed, seed))
			}

			var (
				pick scheduler.Pick
				ok   bool
			)
			if under != "" {
				root, err := parseLine(under)
				if err != nil {
					return err
				}
				if !f.Has(root) {
					return fmt.Errorf("no task at line %d", root+1)
				}
				pick, ok = scheduler.SampleSubtree(f, rng, root)
			} else {
				pick, ok = scheduler.Sample(f, rng)
			}

			run := storage.Run{Document: path, Operation: storage.OperationSample, TaskCount: f.Len()}
			if !ok {
				a.logger.Info("nothing to sample", "path", path, "tasks", f.Len())
				a.record(cmd.Context(), run)
				fmt.Fprintln(cmd.OutOrStdout(), "no eligible task")
				return nil
			}

			t, _ := f.Task(pick.Position)
			run.Position = &pick.Position
			run.TaskText = t.Title()
			a.logger.Debug("sampled", "path", path, "position", pick.Position, "weight", pick.Weight, "total", pick.Total)
			a.record(cmd.Context(), run)
			fmt.Fprintf(cmd.OutOrStdout(), "line:%d %s\n", pick.Position+1, t.Title())
			return nil
		},
	}
	cmd.Flags().StringVar(&under, "under", "", "only sample within the subtree of the task on this line")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for a reproducible draw")
	return cmd
}
