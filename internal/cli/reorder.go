package cli

import (
	"fmt"

	"github.com/lun-4/obsidian-maid/internal/reorder"
	"github.com/lun-4/obsidian-maid/internal/storage"
	"github.com/spf13/cobra"
)

func newReorderCommand(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "reorder FILE",
		Short: "Rewrite a document into status buckets",
		Long: `reorder prints FILE regrouped into anomalous, unprioritized, prioritized
and done sections. With --write the file is replaced, which requires
reorder_enabled in the settings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if write {
				if err := a.settings.GuardReorder(); err != nil {
					return err
				}
			}
			f, err := a.loadForest(path)
			if err != nil {
				return err
			}
			out, err := reorder.Reorder(f, a.settings.ReorderOptions())
			if err != nil {
				return err
			}

			if !write {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			if err := checkRoundTrip(out, f); err != nil {
				return err
			}
			if err := writeFileAtomic(path, []byte(out)); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			a.logger.Info("document reordered", "path", path, "tasks", f.Len(), "median_split", a.settings.MedianSplit)
			a.record(cmd.Context(), storage.Run{Document: path, Operation: storage.OperationReorder, TaskCount: f.Len()})
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "replace FILE with the reordered document")
	cmd.Flags().Bool("median-split", false, "split prioritized tasks at the median priority")
	cmd.Flags().String("indent", "\t", "indent unit for nested tasks")
	return cmd
}

func newBucketsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buckets FILE",
		Short: "Show the bucket layout with resolved priorities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.loadForest(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			layout := reorder.Plan(f, a.settings.ReorderOptions())
			for _, section := range layout.Sections {
				fmt.Fprintf(w, "%s (%d)\n", section.Bucket, len(section.Roots))
				for _, root := range section.Roots {
					base := f.Depth(root)
					for _, pos := range f.Subtree(root) {
						t, _ := f.Task(pos)
						fmt.Fprintf(w, "  %*sline:%d priority:%d %s\n", 2*(f.Depth(pos)-base), "", pos+1, f.ResolvePriority(pos), t.Title())
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("median-split", false, "split prioritized tasks at the median priority")
	return cmd
}

func newPriorityCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "priority FILE LINE",
		Short: "Print the resolved priority of the task on LINE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parseLine(args[1])
			if err != nil {
				return err
			}
			f, err := a.loadForest(args[0])
			if err != nil {
				return err
			}
			if !f.Has(pos) {
				return fmt.Errorf("no task at line %d", pos+1)
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.ResolvePriority(pos))
			return nil
		},
	}
}
