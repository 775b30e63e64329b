package cli

import (
	"fmt"
	"path/filepath"

	"github.com/lun-4/obsidian-maid/internal/storage"
	"github.com/spf13/cobra"
)

func newHistoryCommand(a *app) *cobra.Command {
	var (
		limit     int
		document  string
		operation string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent samples and reorders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := storage.RunFilter{Limit: limit, Operation: storage.Operation(operation)}
			if operation != "" && !filter.Operation.IsValid() {
				return fmt.Errorf("%w: %q", storage.ErrInvalidOperation, operation)
			}
			if document != "" {
				abs, err := filepath.Abs(document)
				if err != nil {
					return err
				}
				filter.Document = abs
			}

			journal, err := a.openJournal()
			if err != nil {
				return err
			}
			defer journal.Close()

			runs, err := journal.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				detail := fmt.Sprintf("%d tasks", r.TaskCount)
				if r.Position != nil {
					detail = fmt.Sprintf("line:%d %s", *r.Position+1, r.TaskText)
				} else if r.Operation == storage.OperationSample {
					detail = "no eligible task"
				}
				fmt.Fprintf(w, "%s  %-8s %s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Operation, r.Document, detail)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	cmd.Flags().StringVar(&document, "document", "", "only runs for this document")
	cmd.Flags().StringVar(&operation, "operation", "", "only sample or reorder runs")
	return cmd
}
