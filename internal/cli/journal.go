package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/lun-4/obsidian-maid/internal/storage"
)

var errJournalDisabled = errors.New("journal disabled (journal_path is empty)")

func (a *app) openJournal() (storage.Journal, error) {
	if a.settings.JournalPath == "" {
		return nil, errJournalDisabled
	}
	return storage.OpenSQLite(a.settings.JournalPath)
}

// record appends run to the journal. Failures are logged and never fail the
// command that produced the run.
func (a *app) record(ctx context.Context, run storage.Run) {
	if a.settings.JournalPath == "" {
		return
	}
	if abs, err := filepath.Abs(run.Document); err == nil {
		run.Document = abs
	}
	journal, err := a.openJournal()
	if err != nil {
		a.logger.Warn("journal unavailable", "path", a.settings.JournalPath, "err", err)
		return
	}
	defer journal.Close()
	stored, err := journal.Record(ctx, run)
	if err != nil {
		a.logger.Warn("journal write failed", "path", a.settings.JournalPath, "err", err)
		return
	}
	a.logger.Debug("run recorded", "id", stored.ID, "operation", stored.Operation)
}
