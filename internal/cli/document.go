package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lun-4/obsidian-maid/internal/extract"
	"github.com/lun-4/obsidian-maid/internal/model"
)

func (a *app) loadForest(path string) (*model.Forest, error) {
	ex := &extract.Extractor{Location: time.Local}
	records, err := ex.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	f, err := model.BuildForest(records, a.settings.Scheduling())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.logger.Debug("document loaded", "path", path, "tasks", f.Len())
	return f, nil
}

var errRoundTrip = errors.New("reorder: output does not re-extract to the same tasks")

// checkRoundTrip re-extracts out and refuses it unless it holds as many tasks
// as f.
func checkRoundTrip(out string, f *model.Forest) error {
	ex := &extract.Extractor{Location: time.Local}
	records, err := ex.Extract([]byte(out))
	if err != nil {
		return fmt.Errorf("%w: %w", errRoundTrip, err)
	}
	if len(records) != f.Len() {
		return fmt.Errorf("%w: found %d tasks, document has %d", errRoundTrip, len(records), f.Len())
	}
	return nil
}

// parseLine turns a one-based line argument into a task position.
func parseLine(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid line number %q", arg)
	}
	return n - 1, nil
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, keeping the original file mode.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
