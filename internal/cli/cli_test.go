package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lun-4/obsidian-maid/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDoc = `# Tasks

- [ ] only open task [priority:: 2]
	- [x] done child [completion:: 2024-01-02]
- [x] paid rent [completion:: 2024-01-03]
- [ ] paused [priority:: -1]
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDoc(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "todo.md")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSamplePrintsOnlyEligibleTask(t *testing.T) {
	path := writeDoc(t, testDoc)
	out, _, err := run(t, "sample", path, "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, "line:3 - [ ] only open task [priority:: 2]\n", out)
}

func TestSampleNoEligibleTask(t *testing.T) {
	path := writeDoc(t, "- [x] done\n- [ ] paused [priority:: -1]\n")
	out, _, err := run(t, "sample", path)
	require.NoError(t, err)
	assert.Equal(t, "no eligible task\n", out)
}

func TestSampleUnderSubtree(t *testing.T) {
	path := writeDoc(t, "- [ ] a\n- [x] b\n\t- [ ] c\n")
	out, _, err := run(t, "sample", path, "--under", "2", "--seed", "1")
	require.NoError(t, err)
	assert.Equal(t, "line:3 - [ ] c\n", out)

	_, _, err = run(t, "sample", path, "--under", "9")
	assert.ErrorContains(t, err, "no task at line 9")
}

func TestSampleSeedIsReproducible(t *testing.T) {
	path := writeDoc(t, "- [ ] a\n- [ ] b [priority:: 3]\n- [ ] c [priority:: 5]\n")
	first, _, err := run(t, "sample", path, "--seed", "42")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, _, err := run(t, "sample", path, "--seed", "42")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestReorderPrintsBuckets(t *testing.T) {
	path := writeDoc(t, testDoc)
	out, _, err := run(t, "reorder", path)
	require.NoError(t, err)
	want := "## unprioritized\n" +
		"\n" +
		"## prioritized\n" +
		"- [ ] only open task [priority:: 2]\n" +
		"\t- [x] done child [completion:: 2024-01-02]\n" +
		"- [ ] paused [priority:: -1]\n" +
		"\n" +
		"## done\n" +
		"- [x] paid rent [completion:: 2024-01-03]\n"
	assert.Equal(t, want, out)

	unchanged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, testDoc, string(unchanged))
}

func TestReorderWriteRequiresSetting(t *testing.T) {
	path := writeDoc(t, testDoc)
	_, _, err := run(t, "reorder", path, "--write")
	assert.ErrorIs(t, err, config.ErrReorderDisabled)
}

func TestReorderWriteReplacesFile(t *testing.T) {
	path := writeDoc(t, testDoc)
	t.Setenv("MAID_REORDER_ENABLED", "1")

	preview, _, err := run(t, "reorder", path)
	require.NoError(t, err)
	out, _, err := run(t, "reorder", path, "--write")
	require.NoError(t, err)
	assert.Empty(t, out)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, preview, string(written))

	// A second pass over the written file changes nothing.
	again, _, err := run(t, "reorder", path)
	require.NoError(t, err)
	assert.Equal(t, preview, again)
}

func TestReorderIndentFlag(t *testing.T) {
	path := writeDoc(t, testDoc)
	out, _, err := run(t, "reorder", path, "--indent", "  ")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  - [x] done child")
}

func TestPriorityCommand(t *testing.T) {
	path := writeDoc(t, "- [ ] parent [priority:: 4]\n\t- [ ] child\n- [ ] loose\n")
	out, _, err := run(t, "priority", path, "2")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	out, _, err = run(t, "priority", path, "3", "--default-priority", "7")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	out, _, err = run(t, "priority", path, "2", "--inherit=false")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, _, err = run(t, "priority", path, "0")
	assert.Error(t, err)
}

func TestBucketsCommand(t *testing.T) {
	path := writeDoc(t, testDoc)
	out, _, err := run(t, "buckets", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"anomalous (0)",
		"unprioritized (0)",
		"prioritized (2)",
		"  line:3 priority:2 - [ ] only open task [priority:: 2]",
		"    line:4 priority:2 - [x] done child [completion:: 2024-01-02]",
		"  line:6 priority:-1 - [ ] paused [priority:: -1]",
		"done (1)",
		"  line:5 priority:1 - [x] paid rent [completion:: 2024-01-03]",
	}, lines)
}

func TestHistoryRecordsRuns(t *testing.T) {
	path := writeDoc(t, testDoc)
	_, _, err := run(t, "sample", path, "--seed", "1")
	require.NoError(t, err)

	out, _, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "sample")
	assert.Contains(t, out, "line:3 - [ ] only open task")

	out, _, err = run(t, "history", "--operation", "reorder")
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", out)

	_, _, err = run(t, "history", "--operation", "delete")
	assert.Error(t, err)
}

func TestJournalDisabled(t *testing.T) {
	path := writeDoc(t, testDoc)
	_, _, err := run(t, "sample", path, "--journal", "")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(filepath.Dir(path), ".maid"))
	assert.True(t, os.IsNotExist(statErr))

	_, _, err = run(t, "history", "--journal", "")
	assert.ErrorIs(t, err, errJournalDisabled)
}

func TestConfigInitAndShow(t *testing.T) {
	writeDoc(t, testDoc)
	out, _, err := run(t, "config", "init", "--default-priority", "3")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultFileName+"\n", out)

	_, _, err = run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	out, _, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_priority: 3")
	assert.Contains(t, out, "reorder_enabled: false")
}

func TestMissingDocument(t *testing.T) {
	writeDoc(t, "")
	_, _, err := run(t, "sample", "nope.md")
	assert.Error(t, err)
}

func TestLogFormatValidation(t *testing.T) {
	path := writeDoc(t, testDoc)
	_, _, err := run(t, "sample", path, "--log-format", "xml")
	assert.ErrorContains(t, err, "unknown log format")

	_, errOut, err := run(t, "sample", path, "--log-format", "json", "--verbose", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, errOut, `"msg":"sampled"`)
}

func TestReorderWriteKeepsNotes(t *testing.T) {
	doc := "100. [ ] wide [priority:: 2]\n" +
		"     - [ ] nested\n" +
		"- [x] paid rent\n" +
		"- [ ] task one\n" +
		"  notes about it\n"
	path := writeDoc(t, doc)
	t.Setenv("MAID_REORDER_ENABLED", "1")

	_, _, err := run(t, "reorder", path, "--write")
	require.NoError(t, err)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "## unprioritized\n"+
		"- [ ] task one\n"+
		"  notes about it\n"+
		"\n"+
		"## prioritized\n"+
		"100. [ ] wide [priority:: 2]\n"+
		"     - [ ] nested\n"+
		"\n"+
		"## done\n"+
		"- [x] paid rent\n", string(written))
}
