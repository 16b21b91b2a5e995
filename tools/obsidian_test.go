package tools

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedVault(t *testing.T) *Vault {
	t.Helper()
	v := NewVault(t.TempDir())
	v.now = func() time.Time {
		return time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC)
	}
	return v
}

func TestWriteDailyNoteCreatesWithFrontmatter(t *testing.T) {
	v := fixedVault(t)

	confirmation, err := v.WriteDailyNote("## Tasks\n- [ ] Review PRs", "")
	require.NoError(t, err)
	assert.Contains(t, confirmation, "Daily note created")

	path := filepath.Join(v.Path, "Daily Notes", "2026-08-30.md")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "date: 2026-08-30")
	assert.Contains(t, content, "tags: [daily-note]")
	assert.Contains(t, content, "# Sunday, August 30, 2026")
	assert.Contains(t, content, "- [ ] Review PRs")
}

func TestWriteDailyNoteAppendsWithSeparator(t *testing.T) {
	v := fixedVault(t)

	_, err := v.WriteDailyNote("morning entry", "")
	require.NoError(t, err)
	confirmation, err := v.WriteDailyNote("afternoon entry", "")
	require.NoError(t, err)
	assert.Contains(t, confirmation, "Daily note updated")

	content, err := v.ReadDailyNote("")
	require.NoError(t, err)
	assert.Contains(t, content, "morning entry")
	assert.Contains(t, content, "## Update at 14:30")
	assert.Contains(t, content, "afternoon entry")
}

func TestWriteDailyNoteExplicitDate(t *testing.T) {
	v := fixedVault(t)

	_, err := v.WriteDailyNote("past entry", "2026-01-07")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(v.Path, "Daily Notes", "2026-01-07.md"))
	assert.NoError(t, statErr)

	_, err = v.WriteDailyNote("entry", "07/01/2026")
	assert.Error(t, err)
}

func TestWriteDailyNoteUnconfigured(t *testing.T) {
	v := NewVault("")
	_, err := v.WriteDailyNote("entry", "")
	assert.ErrorIs(t, err, ErrVaultNotConfigured)
}

func TestWriteDailyNoteMissingVaultPath(t *testing.T) {
	v := NewVault(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := v.WriteDailyNote("entry", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vault path does not exist")
}

func TestReadDailyNoteMissing(t *testing.T) {
	v := fixedVault(t)
	_, err := v.ReadDailyNote("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAppendToSectionExisting(t *testing.T) {
	v := fixedVault(t)
	_, err := v.WriteDailyNote("## Tasks\n- first", "")
	require.NoError(t, err)

	confirmation, err := v.AppendToSection("Tasks", "- second", "")
	require.NoError(t, err)
	assert.Contains(t, confirmation, `Appended to section "Tasks"`)

	content, err := v.ReadDailyNote("")
	require.NoError(t, err)
	assert.Contains(t, content, "## Tasks\n- second\n- first")
}

func TestAppendToSectionCreatesSection(t *testing.T) {
	v := fixedVault(t)
	_, err := v.WriteDailyNote("## Tasks\n- first", "")
	require.NoError(t, err)

	_, err = v.AppendToSection("Notes", "remember the milk", "")
	require.NoError(t, err)

	content, err := v.ReadDailyNote("")
	require.NoError(t, err)
	assert.Contains(t, content, "## Notes\n\nremember the milk")
}

func TestAppendToSectionCreatesNote(t *testing.T) {
	v := fixedVault(t)
	_, err := v.AppendToSection("Notes", "first thought", "")
	require.NoError(t, err)

	content, err := v.ReadDailyNote("")
	require.NoError(t, err)
	assert.Contains(t, content, "## Notes\n\nfirst thought")
	assert.Contains(t, content, "tags: [daily-note]")
}
