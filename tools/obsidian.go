package tools

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ErrVaultNotConfigured reports a missing vault path.
var ErrVaultNotConfigured = errors.New("obsidian: vault path must be configured")

const dailyNotesDir = "Daily Notes"

// Vault writes daily notes into an Obsidian vault using the standard
// YYYY-MM-DD.md naming convention under the "Daily Notes" folder.
type Vault struct {
	Path string

	// now is swappable in tests.
	now func() time.Time
}

// NewVault builds a vault writer rooted at path.
func NewVault(path string) *Vault {
	return &Vault{Path: path, now: time.Now}
}

func (v *Vault) clock() time.Time {
	if v.now != nil {
		return v.now()
	}
	return time.Now()
}

// noteDate parses the optional YYYY-MM-DD date argument, defaulting to today.
func (v *Vault) noteDate(date string) (time.Time, error) {
	if date == "" {
		return v.clock(), nil
	}
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("obsidian: invalid date %q, use YYYY-MM-DD", date)
	}
	return parsed, nil
}

func (v *Vault) notePath(day time.Time) string {
	return filepath.Join(v.Path, dailyNotesDir, day.Format("2006-01-02")+".md")
}

// WriteDailyNote creates the daily note for the given date, or appends to it
// with a timestamped separator when it already exists. A second call for the
// same date therefore accumulates updates instead of overwriting. Returns a
// confirmation string naming the note path.
func (v *Vault) WriteDailyNote(content, date string) (string, error) {
	if v.Path == "" {
		return "", ErrVaultNotConfigured
	}
	day, err := v.noteDate(date)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(v.Path); err != nil {
		return "", fmt.Errorf("obsidian: vault path does not exist: %s", v.Path)
	}
	path := v.notePath(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		separator := fmt.Sprintf("\n\n---\n\n## Update at %s\n\n", v.clock().Format("15:04"))
		updated := append(existing, []byte(separator+content)...)
		if err := os.WriteFile(path, updated, 0o644); err != nil {
			return "", err
		}
		return fmt.Sprintf("Daily note updated: %s", path), nil
	case errors.Is(err, os.ErrNotExist):
		frontmatter := fmt.Sprintf(`---
date: %s
created: %s
tags: [daily-note]
---

# %s

`, day.Format("2006-01-02"), v.clock().Format(time.RFC3339), day.Format("Monday, January 2, 2006"))
		if err := os.WriteFile(path, []byte(frontmatter+content), 0o644); err != nil {
			return "", err
		}
		return fmt.Sprintf("Daily note created: %s", path), nil
	default:
		return "", err
	}
}

// ReadDailyNote returns the content of the daily note for the given date.
func (v *Vault) ReadDailyNote(date string) (string, error) {
	if v.Path == "" {
		return "", ErrVaultNotConfigured
	}
	day, err := v.noteDate(date)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(v.notePath(day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("obsidian: daily note for %s not found", day.Format("2006-01-02"))
		}
		return "", err
	}
	return string(data), nil
}

// AppendToSection inserts content directly below the named section header of
// the daily note, creating the section (or the whole note) when missing.
func (v *Vault) AppendToSection(section, content, date string) (string, error) {
	if v.Path == "" {
		return "", ErrVaultNotConfigured
	}
	day, err := v.noteDate(date)
	if err != nil {
		return "", err
	}

	header := section
	if !strings.HasPrefix(header, "#") {
		header = "## " + section
	}

	path := v.notePath(day)
	existing, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return v.WriteDailyNote(header+"\n\n"+content, date)
	}
	if err != nil {
		return "", err
	}

	text := string(existing)
	pattern := regexp.MustCompile("(?m)^" + regexp.QuoteMeta(header) + ".*$")
	var updated string
	if loc := pattern.FindStringIndex(text); loc != nil {
		updated = text[:loc[1]] + "\n" + content + text[loc[1]:]
	} else {
		updated = text + "\n\n" + header + "\n\n" + content
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return "", err
	}
	return fmt.Sprintf("Appended to section %q in %s", section, filepath.Base(path)), nil
}
