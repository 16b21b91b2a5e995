package collector

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/dashbot/persistence"
	"github.com/lexcodex/dashbot/tools"
)

type stubIssues struct {
	issues []tools.Issue
	err    error
}

func (s *stubIssues) AssignedIssues(ctx context.Context) ([]tools.Issue, error) {
	return s.issues, s.err
}

type stubMail struct {
	emails []tools.EmailSummary
	err    error
	limit  int
}

func (s *stubMail) RecentUnread(ctx context.Context, limit int) ([]tools.EmailSummary, error) {
	s.limit = limit
	return s.emails, s.err
}

type stubVault struct {
	content string
	err     error
}

func (s *stubVault) WriteDailyNote(content, date string) (string, error) {
	s.content = content
	if s.err != nil {
		return "", s.err
	}
	return "Daily note created: vault/2026-08-30.md", nil
}

type stubArchive struct {
	saved *persistence.Snapshot
}

func (s *stubArchive) Save(ctx context.Context, snap *persistence.Snapshot) (int64, error) {
	s.saved = snap
	return 42, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestCollectorRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	issues := &stubIssues{issues: []tools.Issue{
		{Key: "OD-1", Summary: "Fix login", Status: "In Progress", Priority: "High"},
		{Key: "OD-2", Summary: "Upgrade CI", Status: "To Do"},
		{Key: "OD-3", Summary: "Patch deps", Status: "To Do", Priority: "High"},
	}}
	mail := &stubMail{emails: []tools.EmailSummary{
		{Subject: "Standup moved", From: "boss@example.com", Preview: "now at 10"},
	}}
	vault := &stubVault{}
	archive := &stubArchive{}

	c := New(dir,
		WithIssueSource(issues),
		WithMailSource(mail),
		WithNoteWriter(vault),
		WithArchive(archive),
		WithMailLimit(7),
		WithLogger(quietLogger()),
	)

	result, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, mail.limit)
	assert.Equal(t, 3, result.Payload.Summary.TotalTasks)
	assert.Equal(t, 1, result.Payload.Summary.TotalEmails)
	assert.Equal(t, map[string]int{"In Progress": 1, "To Do": 2}, result.Payload.Summary.TasksByStatus)
	assert.Equal(t, map[string]int{"High": 2, "Unspecified": 1}, result.Payload.Summary.TasksByPriority)

	// JSON artifact round-trips.
	data, err := os.ReadFile(filepath.Join(dir, "context_payload.json"))
	require.NoError(t, err)
	var payload Payload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "dashbot collector", payload.GeneratedBy)
	require.Len(t, payload.JiraTasks, 3)
	assert.Equal(t, "OD-1", payload.JiraTasks[0].Key)

	// Markdown artifact groups tasks by status.
	md, err := os.ReadFile(filepath.Join(dir, "daily_context.md"))
	require.NoError(t, err)
	markdown := string(md)
	assert.Contains(t, markdown, "### In Progress (1)")
	assert.Contains(t, markdown, "### To Do (2)")
	assert.Contains(t, markdown, "- **[OD-1]** Fix login *(Priority: High)*")
	assert.Contains(t, markdown, "1. From: boss@example.com | Subject: Standup moved")
	assert.Contains(t, markdown, "> now at 10")

	// Note written with the same markdown.
	assert.Equal(t, markdown, vault.content)
	assert.Contains(t, result.NoteResult, "Daily note created")

	// Snapshot archived.
	require.NotNil(t, archive.saved)
	assert.Equal(t, 3, archive.saved.TaskCount)
	assert.Equal(t, 1, archive.saved.EmailCount)
	assert.EqualValues(t, 42, result.SnapshotID)
}

func TestCollectorDegradesWhenSourcesFail(t *testing.T) {
	dir := t.TempDir()
	c := New(dir,
		WithIssueSource(&stubIssues{err: errors.New("jira down")}),
		WithMailSource(&stubMail{err: errors.New("graph down")}),
		WithLogger(quietLogger()),
	)

	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Payload.Summary.TotalTasks)
	assert.Zero(t, result.Payload.Summary.TotalEmails)

	md, err := os.ReadFile(result.MarkdownPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "*No assigned tasks found.*")
	assert.Contains(t, string(md), "*No unread emails.*")
}

func TestCollectorRunsWithoutAnySources(t *testing.T) {
	c := New(t.TempDir(), WithLogger(quietLogger()))
	result, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, result.PayloadPath)
	assert.FileExists(t, result.MarkdownPath)
	assert.Empty(t, result.NoteResult)
	assert.Zero(t, result.SnapshotID)
}
