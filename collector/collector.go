package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lexcodex/dashbot/persistence"
	"github.com/lexcodex/dashbot/tools"
)

// IssueSource is the slice of the issue tracker client the collector needs.
type IssueSource interface {
	AssignedIssues(ctx context.Context) ([]tools.Issue, error)
}

// MailSource is the slice of the mailbox client the collector needs.
type MailSource interface {
	RecentUnread(ctx context.Context, limit int) ([]tools.EmailSummary, error)
}

// NoteWriter is the slice of the note vault the collector needs.
type NoteWriter interface {
	WriteDailyNote(content, date string) (string, error)
}

// Archiver stores collector snapshots.
type Archiver interface {
	Save(ctx context.Context, snap *persistence.Snapshot) (int64, error)
}

// Payload is the structured context document produced by each run.
type Payload struct {
	Timestamp   string               `json:"timestamp"`
	GeneratedBy string               `json:"generated_by"`
	JiraTasks   []tools.Issue        `json:"jira_tasks"`
	Emails      []tools.EmailSummary `json:"emails"`
	Summary     Summary              `json:"summary"`
}

// Summary aggregates counts over the collected data.
type Summary struct {
	TotalTasks      int            `json:"total_tasks"`
	TotalEmails     int            `json:"total_emails"`
	TasksByStatus   map[string]int `json:"tasks_by_status"`
	TasksByPriority map[string]int `json:"tasks_by_priority"`
}

// Result reports where one run landed.
type Result struct {
	Payload      Payload
	PayloadPath  string
	MarkdownPath string
	NoteResult   string
	SnapshotID   int64
}

// Collector deterministically extracts dashboard data: assigned issues and
// recent mail in, JSON payload plus markdown daily note out. Sources that
// fail or are not wired degrade to empty sections rather than aborting the
// run.
type Collector struct {
	artifactsDir string
	issues       IssueSource
	mail         MailSource
	vault        NoteWriter
	archive      Archiver
	mailLimit    int
	logger       *log.Logger
	now          func() time.Time
}

// Option configures the collector.
type Option func(*Collector)

// WithIssueSource wires the issue tracker.
func WithIssueSource(src IssueSource) Option {
	return func(c *Collector) { c.issues = src }
}

// WithMailSource wires the mailbox.
func WithMailSource(src MailSource) Option {
	return func(c *Collector) { c.mail = src }
}

// WithNoteWriter wires the note vault.
func WithNoteWriter(vault NoteWriter) Option {
	return func(c *Collector) { c.vault = vault }
}

// WithArchive wires the snapshot store.
func WithArchive(archive Archiver) Option {
	return func(c *Collector) { c.archive = archive }
}

// WithMailLimit caps how many emails a run fetches.
func WithMailLimit(limit int) Option {
	return func(c *Collector) {
		if limit > 0 {
			c.mailLimit = limit
		}
	}
}

// WithLogger routes progress output.
func WithLogger(logger *log.Logger) Option {
	return func(c *Collector) { c.logger = logger }
}

// New builds a collector writing artifacts under artifactsDir.
func New(artifactsDir string, opts ...Option) *Collector {
	c := &Collector{
		artifactsDir: artifactsDir,
		mailLimit:    10,
		logger:       log.New(os.Stderr, "", log.LstdFlags),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes one collection pass.
func (c *Collector) Run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(c.artifactsDir, 0o755); err != nil {
		return nil, err
	}

	var issues []tools.Issue
	if c.issues != nil {
		fetched, err := c.issues.AssignedIssues(ctx)
		if err != nil {
			c.logger.Printf("collector: issue tracker unavailable: %v", err)
		} else {
			issues = fetched
		}
	}

	var emails []tools.EmailSummary
	if c.mail != nil {
		fetched, err := c.mail.RecentUnread(ctx, c.mailLimit)
		if err != nil {
			c.logger.Printf("collector: mailbox unavailable: %v", err)
		} else {
			emails = fetched
		}
	}

	now := c.now()
	payload := Payload{
		Timestamp:   now.Format(time.RFC3339),
		GeneratedBy: "dashbot collector",
		JiraTasks:   issues,
		Emails:      emails,
		Summary: Summary{
			TotalTasks:      len(issues),
			TotalEmails:     len(emails),
			TasksByStatus:   countByField(issues, func(i tools.Issue) string { return i.Status }),
			TasksByPriority: countByField(issues, func(i tools.Issue) string { return i.Priority }),
		},
	}

	result := &Result{Payload: payload}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, err
	}
	result.PayloadPath = filepath.Join(c.artifactsDir, "context_payload.json")
	if err := os.WriteFile(result.PayloadPath, data, 0o644); err != nil {
		return nil, err
	}

	markdown := renderMarkdown(now, issues, emails)
	result.MarkdownPath = filepath.Join(c.artifactsDir, "daily_context.md")
	if err := os.WriteFile(result.MarkdownPath, []byte(markdown), 0o644); err != nil {
		return nil, err
	}

	if c.vault != nil {
		confirmation, err := c.vault.WriteDailyNote(markdown, "")
		if err != nil {
			c.logger.Printf("collector: daily note not written: %v", err)
		} else {
			result.NoteResult = confirmation
		}
	}

	if c.archive != nil {
		id, err := c.archive.Save(ctx, &persistence.Snapshot{
			TakenAt:    now,
			TaskCount:  len(issues),
			EmailCount: len(emails),
			Payload:    json.RawMessage(data),
		})
		if err != nil {
			c.logger.Printf("collector: snapshot not archived: %v", err)
		} else {
			result.SnapshotID = id
		}
	}

	return result, nil
}

func countByField(issues []tools.Issue, field func(tools.Issue) string) map[string]int {
	counts := make(map[string]int)
	for _, issue := range issues {
		value := field(issue)
		if value == "" {
			value = "Unspecified"
		}
		counts[value]++
	}
	return counts
}

func renderMarkdown(now time.Time, issues []tools.Issue, emails []tools.EmailSummary) string {
	lines := []string{
		fmt.Sprintf("# Daily Context - %s", now.Format("2006-01-02")),
		"",
		fmt.Sprintf("*Generated automatically at %s*", now.Format("15:04")),
		"",
		"## Tasks",
		"",
	}

	if len(issues) > 0 {
		byStatus := make(map[string][]tools.Issue)
		for _, issue := range issues {
			status := issue.Status
			if status == "" {
				status = "No status"
			}
			byStatus[status] = append(byStatus[status], issue)
		}
		statuses := make([]string, 0, len(byStatus))
		for status := range byStatus {
			statuses = append(statuses, status)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			group := byStatus[status]
			lines = append(lines, fmt.Sprintf("### %s (%d)", status, len(group)), "")
			for _, issue := range group {
				priority := issue.Priority
				if priority == "" {
					priority = "N/A"
				}
				lines = append(lines, fmt.Sprintf("- **[%s]** %s *(Priority: %s)*", issue.Key, issue.Summary, priority))
			}
			lines = append(lines, "")
		}
	} else {
		lines = append(lines, "*No assigned tasks found.*", "")
	}

	lines = append(lines, "## Recent Emails", "")
	if len(emails) > 0 {
		for i, email := range emails {
			subject := email.Subject
			if subject == "" {
				subject = "(no subject)"
			}
			lines = append(lines, fmt.Sprintf("%d. From: %s | Subject: %s", i+1, email.From, subject))
			if email.Preview != "" {
				lines = append(lines, fmt.Sprintf("   > %s", email.Preview))
			}
		}
		lines = append(lines, "")
	} else {
		lines = append(lines, "*No unread emails.*", "")
	}

	return strings.Join(lines, "\n")
}
