package swarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexcodex/dashbot/framework"
	"github.com/lexcodex/dashbot/tools"
)

// IssueSource is the slice of the issue tracker client the researcher needs.
type IssueSource interface {
	AssignedIssues(ctx context.Context) ([]tools.Issue, error)
}

// MailSource is the slice of the mailbox client the researcher needs.
type MailSource interface {
	RecentUnread(ctx context.Context, limit int) ([]tools.EmailSummary, error)
}

// Researcher gathers information from external sources. Without any source
// wired in it acts as a stand-in and merely reports what it was asked to do;
// either way Run never fails, it reports problems inside the returned text.
type Researcher struct {
	issues  IssueSource
	mail    MailSource
	history []string
}

// ResearcherOption wires optional live collaborators into the researcher.
type ResearcherOption func(*Researcher)

// WithIssueSource lets the researcher query the issue tracker for real.
func WithIssueSource(src IssueSource) ResearcherOption {
	return func(r *Researcher) { r.issues = src }
}

// WithMailSource lets the researcher read the mailbox for real.
func WithMailSource(src MailSource) ResearcherOption {
	return func(r *Researcher) { r.mail = src }
}

// NewResearcher builds a researcher handler.
func NewResearcher(opts ...ResearcherOption) *Researcher {
	r := &Researcher{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements framework.Handler.
func (r *Researcher) Name() string { return HandlerResearcher }

// Run executes a research task. The task text decides which source applies.
func (r *Researcher) Run(ctx context.Context, task string, history []framework.Message) string {
	r.history = append(r.history, task)
	lower := strings.ToLower(task)

	switch {
	case r.issues != nil && containsAny(lower, "issue", "tracker", "jira", "task", "ticket"):
		issues, err := r.issues.AssignedIssues(ctx)
		if err != nil {
			return fmt.Sprintf("[Researcher] Issue tracker unavailable: %v", err)
		}
		return formatIssues(issues)
	case r.mail != nil && containsAny(lower, "email", "mail", "inbox", "outlook"):
		emails, err := r.mail.RecentUnread(ctx, 10)
		if err != nil {
			return fmt.Sprintf("[Researcher] Mailbox unavailable: %v", err)
		}
		return formatEmails(emails)
	}
	return fmt.Sprintf("[Researcher] Gathered information for: %s", task)
}

// ResetHistory clears the record of executed tasks.
func (r *Researcher) ResetHistory() { r.history = nil }

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func formatIssues(issues []tools.Issue) string {
	if len(issues) == 0 {
		return "[Researcher] No assigned issues found."
	}
	lines := []string{fmt.Sprintf("[Researcher] Assigned issues (%d):", len(issues))}
	for _, issue := range issues {
		priority := issue.Priority
		if priority == "" {
			priority = "N/A"
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (%s, priority %s)", issue.Key, issue.Summary, issue.Status, priority))
	}
	return strings.Join(lines, "\n")
}

func formatEmails(emails []tools.EmailSummary) string {
	if len(emails) == 0 {
		return "[Researcher] No unread emails found."
	}
	lines := []string{fmt.Sprintf("[Researcher] Recent unread emails (%d):", len(emails))}
	for i, email := range emails {
		subject := email.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		lines = append(lines, fmt.Sprintf("%d. From: %s | Subject: %s", i+1, email.From, subject))
	}
	return strings.Join(lines, "\n")
}
