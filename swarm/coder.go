package swarm

import (
	"context"
	"fmt"
	"strings"

	"github.com/lexcodex/dashbot/framework"
)

// NoteWriter is the slice of the note vault the coder needs.
type NoteWriter interface {
	WriteDailyNote(content, date string) (string, error)
}

// Coder turns gathered information into files. With a vault wired in it
// writes the daily note from the results already sitting in its message
// history; without one it is a stand-in that reports the task it received.
type Coder struct {
	vault   NoteWriter
	history []string
}

// CoderOption wires optional collaborators into the coder.
type CoderOption func(*Coder)

// WithNoteWriter lets the coder write daily notes for real.
func WithNoteWriter(vault NoteWriter) CoderOption {
	return func(c *Coder) { c.vault = vault }
}

// NewCoder builds a coder handler.
func NewCoder(opts ...CoderOption) *Coder {
	c := &Coder{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements framework.Handler.
func (c *Coder) Name() string { return HandlerCoder }

// Run executes a coding task. Note-related tasks pull every result recorded
// earlier in the run out of the handler's history and persist them as the
// daily note body.
func (c *Coder) Run(ctx context.Context, task string, history []framework.Message) string {
	c.history = append(c.history, task)

	if c.vault != nil && containsAny(strings.ToLower(task), "note", "daily", "obsidian") {
		content := noteContentFrom(history)
		if content == "" {
			content = task
		}
		confirmation, err := c.vault.WriteDailyNote(content, "")
		if err != nil {
			return fmt.Sprintf("[Coder] Failed to write daily note: %v", err)
		}
		return fmt.Sprintf("[Coder] %s", confirmation)
	}
	return fmt.Sprintf("[Coder] Executed task: %s", task)
}

// ResetHistory clears the record of executed tasks.
func (c *Coder) ResetHistory() { c.history = nil }

// noteContentFrom collects result messages from the run so the note carries
// what the other handlers found rather than just the instruction.
func noteContentFrom(history []framework.Message) string {
	var sections []string
	for _, msg := range history {
		if msg.Kind == framework.KindResult && msg.Content != "" {
			sections = append(sections, msg.Content)
		}
	}
	return strings.Join(sections, "\n\n")
}
