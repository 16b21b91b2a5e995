package swarm

import (
	"context"
	"fmt"

	"github.com/lexcodex/dashbot/framework"
)

// Reviewer validates work produced by other handlers. It is currently a
// stand-in; the router only routes to it when a delegation names it
// explicitly.
type Reviewer struct {
	history []string
}

// NewReviewer builds a reviewer handler.
func NewReviewer() *Reviewer {
	return &Reviewer{}
}

// Name implements framework.Handler.
func (r *Reviewer) Name() string { return HandlerReviewer }

// Run executes a review task.
func (r *Reviewer) Run(ctx context.Context, task string, history []framework.Message) string {
	r.history = append(r.history, task)
	return fmt.Sprintf("[Reviewer] Reviewed: %s", task)
}

// ResetHistory clears the record of executed tasks.
func (r *Reviewer) ResetHistory() { r.history = nil }
