package framework

import "context"

// Handler is a named unit of work in the swarm. Run receives the sub-task
// description plus the messages relevant to this handler and reports its
// outcome as text.
//
// Run must not fail for any well-formed input: a handler that hits an error
// describes it in the returned text instead of aborting the run. How much of
// the history a handler inspects is up to the implementation.
type Handler interface {
	Name() string
	Run(ctx context.Context, task string, history []Message) string
	ResetHistory()
}
