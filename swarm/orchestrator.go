package swarm

import (
	"context"
	"fmt"
	"time"

	"github.com/lexcodex/dashbot/framework"
)

// Orchestrator owns one router, a fixed handler registry, and one message
// log, and drives the full request → delegations → execution → synthesis
// sequence. It is the only component callers interact with.
//
// Execution is strictly sequential: no delegation begins before the previous
// one's result has been recorded. The design assumes exactly one Execute in
// flight per orchestrator; callers needing concurrency should use one
// orchestrator per request.
type Orchestrator struct {
	router    *Router
	registry  *Registry
	log       *framework.MessageLog
	telemetry framework.Telemetry
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithTelemetry attaches a telemetry sink.
func WithTelemetry(t framework.Telemetry) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.telemetry = t
		}
	}
}

// WithHandlers replaces the default stand-in handler pool.
func WithHandlers(handlers ...framework.Handler) Option {
	return func(o *Orchestrator) {
		o.registry = NewRegistry(handlers...)
	}
}

// NewOrchestrator builds an orchestrator. By default it carries the three
// stand-in handlers (coder, reviewer, researcher), an empty message log, and
// no telemetry.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		router:    NewRouter(),
		registry:  NewRegistry(NewCoder(), NewReviewer(), NewResearcher()),
		log:       framework.NewMessageLog(),
		telemetry: framework.NopTelemetry{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs one request end to end and returns the synthesized report.
// Every foreseeable failure is recovered locally: an unknown handler name
// becomes a placeholder result for that step, handlers never fail by
// contract, and the report is always complete. Callers inspect the report
// text to detect partial failures.
func (o *Orchestrator) Execute(ctx context.Context, request string) string {
	o.emit(framework.EventSwarmStart, "", "", request, nil)

	delegations := o.router.Classify(request)
	o.emit(framework.EventClassify, "", "", "", map[string]interface{}{"steps": len(delegations)})

	results := make([]string, 0, len(delegations))
	for _, delegation := range delegations {
		o.log.Record(RouterName, delegation.Handler, framework.KindTask, delegation.Task)

		handler, ok := o.registry.Get(delegation.Handler)
		if !ok {
			result := fmt.Sprintf("Error: Unknown agent '%s'", delegation.Handler)
			results = append(results, result)
			o.emit(framework.EventDelegateError, delegation.Handler, delegation.Task, result, nil)
			continue
		}

		o.emit(framework.EventDelegateStart, delegation.Handler, delegation.Task, "", nil)
		result := handler.Run(ctx, delegation.Task, o.log.ContextFor(delegation.Handler))
		results = append(results, result)
		o.log.Record(delegation.Handler, RouterName, framework.KindResult, result)
		o.emit(framework.EventDelegateFinish, delegation.Handler, delegation.Task, "", nil)
	}

	o.emit(framework.EventSynthesize, "", "", "", map[string]interface{}{"results": len(results)})
	return o.router.Synthesize(delegations, results)
}

// MessageLog exposes the orchestrator's log for debugging surfaces.
func (o *Orchestrator) MessageLog() *framework.MessageLog {
	return o.log
}

// Handlers lists the registered handler names.
func (o *Orchestrator) Handlers() []string {
	return o.registry.Names()
}

// Reset clears the message log and every handler's accumulated history so a
// reused orchestrator starts the next request without stale context.
func (o *Orchestrator) Reset() {
	o.log.Clear()
	o.router.ResetHistory()
	o.registry.ResetAll()
	o.emit(framework.EventReset, "", "", "", nil)
}

func (o *Orchestrator) emit(kind framework.EventType, handler, task, message string, metadata map[string]interface{}) {
	o.telemetry.Emit(framework.Event{
		Type:      kind,
		Handler:   handler,
		Task:      task,
		Message:   message,
		Timestamp: time.Now(),
		Metadata:  metadata,
	})
}
