package swarm

import (
	"fmt"
	"strings"
	"unicode"
)

// Well-known handler names. The registry is keyed by these identifiers and
// the router only ever delegates to them.
const (
	RouterName        = "router"
	HandlerCoder      = "coder"
	HandlerReviewer   = "reviewer"
	HandlerResearcher = "researcher"
)

// Delegation is one (handler, sub-task) pair produced by classification.
// Delegations execute strictly in the order the router emits them.
type Delegation struct {
	Handler string
	Task    string
}

// routingRule maps trigger substrings to a fixed delegation. Rules are
// evaluated independently and in slice order; more than one may fire for a
// single request.
type routingRule struct {
	triggers []string
	handler  string
	task     string
}

var routingRules = []routingRule{
	{
		triggers: []string{"jira", "task", "ticket"},
		handler:  HandlerResearcher,
		task:     "Query issue tracker for critical alerts and pending tasks",
	},
	{
		triggers: []string{"email", "outlook", "mail"},
		handler:  HandlerResearcher,
		task:     "Fetch and summarize recent unread emails",
	},
	{
		triggers: []string{"note", "obsidian", "daily"},
		handler:  HandlerCoder,
		task:     "Create or update the daily note with gathered information",
	},
}

// Router turns a free-text request into an ordered delegation plan and later
// folds the collected results back into a single report. Classification is a
// small substring table, nothing language-aware.
type Router struct{}

// NewRouter builds a router.
func NewRouter() *Router {
	return &Router{}
}

// Classify produces the delegation plan for a request. Every rule whose
// trigger matches the lowercased request contributes one delegation, in table
// order. When no rule fires the literal request is handed to the coder as a
// single fallback delegation.
func (r *Router) Classify(request string) []Delegation {
	lower := strings.ToLower(request)

	var delegations []Delegation
	for _, rule := range routingRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				delegations = append(delegations, Delegation{Handler: rule.handler, Task: rule.task})
				break
			}
		}
	}

	if len(delegations) == 0 {
		delegations = append(delegations, Delegation{Handler: HandlerCoder, Task: request})
	}
	return delegations
}

// maxResultRunes bounds how much of each result the synthesized report quotes.
const maxResultRunes = 500

// Synthesize renders the final report: a summary header followed by one step
// section per (delegation, result) pair, matched positionally. Results longer
// than maxResultRunes are truncated with an ellipsis marker.
func (r *Router) Synthesize(delegations []Delegation, results []string) string {
	parts := []string{"## Task Summary\n"}
	for i, delegation := range delegations {
		result := ""
		if i < len(results) {
			result = results[i]
		}
		parts = append(parts,
			fmt.Sprintf("### Step %d: %s", i+1, capitalize(delegation.Handler)),
			fmt.Sprintf("**Task:** %s", delegation.Task),
			fmt.Sprintf("**Result:** %s\n", truncateResult(result)),
		)
	}
	return strings.Join(parts, "\n")
}

// ResetHistory clears router state between unrelated runs. The routing table
// is static, so there is nothing to clear today.
func (r *Router) ResetHistory() {}

func truncateResult(result string) string {
	runes := []rune(result)
	if len(runes) <= maxResultRunes {
		return result
	}
	return string(runes[:maxResultRunes]) + "..."
}

func capitalize(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
