package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/lexcodex/dashbot/config"
	"github.com/lexcodex/dashbot/framework"
	"github.com/lexcodex/dashbot/persistence"
	"github.com/lexcodex/dashbot/swarm"
	"github.com/lexcodex/dashbot/tools"
)

// buildOrchestrator assembles the swarm from the loaded settings. Sources
// that are not configured are simply left off and the handler answers with
// its stand-in text.
func buildOrchestrator(prompt io.Writer, telemetry framework.Telemetry) *swarm.Orchestrator {
	var researcherOpts []swarm.ResearcherOption
	if settings.Jira.Configured() {
		researcherOpts = append(researcherOpts, swarm.WithIssueSource(
			tools.NewJiraClient(settings.Jira.URL, settings.Jira.Email, settings.Jira.Token)))
	}
	if settings.Microsoft.Configured() {
		researcherOpts = append(researcherOpts, swarm.WithMailSource(
			tools.NewGraphClient(settings.Microsoft.ClientID, settings.Microsoft.Authority,
				settings.Microsoft.ScopeList(), prompt)))
	}

	var coderOpts []swarm.CoderOption
	if settings.Obsidian.Configured() {
		coderOpts = append(coderOpts, swarm.WithNoteWriter(tools.NewVault(settings.Obsidian.VaultPath)))
	}

	opts := []swarm.Option{
		swarm.WithHandlers(
			swarm.NewCoder(coderOpts...),
			swarm.NewReviewer(),
			swarm.NewResearcher(researcherOpts...),
		),
	}
	if telemetry != nil {
		opts = append(opts, swarm.WithTelemetry(telemetry))
	}
	return swarm.NewOrchestrator(opts...)
}

func openSnapshotStore() (*persistence.SnapshotStore, error) {
	dir := config.ConfigDir(workspace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return persistence.NewSnapshotStore(filepath.Join(dir, "snapshots.db"))
}
