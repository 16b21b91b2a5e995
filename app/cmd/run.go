package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lexcodex/dashbot/framework"
)

var (
	requestStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	logKindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// newRunCmd executes a single request through the swarm and prints the report.
func newRunCmd() *cobra.Command {
	var showLog bool
	var telemetryPath string

	cmd := &cobra.Command{
		Use:   "run <request>",
		Short: "Route a request through the agent swarm and print the report",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			var telemetry framework.Telemetry
			if telemetryPath != "" {
				sink, err := framework.NewJSONFileTelemetry(telemetryPath)
				if err != nil {
					return err
				}
				defer sink.Close()
				telemetry = sink
			}

			orch := buildOrchestrator(out, telemetry)
			fmt.Fprintln(out, requestStyle.Render("Request: ")+request)
			fmt.Fprintln(out)
			fmt.Fprintln(out, orch.Execute(cmd.Context(), request))

			if showLog {
				fmt.Fprintln(out)
				for _, msg := range orch.MessageLog().All() {
					fmt.Fprintf(out, "%s %s %s -> %s: %s\n",
						msg.Timestamp.Format("15:04:05"),
						logKindStyle.Render("["+string(msg.Kind)+"]"),
						msg.From, msg.To, msg.Content)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLog, "log", false, "Print the message log after the report")
	cmd.Flags().StringVar(&telemetryPath, "telemetry", "", "Append NDJSON telemetry events to this file")
	return cmd
}
