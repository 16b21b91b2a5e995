package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexcodex/dashbot/tools"
)

// newMailCmd wires the `mail` command group.
func newMailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Send or read mail on the configured account",
	}
	cmd.AddCommand(newMailSendCmd(), newMailRecentCmd())
	return cmd
}

// buildMailClient assembles the transactional mail client from settings. In
// azure_oauth mode a bearer token is acquired interactively via the
// device-code flow.
func buildMailClient(cmd *cobra.Command) (*tools.MailClient, error) {
	mc := &tools.MailClient{
		Account:    settings.Mail.Account,
		AuthMethod: tools.MailAuthMethod(settings.Mail.AuthMethod),
		IMAPHost:   settings.Mail.IMAPHost,
		IMAPPort:   settings.Mail.IMAPPort,
		SMTPHost:   settings.Mail.SMTPHost,
		SMTPPort:   settings.Mail.SMTPPort,
	}
	if mc.AuthMethod == tools.MailAuthAzureOAuth {
		if !settings.Microsoft.Configured() {
			return nil, fmt.Errorf("mail: azure_oauth requires microsoft client_id and authority")
		}
		token, err := tools.AcquireMailToken(cmd.Context(),
			settings.Microsoft.ClientID, settings.Microsoft.Authority, cmd.OutOrStdout())
		if err != nil {
			return nil, err
		}
		mc.AccessToken = token
	} else {
		mc.Password = settings.Mail.Password
		if mc.Password == "" {
			mc.Password = os.Getenv("EMAIL_PASSWORD")
		}
	}
	return mc, nil
}

func newMailSendCmd() *cobra.Command {
	var to string
	var subject string
	var body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a plain-text message",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return fmt.Errorf("--to required")
			}
			mc, err := buildMailClient(cmd)
			if err != nil {
				return err
			}
			sent, err := mc.Send(to, subject, body)
			if err != nil {
				return err
			}
			if sent {
				fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s\n", to)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Recipient address")
	cmd.Flags().StringVar(&subject, "subject", "", "Message subject")
	cmd.Flags().StringVar(&body, "body", "", "Message body")
	return cmd
}

func newMailRecentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List headers of the most recent inbox messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, err := buildMailClient(cmd)
			if err != nil {
				return err
			}
			messages, err := mc.FetchRecent(limit)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Inbox is empty.")
				return nil
			}
			for _, msg := range messages {
				fmt.Fprintf(cmd.OutOrStdout(), "%d  %s  %s\n", msg.ID, msg.From, msg.Subject)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Number of messages to fetch")
	return cmd
}
