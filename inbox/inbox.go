// Package inbox holds the admin commands for contact-form messages.
package inbox

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/nextunitech/madhav/api"
	"github.com/nextunitech/madhav/internal/cli"
)

// NewCmd instantiates and returns the inbox command and its subcommands.
func NewCmd(client *api.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Manage contact-form messages (admin)",
	}
	cmd.AddCommand(newListCmd(client))
	cmd.AddCommand(newMarkCmd(client))
	return cmd
}

func newListCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Status string
	}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contact-form messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := client.Messages(cmd.Context())
			if err != nil {
				return err
			}

			if opts.Status != "" {
				filtered := messages[:0]
				for _, m := range messages {
					if m.Status == opts.Status {
						filtered = append(filtered, m)
					}
				}
				messages = filtered
			}

			if len(messages) == 0 {
				cli.Muted("No messages.\n")
				return nil
			}

			cli.Title("Inbox (%d)", len(messages))
			for _, m := range messages {
				printStatus(m.Status)
				cli.Field("From", fmt.Sprintf("%s <%s>", m.Name, m.Email))
				cli.Field("Subject", m.Subject)
				cli.Field("ID", m.ID)
				if !m.CreatedAt.IsZero() {
					cli.Field("Received", m.CreatedAt.Format("2006-01-02 15:04"))
				}
				fmt.Println(m.Body)
				cli.Separator()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Status, "status", "s", "", "Only show messages with this status (unread, read, replied)")
	return cmd
}

func newMarkCmd(client *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <id> <read|replied>",
		Short: "Update a message's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, status := args[0], args[1]
			if status != api.MessageStatusRead && status != api.MessageStatusReplied {
				return fmt.Errorf("unknown status %q", status)
			}
			message, err := client.UpdateMessageStatus(cmd.Context(), id, status)
			if err != nil {
				return err
			}
			cli.Success("Message %s marked %s.\n", message.ID, message.Status)
			return nil
		},
	}
}

// NewContactCmd instantiates and returns the contact command. Unlike the
// inbox commands it needs no session.
func NewContactCmd(client *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the Madhav.AI team",
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := struct {
				Name    string
				Email   string
				Subject string
				Body    string
			}{}
			questions := []*survey.Question{
				{Name: "name", Prompt: &survey.Input{Message: "Name:"}, Validate: survey.Required},
				{Name: "email", Prompt: &survey.Input{Message: "Email:"}, Validate: survey.Required},
				{Name: "subject", Prompt: &survey.Input{Message: "Subject:"}, Validate: survey.Required},
				{Name: "body", Prompt: &survey.Multiline{Message: "Message:"}, Validate: survey.Required},
			}
			if err := survey.Ask(questions, &answers); err != nil {
				return err
			}

			message, err := client.CreateMessage(cmd.Context(), answers.Name, answers.Email, answers.Subject, answers.Body)
			if err != nil {
				return err
			}
			cli.Success("Message sent (ref %s). We'll get back to you soon.\n", message.ID)
			return nil
		},
	}
}

func printStatus(status string) {
	switch status {
	case api.MessageStatusUnread:
		cli.Failure("● %s\n", status)
	case api.MessageStatusReplied:
		cli.Success("● %s\n", status)
	default:
		cli.Muted("● %s\n", status)
	}
}
