// Package waitlist holds the waitlist signup command.
package waitlist

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/nextunitech/madhav/api"
	"github.com/nextunitech/madhav/internal/cli"
)

// NewCmd instantiates and returns the waitlist command.
func NewCmd(client *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "waitlist [email]",
		Short: "Join the Madhav.AI waitlist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var email string
			if len(args) > 0 {
				email = args[0]
			} else {
				prompt := &survey.Input{Message: "Email:"}
				if err := survey.AskOne(prompt, &email, survey.WithValidator(survey.Required)); err != nil {
					return err
				}
			}

			if err := client.JoinWaitlist(cmd.Context(), email); err != nil {
				return err
			}
			cli.Success("You're on the list! We'll reach out at %s.\n", email)
			return nil
		},
	}
}
