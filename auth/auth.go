// Package auth holds the account commands: login, signup, logout, whoami.
package auth

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/nextunitech/madhav/api"
	"github.com/nextunitech/madhav/internal/cli"
)

// NewLoginCmd instantiates and returns the login command.
func NewLoginCmd(client *api.Client) *cobra.Command {
	var opts struct {
		Email string
	}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to your Madhav.AI account",
		RunE: func(cmd *cobra.Command, args []string) error {
			questions := []*survey.Question{}
			if opts.Email == "" {
				questions = append(questions, &survey.Question{
					Name:     "email",
					Prompt:   &survey.Input{Message: "Email:"},
					Validate: survey.Required,
				})
			}
			questions = append(questions, &survey.Question{
				Name:     "password",
				Prompt:   &survey.Password{Message: "Password:"},
				Validate: survey.Required,
			})

			answers := struct {
				Email    string
				Password string
			}{Email: opts.Email}
			if err := survey.Ask(questions, &answers); err != nil {
				return err
			}

			user, err := client.Login(cmd.Context(), answers.Email, answers.Password)
			if err != nil {
				return err
			}
			cli.Success("Logged in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "Account email")
	return cmd
}

// NewSignupCmd instantiates and returns the signup command.
func NewSignupCmd(client *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "signup",
		Short: "Create a Madhav.AI account",
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := struct {
				Name     string
				Email    string
				Password string
			}{}
			questions := []*survey.Question{
				{
					Name:     "name",
					Prompt:   &survey.Input{Message: "Name:"},
					Validate: survey.Required,
				},
				{
					Name:     "email",
					Prompt:   &survey.Input{Message: "Email:"},
					Validate: survey.Required,
				},
				{
					Name:     "password",
					Prompt:   &survey.Password{Message: "Password:"},
					Validate: survey.MinLength(8),
				},
			}
			if err := survey.Ask(questions, &answers); err != nil {
				return err
			}

			user, err := client.Signup(cmd.Context(), answers.Name, answers.Email, answers.Password)
			if err != nil {
				return err
			}
			cli.Success("Welcome, %s! You are now logged in.\n", user.Name)
			return nil
		},
	}
}

// NewLogoutCmd instantiates and returns the logout command.
func NewLogoutCmd(client *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and drop the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.HasSession() {
				cli.Muted("No saved session.\n")
				return nil
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			cli.Success("Logged out.\n")
			return nil
		},
	}
}

// NewWhoamiCmd instantiates and returns the whoami command.
func NewWhoamiCmd(client *api.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account tied to the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.HasSession() {
				cli.Failure("Not logged in. Run `madhav login` first.\n")
				return nil
			}
			user, err := client.Me(cmd.Context())
			if err != nil {
				return err
			}
			cli.Field("Name", user.Name)
			cli.Field("Email", user.Email)
			cli.Field("ID", user.ID)
			return nil
		},
	}
}
