package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nextunitech/madhav/api"
	"github.com/nextunitech/madhav/cli/chat/session"
	"github.com/nextunitech/madhav/cli/chat/types"
	"github.com/nextunitech/madhav/internal/cli"
	"github.com/nextunitech/madhav/internal/configuration"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config, client *api.Client) *cobra.Command {
	var opts struct {
		NoMarkdown bool
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with Madhav",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			chatOpts := types.ChatOptions{
				RenderMarkdown: config.Chat.RenderMarkdown && !opts.NoMarkdown,
			}

			// Create the model
			m, err := session.New(ctx, client, chatOpts)
			if err != nil {
				return err
			}

			// Create the Bubble Tea program
			p := tea.NewProgram(
				m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithFilter(m.Filter()),
				tea.WithMouseCellMotion(),
				tea.WithReportFocus(),
			)

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running chat: %w", err)
			}

			if m.AuthFailed() {
				cli.Failure("You are not logged in. Run `madhav login` first.\n")
				return nil
			}
			if err := m.Err(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.NoMarkdown, "no-markdown", false, "Disable markdown rendering of replies")

	return cmd
}
