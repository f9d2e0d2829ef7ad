package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nextunitech/madhav/api"
	"github.com/nextunitech/madhav/auth"
	"github.com/nextunitech/madhav/cli/chat"
	"github.com/nextunitech/madhav/inbox"
	"github.com/nextunitech/madhav/internal/configuration"
	"github.com/nextunitech/madhav/waitlist"
)

const configFilepath = "~/.config/madhav/config.json"

var rootCmd = &cobra.Command{
	Use:     "madhav",
	Short:   "A CLI for the Madhav.AI assistant",
	Version: "1.0",
}

func main() {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	client := api.NewClient(
		config.BackendURL,
		time.Duration(config.RequestTimeout)*time.Second,
		config.SessionFile,
	)

	rootCmd.AddCommand(chat.NewCmd(config, client))
	rootCmd.AddCommand(auth.NewLoginCmd(client))
	rootCmd.AddCommand(auth.NewSignupCmd(client))
	rootCmd.AddCommand(auth.NewLogoutCmd(client))
	rootCmd.AddCommand(auth.NewWhoamiCmd(client))
	rootCmd.AddCommand(inbox.NewCmd(client))
	rootCmd.AddCommand(inbox.NewContactCmd(client))
	rootCmd.AddCommand(waitlist.NewCmd(client))
	rootCmd.Execute()
}
