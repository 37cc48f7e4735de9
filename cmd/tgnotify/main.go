package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tgnotify/internal/interfaces/cli/server"
	"tgnotify/internal/interfaces/cli/token"
	"tgnotify/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tgnotify",
		Short: "tgnotify - forward site submissions to Telegram",
		Long:  `tgnotify receives contact forms, bug reports and events over HTTP and forwards them to a Telegram chat, with per-client and global rate limits.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		token.NewCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.String())
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
