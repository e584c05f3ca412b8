/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cdCmd represents the cd command
var cdCmd = &cobra.Command{
	Use:   "cd [peer]",
	Short: "Switches the current conversation.",
	Long: `Switches the current conversation to the room shared with peer. The room is
created on the server if it does not exist yet. Without an argument the
current conversation is cleared. The choice is stored in the configuration file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			viper.Set(currentPeerKey, "")
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			// Resolve first so an unknown peer never becomes the current one.
			conv, err := resolveConversation(ctx, args)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
			viper.Set(currentPeerKey, conv.Peer)
		}

		if err := saveConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing config file:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cdCmd)
}
