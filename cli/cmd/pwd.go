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

const currentPeerKey = "current_peer"

// pwdCmd represents the pwd command
var pwdCmd = &cobra.Command{
	Use:     "pwd [peer]",
	Aliases: []string{"room"},
	Short:   "Prints the current conversation.",
	Long: `Prints the peer chosen with cd and the room shared with them, or the room
shared with peer when one is given.
Commands that take an optional peer use the current conversation when it is omitted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && viper.GetString(currentPeerKey) == "" {
			fmt.Println("no current conversation")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conv, err := resolveConversation(ctx, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		fmt.Printf("%s (room %d, %s)\n", conv.Peer, conv.RoomID, conv.Room)
	},
}

func init() {
	rootCmd.AddCommand(pwdCmd)
}
