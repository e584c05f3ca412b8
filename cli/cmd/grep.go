/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

// grepCmd represents the grep command
var grepCmd = &cobra.Command{
	Use:   "grep <pattern> [peer]",
	Short: "Searches a conversation for a pattern.",
	Long: `Searches the messages of the room shared with peer using a regular expression.
Without a peer the current conversation is searched.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		pattern := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conv, err := resolveConversation(ctx, args[1:])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		req, err := structpb.NewStruct(map[string]any{"room_id": conv.RoomID, "pattern": pattern})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		res, err := signtalkClient.SearchMessages(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error calling SearchMessages for pattern '%s' with %s: %v\n", pattern, conv.Peer, err)
			return
		}

		// Like grep, print nothing when no message matched.
		printHistory(os.Stdout, rpc.HistoryFromStruct(res))
	},
}

func init() {
	rootCmd.AddCommand(grepCmd)
}
