/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

// catCmd represents the cat command
var catCmd = &cobra.Command{
	Use:     "cat [peer...]",
	Aliases: []string{"history"},
	Short:   "Displays the message history of conversations.",
	Long: `Displays the stored messages of the room shared with each peer, oldest first.
Without arguments the current conversation is shown.`,
	Run: func(cmd *cobra.Command, args []string) {
		peers := [][]string{nil}
		if len(args) > 0 {
			peers = peers[:0]
			for _, peer := range args {
				peers = append(peers, []string{peer})
			}
		}

		for _, peer := range peers {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			messages, err := listHistory(ctx, peer, 0)
			cancel()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			printHistory(os.Stdout, messages)
		}
	},
}

func listHistory(ctx context.Context, args []string, limit int) ([]rpc.HistoryMessage, error) {
	conv, err := resolveConversation(ctx, args)
	if err != nil {
		return nil, err
	}
	req, err := structpb.NewStruct(map[string]any{"room_id": conv.RoomID, "limit": limit})
	if err != nil {
		return nil, err
	}
	res, err := signtalkClient.ListMessages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("error calling ListMessages for %s: %w", conv.Peer, err)
	}
	return rpc.HistoryFromStruct(res), nil
}

func printHistory(w io.Writer, messages []rpc.HistoryMessage) {
	for _, msg := range messages {
		fmt.Fprintf(w, "[%s] %s: %s\n", formatDate(msg.Date), msg.SenderName, msg.Message)
	}
}

func init() {
	rootCmd.AddCommand(catCmd)
}
