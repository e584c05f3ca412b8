/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/spf13/cobra"
)

var (
	follow    bool // Flag for -f option
	tailLines int
)

// tailCmd represents the tail command
var tailCmd = &cobra.Command{
	Use:   "tail [-n lines] [-f] [peer]",
	Short: "Displays the last messages of a conversation.",
	Long: `Displays the latest messages of the room shared with peer.
With -f, stays in the room and prints messages as they arrive, including their
sign language gloss and clip URLs. Press Ctrl+C to stop following.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		historyCtx, historyCancel := context.WithTimeout(ctx, requestTimeout)
		messages, err := listHistory(historyCtx, args, tailLines)
		historyCancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		printHistory(os.Stdout, messages)
		if !follow {
			return
		}

		lookupCtx, lookupCancel := context.WithTimeout(ctx, requestTimeout)
		conv, err := resolveConversation(lookupCtx, args)
		lookupCancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		stream, err := joinStream(ctx, conv)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		for {
			out, err := stream.Recv()
			if err == io.EOF {
				break
			}
			if err != nil {
				// Check if context was cancelled (e.g. Ctrl+C)
				if ctx.Err() == nil {
					fmt.Fprintf(os.Stderr, "Error receiving message stream for %s: %v\n", conv.Peer, err)
				}
				break
			}
			printServerMessage(os.Stdout, rpc.ServerMessageFromStruct(out))
		}
	},
}

// joinStream opens the real-time channel and joins the conversation's room.
func joinStream(ctx context.Context, conv conversation) (rpc.SigntalkService_StreamMessageClient, error) {
	stream, err := signtalkClient.StreamMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("StreamMessage failed: %w", err)
	}
	join, err := rpc.NewJoin(conv.Room, userID).ToStruct()
	if err != nil {
		return nil, err
	}
	if err := stream.Send(join); err != nil {
		return nil, fmt.Errorf("failed to send join message: %w", err)
	}
	return stream, nil
}

func printServerMessage(w io.Writer, msg rpc.ServerMessage) {
	fmt.Fprintf(w, "[%s] %s: %s\n", msg.Time, msg.SenderName, msg.Message)
	if msg.Gloss != "" {
		fmt.Fprintf(w, "    gloss: %s\n", msg.Gloss)
	}
	for _, url := range msg.URLs {
		fmt.Fprintf(w, "    %s\n", url)
	}
	if len(msg.Miss) > 0 {
		fmt.Fprintf(w, "    missing: %s\n", strings.Join(msg.Miss, ", "))
	}
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing messages as they arrive")
	tailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of stored messages to show")
}
