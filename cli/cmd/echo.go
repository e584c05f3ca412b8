/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/spf13/cobra"
)

// echoCmd represents the echo command
var echoCmd = &cobra.Command{
	Use:   "echo <text> [peer]",
	Short: "Sends a message to a conversation.",
	Long: `Sends text to the room shared with peer and waits until the server delivers
it back, then prints the sign language gloss it was translated to.
The server does not acknowledge failed messages, so a timeout means the
message was not delivered.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		text := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		conv, err := resolveConversation(ctx, args[1:])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}

		stream, err := joinStream(ctx, conv)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		defer stream.CloseSend()

		send, err := rpc.NewSend(conv.Room, conv.RoomID, userID, text).ToStruct()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if err := stream.Send(send); err != nil {
			fmt.Fprintf(os.Stderr, "Error sending message to %s: %v\n", conv.Peer, err)
			return
		}

		// The room may carry the peer's messages too; wait for our own.
		for {
			out, err := stream.Recv()
			if err != nil {
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					fmt.Fprintf(os.Stderr, "Message to %s was not delivered (translation or storage failed)\n", conv.Peer)
				} else {
					fmt.Fprintf(os.Stderr, "Error waiting for delivery to %s: %v\n", conv.Peer, err)
				}
				return
			}
			msg := rpc.ServerMessageFromStruct(out)
			if msg.Sender == userID {
				printServerMessage(os.Stdout, msg)
				return
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(echoCmd)
}
