package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ponyo877/signtalk/rpc"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

const pastMessagesLimit = 50

var vimCmd = &cobra.Command{
	Use:   "vim [peer]",
	Short: "Starts a chat session in a tview-based interface",
	Long: `Starts a chat session using StreamMessage RPC with a tview-based interface.
You can type messages at the bottom and see the chat history above. Incoming
messages show their sign language gloss and how many clips were found.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		conv, err := resolveConversation(ctx, args)
		cancel()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		if err := runChatUITview(signtalkClient, conv); err != nil {
			fmt.Fprintf(os.Stderr, "Chat UI error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(vimCmd)
}

func formatServerMessage(msg rpc.ServerMessage) string {
	line := fmt.Sprintf("[white][%s] [blue]%s[white]: %s\n", msg.Time, tview.Escape(msg.SenderName), tview.Escape(msg.Message))
	if msg.Gloss != "" {
		line += fmt.Sprintf("    [gray]%s (%d clips", tview.Escape(msg.Gloss), len(msg.URLs))
		if len(msg.Miss) > 0 {
			line += ", missing " + tview.Escape(strings.Join(msg.Miss, " "))
		}
		line += ")[white]\n"
	}
	return line
}

func runChatUITview(client rpc.SigntalkServiceClient, conv conversation) error {
	app := tview.NewApplication()

	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true).
		SetScrollable(true).
		ScrollToEnd()
	textView.SetTitle(" " + conv.Peer + " ").SetBorder(true)

	inputField := tview.NewInputField().
		SetLabel(userID + " ❯❯ ").
		SetFieldWidth(0).
		SetAcceptanceFunc(tview.InputFieldMaxLength(256))

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(textView, 0, 1, false).
		AddItem(inputField, 1, 0, true)

	app.SetRoot(flex, true).SetFocus(inputField)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load past messages first
	historyCtx, historyCancel := context.WithTimeout(ctx, requestTimeout)
	history, err := listHistory(historyCtx, []string{conv.Peer}, pastMessagesLimit)
	historyCancel()
	if err != nil {
		fmt.Fprintf(textView, "[red]Error loading past messages: %v\n", err)
	} else {
		for _, msg := range history {
			fmt.Fprintf(textView, "[white][%s] [blue]%s[white]: %s\n",
				formatDate(msg.Date),
				tview.Escape(msg.SenderName),
				tview.Escape(msg.Message))
		}
	}
	textView.ScrollToEnd()

	stream, err := joinStream(ctx, conv)
	if err != nil {
		return err
	}
	fmt.Fprintf(textView, "[green]Talking with %s in room %d. (Ctrl+C to exit)\n", conv.Peer, conv.RoomID)

	go func() {
		for {
			out, err := stream.Recv()
			if err == io.EOF {
				app.QueueUpdateDraw(func() {
					fmt.Fprintln(textView, "[red]Stream closed by server.")
				})
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					app.QueueUpdateDraw(func() {
						fmt.Fprintf(textView, "[red]Error receiving message: %v\n", err)
					})
				}
				return
			}
			msg := rpc.ServerMessageFromStruct(out)
			app.QueueUpdateDraw(func() {
				fmt.Fprint(textView, formatServerMessage(msg))
				textView.ScrollToEnd()
			})
		}
	}()

	// Send messages when Enter is pressed
	inputField.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := strings.TrimSpace(inputField.GetText())
		if text == "" {
			return
		}

		send, err := rpc.NewSend(conv.Room, conv.RoomID, userID, text).ToStruct()
		if err == nil {
			err = stream.Send(send)
		}
		if err != nil {
			fmt.Fprintf(textView, "[red]Failed to send message: %v\n", err)
		}
		inputField.SetText("")
	})

	// Leave the room and exit on Ctrl+C
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			if leave, err := rpc.NewLeave(conv.Room, userID).ToStruct(); err == nil {
				stream.Send(leave)
			}
			stream.CloseSend()
			cancel()
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.Run(); err != nil {
		cancel()
		return err
	}
	return nil
}
