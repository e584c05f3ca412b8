/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"
)

// translateCmd represents the translate command
var translateCmd = &cobra.Command{
	Use:   "translate <text...>",
	Short: "Translates text to sign language gloss without sending it.",
	Long: `Runs text through the server's translation chain and prints the gloss,
the clip URLs found in the dictionary, and the words that have no clip.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		req, err := structpb.NewStruct(map[string]any{"text": strings.Join(args, " ")})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		res, err := signtalkClient.Translate(ctx, req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error calling Translate: %v\n", err)
			return
		}

		result := rpc.TranslateResultFromStruct(res)
		fmt.Printf("gloss: %s\n", result.CleanGloss)
		for _, url := range result.URLs {
			fmt.Printf("  %s\n", url)
		}
		if len(result.Miss) > 0 {
			fmt.Printf("missing: %s\n", strings.Join(result.Miss, ", "))
		}
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
}
