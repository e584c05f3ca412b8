/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// idCmd represents the id command
var idCmd = &cobra.Command{
	Use:   "id",
	Short: "Prints user configuration information.",
	Long:  `Prints the user id this client sends as, and the server it talks to.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if userID == "" {
			fmt.Println("user_id: (not set)")
		} else {
			fmt.Printf("user_id: %s\n", userID)
		}
		fmt.Printf("server: %s\n", grpcServerAddress)
		if peer := viper.GetString(currentPeerKey); peer != "" {
			fmt.Printf("talking to: %s\n", peer)
		}
	},
}

func init() {
	rootCmd.AddCommand(idCmd)
}
