/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config [user_id]",
	Short: "Gets or sets the user id.",
	Long: `Manages configuration for the signtalk client.
If called without arguments, it displays the current user id.
If called with an argument, it stores that user id in the configuration file.
The user must exist on the server (see 'signtalk-server user add').`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Printf("User ID: %s\n", userID)
			return
		}

		newUserID := strings.TrimSpace(args[0])
		if newUserID == "" {
			fmt.Fprintln(os.Stderr, "user id must not be empty")
			return
		}
		viper.Set(userIDKey, newUserID)
		if err := saveConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error writing config file:", err)
			return
		}
		userID = newUserID
		fmt.Printf("User ID set to: %s\n", newUserID)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
