/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-shellwords"
	"github.com/ponyo877/signtalk/rpc"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	cfgFile           string
	userID            string
	grpcServerAddress string
	signtalkClient    rpc.SigntalkServiceClient
	grpcConn          *grpc.ClientConn
)

// osExit is replaced in tests.
var osExit = os.Exit

const (
	userIDKey            = "user_id"
	grpcServerAddressKey = "grpc_server_address"
	requestTimeout       = 10 * time.Second
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "signtalk",
	Short: "Terminal client for the signtalk chat server",
	Long: `signtalk talks to a signtalk server over gRPC. Messages you send are
translated to sign language gloss and clip URLs for the people in the room.

Run without arguments for an interactive shell.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// grpcServerAddress and userID are loaded by initConfig before this runs
		conn, err := grpc.NewClient(grpcServerAddress, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("did not connect to gRPC server: %w", err)
		}
		grpcConn = conn
		signtalkClient = rpc.NewSigntalkServiceClient(conn)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if grpcConn != nil {
			return grpcConn.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// one‑shot
	if len(os.Args) > 1 {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
		return
	}

	// REPL
	fmt.Println("entering interactive mode, type 'exit' to quit")
	p := prompt.New(
		executor,
		completer,
		prompt.OptionPrefix("❯❯❯ "),
		prompt.OptionTitle("signtalk"),
	)
	p.Run()
}

func executor(line string) {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return
	case "exit", "quit":
		if grpcConn != nil {
			grpcConn.Close()
		}
		fmt.Println("Bye!")
		osExit(0)
		return
	}
	args, err := shellwords.Parse(line)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error parsing command:", err)
		return
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	resetFlags(rootCmd)
}

// resetFlags clears flags set by the previous REPL line.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	words := strings.Fields(d.TextBeforeCursor())
	if len(words) > 1 || (len(words) == 1 && strings.HasSuffix(d.TextBeforeCursor(), " ")) {
		return peerSuggestions(d)
	}
	var suggestions []prompt.Suggest
	for _, c := range rootCmd.Commands() {
		if c.Hidden || c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		suggestions = append(suggestions, prompt.Suggest{Text: c.Name(), Description: c.Short})
	}
	suggestions = append(suggestions, prompt.Suggest{Text: "exit", Description: "Leave the shell"})
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}

func peerSuggestions(d prompt.Document) []prompt.Suggest {
	peer := viper.GetString(currentPeerKey)
	if peer == "" {
		return nil
	}
	return prompt.FilterHasPrefix([]prompt.Suggest{{Text: peer, Description: "current conversation"}}, d.GetWordBeforeCursor(), true)
}

// conversation is the 1:1 room between the configured user and a peer.
type conversation struct {
	Peer   string
	RoomID int
	Room   string
}

// resolveConversation looks up the room for args[0], or for the peer chosen
// with cd when no argument is given.
func resolveConversation(ctx context.Context, args []string) (conversation, error) {
	if userID == "" {
		return conversation{}, fmt.Errorf("user_id is not set; run 'config <user_id>' first")
	}
	peer := viper.GetString(currentPeerKey)
	if len(args) > 0 {
		peer = args[0]
	}
	if peer == "" {
		return conversation{}, fmt.Errorf("no peer given and no current conversation; run 'cd <peer>' first")
	}

	req, err := structpb.NewStruct(map[string]any{"user_a": userID, "user_b": peer})
	if err != nil {
		return conversation{}, err
	}
	res, err := signtalkClient.LookupRoom(ctx, req)
	if err != nil {
		return conversation{}, fmt.Errorf("error looking up room with %s: %w", peer, err)
	}
	return conversation{
		Peer:   peer,
		RoomID: int(res.GetFields()["room_id"].GetNumberValue()),
		Room:   res.GetFields()["room"].GetStringValue(),
	}, nil
}

func formatDate(date string) string {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		return date
	}
	return t.Local().Format("01/02 15:04")
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.signtalk-cli.yaml)")
	rootCmd.PersistentFlags().String("user", "", "Your user id on the signtalk server")
	rootCmd.PersistentFlags().String("grpc-server", "localhost:50051", "Address of the gRPC signtalk server (e.g., localhost:50051)")

	viper.BindPFlag(userIDKey, rootCmd.PersistentFlags().Lookup("user"))
	viper.BindPFlag(grpcServerAddressKey, rootCmd.PersistentFlags().Lookup("grpc-server"))
	viper.SetDefault(grpcServerAddressKey, "localhost:50051")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".signtalk-cli")
	}

	viper.SetEnvPrefix("SIGNTALK")
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	// Load values after all potential sources (defaults, flags, env, config file)
	userID = viper.GetString(userIDKey)
	grpcServerAddress = viper.GetString(grpcServerAddressKey)
}

// saveConfig writes the current viper settings, creating the file on first use.
func saveConfig() error {
	if err := viper.WriteConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		return viper.WriteConfigAs(home + "/.signtalk-cli.yaml")
	}
	return nil
}
