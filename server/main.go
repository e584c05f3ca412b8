package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	rootCmd := &cobra.Command{
		Use:          "signtalk-server",
		Short:        "Chat server that translates messages to sign language and back",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(v)
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogger(cfg.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	bindFlags(rootCmd, v)

	config := func() Config { return cfg }
	rootCmd.AddCommand(
		newServeCmd(config),
		newDictCmd(config),
		newUserCmd(config),
	)
	return rootCmd
}

func newServeCmd(config func() Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the gRPC, HTTP and websocket servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config())
		},
	}
}
