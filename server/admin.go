package main

import (
	"fmt"
	"os"

	"github.com/ponyo877/signtalk/server/dictionary"
	"github.com/ponyo877/signtalk/server/repository"
	"github.com/ponyo877/signtalk/server/usecase"
	"github.com/spf13/cobra"
)

// Admin commands only touch the store, so the usecase is built without the
// translation pipeline or worker pool.
func openUsecase(cmd *cobra.Command, cfg Config) (*usecase.Usecase, *repository.Repository, func(), error) {
	db, err := repository.Open(cmd.Context(), cfg.DBPath)
	if err != nil {
		return nil, nil, nil, err
	}
	repo := repository.NewRepository(db)
	return usecase.NewUsecase(repo, repo, nil, nil, cfg.HistoryLimit), repo, func() { db.Close() }, nil
}

func newDictCmd(config func() Config) *cobra.Command {
	dictCmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage the word to sign clip dictionary",
	}

	dictCmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Upsert words from a TOML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words, err := dictionary.Load(args[0])
			if err != nil {
				return err
			}
			uc, _, closeDB, err := openUsecase(cmd, config())
			if err != nil {
				return err
			}
			defer closeDB()

			n, err := uc.ImportWords(cmd.Context(), words)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d words\n", n, len(words))
			return nil
		},
	})

	dictCmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write the stored dictionary as a TOML seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, repo, closeDB, err := openUsecase(cmd, config())
			if err != nil {
				return err
			}
			defer closeDB()

			words, err := repo.ListWords(cmd.Context())
			if err != nil {
				return err
			}
			data, err := dictionary.Encode(words)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write dictionary file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d words\n", len(words))
			return nil
		},
	})
	return dictCmd
}

func newUserCmd(config func() Config) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage chat users",
	}

	userCmd.AddCommand(&cobra.Command{
		Use:   "add <user_id> [full_name]",
		Short: "Create or rename a user",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, _, closeDB, err := openUsecase(cmd, config())
			if err != nil {
				return err
			}
			defer closeDB()

			fullName := ""
			if len(args) == 2 {
				fullName = args[1]
			}
			user, err := uc.AddUser(cmd.Context(), args[0], fullName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %s (%s) no=%d\n", user.UserID, user.FullName, user.No)
			return nil
		},
	})
	return userCmd
}
