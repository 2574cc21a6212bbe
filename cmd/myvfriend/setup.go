package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PabloGalante/myvfriend/internal/app/setup"
	"github.com/PabloGalante/myvfriend/internal/domain"
)

var (
	setupUser   string
	setupPaid   bool
	setupGender string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set a user's AI friend personality interactively",
	Long: `Asks for each personality trait on the terminal (1 = lowest,
7 = highest, 0 = default) and saves the profile to the configured store.
Paid-tier traits are asked only for paid users.

Example:
  myvfriend setup --user U1234 --paid --gender female`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if setupUser == "" {
			return fmt.Errorf("--user is required")
		}

		req := setup.Request{UserID: domain.UserID(setupUser)}
		if cmd.Flags().Changed("paid") {
			req.Paid = &setupPaid
		}
		if cmd.Flags().Changed("gender") {
			g, err := domain.ParseGender(setupGender)
			if err != nil {
				return err
			}
			req.Gender = &g
		}

		store, closeStore, err := openStore(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		defer closeStore()

		_, err = setup.NewWizard(store, os.Stdin, os.Stdout).Run(ctx, req)
		return err
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupUser, "user", "", "LINE user ID to configure")
	setupCmd.Flags().BoolVar(&setupPaid, "paid", false, "mark the user as paid and ask paid-tier traits")
	setupCmd.Flags().StringVar(&setupGender, "gender", "", "AI gender: neutral, male or female")
}
