package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/click2print/orderdesk/internal/auth"
)

func newTokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored bearer token",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store the bearer token used by monitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, release, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := auth.NewStorageTokenSource(st, a.cfg.Auth.TokenKey).SetToken(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token stored")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, release, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			return auth.NewStorageTokenSource(st, a.cfg.Auth.TokenKey).Clear(cmd.Context())
		},
	})

	return cmd
}
