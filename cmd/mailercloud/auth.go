package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sanzeeb3/mailercloud-go/wpforms"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Connect a Mailercloud account",
	Long:  "Validates the API key against Mailercloud and stores it, printing the new account id",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		apiKey, _ := cmd.Flags().GetString("apikey")
		label, _ := cmd.Flags().GetString("label")

		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.provider.APIAuth(cmd.Context(), wpforms.AuthData{APIKey: apiKey, Label: label}, "")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	authCmd.Flags().String("apikey", "", "Mailercloud API key")
	authCmd.Flags().String("label", "", "Account nickname")
	_ = authCmd.MarkFlagRequired("apikey")

	rootCmd.AddCommand(authCmd)
}
