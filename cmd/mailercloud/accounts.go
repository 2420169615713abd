package main

import (
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage connected Mailercloud accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show connected accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		accounts, err := a.provider.Accounts().List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tCONNECTED")
		for _, id := range slices.Sorted(maps.Keys(accounts)) {
			acct := accounts[id]
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, acct.Label, time.Unix(acct.Date, 0).UTC().Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove <account-id>",
	Short: "Disconnect an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.provider.Accounts().Remove(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("account %q not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	},
}

func init() {
	accountsCmd.AddCommand(accountsListCmd, accountsRemoveCmd)
	rootCmd.AddCommand(accountsCmd)
}
