package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listsCmd = &cobra.Command{
	Use:   "lists <account-id>",
	Short: "Show the lists of a connected account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		lists := a.provider.APILists(cmd.Context(), "", args[0])
		if len(lists) == 0 {
			return fmt.Errorf("no lists for account %q", args[0])
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME")
		for _, l := range lists {
			fmt.Fprintf(w, "%s\t%s\n", l.ID(), l.Name())
		}
		return w.Flush()
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the Mailercloud fields a form can map to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(a.provider.APIFields("", "", ""))
	},
}

func init() {
	rootCmd.AddCommand(listsCmd, fieldsCmd)
}
