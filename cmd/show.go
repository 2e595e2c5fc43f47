package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/openshelf/gutenlist/internal/checklist"
)

var showCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"checklist"},
	Short:   "Print the checklist with completion status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		entries, err := checklist.NewQueryService(newChecklistStore()).List()
		if err != nil {
			return err
		}
		printEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
