package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openshelf/gutenlist/internal/checklist"
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords...>",
	Short: "Search the checklist by title or author",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keyword := strings.Join(args, " ")

		entries, err := checklist.NewQueryService(newChecklistStore()).Search(keyword)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintf(os.Stderr, "No results found for %q.\n", keyword)
			return nil
		}
		printEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
