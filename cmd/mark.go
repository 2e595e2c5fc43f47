package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openshelf/gutenlist/internal/checklist"
)

var markCmd = &cobra.Command{
	Use:   "mark <id>",
	Short: "Mark a book as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newChecklistStore().SetCompleted(args[0], true); err != nil {
			return err
		}
		fmt.Printf("Marked book %s as completed.\n", args[0])
		return nil
	},
}

var unmarkCmd = &cobra.Command{
	Use:   "unmark <id>",
	Short: "Clear a book's completed marker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := newChecklistStore().SetCompleted(args[0], false)
		if errors.Is(err, checklist.ErrMarkerNotFound) {
			fmt.Fprintf(os.Stderr, "Book %s not found.\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("Unmarked book %s.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(unmarkCmd)
}
