package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/jeongsedam/policy-cli/internal/catalog"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Browse the policy category catalog",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all category paths",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat, err := catalog.Load()
		if err != nil {
			return eris.Wrap(err, "category list")
		}
		for _, p := range cat.Paths() {
			fmt.Println(p)
		}
		return nil
	},
}

var categorySuggestCmd = &cobra.Command{
	Use:   "suggest <query>",
	Short: "Suggest category paths matching a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cat, err := catalog.Load()
		if err != nil {
			return eris.Wrap(err, "category suggest")
		}

		matches := cat.Suggest(args[0], limit)
		if len(matches) == 0 {
			fmt.Fprintln(os.Stderr, "No matching categories.")
			return nil
		}
		for _, p := range matches {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	categorySuggestCmd.Flags().Int("limit", 10, "max number of suggestions")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categorySuggestCmd)
	rootCmd.AddCommand(categoryCmd)
}
