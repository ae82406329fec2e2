package main

import (
	"fmt"
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/spf13/cobra"
)

var searchCategory string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy-search cached show titles",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", string(domain.CategoryPopular), "list to search")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	category, err := domain.ParseShowCategory(searchCategory)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	matches := a.queries.SearchShows(category, strings.Join(args, " "))
	if len(matches) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No matches in cached %s shows (try shelf fetch %s)\n", category, category)
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.Show.GetTitle(), m.Show.GetDescription())
	}
	return nil
}
