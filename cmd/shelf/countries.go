package main

import (
	"fmt"
	"strings"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/spf13/cobra"
)

var countriesOffline bool

var countriesCmd = &cobra.Command{
	Use:   "countries <shows|movies> [query]",
	Short: "List the countries known for a media category",
	Long: `Fetch and cache the country list for shows or movies, optionally
narrowed by a fuzzy query that ignores case and accents.`,
	Example: `  shelf countries shows
  shelf countries movies cote`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCountries,
}

func init() {
	countriesCmd.Flags().BoolVar(&countriesOffline, "offline", false, "use the cached list only")
	rootCmd.AddCommand(countriesCmd)
}

func parseMediaCategory(s string) (domain.MediaCategory, error) {
	switch c := domain.MediaCategory(strings.ToLower(s)); c {
	case domain.MediaShows, domain.MediaMovies:
		return c, nil
	default:
		return "", fmt.Errorf("unknown media category %q (want shows or movies)", s)
	}
}

func runCountries(cmd *cobra.Command, args []string) error {
	category, err := parseMediaCategory(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !countriesOffline {
		if !a.cfg.IsConfigured() {
			return fmt.Errorf("no client id configured; run shelf once to set it up")
		}
		if _, err := a.repo.Countries(cmd.Context(), category); err != nil {
			return fmt.Errorf("failed to fetch countries: %w", err)
		}
	}

	query := ""
	if len(args) == 2 {
		query = args[1]
	}
	countries := a.queries.MatchCountries(category, query)
	if len(countries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No countries found")
		return nil
	}
	for _, c := range countries {
		fmt.Fprintf(cmd.OutOrStdout(), "%-4s %s\n", c.Code, c.Name)
	}
	return nil
}
