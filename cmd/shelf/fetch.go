package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/tui/styles"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var (
	fetchPages   int
	fetchRefresh bool
	fetchList    bool
	fetchTimeout time.Duration
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [category...]",
	Short: "Fetch show lists into the local cache",
	Long: `Fetch one or more show lists into the local cache without starting the TUI.

Categories are fetched concurrently. With no arguments every category is fetched.`,
	Example: `  # Fetch everything
  shelf fetch

  # Fetch three pages of trending shows, dropping what was cached
  shelf fetch trending --pages 3 --refresh`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().IntVarP(&fetchPages, "pages", "p", 1, "number of pages to fetch per category")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "clear cached rows before fetching")
	fetchCmd.Flags().BoolVarP(&fetchList, "list", "l", false, "print the cached titles after fetching")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 2*time.Minute, "overall time limit")
	rootCmd.AddCommand(fetchCmd)
}

// fetchResult is the outcome of one category
type fetchResult struct {
	category domain.ShowCategory
	state    domain.NetworkState
	shows    []*domain.Show
}

func parseCategories(args []string) ([]domain.ShowCategory, error) {
	if len(args) == 0 {
		return domain.ShowCategories(), nil
	}
	categories := make([]domain.ShowCategory, 0, len(args))
	for _, arg := range args {
		c, err := domain.ParseShowCategory(strings.ToLower(arg))
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	categories, err := parseCategories(args)
	if err != nil {
		return err
	}
	if fetchPages < 1 {
		return fmt.Errorf("--pages must be at least 1")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()
	if !a.cfg.IsConfigured() {
		return fmt.Errorf("no client id configured; run shelf once to set it up")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
	defer cancel()

	results := make([]fetchResult, len(categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			res, err := fetchCategory(gctx, a, category, fetchPages, fetchRefresh)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printResults(out, results, fetchList, outputWidth(out))

	for _, r := range results {
		if r.state.IsError() {
			return fmt.Errorf("%s: %s", r.category, r.state.Heading)
		}
	}
	return nil
}

// fetchCategory loads pages of one category and reports the final state
func fetchCategory(ctx context.Context, a *app, category domain.ShowCategory, pages int, refresh bool) (fetchResult, error) {
	listing, err := a.repo.Invoke(ctx, category)
	if err != nil {
		return fetchResult{}, err
	}
	defer listing.Close()

	listing.Wait()
	if refresh {
		listing.Refresh()
		listing.Wait()
	}
	for page := 1; page < pages; page++ {
		if !listing.LoadMore() {
			break
		}
		listing.Wait()
	}
	if err := ctx.Err(); err != nil {
		return fetchResult{}, fmt.Errorf("%s: %w", category, err)
	}

	// The bridge keeps only the newest state, which is now the settled one
	state := domain.Success()
	select {
	case s, ok := <-listing.NetworkState():
		if ok {
			state = s
		}
	default:
	}

	res := fetchResult{category: category, state: state}
	if items, ok := a.queries.GetCachedShows(category); ok {
		res.shows = items
	}
	return res, nil
}

// outputWidth returns the terminal width, or 0 when out is not a terminal
func outputWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// printResults writes a summary line per category. Styling and truncation
// only apply when width > 0 (a terminal).
func printResults(out io.Writer, results []fetchResult, list bool, width int) {
	styled := width > 0
	for _, r := range results {
		status := fmt.Sprintf("✓ %d cached", len(r.shows))
		if r.state.IsError() {
			status = fmt.Sprintf("✗ %s: %s", r.state.Heading, r.state.Message)
		}
		if styled {
			if r.state.IsError() {
				status = styles.ErrorStyle.Render(status)
			} else {
				status = styles.SuccessStyle.Render(status)
			}
		}
		fmt.Fprintf(out, "%-12s %s\n", r.category, status)

		if !list {
			continue
		}
		for i, s := range r.shows {
			line := fmt.Sprintf("  %3d. %s", i+1, s.GetTitle())
			if desc := s.GetDescription(); desc != "" {
				line += " (" + desc + ")"
			}
			if styled {
				line = styles.Truncate(line, width)
			}
			fmt.Fprintln(out, line)
		}
	}
}
