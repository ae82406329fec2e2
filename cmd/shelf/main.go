package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/shelf/internal/adapter"
	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/tui"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

var rootCategory string

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Browse popular, trending and anticipated shows from the terminal",
	Long: `shelf - a terminal browser for Trakt show lists.

Lists are fetched page by page and cached locally, so they open instantly
and keep working offline. Press r to retry a failed page and R to refresh.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	rootCmd.Flags().StringVarP(&rootCategory, "category", "c", "", "list to open first (popular, trending, anticipated)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.IsConfigured() {
		return runSetupFlow(a.cfg)
	}

	category, err := domain.ParseShowCategory(a.cfg.UI.DefaultCategory)
	if err != nil {
		return err
	}
	if rootCategory != "" {
		if category, err = domain.ParseShowCategory(rootCategory); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	launcher := adapter.NewLauncher(a.cfg.UI.Browser, nil, a.logger)
	model := tui.NewModel(ctx, a.repo, category, a.logger).WithOpener(launcher)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	a.logger.Info("starting TUI", "category", category)
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	a.logger.Info("shutting down")
	return nil
}
