package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/shelf/internal/adapter"
	"github.com/mmcdole/shelf/internal/shows"
	"github.com/mmcdole/shelf/internal/store"
	"github.com/mmcdole/shelf/internal/trakt"
)

// app holds the wired dependencies shared by every command
type app struct {
	cfg     *adapter.Config
	logger  *slog.Logger
	logFile io.Closer
	store   *store.ShowStore
	repo    *shows.Repository
	queries *shows.Queries
}

func newApp() (*app, error) {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger, logFile = adapter.NullLogger(), io.NopCloser(nil)
	}
	slog.SetDefault(logger)
	logger.Info("starting shelf", "version", Version)

	s, err := store.NewShowStore(cfg.GetCachePath(), cfg.Trakt.URL)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	client := trakt.NewClient(cfg.Trakt.URL, cfg.Trakt.ClientID, logger)
	return &app{
		cfg:     cfg,
		logger:  logger,
		logFile: logFile,
		store:   s,
		repo:    shows.NewRepository(client, s, cfg.Paging.PageSize, logger),
		queries: shows.NewQueries(s),
	}, nil
}

// Close cancels every listing and releases the cache and log file
func (a *app) Close() {
	a.logger.Debug("closing", "open_listings", a.repo.OpenListings())
	a.repo.OnCleared()
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close cache", "error", err)
	}
	a.logFile.Close()
}
