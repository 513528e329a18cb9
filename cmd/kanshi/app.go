package main

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/adapter/source"
	"github.com/mmcdole/kanshi/internal/cache"
	"github.com/mmcdole/kanshi/internal/domain"
	"github.com/mmcdole/kanshi/internal/history"
	"github.com/mmcdole/kanshi/internal/library"
	"github.com/mmcdole/kanshi/internal/lists"
	"github.com/mmcdole/kanshi/internal/migration"
	"github.com/mmcdole/kanshi/internal/store"
)

// app holds the wired services of one invocation
type app struct {
	cfg    *adapter.Config
	logger *slog.Logger

	store     *store.BoltStore
	cache     *cache.Cache
	lists     *lists.State
	history   *history.History
	migration *migration.Service
	commands  *library.Commands
	queries   *library.Queries
	opener    *adapter.Opener
}

// logListObserver logs every list change
type logListObserver struct {
	logger *slog.Logger
}

func (o logListObserver) OnListChange(diff domain.ListDiff) {
	o.logger.Info("list changed", "list", diff.ListType.String(), "added", len(diff.Added), "removed", len(diff.Removed))
}

// newApp wires store, loaders, cache, lists and services. The cache is
// pre-populated from the store.
func newApp(cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	storePath, err := adapter.ExpandHome(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	st, err := store.New(storePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	loaders, err := source.NewLoaders(cfg, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create loaders: %w", err)
	}

	c, err := cache.New(logger, loaders...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	state := lists.NewState(st, logger)
	hist := history.New(logger)
	commands := library.NewCommands(c, state, st, logger)
	restored := commands.Restore()
	logger.Debug("cache restored", "slots", restored)

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		cache:     c,
		lists:     state,
		history:   hist,
		migration: migration.NewService(c, state, hist, logListObserver{logger: logger}, logger),
		commands:  commands,
		queries:   library.NewQueries(c, state),
		opener:    adapter.NewOpener(cfg.Browser.Command, cfg.Browser.Args, logger),
	}, nil
}

// Close persists the cache and closes the store
func (a *app) Close() error {
	if err := a.commands.SaveSnapshot(); err != nil {
		a.logger.Warn("cache not saved", "error", err)
	}
	return a.store.Close()
}
