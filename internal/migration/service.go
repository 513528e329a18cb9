package migration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmcdole/kanshi/internal/domain"
	"github.com/mmcdole/kanshi/internal/history"
)

// Service classifies the user's lists against a target provider and applies
// the chosen replacements as undoable batches.
//
// At most one classification runs at a time. The latest result is kept until
// the next run starts; applying mappings or removals clears the buckets of
// the lists that were acted upon.
type Service struct {
	cache        domain.AnimeCache
	lists        domain.ListStore
	history      domain.CommandHistory
	classifier   *Classifier
	listObserver domain.ListObserver
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
	result  *domain.MigrationResult
}

// NewService creates a migration service. A nil listObserver discards diffs.
func NewService(
	cache domain.AnimeCache,
	lists domain.ListStore,
	hist domain.CommandHistory,
	listObserver domain.ListObserver,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if listObserver == nil {
		listObserver = domain.NoOpListObserver{}
	}
	logger = logger.With("component", "migration")
	return &Service{
		cache:        cache,
		lists:        lists,
		history:      hist,
		classifier:   NewClassifier(cache, logger),
		listObserver: listObserver,
		logger:       logger,
	}
}

// IsRunning reports whether a classification is in progress.
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Result returns the latest classification result, if any.
func (s *Service) Result() (domain.MigrationResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return domain.MigrationResult{}, false
	}
	return copyResult(*s.result), true
}

// Start runs CheckMigration in the background. The returned channel yields
// the run's error (nil on success) and is then closed.
func (s *Service) Start(ctx context.Context, from, to string, observer domain.MigrationObserver) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := s.CheckMigration(ctx, from, to, observer)
		done <- err
	}()
	return done
}

// CheckMigration classifies every list entry linked to from by its aliases
// on to. The three lists are classified concurrently; entries of one list
// are processed in list order.
//
// The observer sees OnProgress once per processed entry with a strictly
// increasing Finished count, then exactly one terminal event: OnResult on
// success or OnFailure on any error. Both hosts must be available providers,
// otherwise the run is rejected before any entry is processed.
func (s *Service) CheckMigration(
	ctx context.Context,
	from, to string,
	observer domain.MigrationObserver,
) (domain.MigrationResult, error) {
	if observer == nil {
		observer = domain.NoOpMigrationObserver{}
	}

	if err := s.begin(from, to); err != nil {
		s.logger.Warn("migration rejected", "error", err, "from", from, "to", to)
		observer.OnFailure(err)
		return domain.MigrationResult{}, err
	}

	result, err := s.classify(ctx, from, to, observer)

	s.mu.Lock()
	s.running = false
	if err == nil {
		stored := result
		s.result = &stored
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("migration check failed", "error", err, "from", from, "to", to)
		observer.OnFailure(err)
		return domain.MigrationResult{}, err
	}

	without, multiple, single := result.Counts()
	s.logger.Info("migration check finished",
		"from", from, "to", to,
		"withoutMapping", without, "multipleMappings", multiple, "mappings", single)
	observer.OnResult(copyResult(result))
	return result, nil
}

// begin validates the providers and claims the running flag. The previous
// result is cleared when a new run starts.
func (s *Service) begin(from, to string) error {
	if err := s.classifier.ValidateProviders(from, to); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrMigrationRunning
	}
	s.running = true
	s.result = nil
	return nil
}

func (s *Service) classify(
	ctx context.Context,
	from, to string,
	observer domain.MigrationObserver,
) (domain.MigrationResult, error) {
	// Snapshot the lists and compute the total before any entry is processed.
	snapshots := make(map[domain.ListType][]domain.ListEntry, len(domain.ListTypes))
	total := 0
	for _, lt := range domain.ListTypes {
		entries := s.lists.Entries(lt)
		snapshots[lt] = entries
		total += len(InScope(entries, from))
	}
	s.logger.Debug("starting migration check", "from", from, "to", to, "total", total)

	var progressMu sync.Mutex
	finished := 0
	onEntry := func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		finished++
		observer.OnProgress(domain.MigrationProgress{Finished: finished, Total: total})
	}

	var resultMu sync.Mutex
	result := domain.NewMigrationResult(from, to)

	g, gctx := errgroup.WithContext(ctx)
	for _, lt := range domain.ListTypes {
		entries := snapshots[lt]
		g.Go(func() error {
			c, err := s.classifier.Classify(gctx, entries, from, to, onEntry)
			if err != nil {
				return fmt.Errorf("%s: %w", lt, err)
			}
			resultMu.Lock()
			result.Lists[lt] = c
			resultMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.MigrationResult{}, err
	}
	return result, nil
}

// MigrateEntries replaces every mapped entry with a copy pointing at its
// target identifier. All lists change as one undoable batch: per list the new
// entries are added before the old ones are removed.
func (s *Service) MigrateEntries(ctx context.Context, mappings domain.Mappings) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmds []domain.ReversibleCommand
	var acted []domain.ListType
	count := 0
	for _, lt := range domain.ListTypes {
		ms := mappings[lt]
		if len(ms) == 0 {
			continue
		}

		added := make([]domain.ListEntry, 0, len(ms))
		removed := make([]domain.ListEntry, 0, len(ms))
		for _, m := range ms {
			if m.Target.IsZero() {
				return fmt.Errorf("%s %q: %w", lt, m.Entry.GetTitle(), domain.ErrNoIdentifier)
			}
			if !s.cache.HasMetaDataProvider(m.Target.Host()) {
				return domain.UnsupportedProviderError(m.Target.Host())
			}
			added = append(added, m.Entry.WithLink(m.Target))
			removed = append(removed, m.Entry)
		}

		cmds = append(cmds,
			addEntries(s.lists, s.listObserver, lt, added),
			removeEntries(s.lists, s.listObserver, lt, removed),
		)
		acted = append(acted, lt)
		count += len(ms)
	}
	if len(cmds) == 0 {
		return nil
	}

	batch := history.NewBatch(fmt.Sprintf("Migrate %d entries", count), cmds...)
	if err := s.history.Execute(batch); err != nil {
		return err
	}

	s.clearBuckets(acted, func(c *domain.Classification) {
		c.Mappings = nil
		c.MultipleMappings = nil
	})
	s.logger.Info("migrated entries", "count", count, "lists", len(acted))
	return nil
}

// RemoveUnmapped deletes the given entries as one undoable batch.
func (s *Service) RemoveUnmapped(ctx context.Context, unmapped domain.Unmapped) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cmds []domain.ReversibleCommand
	var acted []domain.ListType
	count := 0
	for _, lt := range domain.ListTypes {
		entries := unmapped[lt]
		if len(entries) == 0 {
			continue
		}
		cmds = append(cmds, removeEntries(s.lists, s.listObserver, lt, append([]domain.ListEntry(nil), entries...)))
		acted = append(acted, lt)
		count += len(entries)
	}
	if len(cmds) == 0 {
		return nil
	}

	batch := history.NewBatch(fmt.Sprintf("Remove %d unmapped entries", count), cmds...)
	if err := s.history.Execute(batch); err != nil {
		return err
	}

	s.clearBuckets(acted, func(c *domain.Classification) {
		c.WithoutMapping = nil
	})
	s.logger.Info("removed unmapped entries", "count", count, "lists", len(acted))
	return nil
}

func (s *Service) clearBuckets(lts []domain.ListType, clear func(c *domain.Classification)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return
	}
	for _, lt := range lts {
		c := s.result.Lists[lt]
		clear(&c)
		s.result.Lists[lt] = c
	}
}

func copyResult(r domain.MigrationResult) domain.MigrationResult {
	lists := make(map[domain.ListType]domain.Classification, len(r.Lists))
	for lt, c := range r.Lists {
		lists[lt] = c
	}
	r.Lists = lists
	return r
}
