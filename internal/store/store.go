package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/kanshi/internal/domain"
)

// Bucket names
var (
	bucketSlots = []byte("slots")
	bucketLists = []byte("lists")
)

var allBuckets = [][]byte{bucketSlots, bucketLists}

// slotRecord is the persisted form of one cache slot.
type slotRecord struct {
	ID     domain.Identifier   `json:"id"`
	State  string              `json:"state"`
	Record *domain.AnimeRecord `json:"record,omitempty"`
}

// listEntryWrapper wraps ListEntry for JSON serialization
type listEntryWrapper struct {
	Type   string                  `json:"type"`
	Anime  *domain.AnimeListEntry  `json:"anime,omitempty"`
	Watch  *domain.WatchListEntry  `json:"watch,omitempty"`
	Ignore *domain.IgnoreListEntry `json:"ignore,omitempty"`
}

// BoltStore implements domain.Store using BoltDB.
type BoltStore struct {
	db     *bolt.DB
	mu     sync.RWMutex // Protects memory cache
	logger *slog.Logger

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// New opens the store in dir. An empty dir keeps everything in memory.
func New(dir string, logger *slog.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "store")

	if dir == "" {
		// Memory-only mode (no persistence)
		return &BoltStore{cache: make(map[string][]byte), logger: logger}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "kanshi.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("opened store", "path", dbPath)
	return &BoltStore{db: db, cache: make(map[string][]byte), logger: logger}, nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func cacheKey(bucket []byte, key string) string {
	return string(bucket) + ":" + key
}

func (s *BoltStore) get(bucket []byte, key string, dest interface{}) bool {
	ck := cacheKey(bucket, key)

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *BoltStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[cacheKey(bucket, key)] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

// replaceAll swaps the whole content of bucket for values in one transaction.
// Only the memory-only mode keeps the values in the memory cache; with a
// database they are promoted on access.
func (s *BoltStore) replaceAll(bucket []byte, values map[string][]byte) error {
	prefix := string(bucket) + ":"

	s.mu.Lock()
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	if s.db == nil {
		for k, v := range values {
			s.cache[prefix+k] = v
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucket) != nil {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucket)
		if err != nil {
			return err
		}
		for k, v := range values {
			if err := b.Put([]byte(k), v); err != nil {
				return err
			}
		}
		return nil
	})
}

// scan calls fn for every key of bucket starting with prefix.
func (s *BoltStore) scan(bucket []byte, prefix string, fn func(key string, data []byte)) {
	if s.db == nil {
		ck := cacheKey(bucket, prefix)
		s.mu.RLock()
		defer s.mu.RUnlock()
		for k, v := range s.cache {
			if strings.HasPrefix(k, ck) {
				fn(strings.TrimPrefix(k, string(bucket)+":"), v)
			}
		}
		return
	}

	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			fn(string(k), v)
		}
		return nil
	})
}

func (s *BoltStore) deletePrefix(bucket []byte, prefix string) {
	s.mu.Lock()
	cachePrefix := cacheKey(bucket, prefix)
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	// Collect first: deleting while iterating a cursor skips keys.
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		var keys [][]byte
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Cache slots (key: {host}:{uri}) ===

func slotKey(id domain.Identifier) string {
	return id.Host() + ":" + id.String()
}

// GetSlots returns every persisted slot. Present slots whose records had the
// same alias set share one record again.
func (s *BoltStore) GetSlots() (map[domain.Identifier]domain.Slot, bool) {
	slots := make(map[domain.Identifier]domain.Slot)
	shared := make(map[string]*domain.AnimeRecord)

	s.scan(bucketSlots, "", func(key string, data []byte) {
		var rec slotRecord
		if err := json.Unmarshal(data, &rec); err != nil || rec.ID.IsZero() {
			s.logger.Warn("skipping unreadable slot", "key", key, "error", err)
			return
		}
		switch rec.State {
		case domain.SlotDead.String():
			slots[rec.ID] = domain.Dead()
		case domain.SlotPresent.String():
			if rec.Record == nil {
				return
			}
			canonical := recordKey(rec.Record)
			if r, ok := shared[canonical]; ok {
				rec.Record = r
			} else {
				shared[canonical] = rec.Record
			}
			slots[rec.ID] = domain.Present(rec.Record)
		}
	})

	if len(slots) == 0 {
		return nil, false
	}
	return slots, true
}

// SaveSlots replaces all persisted slots. Unresolved slots are skipped.
func (s *BoltStore) SaveSlots(slots map[domain.Identifier]domain.Slot) error {
	values := make(map[string][]byte, len(slots))
	for id, slot := range slots {
		if id.IsZero() || slot.IsUnresolved() {
			continue
		}
		rec := slotRecord{ID: id, State: slot.State.String()}
		if slot.IsPresent() {
			rec.Record = slot.Record
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode slot %s: %w", id, err)
		}
		values[slotKey(id)] = data
	}
	if err := s.replaceAll(bucketSlots, values); err != nil {
		return err
	}
	s.logger.Debug("saved slots", "count", len(values))
	return nil
}

func recordKey(r *domain.AnimeRecord) string {
	var b strings.Builder
	for _, id := range r.Sources {
		b.WriteString(id.String())
		b.WriteByte(' ')
	}
	return b.String()
}

// === Lists (key: list:{type}) ===

func listKey(lt domain.ListType) string {
	return fmt.Sprintf("list:%d", lt)
}

func (s *BoltStore) GetList(lt domain.ListType) ([]domain.ListEntry, bool) {
	var wrappers []listEntryWrapper
	if !s.get(bucketLists, listKey(lt), &wrappers) {
		return nil, false
	}
	return unwrapListEntries(wrappers), true
}

func (s *BoltStore) SaveList(lt domain.ListType, entries []domain.ListEntry) error {
	return s.set(bucketLists, listKey(lt), wrapListEntries(entries))
}

// === Invalidation ===

// InvalidateProvider drops the slots of one provider.
func (s *BoltStore) InvalidateProvider(host string) {
	s.deletePrefix(bucketSlots, host+":")
	s.logger.Info("invalidated provider", "host", host)
}

// InvalidateSlots drops every slot and keeps the lists.
func (s *BoltStore) InvalidateSlots() {
	s.deletePrefix(bucketSlots, "")
}

func (s *BoltStore) InvalidateAll() {
	for _, bucket := range allBuckets {
		s.deletePrefix(bucket, "")
	}
}

// wrapListEntries converts domain.ListEntry slice to serializable wrappers
func wrapListEntries(entries []domain.ListEntry) []listEntryWrapper {
	wrappers := make([]listEntryWrapper, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case domain.AnimeListEntry:
			wrappers = append(wrappers, listEntryWrapper{Type: "anime", Anime: &v})
		case domain.WatchListEntry:
			wrappers = append(wrappers, listEntryWrapper{Type: "watch", Watch: &v})
		case domain.IgnoreListEntry:
			wrappers = append(wrappers, listEntryWrapper{Type: "ignore", Ignore: &v})
		}
	}
	return wrappers
}

// unwrapListEntries converts wrappers back to domain.ListEntry slice
func unwrapListEntries(wrappers []listEntryWrapper) []domain.ListEntry {
	entries := make([]domain.ListEntry, 0, len(wrappers))
	for _, w := range wrappers {
		switch w.Type {
		case "anime":
			if w.Anime != nil {
				entries = append(entries, *w.Anime)
			}
		case "watch":
			if w.Watch != nil {
				entries = append(entries, *w.Watch)
			}
		case "ignore":
			if w.Ignore != nil {
				entries = append(entries, *w.Ignore)
			}
		}
	}
	return entries
}
