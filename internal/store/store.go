package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mmcdole/shelf/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketShows     = []byte("shows")
	bucketCountries = []byte("countries")
)

// hotListSize bounds how many category lists stay decoded in memory
const hotListSize = 32

// row wraps a persisted value with its insertion sequence so lists keep server order
type row[T any] struct {
	Seq   uint64 `json:"seq"`
	Value T      `json:"value"`
}

// ShowStore implements domain.ShowStore using BoltDB.
// Keys encode ownership (cat:{category}:{key}) so a category is cleared by prefix deletion.
type ShowStore struct {
	db *bolt.DB
	mu sync.RWMutex // Keeps the hot cache coherent with the database

	// Decoded lists for hot-path reads, dropped on every write to their prefix
	shows     *lru.Cache[domain.ShowCategory, []*domain.Show]
	countries *lru.Cache[domain.MediaCategory, []*domain.Country]
}

// NewShowStore opens (or creates) the database for the given API endpoint
func NewShowStore(baseCacheDir, serverURL string) (*ShowStore, error) {
	if baseCacheDir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "shelf.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketShows, bucketCountries} {
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

	shows, err := lru.New[domain.ShowCategory, []*domain.Show](hotListSize)
	if err != nil {
		db.Close()
		return nil, err
	}
	countries, err := lru.New[domain.MediaCategory, []*domain.Country](hotListSize)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &ShowStore{db: db, shows: shows, countries: countries}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *ShowStore) Close() error {
	return s.db.Close()
}

// === Generic helpers ===

func categoryPrefix(category string) string {
	return "cat:" + category + ":"
}

// putRows writes values under prefix. With overwrite=false existing keys are left untouched.
// Existing rows keep their sequence so re-fetched pages do not reorder the list.
func putRows[T any](db *bolt.DB, bucket []byte, prefix string, values []T, key func(T) string, overwrite bool) error {
	return db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		for _, v := range values {
			k := []byte(prefix + key(v))
			seq := uint64(0)
			if existing := b.Get(k); existing != nil {
				if !overwrite {
					continue
				}
				var old row[json.RawMessage]
				if err := json.Unmarshal(existing, &old); err == nil {
					seq = old.Seq
				}
			}
			if seq == 0 {
				next, err := b.NextSequence()
				if err != nil {
					return err
				}
				seq = next
			}
			data, err := json.Marshal(row[T]{Seq: seq, Value: v})
			if err != nil {
				return err
			}
			if err := b.Put(k, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// scanRows reads every row under prefix ordered by insertion sequence
func scanRows[T any](db *bolt.DB, bucket []byte, prefix string) ([]T, bool, error) {
	var rows []row[T]
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			var r row[T]
			if err := json.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("failed to decode %s: %w", k, err)
			}
			rows = append(rows, r)
		}
		return nil
	})
	if err != nil || len(rows) == 0 {
		return nil, false, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Seq < rows[j].Seq })
	values := make([]T, len(rows))
	for i, r := range rows {
		values[i] = r.Value
	}
	return values, true, nil
}

func (s *ShowStore) deletePrefix(bucket []byte, prefix string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Collect first: deleting while iterating skips keys
		var keys [][]byte
		c := b.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
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

// === Shows ===

func showKey(show *domain.Show) string {
	return show.Key()
}

func (s *ShowStore) GetShows(category domain.ShowCategory) ([]*domain.Show, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cached, ok := s.shows.Get(category); ok {
		return cloneSlice(cached), true
	}
	shows, ok, err := scanRows[*domain.Show](s.db, bucketShows, categoryPrefix(string(category)))
	if err != nil || !ok {
		return nil, false
	}
	s.shows.Add(category, shows)
	return cloneSlice(shows), true
}

func (s *ShowStore) UpsertShows(category domain.ShowCategory, shows []*domain.Show) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.shows.Remove(category)
	return putRows(s.db, bucketShows, categoryPrefix(string(category)), shows, showKey, true)
}

func (s *ShowStore) InsertShows(category domain.ShowCategory, shows []*domain.Show) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.shows.Remove(category)
	return putRows(s.db, bucketShows, categoryPrefix(string(category)), shows, showKey, false)
}

func (s *ShowStore) DeleteShows(category domain.ShowCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.shows.Remove(category)
	return s.deletePrefix(bucketShows, categoryPrefix(string(category)))
}

// === Countries ===

func countryKey(c *domain.Country) string {
	return c.Key()
}

func (s *ShowStore) GetCountries(category domain.MediaCategory) ([]*domain.Country, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cached, ok := s.countries.Get(category); ok {
		return cloneSlice(cached), true
	}
	countries, ok, err := scanRows[*domain.Country](s.db, bucketCountries, categoryPrefix(string(category)))
	if err != nil || !ok {
		return nil, false
	}
	s.countries.Add(category, countries)
	return cloneSlice(countries), true
}

func (s *ShowStore) UpsertCountries(category domain.MediaCategory, countries []*domain.Country) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.countries.Remove(category)
	return putRows(s.db, bucketCountries, categoryPrefix(string(category)), countries, countryKey, true)
}

func (s *ShowStore) DeleteCountries(category domain.MediaCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.countries.Remove(category)
	return s.deletePrefix(bucketCountries, categoryPrefix(string(category)))
}

// === Invalidation ===

func (s *ShowStore) InvalidateAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shows.Purge()
	s.countries.Purge()

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketShows, bucketCountries} {
			if err := tx.DeleteBucket(bucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}

// cloneSlice copies the cached slice so callers can reorder or filter it freely
func cloneSlice[T any](items []T) []T {
	return append([]T(nil), items...)
}
