// Package cache implements a TTL-based key/value cache with one-file-per-key
// disk persistence. Entries live in memory and, redundantly, as .cache files
// under the cache directory; the in-memory copy is authoritative between
// Save/Load cycles.
//
// Like the record store, the cache is NOT internally synchronized: all calls
// must come from the owning goroutine. Slow disk persistence can be routed
// through the tasks queue instead of blocking the interactive path.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/moorberry/gridline/pkg/debug"
)

// DefaultTTL is applied by Set when no explicit TTL is given.
const DefaultTTL = 30 * time.Minute

// FileExt is the extension of on-disk cache entries.
const FileExt = ".cache"

// ErrEmptyKey is returned for the empty string key.
var ErrEmptyKey = errors.New("cache: empty key")

// entry is the in-memory representation of one cached value.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// fileEntry is the on-disk JSON shape: the value plus an RFC 3339 expiry.
// Key is recorded redundantly so entries whose digest-based file name cannot
// be reversed still rehydrate under their original key.
type fileEntry struct {
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value"`
	Expiry string          `json:"expiry"`
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	ttl   time.Duration
	warnf func(format string, args ...any)
	now   func() time.Time
}

// WithTTL overrides the default time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

// WithWarnf overrides the warning sink. The default writes via log.Printf.
func WithWarnf(f func(format string, args ...any)) Option {
	return func(o *options) { o.warnf = f }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Cache is a TTL cache of V values keyed by string.
type Cache[V any] struct {
	dir     string
	ttl     time.Duration
	entries map[string]entry[V]
	warnf   func(format string, args ...any)
	now     func() time.Time
}

// New creates a cache persisting under dir, creating the directory if absent.
func New[V any](dir string, opts ...Option) (*Cache[V], error) {
	o := options{
		ttl:   DefaultTTL,
		warnf: log.Printf,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	return &Cache[V]{
		dir:     dir,
		ttl:     o.ttl,
		entries: make(map[string]entry[V]),
		warnf:   o.warnf,
		now:     o.now,
	}, nil
}

// Dir returns the cache directory.
func (c *Cache[V]) Dir() string {
	return c.dir
}

// Len returns the number of live in-memory entries.
func (c *Cache[V]) Len() int {
	return len(c.entries)
}

// Get returns the cached value for key. A present-but-expired entry is
// evicted from memory and disk and reported as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		debug.Log("cache: entry %q expired, evicting", key)
		c.Invalidate(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key, then persists the entry to disk. A disk
// write failure is logged and otherwise ignored: the in-memory entry stays
// authoritative until the next process restart.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if key == "" {
		c.warnf("cache: %v", ErrEmptyKey)
		return
	}
	e := entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.entries[key] = e

	if err := c.persist(key, e); err != nil {
		c.warnf("cache: persisting %q failed (entry kept in memory): %v", key, err)
	}
}

// SetInMemory stores value under key without touching disk. Pair with
// PersistFunc to move the disk write onto the background task queue instead
// of blocking the interactive path.
func (c *Cache[V]) SetInMemory(key string, value V, ttl time.Duration) {
	if key == "" {
		c.warnf("cache: %v", ErrEmptyKey)
		return
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// PersistFunc returns a self-contained closure that writes the current entry
// for key to disk. The closure captures the value and expiry and never reads
// the cache maps, so it is safe to run on the worker goroutine. Returns
// ok=false when the key has no live entry.
func (c *Cache[V]) PersistFunc(key string) (func() error, bool) {
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	path := c.filePath(key)
	return func() error {
		return writeEntryFile(path, key, e)
	}, true
}

// Invalidate removes key from memory and disk. Idempotent.
func (c *Cache[V]) Invalidate(key string) {
	delete(c.entries, key)
	if err := os.Remove(c.filePath(key)); err != nil && !os.IsNotExist(err) {
		c.warnf("cache: removing file for %q: %v", key, err)
	}
}

// Clear empties the in-memory map and removes every .cache file in the
// cache directory, including files for keys this process never touched.
func (c *Cache[V]) Clear() {
	c.entries = make(map[string]entry[V])

	matches, err := filepath.Glob(filepath.Join(c.dir, "*"+FileExt))
	if err != nil {
		c.warnf("cache: listing cache dir: %v", err)
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.warnf("cache: removing %s: %v", path, err)
		}
	}
}

// Save persists every live in-memory entry to disk. Failures are collected
// into a single joined error; partial persistence is fine because Load
// tolerates missing files.
func (c *Cache[V]) Save() error {
	var errs []error
	for key, e := range c.entries {
		if err := c.persist(key, e); err != nil {
			errs = append(errs, fmt.Errorf("entry %q: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Load rehydrates the in-memory map from the cache directory, proactively
// deleting any on-disk entry that has already expired. Unlike every other
// cache operation, a Load failure is fatal to the caller: the cache cannot
// be trusted if its directory is unreadable or an entry is unparseable.
func (c *Cache[V]) Load() error {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("cache initialization failed: reading %s: %w", c.dir, err)
	}

	loaded := make(map[string]entry[V])
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), FileExt) {
			continue
		}
		path := filepath.Join(c.dir, de.Name())

		key, e, err := c.readFile(path)
		if err != nil {
			return fmt.Errorf("cache initialization failed: %s: %w", path, err)
		}
		if c.now().After(e.expiresAt) {
			debug.Log("cache: dropping expired file %s", path)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("cache initialization failed: removing expired %s: %w", path, err)
			}
			continue
		}
		loaded[key] = e
	}

	c.entries = loaded
	debug.Log("cache: loaded %d entries from %s", len(loaded), c.dir)
	return nil
}

// persist writes one entry as {key, value, expiry} JSON to its key file.
func (c *Cache[V]) persist(key string, e entry[V]) error {
	return writeEntryFile(c.filePath(key), key, e)
}

func writeEntryFile[V any](path, key string, e entry[V]) error {
	raw, err := json.Marshal(e.value)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	body, err := json.Marshal(fileEntry{
		Key:    key,
		Value:  raw,
		Expiry: e.expiresAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

// readFile parses one on-disk entry, recovering the key from the file name.
func (c *Cache[V]) readFile(path string) (string, entry[V], error) {
	var zero entry[V]

	data, err := os.ReadFile(path)
	if err != nil {
		return "", zero, err
	}

	var fe fileEntry
	if err := json.Unmarshal(data, &fe); err != nil {
		return "", zero, fmt.Errorf("parsing entry: %w", err)
	}
	expiry, err := time.Parse(time.RFC3339Nano, fe.Expiry)
	if err != nil {
		// Accept plain RFC 3339 too; other tools may write it.
		expiry, err = time.Parse(time.RFC3339, fe.Expiry)
		if err != nil {
			return "", zero, fmt.Errorf("parsing expiry %q: %w", fe.Expiry, err)
		}
	}

	var value V
	if err := json.Unmarshal(fe.Value, &value); err != nil {
		return "", zero, fmt.Errorf("decoding value: %w", err)
	}

	key := fe.Key
	if key == "" {
		key = decodeKey(strings.TrimSuffix(filepath.Base(path), FileExt))
	}
	return key, entry[V]{value: value, expiresAt: expiry}, nil
}

func (c *Cache[V]) filePath(key string) string {
	return filepath.Join(c.dir, encodeKey(key)+FileExt)
}

// encodeKey maps an arbitrary key to a safe file name. Keys made purely of
// portable characters pass through unchanged; anything else is hex-encoded
// behind a marker prefix so decodeKey can round-trip it.
func encodeKey(key string) string {
	if isPortableKey(key) {
		return key
	}
	enc := hex.EncodeToString([]byte(key))
	if len(enc) > 128 {
		// Very long keys would overflow file name limits; fall back to a digest.
		sum := sha256.Sum256([]byte(key))
		enc = hex.EncodeToString(sum[:])
	}
	return "x-" + enc
}

func decodeKey(name string) string {
	if strings.HasPrefix(name, "x-") {
		if raw, err := hex.DecodeString(name[2:]); err == nil {
			return string(raw)
		}
	}
	return name
}

func isPortableKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "x-") {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}
