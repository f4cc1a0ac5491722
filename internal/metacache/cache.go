package metacache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dnakoni/nakodx-file-retriever/internal/log"
	"github.com/dnakoni/nakodx-file-retriever/internal/nakodx"
	"github.com/dnakoni/nakodx-file-retriever/internal/storage"
)

// TypeEntry is one cached type catalog, partitioned by org identity.
type TypeEntry struct {
	OrgID     string                `json:"orgId"`
	Types     []nakodx.MetadataType `json:"types"`
	WrittenAt time.Time             `json:"writtenAt"`
}

// ItemEntry is one cached item list for an (org, type) pair.
type ItemEntry struct {
	OrgID     string                `json:"orgId"`
	TypeName  string                `json:"typeName"`
	Items     []nakodx.MetadataItem `json:"items"`
	WrittenAt time.Time             `json:"writtenAt"`
}

// Store is the two-tier cache for type catalogs and item lists.
// It owns all entries; callers fetch on miss and write back via Put.
type Store struct {
	dir     string
	ttl     time.Duration
	enabled bool

	mu    sync.Mutex
	types map[string]*TypeEntry // orgID -> catalog
	items map[string]*ItemEntry // orgID:typeName -> item list

	writes sync.WaitGroup
}

// New creates a store rooted at dir. The TTL applies to all freshness
// checks from now on; it is not baked into stored entries.
func New(dir string, ttl time.Duration, enabled bool) *Store {
	return &Store{
		dir:     dir,
		ttl:     ttl,
		enabled: enabled,
		types:   make(map[string]*TypeEntry),
		items:   make(map[string]*ItemEntry),
	}
}

// Enabled reports whether caching is active.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	return s.dir
}

// ItemKey derives the memory-tier key for an item list.
func ItemKey(orgID, typeName string) string {
	return orgID + ":" + typeName
}

// SanitizeType maps a type name to a filesystem-safe token by replacing
// every non-alphanumeric rune with an underscore.
func SanitizeType(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

func (s *Store) typesPath(orgID string) string {
	return filepath.Join(s.dir, "types", orgID+".json")
}

func (s *Store) itemsPath(orgID, typeName string) string {
	return filepath.Join(s.dir, "items", orgID+"-"+SanitizeType(typeName)+".json")
}

// usable reports whether the cache applies to this operation. A missing
// org identity can never be used as a partition key.
func (s *Store) usable(orgID string) bool {
	return s.enabled && orgID != ""
}

// fresh reports whether an entry written at the given time is still
// valid. Entries without a timestamp predate stamping and never expire.
func (s *Store) fresh(writtenAt time.Time) bool {
	if writtenAt.IsZero() {
		return true
	}
	return time.Since(writtenAt) < s.ttl
}

// Types returns the cached type catalog for the org. Memory first, then
// disk (promoting fresh entries); stale or missing entries are a miss.
func (s *Store) Types(ctx context.Context, orgID string) ([]nakodx.MetadataType, bool) {
	if !s.usable(orgID) {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.types[orgID]; ok && s.fresh(e.WrittenAt) {
		return e.Types, true
	}

	var e TypeEntry
	if err := storage.LoadJSON(s.typesPath(orgID), &e); err != nil {
		if !os.IsNotExist(err) {
			log.FromContext(ctx).Debug("unreadable type cache file", "org", orgID, "err", err)
		}
		return nil, false
	}
	if !s.fresh(e.WrittenAt) {
		return nil, false
	}
	s.types[orgID] = &e
	return e.Types, true
}

// PutTypes stores a freshly fetched catalog, stamping it with the
// current time, and mirrors it to disk in the background.
func (s *Store) PutTypes(ctx context.Context, orgID string, types []nakodx.MetadataType) {
	if !s.usable(orgID) {
		return
	}
	e := &TypeEntry{OrgID: orgID, Types: types, WrittenAt: time.Now()}

	s.mu.Lock()
	s.types[orgID] = e
	s.mu.Unlock()

	s.persist(ctx, s.typesPath(orgID), e)
}

// Items returns the cached item list for the (org, type) pair.
func (s *Store) Items(ctx context.Context, orgID, typeName string) ([]nakodx.MetadataItem, bool) {
	if !s.usable(orgID) {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := ItemKey(orgID, typeName)
	if e, ok := s.items[key]; ok && s.fresh(e.WrittenAt) {
		return e.Items, true
	}

	var e ItemEntry
	if err := storage.LoadJSON(s.itemsPath(orgID, typeName), &e); err != nil {
		if !os.IsNotExist(err) {
			log.FromContext(ctx).Debug("unreadable item cache file", "org", orgID, "type", typeName, "err", err)
		}
		return nil, false
	}
	if !s.fresh(e.WrittenAt) {
		return nil, false
	}
	s.items[key] = &e
	return e.Items, true
}

// PutItems stores a freshly fetched item list, stamping it with the
// current time, and mirrors it to disk in the background.
func (s *Store) PutItems(ctx context.Context, orgID, typeName string, items []nakodx.MetadataItem) {
	if !s.usable(orgID) {
		return
	}
	e := &ItemEntry{OrgID: orgID, TypeName: typeName, Items: items, WrittenAt: time.Now()}

	s.mu.Lock()
	s.items[ItemKey(orgID, typeName)] = e
	s.mu.Unlock()

	s.persist(ctx, s.itemsPath(orgID, typeName), e)
}

// persist mirrors an entry to disk without blocking the caller.
// Failures are logged and swallowed: the memory tier already holds the
// authoritative value for this process lifetime.
func (s *Store) persist(ctx context.Context, path string, data any) {
	l := log.FromContext(ctx)
	s.writes.Add(1)
	go func() {
		defer s.writes.Done()
		if err := storage.SaveJSON(path, data); err != nil {
			l.Warnf("cache write %s: %v", filepath.Base(path), err)
		}
	}()
}

// Flush waits for pending disk writes. Call once before process exit.
func (s *Store) Flush() {
	s.writes.Wait()
}

// Preload bulk-loads fresh item lists from disk into the memory tier.
// Type catalogs are only loaded on demand since the active org is not
// known at startup. Stale or unparseable files are skipped.
func (s *Store) Preload(ctx context.Context) {
	if !s.enabled {
		return
	}
	l := log.FromContext(ctx)

	entries, err := os.ReadDir(filepath.Join(s.dir, "items"))
	if err != nil {
		return // no cache directory yet
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(s.dir, "items", name)
		var e ItemEntry
		if err := storage.LoadJSON(path, &e); err != nil {
			l.Debug("skipping unreadable cache file", "file", name, "err", err)
			continue
		}
		if e.OrgID == "" || e.TypeName == "" || !s.fresh(e.WrittenAt) {
			continue
		}
		s.items[ItemKey(e.OrgID, e.TypeName)] = &e
	}
}

// ClearTypes removes the org's type catalog from memory and disk.
func (s *Store) ClearTypes(ctx context.Context, orgID string) {
	if orgID == "" {
		return
	}

	s.mu.Lock()
	if e, ok := s.types[orgID]; ok && e.OrgID == orgID {
		delete(s.types, orgID)
	}
	s.mu.Unlock()

	if err := os.Remove(s.typesPath(orgID)); err != nil && !os.IsNotExist(err) {
		log.FromContext(ctx).Warnf("remove type cache file: %v", err)
	}
}

// ClearItems removes every item list cached for the org, across all
// metadata types, from memory and disk.
func (s *Store) ClearItems(ctx context.Context, orgID string) {
	if orgID == "" {
		return
	}

	s.mu.Lock()
	for key, e := range s.items {
		if e.OrgID == orgID {
			delete(s.items, key)
		}
	}
	s.mu.Unlock()

	l := log.FromContext(ctx)
	itemsDir := filepath.Join(s.dir, "items")
	entries, err := os.ReadDir(itemsDir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if !strings.HasPrefix(de.Name(), orgID+"-") {
			continue
		}
		if err := os.Remove(filepath.Join(itemsDir, de.Name())); err != nil {
			l.Warnf("remove item cache file %s: %v", de.Name(), err)
		}
	}
}

// PurgeAll clears both partitions in full, memory and disk, regardless
// of org. Called when caching is toggled off.
func (s *Store) PurgeAll(ctx context.Context) {
	s.mu.Lock()
	s.types = make(map[string]*TypeEntry)
	s.items = make(map[string]*ItemEntry)
	s.mu.Unlock()

	l := log.FromContext(ctx)
	for _, sub := range []string{"types", "items"} {
		if err := os.RemoveAll(filepath.Join(s.dir, sub)); err != nil {
			l.Warnf("purge cache %s: %v", sub, err)
		}
	}
}

// Counts returns the number of cached type catalogs and item lists in
// the memory tier.
func (s *Store) Counts() (types, items int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.types), len(s.items)
}
