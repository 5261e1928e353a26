// Package memory is the durable learning store of the pipeline: style
// rules distilled from review feedback, the publish history with
// engagement stats, and the latest secondary artifacts. All state
// lives in a single JSON document on disk, loaded fresh per operation
// and guarded by a cross-process lock for every read-modify-write, so
// a manual run and a scheduled run can overlap without losing updates.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/growthloopio/growthloop/pkg/logging"
)

// defaultLockWait bounds how long a mutation waits on a concurrent run.
const defaultLockWait = 30 * time.Second

// Stats holds engagement counters for one published post.
type Stats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// PostRecord represents one completed publish action.
type PostRecord struct {
	Date  string `json:"date"` // RFC3339; legacy records may hold opaque run IDs
	Topic string `json:"topic"`
	Vibe  string `json:"vibe"`
	URN   string `json:"urn"` // external post identifier, unique among records
	Stats Stats  `json:"stats"`
}

// Store is the root persisted document.
type Store struct {
	Rules             []string     `json:"rules"`
	History           []PostRecord `json:"history"`
	LatestCommentPack string       `json:"latest_comment_pack,omitempty"`
	LastUpdated       string       `json:"last_updated,omitempty"`
}

func emptyStore() *Store {
	return &Store{Rules: []string{}, History: []PostRecord{}}
}

// Memory provides lock-guarded access to the Store document. Memory
// itself is stateless between calls; every operation reloads from disk.
type Memory struct {
	path     string
	cold     ColdStore
	logger   logging.Logger
	lockWait time.Duration
	now      func() time.Time
}

// Option configures a Memory.
type Option func(*Memory)

// WithColdStore sets the archive destination for aged-out records.
func WithColdStore(cs ColdStore) Option {
	return func(m *Memory) { m.cold = cs }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// New creates a Memory backed by the JSON document at path.
func New(path string, logger logging.Logger, opts ...Option) *Memory {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	m := &Memory{
		path:     path,
		logger:   logger,
		lockWait: defaultLockWait,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) lockPath() string {
	return m.path + ".lock"
}

// Load reads the current on-disk state. A missing file is seeded with
// an empty store exactly once; corrupt content is logged and replaced
// by an empty store in memory without touching the file. Load never
// fails: availability wins over strict durability for this store.
func (m *Memory) Load() *Store {
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		m.seed()
	}
	return m.loadUnlocked()
}

// seed creates the empty document, re-checking existence under the
// lock so a concurrently seeded (and possibly already mutated) store
// is never clobbered.
func (m *Memory) seed() {
	lock, err := acquireLock(m.lockPath(), m.lockWait)
	if err != nil {
		m.logger.Errorf("memory: seeding %s failed: %v", m.path, err)
		return
	}
	defer func() { _ = lock.Release() }()

	if _, err := os.Stat(m.path); !os.IsNotExist(err) {
		return
	}
	if err := m.saveLocked(emptyStore()); err != nil {
		m.logger.Errorf("memory: seeding %s failed: %v", m.path, err)
	}
}

// loadUnlocked reads and parses the document without taking the lock.
// Writers replace the file atomically, so a concurrent read sees either
// the pre- or post-write document, never a torn one.
func (m *Memory) loadUnlocked() *Store {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Errorf("memory: reading %s failed: %v", m.path, err)
		}
		return emptyStore()
	}
	st := emptyStore()
	if err := json.Unmarshal(data, st); err != nil {
		m.logger.Errorf("memory: %s is corrupt, starting from an empty store: %v", m.path, err)
		return emptyStore()
	}
	if st.Rules == nil {
		st.Rules = []string{}
	}
	if st.History == nil {
		st.History = []PostRecord{}
	}
	return st
}

// Save serializes the store and atomically replaces the on-disk
// document under the cross-process lock.
func (m *Memory) Save(st *Store) error {
	lock, err := acquireLock(m.lockPath(), m.lockWait)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()
	return m.saveLocked(st)
}

// saveLocked writes via a temp file + rename so concurrent readers
// never observe a half-written document. Caller holds the lock.
func (m *Memory) saveLocked(st *Store) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}

	dir := filepath.Dir(m.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(m.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// mutate runs fn on a freshly loaded store under the lock and persists
// the result when fn reports a change.
func (m *Memory) mutate(fn func(*Store) bool) error {
	lock, err := acquireLock(m.lockPath(), m.lockWait)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	st := m.loadUnlocked()
	if !fn(st) {
		return nil
	}
	return m.saveLocked(st)
}

// Rules returns the accumulated style rules in insertion order.
func (m *Memory) Rules() []string {
	st := m.loadUnlocked()
	return append([]string(nil), st.Rules...)
}

// History returns the publish history in insertion order.
func (m *Memory) History() []PostRecord {
	st := m.loadUnlocked()
	return append([]PostRecord(nil), st.History...)
}

// AddRule appends a style rule unless the exact text is already
// present. The rule set is a true set: case-sensitive exact match.
func (m *Memory) AddRule(rule string) error {
	if rule == "" {
		return nil
	}
	return m.mutate(func(st *Store) bool {
		for _, r := range st.Rules {
			if r == rule {
				return false
			}
		}
		st.Rules = append(st.Rules, rule)
		m.logger.Infof("memory: added rule %q", rule)
		return true
	})
}

// AddPostRecord appends a history entry with zeroed stats for a post
// just published under urn.
func (m *Memory) AddPostRecord(topic, vibe, urn string) error {
	return m.mutate(func(st *Store) bool {
		st.History = append(st.History, PostRecord{
			Date:  m.now().UTC().Format(time.RFC3339),
			Topic: topic,
			Vibe:  vibe,
			URN:   urn,
		})
		m.logger.Infof("memory: logged post %q (%s)", topic, vibe)
		return true
	})
}

// UpdatePostStats overwrites the stats of the record published under
// urn. An unknown urn is a no-op: the post may already be archived.
func (m *Memory) UpdatePostStats(urn string, likes, comments int) error {
	return m.mutate(func(st *Store) bool {
		for i := range st.History {
			if st.History[i].URN == urn {
				st.History[i].Stats = Stats{Likes: likes, Comments: comments}
				m.logger.Infof("memory: stats updated for %s: %d likes, %d comments", urn, likes, comments)
				return true
			}
		}
		return false
	})
}

// SaveCommentPack stores the latest generated comment pack and stamps
// the last-update marker.
func (m *Memory) SaveCommentPack(pack string) error {
	return m.mutate(func(st *Store) bool {
		st.LatestCommentPack = pack
		st.LastUpdated = m.now().UTC().Format(time.RFC3339)
		m.logger.Info("memory: saved latest comment pack")
		return true
	})
}
