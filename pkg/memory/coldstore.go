package memory

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// ColdStore is the append-only destination for history records aged
// out of the primary store by retention.
type ColdStore interface {
	// AppendRecords appends records; partial writes are not rolled back.
	AppendRecords(recs []PostRecord) error

	// ReadAll returns every archived record in append order.
	ReadAll() ([]PostRecord, error)
}

// FSColdStoreConfig configures the file-backed archive.
type FSColdStoreConfig struct {
	Dir string

	// MaxSegmentBytes triggers rotation when the active segment reaches
	// this size.
	MaxSegmentBytes int64
}

// DefaultFSColdStoreConfig returns a conservative default config.
func DefaultFSColdStoreConfig(dir string) FSColdStoreConfig {
	return FSColdStoreConfig{
		Dir:             dir,
		MaxSegmentBytes: 4 << 20, // 4MB
	}
}

// NewFSColdStore creates an archive backed by JSON-lines segment files
// in dir. Records keep the exact PostRecord shape of the primary
// store, one per line, so the archive stays greppable.
func NewFSColdStore(cfg FSColdStoreConfig) (ColdStore, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("dir is required")
	}
	if cfg.MaxSegmentBytes <= 0 {
		cfg.MaxSegmentBytes = 4 << 20
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	s := &fsColdStore{cfg: cfg}
	if err := s.openActive(); err != nil {
		return nil, err
	}
	return s, nil
}

// fsColdStore appends synchronously: the archiver is a batch step, so
// durability matters more than append latency here.
type fsColdStore struct {
	cfg FSColdStoreConfig

	mu         sync.Mutex
	activeID   int
	activeSize int64
}

func (s *fsColdStore) openActive() error {
	segs, err := listArchiveSegments(s.cfg.Dir)
	if err != nil {
		return err
	}
	s.activeID = 1
	if len(segs) > 0 {
		s.activeID = segs[len(segs)-1].id
		st, err := os.Stat(segs[len(segs)-1].path)
		if err != nil {
			return err
		}
		s.activeSize = st.Size()
	}
	return nil
}

func (s *fsColdStore) AppendRecords(recs []PostRecord) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range recs {
		line, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal archive record: %w", err)
		}
		line = append(line, '\n')

		if s.activeSize+int64(len(line)) > s.cfg.MaxSegmentBytes && s.activeSize > 0 {
			s.activeID++
			s.activeSize = 0
		}

		path := archiveSegmentPath(s.cfg.Dir, s.activeID)
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open archive segment: %w", err)
		}
		if _, err := f.Write(line); err != nil {
			_ = f.Close()
			return fmt.Errorf("append archive record: %w", err)
		}
		if err := f.Sync(); err != nil {
			_ = f.Close()
			return fmt.Errorf("sync archive segment: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close archive segment: %w", err)
		}
		s.activeSize += int64(len(line))
	}
	return nil
}

func (s *fsColdStore) ReadAll() ([]PostRecord, error) {
	segs, err := listArchiveSegments(s.cfg.Dir)
	if err != nil {
		return nil, err
	}

	var out []PostRecord
	for _, seg := range segs {
		recs, err := readArchiveSegment(seg.path)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

type archiveSegInfo struct {
	id   int
	path string
}

func archiveSegmentPath(dir string, id int) string {
	return filepath.Join(dir, fmt.Sprintf("%06d.jsonl", id))
}

func listArchiveSegments(dir string) ([]archiveSegInfo, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var segs []archiveSegInfo
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(name, ".jsonl"))
		if err != nil {
			continue
		}
		segs = append(segs, archiveSegInfo{id: id, path: filepath.Join(dir, name)})
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].id < segs[j].id })
	return segs, nil
}

func readArchiveSegment(path string) ([]PostRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []PostRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec PostRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("parse archive record in %s: %w", path, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Compile-time interface assertion.
var _ ColdStore = (*fsColdStore)(nil)
