package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/growthloopio/growthloop/pkg/logging"
)

func newTestMemory(t *testing.T, opts ...Option) (*Memory, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memory.json")
	return New(path, logging.NewNopLogger(), opts...), path
}

func TestLoad_SeedsMissingFile(t *testing.T) {
	m, path := newTestMemory(t)

	st := m.Load()
	if len(st.Rules) != 0 || len(st.History) != 0 {
		t.Fatalf("expected empty seeded store, got %+v", st)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("seeded file not written: %v", err)
	}
	var onDisk Store
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("seeded file is not valid JSON: %v", err)
	}

	// A second Load must not re-seed or duplicate anything.
	if err := m.AddRule("keep me"); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	st = m.Load()
	if len(st.Rules) != 1 || st.Rules[0] != "keep me" {
		t.Fatalf("second Load lost state: %+v", st.Rules)
	}
}

func TestLoad_CorruptFileResetsToEmpty(t *testing.T) {
	m, path := newTestMemory(t)
	if err := os.WriteFile(path, []byte("not valid json {{{"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	st := m.Load()
	if len(st.Rules) != 0 || len(st.History) != 0 {
		t.Fatalf("expected empty store from corrupt file, got %+v", st)
	}
	if got := m.Rules(); len(got) != 0 {
		t.Fatalf("Rules() on corrupt file = %v, want empty", got)
	}
}

func TestAddRule_Deduplicates(t *testing.T) {
	m, _ := newTestMemory(t)

	for i := 0; i < 3; i++ {
		if err := m.AddRule("Never use the word 'unleash'."); err != nil {
			t.Fatalf("AddRule: %v", err)
		}
	}
	if err := m.AddRule("never use the word 'unleash'."); err != nil {
		t.Fatalf("AddRule: %v", err)
	}

	rules := m.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules (dedup is case-sensitive), got %v", rules)
	}
}

func TestAddRule_EmptyIsNoOp(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.AddRule(""); err != nil {
		t.Fatalf("AddRule: %v", err)
	}
	if got := m.Rules(); len(got) != 0 {
		t.Fatalf("empty rule was persisted: %v", got)
	}
}

func TestAddRule_ConcurrentWriters(t *testing.T) {
	m, path := newTestMemory(t)

	const writers = 8
	const rulesPerWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			// Each goroutine uses its own Memory handle, as separate
			// processes would.
			local := New(path, logging.NewNopLogger())
			for i := 0; i < rulesPerWriter; i++ {
				if err := local.AddRule(fmt.Sprintf("rule from writer %d - %d", w, i)); err != nil {
					t.Errorf("AddRule: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	rules := m.Rules()
	if len(rules) != writers*rulesPerWriter {
		t.Fatalf("expected %d rules, got %d", writers*rulesPerWriter, len(rules))
	}
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if seen[r] {
			t.Fatalf("duplicate rule persisted: %q", r)
		}
		seen[r] = true
	}

	// The underlying document must still be valid JSON.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	var st Store
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("store corrupted by concurrent writes: %v", err)
	}
}

func TestAddPostRecordAndUpdateStats(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m, _ := newTestMemory(t, WithClock(func() time.Time { return fixed }))

	if err := m.AddPostRecord("AI Topic", "The Analyst", "urn:li:share:123"); err != nil {
		t.Fatalf("AddPostRecord: %v", err)
	}

	history := m.History()
	if len(history) != 1 {
		t.Fatalf("expected 1 record, got %d", len(history))
	}
	rec := history[0]
	if rec.Topic != "AI Topic" || rec.Vibe != "The Analyst" || rec.URN != "urn:li:share:123" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Stats.Likes != 0 || rec.Stats.Comments != 0 {
		t.Fatalf("new record must start with zeroed stats: %+v", rec.Stats)
	}
	if rec.Date != fixed.Format(time.RFC3339) {
		t.Fatalf("unexpected date %q", rec.Date)
	}

	if err := m.UpdatePostStats("urn:li:share:123", 25, 10); err != nil {
		t.Fatalf("UpdatePostStats: %v", err)
	}
	rec = m.History()[0]
	if rec.Stats.Likes != 25 || rec.Stats.Comments != 10 {
		t.Fatalf("stats not updated: %+v", rec.Stats)
	}

	// Unknown URN is a non-fatal no-op.
	if err := m.UpdatePostStats("urn:li:share:missing", 1, 1); err != nil {
		t.Fatalf("UpdatePostStats unknown urn: %v", err)
	}
}

func TestPerformanceInsight(t *testing.T) {
	m, _ := newTestMemory(t)

	if got := m.PerformanceInsight(); got != InsightNoData {
		t.Fatalf("empty history insight = %q, want %q", got, InsightNoData)
	}

	seed := []struct {
		vibe  string
		likes int
	}{
		{"Variant A", 10},
		{"Variant B", 25},
		{"Variant C", 3},
	}
	for i, s := range seed {
		urn := fmt.Sprintf("urn:li:share:%d", i)
		if err := m.AddPostRecord("topic", s.vibe, urn); err != nil {
			t.Fatalf("AddPostRecord: %v", err)
		}
		if err := m.UpdatePostStats(urn, s.likes, 0); err != nil {
			t.Fatalf("UpdatePostStats: %v", err)
		}
	}

	insight := m.PerformanceInsight()
	if want := "Variant B"; !strings.Contains(insight, want) {
		t.Fatalf("insight %q does not name best variant %q", insight, want)
	}
}

func TestPerformanceInsight_ZeroLikes(t *testing.T) {
	m, _ := newTestMemory(t)
	if err := m.AddPostRecord("topic", "Variant A", "urn:li:share:0"); err != nil {
		t.Fatalf("AddPostRecord: %v", err)
	}
	if got := m.PerformanceInsight(); got != InsightNoSignal {
		t.Fatalf("zero-likes insight = %q, want %q", got, InsightNoSignal)
	}
}

func TestSaveCommentPack(t *testing.T) {
	m, path := newTestMemory(t)
	if err := m.SaveCommentPack("### Comment Pack"); err != nil {
		t.Fatalf("SaveCommentPack: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	var st Store
	if err := json.Unmarshal(data, &st); err != nil {
		t.Fatalf("parse store: %v", err)
	}
	if st.LatestCommentPack != "### Comment Pack" {
		t.Fatalf("comment pack not persisted: %+v", st)
	}
	if st.LastUpdated == "" {
		t.Fatal("last_updated marker not stamped")
	}
}
