package vibes

import (
	"math/rand"
	"testing"
)

func TestAllVibesComplete(t *testing.T) {
	if len(All) != 5 {
		t.Fatalf("expected 5 vibes, got %d", len(All))
	}
	seen := make(map[string]bool)
	for _, v := range All {
		if v.Name == "" || v.Strategist == "" || v.Ghostwriter == "" || v.ArtDirector == "" {
			t.Fatalf("vibe %q has an empty prompt fragment", v.Name)
		}
		if seen[v.Name] {
			t.Fatalf("duplicate vibe name %q", v.Name)
		}
		seen[v.Name] = true
	}
}

func TestSelect_Forced(t *testing.T) {
	v, err := Select("The Educator", rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if v.Name != "The Educator" {
		t.Fatalf("Name = %q", v.Name)
	}
}

func TestSelect_UnknownForced(t *testing.T) {
	if _, err := Select("The Ghost", rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error for unknown vibe")
	}
}

func TestSelect_RandomCoversAll(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		v, err := Select("", rng)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		seen[v.Name] = true
	}
	if len(seen) != len(All) {
		t.Fatalf("random selection only covered %d of %d vibes", len(seen), len(All))
	}
}
