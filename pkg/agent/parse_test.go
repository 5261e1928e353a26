package agent

import (
	"strings"
	"testing"
)

func TestExtractRules(t *testing.T) {
	tests := []struct {
		name     string
		feedback string
		want     []string
	}{
		{
			name:     "single rule with surrounding prose",
			feedback: "The post is too generic.\nRULE: Avoid generic openings.",
			want:     []string{"Avoid generic openings."},
		},
		{
			name:     "indented rule line",
			feedback: "feedback\n   RULE: Trim filler words.",
			want:     []string{"Trim filler words."},
		},
		{
			name:     "marker mid-line is ignored",
			feedback: "A general RULE: something is not a directive.",
			want:     nil,
		},
		{
			name:     "empty rule body is dropped",
			feedback: "RULE:\nRULE:   ",
			want:     nil,
		},
		{
			name:     "no rules",
			feedback: "Looks fine.",
			want:     nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractRules(tt.feedback)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCleanVisualPrompt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "full art director layout",
			raw:  "Visual Format: Photo\nPrompt: a foggy server room at dawn\nText Overlay: SHIP IT",
			want: "a foggy server room at dawn",
		},
		{
			name: "prompt marker only",
			raw:  "Prompt: minimalist chart on dark background",
			want: "minimalist chart on dark background",
		},
		{
			name: "malformed input returned trimmed",
			raw:  "  just some free text without markers  ",
			want: "just some free text without markers",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanVisualPrompt(tt.raw); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanVisualPrompt_CapsLength(t *testing.T) {
	raw := "Prompt: " + strings.Repeat("x", 2000)
	got := CleanVisualPrompt(raw)
	if len(got) != maxVisualPromptLen {
		t.Fatalf("len = %d, want %d", len(got), maxVisualPromptLen)
	}
}
