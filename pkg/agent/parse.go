package agent

import "strings"

// ruleMarker starts a feedback line that should be persisted as a rule.
const ruleMarker = "RULE:"

// maxVisualPromptLen caps image prompts so they stay usable inside a
// GET request URL.
const maxVisualPromptLen = 800

// ExtractRules scans feedback line by line and returns the text of
// every line whose trimmed form starts with "RULE:", marker stripped.
func ExtractRules(feedback string) []string {
	var rules []string
	for _, line := range strings.Split(feedback, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, ruleMarker) {
			continue
		}
		if rule := strings.TrimSpace(strings.TrimPrefix(line, ruleMarker)); rule != "" {
			rules = append(rules, rule)
		}
	}
	return rules
}

// CleanVisualPrompt extracts the usable image prompt from art-director
// output. The expected layout is free text containing a "Prompt:"
// marker, optionally followed by a "Text Overlay:" marker that ends the
// prompt. Input without a "Prompt:" marker is returned unmodified
// (apart from whitespace trimming and the length cap).
func CleanVisualPrompt(raw string) string {
	clean := raw
	if _, after, ok := strings.Cut(clean, "Prompt:"); ok {
		clean = after
		if before, _, ok := strings.Cut(clean, "Text Overlay:"); ok {
			clean = before
		}
	}
	clean = strings.TrimSpace(clean)
	if len(clean) > maxVisualPromptLen {
		clean = clean[:maxVisualPromptLen]
	}
	return clean
}
