package memory

import "fmt"

// Sentinels returned by PerformanceInsight when the history carries no
// usable signal. Callers feed the insight verbatim into prompts, so
// these read as instructions rather than error codes.
const (
	InsightNoData   = "No past performance data available."
	InsightNoSignal = "Not enough data to determine best vibe yet."
)

// PerformanceInsight synthesizes the single best-performing history
// entry into a prompt fragment that biases future style selection.
func (m *Memory) PerformanceInsight() string {
	history := m.loadUnlocked().History
	if len(history) == 0 {
		return InsightNoData
	}

	best := history[0]
	for _, rec := range history[1:] {
		if rec.Stats.Likes > best.Stats.Likes {
			best = rec
		}
	}
	if best.Stats.Likes <= 0 {
		return InsightNoSignal
	}
	return fmt.Sprintf("BEST PERFORMING VIBE: %s (topic: %s, %d likes). Repeat this style.",
		best.Vibe, best.Topic, best.Stats.Likes)
}
