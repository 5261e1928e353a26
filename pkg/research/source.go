// Package research gathers context for a topic from several
// independent web sources in parallel and synthesizes the merged
// material into a single trend brief.
package research

import "context"

// Source fetches summary text for a query. Implementations absorb all
// of their own errors and return a human-readable placeholder instead
// of propagating, so a failed source can never abort aggregation.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string) string
}
