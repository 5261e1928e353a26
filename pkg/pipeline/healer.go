package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/growthloopio/growthloop/pkg/linkedin"
	"github.com/growthloopio/growthloop/pkg/logging"
	"github.com/growthloopio/growthloop/pkg/memory"
)

// EngagementFetcher reads like/comment counts for a published post.
type EngagementFetcher interface {
	Engagement(ctx context.Context, urn string) (linkedin.Engagement, error)
}

// StatsHealer refreshes engagement stats for past posts so the
// performance insight reflects reality. Fetches run concurrently with a
// small bound; a post whose stats cannot be fetched is skipped, not
// fatal.
type StatsHealer struct {
	mem     *memory.Memory
	fetcher EngagementFetcher
	logger  logging.Logger
	limit   int
}

func NewStatsHealer(mem *memory.Memory, fetcher EngagementFetcher, logger logging.Logger) *StatsHealer {
	return &StatsHealer{mem: mem, fetcher: fetcher, logger: logger, limit: 4}
}

// Heal updates stats for every post in history and returns how many
// records were refreshed.
func (h *StatsHealer) Heal(ctx context.Context) (int, error) {
	history := h.mem.History()
	if len(history) == 0 {
		h.logger.Info("healer: no post history to refresh")
		return 0, nil
	}

	updated := make(chan string, len(history))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(h.limit)

	for _, rec := range history {
		rec := rec
		if rec.URN == "" {
			continue
		}
		g.Go(func() error {
			eng, err := h.fetcher.Engagement(ctx, rec.URN)
			if err != nil {
				h.logger.Warnf("healer: skipping %s: %v", rec.URN, err)
				return nil
			}
			if err := h.mem.UpdatePostStats(rec.URN, eng.Likes, eng.Comments); err != nil {
				h.logger.Errorf("healer: failed to store stats for %s: %v", rec.URN, err)
				return nil
			}
			updated <- rec.URN
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	close(updated)

	count := 0
	for range updated {
		count++
	}
	h.logger.Infof("healer: refreshed stats for %d of %d posts", count, len(history))
	return count, nil
}
