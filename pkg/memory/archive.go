package memory

import (
	"fmt"
	"time"
)

// ArchiveOlderThan moves history records strictly older than the
// retention window into the cold store and returns how many moved.
// Records whose date cannot be parsed as a timestamp are conservatively
// kept. A cold-store write failure is logged and does not restore the
// removed records in the primary store: accepted durability trade-off,
// the archiver runs again on the next scheduled pass.
func (m *Memory) ArchiveOlderThan(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}
	if m.cold == nil {
		return 0, fmt.Errorf("no cold store configured")
	}

	cutoff := m.now().UTC().AddDate(0, 0, -retentionDays)

	var moved int
	err := m.mutate(func(st *Store) bool {
		kept := st.History[:0]
		var aged []PostRecord
		for _, rec := range st.History {
			ts, err := time.Parse(time.RFC3339, rec.Date)
			if err != nil || !ts.Before(cutoff) {
				kept = append(kept, rec)
				continue
			}
			aged = append(aged, rec)
		}
		if len(aged) == 0 {
			return false
		}

		if err := m.cold.AppendRecords(aged); err != nil {
			m.logger.Errorf("memory: archiving %d records failed, records are dropped from the primary store: %v",
				len(aged), err)
		}

		st.History = kept
		moved = len(aged)
		m.logger.Infof("memory: archived %d records older than %d days", moved, retentionDays)
		return true
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}
