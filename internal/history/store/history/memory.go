package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cascade/internal/history/models"
	id "cascade/pkg/domain"
	"cascade/pkg/platform/sentinel"
)

// InMemory stores history entries and their outbox rows in memory for
// tests/dev. Entries are append-only; nothing here ever mutates or deletes a
// stored entry.
type InMemory struct {
	mu      sync.RWMutex
	entries []*models.Entry
	outbox  []*models.OutboxRow
	nextSeq int64
}

// NewInMemory constructs an empty in-memory history store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Append stores the entry and queues its outbox row in one step, mirroring
// the single-transaction postgres behavior.
func (s *InMemory) Append(_ context.Context, entry *models.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal history payload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *entry
	s.entries = append(s.entries, &cp)
	s.nextSeq++
	s.outbox = append(s.outbox, &models.OutboxRow{
		ID:        s.nextSeq,
		EntryID:   entry.ID,
		ProjectID: entry.ProjectID,
		Payload:   payload,
		CreatedAt: entry.ChangedAt,
	})
	return nil
}

// ListByProject returns entries in reverse-chronological order. Entries that
// share a timestamp (one update emits a batch) come back newest-first by
// insertion order.
func (s *InMemory) ListByProject(_ context.Context, companyID id.CompanyID, projectID id.ProjectID, limit, offset int) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matching := make([]*models.Entry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.ProjectID != projectID || e.CompanyID != companyID {
			continue
		}
		cp := *e
		matching = append(matching, &cp)
	}

	if offset >= len(matching) {
		return []*models.Entry{}, nil
	}
	matching = matching[offset:]
	if limit > 0 && limit < len(matching) {
		matching = matching[:limit]
	}
	return matching, nil
}

// ListUnpublished returns outbox rows awaiting publication, oldest first.
func (s *InMemory) ListUnpublished(_ context.Context, limit int) ([]*models.OutboxRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.OutboxRow, 0, limit)
	for _, row := range s.outbox {
		if row.IsPublished() {
			continue
		}
		cp := *row
		out = append(out, &cp)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkPublished stamps the row so it is never delivered again by this store.
func (s *InMemory) MarkPublished(_ context.Context, rowID int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.outbox {
		if row.ID == rowID {
			ts := now
			row.PublishedAt = &ts
			return nil
		}
	}
	return fmt.Errorf("outbox row %d not found: %w", rowID, sentinel.ErrNotFound)
}
