package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meetbhatt/portfolio-tracker/internal/models"
)

// MemoryStore keeps the ledger in process memory. It backs handler tests
// and serves as a zero-setup backend for trying the service out.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.TradeRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List() ([]models.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TradeRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Append(rec models.TradeRecord) (models.TradeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records = append(s.records, rec)
	return rec, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
