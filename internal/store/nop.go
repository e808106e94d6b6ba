package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/studypack/internal/model"
)

// NopStore is a no-op store used in dry-run mode. It remembers nothing, so
// every inbox document looks new on each poll.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Save(rec model.PackRecord) (model.PackRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec, nil
}

func (s *NopStore) Get(id string) (model.PackRecord, error) {
	return model.PackRecord{}, model.ErrPackNotFound
}

func (s *NopStore) List(limit int) ([]model.PackRecord, error)    { return nil, nil }
func (s *NopStore) HasProcessed(contentHash string) (bool, error) { return false, nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error         { return nil }
