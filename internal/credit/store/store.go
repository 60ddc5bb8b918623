package store

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adjelloud/stockbook/internal/credit"
	"github.com/adjelloud/stockbook/internal/storage"
)

// Store persists one user's credit sales as a single JSON array under a
// per-user key, mirroring the product store.
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func key(userID uuid.UUID) string {
	return fmt.Sprintf("stockbook_%s_credits", userID)
}

func (s *Store) List(userID uuid.UUID) ([]*credit.Credit, error) {
	raw, ok, err := s.kv.Get(key(userID))
	if err != nil {
		return nil, fmt.Errorf("reading credits: %w", err)
	}

	if !ok {
		return nil, nil
	}

	var credits []*credit.Credit
	if err := json.Unmarshal(raw, &credits); err != nil {
		slog.Warn("discarding malformed credit collection", "user", userID, "error", err)
		return nil, nil
	}

	return credits, nil
}

func (s *Store) ReplaceAll(userID uuid.UUID, credits []*credit.Credit) error {
	raw, err := json.Marshal(credits)
	if err != nil {
		return fmt.Errorf("encoding credits: %w", err)
	}

	if err := s.kv.Set(key(userID), raw); err != nil {
		return fmt.Errorf("writing credits: %w", err)
	}

	return nil
}

func (s *Store) DeletePartition(userID uuid.UUID) error {
	if err := s.kv.Delete(key(userID)); err != nil {
		return fmt.Errorf("deleting credit partition: %w", err)
	}

	return nil
}
