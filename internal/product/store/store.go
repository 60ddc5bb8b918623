package store

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/adjelloud/stockbook/internal/product"
	"github.com/adjelloud/stockbook/internal/storage"
)

// Store persists one user's product collection as a single JSON array under
// a per-user key. ReplaceAll is the only write primitive; callers read the
// full list, transform it, and write it back.
type Store struct {
	kv storage.KV
}

func New(kv storage.KV) *Store {
	return &Store{kv: kv}
}

func key(userID uuid.UUID) string {
	return fmt.Sprintf("stockbook_%s_products", userID)
}

func (s *Store) List(userID uuid.UUID) ([]*product.Product, error) {
	raw, ok, err := s.kv.Get(key(userID))
	if err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}

	if !ok {
		return nil, nil
	}

	var products []*product.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		// Corrupt payloads are discarded, not fatal.
		slog.Warn("discarding malformed product collection", "user", userID, "error", err)
		return nil, nil
	}

	return products, nil
}

func (s *Store) ReplaceAll(userID uuid.UUID, products []*product.Product) error {
	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encoding products: %w", err)
	}

	if err := s.kv.Set(key(userID), raw); err != nil {
		return fmt.Errorf("writing products: %w", err)
	}

	return nil
}

func (s *Store) DeletePartition(userID uuid.UUID) error {
	if err := s.kv.Delete(key(userID)); err != nil {
		return fmt.Errorf("deleting product partition: %w", err)
	}

	return nil
}
