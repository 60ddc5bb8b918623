package storage

import (
	"log/slog"
)

// Resilient wraps a KV so that write failures (disk full, quota) degrade the
// application to in-memory-only operation instead of crashing it. Once a
// write has been absorbed by the overlay, reads for that key are served from
// the overlay so the session stays self-consistent.
type Resilient struct {
	inner   KV
	overlay map[string][]byte
	deleted map[string]bool
	logger  *slog.Logger
}

func NewResilient(inner KV, logger *slog.Logger) *Resilient {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resilient{
		inner:   inner,
		overlay: make(map[string][]byte),
		deleted: make(map[string]bool),
		logger:  logger,
	}
}

func (r *Resilient) Get(key string) ([]byte, bool, error) {
	if r.deleted[key] {
		return nil, false, nil
	}

	if v, ok := r.overlay[key]; ok {
		return append([]byte(nil), v...), true, nil
	}

	return r.inner.Get(key)
}

func (r *Resilient) Set(key string, value []byte) error {
	if err := r.inner.Set(key, value); err != nil {
		r.logger.Warn("storage write failed, keeping value in memory only", "key", key, "error", err)
		r.overlay[key] = append([]byte(nil), value...)
		delete(r.deleted, key)

		return nil
	}

	delete(r.overlay, key)
	delete(r.deleted, key)

	return nil
}

func (r *Resilient) Delete(key string) error {
	if err := r.inner.Delete(key); err != nil {
		r.logger.Warn("storage delete failed, hiding key in memory only", "key", key, "error", err)
		delete(r.overlay, key)
		r.deleted[key] = true

		return nil
	}

	delete(r.overlay, key)
	delete(r.deleted, key)

	return nil
}

func (r *Resilient) Close() error {
	return r.inner.Close()
}
