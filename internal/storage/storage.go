package storage

// KV is the durable key-value namespace every repository writes through.
// Implementations must treat values as opaque bytes.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}
