package cache

// KV defines the minimal persistent key-value contract used by the lookup client.
// Entries never expire. Implementations must be safe for concurrent use by
// multiple goroutines.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}
