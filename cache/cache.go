package cache

// Cache is a string keyed cache with cost based admission. Route indexes
// are stored in it by table generation.
type Cache[V any] interface {
	Get(key string) (V, bool)

	// Set reports whether the value was accepted. An accepted value may
	// still be dropped later by the admission policy.
	Set(key string, value V, cost int64) bool
}
