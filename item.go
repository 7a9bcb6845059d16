package lrucached

// Item is value stored for key.
type Item struct {
	Flags uint32
	Data  []byte
}

type ItemView struct {
	Key string
	Item
}

// Cache is storage shared by connections. Implementation should be safe for concurrent use.
// Implementation must not retain key slices.
type Cache interface {
	Set(key string, i Item)
	// Get returns views of found items in keys order.
	// Views can be nil, if no key was found.
	Get(keys ...[]byte) (views []ItemView)
	Delete(key []byte) (deleted bool)
	Stats() Stats
}

type Stats struct {
	Capacity  int
	Items     int
	Hits      int64
	Misses    int64
	Evictions int64
	Sets      int64
	Deletes   int64
}
