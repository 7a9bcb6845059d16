// Package cache provides bounded in-memory key-value stores with LRU eviction.
//
// Store keeps entries in doubly linked list of nodes allocated in one slice.
// Nodes refer each other by slice index, so there are no pointers between nodes.
// ScanStore keeps keys in slice ordered by recency, and finds key position with linear scan.
// It is simpler, but every touch is O(n). Both have same observable behaviour.
//
// * Every Put and successful Get touch key: it becomes most recently used.
// * Put of new key into full store evicts least recently used key.
// * Nothing else removes keys, except explicit Remove.
//
// Stores are not safe for concurrent use. Callers that share store between goroutines
// should guard it by mutex. Even Get requires exclusive access, because it modifies recency order.
package cache
