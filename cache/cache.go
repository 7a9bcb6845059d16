package cache

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// Cache is the contract of both stores.
type Cache[K comparable, V any] interface {
	// Put sets value for key and makes key most recently used.
	// If key is new and cache is full, least recently used key is evicted.
	Put(key K, value V)
	// Get returns value for key and makes key most recently used.
	// On miss, ok is false and recency order is untouched.
	Get(key K) (value V, ok bool)
	// Remove deletes key. It returns removed value, if key was present.
	Remove(key K) (value V, ok bool)
	// Contains checks key presence without recency update.
	Contains(key K) bool
	// Oldest returns eviction candidate without recency update.
	Oldest() (key K, ok bool)
	// Keys returns keys from least to most recently used.
	Keys() []K
	Len() int
	Capacity() int
}

// MaxCapacity is limited by node handle size.
const MaxCapacity = math.MaxInt32 - 1

var ErrInvalidCapacity = errors.New("capacity should be positive and not greater than MaxCapacity")

func checkCapacity(capacity int) error {
	if capacity <= 0 || capacity > MaxCapacity {
		return errors.Wrapf(ErrInvalidCapacity, "capacity %v", capacity)
	}
	return nil
}

// Kind selects recency tracking implementation.
type Kind string

const (
	Indexed Kind = "indexed"
	Scan    Kind = "scan"
)

var ErrUnknownKind = errors.New("unknown store kind")

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(s))
	switch k {
	case Indexed, Scan:
		return k, nil
	}
	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

// NewKind creates store of kind k.
func NewKind[K comparable, V any](k Kind, capacity int) (Cache[K, V], error) {
	var (
		c   Cache[K, V]
		err error
	)
	switch k {
	case Indexed:
		c, err = New[K, V](capacity)
	case Scan:
		c, err = NewScan[K, V](capacity)
	default:
		err = errors.Wrapf(ErrUnknownKind, "%q", k)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
