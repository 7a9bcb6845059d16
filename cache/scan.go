package cache

// ScanStore is LRU store that keeps keys in slice from least to most recently used.
// Touch finds key position by linear scan, so Put and Get are O(n).
// It is fine for small capacities and serves as reference for Store.
//
// ScanStore is not safe for concurrent use. Zero value is not valid, use NewScan.
type ScanStore[K comparable, V any] struct {
	capacity int
	values   map[K]V
	// order[0] is least recently used key.
	order []K
}

var _ Cache[string, int] = (*ScanStore[string, int])(nil)

// NewScan creates empty linear scan store. Capacity is checked as in New.
func NewScan[K comparable, V any](capacity int) (*ScanStore[K, V], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	prealloc := capacity
	if prealloc > maxPrealloc {
		prealloc = maxPrealloc
	}
	return &ScanStore[K, V]{
		capacity: capacity,
		values:   make(map[K]V, prealloc),
		order:    make([]K, 0, prealloc),
	}, nil
}

func (s *ScanStore[K, V]) Put(key K, value V) {
	defer s.checkInvariants()
	if _, ok := s.values[key]; ok {
		s.values[key] = value
		s.touch(key)
		return
	}
	if len(s.values) == s.capacity {
		delete(s.values, s.order[0])
		s.removeAt(0)
	}
	s.values[key] = value
	s.order = append(s.order, key)
}

func (s *ScanStore[K, V]) Get(key K) (value V, ok bool) {
	value, ok = s.values[key]
	if !ok {
		return
	}
	s.touch(key)
	s.checkInvariants()
	return
}

func (s *ScanStore[K, V]) Remove(key K) (value V, ok bool) {
	value, ok = s.values[key]
	if !ok {
		return
	}
	delete(s.values, key)
	s.removeAt(s.position(key))
	s.checkInvariants()
	return
}

func (s *ScanStore[K, V]) Contains(key K) bool {
	_, ok := s.values[key]
	return ok
}

func (s *ScanStore[K, V]) Oldest() (key K, ok bool) {
	if len(s.order) == 0 {
		return
	}
	return s.order[0], true
}

func (s *ScanStore[K, V]) Keys() []K {
	return append(make([]K, 0, len(s.order)), s.order...)
}

func (s *ScanStore[K, V]) Len() int      { return len(s.values) }
func (s *ScanStore[K, V]) Capacity() int { return s.capacity }

// touch moves present key to the end of order.
func (s *ScanStore[K, V]) touch(key K) {
	i := s.position(key)
	if i == len(s.order)-1 {
		return
	}
	s.removeAt(i)
	s.order = append(s.order, key)
}

func (s *ScanStore[K, V]) position(key K) int {
	for i, k := range s.order {
		if k == key {
			return i
		}
	}
	panic("key is not in order")
}

func (s *ScanStore[K, V]) removeAt(i int) {
	last := len(s.order) - 1
	copy(s.order[i:], s.order[i+1:])
	var zero K
	s.order[last] = zero // Don't retain removed key.
	s.order = s.order[:last]
}
