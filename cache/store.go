package cache

// handle is index of node in Store.nodes.
type handle int32

// root is fake node. Real nodes are linked between root.next and root.prev:
// root <-> head <-> ... <-> tail <-> root
// Such structure prevents special cases for empty store and list ends.
const root handle = 0

// maxPrealloc limits memory allocated for nodes on construction.
// Stores with larger capacity grow on demand.
const maxPrealloc = 1 << 10

type node[K comparable, V any] struct {
	key   K
	value V
	prev  handle
	next  handle
}

// Pre and post conditions (Invariants) of every Store method:
// * index and list of nodes between root.next and root.prev contain same keys.
// * every listed node is referenced by index, and index references only listed nodes.
// * {root, listed nodes} are correct doubly linked cycle.
// * root.next is least recently used key, root.prev is most recently used key.
// * len(index) <= capacity and len(nodes) <= capacity+1.
// * nodes that are not listed and not root are in free list, linked by next.
//
// Store is not safe for concurrent use. Zero value is not valid, use New.
type Store[K comparable, V any] struct {
	capacity int
	index    map[K]handle
	nodes    []node[K, V]
	// free is first node of free list, or root if list is empty.
	// Nodes are released to free list by Remove.
	free handle
}

var _ Cache[string, int] = (*Store[string, int])(nil)

// New creates empty store that can hold capacity entries.
// Non positive capacity is error with ErrInvalidCapacity cause.
func New[K comparable, V any](capacity int) (*Store[K, V], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	prealloc := capacity
	if prealloc > maxPrealloc {
		prealloc = maxPrealloc
	}
	s := &Store[K, V]{
		capacity: capacity,
		index:    make(map[K]handle, prealloc),
		// Zeroed root linked to itself.
		nodes: make([]node[K, V], 1, prealloc+1),
	}
	return s, nil
}

func (s *Store[K, V]) Put(key K, value V) {
	defer s.checkInvariants()
	if h, ok := s.index[key]; ok {
		s.nodes[h].value = value
		s.touch(h)
		return
	}
	var h handle
	if len(s.index) == s.capacity {
		h = s.evict()
	} else {
		h = s.alloc()
	}
	n := &s.nodes[h]
	n.key = key
	n.value = value
	s.index[key] = h
	s.pushBack(h)
}

func (s *Store[K, V]) Get(key K) (value V, ok bool) {
	h, ok := s.index[key]
	if !ok {
		return
	}
	s.touch(h)
	s.checkInvariants()
	return s.nodes[h].value, true
}

func (s *Store[K, V]) Remove(key K) (value V, ok bool) {
	h, ok := s.index[key]
	if !ok {
		return
	}
	value = s.nodes[h].value
	s.unlink(h)
	delete(s.index, key)
	s.release(h)
	s.checkInvariants()
	return value, true
}

func (s *Store[K, V]) Contains(key K) bool {
	_, ok := s.index[key]
	return ok
}

func (s *Store[K, V]) Oldest() (key K, ok bool) {
	if h := s.head(); h != root {
		return s.nodes[h].key, true
	}
	return
}

func (s *Store[K, V]) Keys() []K {
	keys := make([]K, 0, len(s.index))
	for h := s.head(); h != root; h = s.nodes[h].next {
		keys = append(keys, s.nodes[h].key)
	}
	return keys
}

func (s *Store[K, V]) Len() int      { return len(s.index) }
func (s *Store[K, V]) Capacity() int { return s.capacity }

func (s *Store[K, V]) head() handle { return s.nodes[root].next }
func (s *Store[K, V]) tail() handle { return s.nodes[root].prev }

// touch makes listed node most recently used.
func (s *Store[K, V]) touch(h handle) {
	if h == s.tail() {
		return
	}
	s.unlink(h)
	s.pushBack(h)
}

// evict detaches head and returns its node for reuse.
func (s *Store[K, V]) evict() handle {
	h := s.head()
	if h == root {
		panic("evict from empty store")
	}
	s.unlink(h)
	delete(s.index, s.nodes[h].key)
	return h
}

// alloc returns unlisted node from free list, or appends new one.
func (s *Store[K, V]) alloc() handle {
	if h := s.free; h != root {
		s.free = s.nodes[h].next
		return h
	}
	s.nodes = append(s.nodes, node[K, V]{})
	return handle(len(s.nodes) - 1)
}

// release zeroes unlinked node, so it doesn't retain key and value, and puts it into free list.
func (s *Store[K, V]) release(h handle) {
	s.nodes[h] = node[K, V]{next: s.free}
	s.free = h
}

func (s *Store[K, V]) pushBack(h handle) {
	s.link(s.tail(), h)
	s.link(h, root)
}

func (s *Store[K, V]) unlink(h handle) {
	n := &s.nodes[h]
	s.link(n.prev, n.next)
}

func (s *Store[K, V]) link(a, b handle) {
	s.nodes[a].next = b
	s.nodes[b].prev = a
}
