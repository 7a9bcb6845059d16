package cache

import "github.com/facebookgo/stackerr"

// invariantsError returns description of first found broken invariant, or nil.
func (s *Store[K, V]) invariantsError() error {
	r := s.nodes[root]
	var zero K
	if r.key != zero {
		return stackerr.New("root node has key")
	}
	listed := 0
	prev := root
	for h := s.head(); h != root; prev, h = h, s.nodes[h].next {
		if h < 0 || int(h) >= len(s.nodes) {
			return stackerr.Newf("node handle %v out of range", h)
		}
		n := s.nodes[h]
		if n.prev != prev {
			return stackerr.Newf("node %v prev is %v, expected %v", h, n.prev, prev)
		}
		ih, ok := s.index[n.key]
		if !ok {
			return stackerr.Newf("no index ref to node %v with key %v", h, n.key)
		}
		if ih != h {
			return stackerr.Newf("index refs key %v to node %v, but it is in node %v", n.key, ih, h)
		}
		listed++
		if listed > len(s.index) {
			return stackerr.New("list is longer than index: cycle or duplicate")
		}
	}
	if r.prev != prev {
		return stackerr.Newf("root prev is %v, expected %v", r.prev, prev)
	}
	if listed != len(s.index) {
		return stackerr.Newf("index has %v keys, but list has %v nodes", len(s.index), listed)
	}
	if listed > s.capacity {
		return stackerr.Newf("size %v is greater than capacity %v", listed, s.capacity)
	}
	if len(s.nodes) > s.capacity+1 {
		return stackerr.Newf("%v nodes allocated for capacity %v", len(s.nodes), s.capacity)
	}
	free := 0
	for h := s.free; h != root; h = s.nodes[h].next {
		free++
		if free > len(s.nodes) {
			return stackerr.New("cycle in free list")
		}
	}
	if listed+free+1 != len(s.nodes) {
		return stackerr.Newf("%v listed and %v free nodes, but %v allocated", listed, free, len(s.nodes)-1)
	}
	return nil
}

func (s *ScanStore[K, V]) invariantsError() error {
	if len(s.order) != len(s.values) {
		return stackerr.Newf("order has %v keys, but values has %v", len(s.order), len(s.values))
	}
	seen := make(map[K]struct{}, len(s.order))
	for i, k := range s.order {
		if _, ok := s.values[k]; !ok {
			return stackerr.Newf("key %v at position %v has no value", k, i)
		}
		if _, ok := seen[k]; ok {
			return stackerr.Newf("key %v is duplicated in order", k)
		}
		seen[k] = struct{}{}
	}
	if len(s.order) > s.capacity {
		return stackerr.Newf("size %v is greater than capacity %v", len(s.order), s.capacity)
	}
	return nil
}
