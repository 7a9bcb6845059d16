//go:build !debug

package cache

func (s *Store[K, V]) checkInvariants()     {}
func (s *ScanStore[K, V]) checkInvariants() {}
