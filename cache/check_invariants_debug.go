//go:build debug

package cache

import (
	"log"

	"github.com/facebookgo/stackerr"
)

func (s *Store[K, V]) checkInvariants()     { assertInvariants(s.invariantsError()) }
func (s *ScanStore[K, V]) checkInvariants() { assertInvariants(s.invariantsError()) }

func assertInvariants(err error) {
	if err != nil {
		log.Panic("invariants are broken: ", stackerr.WrapSkip(err, 2))
	}
}
