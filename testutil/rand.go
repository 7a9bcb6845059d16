package testutil

import (
	"math/rand"

	fuzz "github.com/google/gofuzz"
	. "github.com/onsi/ginkgo"
)

// RandSource is seeded by ginkgo, so failed run can be reproduced with -seed flag.
var RandSource = rand.NewSource(GinkgoRandomSeed())
var Rand = rand.New(RandSource)

// NewFuzzer returns fuzzer that fills slices with [minElements, maxElements] values
// and never produces nils.
func NewFuzzer(minElements, maxElements int) *fuzz.Fuzzer {
	return fuzz.New().
		RandSource(rand.NewSource(Rand.Int63())).
		NilChance(0).
		NumElements(minElements, maxElements)
}

var FastRand = fastRandReader{}

type fastRandReader struct{}

func (fastRandReader) Read(p []byte) (int, error) {
	if len(p) > 0 {
		p[0] = byte(Rand.Int())
	}
	return len(p), nil
}
