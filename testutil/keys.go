package testutil

import "fmt"

// TestKey returns unique key on every call, until ResetTestKeys.
var TestKey, ResetTestKeys = func() (k func() string, rk func()) {
	var i int
	k = func() string {
		key := fmt.Sprintf("test_key_%v", i)
		i++
		return key
	}
	rk = func() { i = 0 }
	return
}()
