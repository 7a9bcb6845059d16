//go:build debug

package tag

// Debug is true in builds with "debug" tag. Such builds check data structure invariants
// after every mutation and have large performance overhead.
const Debug = true
