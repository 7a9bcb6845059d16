//go:build !debug

package tag

const Debug = false
