//go:build !freelistdebug

package freelist

// debugChecks enables the O(capacity) ownership and liveness assertions.
// Build with -tags freelistdebug to turn them on.
const debugChecks = false
