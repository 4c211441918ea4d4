//go:build freelistdebug

package freelist

const debugChecks = true
