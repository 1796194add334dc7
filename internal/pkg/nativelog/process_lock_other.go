//go:build !windows

package nativelog

// POSIX O_APPEND appends are atomic per write.
func withProcessLogLock(fn func() error) error {
	return fn()
}
