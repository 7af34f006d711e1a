//go:build linux

package config

import "golang.org/x/sys/unix"

// PinCurrentThread restricts the calling OS thread to the CPUs listed in
// coreIds, the CPU-pinning spec §6's coreIds document key calls for. The
// caller must have already called runtime.LockOSThread — pinning a Go
// goroutine rather than its underlying thread would be pinning nothing.
func PinCurrentThread(coreIds CoreIDs) error {
	if len(coreIds) == 0 {
		return nil
	}
	var set unix.CPUSet
	set.Zero()
	for _, id := range coreIds {
		set.Set(id)
	}
	return unix.SchedSetaffinity(0, &set)
}
