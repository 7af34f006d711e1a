//go:build !linux

package config

import "fmt"

// PinCurrentThread is unsupported outside Linux; SchedSetaffinity has no
// portable equivalent this repo targets.
func PinCurrentThread(coreIds CoreIDs) error {
	if len(coreIds) == 0 {
		return nil
	}
	return fmt.Errorf("config: CPU pinning (coreIds) is only supported on Linux")
}
