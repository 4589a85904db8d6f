package util

import (
	"runtime"
)

// HeapAllocMB returns the live heap in MiB, logged at the end of a run.
func HeapAllocMB() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc >> 20
}
