package enginepool

import "runtime"

// maybeHintGC triggers a background garbage collection pass when resident
// heap allocation exceeds thresholdBytes. The collection runs on its own
// goroutine so a slow collector pass never stalls the caller draining
// result slots.
func maybeHintGC(thresholdBytes uint64) {
	if thresholdBytes == 0 {
		return
	}
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.Alloc > thresholdBytes {
		go runtime.GC()
	}
}
