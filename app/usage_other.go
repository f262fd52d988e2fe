//go:build !unix

package app

import (
	"runtime"
	"time"
)

func readUsage() (heap, rss uint64, proc time.Duration) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, 0, 0
}
