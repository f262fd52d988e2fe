//go:build unix

package app

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

func readUsage() (heap, rss uint64, proc time.Duration) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	heap = ms.HeapAlloc

	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return heap, 0, 0
	}
	rss = uint64(ru.Maxrss)
	if runtime.GOOS != "darwin" {
		// kilobytes everywhere but darwin
		rss *= 1024
	}
	user := time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond
	sys := time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond
	return heap, rss, user + sys
}
