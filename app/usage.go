package app

import (
	"fmt"
	"time"
)

// usageSampler reports process memory and CPU load between calls
type usageSampler struct {
	lastWall time.Time
	lastProc time.Duration
	haveLast bool
}

type usage struct {
	heap uint64
	rss  uint64
	cpu  float64
}

func (u *usageSampler) sample() usage {
	heap, rss, proc := readUsage()
	now := time.Now()

	out := usage{heap: heap, rss: rss}
	if u.haveLast {
		wall := now.Sub(u.lastWall)
		if wall > 0 && proc >= u.lastProc {
			out.cpu = (proc - u.lastProc).Seconds() / wall.Seconds() * 100
		}
	}
	u.lastWall = now
	u.lastProc = proc
	u.haveLast = true
	return out
}

func (s usage) String() string {
	text := " • Heap " + formatBytes(s.heap)
	if s.rss > 0 {
		text += " • RSS " + formatBytes(s.rss)
	}
	return text + fmt.Sprintf(" • CPU %5.1f%%", s.cpu)
}
