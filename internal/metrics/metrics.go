// Package metrics tracks completion request outcomes across all users.
package metrics

import (
	"log"
	"sync"
)

// resetHighWater bounds the per-user map: counters are zeroed on flush
// only once total crosses this mark, so short reporting gaps do not lose
// data.
const resetHighWater = 10000

type Snapshot struct {
	Total       int64
	Success     int64
	Failed      int64
	UniqueUsers int
}

// Collector counts total/success/failed requests and which users made
// them. Safe for concurrent use. Per-user counts track successful
// requests only, so UniqueUsers means "users with at least one success".
type Collector struct {
	mu        sync.Mutex
	total     int64
	success   int64
	failed    int64
	perUser   map[string]int
	highWater int64
}

func NewCollector() *Collector {
	return &Collector{perUser: make(map[string]int), highWater: resetHighWater}
}

func (c *Collector) RecordSuccess(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.success++
	c.perUser[userID]++
}

func (c *Collector) RecordFailure(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total++
	c.failed++
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collector) snapshotLocked() Snapshot {
	return Snapshot{
		Total:       c.total,
		Success:     c.success,
		Failed:      c.failed,
		UniqueUsers: len(c.perUser),
	}
}

// Flush logs the current counters and, once total has crossed the
// high-water mark, resets them to bound memory. Returns the snapshot
// that was reported.
func (c *Collector) Flush() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.snapshotLocked()
	log.Printf("metrics report: total=%d success=%d failed=%d unique_users=%d",
		s.Total, s.Success, s.Failed, s.UniqueUsers)
	if c.total > c.highWater {
		c.total = 0
		c.success = 0
		c.failed = 0
		c.perUser = make(map[string]int)
	}
	return s
}
