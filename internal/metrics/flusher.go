package metrics

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Flusher periodically reports and resets the collector on a fixed
// schedule.
type Flusher struct {
	cron      *cron.Cron
	collector *Collector
	every     time.Duration
}

func NewFlusher(c *Collector, every time.Duration) *Flusher {
	return &Flusher{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		collector: c,
		every:     every,
	}
}

func (f *Flusher) Start() error {
	_, err := f.cron.AddFunc(fmt.Sprintf("@every %s", f.every), func() {
		f.collector.Flush()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule metrics flush: %w", err)
	}
	f.cron.Start()
	return nil
}

func (f *Flusher) Stop() {
	if f.cron != nil {
		ctx := f.cron.Stop()
		<-ctx.Done()
	}
}
