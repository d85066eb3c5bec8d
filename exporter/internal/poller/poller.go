package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/device"
	"github.com/devmaster24/shelly-smartplug-exporter/exporter/internal/shelly"
)

// Fetcher queries one device. Implementations must bound each call with
// their own deadline; the coordinator adds none.
type Fetcher interface {
	Fetch(ctx context.Context, dev device.Device) *shelly.Result
}

// Recorder is notified of every completed snapshot.
type Recorder interface {
	RecordSnapshot(snap Snapshot)
}

// Snapshot is the outcome of one scrape. Results[i] belongs to the i-th
// registered device, whatever order the fetches finished in.
type Snapshot struct {
	Results   []*shelly.Result
	StartedAt time.Time
	Duration  time.Duration
}

// Failed returns the number of failed results.
func (s Snapshot) Failed() int {
	n := 0
	for _, r := range s.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// Coordinator fans a scrape out to every registered device.
type Coordinator struct {
	fetcher  Fetcher
	recorder Recorder
	now      func() time.Time
}

// New returns a Coordinator. rec may be nil.
func New(f Fetcher, rec Recorder) *Coordinator {
	return &Coordinator{fetcher: f, recorder: rec, now: time.Now}
}

// Poll fetches every device concurrently and waits for all of them.
//
// Cancellation of ctx is not passed on: fetches already dispatched run to
// their own deadline even if the scraping client goes away.
func (c *Coordinator) Poll(ctx context.Context, reg *device.Registry) Snapshot {
	devices := reg.All()
	snap := Snapshot{
		Results:   make([]*shelly.Result, len(devices)),
		StartedAt: c.now(),
	}

	fetchCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(len(devices))
	for i, dev := range devices {
		go func(i int, dev device.Device) {
			defer wg.Done()
			snap.Results[i] = c.fetcher.Fetch(fetchCtx, dev)
		}(i, dev)
	}
	wg.Wait()

	snap.Duration = c.now().Sub(snap.StartedAt)
	slog.Debug("poller: scrape complete",
		"devices", len(devices),
		"failed", snap.Failed(),
		"duration", snap.Duration,
	)

	if c.recorder != nil {
		c.recorder.RecordSnapshot(snap)
	}
	return snap
}
