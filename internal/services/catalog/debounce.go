package catalog

import (
	"sync"
	"time"

	"github.com/mcoot/gamerhub/internal/dependencies/clock"
)

// SearchDebounce is the input inactivity required before a search runs
const SearchDebounce = 400 * time.Millisecond

// Debouncer runs only the last of a burst of triggers, once the burst has
// been quiet for the delay
type Debouncer struct {
	clock clock.Clock
	delay time.Duration

	mu      sync.Mutex
	seq     uint64
	timer   clock.Timer
	pending chan bool
}

// NewDebouncer creates a debouncer with the given delay
func NewDebouncer(clk clock.Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clk, delay: delay}
}

// Trigger schedules fn, superseding any trigger still waiting. The returned
// channel receives true once fn has run, or false if a later trigger or Stop
// superseded it.
func (d *Debouncer) Trigger(fn func()) <-chan bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.supersedeLocked()

	done := make(chan bool, 1)
	d.seq++
	seq := d.seq
	d.pending = done
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != seq {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = nil
		d.mu.Unlock()

		fn()
		done <- true
	})
	return done
}

// Stop cancels any waiting trigger
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()
	d.seq++
}

func (d *Debouncer) supersedeLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.pending != nil {
		d.pending <- false
		d.pending = nil
	}
}
