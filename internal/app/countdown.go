package app

import (
	"fmt"
	"sync"
	"time"
)

// CountdownClock republishes the time remaining until the next local
// midnight as a zero-padded HH:MM:SS string. The ticker runs only while at
// least one subscriber is attached and every tick recomputes against the
// current midnight boundary, so the display rolls over past midnight without
// any external reset.
type CountdownClock struct {
	now      func() time.Time
	interval time.Duration

	mu          sync.Mutex
	subscribers map[chan string]struct{}
	stop        chan struct{}
}

func NewCountdownClock() *CountdownClock {
	return NewCountdownClockWith(time.Now, time.Second)
}

// NewCountdownClockWith allows a deterministic clock and tick interval in tests.
func NewCountdownClockWith(now func() time.Time, interval time.Duration) *CountdownClock {
	return &CountdownClock{
		now:         now,
		interval:    interval,
		subscribers: make(map[chan string]struct{}),
	}
}

// Remaining formats the time left until the next local midnight.
func (c *CountdownClock) Remaining() string {
	now := c.now()
	return FormatRemaining(NextMidnight(now).Sub(now))
}

// Subscribe returns a channel receiving countdown updates on every tick,
// seeded with the current value. The caller must invoke the returned cancel
// function; when the last subscriber cancels the ticker stops.
func (c *CountdownClock) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)

	c.mu.Lock()
	c.subscribers[ch] = struct{}{}
	if c.stop == nil {
		c.stop = make(chan struct{})
		go c.run(c.stop)
	}
	c.mu.Unlock()

	ch <- c.Remaining()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		if len(c.subscribers) == 0 && c.stop != nil {
			close(c.stop)
			c.stop = nil
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

func (c *CountdownClock) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.broadcast(c.Remaining())
		case <-stop:
			return
		}
	}
}

func (c *CountdownClock) broadcast(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subscribers {
		select {
		case ch <- value:
		default:
			// Replace the stale value so slow readers always see the latest tick.
			select {
			case <-ch:
			default:
			}
			ch <- value
		}
	}
}

// NextMidnight returns the first instant of the day after t, in t's location.
func NextMidnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// FormatRemaining renders d as zero-padded HH:MM:SS, clamping negatives to
// 00:00:00.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}
