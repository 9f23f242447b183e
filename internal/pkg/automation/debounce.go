package automation

import (
	"sync"
	"time"
)

// debouncer lets the first event of a key through and drops repeats within window.
type debouncer struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{
		window: window,
		now:    time.Now,
		last:   make(map[string]time.Time),
	}
}

func (d *debouncer) allow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if last, ok := d.last[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[key] = now
	return true
}
