package refresh

import "sync"

// CountWatcher detects growth in a periodically observed count.
// The first observation only sets the baseline.
type CountWatcher struct {
	mu     sync.Mutex
	last   int
	primed bool
}

// Observe records count and returns how many items are new since the previous call.
func (w *CountWatcher) Observe(count int) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.primed {
		w.primed = true
		w.last = count
		return 0
	}

	added := count - w.last
	w.last = count
	if added < 0 {
		return 0
	}
	return added
}
