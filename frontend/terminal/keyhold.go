package terminal

import (
	"sort"
	"sync"
	"time"
)

// keyHold releases keypad keys a fixed time after their last press. Presses
// and releases are passed to set while the lock is held, so a press cannot
// slip in between a key expiring and its release.
type keyHold struct {
	crit     sync.Mutex
	hold     time.Duration
	set      func(key uint8, pressed bool)
	releases map[uint8]time.Time
}

func newKeyHold(hold time.Duration, set func(key uint8, pressed bool)) *keyHold {
	return &keyHold{
		hold:     hold,
		set:      set,
		releases: make(map[uint8]time.Time),
	}
}

func (h *keyHold) press(key uint8, now time.Time) {
	h.crit.Lock()
	defer h.crit.Unlock()
	h.releases[key] = now.Add(h.hold)
	h.set(key, true)
}

// release lets go of the keys due for release at now, in ascending order, and
// returns them.
func (h *keyHold) release(now time.Time) []uint8 {
	h.crit.Lock()
	defer h.crit.Unlock()

	var keys []uint8
	for k, t := range h.releases {
		if !now.Before(t) {
			keys = append(keys, k)
			delete(h.releases, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		h.set(k, false)
	}
	return keys
}
