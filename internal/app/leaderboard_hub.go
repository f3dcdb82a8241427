package app

import (
	"sync"

	"quizhunt-service/internal/domain"
)

// LeaderboardHub fans leaderboard snapshots out to live subscribers, per event.
type LeaderboardHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardHub() *LeaderboardHub {
	return &LeaderboardHub{subscribers: make(map[string]map[chan domain.Leaderboard]struct{})}
}

// Subscribe registers a channel primed with initial. The caller must invoke the returned
// cancel function to avoid leaks.
func (h *LeaderboardHub) Subscribe(initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	eventID := initial.EventID

	h.mu.Lock()
	subs, ok := h.subscribers[eventID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		h.subscribers[eventID] = subs
	}
	subs[ch] = struct{}{}
	ch <- initial
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[eventID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.subscribers, eventID)
		}
	}
	return ch, cancel
}

// HasSubscribers reports whether anyone listens to eventID.
func (h *LeaderboardHub) HasSubscribers(eventID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[eventID]) > 0
}

// Publish delivers lb to every subscriber of its event without blocking.
func (h *LeaderboardHub) Publish(lb domain.Leaderboard) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[lb.EventID] {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: drop its oldest snapshot so the newest one fits.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
