package signaling

import (
	"context"
	"time"
)

// RunPinger emits a liveness ping to every connected session every interval, per spec.md §4.7. It blocks until ctx is
// cancelled. It removes no session from the registry itself: each ping is only placed on the session's outbound queue
// (see pingAll), and any teardown that follows runs through the session's own read loop.
func (h *Hub) RunPinger(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.pingAll()
		}
	}
}

// pingAll places the ping frame on every registered session's outbound queue. It does not touch the registry: a
// session whose queue is already closed drops the frame, and one whose queue is saturated has its connection closed
// by enqueue, after which its read loop fails and unregister removes it.
func (h *Hub) pingAll() {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.sessions))
	for c := range h.sessions {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(pingFrameBytes)
	}
}
