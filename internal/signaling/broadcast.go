package signaling

// This file implements the three fan-out primitives of spec.md §4.4. Each takes a snapshot of the relevant
// membership while holding the lock and sends after releasing it, so a concurrent registry mutation during fan-out
// can never corrupt the iteration — mirroring the teacher's Hub.handlePubSubEvent snapshot-then-iterate pattern.

// sendToTarget delivers msg to the first session registered for userUUID, best-effort. Per spec.md §4.2 and §7, a
// missing target is silently dropped.
func (h *Hub) sendToTarget(userUUID string, msg []byte) {
	h.mu.RLock()
	target := h.findByUserUUIDLocked(userUUID)
	h.mu.RUnlock()

	if target == nil {
		h.log.Debug().Str("target", userUUID).Msg("target session not found")
		return
	}
	target.enqueue(msg)
}

// sendToRoomExcept delivers msg to every member of room other than except (which may be nil to include everyone).
func (h *Hub) sendToRoomExcept(roomName string, except *Client, msg []byte) {
	h.mu.RLock()
	rs, ok := h.rooms[roomName]
	if !ok {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Client, 0, len(rs.members))
	for c := range rs.members {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(msg)
	}
}

// sendToAllExcept delivers msg to every registered session other than except (which may be nil to include
// everyone).
func (h *Hub) sendToAllExcept(except *Client, msg []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.sessions))
	for c := range h.sessions {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.enqueue(msg)
	}
}
