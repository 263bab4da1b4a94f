package signaling

import (
	"context"
	"fmt"
	"time"
)

// dispatch routes one decoded inbound frame to the matching hub operation, per the frame table in spec.md §4.2.
// Identity is always taken from client, never from the frame body. Unknown types are logged and ignored; malformed
// frames are already rejected by Client.readPump before reaching here.
func (h *Hub) dispatch(client *Client, frame inboundFrame) {
	switch frame.Type {
	case frameJoin:
		h.handleJoin(client, frame)
	case frameLeave:
		h.handleLeave(client)
	case frameSignal:
		h.handleRelay(client, frame, frameSignal)
	case frameScreenSignal:
		h.handleRelay(client, frame, frameScreenSignal)
	case frameScreenShareRequest:
		h.handleScreenShareRequest(client, frame)
	case frameScreenShareStopReq:
		h.handleScreenShareStopRequest(client, frame)
	case frameScreenShareStop:
		h.handleScreenShareStop(client)
	case frameUserStatusUpdate:
		h.handleUserStatusUpdate(client, frame)
	case frameChatMessage:
		h.handleChatMessage(client, frame)
	default:
		h.log.Info().Str("type", frame.Type).Msg("unrecognized frame type")
	}
}

// handleJoin implements the `join` row of spec.md §4.2.
func (h *Hub) handleJoin(client *Client, frame inboundFrame) {
	roomName := frame.Room
	if roomName == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := h.roomRepo.Exists(ctx, roomName)
	if err != nil {
		h.log.Error().Err(dispatchError(frameJoin, err)).Msg("failed to check room existence")
		return
	}
	if !exists {
		if errFrame, err := newErrorFrame(fmt.Sprintf("room %q does not exist", roomName)); err == nil {
			client.enqueue(errFrame)
		}
		h.log.Info().Str("user_uuid", client.userUUID).Str("room", roomName).Msg("join attempted on unknown room")
		return
	}

	h.mu.Lock()
	client.room = roomName
	rs, ok := h.rooms[roomName]
	if !ok {
		rs = newRoomState()
		h.rooms[roomName] = rs
	}
	rs.members[client] = struct{}{}
	rs.presence[client.username] = &PresenceRecord{UserUUID: client.userUUID, StreamingTo: []string{}}
	peers := peersExcept(rs, client)
	h.mu.Unlock()

	if joined, err := newJoinedFrame(roomName); err == nil {
		client.enqueue(joined)
	}
	if peerJoined, err := newPeerJoinedFrame(client.username, client.userUUID); err == nil {
		h.sendToRoomExcept(roomName, client, peerJoined)
	}
	if peersFrame, err := newPeersFrame(peers); err == nil {
		client.enqueue(peersFrame)
	}
	if statusUpdate, err := newUserStatusUpdateFrame(roomName, client.userUUID, client.username, false, false, false); err == nil {
		h.sendToAllExcept(nil, statusUpdate)
	}

	h.log.Info().Str("user_uuid", client.userUUID).Str("room", roomName).Msg("session joined room")
}

// handleLeave implements the `leave` row of spec.md §4.2: an explicit, deliberate leave, distinct from teardown on
// disconnect — no reconnect record is staged.
func (h *Hub) handleLeave(client *Client) {
	h.mu.Lock()
	roomName := client.room
	if roomName == "" {
		h.mu.Unlock()
		return
	}

	rs, ok := h.rooms[roomName]
	var peerLeftTargets []*Client
	if ok {
		delete(rs.members, client)
		delete(rs.presence, client.username)
		peerLeftTargets = snapshotMembers(rs)
		if len(rs.members) == 0 {
			delete(h.rooms, roomName)
		}
	}
	allTargets := h.snapshotAllLocked()
	client.room = ""
	h.mu.Unlock()

	if frame, err := newPeerLeftFrame(client.userUUID, client.username); err == nil {
		for _, c := range peerLeftTargets {
			c.enqueue(frame)
		}
	}
	if frame, err := newUserStatusUpdateFrame("!"+roomName, client.userUUID, client.username, false, false, false); err == nil {
		for _, c := range allTargets {
			c.enqueue(frame)
		}
	}

	h.log.Info().Str("user_uuid", client.userUUID).Str("room", roomName).Msg("session left room")
}

// handleRelay implements the `signal` and `screen_signal` rows of spec.md §4.2: unicast forward of an opaque payload
// to the session registered for frame.Target, tagged with the caller's identity as sender.
func (h *Hub) handleRelay(client *Client, frame inboundFrame, frameType string) {
	if frame.Target == "" {
		return
	}
	relayed, err := newSignalFrame(frameType, client.userUUID, frame.Data)
	if err != nil {
		h.log.Error().Err(dispatchError(frameType, err)).Msg("failed to build relay frame")
		return
	}
	h.sendToTarget(frame.Target, relayed)
}

// handleScreenShareRequest implements the `screen_share_request` row of spec.md §4.2.
func (h *Hub) handleScreenShareRequest(client *Client, frame inboundFrame) {
	if frame.Target == "" {
		return
	}

	if req, err := newScreenShareRequestFrame(client.userUUID); err == nil {
		h.sendToTarget(frame.Target, req)
	}

	h.mu.Lock()
	if target := h.findByUserUUIDLocked(frame.Target); target != nil {
		if rs, ok := h.rooms[target.room]; ok {
			if p, ok := rs.presence[target.username]; ok {
				p.StreamingTo = append(p.StreamingTo, client.userUUID)
			}
		}
	}
	h.mu.Unlock()
}

// handleScreenShareStopRequest implements the `screen_share_stop_request` row of spec.md §4.2. No frame is
// forwarded; only the target's presence is updated.
func (h *Hub) handleScreenShareStopRequest(client *Client, frame inboundFrame) {
	if frame.Target == "" {
		return
	}

	h.mu.Lock()
	if target := h.findByUserUUIDLocked(frame.Target); target != nil {
		if rs, ok := h.rooms[target.room]; ok {
			if p, ok := rs.presence[target.username]; ok {
				p.StreamingTo = removeString(p.StreamingTo, client.userUUID)
			}
		}
	}
	h.mu.Unlock()
}

// handleScreenShareStop implements the `screen_share_stop` row of spec.md §4.2: a server-wide broadcast that the
// caller stopped sharing, excluding the caller itself.
func (h *Hub) handleScreenShareStop(client *Client) {
	frame, err := newScreenShareStopFrame(client.userUUID, client.username)
	if err != nil {
		h.log.Error().Err(dispatchError(frameScreenShareStop, err)).Msg("failed to build screen_share_stop frame")
		return
	}
	h.sendToAllExcept(client, frame)
}

// handleUserStatusUpdate implements the `user_status_update` row of spec.md §4.2. Per the spec's design notes, a
// status update for a session with no presence entry (e.g. arriving before any join) is a no-op rather than an
// error.
func (h *Hub) handleUserStatusUpdate(client *Client, frame inboundFrame) {
	h.mu.Lock()
	roomName := client.room
	if roomName == "" {
		h.mu.Unlock()
		return
	}
	rs, ok := h.rooms[roomName]
	if !ok {
		h.mu.Unlock()
		return
	}
	p, ok := rs.presence[client.username]
	if !ok {
		h.mu.Unlock()
		return
	}
	p.IsMicMuted = frame.IsMicMuted
	p.IsDeafened = frame.IsDeafened
	p.IsStreaming = frame.IsStreaming
	if !frame.IsStreaming {
		p.StreamingTo = p.StreamingTo[:0]
	}
	h.mu.Unlock()

	if update, err := newUserStatusUpdateFrame(roomName, client.userUUID, client.username, frame.IsMicMuted, frame.IsDeafened, frame.IsStreaming); err == nil {
		h.sendToAllExcept(nil, update)
	}
}

// removeString returns a copy of list with the first occurrence of target removed.
func removeString(list []string, target string) []string {
	for i, v := range list {
		if v == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
