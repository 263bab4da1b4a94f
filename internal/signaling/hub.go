package signaling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/BungaaFACE/BungaaCord/internal/media"
	"github.com/BungaaFACE/BungaaCord/internal/message"
	"github.com/BungaaFACE/BungaaCord/internal/room"
	"github.com/BungaaFACE/BungaaCord/internal/user"
)

// Hub is the session registry, room registry, and dispatcher described in spec.md §2-§4. Every read and mutation of
// the session and room registries — broadcast targeting, targeted relay lookup, room mutation — happens under mu, a
// single coarse lock; fan-out sends iterate a snapshot taken while the lock is held and run after it is released,
// mirroring the teacher's Hub.handlePubSubEvent. The reconnect buffer is not guarded by mu: rehydrate's Take and
// unregister's Put go to Redis outside the lock.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[*Client]struct{}
	byUserUUID map[string][]*Client
	rooms      map[string]*roomState

	roomRepo    room.Repository
	messageRepo message.Repository
	userRepo    user.Repository
	storage     media.StorageProvider
	reconnect   *ReconnectBuffer
	maxMessages int
	sanitizer   *bluemonday.Policy

	log zerolog.Logger
}

// NewHub constructs a Hub wired to its collaborators. roomRepo and messageRepo back the persistence-facing
// operations; storage is used only to unlink files evicted by the chat relay; reconnect backs the reconnect window.
func NewHub(
	roomRepo room.Repository,
	messageRepo message.Repository,
	userRepo user.Repository,
	storage media.StorageProvider,
	reconnect *ReconnectBuffer,
	maxMessages int,
	logger zerolog.Logger,
) *Hub {
	return &Hub{
		sessions:    make(map[*Client]struct{}),
		byUserUUID:  make(map[string][]*Client),
		rooms:       make(map[string]*roomState),
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		storage:     storage,
		reconnect:   reconnect,
		maxMessages: maxMessages,
		sanitizer:   bluemonday.StrictPolicy(),
		log:         logger.With().Str("component", "signaling").Logger(),
	}
}

// ServeWebSocket runs the full lifecycle of one connection: rehydration from the reconnect buffer, the initial
// user_status_total sync, the dispatch loop, and teardown. It blocks until the connection closes. Identity has
// already been resolved by the HTTP layer (the query-string `user=` lookup), mirroring
// original_source/server.py's websocket_handler.
func (h *Hub) ServeWebSocket(conn *websocket.Conn, userUUID, username string) {
	client := newClient(h, conn, userUUID, username, h.log)

	h.mu.Lock()
	h.sessions[client] = struct{}{}
	h.byUserUUID[userUUID] = append(h.byUserUUID[userUUID], client)
	h.mu.Unlock()

	h.log.Info().Str("user_uuid", userUUID).Str("username", username).Msg("session registered")

	h.rehydrate(client)
	h.sendStatusTotal(client)

	go client.writePump()
	client.readPump()
}

// rehydrate restores a reconnecting client's room membership and presence from the reconnect buffer, per spec.md
// §4.1's rehydration step. It is a no-op if no record exists for the client's user_uuid.
func (h *Hub) rehydrate(client *Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, ok, err := h.reconnect.Take(ctx, client.userUUID)
	if err != nil {
		h.log.Warn().Err(err).Str("user_uuid", client.userUUID).Msg("failed to read reconnect buffer")
		return
	}
	if !ok {
		return
	}

	h.mu.Lock()
	rs, exists := h.rooms[rec.RoomName]
	if !exists {
		rs = newRoomState()
		h.rooms[rec.RoomName] = rs
	}
	rs.members[client] = struct{}{}
	client.room = rec.RoomName
	rs.presence[client.username] = &PresenceRecord{
		UserUUID:    client.userUUID,
		IsMicMuted:  rec.IsMicMuted,
		IsDeafened:  rec.IsDeafened,
		IsStreaming: rec.IsStreaming,
		StreamingTo: rec.StreamingTo,
	}
	peers := peersExcept(rs, client)
	h.mu.Unlock()

	if frame, err := newPeerJoinedFrame(client.username, client.userUUID); err == nil {
		h.sendToRoomExcept(rec.RoomName, client, frame)
	}
	if frame, err := newPeersFrame(peers); err == nil {
		client.enqueue(frame)
	}
	for _, targetUUID := range rec.StreamingTo {
		if frame, err := newScreenShareRequestFrame(targetUUID); err == nil {
			client.enqueue(frame)
		}
	}

	h.log.Info().Str("user_uuid", client.userUUID).Str("room", rec.RoomName).Msg("session rehydrated from reconnect buffer")
}

// sendStatusTotal sends the client a full snapshot of every room's presence table, the single global-state dump
// spec.md §4.1 allows.
func (h *Hub) sendStatusTotal(client *Client) {
	h.mu.RLock()
	snapshot := make(map[string]map[string]PresenceRecord, len(h.rooms))
	for name, rs := range h.rooms {
		roomSnap := make(map[string]PresenceRecord, len(rs.presence))
		for username, p := range rs.presence {
			roomSnap[username] = p.clone()
		}
		snapshot[name] = roomSnap
	}
	h.mu.RUnlock()

	if frame, err := newUserStatusTotalFrame(snapshot); err == nil {
		client.enqueue(frame)
	}
}

// unregister removes client from every registry it participates in and, if it held a room, stages a reconnect
// record and notifies the rest of the server — spec.md §4.1's teardown sequence.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()

	if _, ok := h.sessions[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, client)
	h.removeFromIndexLocked(client)

	roomName := client.room
	var (
		peerLeftTargets []*Client
		allTargets      []*Client
		presenceSnap    PresenceRecord
		hadPresence     bool
	)

	if roomName != "" {
		if rs, ok := h.rooms[roomName]; ok {
			delete(rs.members, client)
			if p, ok := rs.presence[client.username]; ok {
				presenceSnap = p.clone()
				hadPresence = true
				delete(rs.presence, client.username)
			}
			peerLeftTargets = snapshotMembers(rs)
			if len(rs.members) == 0 {
				delete(h.rooms, roomName)
			}
		}
		allTargets = h.snapshotAllLocked()
	}

	h.mu.Unlock()

	client.closeSend()

	if roomName == "" {
		h.log.Info().Str("user_uuid", client.userUUID).Msg("session unregistered")
		return
	}

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

	if hadPresence {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rec := ReconnectRecord{
			RoomName:    roomName,
			IsMicMuted:  presenceSnap.IsMicMuted,
			IsDeafened:  presenceSnap.IsDeafened,
			IsStreaming: presenceSnap.IsStreaming,
			StreamingTo: presenceSnap.StreamingTo,
		}
		if err := h.reconnect.Put(ctx, client.userUUID, rec); err != nil {
			h.log.Warn().Err(err).Str("user_uuid", client.userUUID).Msg("failed to stage reconnect record")
		}
		cancel()
	}

	h.log.Info().Str("user_uuid", client.userUUID).Str("room", roomName).Msg("session unregistered")
}

// removeFromIndexLocked drops client from the user_uuid index. Callers must hold mu.
func (h *Hub) removeFromIndexLocked(client *Client) {
	list := h.byUserUUID[client.userUUID]
	for i, c := range list {
		if c == client {
			h.byUserUUID[client.userUUID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(h.byUserUUID[client.userUUID]) == 0 {
		delete(h.byUserUUID, client.userUUID)
	}
}

// findByUserUUIDLocked returns the first registered client for the given user_uuid, or nil. Callers must hold at
// least a read lock. Per spec.md §4.2, when multiple sessions share a user_uuid, targeted relays pick the first
// found.
func (h *Hub) findByUserUUIDLocked(userUUID string) *Client {
	list := h.byUserUUID[userUUID]
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// snapshotMembers returns a stable slice copy of a room's members, safe to iterate after the lock is released.
func snapshotMembers(rs *roomState) []*Client {
	out := make([]*Client, 0, len(rs.members))
	for c := range rs.members {
		out = append(out, c)
	}
	return out
}

// snapshotAllLocked returns a stable slice copy of every registered session. Callers must hold at least a read lock.
func (h *Hub) snapshotAllLocked() []*Client {
	out := make([]*Client, 0, len(h.sessions))
	for c := range h.sessions {
		out = append(out, c)
	}
	return out
}

// peersExcept returns the {username, user_uuid} roster of a room's members other than except. Callers must hold at
// least a read lock.
func peersExcept(rs *roomState, except *Client) []PeerInfo {
	out := make([]PeerInfo, 0, len(rs.members))
	for c := range rs.members {
		if c == except {
			continue
		}
		out = append(out, PeerInfo{Username: c.username, UserUUID: c.userUUID})
	}
	return out
}

// Shutdown closes every active session's outbound queue, sends it a going-away close frame, and closes its
// connection. It does not notify room peers itself: each session's read loop then fails and runs the normal teardown
// through unregister, whose frames to sessions already closed are dropped. Used during graceful server shutdown.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.sessions))
	for c := range h.sessions {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.closeSend()
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait),
		)
		_ = c.conn.Close()
	}
	h.log.Info().Int("sessions", len(clients)).Msg("signaling hub shut down")
}

// ClientCount returns the number of currently connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// dispatchError wraps an error occurring during frame handling with the frame type, for logging.
func dispatchError(frameType string, err error) error {
	return fmt.Errorf("handle %s frame: %w", frameType, err)
}
