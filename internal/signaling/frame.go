package signaling

import (
	"encoding/json"
	"fmt"
)

// Frame type discriminants, exactly the vocabulary of original_source/server.py's message_type / "type" fields.
const (
	frameJoin               = "join"
	frameJoined             = "joined"
	framePeers              = "peers"
	framePeerJoined         = "peer_joined"
	framePeerLeft           = "peer_left"
	frameLeave              = "leave"
	frameSignal             = "signal"
	frameScreenSignal       = "screen_signal"
	frameScreenShareRequest = "screen_share_request"
	frameScreenShareStopReq = "screen_share_stop_request"
	frameScreenShareStop    = "screen_share_stop"
	frameUserStatusUpdate   = "user_status_update"
	frameUserStatusTotal    = "user_status_total"
	frameChatMessage        = "chat_message"
	framePing               = "ping"
	framePong               = "pong"
	frameError              = "error"
)

// inboundFrame is the local wire envelope for every frame a client sends: a single struct wide enough to hold the
// union of fields any frame type uses, decoded once per message and then read selectively by type. This replaces a
// tagged-union decode with one json.Unmarshal plus a type switch, matching the dict-based dispatch of
// original_source/server.py's websocket_handler.
type inboundFrame struct {
	Type        string          `json:"type"`
	Room        string          `json:"room"`
	Target      string          `json:"target"`
	Data        json.RawMessage `json:"data"`
	Content     string          `json:"content"`
	MessageType string          `json:"message_type"`
	IsMicMuted  bool            `json:"is_mic_muted"`
	IsDeafened  bool            `json:"is_deafened"`
	IsStreaming bool            `json:"is_streaming"`
}

func marshalFrame(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal frame: %w", err)
	}
	return b, nil
}

type joinedFrame struct {
	Type string `json:"type"`
	Room string `json:"room"`
}

func newJoinedFrame(room string) ([]byte, error) {
	return marshalFrame(joinedFrame{Type: frameJoined, Room: room})
}

type peersFrame struct {
	Type  string     `json:"type"`
	Peers []PeerInfo `json:"peers"`
}

func newPeersFrame(peers []PeerInfo) ([]byte, error) {
	if peers == nil {
		peers = []PeerInfo{}
	}
	return marshalFrame(peersFrame{Type: framePeers, Peers: peers})
}

type peerJoinedFrame struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	UserUUID string `json:"user_uuid"`
}

func newPeerJoinedFrame(username, userUUID string) ([]byte, error) {
	return marshalFrame(peerJoinedFrame{Type: framePeerJoined, Username: username, UserUUID: userUUID})
}

type peerLeftFrame struct {
	Type     string `json:"type"`
	PeerUUID string `json:"peer_uuid"`
	Username string `json:"username"`
}

func newPeerLeftFrame(peerUUID, username string) ([]byte, error) {
	return marshalFrame(peerLeftFrame{Type: framePeerLeft, PeerUUID: peerUUID, Username: username})
}

type errorFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorFrame(message string) ([]byte, error) {
	return marshalFrame(errorFrame{Type: frameError, Message: message})
}

type signalFrame struct {
	Type   string          `json:"type"`
	Sender string          `json:"sender"`
	Data   json.RawMessage `json:"data"`
}

func newSignalFrame(frameType, sender string, data json.RawMessage) ([]byte, error) {
	return marshalFrame(signalFrame{Type: frameType, Sender: sender, Data: data})
}

type screenShareRequestFrame struct {
	Type     string `json:"type"`
	UserUUID string `json:"user_uuid"`
}

func newScreenShareRequestFrame(userUUID string) ([]byte, error) {
	return marshalFrame(screenShareRequestFrame{Type: frameScreenShareRequest, UserUUID: userUUID})
}

type screenShareStopFrame struct {
	Type     string `json:"type"`
	PeerUUID string `json:"peer_uuid"`
	Username string `json:"username"`
}

func newScreenShareStopFrame(peerUUID, username string) ([]byte, error) {
	return marshalFrame(screenShareStopFrame{Type: frameScreenShareStop, PeerUUID: peerUUID, Username: username})
}

type userStatusUpdateFrame struct {
	Type        string `json:"type"`
	Room        string `json:"room"`
	UserUUID    string `json:"user_uuid"`
	Username    string `json:"username"`
	IsMicMuted  bool   `json:"is_mic_muted"`
	IsDeafened  bool   `json:"is_deafened"`
	IsStreaming bool   `json:"is_streaming"`
}

func newUserStatusUpdateFrame(room, userUUID, username string, micMuted, deafened, streaming bool) ([]byte, error) {
	return marshalFrame(userStatusUpdateFrame{
		Type:        frameUserStatusUpdate,
		Room:        room,
		UserUUID:    userUUID,
		Username:    username,
		IsMicMuted:  micMuted,
		IsDeafened:  deafened,
		IsStreaming: streaming,
	})
}

type userStatusTotalFrame struct {
	Type string                            `json:"type"`
	Data map[string]map[string]PresenceRecord `json:"data"`
}

func newUserStatusTotalFrame(data map[string]map[string]PresenceRecord) ([]byte, error) {
	return marshalFrame(userStatusTotalFrame{Type: frameUserStatusTotal, Data: data})
}

type chatMessageFrame struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	UserUUID    string `json:"user_uuid"`
	Username    string `json:"username"`
	Datetime    string `json:"datetime"`
}

func newChatMessageFrame(content, messageType, userUUID, username, datetime string) ([]byte, error) {
	return marshalFrame(chatMessageFrame{
		Type:        frameChatMessage,
		Content:     content,
		MessageType: messageType,
		UserUUID:    userUUID,
		Username:    username,
		Datetime:    datetime,
	})
}

var pingFrameBytes = []byte(`{"type":"ping"}`)
