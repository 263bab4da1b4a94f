package signaling

import (
	"encoding/json"
	"testing"
)

func TestNewJoinedFrame(t *testing.T) {
	b, err := newJoinedFrame("General")
	if err != nil {
		t.Fatalf("newJoinedFrame() error = %v", err)
	}
	var got joinedFrame
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != frameJoined || got.Room != "General" {
		t.Errorf("got %+v", got)
	}
}

func TestNewPeersFrameNilPeersEncodesEmptyArray(t *testing.T) {
	b, err := newPeersFrame(nil)
	if err != nil {
		t.Fatalf("newPeersFrame() error = %v", err)
	}
	if string(b) != `{"type":"peers","peers":[]}` {
		t.Errorf("got %s", b)
	}
}

func TestNewPeersFrameWithPeers(t *testing.T) {
	peers := []PeerInfo{{Username: "alice", UserUUID: "u1"}}
	b, err := newPeersFrame(peers)
	if err != nil {
		t.Fatalf("newPeersFrame() error = %v", err)
	}
	var got peersFrame
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Peers) != 1 || got.Peers[0].Username != "alice" {
		t.Errorf("got %+v", got)
	}
}

func TestNewSignalFrameCarriesOpaqueData(t *testing.T) {
	data := json.RawMessage(`{"sdp":"v=0"}`)
	b, err := newSignalFrame(frameSignal, "sender-uuid", data)
	if err != nil {
		t.Fatalf("newSignalFrame() error = %v", err)
	}
	var got signalFrame
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != frameSignal || got.Sender != "sender-uuid" || string(got.Data) != string(data) {
		t.Errorf("got %+v", got)
	}
}

func TestNewUserStatusTotalFrame(t *testing.T) {
	data := map[string]map[string]PresenceRecord{
		"General": {"alice": {UserUUID: "u1", IsMicMuted: true, StreamingTo: []string{}}},
	}
	b, err := newUserStatusTotalFrame(data)
	if err != nil {
		t.Fatalf("newUserStatusTotalFrame() error = %v", err)
	}
	var got userStatusTotalFrame
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Data["General"]["alice"].IsMicMuted {
		t.Errorf("got %+v", got)
	}
}

func TestInboundFrameDecodesPongWithoutError(t *testing.T) {
	var frame inboundFrame
	if err := json.Unmarshal([]byte(`{"type":"pong"}`), &frame); err != nil {
		t.Fatalf("unmarshal pong: %v", err)
	}
	if frame.Type != framePong {
		t.Errorf("Type = %q, want %q", frame.Type, framePong)
	}
}

func TestPresenceRecordCloneIsIndependent(t *testing.T) {
	p := PresenceRecord{UserUUID: "u1", StreamingTo: []string{"u2"}}
	clone := p.clone()
	clone.StreamingTo[0] = "mutated"
	if p.StreamingTo[0] != "u2" {
		t.Errorf("original mutated by clone: %v", p.StreamingTo)
	}
}
