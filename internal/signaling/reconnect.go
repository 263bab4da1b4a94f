package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// reconnectKeyPrefix namespaces reconnect buffer keys in the shared Valkey keyspace, the way
// the teacher's presence.Store namespaces presence keys.
const reconnectKeyPrefix = "bungaacord:reconnect:"

// ReconnectBuffer is the Redis-backed holding area of (user_uuid -> ReconnectRecord) described in spec.md §4.5. A
// stored record expires on its own via the key's TTL, which implements the "asynchronous sweep" without a
// hand-rolled timer goroutine — the same approach the teacher takes for presence TTLs.
type ReconnectBuffer struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReconnectBuffer creates a reconnect buffer that stores records for the given TTL.
func NewReconnectBuffer(rdb *redis.Client, ttl time.Duration) *ReconnectBuffer {
	return &ReconnectBuffer{rdb: rdb, ttl: ttl}
}

// Put stores rec for userUUID, overwriting any existing record — spec.md §4.5's "only the latest disconnect
// matters" replacement policy falls out of SET's overwrite semantics for free.
func (b *ReconnectBuffer) Put(ctx context.Context, userUUID string, rec ReconnectRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal reconnect record: %w", err)
	}
	if err := b.rdb.Set(ctx, reconnectKeyPrefix+userUUID, payload, b.ttl).Err(); err != nil {
		return fmt.Errorf("store reconnect record: %w", err)
	}
	return nil
}

// Take atomically retrieves and removes the reconnect record for userUUID with a single GETDEL, returning ok=false if
// none exists (either never staged or already expired).
func (b *ReconnectBuffer) Take(ctx context.Context, userUUID string) (rec ReconnectRecord, ok bool, err error) {
	key := reconnectKeyPrefix + userUUID

	val, err := b.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ReconnectRecord{}, false, nil
	}
	if err != nil {
		return ReconnectRecord{}, false, fmt.Errorf("take reconnect record: %w", err)
	}

	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return ReconnectRecord{}, false, fmt.Errorf("unmarshal reconnect record: %w", err)
	}
	return rec, true, nil
}
