package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"salonbook/models"
)

const (
	inboxCap = 100
	inboxTTL = 24 * time.Hour
)

func inboxKey(recipient string) string {
	return "sync:inbox:" + recipient
}

// RedisSyncInbox stores each inbox as a capped Redis list.
type RedisSyncInbox struct {
	client redis.UniversalClient
}

func NewRedisSyncInbox(client redis.UniversalClient) *RedisSyncInbox {
	return &RedisSyncInbox{client: client}
}

func (s *RedisSyncInbox) Push(ctx context.Context, recipient string, msg models.SyncMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode sync message: %w", err)
	}
	key := inboxKey(recipient)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -inboxCap, -1)
		pipe.Expire(ctx, key, inboxTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push sync message for %s: %w", recipient, err)
	}
	return nil
}

// Drain reads and deletes all inboxes inside one MULTI/EXEC.
func (s *RedisSyncInbox) Drain(ctx context.Context, recipients ...string) ([]models.SyncMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ranges := make([]*redis.StringSliceCmd, len(recipients))
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, recipient := range recipients {
			key := inboxKey(recipient)
			ranges[i] = pipe.LRange(ctx, key, 0, -1)
			pipe.Del(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain sync inboxes %v: %w", recipients, err)
	}

	msgs := make([]models.SyncMessage, 0)
	for _, rng := range ranges {
		for _, raw := range rng.Val() {
			var m models.SyncMessage
			if err := json.Unmarshal([]byte(raw), &m); err != nil {
				continue
			}
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

// MemorySyncInbox is an in-process SyncInbox without expiry.
type MemorySyncInbox struct {
	mu    sync.Mutex
	boxes map[string][]models.SyncMessage
}

func NewMemorySyncInbox() *MemorySyncInbox {
	return &MemorySyncInbox{boxes: make(map[string][]models.SyncMessage)}
}

func (s *MemorySyncInbox) Push(_ context.Context, recipient string, msg models.SyncMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	box := append(s.boxes[recipient], msg)
	if len(box) > inboxCap {
		box = box[len(box)-inboxCap:]
	}
	s.boxes[recipient] = box
	return nil
}

func (s *MemorySyncInbox) Drain(_ context.Context, recipients ...string) ([]models.SyncMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]models.SyncMessage, 0)
	for _, recipient := range recipients {
		msgs = append(msgs, s.boxes[recipient]...)
		delete(s.boxes, recipient)
	}
	return msgs, nil
}
