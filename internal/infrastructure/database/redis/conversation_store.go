package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/pkg/errors"
)

// ConversationStore keeps Q&A history as a redis list per lease and user,
// trimmed to the most recent turns on every append. It implements
// lease.ConversationRepository.
type ConversationStore struct {
	client *Client
}

// NewConversationStore builds a ConversationStore on the shared client.
func NewConversationStore(client *Client) *ConversationStore {
	return &ConversationStore{client: client}
}

func (s *ConversationStore) conversationKey(leaseID, userID string) string {
	return s.client.key("conversation", leaseID, userID)
}

func (s *ConversationStore) Append(ctx context.Context, leaseID, userID string, turns []lease.Turn, maxTurns int, ttl time.Duration) error {
	if len(turns) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		raw, err := json.Marshal(t)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "marshal turn")
		}
		values = append(values, raw)
	}

	key := s.conversationKey(leaseID, userID)
	pipe := s.client.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-maxTurns), -1)
	}
	if ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeStoreWrite, "append conversation")
	}
	return nil
}

func (s *ConversationStore) Get(ctx context.Context, leaseID, userID string) (*lease.Conversation, error) {
	raw, err := s.client.rdb.LRange(ctx, s.conversationKey(leaseID, userID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, errors.ErrCodeStoreRead, "load conversation")
	}

	conv := &lease.Conversation{LeaseID: leaseID, UserID: userID, Turns: make([]lease.Turn, 0, len(raw))}
	for _, item := range raw {
		var turn lease.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// drop the corrupt turn, keep the rest of the history
			s.client.logger.Warn("corrupt conversation turn skipped",
				logging.String("lease_id", leaseID),
				logging.Err(err))
			continue
		}
		conv.Turns = append(conv.Turns, turn)
	}
	return conv, nil
}
