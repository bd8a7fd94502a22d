package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// SessionStore is the durable per-phone conversation state. One logical
// record per phone; Upsert is a full overwrite.
type SessionStore interface {
	Get(ctx context.Context, phone string) (*Session, error)
	Upsert(ctx context.Context, session *Session) error
	Delete(ctx context.Context, phone string) error
}

// RedisSessionStore keeps sessions in Redis with a TTL so abandoned
// conversations eventually expire on their own.
type RedisSessionStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisSessionStore builds a session store. A non-positive ttl falls back
// to 24 hours.
func NewRedisSessionStore(redisClient *redis.Client, ttl time.Duration) *RedisSessionStore {
	if redisClient == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{
		redis:  redisClient,
		ttl:    ttl,
		tracer: otel.Tracer("fleetassist.internal.conversation.sessions"),
	}
}

var _ SessionStore = (*RedisSessionStore)(nil)

// Get loads the session for a phone. A missing session is not an error; it
// means nothing is in flight for that phone.
func (s *RedisSessionStore) Get(ctx context.Context, phone string) (*Session, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.session_get")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(phone)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode session: %w", err)
	}
	return &session, nil
}

// Upsert overwrites the session for its phone unconditionally. A new alert
// always supersedes an in-flight conversation.
func (s *RedisSessionStore) Upsert(ctx context.Context, session *Session) error {
	ctx, span := s.tracer.Start(ctx, "conversation.session_upsert")
	defer span.End()

	if session == nil {
		return fmt.Errorf("conversation: nil session")
	}
	if err := session.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.Phone), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist session: %w", err)
	}
	return nil
}

// Delete removes the session for a phone. Deleting an absent session is safe.
func (s *RedisSessionStore) Delete(ctx context.Context, phone string) error {
	ctx, span := s.tracer.Start(ctx, "conversation.session_delete")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(phone)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(phone string) string {
	return fmt.Sprintf("session:%s", phone)
}
