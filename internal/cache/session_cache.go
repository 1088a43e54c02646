package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"contractpilot/internal/model"
)

// ErrNotFound is returned when a key is absent or expired
var ErrNotFound = errors.New("not found")

// SessionStore holds assessment sessions and the requirements last fetched
// for each negotiation for the lifetime of the session.
type SessionStore interface {
	Save(ctx context.Context, session *model.AssessmentSession) error
	Get(ctx context.Context, id string) (*model.AssessmentSession, error)
	Delete(ctx context.Context, id string) error

	SaveRequirements(ctx context.Context, held *model.HeldRequirements) error
	GetRequirements(ctx context.Context, negotiationID string) (*model.HeldRequirements, error)
}

type sessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a Redis-backed session store
func NewSessionCache(client *redis.Client, ttl time.Duration) SessionStore {
	return &sessionCache{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return "assessment:" + id
}

func requirementsKey(negotiationID string) string {
	return "requirements:" + negotiationID
}

func (c *sessionCache) Save(ctx context.Context, session *model.AssessmentSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, sessionKey(session.ID), data, c.ttl).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.AssessmentSession, error) {
	data, err := c.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var session model.AssessmentSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, sessionKey(id)).Err()
}

func (c *sessionCache) SaveRequirements(ctx context.Context, held *model.HeldRequirements) error {
	data, err := json.Marshal(held)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, requirementsKey(held.NegotiationID), data, c.ttl).Err()
}

func (c *sessionCache) GetRequirements(ctx context.Context, negotiationID string) (*model.HeldRequirements, error) {
	data, err := c.client.Get(ctx, requirementsKey(negotiationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var held model.HeldRequirements
	if err := json.Unmarshal(data, &held); err != nil {
		return nil, err
	}
	return &held, nil
}
