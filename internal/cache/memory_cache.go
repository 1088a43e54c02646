package cache

import (
	"context"
	"sync"
	"time"

	"contractpilot/internal/model"
)

type memoryEntry struct {
	session   *model.AssessmentSession
	expiresAt time.Time
}

type heldEntry struct {
	held      model.HeldRequirements
	expiresAt time.Time
}

type memoryCache struct {
	mu           sync.Mutex
	ttl          time.Duration
	now          func() time.Time
	sessions     map[string]memoryEntry
	requirements map[string]heldEntry
}

// NewMemoryCache creates an in-process session store. Sessions and held
// requirements expire after ttl; a zero ttl keeps them for the life of the
// process. Expired entries are dropped on read and swept on every write.
func NewMemoryCache(ttl time.Duration) SessionStore {
	return &memoryCache{
		ttl:          ttl,
		now:          time.Now,
		sessions:     make(map[string]memoryEntry),
		requirements: make(map[string]heldEntry),
	}
}

func (c *memoryCache) Save(_ context.Context, session *model.AssessmentSession) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep()
	c.sessions[session.ID] = memoryEntry{session: session.Clone(), expiresAt: c.deadline()}
	return nil
}

func (c *memoryCache) Get(_ context.Context, id string) (*model.AssessmentSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if c.expired(entry.expiresAt) {
		delete(c.sessions, id)
		return nil, ErrNotFound
	}
	return entry.session.Clone(), nil
}

func (c *memoryCache) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	return nil
}

func (c *memoryCache) SaveRequirements(_ context.Context, held *model.HeldRequirements) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweep()
	c.requirements[held.NegotiationID] = heldEntry{held: *held, expiresAt: c.deadline()}
	return nil
}

func (c *memoryCache) GetRequirements(_ context.Context, negotiationID string) (*model.HeldRequirements, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.requirements[negotiationID]
	if !ok {
		return nil, ErrNotFound
	}
	if c.expired(entry.expiresAt) {
		delete(c.requirements, negotiationID)
		return nil, ErrNotFound
	}
	out := entry.held
	return &out, nil
}

// Len reports how many sessions and held requirements are stored,
// expired or not
func (c *memoryCache) Len() (sessions, requirements int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions), len(c.requirements)
}

func (c *memoryCache) deadline() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *memoryCache) expired(at time.Time) bool {
	return !at.IsZero() && c.now().After(at)
}

// sweep drops expired entries. Callers hold mu.
func (c *memoryCache) sweep() {
	if c.ttl <= 0 {
		return
	}
	for id, e := range c.sessions {
		if c.expired(e.expiresAt) {
			delete(c.sessions, id)
		}
	}
	for id, e := range c.requirements {
		if c.expired(e.expiresAt) {
			delete(c.requirements, id)
		}
	}
}
