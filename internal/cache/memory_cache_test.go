package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractpilot/internal/model"
)

func TestMemoryCache_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCache(0)

	s := &model.AssessmentSession{ID: "a1", Answers: model.Answers{"k": {Text: "v"}}}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, store.Delete(ctx, "a1"))
	_, err = store.Get(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCache(0)

	s := &model.AssessmentSession{ID: "a1", Answers: model.Answers{"k": {Text: "v"}}}
	require.NoError(t, store.Save(ctx, s))
	s.Answers["k"] = model.Answer{Text: "mutated after save"}

	got, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	got.Answers["k"] = model.Answer{Text: "mutated after get"}

	again, err := store.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "v", again.Answers["k"].Text)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCache(time.Minute).(*memoryCache)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &model.AssessmentSession{ID: "a1"}))
	_, err := store.Get(ctx, "a1")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	sessions, _ := store.Len()
	assert.Zero(t, sessions)
}

func TestMemoryCache_ExpiredEntriesAreSwept(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCache(time.Minute).(*memoryCache)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &model.AssessmentSession{ID: "old"}))
	require.NoError(t, store.SaveRequirements(ctx, &model.HeldRequirements{NegotiationID: "neg-old"}))

	now = now.Add(2 * time.Minute)
	_, err := store.GetRequirements(ctx, "neg-old")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveRequirements(ctx, &model.HeldRequirements{NegotiationID: "neg-old"}))
	require.NoError(t, store.Save(ctx, &model.AssessmentSession{ID: "new"}))

	sessions, requirements := store.Len()
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, requirements)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "new")
	assert.NoError(t, err)
	_, err = store.GetRequirements(ctx, "neg-old")
	assert.NoError(t, err)
}

func TestMemoryCache_Requirements(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCache(0)

	_, err := store.GetRequirements(ctx, "neg-1")
	assert.ErrorIs(t, err, ErrNotFound)

	held := &model.HeldRequirements{
		NegotiationID: "neg-1",
		Requirements:  model.Requirements{NumberOfBidders: "3"},
		Pathway:       "tendering",
	}
	require.NoError(t, store.SaveRequirements(ctx, held))

	got, err := store.GetRequirements(ctx, "neg-1")
	require.NoError(t, err)
	assert.Equal(t, held, got)
}
