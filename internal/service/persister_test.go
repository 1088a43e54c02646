package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractpilot/internal/model"
)

func sampleArtifact() model.CompletionArtifact {
	return model.CompletionArtifact{
		AssessmentID:  "a1",
		NegotiationID: "neg-1",
		Answers:       map[string]string{"batna_confidence": "9"},
		LeverageAssessment: model.LeverageAssessment{
			CustomerLeverage: 70,
			ProviderLeverage: 30,
			Band:             model.BandCustomerFavoured,
		},
		Mode:        model.ModeFull,
		CompletedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestHTTPSink_PostsArtifact(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/negotiations/neg-1/leverage-assessment", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	a := sampleArtifact()
	require.NoError(t, NewHTTPSink(srv.URL, "").Save(context.Background(), &a))

	assert.Equal(t, "neg-1", got["sessionId"])
	assert.Equal(t, "full", got["mode"])
	assert.Equal(t, map[string]any{"batna_confidence": "9"}, got["answers"])
	la := got["leverageAssessment"].(map[string]any)
	assert.Equal(t, float64(70), la["customerLeverage"])
}

func TestHTTPSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := sampleArtifact()
	assert.Error(t, NewHTTPSink(srv.URL, "").Save(context.Background(), &a))
}

func TestPersister_FansOutAndSwallowsFailures(t *testing.T) {
	ok := &fakeSink{name: "ok"}
	bad := &fakeSink{name: "bad", err: assert.AnError}
	rec := &fakeRecorder{}

	p := NewPersister(time.Second, rec, zerolog.Nop(), ok, bad)
	p.Persist(sampleArtifact())
	p.Wait()

	assert.Len(t, ok.saved(), 1)
	assert.Len(t, bad.saved(), 1)
	assert.ElementsMatch(t, []string{"ok:ok", "bad:error"}, rec.persists)
}

type slowSink struct{}

func (slowSink) Name() string { return "slow" }

func (slowSink) Save(ctx context.Context, _ *model.CompletionArtifact) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestPersister_BoundedByTimeout(t *testing.T) {
	rec := &fakeRecorder{}
	p := NewPersister(20*time.Millisecond, rec, zerolog.Nop(), slowSink{})

	start := time.Now()
	p.Persist(sampleArtifact())
	assert.Less(t, time.Since(start), 10*time.Millisecond, "Persist must not block")

	p.Wait()
	assert.Equal(t, []string{"slow:error"}, rec.persists)
}
