package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractpilot/internal/cache"
	"contractpilot/internal/catalog"
	"contractpilot/internal/interview"
	"contractpilot/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	payloads map[string]map[string]any
	err      error
	calls    int
}

func (f *fakeSource) Fetch(_ context.Context, negotiationID string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.payloads[negotiationID]
	if !ok {
		return nil, ErrRequirementsNotFound
	}
	return p, nil
}

type fakeSink struct {
	mu        sync.Mutex
	name      string
	err       error
	artifacts []model.CompletionArtifact
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Save(_ context.Context, a *model.CompletionArtifact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artifacts = append(f.artifacts, *a)
	return f.err
}

func (f *fakeSink) saved() []model.CompletionArtifact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.CompletionArtifact(nil), f.artifacts...)
}

type fakeRecorder struct {
	mu        sync.Mutex
	started   []string
	completed []int
	fetches   []string
	persists  []string
	fallbacks []string
}

func (r *fakeRecorder) AssessmentStarted(mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, mode)
}

func (r *fakeRecorder) AssessmentCompleted(_ string, customer int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, customer)
}

func (r *fakeRecorder) RequirementsFetch(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, outcome)
}

func (r *fakeRecorder) ArtifactPersist(sink, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.persists = append(r.persists, sink+":"+outcome)
}

func (r *fakeRecorder) NormalizationFallback(field string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallbacks = append(r.fallbacks, field)
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (b *fakeBroadcaster) BroadcastToAssessment(_ string, msgType string, _ interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, msgType)
}

type harness struct {
	svc         *AssessmentService
	source      *fakeSource
	sink        *fakeSink
	persister   *Persister
	recorder    *fakeRecorder
	broadcaster *fakeBroadcaster
	auth        *AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		source: &fakeSource{payloads: map[string]map[string]any{
			"neg-tender": {
				"pathway_id":        "tendering-standard",
				"number_of_bidders": "4+",
				"decision_timeline": "Flexible",
				"switching_costs":   "low",
				"deal_value":        "1500000",
			},
			"neg-full": {
				"requirements": map[string]any{
					"numberOfBidders":   "1",
					"contractPositions": "{broken",
				},
			},
		}},
		sink:        &fakeSink{name: "fake"},
		recorder:    &fakeRecorder{},
		broadcaster: &fakeBroadcaster{},
		auth:        NewAuthService("test-secret", time.Hour),
	}
	h.persister = NewPersister(time.Second, h.recorder, zerolog.Nop(), h.sink)
	h.svc = NewAssessmentService(AssessmentConfig{
		Source:       h.source,
		Store:        cache.NewMemoryCache(0),
		Auth:         h.auth,
		Persister:    h.persister,
		Recorder:     h.recorder,
		FetchTimeout: time.Second,
		Logger:       zerolog.Nop(),
	})
	h.svc.SetBroadcaster(h.broadcaster)
	return h
}

func validAnswer(t *testing.T, key string) model.Answer {
	t.Helper()
	q, ok := catalog.Lookup(key)
	require.True(t, ok)
	switch q.Input {
	case model.InputScale:
		return model.Answer{Rating: 9}
	case model.InputChoice:
		return model.Answer{SelectedOption: q.Options[0]}
	}
	return model.Answer{Text: "answer"}
}

func TestBegin_ResolvesModeFromPayloadPathway(t *testing.T) {
	h := newHarness(t)

	res, err := h.svc.Begin(context.Background(), BeginRequest{NegotiationID: "neg-tender", PartyID: "p1"})
	require.NoError(t, err)

	assert.Equal(t, model.ModeFastTrack, res.Assessment.Mode)
	assert.Equal(t, model.SessionReviewing, res.Assessment.Status)
	assert.Contains(t, res.Assessment.QuestionKeys, catalog.KeyCompetitiveTension)
	assert.False(t, res.Degraded)

	claims, err := h.auth.ValidatePartyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Assessment.ID, claims.AssessmentID)
	assert.Equal(t, "p1", claims.PartyID)

	assert.Equal(t, []string{"fast-track"}, h.recorder.started)
	assert.Equal(t, []string{OutcomeOK}, h.recorder.fetches)
	assert.Equal(t, []string{EventAssessmentStarted}, h.broadcaster.events)
}

func TestBegin_RequestPathwayWins(t *testing.T) {
	h := newHarness(t)
	res, err := h.svc.Begin(context.Background(), BeginRequest{NegotiationID: "neg-tender", Pathway: "relationship_management"})
	require.NoError(t, err)
	assert.Equal(t, model.ModeAbbreviated, res.Assessment.Mode)
	assert.Equal(t, model.SessionPresenting, res.Assessment.Status)
}

func TestBegin_DegradedPayloadStillStarts(t *testing.T) {
	h := newHarness(t)
	res, err := h.svc.Begin(context.Background(), BeginRequest{NegotiationID: "neg-full"})
	require.NoError(t, err)

	assert.Equal(t, model.ModeFull, res.Assessment.Mode)
	assert.NotContains(t, res.Assessment.QuestionKeys, catalog.KeyCompetitiveTension)
	assert.True(t, res.Assessment.Requirements.ContractPositions.IsZero())
	assert.Equal(t, []string{"contractPositions"}, h.recorder.fallbacks)
}

func TestBegin_FallsBackToHeldRequirements(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-tender"})
	require.NoError(t, err)

	h.source.err = errors.New("connection refused")
	res, err := h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-tender"})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, "4+", res.Assessment.Requirements.NumberOfBidders)
	assert.Equal(t, model.ModeFastTrack, res.Assessment.Mode)

	_, err = h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-unknown"})
	assert.ErrorIs(t, err, ErrRequirementsUnavailable)
	assert.Equal(t, []string{OutcomeOK, OutcomeError, OutcomeHeld, OutcomeError}, h.recorder.fetches)
}

func TestBegin_RequiresNegotiation(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Begin(context.Background(), BeginRequest{})
	assert.ErrorIs(t, err, ErrNegotiationRequired)
}

func TestInterviewLifecycle_CompletesAndPersistsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-tender", Pathway: "standard"})
	require.NoError(t, err)
	id := res.Assessment.ID

	for {
		view, err := h.svc.Current(ctx, id)
		require.NoError(t, err)
		session, err := h.svc.Answer(ctx, id, validAnswer(t, view.Key))
		require.NoError(t, err)
		if session.IsComplete() {
			break
		}
	}
	h.persister.Wait()

	session, err := h.svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, session.Assessment)
	assert.Equal(t, 75, session.Assessment.CustomerLeverage)

	_, err = h.svc.Answer(ctx, id, model.Answer{Text: "late"})
	assert.ErrorIs(t, err, interview.ErrSessionComplete)

	saved := h.sink.saved()
	require.Len(t, saved, 1)
	assert.Equal(t, id, saved[0].AssessmentID)
	assert.Equal(t, "neg-tender", saved[0].NegotiationID)
	assert.Equal(t, []int{75}, h.recorder.completed)
	assert.Equal(t, []string{"fake:ok"}, h.recorder.persists)
	assert.Contains(t, h.broadcaster.events, EventAssessmentCompleted)

	artifact, err := h.svc.Artifact(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, saved[0], *artifact)
}

func TestPersistFailureDoesNotBlockCompletion(t *testing.T) {
	h := newHarness(t)
	h.sink.err = errors.New("negotiation service down")
	ctx := context.Background()

	res, err := h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-tender"})
	require.NoError(t, err)

	session, err := h.svc.Confirm(ctx, res.Assessment.ID)
	require.NoError(t, err)
	assert.True(t, session.IsComplete())
	h.persister.Wait()

	assert.Equal(t, []string{"fake:error"}, h.recorder.persists)
	_, err = h.svc.Artifact(ctx, res.Assessment.ID)
	assert.NoError(t, err)
}

func TestFastTrackSwitchAndEdit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-tender"})
	require.NoError(t, err)
	id := res.Assessment.ID

	_, err = h.svc.EditAnswer(ctx, id, catalog.KeyBATNAConfidence, model.Answer{Rating: 3})
	require.NoError(t, err)

	session, err := h.svc.SwitchToInterview(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.SessionPresenting, session.Status)
	assert.Equal(t, model.Answers{catalog.KeyBATNAConfidence: {Rating: 3}}, session.Answers)
	assert.Equal(t, 0, session.CurrentIndex)
	assert.Equal(t, 0, session.MaxReached)

	_, err = h.svc.Back(ctx, id)
	assert.ErrorIs(t, err, interview.ErrIndexOutOfRange)

	_, err = h.svc.Forward(ctx, id)
	assert.ErrorIs(t, err, interview.ErrIndexNotReached)

	session, err = h.svc.Answer(ctx, id, model.Answer{Rating: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, session.CurrentIndex)

	session, err = h.svc.Back(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, session.CurrentIndex)

	_, err = h.svc.GoTo(ctx, id, 5)
	assert.ErrorIs(t, err, interview.ErrIndexNotReached)

	session, err = h.svc.ApplyDefaults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Answer{Rating: 3}, session.Answers[catalog.KeyBATNAConfidence])

	p, err := h.svc.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, p.Total, p.Answered)
	assert.Equal(t, 100, p.Percent)
}

func TestRestartAfterCompletion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-tender"})
	require.NoError(t, err)
	_, err = h.svc.Confirm(ctx, res.Assessment.ID)
	require.NoError(t, err)

	session, err := h.svc.Restart(ctx, res.Assessment.ID)
	require.NoError(t, err)
	assert.False(t, session.IsComplete())
	assert.Nil(t, session.Assessment)

	_, err = h.svc.Artifact(ctx, res.Assessment.ID)
	assert.ErrorIs(t, err, interview.ErrNotComplete)
}

func TestUnknownAssessment(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
	_, err = h.svc.Answer(context.Background(), "missing", model.Answer{Text: "x"})
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
	_, err = h.svc.Artifact(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAssessmentNotFound)
}

type fakeArtifacts struct {
	stored map[string]*model.CompletionArtifact
}

func (f *fakeArtifacts) Get(_ context.Context, id string) (*model.CompletionArtifact, error) {
	return f.stored[id], nil
}

func (f *fakeArtifacts) ListByNegotiation(_ context.Context, negotiationID string) ([]*model.CompletionArtifact, error) {
	var out []*model.CompletionArtifact
	for _, a := range f.stored {
		if a.NegotiationID == negotiationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func TestArtifact_ReadFromRepositoryAfterExpiry(t *testing.T) {
	stored := &model.CompletionArtifact{AssessmentID: "old", NegotiationID: "neg-1"}
	svc := NewAssessmentService(AssessmentConfig{
		Source:    &fakeSource{},
		Store:     cache.NewMemoryCache(0),
		Auth:      NewAuthService("s", time.Hour),
		Artifacts: &fakeArtifacts{stored: map[string]*model.CompletionArtifact{"old": stored}},
		Logger:    zerolog.Nop(),
	})

	got, err := svc.Artifact(context.Background(), "old")
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	list, err := svc.ListArtifacts(context.Background(), "neg-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListArtifacts(context.Background(), "neg-2")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestScore_Stateless(t *testing.T) {
	h := newHarness(t)
	got := h.svc.Score(map[string]any{}, nil)
	assert.Equal(t, 50, got.CustomerLeverage)
}

func TestConcurrentAnswersAreSerialised(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	res, err := h.svc.Begin(ctx, BeginRequest{NegotiationID: "neg-full"})
	require.NoError(t, err)
	id := res.Assessment.ID

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = h.svc.Answer(ctx, id, model.Answer{Rating: 5})
		}()
	}
	wg.Wait()

	session, err := h.svc.Get(ctx, id)
	require.NoError(t, err)
	// Only the first question takes a rating; later submissions are rejected
	assert.Equal(t, 1, session.CurrentIndex)
	assert.Len(t, session.Answers, 1)
}
