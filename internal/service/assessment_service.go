package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contractpilot/internal/cache"
	"contractpilot/internal/interview"
	"contractpilot/internal/model"
	"contractpilot/internal/pathway"
	"contractpilot/internal/requirements"
	"contractpilot/internal/scoring"
)

var (
	ErrAssessmentNotFound      = errors.New("assessment not found")
	ErrRequirementsUnavailable = errors.New("deal requirements are unavailable; retry shortly")
	ErrNegotiationRequired     = errors.New("negotiationId is required")
)

// ArtifactReader reads artifacts that outlived their session
type ArtifactReader interface {
	Get(ctx context.Context, assessmentID string) (*model.CompletionArtifact, error)
	ListByNegotiation(ctx context.Context, negotiationID string) ([]*model.CompletionArtifact, error)
}

// AssessmentConfig wires an AssessmentService
type AssessmentConfig struct {
	Source       RequirementsSource
	Store        cache.SessionStore
	Auth         *AuthService
	Persister    *Persister
	Artifacts    ArtifactReader // optional
	Recorder     Recorder       // optional
	FetchTimeout time.Duration
	Logger       zerolog.Logger
}

// AssessmentService runs the assessment lifecycle: requirements fetch,
// interview transitions, scoring and artifact hand-off.
type AssessmentService struct {
	source       RequirementsSource
	store        cache.SessionStore
	normalizer   *requirements.Normalizer
	auth         *AuthService
	persister    *Persister
	artifacts    ArtifactReader
	recorder     Recorder
	broadcaster  Broadcaster
	fetchTimeout time.Duration
	logger       zerolog.Logger
	locks        *keyedMutex
	newID        func() string
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(cfg AssessmentConfig) *AssessmentService {
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = NopRecorder()
	}
	persister := cfg.Persister
	if persister == nil {
		persister = NewPersister(10*time.Second, recorder, cfg.Logger)
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	logger := cfg.Logger.With().Str("component", "assessment_service").Logger()

	return &AssessmentService{
		source:       cfg.Source,
		store:        cfg.Store,
		normalizer:   requirements.NewNormalizer(logger, recorder),
		auth:         cfg.Auth,
		persister:    persister,
		artifacts:    cfg.Artifacts,
		recorder:     recorder,
		broadcaster:  nopBroadcaster{},
		fetchTimeout: fetchTimeout,
		logger:       logger,
		locks:        newKeyedMutex(),
		newID:        func() string { return uuid.New().String() },
	}
}

// SetBroadcaster sets the WebSocket broadcaster
func (s *AssessmentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// BeginRequest starts an assessment for one party
type BeginRequest struct {
	NegotiationID string `json:"negotiationId"`
	PartyID       string `json:"partyId,omitempty"`
	Pathway       string `json:"pathway,omitempty"`
}

// BeginResult is a new assessment and its party token
type BeginResult struct {
	Assessment *model.AssessmentSession `json:"assessment"`
	Token      string                   `json:"token"`
	// Degraded is set when the upstream was unreachable and requirements
	// held from an earlier session were used
	Degraded bool `json:"degraded,omitempty"`
}

// Begin fetches and normalizes requirements, resolves the mode and
// creates the session.
func (s *AssessmentService) Begin(ctx context.Context, req BeginRequest) (*BeginResult, error) {
	if req.NegotiationID == "" {
		return nil, ErrNegotiationRequired
	}
	log := s.logger.With().Str("negotiation_id", req.NegotiationID).Logger()

	held, degraded, err := s.loadRequirements(ctx, req.NegotiationID)
	if err != nil {
		return nil, err
	}

	pathwayID := req.Pathway
	if pathwayID == "" {
		pathwayID = held.Pathway
	}
	mode := pathway.ResolveMode(pathwayID)

	session := interview.NewSession(s.newID(), req.NegotiationID, req.PartyID, mode, held.Requirements)
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	token, err := s.auth.GeneratePartyToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to issue party token: %w", err)
	}

	s.recorder.AssessmentStarted(string(mode))
	s.broadcaster.BroadcastToAssessment(session.ID, EventAssessmentStarted, map[string]interface{}{
		"assessmentId": session.ID,
		"mode":         mode,
		"status":       session.Status,
		"total":        len(session.QuestionKeys),
	})

	log.Info().
		Str("assessment_id", session.ID).
		Str("pathway", pathwayID).
		Str("mode", string(mode)).
		Int("questions", len(session.QuestionKeys)).
		Bool("degraded", degraded).
		Msg("Assessment started")

	return &BeginResult{Assessment: session, Token: token, Degraded: degraded}, nil
}

// loadRequirements fetches upstream under the fetch timeout. When the
// fetch fails, requirements held from an earlier session are used.
func (s *AssessmentService) loadRequirements(ctx context.Context, negotiationID string) (*model.HeldRequirements, bool, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	raw, err := s.source.Fetch(fetchCtx, negotiationID)
	cancel()

	if err == nil {
		s.recorder.RequirementsFetch(OutcomeOK)
		held := &model.HeldRequirements{
			NegotiationID: negotiationID,
			Requirements:  s.normalizer.Normalize(raw),
			Pathway:       requirements.Pathway(raw),
			FetchedAt:     time.Now().UTC(),
		}
		if err := s.store.SaveRequirements(ctx, held); err != nil {
			s.logger.Warn().Err(err).Str("negotiation_id", negotiationID).Msg("Failed to hold requirements")
		}
		return held, false, nil
	}

	if errors.Is(err, ErrRequirementsNotFound) {
		s.recorder.RequirementsFetch(OutcomeNotFound)
	} else {
		s.recorder.RequirementsFetch(OutcomeError)
	}
	s.logger.Warn().Err(err).Str("negotiation_id", negotiationID).Msg("Requirements fetch failed")

	held, heldErr := s.store.GetRequirements(ctx, negotiationID)
	if heldErr != nil {
		return nil, false, fmt.Errorf("negotiation %q: %w", negotiationID, ErrRequirementsUnavailable)
	}
	s.recorder.RequirementsFetch(OutcomeHeld)
	return held, true, nil
}

// Get returns an assessment
func (s *AssessmentService) Get(ctx context.Context, id string) (*model.AssessmentSession, error) {
	return s.load(ctx, id)
}

// Current renders the active question
func (s *AssessmentService) Current(ctx context.Context, id string) (model.QuestionView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return model.QuestionView{}, err
	}
	return interview.Current(session)
}

// Answer submits an answer to the active question
func (s *AssessmentService) Answer(ctx context.Context, id string, answer model.Answer) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, func(session *model.AssessmentSession) error {
		return interview.Submit(session, answer)
	})
}

// GoTo moves to question index
func (s *AssessmentService) GoTo(ctx context.Context, id string, index int) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, func(session *model.AssessmentSession) error {
		return interview.GoTo(session, index)
	})
}

// Back moves to the previous question
func (s *AssessmentService) Back(ctx context.Context, id string) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, interview.Back)
}

// Forward moves to the next question
func (s *AssessmentService) Forward(ctx context.Context, id string) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, interview.Forward)
}

// ApplyDefaults fills unanswered questions with synthesized defaults for review
func (s *AssessmentService) ApplyDefaults(ctx context.Context, id string) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, interview.ApplyDefaults)
}

// SwitchToInterview leaves review for question-by-question answering
func (s *AssessmentService) SwitchToInterview(ctx context.Context, id string) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, interview.SwitchToInterview)
}

// EditAnswer replaces the answer for key
func (s *AssessmentService) EditAnswer(ctx context.Context, id, key string, answer model.Answer) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, func(session *model.AssessmentSession) error {
		return interview.EditAnswer(session, key, answer)
	})
}

// Confirm accepts reviewed answers and completes the assessment
func (s *AssessmentService) Confirm(ctx context.Context, id string) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, interview.Confirm)
}

// Restart discards answers and the assessment
func (s *AssessmentService) Restart(ctx context.Context, id string) (*model.AssessmentSession, error) {
	return s.mutate(ctx, id, func(session *model.AssessmentSession) error {
		interview.Restart(session)
		return nil
	})
}

// Progress reports answered counts
func (s *AssessmentService) Progress(ctx context.Context, id string) (model.Progress, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return model.Progress{}, err
	}
	return interview.Progress(session), nil
}

// Artifact returns the completion artifact. Artifacts already persisted
// remain readable after the session expires.
func (s *AssessmentService) Artifact(ctx context.Context, id string) (*model.CompletionArtifact, error) {
	session, err := s.load(ctx, id)
	if errors.Is(err, ErrAssessmentNotFound) && s.artifacts != nil {
		stored, repoErr := s.artifacts.Get(ctx, id)
		if repoErr != nil {
			return nil, repoErr
		}
		if stored != nil {
			return stored, nil
		}
	}
	if err != nil {
		return nil, err
	}

	artifact, err := interview.BuildArtifact(session)
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// ListArtifacts returns persisted artifacts for a negotiation
func (s *AssessmentService) ListArtifacts(ctx context.Context, negotiationID string) ([]*model.CompletionArtifact, error) {
	if s.artifacts == nil {
		return []*model.CompletionArtifact{}, nil
	}
	artifacts, err := s.artifacts.ListByNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if artifacts == nil {
		artifacts = []*model.CompletionArtifact{}
	}
	return artifacts, nil
}

// Score normalizes a raw payload and scores it without a session
func (s *AssessmentService) Score(raw map[string]any, answers model.Answers) model.LeverageAssessment {
	return scoring.Assess(s.normalizer.Normalize(raw), answers)
}

func (s *AssessmentService) load(ctx context.Context, id string) (*model.AssessmentSession, error) {
	session, err := s.store.Get(ctx, id)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, fmt.Errorf("assessment %q: %w", id, ErrAssessmentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	return session, nil
}

// mutate applies fn to the stored session under the per-assessment lock
// and saves the result. Completion triggers scoring side effects once.
func (s *AssessmentService) mutate(ctx context.Context, id string, fn func(*model.AssessmentSession) error) (*model.AssessmentSession, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	wasComplete := session.IsComplete()

	if err := fn(session); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	if !wasComplete && session.IsComplete() {
		s.onComplete(session)
		return session, nil
	}

	s.broadcaster.BroadcastToAssessment(session.ID, EventAssessmentUpdated, map[string]interface{}{
		"status":       session.Status,
		"currentIndex": session.CurrentIndex,
		"progress":     interview.Progress(session),
	})
	return session, nil
}

func (s *AssessmentService) onComplete(session *model.AssessmentSession) {
	artifact, err := interview.BuildArtifact(session)
	if err != nil {
		s.logger.Error().Err(err).Str("assessment_id", session.ID).Msg("Failed to build completion artifact")
		return
	}

	s.recorder.AssessmentCompleted(string(session.Mode), artifact.LeverageAssessment.CustomerLeverage)
	s.persister.Persist(artifact)
	s.broadcaster.BroadcastToAssessment(session.ID, EventAssessmentCompleted, map[string]interface{}{
		"leverageAssessment": artifact.LeverageAssessment,
		"completedAt":        artifact.CompletedAt,
	})

	s.logger.Info().
		Str("assessment_id", session.ID).
		Str("negotiation_id", session.NegotiationID).
		Int("customer_leverage", artifact.LeverageAssessment.CustomerLeverage).
		Str("band", string(artifact.LeverageAssessment.Band)).
		Msg("Assessment completed")
}

// keyedMutex serialises writers per assessment
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock acquires the lock for key and returns its release func
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
