package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"contractpilot/internal/model"
	"contractpilot/internal/repository"
)

// ArtifactSink receives completion artifacts
type ArtifactSink interface {
	Name() string
	Save(ctx context.Context, artifact *model.CompletionArtifact) error
}

// Persister hands artifacts to every sink in the background. Failures are
// logged and counted, never returned to the caller.
type Persister struct {
	sinks    []ArtifactSink
	timeout  time.Duration
	recorder Recorder
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// NewPersister creates a persister over sinks
func NewPersister(timeout time.Duration, recorder Recorder, logger zerolog.Logger, sinks ...ArtifactSink) *Persister {
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &Persister{
		sinks:    sinks,
		timeout:  timeout,
		recorder: recorder,
		logger:   logger.With().Str("component", "persister").Logger(),
	}
}

// Persist submits artifact to every sink without blocking
func (p *Persister) Persist(artifact model.CompletionArtifact) {
	if len(p.sinks) == 0 {
		p.logger.Debug().Str("assessment_id", artifact.AssessmentID).Msg("No artifact sinks configured")
		return
	}

	for _, sink := range p.sinks {
		p.wg.Add(1)
		go func(sink ArtifactSink) {
			defer p.wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			defer cancel()

			a := artifact
			if err := sink.Save(ctx, &a); err != nil {
				p.recorder.ArtifactPersist(sink.Name(), OutcomeError)
				p.logger.Error().Err(err).
					Str("sink", sink.Name()).
					Str("assessment_id", artifact.AssessmentID).
					Str("negotiation_id", artifact.NegotiationID).
					Msg("Failed to persist completion artifact")
				return
			}
			p.recorder.ArtifactPersist(sink.Name(), OutcomeOK)
			p.logger.Info().
				Str("sink", sink.Name()).
				Str("assessment_id", artifact.AssessmentID).
				Msg("Completion artifact persisted")
		}(sink)
	}
}

// Wait blocks until in-flight submissions finish
func (p *Persister) Wait() {
	p.wg.Wait()
}

// httpSink posts artifacts to the negotiation collaborator
type httpSink struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPSink posts artifacts to {baseURL}/negotiations/{id}/leverage-assessment
func NewHTTPSink(baseURL, token string) ArtifactSink {
	return &httpSink{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *httpSink) Name() string { return "http" }

func (s *httpSink) Save(ctx context.Context, artifact *model.CompletionArtifact) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	endpoint := fmt.Sprintf("%s/negotiations/%s/leverage-assessment", s.baseURL, url.PathEscape(artifact.NegotiationID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("negotiation service returned %d", resp.StatusCode)
	}
	return nil
}

// repoSink stores artifacts in Mongo
type repoSink struct {
	repo repository.ArtifactRepo
}

// NewRepoSink stores artifacts through repo
func NewRepoSink(repo repository.ArtifactRepo) ArtifactSink {
	return &repoSink{repo: repo}
}

func (s *repoSink) Name() string { return "mongo" }

func (s *repoSink) Save(ctx context.Context, artifact *model.CompletionArtifact) error {
	return s.repo.Save(ctx, artifact)
}
