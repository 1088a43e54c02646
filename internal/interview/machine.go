// Package interview is the strategic interview state machine. Every
// transition is a plain function over *model.AssessmentSession; callers
// own synchronisation and persistence.
package interview

import (
	"errors"
	"fmt"
	"time"

	"contractpilot/internal/catalog"
	"contractpilot/internal/model"
	"contractpilot/internal/scoring"
)

var (
	ErrSessionComplete  = errors.New("assessment is already complete")
	ErrInReview         = errors.New("assessment is awaiting review; edit answers or switch to the interview")
	ErrNotReviewing     = errors.New("assessment is not in review")
	ErrNotComplete      = errors.New("assessment is not complete")
	ErrIndexOutOfRange  = errors.New("question index out of range")
	ErrIndexNotReached  = errors.New("question has not been reached yet")
	ErrUnknownQuestion  = errors.New("question is not part of this assessment")
	ErrInvalidAnswer    = errors.New("answer does not fit the question")
	ErrNoActiveQuestion = errors.New("no active question")
)

// timeNow is swapped in tests
var timeNow = time.Now

// NewSession creates a session with its question set fixed for its
// lifetime. Fast-track sessions start in review with defaults applied.
func NewSession(id, negotiationID, partyID string, mode model.Mode, req model.Requirements) *model.AssessmentSession {
	if !mode.Valid() {
		mode = model.ModeFull
	}
	now := timeNow().UTC()
	s := &model.AssessmentSession{
		ID:            id,
		NegotiationID: negotiationID,
		PartyID:       partyID,
		Mode:          mode,
		Status:        model.SessionPresenting,
		Requirements:  req,
		QuestionKeys:  catalog.Keys(catalog.BuildQuestionSet(mode, req)),
		Answers:       model.Answers{},
		Defaulted:     map[string]bool{},
		StartedAt:     now,
		UpdatedAt:     now,
	}
	if mode == model.ModeFastTrack {
		_ = ApplyDefaults(s)
	}
	return s
}

// Submit answers the question at CurrentIndex and advances. Answering the
// last question completes the session, unless an earlier question is still
// open, in which case the session moves to it.
func Submit(s *model.AssessmentSession, a model.Answer) error {
	switch s.Status {
	case model.SessionComplete:
		return fmt.Errorf("assessment %q: %w", s.ID, ErrSessionComplete)
	case model.SessionReviewing:
		return fmt.Errorf("assessment %q: %w", s.ID, ErrInReview)
	}

	i := s.CurrentIndex
	if i < 0 || i >= len(s.QuestionKeys) {
		return fmt.Errorf("assessment %q index %d: %w", s.ID, i, ErrIndexOutOfRange)
	}
	key := s.QuestionKeys[i]
	if err := record(s, key, a); err != nil {
		return err
	}

	if i < len(s.QuestionKeys)-1 {
		s.CurrentIndex = i + 1
		if s.CurrentIndex > s.MaxReached {
			s.MaxReached = s.CurrentIndex
		}
		return nil
	}

	if open := firstUnanswered(s); open >= 0 {
		s.CurrentIndex = open
		return nil
	}
	complete(s)
	return nil
}

// GoTo moves to question i. Any question already reached or answered can
// be revisited without affecting other answers.
func GoTo(s *model.AssessmentSession, i int) error {
	if s.IsComplete() {
		return fmt.Errorf("assessment %q: %w", s.ID, ErrSessionComplete)
	}
	if i < 0 || i >= len(s.QuestionKeys) {
		return fmt.Errorf("assessment %q index %d: %w", s.ID, i, ErrIndexOutOfRange)
	}
	if i > s.MaxReached && !answered(s, s.QuestionKeys[i]) {
		return fmt.Errorf("assessment %q index %d: %w", s.ID, i, ErrIndexNotReached)
	}
	s.CurrentIndex = i
	s.UpdatedAt = timeNow().UTC()
	return nil
}

// Back moves to the previous question
func Back(s *model.AssessmentSession) error {
	return GoTo(s, s.CurrentIndex-1)
}

// Forward moves to the next question
func Forward(s *model.AssessmentSession) error {
	return GoTo(s, s.CurrentIndex+1)
}

// ApplyDefaults fills every unanswered question with a synthesized default
// and moves the session into review. Answers already captured are kept.
func ApplyDefaults(s *model.AssessmentSession) error {
	if s.IsComplete() {
		return fmt.Errorf("assessment %q: %w", s.ID, ErrSessionComplete)
	}
	if s.Answers == nil {
		s.Answers = model.Answers{}
	}
	if s.Defaulted == nil {
		s.Defaulted = map[string]bool{}
	}

	for k, a := range catalog.SynthesizeDefaults(s.Requirements, s.QuestionKeys) {
		if answered(s, k) {
			continue
		}
		s.Answers[k] = a
		s.Defaulted[k] = true
	}

	s.Status = model.SessionReviewing
	s.CurrentIndex = 0
	if n := len(s.QuestionKeys); n > 0 {
		s.MaxReached = n - 1
	}
	s.UpdatedAt = timeNow().UTC()
	return nil
}

// SwitchToInterview leaves review for question-by-question presentation,
// restarting from the first question. Synthesized answers the party never
// edited are dropped; everything the party answered is kept and stays
// reachable.
func SwitchToInterview(s *model.AssessmentSession) error {
	if s.IsComplete() {
		return fmt.Errorf("assessment %q: %w", s.ID, ErrSessionComplete)
	}
	if s.Status != model.SessionReviewing {
		return fmt.Errorf("assessment %q: %w", s.ID, ErrNotReviewing)
	}

	for k := range s.Defaulted {
		delete(s.Answers, k)
	}
	s.Defaulted = map[string]bool{}
	s.Status = model.SessionPresenting

	s.CurrentIndex = 0
	s.MaxReached = max(lastAnswered(s), 0)
	s.UpdatedAt = timeNow().UTC()
	return nil
}

// EditAnswer replaces the answer for key without moving the session
func EditAnswer(s *model.AssessmentSession, key string, a model.Answer) error {
	if s.IsComplete() {
		return fmt.Errorf("assessment %q: %w", s.ID, ErrSessionComplete)
	}
	i := s.IndexOf(key)
	if i < 0 {
		return fmt.Errorf("assessment %q question %q: %w", s.ID, key, ErrUnknownQuestion)
	}
	if s.Status == model.SessionPresenting && i > s.MaxReached && !answered(s, key) {
		return fmt.Errorf("assessment %q question %q: %w", s.ID, key, ErrIndexNotReached)
	}
	return record(s, key, a)
}

// Confirm accepts the reviewed answers and completes the session
func Confirm(s *model.AssessmentSession) error {
	if s.IsComplete() {
		return fmt.Errorf("assessment %q: %w", s.ID, ErrSessionComplete)
	}
	if s.Status != model.SessionReviewing {
		return fmt.Errorf("assessment %q: %w", s.ID, ErrNotReviewing)
	}
	if open := firstUnanswered(s); open >= 0 {
		return fmt.Errorf("assessment %q question %q: %w", s.ID, s.QuestionKeys[open], ErrInvalidAnswer)
	}
	complete(s)
	return nil
}

// Restart discards every answer and the assessment, keeping the question
// set. Fast-track sessions return to review with fresh defaults.
func Restart(s *model.AssessmentSession) {
	s.Answers = model.Answers{}
	s.Defaulted = map[string]bool{}
	s.Assessment = nil
	s.CompletedAt = nil
	s.CurrentIndex = 0
	s.MaxReached = 0
	s.Status = model.SessionPresenting
	s.UpdatedAt = timeNow().UTC()
	if s.Mode == model.ModeFastTrack {
		_ = ApplyDefaults(s)
	}
}

// Current renders the question at CurrentIndex
func Current(s *model.AssessmentSession) (model.QuestionView, error) {
	if s.IsComplete() {
		return model.QuestionView{}, fmt.Errorf("assessment %q: %w", s.ID, ErrSessionComplete)
	}
	i := s.CurrentIndex
	if i < 0 || i >= len(s.QuestionKeys) {
		return model.QuestionView{}, fmt.Errorf("assessment %q: %w", s.ID, ErrNoActiveQuestion)
	}
	q, ok := catalog.Lookup(s.QuestionKeys[i])
	if !ok {
		return model.QuestionView{}, fmt.Errorf("assessment %q question %q: %w", s.ID, s.QuestionKeys[i], ErrUnknownQuestion)
	}

	prompt, context := catalog.PromptFor(q, s.Mode, s.Requirements)
	view := model.QuestionView{
		Index:    i,
		Total:    len(s.QuestionKeys),
		Key:      q.Key,
		Category: q.Category,
		Input:    q.Input,
		Prompt:   prompt,
		Context:  context,
		Options:  q.Options,
	}
	if a, ok := s.Answers[q.Key]; ok {
		view.Answer = &a
	}
	return view, nil
}

func record(s *model.AssessmentSession, key string, a model.Answer) error {
	q, ok := catalog.Lookup(key)
	if !ok {
		return fmt.Errorf("assessment %q question %q: %w", s.ID, key, ErrUnknownQuestion)
	}
	norm, ok := catalog.NormalizeAnswer(q, a)
	if !ok {
		return fmt.Errorf("assessment %q question %q: %w", s.ID, key, ErrInvalidAnswer)
	}
	if s.Answers == nil {
		s.Answers = model.Answers{}
	}
	s.Answers[key] = norm
	delete(s.Defaulted, key)
	s.UpdatedAt = timeNow().UTC()
	return nil
}

// complete scores the session. It runs once per completion.
func complete(s *model.AssessmentSession) {
	now := timeNow().UTC()
	assessment := scoring.Assess(s.Requirements, s.Answers)
	s.Assessment = &assessment
	s.Status = model.SessionComplete
	s.CompletedAt = &now
	s.UpdatedAt = now
}

func answered(s *model.AssessmentSession, key string) bool {
	a, ok := s.Answers[key]
	return ok && !a.IsEmpty()
}

func firstUnanswered(s *model.AssessmentSession) int {
	for i, k := range s.QuestionKeys {
		if !answered(s, k) {
			return i
		}
	}
	return -1
}

func lastAnswered(s *model.AssessmentSession) int {
	for i := len(s.QuestionKeys) - 1; i >= 0; i-- {
		if answered(s, s.QuestionKeys[i]) {
			return i
		}
	}
	return -1
}
