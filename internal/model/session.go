package model

import "time"

// SessionStatus is the interview state
type SessionStatus string

const (
	SessionPresenting SessionStatus = "presenting" // Asking question CurrentIndex
	SessionReviewing  SessionStatus = "reviewing"  // Fast-track defaults awaiting confirmation
	SessionComplete   SessionStatus = "complete"
)

// AssessmentSession is one party's strategic interview.
// Answers keys are always a subset of QuestionKeys.
type AssessmentSession struct {
	ID            string        `json:"id" bson:"_id"`
	NegotiationID string        `json:"negotiationId" bson:"negotiationId"`
	PartyID       string        `json:"partyId,omitempty" bson:"partyId,omitempty"`
	Mode          Mode          `json:"mode" bson:"mode"`
	Status        SessionStatus `json:"status" bson:"status"`

	Requirements Requirements `json:"requirements" bson:"requirements"`

	// QuestionKeys is the active question set, fixed at creation
	QuestionKeys []string `json:"questionKeys" bson:"questionKeys"`
	Answers      Answers  `json:"answers" bson:"answers"`

	// Defaulted holds keys whose answer came from the synthesizer and has
	// not been edited since
	Defaulted map[string]bool `json:"defaulted,omitempty" bson:"defaulted,omitempty"`

	CurrentIndex int `json:"currentIndex" bson:"currentIndex"`
	MaxReached   int `json:"maxReached" bson:"maxReached"`

	Assessment *LeverageAssessment `json:"assessment,omitempty" bson:"assessment,omitempty"`

	StartedAt   time.Time  `json:"startedAt" bson:"startedAt"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// IsComplete reports whether the session reached its terminal state
func (s *AssessmentSession) IsComplete() bool {
	return s.Status == SessionComplete
}

// IndexOf returns the position of key in the active set, or -1
func (s *AssessmentSession) IndexOf(key string) int {
	for i, k := range s.QuestionKeys {
		if k == key {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to hand to another goroutine
func (s *AssessmentSession) Clone() *AssessmentSession {
	if s == nil {
		return nil
	}
	c := *s
	c.QuestionKeys = append([]string(nil), s.QuestionKeys...)
	c.Answers = s.Answers.Clone()
	if s.Defaulted != nil {
		c.Defaulted = make(map[string]bool, len(s.Defaulted))
		for k, v := range s.Defaulted {
			c.Defaulted[k] = v
		}
	}
	if s.Assessment != nil {
		a := *s.Assessment
		a.Reasoning = append([]string(nil), s.Assessment.Reasoning...)
		c.Assessment = &a
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// CategoryProgress counts answered questions in one category
type CategoryProgress struct {
	Category Category `json:"category"`
	Answered int      `json:"answered"`
	Total    int      `json:"total"`
}

// Progress summarises completion of a session
type Progress struct {
	Answered   int                `json:"answered"`
	Total      int                `json:"total"`
	Percent    int                `json:"percent"`
	Categories []CategoryProgress `json:"categories"`
}
