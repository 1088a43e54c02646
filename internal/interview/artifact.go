package interview

import (
	"fmt"

	"contractpilot/internal/catalog"
	"contractpilot/internal/model"
)

// BuildArtifact assembles the completion payload. It never mutates s and
// returns an equal artifact on every call for the same completed session.
func BuildArtifact(s *model.AssessmentSession) (model.CompletionArtifact, error) {
	if !s.IsComplete() || s.Assessment == nil || s.CompletedAt == nil {
		return model.CompletionArtifact{}, fmt.Errorf("assessment %q: %w", s.ID, ErrNotComplete)
	}

	assessment := *s.Assessment
	assessment.Reasoning = append([]string(nil), s.Assessment.Reasoning...)

	return model.CompletionArtifact{
		AssessmentID:       s.ID,
		NegotiationID:      s.NegotiationID,
		PartyID:            s.PartyID,
		Answers:            s.Answers.Raw(),
		LeverageAssessment: assessment,
		Mode:               s.Mode,
		CompletedAt:        *s.CompletedAt,
	}, nil
}

// Progress counts answered questions overall and per category
func Progress(s *model.AssessmentSession) model.Progress {
	counts := map[model.Category]*model.CategoryProgress{}
	p := model.Progress{Total: len(s.QuestionKeys)}

	for _, k := range s.QuestionKeys {
		q, ok := catalog.Lookup(k)
		if !ok {
			continue
		}
		c, ok := counts[q.Category]
		if !ok {
			c = &model.CategoryProgress{Category: q.Category}
			counts[q.Category] = c
		}
		c.Total++
		if answered(s, k) {
			c.Answered++
			p.Answered++
		}
	}

	for _, cat := range model.Categories {
		if c, ok := counts[cat]; ok {
			p.Categories = append(p.Categories, *c)
		}
	}
	if p.Total > 0 {
		p.Percent = p.Answered * 100 / p.Total
	}
	return p
}
