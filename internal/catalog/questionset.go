package catalog

import "contractpilot/internal/model"

// BuildQuestionSet returns the ordered active question set for a session.
// The tendering question is kept only when more than one bidder competes;
// abbreviated mode keeps core questions only. Full and fast-track modes
// share the same set. Callers compute this once per session.
func BuildQuestionSet(mode model.Mode, req model.Requirements) []model.StrategicQuestion {
	competing := req.HasCompetingBidders()
	set := make([]model.StrategicQuestion, 0, len(questions))
	for _, q := range questions {
		if q.Category == model.CategoryTendering && !competing {
			continue
		}
		if mode == model.ModeAbbreviated && q.Priority != model.PriorityCore {
			continue
		}
		set = append(set, q)
	}
	return set
}

// Keys projects a question set onto its keys
func Keys(set []model.StrategicQuestion) []string {
	keys := make([]string, len(set))
	for i, q := range set {
		keys[i] = q.Key
	}
	return keys
}

// Resolve maps keys back to catalog questions, skipping unknown keys
func Resolve(keys []string) []model.StrategicQuestion {
	out := make([]model.StrategicQuestion, 0, len(keys))
	for _, k := range keys {
		if q, ok := Lookup(k); ok {
			out = append(out, q)
		}
	}
	return out
}
