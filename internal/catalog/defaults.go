package catalog

import (
	"fmt"
	"strings"

	"contractpilot/internal/model"
)

const fallbackDefault = "To be confirmed"

type defaultFunc func(req model.Requirements) model.Answer

var defaultRules = map[string]defaultFunc{
	KeyBATNAConfidence: func(req model.Requirements) model.Answer {
		switch n := req.BidderCount(); {
		case n >= 4:
			return model.Answer{Rating: 8}
		case n > 1:
			return model.Answer{Rating: 6}
		case n == 1:
			return model.Answer{Rating: 3}
		}
		return model.Answer{Rating: 5}
	},
	KeyAlternativeOptions: func(req model.Requirements) model.Answer {
		if opt, ok := matchOption(req.AlternativeOptions, AlternativeOptionChoices); ok {
			return model.Answer{SelectedOption: opt}
		}
		switch n := req.BidderCount(); {
		case n >= 4:
			return model.Answer{SelectedOption: "Strong"}
		case n == 1:
			return model.Answer{SelectedOption: "None"}
		}
		return model.Answer{SelectedOption: "Some"}
	},
	KeyInHouseCapability: func(req model.Requirements) model.Answer {
		if opt, ok := matchOption(req.InHouseCapability, InHouseChoices); ok {
			return model.Answer{SelectedOption: opt}
		}
		return model.Answer{SelectedOption: "Partial"}
	},
	KeyExecutionTimeline: func(req model.Requirements) model.Answer {
		if req.HasCompetingBidders() {
			return model.Answer{Text: "Within a few weeks, by moving to another shortlisted bidder"}
		}
		return model.Answer{Text: "Several months to source and onboard an alternative provider"}
	},
	KeyBackupPlan: func(req model.Requirements) model.Answer {
		if n := req.BidderCount(); n > 1 {
			return model.Answer{Text: fmt.Sprintf("Proceed with one of the other %d bidders in the process", n-1)}
		}
		return model.Answer{Text: "Limited alternatives: extend the current arrangement or re-run the procurement"}
	},
	KeyNonNegotiables: func(req model.Requirements) model.Answer {
		if !req.ContractPositions.IsZero() {
			return model.Answer{Text: "Opening positions: " + describePositions(req.ContractPositions)}
		}
		return model.Answer{Text: "Service levels, liability protection and data security"}
	},
	KeyWalkAwayTerms: func(req model.Requirements) model.Answer {
		if req.WalkAwayPoint != "" {
			return model.Answer{Text: "Walk away beyond " + req.WalkAwayPoint}
		}
		return model.Answer{Text: "Walk away if pricing exceeds the approved budget"}
	},
	KeyRiskTolerance: func(req model.Requirements) model.Answer {
		if req.IsMissionCritical() {
			return model.Answer{SelectedOption: "Low"}
		}
		return model.Answer{SelectedOption: "Medium"}
	},
	KeyKeyRisks: func(req model.Requirements) model.Answer {
		if req.IsMissionCritical() {
			return model.Answer{Text: "Service disruption to a mission-critical operation"}
		}
		return model.Answer{Text: "Delivery delays and cost overruns"}
	},
	KeyInternalPressure: func(req model.Requirements) model.Answer {
		if req.DecisionTimeline != "" {
			return model.Answer{Text: "Decision timeline: " + req.DecisionTimeline}
		}
		return model.Answer{Text: "Standard budget cycle"}
	},
	KeyDecisionMakers: func(model.Requirements) model.Answer {
		return model.Answer{Text: "Procurement lead with executive sign-off"}
	},
	KeyRelationshipGoal: func(req model.Requirements) model.Answer {
		if req.IsMissionCritical() {
			return model.Answer{SelectedOption: "Strategic alliance"}
		}
		return model.Answer{SelectedOption: "Long-term partnership"}
	},
	KeyProviderDependency: func(req model.Requirements) model.Answer {
		if req.SwitchingCosts != "" {
			return model.Answer{Text: "Switching costs are " + strings.ToLower(req.SwitchingCosts)}
		}
		return model.Answer{Text: "Moderate dependency"}
	},
	KeyCompetitiveTension: func(req model.Requirements) model.Answer {
		return model.Answer{Text: fmt.Sprintf("Benchmark offers across the %d bidders and run a best-and-final round", req.BidderCount())}
	},
}

// SynthesizeDefaults derives a starting answer for every key, and only
// those keys, without interviewing the party
func SynthesizeDefaults(req model.Requirements, keys []string) model.Answers {
	answers := make(model.Answers, len(keys))
	for _, k := range keys {
		if fn, ok := defaultRules[k]; ok {
			answers[k] = fn(req)
			continue
		}
		answers[k] = model.Answer{Text: fallbackDefault}
	}
	return answers
}

// NormalizeAnswer validates a against q's input kind and returns the
// canonical form. ok is false when the answer does not fit the question.
func NormalizeAnswer(q model.StrategicQuestion, a model.Answer) (model.Answer, bool) {
	switch q.Input {
	case model.InputScale:
		n, ok := a.ScaleValue()
		if !ok || n < model.ScaleMin || n > model.ScaleMax {
			return model.Answer{}, false
		}
		return model.Answer{Rating: n}, true
	case model.InputChoice:
		v := a.SelectedOption
		if v == "" {
			v = a.Text
		}
		opt, ok := matchOption(v, q.Options)
		if !ok {
			return model.Answer{}, false
		}
		return model.Answer{SelectedOption: opt}, true
	default:
		text := strings.TrimSpace(a.Text)
		if text == "" {
			text = strings.TrimSpace(a.Value())
		}
		if text == "" {
			return model.Answer{}, false
		}
		return model.Answer{Text: text}, true
	}
}

// matchOption finds v among options, case-insensitively. A value that
// starts with an option ("Strong - several vendors") also matches.
func matchOption(v string, options []string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return "", false
	}
	for _, o := range options {
		if strings.ToLower(o) == v {
			return o, true
		}
	}
	for _, o := range options {
		if strings.HasPrefix(v, strings.ToLower(o)) {
			return o, true
		}
	}
	return "", false
}
