// Package catalog holds the static strategic question catalog, builds the
// per-session question set, and synthesizes fast-track defaults.
package catalog

import (
	"fmt"
	"strings"

	"contractpilot/internal/model"
)

// Question keys. Stable: answers are persisted under these.
const (
	KeyBATNAConfidence    = "batna_confidence"
	KeyAlternativeOptions = "alternative_options"
	KeyInHouseCapability  = "in_house_capability"
	KeyExecutionTimeline  = "execution_timeline"
	KeyBackupPlan         = "backup_plan"
	KeyNonNegotiables     = "non_negotiables"
	KeyWalkAwayTerms      = "walk_away_terms"
	KeyRiskTolerance      = "risk_tolerance"
	KeyKeyRisks           = "key_risks"
	KeyInternalPressure   = "internal_pressure"
	KeyDecisionMakers     = "decision_makers"
	KeyRelationshipGoal   = "relationship_goal"
	KeyProviderDependency = "provider_dependency"
	KeyCompetitiveTension = "competitive_tension"
)

// Choice options
var (
	AlternativeOptionChoices = []string{"Strong", "Some", "None"}
	InHouseChoices           = []string{"Strong", "Partial", "None"}
	RiskToleranceChoices     = []string{"Low", "Medium", "High"}
	RelationshipGoalChoices  = []string{"Transactional", "Long-term partnership", "Strategic alliance"}
)

var questions = []model.StrategicQuestion{
	{
		Key:         KeyBATNAConfidence,
		Category:    model.CategoryBATNA,
		Priority:    model.PriorityCore,
		Input:       model.InputScale,
		Prompt:      "On a scale of 1 to 10, how confident are you that you could walk away from this deal and still meet your objectives?",
		ShortPrompt: "Walk-away confidence (1-10)?",
		Context: func(req model.Requirements) string {
			if req.WalkAwayPoint == "" {
				return ""
			}
			return fmt.Sprintf("You set a walk-away point of %s.", req.WalkAwayPoint)
		},
	},
	{
		Key:         KeyAlternativeOptions,
		Category:    model.CategoryBATNA,
		Priority:    model.PriorityCore,
		Input:       model.InputChoice,
		Prompt:      "How strong are your alternatives to agreeing a deal with this provider?",
		ShortPrompt: "Strength of your alternatives?",
		Options:     AlternativeOptionChoices,
		Context: func(req model.Requirements) string {
			switch n := req.BidderCount(); {
			case n > 1:
				return fmt.Sprintf("There are %s bidders in this process.", req.NumberOfBidders)
			case n == 1:
				return "This is a single-source negotiation."
			}
			return ""
		},
	},
	{
		Key:      KeyInHouseCapability,
		Category: model.CategoryBATNA,
		Priority: model.PriorityExtended,
		Input:    model.InputChoice,
		Prompt:   "Could your organisation deliver this service in-house if it had to?",
		Options:  InHouseChoices,
		Context: func(req model.Requirements) string {
			if req.ServiceRequired == "" {
				return ""
			}
			return fmt.Sprintf("Service in scope: %s.", req.ServiceRequired)
		},
	},
	{
		Key:         KeyExecutionTimeline,
		Category:    model.CategoryBATNA,
		Priority:    model.PriorityCore,
		Input:       model.InputText,
		Prompt:      "If this negotiation failed tomorrow, how quickly could you put your alternative into action?",
		ShortPrompt: "How fast could you switch to your alternative?",
		Context: func(req model.Requirements) string {
			if req.DecisionTimeline == "" {
				return ""
			}
			return fmt.Sprintf("Your decision timeline is %s.", strings.ToLower(req.DecisionTimeline))
		},
	},
	{
		Key:      KeyBackupPlan,
		Category: model.CategoryBATNA,
		Priority: model.PriorityExtended,
		Input:    model.InputText,
		Prompt:   "Describe your backup plan if negotiations with this provider break down.",
	},
	{
		Key:         KeyNonNegotiables,
		Category:    model.CategoryRedLines,
		Priority:    model.PriorityCore,
		Input:       model.InputText,
		Prompt:      "Which contract terms are non-negotiable for you, and why?",
		ShortPrompt: "Your non-negotiable terms?",
		Context: func(req model.Requirements) string {
			if req.ContractPositions.IsZero() {
				return ""
			}
			return "Your opening positions: " + describePositions(req.ContractPositions) + "."
		},
	},
	{
		Key:      KeyWalkAwayTerms,
		Category: model.CategoryRedLines,
		Priority: model.PriorityExtended,
		Input:    model.InputText,
		Prompt:   "At what point on price or terms would you walk away from this deal?",
	},
	{
		Key:         KeyRiskTolerance,
		Category:    model.CategoryRisk,
		Priority:    model.PriorityCore,
		Input:       model.InputChoice,
		Prompt:      "How much delivery risk is your organisation prepared to carry in this contract?",
		ShortPrompt: "Risk appetite?",
		Options:     RiskToleranceChoices,
		Context: func(req model.Requirements) string {
			if req.ServiceCriticality == "" {
				return ""
			}
			return fmt.Sprintf("You rated this service as %s.", strings.ToLower(req.ServiceCriticality))
		},
	},
	{
		Key:      KeyKeyRisks,
		Category: model.CategoryRisk,
		Priority: model.PriorityExtended,
		Input:    model.InputText,
		Prompt:   "What are the biggest risks to your business if this provider under-performs?",
	},
	{
		Key:         KeyInternalPressure,
		Category:    model.CategoryInternal,
		Priority:    model.PriorityCore,
		Input:       model.InputText,
		Prompt:      "What internal pressures (deadlines, budget cycles, stakeholder expectations) are shaping this negotiation?",
		ShortPrompt: "Internal pressures on this deal?",
	},
	{
		Key:      KeyDecisionMakers,
		Category: model.CategoryInternal,
		Priority: model.PriorityExtended,
		Input:    model.InputText,
		Prompt:   "Who needs to approve the final agreement, and what do they care about most?",
	},
	{
		Key:         KeyRelationshipGoal,
		Category:    model.CategoryRelationship,
		Priority:    model.PriorityCore,
		Input:       model.InputChoice,
		Prompt:      "What kind of relationship do you want with this provider?",
		ShortPrompt: "Relationship you want?",
		Options:     RelationshipGoalChoices,
		Context: func(req model.Requirements) string {
			if req.IncumbentStatus == "" {
				return ""
			}
			return fmt.Sprintf("Incumbent status: %s.", req.IncumbentStatus)
		},
	},
	{
		Key:      KeyProviderDependency,
		Category: model.CategoryRelationship,
		Priority: model.PriorityExtended,
		Input:    model.InputText,
		Prompt:   "How dependent would you become on this provider over the life of the contract?",
		Context: func(req model.Requirements) string {
			if req.SwitchingCosts == "" {
				return ""
			}
			return fmt.Sprintf("You described switching costs as %s.", strings.ToLower(req.SwitchingCosts))
		},
	},
	{
		Key:         KeyCompetitiveTension,
		Category:    model.CategoryTendering,
		Priority:    model.PriorityCore,
		Input:       model.InputText,
		Prompt:      "How do you intend to use competition between bidders to improve terms?",
		ShortPrompt: "How will you use bidder competition?",
		Context: func(req model.Requirements) string {
			return fmt.Sprintf("You are running a process with %s bidders.", req.NumberOfBidders)
		},
	},
}

var byKey = func() map[string]int {
	m := make(map[string]int, len(questions))
	for i, q := range questions {
		m[q.Key] = i
	}
	return m
}()

// All returns the full catalog in order. The slice is a copy.
func All() []model.StrategicQuestion {
	return append([]model.StrategicQuestion(nil), questions...)
}

// Lookup finds a catalog question by key
func Lookup(key string) (model.StrategicQuestion, bool) {
	i, ok := byKey[key]
	if !ok {
		return model.StrategicQuestion{}, false
	}
	return questions[i], true
}

// PromptFor picks the prompt shown in mode and the contextual prefix for req
func PromptFor(q model.StrategicQuestion, mode model.Mode, req model.Requirements) (prompt, context string) {
	prompt = q.Prompt
	if mode == model.ModeAbbreviated && q.ShortPrompt != "" {
		prompt = q.ShortPrompt
	}
	if q.Context != nil {
		context = q.Context(req)
	}
	return prompt, context
}

func describePositions(p model.ContractPositions) string {
	var parts []string
	if p.LiabilityCap > 0 {
		parts = append(parts, fmt.Sprintf("liability cap %g%%", p.LiabilityCap))
	}
	if p.PaymentTerms > 0 {
		parts = append(parts, fmt.Sprintf("payment terms %d days", p.PaymentTerms))
	}
	if p.SLATarget > 0 {
		parts = append(parts, fmt.Sprintf("SLA %g%%", p.SLATarget))
	}
	if p.TerminationNotice > 0 {
		parts = append(parts, fmt.Sprintf("termination notice %d days", p.TerminationNotice))
	}
	return strings.Join(parts, ", ")
}
