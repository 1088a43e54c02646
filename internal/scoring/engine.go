package scoring

import (
	"math"

	"contractpilot/internal/model"
)

const (
	Baseline = 50

	MinFactor = 0
	MaxFactor = 100

	// The overall split never models total or zero leverage
	MinCustomerLeverage = 25
	MaxCustomerLeverage = 75

	CustomerFavouredAt = 60
	ProviderFavouredAt = 40
)

// FallbackReasoning is used when no rule fired
const FallbackReasoning = "Balanced negotiating position: no decisive leverage factors identified."

// Assess scores req and answers with the default rule table
func Assess(req model.Requirements, answers model.Answers) model.LeverageAssessment {
	return Evaluate(Rules, Input{Requirements: req, Answers: answers})
}

// Evaluate applies rules to in. Each factor starts at Baseline, takes the
// delta of every rule that fires, and is clamped to [MinFactor, MaxFactor].
// Customer leverage is the rounded mean of the factors clamped to
// [MinCustomerLeverage, MaxCustomerLeverage].
func Evaluate(rules []Rule, in Input) model.LeverageAssessment {
	scores := make(map[Factor]int, len(Factors))
	for _, f := range Factors {
		scores[f] = Baseline
	}

	var reasoning []string
	for _, r := range rules {
		if r.When == nil || !r.When(in) {
			continue
		}
		scores[r.Factor] += r.Delta
		if r.Rationale != nil {
			reasoning = append(reasoning, r.Rationale(in))
		}
	}
	if len(reasoning) == 0 {
		reasoning = []string{FallbackReasoning}
	}

	breakdown := model.LeverageBreakdown{
		MarketDynamicsScore:    clamp(scores[FactorMarketDynamics], MinFactor, MaxFactor),
		EconomicFactorsScore:   clamp(scores[FactorEconomicFactors], MinFactor, MaxFactor),
		StrategicPositionScore: clamp(scores[FactorStrategicPosition], MinFactor, MaxFactor),
		BATNAScore:             clamp(scores[FactorBATNA], MinFactor, MaxFactor),
	}

	sum := breakdown.MarketDynamicsScore + breakdown.EconomicFactorsScore +
		breakdown.StrategicPositionScore + breakdown.BATNAScore
	customer := clamp(int(math.Round(float64(sum)/float64(len(Factors)))), MinCustomerLeverage, MaxCustomerLeverage)

	return model.LeverageAssessment{
		CustomerLeverage: customer,
		ProviderLeverage: 100 - customer,
		Breakdown:        breakdown,
		Reasoning:        reasoning,
		Band:             BandFor(customer),
	}
}

// Fired lists the names of the rules that fire for in, in table order
func Fired(rules []Rule, in Input) []string {
	var names []string
	for _, r := range rules {
		if r.When != nil && r.When(in) {
			names = append(names, r.Name)
		}
	}
	return names
}

// BandFor labels a customer leverage value
func BandFor(customer int) model.LeverageBand {
	switch {
	case customer >= CustomerFavouredAt:
		return model.BandCustomerFavoured
	case customer <= ProviderFavouredAt:
		return model.BandProviderFavoured
	}
	return model.BandBalanced
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
