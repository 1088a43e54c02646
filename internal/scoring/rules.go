// Package scoring reduces deal requirements and interview answers to a
// four-factor leverage split. Everything here is pure and deterministic.
package scoring

import (
	"fmt"
	"strings"

	"contractpilot/internal/catalog"
	"contractpilot/internal/model"
)

// Factor names one of the four equally weighted sub-scores
type Factor string

const (
	FactorMarketDynamics    Factor = "marketDynamics"
	FactorEconomicFactors   Factor = "economicFactors"
	FactorStrategicPosition Factor = "strategicPosition"
	FactorBATNA             Factor = "batna"
)

// Factors in breakdown order
var Factors = []Factor{FactorMarketDynamics, FactorEconomicFactors, FactorStrategicPosition, FactorBATNA}

// Input is what every rule predicate sees
type Input struct {
	Requirements model.Requirements
	Answers      model.Answers
}

// Rule adjusts one factor by Delta when When holds
type Rule struct {
	Factor    Factor
	Name      string
	Delta     int
	When      func(Input) bool
	Rationale func(Input) string
}

func say(s string) func(Input) string {
	return func(Input) string { return s }
}

// Rules is the leverage policy, evaluated in order. At most one rule of a
// mutually exclusive group (e.g. bidder-count bands) can fire.
var Rules = []Rule{
	// Market dynamics
	{
		Factor: FactorMarketDynamics, Name: "strong-competition", Delta: 20,
		When: func(in Input) bool { return in.Requirements.BidderCount() >= 4 },
		Rationale: func(in Input) string {
			return fmt.Sprintf("Strong competition with %s bidders increases customer leverage.", in.Requirements.NumberOfBidders)
		},
	},
	{
		Factor: FactorMarketDynamics, Name: "some-competition", Delta: 5,
		When: func(in Input) bool {
			n := in.Requirements.BidderCount()
			return n > 1 && n < 4
		},
		Rationale: say("Some competition between bidders gives the customer modest leverage."),
	},
	{
		Factor: FactorMarketDynamics, Name: "single-source", Delta: -25,
		When:      func(in Input) bool { return in.Requirements.IsSingleSource() },
		Rationale: say("Single-source negotiation significantly reduces customer leverage."),
	},
	{
		Factor: FactorMarketDynamics, Name: "urgent-timeline", Delta: -15,
		When:      func(in Input) bool { return isUrgent(in.Requirements.DecisionTimeline) },
		Rationale: say("An urgent decision timeline weakens the customer's position."),
	},
	{
		Factor: FactorMarketDynamics, Name: "flexible-timeline", Delta: 10,
		When:      func(in Input) bool { return isFlexibleTimeline(in.Requirements.DecisionTimeline) },
		Rationale: say("A flexible timeline lets the customer wait for better terms."),
	},

	// Economic factors
	{
		Factor: FactorEconomicFactors, Name: "large-deal", Delta: 15,
		When:      func(in Input) bool { return in.Requirements.DealValueAmount() >= 1_000_000 },
		Rationale: say("A deal value above $1M makes this an attractive contract for providers."),
	},
	{
		Factor: FactorEconomicFactors, Name: "significant-deal", Delta: 10,
		When: func(in Input) bool {
			v := in.Requirements.DealValueAmount()
			return v >= 500_000 && v < 1_000_000
		},
		Rationale: say("A deal value above $500K gives the customer meaningful buying power."),
	},
	{
		Factor: FactorEconomicFactors, Name: "high-switching-costs", Delta: -15,
		When:      func(in Input) bool { return level(in.Requirements.SwitchingCosts) == levelHigh },
		Rationale: say("High switching costs favour the provider."),
	},
	{
		Factor: FactorEconomicFactors, Name: "low-switching-costs", Delta: 10,
		When:      func(in Input) bool { return level(in.Requirements.SwitchingCosts) == levelLow },
		Rationale: say("Low switching costs make it credible to move to another provider."),
	},
	{
		Factor: FactorEconomicFactors, Name: "budget-flexible", Delta: 5,
		When:      func(in Input) bool { return budget(in.Requirements.BudgetFlexibility) > 0 },
		Rationale: say("Budget flexibility gives the customer room to trade value for terms."),
	},
	{
		Factor: FactorEconomicFactors, Name: "budget-fixed", Delta: -5,
		When:      func(in Input) bool { return budget(in.Requirements.BudgetFlexibility) < 0 },
		Rationale: say("A fixed budget limits the customer's room to negotiate."),
	},

	// Strategic position
	{
		Factor: FactorStrategicPosition, Name: "mission-critical", Delta: -10,
		When:      func(in Input) bool { return in.Requirements.Criticality() > 0 },
		Rationale: say("A mission-critical service increases dependency on the provider."),
	},
	{
		Factor: FactorStrategicPosition, Name: "nice-to-have", Delta: 10,
		When:      func(in Input) bool { return in.Requirements.Criticality() < 0 },
		Rationale: say("A non-essential service means the customer can walk away more easily."),
	},
	{
		Factor: FactorStrategicPosition, Name: "no-incumbent", Delta: 5,
		When:      func(in Input) bool { return incumbent(in.Requirements.IncumbentStatus) == incumbentNone },
		Rationale: say("No incumbent provider means every bidder starts on equal terms."),
	},
	{
		Factor: FactorStrategicPosition, Name: "replacing-incumbent", Delta: 10,
		When:      func(in Input) bool { return incumbent(in.Requirements.IncumbentStatus) == incumbentReplacing },
		Rationale: say("Actively replacing the incumbent signals a credible willingness to switch."),
	},
	{
		Factor: FactorStrategicPosition, Name: "locked-in", Delta: -5,
		When:      func(in Input) bool { return level(in.Requirements.SwitchingCosts) == levelHigh },
		Rationale: say("High switching costs lock the customer into the relationship."),
	},
	{
		Factor: FactorStrategicPosition, Name: "portable", Delta: 5,
		When:      func(in Input) bool { return level(in.Requirements.SwitchingCosts) == levelLow },
		Rationale: say("The customer can move the service without major disruption."),
	},
	{
		Factor: FactorStrategicPosition, Name: "competitive-field", Delta: 10,
		When:      func(in Input) bool { return in.Requirements.BidderCount() >= 4 },
		Rationale: say("A broad field of bidders strengthens the customer's strategic position."),
	},
	{
		Factor: FactorStrategicPosition, Name: "sole-supplier", Delta: -10,
		When:      func(in Input) bool { return in.Requirements.IsSingleSource() },
		Rationale: say("Reliance on a sole supplier weakens the customer's strategic position."),
	},

	// BATNA
	{
		Factor: FactorBATNA, Name: "high-confidence", Delta: 20,
		When: func(in Input) bool {
			n, ok := confidence(in)
			return ok && n >= 8
		},
		Rationale: func(in Input) string {
			n, _ := confidence(in)
			return fmt.Sprintf("High walk-away confidence (%d/10) indicates a strong BATNA.", n)
		},
	},
	{
		Factor: FactorBATNA, Name: "moderate-confidence", Delta: 10,
		When: func(in Input) bool {
			n, ok := confidence(in)
			return ok && n >= 6 && n < 8
		},
		Rationale: func(in Input) string {
			n, _ := confidence(in)
			return fmt.Sprintf("Moderate walk-away confidence (%d/10) gives the customer a workable alternative.", n)
		},
	},
	{
		Factor: FactorBATNA, Name: "low-confidence", Delta: -15,
		When: func(in Input) bool {
			n, ok := confidence(in)
			return ok && n <= 4
		},
		Rationale: func(in Input) string {
			n, _ := confidence(in)
			return fmt.Sprintf("Low walk-away confidence (%d/10) indicates a weak BATNA.", n)
		},
	},
	{
		Factor: FactorBATNA, Name: "slow-execution", Delta: -5,
		When:      func(in Input) bool { return executionSpeed(in) < 0 },
		Rationale: say("The alternative would take a long time to put into action."),
	},
	{
		Factor: FactorBATNA, Name: "fast-execution", Delta: 10,
		When:      func(in Input) bool { return executionSpeed(in) > 0 },
		Rationale: say("The alternative could be executed quickly."),
	},
	{
		Factor: FactorBATNA, Name: "strong-alternatives", Delta: 10,
		When:      func(in Input) bool { return strength(in, catalog.KeyAlternativeOptions, in.Requirements.AlternativeOptions) > 0 },
		Rationale: say("Strong alternative options are available."),
	},
	{
		Factor: FactorBATNA, Name: "no-alternatives", Delta: -15,
		When:      func(in Input) bool { return strength(in, catalog.KeyAlternativeOptions, in.Requirements.AlternativeOptions) < 0 },
		Rationale: say("No alternative options leaves the customer dependent on this deal."),
	},
	{
		Factor: FactorBATNA, Name: "strong-in-house", Delta: 10,
		When:      func(in Input) bool { return strength(in, catalog.KeyInHouseCapability, in.Requirements.InHouseCapability) > 0 },
		Rationale: say("Strong in-house capability provides a credible fallback."),
	},
	{
		Factor: FactorBATNA, Name: "no-in-house", Delta: -5,
		When:      func(in Input) bool { return strength(in, catalog.KeyInHouseCapability, in.Requirements.InHouseCapability) < 0 },
		Rationale: say("No in-house capability to fall back on."),
	},
	{
		Factor: FactorBATNA, Name: "many-bidders", Delta: 15,
		When:      func(in Input) bool { return in.Requirements.BidderCount() >= 4 },
		Rationale: say("Multiple competing bidders give the customer ready alternatives."),
	},
	{
		Factor: FactorBATNA, Name: "no-fallback-bidder", Delta: -10,
		When:      func(in Input) bool { return in.Requirements.IsSingleSource() },
		Rationale: say("Without other bidders the customer has no ready fallback."),
	},
}

func normalized(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func isUrgent(timeline string) bool {
	return containsAny(normalized(timeline), "urgent", "immediate", "asap")
}

func isFlexibleTimeline(timeline string) bool {
	t := normalized(timeline)
	return !containsAny(t, "inflexible", "not flexible") && containsAny(t, "flexible", "no rush")
}

type levelKind int

const (
	levelUnknown levelKind = iota
	levelLow
	levelHigh
)

func level(s string) levelKind {
	switch v := normalized(s); {
	case strings.Contains(v, "high"):
		return levelHigh
	case strings.Contains(v, "low"):
		return levelLow
	}
	return levelUnknown
}

// budget returns +1 for flexible, -1 for fixed, 0 when unknown
func budget(s string) int {
	v := normalized(s)
	switch {
	case v == "":
		return 0
	case containsAny(v, "none", "fixed", "inflexible", "low", "tight", "no flex"):
		return -1
	case containsAny(v, "high", "flexible", "some"):
		return 1
	}
	return 0
}

type incumbentKind int

const (
	incumbentUnknown incumbentKind = iota
	incumbentNone
	incumbentReplacing
)

func incumbent(s string) incumbentKind {
	v := normalized(s)
	switch {
	case containsAny(v, "replac", "switching away", "exiting"):
		return incumbentReplacing
	case v == "none" || containsAny(v, "no incumbent", "new service", "greenfield"):
		return incumbentNone
	}
	return incumbentUnknown
}

func confidence(in Input) (int, bool) {
	a, ok := in.Answers[catalog.KeyBATNAConfidence]
	if !ok {
		return 0, false
	}
	n, ok := a.ScaleValue()
	if !ok || n < model.ScaleMin || n > model.ScaleMax {
		return 0, false
	}
	return n, true
}

var (
	slowWords = []string{"month", "year", "long", "slow", "difficult"}
	fastWords = []string{"immediate", "day", "week", "quick", "ready"}
)

// executionSpeed classifies the execution-timeline answer. Slow keywords
// are checked first so "a few weeks to months" reads as slow.
func executionSpeed(in Input) int {
	a, ok := in.Answers[catalog.KeyExecutionTimeline]
	if !ok {
		return 0
	}
	v := normalized(a.Value())
	switch {
	case v == "":
		return 0
	case containsAny(v, slowWords...):
		return -1
	case containsAny(v, fastWords...):
		return 1
	}
	return 0
}

// strength reads a Strong/.../None choice from the answer for key, falling
// back to the requirements field when the question was not answered.
func strength(in Input, key, fallback string) int {
	v := ""
	if a, ok := in.Answers[key]; ok {
		v = normalized(a.Value())
	}
	if v == "" {
		v = normalized(fallback)
	}
	switch {
	case strings.HasPrefix(v, "strong"):
		return 1
	case strings.HasPrefix(v, "none"), v == "no":
		return -1
	}
	return 0
}
