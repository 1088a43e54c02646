package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ContractPositions holds the party's opening contract positions
type ContractPositions struct {
	LiabilityCap      float64 `json:"liabilityCap" bson:"liabilityCap"`           // % of contract value
	PaymentTerms      int     `json:"paymentTerms" bson:"paymentTerms"`           // days
	SLATarget         float64 `json:"slaTarget" bson:"slaTarget"`                 // % availability
	TerminationNotice int     `json:"terminationNotice" bson:"terminationNotice"` // days
}

// IsZero reports whether no position was captured
func (c ContractPositions) IsZero() bool {
	return c == ContractPositions{}
}

// Priorities holds the five relative weights the party assigned
type Priorities struct {
	Cost           int `json:"cost" bson:"cost"`
	Quality        int `json:"quality" bson:"quality"`
	Speed          int `json:"speed" bson:"speed"`
	Innovation     int `json:"innovation" bson:"innovation"`
	RiskMitigation int `json:"riskMitigation" bson:"riskMitigation"`
}

// Requirements is the canonical deal-requirements record.
// Every field has a usable zero value; a normalized record is never nil.
type Requirements struct {
	// Company identity
	CompanyName string `json:"companyName" bson:"companyName"`
	CompanySize string `json:"companySize" bson:"companySize"`
	Industry    string `json:"industry" bson:"industry"`
	Region      string `json:"region" bson:"region"`

	// Market context
	NumberOfBidders  string `json:"numberOfBidders" bson:"numberOfBidders"`
	DecisionTimeline string `json:"decisionTimeline" bson:"decisionTimeline"`
	IncumbentStatus  string `json:"incumbentStatus" bson:"incumbentStatus"`
	SwitchingCosts   string `json:"switchingCosts" bson:"switchingCosts"`
	MarketPosition   string `json:"marketPosition" bson:"marketPosition"`

	// Deal
	ServiceRequired    string `json:"serviceRequired" bson:"serviceRequired"`
	ServiceCriticality string `json:"serviceCriticality" bson:"serviceCriticality"`
	DealValue          string `json:"dealValue" bson:"dealValue"`

	// BATNA
	AlternativeOptions string `json:"alternativeOptions" bson:"alternativeOptions"`
	InHouseCapability  string `json:"inHouseCapability" bson:"inHouseCapability"`
	WalkAwayPoint      string `json:"walkAwayPoint" bson:"walkAwayPoint"`
	BudgetFlexibility  string `json:"budgetFlexibility" bson:"budgetFlexibility"`

	ContractPositions ContractPositions `json:"contractPositions" bson:"contractPositions"`
	Priorities        Priorities        `json:"priorities" bson:"priorities"`
}

var leadingInt = regexp.MustCompile(`\d+`)

// BidderCount interprets NumberOfBidders. It returns 0 when the value is
// empty or unrecognised, 1 for single/sole source, and the first integer
// found otherwise ("4+" → 4, "2-3" → 2).
func (r Requirements) BidderCount() int {
	v := strings.ToLower(strings.TrimSpace(r.NumberOfBidders))
	if v == "" {
		return 0
	}
	if strings.Contains(v, "single") || strings.Contains(v, "sole") {
		return 1
	}
	if m := leadingInt.FindString(v); m != "" {
		n, err := strconv.Atoi(m)
		if err == nil {
			return n
		}
	}
	if strings.Contains(v, "multiple") || strings.Contains(v, "several") {
		return 2
	}
	return 0
}

// IsSingleSource reports whether only one provider is in play
func (r Requirements) IsSingleSource() bool {
	return r.BidderCount() == 1
}

// HasCompetingBidders reports whether more than one provider is competing
func (r Requirements) HasCompetingBidders() bool {
	return r.BidderCount() > 1
}

// Criticality classifies ServiceCriticality: 1 for mission-critical, -1
// for non-critical or nice-to-have, 0 when unknown. Negated forms win over
// a bare "critical".
func (r Requirements) Criticality() int {
	v := strings.ToLower(strings.TrimSpace(r.ServiceCriticality))
	switch {
	case v == "":
		return 0
	case strings.Contains(v, "non-critical"), strings.Contains(v, "not critical"), strings.Contains(v, "nice"):
		return -1
	case strings.Contains(v, "mission"), strings.Contains(v, "critical"):
		return 1
	}
	return 0
}

// IsMissionCritical reports whether the service is classed as mission-critical
func (r Requirements) IsMissionCritical() bool {
	return r.Criticality() > 0
}

// DealValueAmount parses DealValue into a number. Accepts "$1,500,000",
// "1500000", "1.5M", "500k". Returns 0 when unparseable.
func (r Requirements) DealValueAmount() float64 {
	v := strings.ToLower(strings.TrimSpace(r.DealValue))
	v = strings.NewReplacer("$", "", ",", "", "£", "", "€", "", " ", "").Replace(v)
	if v == "" {
		return 0
	}
	mult := 1.0
	switch {
	case strings.HasSuffix(v, "m"):
		mult, v = 1_000_000, strings.TrimSuffix(v, "m")
	case strings.HasSuffix(v, "k"):
		mult, v = 1_000, strings.TrimSuffix(v, "k")
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n * mult
}

// HeldRequirements is the last normalized record fetched for a negotiation,
// kept so a later session can proceed when the upstream is unreachable.
type HeldRequirements struct {
	NegotiationID string       `json:"negotiationId" bson:"negotiationId"`
	Requirements  Requirements `json:"requirements" bson:"requirements"`
	Pathway       string       `json:"pathway,omitempty" bson:"pathway,omitempty"`
	FetchedAt     time.Time    `json:"fetchedAt" bson:"fetchedAt"`
}
