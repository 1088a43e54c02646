package model

import "time"

// LeverageBreakdown holds the four factor sub-scores, each 0-100
type LeverageBreakdown struct {
	MarketDynamicsScore    int `json:"marketDynamicsScore" bson:"marketDynamicsScore"`
	EconomicFactorsScore   int `json:"economicFactorsScore" bson:"economicFactorsScore"`
	StrategicPositionScore int `json:"strategicPositionScore" bson:"strategicPositionScore"`
	BATNAScore             int `json:"batnaScore" bson:"batnaScore"`
}

// LeverageBand labels the split for downstream clause calibration
type LeverageBand string

const (
	BandCustomerFavoured LeverageBand = "customer-favoured"
	BandBalanced         LeverageBand = "balanced"
	BandProviderFavoured LeverageBand = "provider-favoured"
)

// LeverageAssessment is the scored leverage split.
// CustomerLeverage is within [25,75]; ProviderLeverage = 100 - CustomerLeverage.
type LeverageAssessment struct {
	CustomerLeverage int               `json:"customerLeverage" bson:"customerLeverage"`
	ProviderLeverage int               `json:"providerLeverage" bson:"providerLeverage"`
	Breakdown        LeverageBreakdown `json:"breakdown" bson:"breakdown"`
	Reasoning        []string          `json:"reasoning" bson:"reasoning"`
	Band             LeverageBand      `json:"band" bson:"band"`
}

// CompletionArtifact is handed to the persistence collaborator
type CompletionArtifact struct {
	AssessmentID       string             `json:"assessmentId" bson:"_id"`
	NegotiationID      string             `json:"sessionId" bson:"negotiationId"`
	PartyID            string             `json:"partyId,omitempty" bson:"partyId,omitempty"`
	Answers            map[string]string  `json:"answers" bson:"answers"`
	LeverageAssessment LeverageAssessment `json:"leverageAssessment" bson:"leverageAssessment"`
	Mode               Mode               `json:"mode" bson:"mode"`
	CompletedAt        time.Time          `json:"completedAt" bson:"completedAt"`
}
