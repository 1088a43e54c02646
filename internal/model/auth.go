package model

import "github.com/golang-jwt/jwt/v5"

// PartyClaims are JWT claims scoping a token to one assessment
type PartyClaims struct {
	AssessmentID  string `json:"assessmentId"`
	NegotiationID string `json:"negotiationId"`
	PartyID       string `json:"partyId,omitempty"`
	jwt.RegisteredClaims
}
