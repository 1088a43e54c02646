package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contractpilot/internal/model"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and validates assessment-scoped party tokens
type AuthService struct {
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		jwtSecret: []byte(secret),
		ttl:       ttl,
		now:       time.Now,
	}
}

// GeneratePartyToken creates a token scoped to one assessment
func (s *AuthService) GeneratePartyToken(session *model.AssessmentSession) (string, error) {
	now := s.now()
	claims := &model.PartyClaims{
		AssessmentID:  session.ID,
		NegotiationID: session.NegotiationID,
		PartyID:       session.PartyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidatePartyToken validates a party JWT and returns claims
func (s *AuthService) ValidatePartyToken(tokenString string) (*model.PartyClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.PartyClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.PartyClaims)
	if !ok || !token.Valid || claims.AssessmentID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
