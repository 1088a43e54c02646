package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractpilot/internal/model"
)

func TestAuthService_RoundTrip(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)
	session := &model.AssessmentSession{ID: "a1", NegotiationID: "neg-1", PartyID: "p1"}

	token, err := auth.GeneratePartyToken(session)
	require.NoError(t, err)

	claims, err := auth.ValidatePartyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims.AssessmentID)
	assert.Equal(t, "neg-1", claims.NegotiationID)
	assert.Equal(t, "p1", claims.PartyID)
}

func TestAuthService_Rejects(t *testing.T) {
	auth := NewAuthService("secret", time.Hour)
	session := &model.AssessmentSession{ID: "a1"}

	other, err := NewAuthService("other", time.Hour).GeneratePartyToken(session)
	require.NoError(t, err)

	expiring := NewAuthService("secret", time.Minute)
	expired, err := expiring.GeneratePartyToken(session)
	require.NoError(t, err)
	auth.now = func() time.Time { return time.Now().Add(time.Hour) }

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &model.PartyClaims{AssessmentID: "a1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": other,
		"expired":      expired,
		"alg none":     unsigned,
	} {
		_, err := auth.ValidatePartyToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
