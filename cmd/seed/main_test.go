package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractpilot/internal/requirements"
)

func TestFixtures_ShapesNormalizeIdentically(t *testing.T) {
	require.Len(t, fixtures, 2)

	flat := requirements.Normalize(fixtures[0].payload)
	nested := requirements.Normalize(fixtures[1].payload)

	assert.Equal(t, flat, nested)
	assert.Equal(t, "2,500,000", flat.DealValue)
	assert.Equal(t, "4", flat.NumberOfBidders)
	assert.False(t, flat.ContractPositions.IsZero())
	assert.Equal(t, requirements.Pathway(fixtures[0].payload), requirements.Pathway(fixtures[1].payload))
	assert.Equal(t, fixtures[0].negotiationID, fixtures[1].negotiationID)
}
