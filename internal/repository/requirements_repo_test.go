package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"contractpilot/internal/requirements"
)

func TestRawToMap_FeedsNormalizer(t *testing.T) {
	doc, err := bson.Marshal(bson.M{
		"_id":           "abc",
		"negotiationId": "neg-1",
		"storedAt":      time.Now(),
		"requirements": bson.M{
			"numberOfBidders":   "4+",
			"dealValue":         int64(1500000),
			"contractPositions": `{"liabilityCap": 150}`,
		},
		"customer": bson.M{"company_name": "Acme"},
	})
	require.NoError(t, err)

	raw, err := rawToMap(bson.Raw(doc))
	require.NoError(t, err)

	assert.NotContains(t, raw, "_id")
	assert.NotContains(t, raw, "storedAt")
	assert.Equal(t, "neg-1", raw["negotiationId"])

	req := requirements.Normalize(raw)
	assert.Equal(t, "4+", req.NumberOfBidders)
	assert.Equal(t, "1500000", req.DealValue)
	assert.Equal(t, 150.0, req.ContractPositions.LiabilityCap)
	assert.Equal(t, "Acme", req.CompanyName)
}
