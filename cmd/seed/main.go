package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"contractpilot/internal/repository"
)

// Both shapes describe the same deal; the normalizer reads either.
var fixtures = []struct {
	negotiationID string
	payload       map[string]any
}{
	{
		negotiationID: "demo-tender-001",
		payload: map[string]any{
			"pathway_id":          "tendering-standard",
			"company_name":        "Northwind Logistics",
			"number_of_bidders":   "4",
			"deal_value":          "2,500,000",
			"decision_timeline":   "Flexible, Q3 award",
			"switching_costs":     "Low",
			"budget_flexibility":  "Some flexibility",
			"service_criticality": "Important",
			"incumbent_status":    "Replacing incumbent",
			"alternative_options": "Strong",
			"contract_positions":  `{"liability_cap": 150, "payment_terms": 45, "sla_target": 99.9, "termination_notice": 90}`,
			"priorities":          `{"cost": 5, "quality": 4, "speed": 3, "innovation": 2, "risk_mitigation": 4}`,
		},
	},
	{
		negotiationID: "demo-tender-001",
		payload: map[string]any{
			"metadata": map[string]any{
				"pathwayId": "tendering-standard",
			},
			"customer": map[string]any{
				"companyName": "Northwind Logistics",
			},
			"requirements": map[string]any{
				"numberOfBidders":    4,
				"dealValue":          "2,500,000",
				"decisionTimeline":   "Flexible, Q3 award",
				"switchingCosts":     "Low",
				"budgetFlexibility":  "Some flexibility",
				"serviceCriticality": "Important",
				"incumbentStatus":    "Replacing incumbent",
				"alternativeOptions": "Strong",
				"contractPositions": map[string]any{
					"liabilityCap":      150,
					"paymentTerms":      45,
					"slaTarget":         99.9,
					"terminationNotice": 90,
				},
				"priorities": map[string]any{
					"cost":           5,
					"quality":        4,
					"speed":          3,
					"innovation":     2,
					"riskMitigation": 4,
				},
			},
		},
	},
}

func main() {
	_ = godotenv.Load()

	mongoURI := flag.String("mongo", envOr("MONGO_URI", "mongodb://localhost:27017"), "MongoDB URI")
	dbName := flag.String("db", envOr("MONGO_DB", "contractpilot"), "database name")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(*mongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Disconnect(ctx)

	repo := repository.NewRequirementsRepo(client.Database(*dbName))
	for i, f := range fixtures {
		if err := repo.Insert(ctx, f.negotiationID, f.payload); err != nil {
			logger.Fatal().Err(err).Str("negotiation_id", f.negotiationID).Msg("Failed to insert fixture")
		}
		logger.Info().Int("fixture", i).Str("negotiation_id", f.negotiationID).Msg("Inserted requirements")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
