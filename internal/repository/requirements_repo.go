package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RequirementsRepo reads raw deal-requirements payloads as the upstream
// service stored them. Payloads keep whatever shape they were written in.
type RequirementsRepo interface {
	// FindRaw returns the newest payload for a negotiation, or nil when none exists
	FindRaw(ctx context.Context, negotiationID string) (map[string]any, error)
	Insert(ctx context.Context, negotiationID string, payload map[string]any) error
}

type requirementsRepo struct {
	collection *mongo.Collection
}

// NewRequirementsRepo creates a new requirements repository
func NewRequirementsRepo(db *mongo.Database) RequirementsRepo {
	return &requirementsRepo{
		collection: db.Collection("deal_requirements"),
	}
}

func (r *requirementsRepo) FindRaw(ctx context.Context, negotiationID string) (map[string]any, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "storedAt", Value: -1}})

	var raw bson.Raw
	err := r.collection.FindOne(ctx, bson.M{"negotiationId": negotiationID}, opts).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rawToMap(raw)
}

func (r *requirementsRepo) Insert(ctx context.Context, negotiationID string, payload map[string]any) error {
	doc := bson.M{}
	for k, v := range payload {
		doc[k] = v
	}
	doc["negotiationId"] = negotiationID
	doc["storedAt"] = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

// rawToMap converts a BSON document into the plain JSON-shaped map the
// normalizer expects, dropping storage bookkeeping fields.
func rawToMap(raw bson.Raw) (map[string]any, error) {
	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert requirements document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode requirements document: %w", err)
	}
	delete(out, "_id")
	delete(out, "storedAt")
	return out, nil
}
