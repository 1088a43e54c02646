package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"contractpilot/internal/model"
)

// ArtifactRepo handles MongoDB operations for completion artifacts
type ArtifactRepo interface {
	Save(ctx context.Context, artifact *model.CompletionArtifact) error
	Get(ctx context.Context, assessmentID string) (*model.CompletionArtifact, error)
	ListByNegotiation(ctx context.Context, negotiationID string) ([]*model.CompletionArtifact, error)
}

type artifactRepo struct {
	collection *mongo.Collection
}

// NewArtifactRepo creates a new artifact repository
func NewArtifactRepo(db *mongo.Database) ArtifactRepo {
	return &artifactRepo{
		collection: db.Collection("leverage_assessments"),
	}
}

func (r *artifactRepo) Save(ctx context.Context, artifact *model.CompletionArtifact) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": artifact.AssessmentID}, artifact, opts)
	return err
}

func (r *artifactRepo) Get(ctx context.Context, assessmentID string) (*model.CompletionArtifact, error) {
	var artifact model.CompletionArtifact
	err := r.collection.FindOne(ctx, bson.M{"_id": assessmentID}).Decode(&artifact)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

func (r *artifactRepo) ListByNegotiation(ctx context.Context, negotiationID string) ([]*model.CompletionArtifact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"negotiationId": negotiationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var artifacts []*model.CompletionArtifact
	if err := cursor.All(ctx, &artifacts); err != nil {
		return nil, err
	}
	return artifacts, nil
}
