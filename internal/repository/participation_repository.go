package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

const participationCollection = "event_participation_requests"

// ParticipationRepository manages event participation requests in the
// document store.
type ParticipationRepository struct {
	col *mongo.Collection
}

// NewParticipationRepository constructs a ParticipationRepository.
func NewParticipationRepository(db *mongo.Database) *ParticipationRepository {
	return &ParticipationRepository{col: db.Collection(participationCollection)}
}

// EnsureIndexes creates the unique (usn, event_id) index.
func (r *ParticipationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "usn", Value: 1}, {Key: "event_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create participation index: %w", err)
	}
	return nil
}

// Create inserts a new participation request. A (USN, event) collision
// surfaces as ErrDuplicate.
func (r *ParticipationRepository) Create(ctx context.Context, p *models.Participation) error {
	result, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErrors.Clone(appErrors.ErrDuplicate,
				"a participation request for this event already exists")
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// FindByID fetches a participation request by document ID.
func (r *ParticipationRepository) FindByID(ctx context.Context, id string) (*models.Participation, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid participation ID")
	}
	var p models.Participation
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("find participation: %w", err)
	}
	return &p, nil
}

// List returns participation requests matching the filter, newest first.
func (r *ParticipationRepository) List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, error) {
	query := bson.M{}
	if filter.EventID != 0 {
		query["event_id"] = filter.EventID
	}
	if filter.USN != "" {
		query["usn"] = filter.USN
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}

	cursor, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "submitted_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list participation: %w", err)
	}
	defer cursor.Close(ctx)

	var requests []models.Participation
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("decode participation: %w", err)
	}
	return requests, nil
}

// Update replaces the stored document for a participation request.
func (r *ParticipationRepository) Update(ctx context.Context, p *models.Participation) error {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("update participation: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DeleteByEvent removes every participation request attached to an event,
// used when an event is deleted.
func (r *ParticipationRepository) DeleteByEvent(ctx context.Context, eventID int64) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"event_id": eventID}); err != nil {
		return fmt.Errorf("delete participation by event: %w", err)
	}
	return nil
}

// CountByStatus returns the number of requests holding the given status.
func (r *ParticipationRepository) CountByStatus(ctx context.Context, status models.ParticipationStatus) (int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("count participation by status: %w", err)
	}
	return total, nil
}
