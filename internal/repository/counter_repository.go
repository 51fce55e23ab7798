package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// SerialCounter is the name of the registration serial number sequence.
const SerialCounter = "sln"

// CounterRepository allocates monotonically increasing sequence values via
// an atomic increment on a single counter document, so concurrent approvals
// can never observe the same value.
type CounterRepository struct {
	col *mongo.Collection
}

// NewCounterRepository constructs a CounterRepository.
func NewCounterRepository(db *mongo.Database) *CounterRepository {
	return &CounterRepository{col: db.Collection(countersCollection)}
}

// Next returns the next value of the named sequence, starting at 1.
func (r *CounterRepository) Next(ctx context.Context, name string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Value int `bson:"value"`
	}
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return counter.Value, nil
}
