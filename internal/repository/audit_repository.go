package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
)

const auditCollection = "audit_blocks"

type storedBlock struct {
	models.AuditBlock `bson:",inline"`
	CreatedAt         time.Time `bson:"created_at"`
}

// AuditRepository persists audit chain blocks append-only. It backs the
// ledger so the chain tail survives process restarts.
type AuditRepository struct {
	col *mongo.Collection
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

// AppendBlock stores a new chain block. Blocks are never updated or deleted.
func (r *AuditRepository) AppendBlock(ctx context.Context, block *models.AuditBlock) error {
	doc := storedBlock{AuditBlock: *block, CreatedAt: time.Now().UTC()}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("append audit block: %w", err)
	}
	return nil
}

// LastHash returns the hash of the most recently written block, or the empty
// string when the chain has no blocks yet.
func (r *AuditRepository) LastHash(ctx context.Context) (string, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	var last storedBlock
	if err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&last); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", nil
		}
		return "", fmt.Errorf("load last audit block: %w", err)
	}
	return last.Hash, nil
}

// FindByHash fetches a single block for verification.
func (r *AuditRepository) FindByHash(ctx context.Context, hash string) (*models.AuditBlock, error) {
	var block storedBlock
	if err := r.col.FindOne(ctx, bson.M{"hash": hash}).Decode(&block); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("find audit block: %w", err)
	}
	result := block.AuditBlock
	return &result, nil
}
