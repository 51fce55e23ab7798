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

const submissionsCollection = "student_submissions"

// SubmissionRepository manages registration submissions in the document store.
type SubmissionRepository struct {
	col *mongo.Collection
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *mongo.Database) *SubmissionRepository {
	return &SubmissionRepository{col: db.Collection(submissionsCollection)}
}

// EnsureIndexes creates the unique USN index guarding duplicate submissions.
func (r *SubmissionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "usn", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create usn index: %w", err)
	}
	return nil
}

// Create inserts a new submission. A USN collision surfaces as ErrDuplicate.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	result, err := r.col.InsertOne(ctx, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return appErrors.Clone(appErrors.ErrDuplicate,
				fmt.Sprintf("a submission with USN %s already exists", sub.USN))
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		sub.ID = oid
	}
	return nil
}

// FindByID fetches a submission by its document ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid submission ID")
	}
	var sub models.Submission
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&sub); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return &sub, nil
}

// FindByUSN fetches a submission by its normalized USN.
func (r *SubmissionRepository) FindByUSN(ctx context.Context, usn string) (*models.Submission, error) {
	var sub models.Submission
	if err := r.col.FindOne(ctx, bson.M{"usn": usn}).Decode(&sub); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("find submission by usn: %w", err)
	}
	return &sub, nil
}

// List returns submissions matching the filter plus the total match count.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	query := bson.M{}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Branch != "" {
		query["branch"] = filter.Branch
	}
	if filter.Semester != nil {
		query["semester"] = *filter.Semester
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"student_name": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"usn": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: -1}}).
		SetSkip(int64((page - 1) * size)).
		SetLimit(int64(size))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, 0, fmt.Errorf("decode submissions: %w", err)
	}
	return subs, int(total), nil
}

// Update replaces the stored document for a submission. Per-record writes
// are single-document and therefore atomic.
func (r *SubmissionRepository) Update(ctx context.Context, sub *models.Submission) error {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": sub.ID}, sub)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a submission document. Explicit admin delete bypasses the
// audit chain.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid submission ID")
	}
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CountByStatus returns the number of submissions holding the given status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context, status models.SubmissionStatus) (int64, error) {
	total, err := r.col.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("count submissions by status: %w", err)
	}
	return total, nil
}

// ListApproved streams all approved submissions ordered by serial number,
// used for exports and event announcements.
func (r *SubmissionRepository) ListApproved(ctx context.Context, branch string) ([]models.Submission, error) {
	query := bson.M{"status": models.SubmissionApproved}
	if branch != "" {
		query["branch"] = branch
	}
	cursor, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "sln", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list approved submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode approved submissions: %w", err)
	}
	return subs, nil
}

// ListApprovedMatching returns approved submissions matching the bulk
// recipient filter. Empty filter slices match all approved students.
func (r *SubmissionRepository) ListApprovedMatching(ctx context.Context, filter models.BulkRecipientFilter) ([]models.Submission, error) {
	query := bson.M{"status": models.SubmissionApproved}
	if len(filter.Branch) > 0 {
		query["branch"] = bson.M{"$in": filter.Branch}
	}
	if len(filter.Semester) > 0 {
		query["semester"] = bson.M{"$in": filter.Semester}
	}
	if len(filter.USN) > 0 {
		query["usn"] = bson.M{"$in": filter.USN}
	}
	cursor, err := r.col.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list approved submissions: %w", err)
	}
	defer cursor.Close(ctx)

	var subs []models.Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, fmt.Errorf("decode approved submissions: %w", err)
	}
	return subs, nil
}
