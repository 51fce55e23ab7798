package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/ledger"
	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
)

type mockSubmissionRepo struct {
	byID      map[string]*models.Submission
	byUSN     map[string]*models.Submission
	createErr error
	updateErr error
	updated   []*models.Submission
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{
		byID:  make(map[string]*models.Submission),
		byUSN: make(map[string]*models.Submission),
	}
}

func (m *mockSubmissionRepo) add(sub *models.Submission) {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	m.byID[sub.ID.Hex()] = sub
	m.byUSN[sub.USN] = sub
}

func (m *mockSubmissionRepo) Create(ctx context.Context, sub *models.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.byUSN[sub.USN]; exists {
		return appErrors.Clone(appErrors.ErrDuplicate, "a submission with USN "+sub.USN+" already exists")
	}
	m.add(sub)
	return nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	sub, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *sub
	return &copied, nil
}

func (m *mockSubmissionRepo) FindByUSN(ctx context.Context, usn string) (*models.Submission, error) {
	sub, ok := m.byUSN[usn]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *sub
	return &copied, nil
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	var subs []models.Submission
	for _, sub := range m.byID {
		subs = append(subs, *sub)
	}
	return subs, len(subs), nil
}

func (m *mockSubmissionRepo) Update(ctx context.Context, sub *models.Submission) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *sub
	m.byID[sub.ID.Hex()] = &copied
	m.byUSN[sub.USN] = &copied
	m.updated = append(m.updated, &copied)
	return nil
}

func (m *mockSubmissionRepo) Delete(ctx context.Context, id string) error {
	sub, ok := m.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.byID, id)
	delete(m.byUSN, sub.USN)
	return nil
}

func (m *mockSubmissionRepo) ListApproved(ctx context.Context, branch string) ([]models.Submission, error) {
	var subs []models.Submission
	for _, sub := range m.byID {
		if sub.Status == models.SubmissionApproved {
			subs = append(subs, *sub)
		}
	}
	return subs, nil
}

type mockCounter struct {
	value int
	err   error
}

func (m *mockCounter) Next(ctx context.Context, name string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.value++
	return m.value, nil
}

type mockStudentMirror struct {
	students []*models.ApprovedStudent
	err      error
}

func (m *mockStudentMirror) UpsertStudent(ctx context.Context, student *models.ApprovedStudent) error {
	if m.err != nil {
		return m.err
	}
	m.students = append(m.students, student)
	return nil
}

type mockChain struct {
	entries []ledger.Entry
	err     error
}

func (m *mockChain) Append(ctx context.Context, e ledger.Entry) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.entries = append(m.entries, e)
	return fmt.Sprintf("%064d", len(m.entries)), nil
}

func pendingSubmission(usn string) *models.Submission {
	return &models.Submission{
		ID:          primitive.NewObjectID(),
		StudentName: "Asha R",
		USN:         usn,
		Email:       "asha@rvce.edu.in",
		Branch:      "CSE",
		Semester:    4,
		Status:      models.SubmissionPending,
	}
}

func newSubmissionFixture() (*SubmissionService, *mockSubmissionRepo, *mockCounter, *mockStudentMirror, *mockChain) {
	repo := newMockSubmissionRepo()
	counter := &mockCounter{}
	mirror := &mockStudentMirror{}
	chain := &mockChain{}
	svc := NewSubmissionService(repo, counter, mirror, chain, validator.New(), zap.NewNop())
	return svc, repo, counter, mirror, chain
}

func TestSubmissionServiceCreateNormalizesUSN(t *testing.T) {
	svc, repo, _, _, _ := newSubmissionFixture()

	sub, err := svc.Create(context.Background(), CreateSubmissionRequest{
		StudentName:    "Asha R",
		USN:            "  1rv23cs001 ",
		Email:          "asha@rvce.edu.in",
		Branch:         "CSE",
		Semester:       4,
		DateOfBirth:    "2005-01-15",
		ContactAddress: "Bengaluru",
		BloodGroup:     "O+",
		Phone:          "9999999999",
		ParentName:     "Ravi",
		MotherName:     "Lakshmi",
	})
	require.NoError(t, err)
	assert.Equal(t, "1RV23CS001", sub.USN)
	assert.Equal(t, models.SubmissionPending, sub.Status)
	assert.Nil(t, sub.SerialNumber)
	_, ok := repo.byUSN["1RV23CS001"]
	assert.True(t, ok)
}

func TestSubmissionServiceCreateDuplicateUSN(t *testing.T) {
	svc, repo, _, _, _ := newSubmissionFixture()
	repo.add(pendingSubmission("1RV23CS001"))

	_, err := svc.Create(context.Background(), CreateSubmissionRequest{
		StudentName:    "Asha R",
		USN:            "1rv23cs001",
		Email:          "asha@rvce.edu.in",
		Branch:         "CSE",
		Semester:       4,
		DateOfBirth:    "2005-01-15",
		ContactAddress: "Bengaluru",
		BloodGroup:     "O+",
		Phone:          "9999999999",
		ParentName:     "Ravi",
		MotherName:     "Lakshmi",
	})
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
}

func TestSubmissionServiceApproveAssignsSerialOnce(t *testing.T) {
	svc, repo, counter, mirror, chain := newSubmissionFixture()
	sub := pendingSubmission("1RV23CS001")
	repo.add(sub)

	approved, err := svc.Approve(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in")
	require.NoError(t, err)
	require.NotNil(t, approved.SerialNumber)
	assert.Equal(t, 1, *approved.SerialNumber)
	assert.Equal(t, models.SubmissionApproved, approved.Status)
	require.NotNil(t, approved.AuditHash)

	// Re-approval is idempotent: same serial, fresh audit block, re-mirror.
	again, err := svc.Approve(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in")
	require.NoError(t, err)
	require.NotNil(t, again.SerialNumber)
	assert.Equal(t, 1, *again.SerialNumber)
	assert.Equal(t, 1, counter.value)
	assert.Len(t, chain.entries, 2)
	assert.NotEqual(t, *approved.AuditHash, *again.AuditHash)
	assert.Len(t, mirror.students, 2)
}

func TestSubmissionServiceApproveSerialsAreMonotonic(t *testing.T) {
	svc, repo, _, _, _ := newSubmissionFixture()
	first := pendingSubmission("1RV23CS001")
	second := pendingSubmission("1RV23CS002")
	third := pendingSubmission("1RV23CS003")
	repo.add(first)
	repo.add(second)
	repo.add(third)

	for i, sub := range []*models.Submission{first, second, third} {
		approved, err := svc.Approve(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in")
		require.NoError(t, err)
		require.NotNil(t, approved.SerialNumber)
		assert.Equal(t, i+1, *approved.SerialNumber)
	}
}

func TestSubmissionServiceApproveCounterFailureAborts(t *testing.T) {
	svc, repo, counter, _, chain := newSubmissionFixture()
	counter.err = fmt.Errorf("counter document missing")
	sub := pendingSubmission("1RV23CS001")
	repo.add(sub)

	_, err := svc.Approve(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in")
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, chain.entries)

	stored := repo.byUSN["1RV23CS001"]
	assert.Equal(t, models.SubmissionPending, stored.Status)
	assert.Nil(t, stored.SerialNumber)
}

func TestSubmissionServiceApproveSurvivesMirrorFailure(t *testing.T) {
	svc, repo, _, mirror, _ := newSubmissionFixture()
	mirror.err = fmt.Errorf("relational store down")
	sub := pendingSubmission("1RV23CS001")
	repo.add(sub)

	approved, err := svc.Approve(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in")
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, approved.Status)
	require.NotNil(t, approved.SerialNumber)

	stored := repo.byUSN["1RV23CS001"]
	assert.Equal(t, models.SubmissionApproved, stored.Status)
}

func TestSubmissionServiceApproveRejectedFails(t *testing.T) {
	svc, repo, _, _, chain := newSubmissionFixture()
	sub := pendingSubmission("1RV23CS001")
	sub.Status = models.SubmissionRejected
	repo.add(sub)

	_, err := svc.Approve(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in")
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
	assert.Empty(t, chain.entries)
}

func TestSubmissionServiceRejectRequiresReason(t *testing.T) {
	svc, repo, _, _, _ := newSubmissionFixture()
	sub := pendingSubmission("1RV23CS001")
	repo.add(sub)

	_, err := svc.Reject(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in", RejectSubmissionRequest{Reason: "  "})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestSubmissionServiceRejectNeverAssignsSerial(t *testing.T) {
	svc, repo, counter, _, chain := newSubmissionFixture()
	sub := pendingSubmission("1RV23CS001")
	repo.add(sub)

	rejected, err := svc.Reject(context.Background(), sub.ID.Hex(), "admin@rvce.edu.in", RejectSubmissionRequest{Reason: "incomplete form"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, rejected.Status)
	assert.Nil(t, rejected.SerialNumber)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "incomplete form", *rejected.RejectionReason)
	assert.Equal(t, 0, counter.value)
	assert.Len(t, chain.entries, 1)
	assert.Equal(t, models.AuditActionRejected, chain.entries[0].Action)
}

func TestSubmissionServiceGetNotFound(t *testing.T) {
	svc, _, _, _, _ := newSubmissionFixture()

	_, err := svc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
