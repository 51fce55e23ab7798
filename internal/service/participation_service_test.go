package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/zeenat-khan28/sports-dbms/internal/models"
	appErrors "github.com/zeenat-khan28/sports-dbms/pkg/errors"
	"github.com/zeenat-khan28/sports-dbms/pkg/mailer"
)

type mockParticipationRepo struct {
	byID    map[string]*models.Participation
	byKey   map[string]*models.Participation
	deleted []int64
}

func newMockParticipationRepo() *mockParticipationRepo {
	return &mockParticipationRepo{
		byID:  make(map[string]*models.Participation),
		byKey: make(map[string]*models.Participation),
	}
}

func participationKey(usn string, eventID int64) string {
	return fmt.Sprintf("%s/%d", usn, eventID)
}

func (m *mockParticipationRepo) add(p *models.Participation) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.byID[p.ID.Hex()] = p
	m.byKey[participationKey(p.USN, p.EventID)] = p
}

func (m *mockParticipationRepo) Create(ctx context.Context, p *models.Participation) error {
	if _, exists := m.byKey[participationKey(p.USN, p.EventID)]; exists {
		return appErrors.Clone(appErrors.ErrDuplicate, "a participation request for this event already exists")
	}
	m.add(p)
	return nil
}

func (m *mockParticipationRepo) FindByID(ctx context.Context, id string) (*models.Participation, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	copied := *p
	return &copied, nil
}

func (m *mockParticipationRepo) List(ctx context.Context, filter models.ParticipationFilter) ([]models.Participation, error) {
	var requests []models.Participation
	for _, p := range m.byID {
		if filter.EventID != 0 && p.EventID != filter.EventID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		requests = append(requests, *p)
	}
	return requests, nil
}

func (m *mockParticipationRepo) Update(ctx context.Context, p *models.Participation) error {
	copied := *p
	m.byID[p.ID.Hex()] = &copied
	m.byKey[participationKey(p.USN, p.EventID)] = &copied
	return nil
}

func (m *mockParticipationRepo) DeleteByEvent(ctx context.Context, eventID int64) error {
	m.deleted = append(m.deleted, eventID)
	return nil
}

type mockEventRepo struct {
	events map[int64]*models.EventDetail
}

func (m *mockEventRepo) FindByID(ctx context.Context, id int64) (*models.EventDetail, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return event, nil
}

type mockParticipantMirror struct {
	participants []*models.ApprovedParticipant
	err          error
}

func (m *mockParticipantMirror) UpsertParticipant(ctx context.Context, participant *models.ApprovedParticipant) error {
	if m.err != nil {
		return m.err
	}
	m.participants = append(m.participants, participant)
	return nil
}

type mockNotifier struct {
	messages []mailer.Message
}

func (m *mockNotifier) Notify(msg mailer.Message) {
	m.messages = append(m.messages, msg)
}

func openEvent(id int64) *models.EventDetail {
	return &models.EventDetail{Event: models.Event{
		ID:        id,
		Name:      "Inter-College Athletics",
		StartDate: time.Now().AddDate(0, 0, 1),
		EndDate:   time.Now().AddDate(0, 0, 3),
	}}
}

func endedEvent(id int64) *models.EventDetail {
	return &models.EventDetail{Event: models.Event{
		ID:        id,
		Name:      "Last Year's Meet",
		StartDate: time.Now().AddDate(0, 0, -10),
		EndDate:   time.Now().AddDate(0, 0, -5),
	}}
}

func newParticipationFixture() (*ParticipationService, *mockParticipationRepo, *mockEventRepo, *mockSubmissionRepo, *mockParticipantMirror, *mockChain, *mockNotifier) {
	repo := newMockParticipationRepo()
	events := &mockEventRepo{events: make(map[int64]*models.EventDetail)}
	submissions := newMockSubmissionRepo()
	mirror := &mockParticipantMirror{}
	chain := &mockChain{}
	notify := &mockNotifier{}
	svc := NewParticipationService(repo, events, submissions, mirror, chain, notify, validator.New(), zap.NewNop())
	return svc, repo, events, submissions, mirror, chain, notify
}

func approvedSubmission(usn string) *models.Submission {
	sub := pendingSubmission(usn)
	sub.Status = models.SubmissionApproved
	sln := 1
	sub.SerialNumber = &sln
	return sub
}

func TestParticipationServiceCreateRequiresApprovedRegistration(t *testing.T) {
	svc, _, events, submissions, _, _, _ := newParticipationFixture()
	events.events[5] = openEvent(5)
	submissions.add(pendingSubmission("1RV23CS001"))

	_, err := svc.Create(context.Background(), CreateParticipationRequest{USN: "1RV23CS001", EventID: 5})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestParticipationServiceCreateRejectsEndedEvent(t *testing.T) {
	svc, _, events, submissions, _, _, _ := newParticipationFixture()
	events.events[5] = endedEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))

	_, err := svc.Create(context.Background(), CreateParticipationRequest{USN: "1RV23CS001", EventID: 5})
	assert.True(t, appErrors.Is(err, appErrors.ErrEventEnded))
}

func TestParticipationServiceCreateDuplicate(t *testing.T) {
	svc, repo, events, submissions, _, _, _ := newParticipationFixture()
	events.events[5] = openEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))
	repo.add(&models.Participation{USN: "1RV23CS001", EventID: 5, Status: models.ParticipationPending})

	_, err := svc.Create(context.Background(), CreateParticipationRequest{USN: "1rv23cs001", EventID: 5})
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
}

func TestParticipationServiceCreateSuccess(t *testing.T) {
	svc, _, events, submissions, _, _, _ := newParticipationFixture()
	events.events[5] = openEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))

	p, err := svc.Create(context.Background(), CreateParticipationRequest{USN: " 1rv23cs001 ", EventID: 5})
	require.NoError(t, err)
	assert.Equal(t, "1RV23CS001", p.USN)
	assert.Equal(t, "Inter-College Athletics", p.EventName)
	assert.Equal(t, models.ParticipationPending, p.Status)
}

func TestParticipationServiceDecideSelectMirrorsAndNotifies(t *testing.T) {
	svc, repo, events, submissions, mirror, chain, notify := newParticipationFixture()
	events.events[5] = openEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))
	p := &models.Participation{USN: "1RV23CS001", StudentName: "Asha R", EventID: 5, EventName: "Inter-College Athletics", Status: models.ParticipationPending}
	repo.add(p)

	decided, err := svc.Decide(context.Background(), p.ID.Hex(), "admin@rvce.edu.in", 7, DecideParticipationRequest{Status: models.ParticipationSelected})
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationSelected, decided.Status)
	require.NotNil(t, decided.AuditHash)

	require.Len(t, chain.entries, 1)
	assert.Equal(t, models.AuditActionSelected, chain.entries[0].Action)
	assert.Equal(t, int64(5), chain.entries[0].EventID)

	require.Len(t, mirror.participants, 1)
	assert.Equal(t, "1RV23CS001", mirror.participants[0].USN)
	require.NotNil(t, mirror.participants[0].ApprovedBy)
	assert.Equal(t, int64(7), *mirror.participants[0].ApprovedBy)

	require.Len(t, notify.messages, 1)
	assert.Equal(t, "asha@rvce.edu.in", notify.messages[0].To)
}

func TestParticipationServiceDecideDropSkipsMirror(t *testing.T) {
	svc, repo, events, submissions, mirror, chain, notify := newParticipationFixture()
	events.events[5] = openEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))
	p := &models.Participation{USN: "1RV23CS001", EventID: 5, Status: models.ParticipationPending}
	repo.add(p)

	decided, err := svc.Decide(context.Background(), p.ID.Hex(), "admin@rvce.edu.in", 7, DecideParticipationRequest{Status: models.ParticipationDropped})
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationDropped, decided.Status)
	assert.Len(t, chain.entries, 1)
	assert.Empty(t, mirror.participants)
	assert.Empty(t, notify.messages)
}

func TestParticipationServiceDecideSelectEndedEventFails(t *testing.T) {
	svc, repo, events, submissions, _, chain, _ := newParticipationFixture()
	events.events[5] = endedEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))
	p := &models.Participation{USN: "1RV23CS001", EventID: 5, Status: models.ParticipationPending}
	repo.add(p)

	_, err := svc.Decide(context.Background(), p.ID.Hex(), "admin@rvce.edu.in", 7, DecideParticipationRequest{Status: models.ParticipationSelected})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
	assert.Empty(t, chain.entries)
}

func TestParticipationServiceDecideTwiceFails(t *testing.T) {
	svc, repo, events, submissions, _, _, _ := newParticipationFixture()
	events.events[5] = openEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))
	p := &models.Participation{USN: "1RV23CS001", StudentName: "Asha R", EventID: 5, Status: models.ParticipationPending}
	repo.add(p)

	_, err := svc.Decide(context.Background(), p.ID.Hex(), "admin@rvce.edu.in", 7, DecideParticipationRequest{Status: models.ParticipationSelected})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), p.ID.Hex(), "admin@rvce.edu.in", 7, DecideParticipationRequest{Status: models.ParticipationDropped})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidTransition))
}

func TestParticipationServiceDecideSurvivesMirrorFailure(t *testing.T) {
	svc, repo, events, submissions, mirror, _, _ := newParticipationFixture()
	events.events[5] = openEvent(5)
	submissions.add(approvedSubmission("1RV23CS001"))
	mirror.err = fmt.Errorf("relational store down")
	p := &models.Participation{USN: "1RV23CS001", StudentName: "Asha R", EventID: 5, Status: models.ParticipationPending}
	repo.add(p)

	decided, err := svc.Decide(context.Background(), p.ID.Hex(), "admin@rvce.edu.in", 7, DecideParticipationRequest{Status: models.ParticipationSelected})
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationSelected, decided.Status)
}
