package draft

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"folio/internal/nominee/metrics"
	"folio/internal/nominee/models"
	"folio/internal/nominee/validate"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

var storeNow = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

type DraftStoreSuite struct {
	suite.Suite
	store  *Store
	userID domain.UserID
	ctx    context.Context
}

func (s *DraftStoreSuite) SetupTest() {
	s.store = New(WithClock(func() time.Time { return storeNow }))
	s.userID = domain.UserID(uuid.New())
	s.ctx = context.Background()
}

func TestDraftStoreSuite(t *testing.T) {
	suite.Run(t, new(DraftStoreSuite))
}

func (s *DraftStoreSuite) seedCommitted(nominees ...*models.Nominee) {
	s.store.SetCommitted(s.ctx, s.userID, nominees)
}

func (s *DraftStoreSuite) stageValidDraft(name, pan string, allocation int) {
	_, err := s.store.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)
	s.applyField(models.FieldName, name)
	s.applyField(models.FieldRelationship, "SPOUSE")
	s.applyField(models.FieldDateOfBirth, "1988-11-02")
	s.applyField(models.FieldAllocation, strconv.Itoa(allocation))
	if pan != "" {
		s.applyField(models.FieldPAN, pan)
	}
	errs, err := s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.True(s.T(), errs.Valid(), "unexpected field errors: %v", errs)
}

func (s *DraftStoreSuite) applyField(field models.Field, value string) {
	_, err := s.store.UpdateField(s.ctx, s.userID, field, value)
	require.NoError(s.T(), err)
}

func (s *DraftStoreSuite) TestStartAddAndStage() {
	s.stageValidDraft("Asha Verma", "ABCDE1234F", 100)

	_, pending := s.store.Snapshot(s.ctx, s.userID)
	require.Len(s.T(), pending, 1)
	assert.Equal(s.T(), "Asha Verma", pending[0].Name)
	assert.Equal(s.T(), "ABCDE1234F", pending[0].PAN)

	// Current draft is cleared after staging.
	_, _, err := s.store.Current(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DraftStoreSuite) TestStartAdd_RejectsFourthActive() {
	s.seedCommitted(
		&models.Nominee{ID: "nom-1", Name: "a", Allocation: 30},
		&models.Nominee{ID: "nom-2", Name: "b", Allocation: 30},
		&models.Nominee{ID: "nom-3", Name: "c", Allocation: 40},
	)

	_, err := s.store.StartAdd(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeLimitExceeded))
}

func (s *DraftStoreSuite) TestStartAdd_OptedOutDoesNotCount() {
	s.seedCommitted(
		&models.Nominee{ID: "nom-1", Name: "a", Allocation: 50},
		&models.Nominee{ID: "nom-2", Name: "b", Allocation: 50},
		&models.Nominee{ID: "nom-3", Name: "c", Allocation: 100, OptedOut: true},
	)

	_, err := s.store.StartAdd(s.ctx, s.userID)
	assert.NoError(s.T(), err)
}

func (s *DraftStoreSuite) TestStartAdd_CountsPendingDrafts() {
	s.seedCommitted(
		&models.Nominee{ID: "nom-1", Name: "a", Allocation: 40},
		&models.Nominee{ID: "nom-2", Name: "b", Allocation: 30},
	)
	s.stageValidDraft("Ravi Nair", "", 30)

	_, err := s.store.StartAdd(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeLimitExceeded))
}

func (s *DraftStoreSuite) TestStartEdit_SeedsFromCommitted() {
	s.seedCommitted(&models.Nominee{
		ID:           "nom-1",
		Name:         "Asha Verma",
		Relationship: models.RelationshipSpouse,
		DateOfBirth:  time.Date(1988, 11, 2, 0, 0, 0, 0, time.UTC),
		Allocation:   100,
	})

	d, err := s.store.StartEdit(s.ctx, s.userID, "nom-1")
	require.NoError(s.T(), err)
	assert.True(s.T(), d.EditsCommitted)
	assert.False(s.T(), d.IsMinor)

	// Allocation is immutable when editing a committed nominee.
	_, err = s.store.UpdateField(s.ctx, s.userID, models.FieldAllocation, "50")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *DraftStoreSuite) TestStartEdit_ReopensStagedEditOfSameNominee() {
	s.seedCommitted(
		&models.Nominee{
			ID:           "nom-1",
			Name:         "Asha Verma",
			Relationship: models.RelationshipSpouse,
			DateOfBirth:  time.Date(1988, 11, 2, 0, 0, 0, 0, time.UTC),
			Allocation:   60,
			Email:        "asha@example.com",
			PAN:          "ABCDE1234F",
		},
		&models.Nominee{
			ID:           "nom-2",
			Name:         "Ravi Nair",
			Relationship: models.RelationshipBrother,
			DateOfBirth:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			Allocation:   40,
		},
	)

	_, err := s.store.StartEdit(s.ctx, s.userID, "nom-1")
	require.NoError(s.T(), err)
	s.applyField(models.FieldEmail, "asha.v@example.com")
	errs, err := s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.True(s.T(), errs.Valid())

	// A second edit of the same nominee reopens the staged draft, keeping
	// the first change, rather than seeding a duplicate from committed.
	d, err := s.store.StartEdit(s.ctx, s.userID, "nom-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "asha.v@example.com", d.Email)

	// Restaging must not flag the unchanged PAN as colliding with the
	// nominee's own committed record.
	s.applyField(models.FieldName, "Asha V")
	errs, err = s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.True(s.T(), errs.Valid(), "unexpected field errors: %v", errs)

	committed, pending := s.store.Snapshot(s.ctx, s.userID)
	require.Len(s.T(), pending, 1)
	assert.Equal(s.T(), "Asha V", pending[0].Name)
	assert.Equal(s.T(), "asha.v@example.com", pending[0].Email)
	assert.True(s.T(), validate.AllocationTotal(committed, pending).Valid())
}

func (s *DraftStoreSuite) TestStartEdit_NotFound() {
	_, err := s.store.StartEdit(s.ctx, s.userID, "missing")
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DraftStoreSuite) TestStage_DuplicatePANRejected() {
	s.stageValidDraft("Asha Verma", "ABCDE1234F", 60)

	_, err := s.store.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)
	s.applyField(models.FieldName, "Ravi Nair")
	s.applyField(models.FieldRelationship, "BROTHER")
	s.applyField(models.FieldDateOfBirth, "1990-01-01")
	s.applyField(models.FieldAllocation, "40")
	s.applyField(models.FieldPAN, "ABCDE1234F")

	errs, err := s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), errs, "pan")

	// The failing draft was not staged.
	_, pending := s.store.Snapshot(s.ctx, s.userID)
	assert.Len(s.T(), pending, 1)

	// And the current draft is still live for correction.
	_, fieldErrs, err := s.store.Current(s.ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), fieldErrs, "pan")
}

func (s *DraftStoreSuite) TestUpdateField_ClearsFieldErrorOptimistically() {
	s.stageValidDraft("Asha Verma", "ABCDE1234F", 60)

	_, err := s.store.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)
	s.applyField(models.FieldName, "Ravi Nair")
	s.applyField(models.FieldRelationship, "BROTHER")
	s.applyField(models.FieldDateOfBirth, "1990-01-01")
	s.applyField(models.FieldAllocation, "40")
	s.applyField(models.FieldPAN, "ABCDE1234F")

	errs, err := s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.Contains(s.T(), errs, "pan")

	s.applyField(models.FieldPAN, "XYZAB9876K")
	_, fieldErrs, err := s.store.Current(s.ctx, s.userID)
	require.NoError(s.T(), err)
	assert.NotContains(s.T(), fieldErrs, "pan")

	errs, err = s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	assert.True(s.T(), errs.Valid())
}

func (s *DraftStoreSuite) TestStageEditPending_ReplacesInPlace() {
	s.stageValidDraft("Asha Verma", "", 60)
	s.stageValidDraft("Ravi Nair", "", 40)

	_, err := s.store.StartEditPending(s.ctx, s.userID, 0)
	require.NoError(s.T(), err)
	s.applyField(models.FieldName, "Asha V")

	errs, err := s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.True(s.T(), errs.Valid())

	_, pending := s.store.Snapshot(s.ctx, s.userID)
	require.Len(s.T(), pending, 2)
	assert.Equal(s.T(), "Asha V", pending[0].Name)
	assert.Equal(s.T(), "Ravi Nair", pending[1].Name)
}

func (s *DraftStoreSuite) TestRemovePending() {
	s.stageValidDraft("Asha Verma", "", 60)
	s.stageValidDraft("Ravi Nair", "", 40)

	require.NoError(s.T(), s.store.RemovePending(s.ctx, s.userID, 0))

	_, pending := s.store.Snapshot(s.ctx, s.userID)
	require.Len(s.T(), pending, 1)
	assert.Equal(s.T(), "Ravi Nair", pending[0].Name)

	err := s.store.RemovePending(s.ctx, s.userID, 5)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DraftStoreSuite) TestCancelDraft() {
	_, err := s.store.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)

	s.store.CancelDraft(s.ctx, s.userID)

	_, _, err = s.store.Current(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DraftStoreSuite) TestCompleteCommit_ClearsDrafts() {
	s.stageValidDraft("Asha Verma", "", 60)
	s.stageValidDraft("Ravi Nair", "", 40)

	authoritative := []*models.Nominee{
		{ID: "nom-1", Name: "Asha Verma", Allocation: 60},
		{ID: "nom-2", Name: "Ravi Nair", Allocation: 40},
	}
	s.store.CompleteCommit(s.ctx, s.userID, authoritative)

	committed, pending := s.store.Snapshot(s.ctx, s.userID)
	assert.Len(s.T(), committed, 2)
	assert.Empty(s.T(), pending)
}

func (s *DraftStoreSuite) TestMarkOptedOut() {
	s.seedCommitted(&models.Nominee{ID: "nom-1", Name: "a", Allocation: 100})
	s.stageValidDraft("Ravi Nair", "", 40)

	s.store.MarkOptedOut(s.ctx, s.userID)

	committed, pending := s.store.Snapshot(s.ctx, s.userID)
	require.Len(s.T(), committed, 1)
	assert.True(s.T(), committed[0].OptedOut)
	assert.Empty(s.T(), pending)
}

func (s *DraftStoreSuite) TestStartAdd_LimitMessageTracksConfiguredMax() {
	store := New(
		WithClock(func() time.Time { return storeNow }),
		WithMaxActive(1),
	)
	seedOne := []*models.Nominee{{ID: "nom-1", Name: "a", Allocation: 100}}
	store.SetCommitted(s.ctx, s.userID, seedOne)

	_, err := store.StartAdd(s.ctx, s.userID)
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeLimitExceeded))
	assert.Contains(s.T(), err.Error(), "maximum of 1 nominees allowed")
}

func (s *DraftStoreSuite) TestCurrent_ReturnsCopies() {
	_, err := s.store.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)
	s.applyField(models.FieldName, "Asha Verma")

	d, _, err := s.store.Current(s.ctx, s.userID)
	require.NoError(s.T(), err)
	d.Name = "mutated"

	fresh, _, err := s.store.Current(s.ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Asha Verma", fresh.Name)
}

func (s *DraftStoreSuite) TestCurrent_ErrorMapIsACopy() {
	s.stageValidDraft("Asha Verma", "ABCDE1234F", 60)

	_, err := s.store.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)
	s.applyField(models.FieldName, "Ravi Nair")
	s.applyField(models.FieldRelationship, "BROTHER")
	s.applyField(models.FieldDateOfBirth, "1990-01-01")
	s.applyField(models.FieldAllocation, "40")
	s.applyField(models.FieldPAN, "ABCDE1234F")

	_, err = s.store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)

	_, fieldErrs, err := s.store.Current(s.ctx, s.userID)
	require.NoError(s.T(), err)
	delete(fieldErrs, "pan")

	_, fresh, err := s.store.Current(s.ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Contains(s.T(), fresh, "pan")
}

func (s *DraftStoreSuite) TestMetrics_CountDraftLifecycle() {
	collectors := &metrics.Metrics{
		DraftsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drafts_started_test",
		}, []string{"mode"}),
		DraftsStaged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drafts_staged_test",
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "validation_failures_test",
		}, []string{"stage"}),
	}
	store := New(
		WithClock(func() time.Time { return storeNow }),
		WithMetrics(collectors),
	)

	_, err := store.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)
	for field, value := range map[models.Field]string{
		models.FieldName:         "Asha Verma",
		models.FieldRelationship: "SPOUSE",
		models.FieldDateOfBirth:  "1988-11-02",
	} {
		_, err = store.UpdateField(s.ctx, s.userID, field, value)
		require.NoError(s.T(), err)
	}

	// Allocation missing, so the first staging attempt is rejected.
	errs, err := store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.False(s.T(), errs.Valid())

	_, err = store.UpdateField(s.ctx, s.userID, models.FieldAllocation, "100")
	require.NoError(s.T(), err)
	errs, err = store.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.True(s.T(), errs.Valid())

	assert.Equal(s.T(), 1.0, testutil.ToFloat64(collectors.DraftsStarted.WithLabelValues("add")))
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(collectors.ValidationFailures.WithLabelValues("stage")))
	assert.Equal(s.T(), 1.0, testutil.ToFloat64(collectors.DraftsStaged))
}

func (s *DraftStoreSuite) TestSnapshot_ReturnsCopies() {
	s.seedCommitted(&models.Nominee{ID: "nom-1", Name: "a", Allocation: 100})

	committed, _ := s.store.Snapshot(s.ctx, s.userID)
	committed[0].Name = "mutated"

	fresh, _ := s.store.Snapshot(s.ctx, s.userID)
	assert.Equal(s.T(), "a", fresh[0].Name)
}
