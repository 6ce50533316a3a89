package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"folio/internal/mfa"
	"folio/internal/nominee/draft"
	"folio/internal/nominee/models"
	"folio/internal/nominee/service/mocks"
	"folio/internal/nominee/validate"
	domain "folio/pkg/domain"
	dErrors "folio/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockAPI    *mocks.MockNomineeAPI
	mockTokens *mocks.MockTokenSource
	drafts     *draft.Store
	service    *Service
	userID     domain.UserID
	now        time.Time
	ctx        context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockAPI = mocks.NewMockNomineeAPI(s.ctrl)
	s.mockTokens = mocks.NewMockTokenSource(s.ctrl)
	s.userID = domain.UserID(uuid.New())
	s.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	s.ctx = context.Background()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return s.now }
	s.drafts = draft.New(draft.WithClock(clock), draft.WithLogger(logger))
	s.service = NewService(s.mockAPI, s.mockTokens, s.drafts,
		WithLogger(logger),
		WithClock(clock),
	)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// stage walks a draft through the store the way the transport layer would:
// open, fill field by field, then stage.
func (s *ServiceSuite) stage(fields map[models.Field]string) {
	_, err := s.drafts.StartAdd(s.ctx, s.userID)
	require.NoError(s.T(), err)
	for field, value := range fields {
		_, err = s.drafts.UpdateField(s.ctx, s.userID, field, value)
		require.NoError(s.T(), err)
	}
	errs, err := s.drafts.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.True(s.T(), errs.Valid(), "draft should stage cleanly: %v", errs)
}

func (s *ServiceSuite) expectToken(token string) {
	s.mockTokens.EXPECT().
		Token(gomock.Any(), s.userID, mfa.ActionNomineeUpdate).
		Return(token, true)
}

func (s *ServiceSuite) TestCommitAll_TwoNomineesSplitHundred() {
	s.stage(map[models.Field]string{
		models.FieldName:         "Asha Rao",
		models.FieldRelationship: "SPOUSE",
		models.FieldDateOfBirth:  "1990-05-10",
		models.FieldAllocation:   "60",
		models.FieldPAN:          "ABCDE1234F",
	})
	s.stage(map[models.Field]string{
		models.FieldName:         "Vikram Rao",
		models.FieldRelationship: "FATHER",
		models.FieldDateOfBirth:  "1962-01-20",
		models.FieldAllocation:   "40",
		models.FieldMobile:       "9876543210",
	})

	s.expectToken("tok-1")
	s.mockAPI.EXPECT().
		Upsert(gomock.Any(), s.userID, "tok-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.UserID, _ string, batch []*models.Nominee) ([]*models.Nominee, error) {
			require.Len(s.T(), batch, 2)
			out := make([]*models.Nominee, len(batch))
			for i, n := range batch {
				committed := *n
				committed.ID = domain.NomineeID("srv-" + committed.Name[:4])
				out[i] = &committed
			}
			return out, nil
		})
	s.mockTokens.EXPECT().Consume(gomock.Any(), s.userID, mfa.ActionNomineeUpdate)

	updated, err := s.service.CommitAll(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.Len(s.T(), updated, 2)

	// The store now holds the authoritative records and no drafts.
	committed, pending := s.drafts.Snapshot(s.ctx, s.userID)
	assert.Len(s.T(), committed, 2)
	assert.Empty(s.T(), pending)
	assert.False(s.T(), committed[0].ID.IsNil())
}

func (s *ServiceSuite) TestCommitAll_TotalOffByTen() {
	s.stage(map[models.Field]string{
		models.FieldName:         "Asha Rao",
		models.FieldRelationship: "SPOUSE",
		models.FieldDateOfBirth:  "1990-05-10",
		models.FieldAllocation:   "70",
	})
	s.stage(map[models.Field]string{
		models.FieldName:         "Vikram Rao",
		models.FieldRelationship: "FATHER",
		models.FieldDateOfBirth:  "1962-01-20",
		models.FieldAllocation:   "20",
	})

	// The token gate and the upstream are never consulted.
	_, err := s.service.CommitAll(s.ctx, s.userID)

	var vErr *ValidationError
	require.ErrorAs(s.T(), err, &vErr)
	assert.Equal(s.T(), -1, vErr.DraftIndex)
	assert.Equal(s.T(),
		"Total allocation must be exactly 100%. Current: 90%",
		vErr.Fields[validate.KeyTotal],
	)

	// Drafts survive the rejection.
	_, pending := s.drafts.Snapshot(s.ctx, s.userID)
	assert.Len(s.T(), pending, 2)
}

func (s *ServiceSuite) TestCommitAll_MissingTokenBlocksLocally() {
	s.stage(map[models.Field]string{
		models.FieldName:         "Asha Rao",
		models.FieldRelationship: "SPOUSE",
		models.FieldDateOfBirth:  "1990-05-10",
		models.FieldAllocation:   "100",
	})

	s.mockTokens.EXPECT().
		Token(gomock.Any(), s.userID, mfa.ActionNomineeUpdate).
		Return("", false)

	// No Upsert expectation: the upstream must never see this attempt.
	_, err := s.service.CommitAll(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeMFARequired))

	_, pending := s.drafts.Snapshot(s.ctx, s.userID)
	assert.Len(s.T(), pending, 1)
}

func (s *ServiceSuite) TestCommitAll_NoDrafts() {
	_, err := s.service.CommitAll(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *ServiceSuite) TestCommitAll_RecordFailureNamesDraft() {
	s.stage(map[models.Field]string{
		models.FieldName:         "Asha Rao",
		models.FieldRelationship: "SPOUSE",
		models.FieldDateOfBirth:  "1990-05-10",
		models.FieldAllocation:   "60",
		models.FieldPAN:          "ABCDE1234F",
	})

	// A committed record with the same PAN appears after the draft was
	// staged, so the collision only surfaces at commit time.
	s.drafts.SetCommitted(s.ctx, s.userID, []*models.Nominee{
		{ID: "n-1", Name: "Existing", Relationship: models.RelationshipBrother,
			DateOfBirth: time.Date(1985, 3, 1, 0, 0, 0, 0, time.UTC),
			Allocation:  40, PAN: "ABCDE1234F"},
	})

	_, err := s.service.CommitAll(s.ctx, s.userID)

	var vErr *ValidationError
	require.ErrorAs(s.T(), err, &vErr)
	assert.Equal(s.T(), 0, vErr.DraftIndex)
	assert.Contains(s.T(), vErr.Fields, "pan")
}

func (s *ServiceSuite) TestCommitAll_UpstreamRejectsToken() {
	s.stage(map[models.Field]string{
		models.FieldName:         "Asha Rao",
		models.FieldRelationship: "SPOUSE",
		models.FieldDateOfBirth:  "1990-05-10",
		models.FieldAllocation:   "100",
	})

	s.expectToken("tok-stale")
	s.mockAPI.EXPECT().
		Upsert(gomock.Any(), s.userID, "tok-stale", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeMFATokenExpired, "token no longer valid"))
	s.mockTokens.EXPECT().Invalidate(gomock.Any(), s.userID, mfa.ActionNomineeUpdate)

	_, err := s.service.CommitAll(s.ctx, s.userID)
	assert.True(s.T(), dErrors.IsMFARejection(err))

	// Nothing committed, nothing lost.
	committed, pending := s.drafts.Snapshot(s.ctx, s.userID)
	assert.Empty(s.T(), committed)
	assert.Len(s.T(), pending, 1)
}

func (s *ServiceSuite) TestCommitAll_UpstreamError() {
	s.stage(map[models.Field]string{
		models.FieldName:         "Asha Rao",
		models.FieldRelationship: "SPOUSE",
		models.FieldDateOfBirth:  "1990-05-10",
		models.FieldAllocation:   "100",
	})

	s.expectToken("tok-1")
	s.mockAPI.EXPECT().
		Upsert(gomock.Any(), s.userID, "tok-1", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUpstream, "service unavailable"))

	_, err := s.service.CommitAll(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUpstream))

	_, pending := s.drafts.Snapshot(s.ctx, s.userID)
	assert.Len(s.T(), pending, 1)
}

func (s *ServiceSuite) TestCommitAll_EditMergesIntoBatch() {
	s.drafts.SetCommitted(s.ctx, s.userID, []*models.Nominee{
		{ID: "n-1", Name: "Asha Rao", Relationship: models.RelationshipSpouse,
			DateOfBirth: time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
			Allocation:  60, Email: "old@example.com"},
		{ID: "n-2", Name: "Vikram Rao", Relationship: models.RelationshipFather,
			DateOfBirth: time.Date(1962, 1, 20, 0, 0, 0, 0, time.UTC),
			Allocation:  40},
	})

	_, err := s.drafts.StartEdit(s.ctx, s.userID, "n-1")
	require.NoError(s.T(), err)
	_, err = s.drafts.UpdateField(s.ctx, s.userID, models.FieldEmail, "new@example.com")
	require.NoError(s.T(), err)
	errs, err := s.drafts.StageCurrent(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.True(s.T(), errs.Valid())

	s.expectToken("tok-1")
	var sent []*models.Nominee
	s.mockAPI.EXPECT().
		Upsert(gomock.Any(), s.userID, "tok-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.UserID, _ string, batch []*models.Nominee) ([]*models.Nominee, error) {
			sent = batch
			return batch, nil
		})
	s.mockTokens.EXPECT().Consume(gomock.Any(), s.userID, mfa.ActionNomineeUpdate)

	_, err = s.service.CommitAll(s.ctx, s.userID)
	require.NoError(s.T(), err)

	// The edit replaces its committed record in place; the untouched
	// record rides along unchanged.
	require.Len(s.T(), sent, 2)
	assert.Equal(s.T(), domain.NomineeID("n-1"), sent[0].ID)
	assert.Equal(s.T(), "new@example.com", sent[0].Email)
	assert.Equal(s.T(), domain.NomineeID("n-2"), sent[1].ID)
}

func (s *ServiceSuite) TestOptOut() {
	s.drafts.SetCommitted(s.ctx, s.userID, []*models.Nominee{
		{ID: "n-1", Name: "Asha Rao", Relationship: models.RelationshipSpouse,
			DateOfBirth: time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
			Allocation:  100},
	})

	s.expectToken("tok-1")
	s.mockAPI.EXPECT().OptOut(gomock.Any(), s.userID, "tok-1").Return(nil)
	s.mockTokens.EXPECT().Consume(gomock.Any(), s.userID, mfa.ActionNomineeUpdate)

	err := s.service.OptOut(s.ctx, s.userID)
	require.NoError(s.T(), err)

	committed, _ := s.drafts.Snapshot(s.ctx, s.userID)
	for _, n := range committed {
		assert.True(s.T(), n.OptedOut)
	}
}

func (s *ServiceSuite) TestOptOut_MissingToken() {
	s.mockTokens.EXPECT().
		Token(gomock.Any(), s.userID, mfa.ActionNomineeUpdate).
		Return("", false)

	err := s.service.OptOut(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeMFARequired))
}

func (s *ServiceSuite) TestOptOut_UpstreamRejectsToken() {
	s.expectToken("tok-stale")
	s.mockAPI.EXPECT().
		OptOut(gomock.Any(), s.userID, "tok-stale").
		Return(dErrors.New(dErrors.CodeMFARequired, "step-up required"))
	s.mockTokens.EXPECT().Invalidate(gomock.Any(), s.userID, mfa.ActionNomineeUpdate)

	err := s.service.OptOut(s.ctx, s.userID)
	assert.True(s.T(), dErrors.IsMFARejection(err))
}

func (s *ServiceSuite) TestRefresh() {
	upstream := []*models.Nominee{
		{ID: "n-1", Name: "Asha Rao", Relationship: models.RelationshipSpouse,
			DateOfBirth: time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC),
			Allocation:  100},
	}
	s.mockAPI.EXPECT().List(gomock.Any(), s.userID).Return(upstream, nil)

	nominees, err := s.service.Refresh(s.ctx, s.userID)
	require.NoError(s.T(), err)
	require.Len(s.T(), nominees, 1)

	committed, _ := s.drafts.Snapshot(s.ctx, s.userID)
	require.Len(s.T(), committed, 1)
	assert.Equal(s.T(), domain.NomineeID("n-1"), committed[0].ID)
}

func (s *ServiceSuite) TestRefresh_UpstreamError() {
	s.mockAPI.EXPECT().
		List(gomock.Any(), s.userID).
		Return(nil, dErrors.New(dErrors.CodeTimeout, "deadline exceeded"))

	_, err := s.service.Refresh(s.ctx, s.userID)
	assert.True(s.T(), dErrors.HasCode(err, dErrors.CodeUpstream))
}
