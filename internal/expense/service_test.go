package expense_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartdept/budget/internal/expense"
	"github.com/smartdept/budget/internal/user"
)

func validParams(categoryID uuid.UUID) expense.CreateParams {
	return expense.CreateParams{
		Description:  "Router for networking lab",
		Amount:       decimal.RequireFromString("100.50"),
		Date:         time.Date(2023, 10, 27, 0, 0, 0, 0, time.UTC),
		CategoryID:   categoryID,
		Vendor:       "TechSupplies Ltd",
		ActivityType: expense.ActivityInfrastructure,
	}
}

func TestService_Submit_Validation(t *testing.T) {
	categoryID := uuid.New()

	type testCase struct {
		name      string
		mutate    func(p *expense.CreateParams)
		wantField string
	}

	tests := []testCase{
		{
			name:      "ShortDescription",
			mutate:    func(p *expense.CreateParams) { p.Description = "ab" },
			wantField: "description",
		},
		{
			name:      "ZeroAmount",
			mutate:    func(p *expense.CreateParams) { p.Amount = decimal.Zero },
			wantField: "amount",
		},
		{
			name:      "NegativeAmount",
			mutate:    func(p *expense.CreateParams) { p.Amount = decimal.NewFromInt(-50) },
			wantField: "amount",
		},
		{
			name:      "ZeroDate",
			mutate:    func(p *expense.CreateParams) { p.Date = time.Time{} },
			wantField: "date",
		},
		{
			name:      "ShortVendor",
			mutate:    func(p *expense.CreateParams) { p.Vendor = "X" },
			wantField: "vendor",
		},
		{
			name:      "MissingCategory",
			mutate:    func(p *expense.CreateParams) { p.CategoryID = uuid.Nil },
			wantField: "categoryId",
		},
		{
			name:      "UnknownActivityType",
			mutate:    func(p *expense.CreateParams) { p.ActivityType = "PARTY" },
			wantField: "activityType",
		},
		{
			name: "FirstFailingFieldWins",
			mutate: func(p *expense.CreateParams) {
				p.Description = ""
				p.Amount = decimal.Zero
			},
			wantField: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// No repository or audit calls happen on validation failure.
			svc := expense.NewService(expense.NewMockRepository(ctrl), expense.NewMockAuditRecorder(ctrl))

			params := validParams(categoryID)
			tt.mutate(&params)

			_, err := svc.Submit(context.Background(), params, uuid.New())

			var ve *expense.ValidationError

			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestService_Submit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryID := uuid.New()
	submitter := uuid.New()

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().CategoryExists(gomock.Any(), categoryID).Return(true, nil)
	repo.EXPECT().
		CreateExpense(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *expense.Expense) error {
			e.ID = uuid.New()
			e.CreatedAt = time.Now()
			return nil
		})

	audit := expense.NewMockAuditRecorder(ctrl)
	audit.EXPECT().
		Record(gomock.Any(), "EXPENSE_CREATED", gomock.Any(), "EXPENSE", submitter, gomock.Any()).
		Return(nil)

	svc := expense.NewService(repo, audit)
	got, err := svc.Submit(context.Background(), validParams(categoryID), submitter)

	require.NoError(t, err)
	assert.Equal(t, expense.StatusPending, got.Status)
	assert.Equal(t, submitter, got.SubmittedByID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("100.50")))
	assert.NotEmpty(t, got.ID)
}

func TestService_Submit_UnknownCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryID := uuid.New()

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().CategoryExists(gomock.Any(), categoryID).Return(false, nil)

	svc := expense.NewService(repo, expense.NewMockAuditRecorder(ctrl))
	_, err := svc.Submit(context.Background(), validParams(categoryID), uuid.New())

	var ve *expense.ValidationError

	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "categoryId", ve.Field)
}

func TestService_Submit_AuditFailureDoesNotFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryID := uuid.New()

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().CategoryExists(gomock.Any(), categoryID).Return(true, nil)
	repo.EXPECT().
		CreateExpense(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *expense.Expense) error {
			e.ID = uuid.New()
			return nil
		})

	audit := expense.NewMockAuditRecorder(ctrl)
	audit.EXPECT().
		Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("audit store down"))

	svc := expense.NewService(repo, audit)
	got, err := svc.Submit(context.Background(), validParams(categoryID), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestService_Decide_StaffForbidden(t *testing.T) {
	staff := user.Identity{ID: uuid.New(), Role: user.RoleStaff}

	for _, decision := range []expense.Status{expense.StatusApproved, expense.StatusRejected} {
		t.Run(string(decision), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			svc := expense.NewService(expense.NewMockRepository(ctrl), expense.NewMockAuditRecorder(ctrl))

			_, err := svc.Decide(context.Background(), uuid.New(), decision, staff, "reason")
			assert.ErrorIs(t, err, expense.ErrForbidden)
		})
	}
}

func TestService_Decide_RejectWithoutReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hod := user.Identity{ID: uuid.New(), Role: user.RoleHOD}

	svc := expense.NewService(expense.NewMockRepository(ctrl), expense.NewMockAuditRecorder(ctrl))

	_, err := svc.Decide(context.Background(), uuid.New(), expense.StatusRejected, hod, "")

	var ve *expense.ValidationError

	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rejectionReason", ve.Field)
}

func TestService_Decide_InvalidDecision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	admin := user.Identity{ID: uuid.New(), Role: user.RoleAdmin}

	svc := expense.NewService(expense.NewMockRepository(ctrl), expense.NewMockAuditRecorder(ctrl))

	_, err := svc.Decide(context.Background(), uuid.New(), expense.StatusPending, admin, "")

	var ve *expense.ValidationError

	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "decision", ve.Field)
}

func TestService_Decide_Reject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	hod := user.Identity{ID: uuid.New(), Role: user.RoleHOD}
	approver := uuid.New()

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().GetExpense(gomock.Any(), id).Return(&expense.Expense{
		ID:           id,
		Status:       expense.StatusPending,
		ApprovedByID: &approver,
	}, nil)
	repo.EXPECT().
		UpdateDecision(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *expense.Expense) error {
			assert.Equal(t, expense.StatusRejected, e.Status)
			assert.Nil(t, e.ApprovedByID)
			require.NotNil(t, e.RejectionReason)
			assert.Equal(t, "budget exceeded", *e.RejectionReason)
			return nil
		})

	audit := expense.NewMockAuditRecorder(ctrl)
	audit.EXPECT().
		Record(gomock.Any(), "EXPENSE_REJECTED", id, "EXPENSE", hod.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ uuid.UUID, _ string, _ uuid.UUID, details map[string]any) error {
			assert.Equal(t, "PENDING", details["previousStatus"])
			assert.Equal(t, "REJECTED", details["newStatus"])
			assert.Equal(t, "budget exceeded", details["reason"])
			return nil
		})

	svc := expense.NewService(repo, audit)
	got, err := svc.Decide(context.Background(), id, expense.StatusRejected, hod, "budget exceeded")

	require.NoError(t, err)
	assert.Equal(t, expense.StatusRejected, got.Status)
}

func TestService_Decide_ApproveClearsPriorRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	admin := user.Identity{ID: uuid.New(), Role: user.RoleAdmin}
	reason := "missing receipt"

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().GetExpense(gomock.Any(), id).Return(&expense.Expense{
		ID:              id,
		Status:          expense.StatusRejected,
		RejectionReason: &reason,
	}, nil)
	repo.EXPECT().
		UpdateDecision(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *expense.Expense) error {
			assert.Equal(t, expense.StatusApproved, e.Status)
			require.NotNil(t, e.ApprovedByID)
			assert.Equal(t, admin.ID, *e.ApprovedByID)
			assert.Nil(t, e.RejectionReason)
			return nil
		})

	audit := expense.NewMockAuditRecorder(ctrl)
	audit.EXPECT().
		Record(gomock.Any(), "EXPENSE_APPROVED", id, "EXPENSE", admin.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ uuid.UUID, _ string, _ uuid.UUID, details map[string]any) error {
			assert.Equal(t, "REJECTED", details["previousStatus"])
			assert.Equal(t, "APPROVED", details["newStatus"])
			return nil
		})

	svc := expense.NewService(repo, audit)
	got, err := svc.Decide(context.Background(), id, expense.StatusApproved, admin, "")

	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, got.Status)
	assert.Nil(t, got.RejectionReason)
}

func TestService_Decide_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	admin := user.Identity{ID: uuid.New(), Role: user.RoleAdmin}

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().GetExpense(gomock.Any(), id).Return(nil, expense.ErrNotFound)

	svc := expense.NewService(repo, expense.NewMockAuditRecorder(ctrl))

	_, err := svc.Decide(context.Background(), id, expense.StatusApproved, admin, "")
	assert.ErrorIs(t, err, expense.ErrNotFound)
}

func TestService_Decide_AuditFailureDoesNotFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	admin := user.Identity{ID: uuid.New(), Role: user.RoleAdmin}

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().GetExpense(gomock.Any(), id).Return(&expense.Expense{ID: id, Status: expense.StatusPending}, nil)
	repo.EXPECT().UpdateDecision(gomock.Any(), gomock.Any()).Return(nil)

	audit := expense.NewMockAuditRecorder(ctrl)
	audit.EXPECT().
		Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("audit store down"))

	svc := expense.NewService(repo, audit)
	got, err := svc.Decide(context.Background(), id, expense.StatusApproved, admin, "")

	require.NoError(t, err)
	assert.Equal(t, expense.StatusApproved, got.Status)
}

func TestService_Remove(t *testing.T) {
	id := uuid.New()

	t.Run("HODForbidden", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc := expense.NewService(expense.NewMockRepository(ctrl), expense.NewMockAuditRecorder(ctrl))

		err := svc.Remove(context.Background(), id, user.Identity{ID: uuid.New(), Role: user.RoleHOD})
		assert.ErrorIs(t, err, expense.ErrForbidden)
	})

	t.Run("AdminDeletes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		admin := user.Identity{ID: uuid.New(), Role: user.RoleAdmin}

		repo := expense.NewMockRepository(ctrl)
		repo.EXPECT().DeleteExpense(gomock.Any(), id).Return(nil)

		audit := expense.NewMockAuditRecorder(ctrl)
		audit.EXPECT().Record(gomock.Any(), "EXPENSE_DELETED", id, "EXPENSE", admin.ID, gomock.Nil()).Return(nil)

		svc := expense.NewService(repo, audit)
		assert.NoError(t, svc.Remove(context.Background(), id, admin))
	})
}

func TestService_ImportBatch_NoConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	submitter := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []expense.CreateParams{validParams(uuid.New())}
	params[0].Date = date

	repo := expense.NewMockRepository(ctrl)
	itx := expense.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return(nil, nil)
	itx.EXPECT().
		CreateExpenses(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, exps []*expense.Expense) error {
			for _, e := range exps {
				e.ID = uuid.New()
			}
			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	audit := expense.NewMockAuditRecorder(ctrl)
	audit.EXPECT().
		Record(gomock.Any(), "EXPENSE_IMPORTED", gomock.Any(), "EXPENSE", submitter, gomock.Any()).
		Return(nil)

	svc := expense.NewService(repo, audit)
	result, err := svc.ImportBatch(context.Background(), params, submitter)

	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Equal(t, expense.StatusPending, result.Imported[0].Status)
	assert.Empty(t, result.Conflicts)
	assert.Empty(t, result.New)
}

func TestService_ImportBatch_WithConflicts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	categoryID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	first := validParams(categoryID)
	first.Date = date

	second := validParams(categoryID)
	second.Date = date
	second.Vendor = "Another Vendor"
	second.Amount = decimal.NewFromInt(2000)

	params := []expense.CreateParams{first, second}

	existing := &expense.Expense{
		ID:     uuid.New(),
		Amount: first.Amount,
		Vendor: first.Vendor,
		Date:   date,
	}

	repo := expense.NewMockRepository(ctrl)
	itx := expense.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), params).Return([]*expense.Expense{existing}, nil)
	itx.EXPECT().Rollback().Return(nil)

	svc := expense.NewService(repo, expense.NewMockAuditRecorder(ctrl))
	result, err := svc.ImportBatch(context.Background(), params, uuid.New())

	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.New, 1)
	assert.Len(t, result.Conflicts, 1)
	assert.Equal(t, first, result.Conflicts[0].Incoming)
	assert.Equal(t, existing, result.Conflicts[0].Existing)
}

func TestService_ImportBatch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := expense.NewService(expense.NewMockRepository(ctrl), expense.NewMockAuditRecorder(ctrl))

	result, err := svc.ImportBatch(context.Background(), nil, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Empty(t, result.Conflicts)
}
