package audit_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartdept/budget/internal/audit"
)

func TestService_Record(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entityID := uuid.New()
	performer := uuid.New()

	repo := audit.NewMockRepository(ctrl)
	repo.EXPECT().
		InsertEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *audit.Entry) error {
			assert.Equal(t, "EXPENSE_APPROVED", e.Action)
			assert.Equal(t, entityID, e.EntityID)
			assert.Equal(t, "EXPENSE", e.EntityType)
			assert.Equal(t, performer, e.PerformedByID)

			require.NotNil(t, e.Details)

			var details map[string]any
			require.NoError(t, json.Unmarshal([]byte(*e.Details), &details))
			assert.Equal(t, "PENDING", details["previousStatus"])

			return nil
		})

	svc := audit.NewService(repo)
	err := svc.Record(context.Background(), "EXPENSE_APPROVED", entityID, "EXPENSE", performer, map[string]any{
		"previousStatus": "PENDING",
		"newStatus":      "APPROVED",
	})

	require.NoError(t, err)
}

func TestService_Record_NilDetails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := audit.NewMockRepository(ctrl)
	repo.EXPECT().
		InsertEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *audit.Entry) error {
			assert.Nil(t, e.Details)
			return nil
		})

	svc := audit.NewService(repo)
	err := svc.Record(context.Background(), "EXPENSE_DELETED", uuid.New(), "EXPENSE", uuid.New(), nil)

	require.NoError(t, err)
}

func TestService_Query(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entityID := uuid.New()

	repo := audit.NewMockRepository(ctrl)
	repo.EXPECT().
		ListEntries(gomock.Any(), &entityID).
		Return([]*audit.Entry{
			{ID: uuid.New(), Action: "EXPENSE_APPROVED"},
			{ID: uuid.New(), Action: "EXPENSE_CREATED"},
		}, nil)

	svc := audit.NewService(repo)
	entries, err := svc.Query(context.Background(), &entityID)

	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
