package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progresshq/progress-api/internal/domain/model"
	"github.com/progresshq/progress-api/internal/testutil"
)

func TestPDIRepo_CreateAndGet(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	users := NewUserRepo(db)
	repo := NewPDIRepo(db)
	ctx := context.Background()

	collab := newTestUser("pdi-collab@example.com")
	require.NoError(t, users.Create(ctx, collab))

	pdi := &model.PDI{
		Title:          "Aprender Go",
		CollaboratorID: collab.ID,
		Status:         model.PDIStatusPlanned,
		DueDate:        testutil.TimePtr(time.Now().Add(30 * 24 * time.Hour)),
		Goals: []model.PDIGoal{
			{Description: "Ler a especificação da linguagem"},
			{Description: "Construir um serviço pequeno", Done: false},
		},
	}
	require.NoError(t, repo.Create(ctx, pdi))
	require.NotZero(t, pdi.ID)
	require.Len(t, pdi.Goals, 2)
	assert.NotZero(t, pdi.Goals[0].ID)

	got, err := repo.GetByID(ctx, pdi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aprender Go", got.Title)
	assert.Equal(t, model.PDIStatusPlanned, got.Status)
	require.Len(t, got.Goals, 2)
	assert.Equal(t, "Ler a especificação da linguagem", got.Goals[0].Description)
}

func TestPDIRepo_GetNotFound(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	repo := NewPDIRepo(db)

	_, err := repo.GetByID(context.Background(), 999999)
	assert.ErrorIs(t, err, ErrPDINotFound)
}

func TestPDIRepo_Update(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	users := NewUserRepo(db)
	repo := NewPDIRepo(db)
	ctx := context.Background()

	collab := newTestUser("pdi-update@example.com")
	require.NoError(t, users.Create(ctx, collab))

	pdi := &model.PDI{
		Title:          "Plano original",
		CollaboratorID: collab.ID,
		Status:         model.PDIStatusPlanned,
		Goals:          []model.PDIGoal{{Description: "Meta original"}},
	}
	require.NoError(t, repo.Create(ctx, pdi))

	pdi.Title = "Plano revisado"
	pdi.Status = model.PDIStatusInProgress
	pdi.Goals = []model.PDIGoal{
		{Description: "Meta nova"},
		{Description: "Meta extra", Done: true},
	}
	require.NoError(t, repo.Update(ctx, pdi))

	got, err := repo.GetByID(ctx, pdi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Plano revisado", got.Title)
	assert.Equal(t, model.PDIStatusInProgress, got.Status)
	require.Len(t, got.Goals, 2)
	assert.True(t, got.Goals[1].Done)
}

func TestPDIRepo_UpdateKeepsGoalsWhenNil(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	users := NewUserRepo(db)
	repo := NewPDIRepo(db)
	ctx := context.Background()

	collab := newTestUser("pdi-keep@example.com")
	require.NoError(t, users.Create(ctx, collab))

	pdi := &model.PDI{
		Title:          "Plano",
		CollaboratorID: collab.ID,
		Status:         model.PDIStatusPlanned,
		Goals:          []model.PDIGoal{{Description: "Meta"}},
	}
	require.NoError(t, repo.Create(ctx, pdi))

	pdi.Title = "Plano renomeado"
	pdi.Goals = nil
	require.NoError(t, repo.Update(ctx, pdi))
	assert.Len(t, pdi.Goals, 1)
}

func TestPDIRepo_Delete(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	users := NewUserRepo(db)
	repo := NewPDIRepo(db)
	ctx := context.Background()

	collab := newTestUser("pdi-del@example.com")
	require.NoError(t, users.Create(ctx, collab))

	pdi := &model.PDI{
		Title:          "Descartável",
		CollaboratorID: collab.ID,
		Status:         model.PDIStatusPlanned,
		Goals:          []model.PDIGoal{{Description: "Meta"}},
	}
	require.NoError(t, repo.Create(ctx, pdi))

	require.NoError(t, repo.Delete(ctx, pdi.ID))
	assert.ErrorIs(t, repo.Delete(ctx, pdi.ID), ErrPDINotFound)
}

func TestPDIRepo_ListFilters(t *testing.T) {
	db := testutil.SetupAutoDB(t)
	users := NewUserRepo(db)
	repo := NewPDIRepo(db)
	ctx := context.Background()

	alice := newTestUser("pdi-alice@example.com")
	bob := newTestUser("pdi-bob@example.com")
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	mk := func(collabID int64, status model.PDIStatus) {
		require.NoError(t, repo.Create(ctx, &model.PDI{
			Title:          "Plano",
			CollaboratorID: collabID,
			Status:         status,
		}))
	}
	mk(alice.ID, model.PDIStatusPlanned)
	mk(alice.ID, model.PDIStatusInProgress)
	mk(bob.ID, model.PDIStatusPlanned)

	byCollab, err := repo.List(ctx, model.PDIListOptions{CollaboratorID: &alice.ID})
	require.NoError(t, err)
	assert.Len(t, byCollab, 2)

	planned := model.PDIStatusPlanned
	byStatus, err := repo.List(ctx, model.PDIListOptions{Status: &planned})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	both, err := repo.List(ctx, model.PDIListOptions{CollaboratorID: &bob.ID, Status: &planned})
	require.NoError(t, err)
	assert.Len(t, both, 1)
}
