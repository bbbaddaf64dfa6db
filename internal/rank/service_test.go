package rank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
)

func newTestService(t *testing.T) (Service, *repository.FakeRepository) {
	t.Helper()
	repo := repository.NewFakeRepository()
	store := refdata.NewStore(repo, repo, repo, repo)
	require.NoError(t, store.Refresh(context.Background()))
	return NewService(repo, store), repo
}

func pct(v float64) *float64 { return &v }

func TestSave_CreateAndUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rank, err := svc.Save(ctx, SaveInput{ID: "Soldado", Level: 2, Color: "#00ff00", BasePct: 0.40, BonusPct: pct(0.45)})
	require.NoError(t, err)
	assert.Equal(t, "soldado", rank.ID)
	assert.Equal(t, 0.40, rank.BasePct)
	require.NotNil(t, rank.BonusPct)
	assert.Equal(t, 0.45, *rank.BonusPct)

	rank, err = svc.Save(ctx, SaveInput{ID: "soldado", Level: 3, BasePct: 0.50})
	require.NoError(t, err)
	assert.Equal(t, 3, rank.Level)
	assert.Nil(t, rank.BonusPct)
}

func TestSave_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SaveInput
	}{
		{"blank id", SaveInput{ID: "  ", BasePct: 0.5}},
		{"negative level", SaveInput{ID: "x", Level: -1, BasePct: 0.5}},
		{"base pct above one", SaveInput{ID: "x", BasePct: 1.5}},
		{"base pct negative", SaveInput{ID: "x", BasePct: -0.1}},
		{"bonus pct above one", SaveInput{ID: "x", BasePct: 0.5, BonusPct: pct(1.1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestList_SortedByLevelDescending(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{ID: "peon", Level: 1, BasePct: 0.25})
	require.NoError(t, err)
	_, err = svc.Save(ctx, SaveInput{ID: "lider", Level: 5, BasePct: 0.60})
	require.NoError(t, err)
	_, err = svc.Save(ctx, SaveInput{ID: "soldado", Level: 2, BasePct: 0.40})
	require.NoError(t, err)

	ranks, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, ranks, 3)
	assert.Equal(t, "lider", ranks[0].ID)
	assert.Equal(t, "soldado", ranks[1].ID)
	assert.Equal(t, "peon", ranks[2].ID)
}

func TestDelete_DetachesMembers(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{ID: "soldado", Level: 2, BasePct: 0.40})
	require.NoError(t, err)
	soldado := "soldado"
	require.NoError(t, repo.UpsertMember(ctx, &domain.Member{ID: "juan", Name: "Juan", RankID: &soldado}))

	require.NoError(t, svc.Delete(ctx, "soldado"))

	_, err = svc.GetByID(ctx, "soldado")
	assert.ErrorIs(t, err, domain.ErrRankNotFound)

	member, err := repo.GetMemberByID(ctx, "juan")
	require.NoError(t, err)
	assert.Nil(t, member.RankID)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrRankNotFound)
}
