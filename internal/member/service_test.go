package member

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
)

func newTestService(t *testing.T) (Service, *repository.FakeRepository) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewFakeRepository()
	require.NoError(t, repo.UpsertRank(ctx, &domain.Rank{ID: "soldado", Level: 2, BasePct: 0.40}))

	store := refdata.NewStore(repo, repo, repo, repo)
	require.NoError(t, store.Refresh(ctx))
	return NewService(repo, repo, store), repo
}

func TestSave_CreateDerivesID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rank := "soldado"
	member, err := svc.Save(ctx, SaveInput{Name: "José María", RankID: &rank, BonusTier: true})
	require.NoError(t, err)
	assert.Equal(t, "jose-maria", member.ID)
	assert.Equal(t, "José María", member.Name)
	assert.True(t, member.BonusTier)

	got, err := svc.GetByID(ctx, "jose-maria")
	require.NoError(t, err)
	assert.Equal(t, member.Name, got.Name)
}

func TestSave_RejectsUnknownRank(t *testing.T) {
	svc, _ := newTestService(t)

	rank := "general"
	_, err := svc.Save(context.Background(), SaveInput{Name: "Ana", RankID: &rank})
	assert.ErrorIs(t, err, domain.ErrRankNotFound)
}

func TestSave_EmptyRankMeansNoRank(t *testing.T) {
	svc, _ := newTestService(t)

	empty := ""
	member, err := svc.Save(context.Background(), SaveInput{Name: "Ana", RankID: &empty})
	require.NoError(t, err)
	assert.Nil(t, member.RankID)
}

func TestSave_BlankNameRejected(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Save(context.Background(), SaveInput{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetByID_CachesAndInvalidates(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{Name: "Ana"})
	require.NoError(t, err)

	first, err := svc.GetByID(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana", first.Name)

	// A write behind the service's back is invisible while cached.
	require.NoError(t, repo.UpsertMember(ctx, &domain.Member{ID: "ana", Name: "Ana Renamed"}))
	cached, err := svc.GetByID(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana", cached.Name)

	// Saving through the service invalidates.
	_, err = svc.Save(ctx, SaveInput{ID: "ana", Name: "Ana María"})
	require.NoError(t, err)
	fresh, err := svc.GetByID(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "Ana María", fresh.Name)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestDelete_CascadesInventory(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{Name: "Ana"})
	require.NoError(t, err)
	require.NoError(t, repo.IncrementEntry(ctx, "ana", "ak-47", "AK 47", 3))

	require.NoError(t, svc.Delete(ctx, "ana"))

	_, err = svc.GetByID(ctx, "ana")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)

	entries, err := repo.GetEntriesByMember(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Ana", "Anabel", "Luis"} {
		_, err := svc.Save(ctx, SaveInput{Name: name})
		require.NoError(t, err)
	}

	members, err := svc.Search(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Ana", members[0].Name)
	assert.Equal(t, "Anabel", members[1].Name)
}

func TestList_PersistenceError(t *testing.T) {
	svc, repo := newTestService(t)

	repo.FailWith = errors.New("db down")
	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
