package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
)

func newTestService(t *testing.T) (Service, *repository.FakeRepository, *refdata.Store) {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewFakeRepository()

	require.NoError(t, repo.UpsertRank(ctx, &domain.Rank{ID: "peon", Level: 1, BasePct: 0.25}))
	peon := "peon"
	require.NoError(t, repo.UpsertMember(ctx, &domain.Member{ID: "ana", Name: "Ana", RankID: &peon}))
	require.NoError(t, repo.UpsertMember(ctx, &domain.Member{ID: "luis", Name: "Luis"}))
	require.NoError(t, repo.CreateItem(ctx, &domain.Item{ID: "ak-47", Name: "AK 47", BaseValue: 15000, Payable: true}))
	require.NoError(t, repo.IncrementEntry(ctx, "ana", "ak-47", "AK 47", 4))

	store := refdata.NewStore(repo, repo, repo, repo)
	require.NoError(t, store.Refresh(ctx))
	return NewService(store, repo), repo, store
}

func TestGetStatement(t *testing.T) {
	svc, _, _ := newTestService(t)

	stmt, err := svc.GetStatement(context.Background(), "ana")
	require.NoError(t, err)
	require.Len(t, stmt.Lines, 1)
	// Peón at 25% of 15000 is 3750 per unit.
	assert.Equal(t, int64(3750), stmt.Lines[0].UnitPrice)
	assert.Equal(t, int64(15000), stmt.TotalValue)
}

func TestGetStatement_UnknownMember(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetStatement(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestSearchStatements(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// By member name.
	stmts, err := svc.SearchStatements(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "ana", stmts[0].MemberID)

	// By held item name.
	stmts, err = svc.SearchStatements(ctx, "ak 47")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Equal(t, "ana", stmts[0].MemberID)

	// Empty query returns everyone.
	stmts, err = svc.SearchStatements(ctx, "")
	require.NoError(t, err)
	assert.Len(t, stmts, 2)

	// No match.
	stmts, err = svc.SearchStatements(ctx, "katana")
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestGetItemOwners(t *testing.T) {
	svc, _, _ := newTestService(t)

	owners, err := svc.GetItemOwners(context.Background(), "ak-47")
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "ana", owners[0].ID)

	owners, err = svc.GetItemOwners(context.Background(), "katana")
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestAdjustEntry_IncrementAndDecrement(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	remaining, err := svc.AdjustEntry(ctx, "ana", "ak-47", 2)
	require.NoError(t, err)
	assert.Equal(t, 6, remaining)

	remaining, err = svc.AdjustEntry(ctx, "ana", "ak-47", -5)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)

	// Draining to zero removes the entry.
	remaining, err = svc.AdjustEntry(ctx, "ana", "ak-47", -1)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	stmt, err := svc.GetStatement(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, stmt.Lines)
}

func TestAdjustEntry_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdjustEntry(ctx, "ana", "ak-47", 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AdjustEntry(ctx, "ghost", "ak-47", 1)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestAdjustEntry_NewItemUsesCatalogName(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AdjustEntry(ctx, "luis", "ak-47", 1)
	require.NoError(t, err)

	entries, err := repo.GetEntriesByMember(ctx, "luis")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "AK 47", entries[0].ItemName)
}

func TestClearMemberInventory(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.ClearMemberInventory(ctx, "ana"))

	entries, err := repo.GetEntriesByMember(ctx, "ana")
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.ErrorIs(t, svc.ClearMemberInventory(ctx, "ghost"), domain.ErrMemberNotFound)
}
