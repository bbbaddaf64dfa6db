package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
)

func newTestService(t *testing.T) (Service, *refdata.Store) {
	t.Helper()
	repo := repository.NewFakeRepository()
	store := refdata.NewStore(repo, repo, repo, repo)
	require.NoError(t, store.Refresh(context.Background()))
	return NewService(repo, store), store
}

func pct(v float64) *float64 { return &v }

func TestCreate_DerivesSlugID(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, SaveInput{Name: "M4 (Especial)", BaseValue: 20000, Payable: true})
	require.NoError(t, err)
	assert.Equal(t, "m4-especial", item.ID)

	// Catalog changes show up in the snapshot immediately.
	_, ok := store.Snapshot().Item("m4-especial")
	assert.True(t, ok)
}

func TestCreate_DuplicateRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, SaveInput{Name: "AK 47", BaseValue: 15000, Payable: true})
	require.NoError(t, err)

	_, err = svc.Create(ctx, SaveInput{Name: "AK 47", BaseValue: 1, Payable: true})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SaveInput
	}{
		{"blank name", SaveInput{Name: "  ", BaseValue: 1}},
		{"negative value", SaveInput{Name: "AK", BaseValue: -1}},
		{"override above one", SaveInput{Name: "AK", BaseValue: 1, PctOverride: pct(1.5)}},
		{"override negative", SaveInput{Name: "AK", BaseValue: 1, PctOverride: pct(-0.1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUpdate_KeepsID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, SaveInput{Name: "AK 47", BaseValue: 15000, Payable: true})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, SaveInput{Name: "AK-47 Dorada", BaseValue: 30000, Payable: true, PctOverride: pct(0.5)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(30000), updated.BaseValue)
	require.NotNil(t, updated.PctOverride)
	assert.Equal(t, 0.5, *updated.PctOverride)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "ghost", SaveInput{Name: "X", BaseValue: 1})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestDelete(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, SaveInput{Name: "Casco", BaseValue: 5000})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	_, ok := store.Snapshot().Item(created.ID)
	assert.False(t, ok)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}
