package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/notifier"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// fakeNotifier records payloads and returns a scripted result.
type fakeNotifier struct {
	result   notifier.Result
	err      error
	payloads []notifier.Payload
}

func (f *fakeNotifier) Notify(ctx context.Context, payload notifier.Payload) (notifier.Result, error) {
	f.payloads = append(f.payloads, payload)
	return f.result, f.err
}

func okNotifier() *fakeNotifier {
	return &fakeNotifier{result: notifier.Result{OK: true, StatusCode: 200, Body: `{"id":"msg-1"}`}}
}

func pct(v float64) *float64 { return &v }

func seedRepo(t *testing.T) *repository.FakeRepository {
	t.Helper()
	ctx := context.Background()
	repo := repository.NewFakeRepository()

	require.NoError(t, repo.UpsertRank(ctx, &domain.Rank{ID: "soldado", Level: 2, BasePct: 0.40, BonusPct: pct(0.45)}))
	require.NoError(t, repo.UpsertRank(ctx, &domain.Rank{ID: "peon", Level: 1, BasePct: 0.25}))

	soldado := "soldado"
	peon := "peon"
	require.NoError(t, repo.UpsertMember(ctx, &domain.Member{ID: "juan", Name: "Juan", RankID: &soldado, BonusTier: true}))
	require.NoError(t, repo.UpsertMember(ctx, &domain.Member{ID: "ana", Name: "Ana", RankID: &peon}))
	require.NoError(t, repo.UpsertMember(ctx, &domain.Member{ID: "luis", Name: "Luis"}))

	require.NoError(t, repo.CreateItem(ctx, &domain.Item{ID: "ak-47", Name: "AK 47", BaseValue: 15000, Payable: true}))
	require.NoError(t, repo.CreateItem(ctx, &domain.Item{ID: "casco", Name: "Casco", BaseValue: 5000, Payable: false}))
	require.NoError(t, repo.CreateItem(ctx, &domain.Item{ID: "tablet", Name: "Tablet", BaseValue: 1000, Payable: true, PctOverride: pct(0.8)}))
	return repo
}

func newTestService(t *testing.T, repo *repository.FakeRepository, n notifier.Notifier) Service {
	t.Helper()
	store := refdata.NewStore(repo, repo, repo, repo)
	require.NoError(t, store.Refresh(context.Background()))
	return NewService(repo, repo, repo, repo, store, n)
}

func TestSubmit_Success(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	fn := okNotifier()
	svc := newTestService(t, repo, fn)

	result, err := svc.Submit(ctx, SubmitInput{
		AuthorID:   "admin-1",
		AuthorName: "Admin",
		MemberID:   "juan",
		Activity:   "Asalto al banco",
		Lines: []SubmitLine{
			{ItemID: "ak-47", Quantity: 2},
			{ItemID: "casco", Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RegistryID)
	assert.True(t, result.Notified)
	// Juan is bonus-tier soldado: 45% of 15000 = 6750 per AK, casco pays 0.
	assert.Equal(t, int64(13500), result.TotalValue)

	reg, err := svc.GetByID(ctx, result.RegistryID)
	require.NoError(t, err)
	assert.True(t, reg.Processed)
	assert.NotNil(t, reg.ProcessedAt)
	assert.Nil(t, reg.ProcessError)
	require.NotNil(t, reg.NotifierResponse)
	assert.Contains(t, *reg.NotifierResponse, "msg-1")
	require.Len(t, reg.Lines, 2)
	assert.Equal(t, "AK 47", reg.Lines[0].Name)
	assert.Equal(t, int64(15000), reg.Lines[0].BaseValue)
	assert.False(t, reg.Lines[1].Payable)

	entries, err := repo.GetEntriesByMember(ctx, "juan")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Quantity) // ak-47
	assert.Equal(t, 3, entries[1].Quantity) // casco

	require.Len(t, fn.payloads, 1)
	payload := fn.payloads[0]
	assert.Equal(t, "Juan", payload.MemberName)
	assert.Equal(t, int64(13500), payload.TotalValue)
	require.Len(t, payload.Lines, 2)
	assert.Equal(t, int64(6750), payload.Lines[0].UnitPrice)
	assert.Equal(t, int64(0), payload.Lines[1].UnitPrice)
}

func TestSubmit_AccumulatesInventory(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	svc := newTestService(t, repo, okNotifier())

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, SubmitInput{
			AuthorID: "admin-1",
			MemberID: "ana",
			Activity: "Farmeo",
			Lines:    []SubmitLine{{ItemID: "tablet", Quantity: 5}},
		})
		require.NoError(t, err)
	}

	entries, err := repo.GetEntriesByMember(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 10, entries[0].Quantity)
}

func TestSubmit_ValidationFailures(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	svc := newTestService(t, repo, okNotifier())

	tests := []struct {
		name  string
		input SubmitInput
	}{
		{"missing author", SubmitInput{MemberID: "juan", Activity: "x", Lines: []SubmitLine{{ItemID: "ak-47", Quantity: 1}}}},
		{"missing member", SubmitInput{AuthorID: "a", Activity: "x", Lines: []SubmitLine{{ItemID: "ak-47", Quantity: 1}}}},
		{"blank activity", SubmitInput{AuthorID: "a", MemberID: "juan", Activity: "  ", Lines: []SubmitLine{{ItemID: "ak-47", Quantity: 1}}}},
		{"no lines", SubmitInput{AuthorID: "a", MemberID: "juan", Activity: "x"}},
		{"all zero quantities", SubmitInput{AuthorID: "a", MemberID: "juan", Activity: "x", Lines: []SubmitLine{{ItemID: "ak-47", Quantity: 0}}}},
		{"negative quantity", SubmitInput{AuthorID: "a", MemberID: "juan", Activity: "x", Lines: []SubmitLine{{ItemID: "ak-47", Quantity: -1}}}},
		{"unknown member", SubmitInput{AuthorID: "a", MemberID: "ghost", Activity: "x", Lines: []SubmitLine{{ItemID: "ak-47", Quantity: 1}}}},
		{"unknown item", SubmitInput{AuthorID: "a", MemberID: "juan", Activity: "x", Lines: []SubmitLine{{ItemID: "nope", Quantity: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	// Nothing was persisted for any of the rejected submissions.
	regs, err := repo.GetUnprocessedRegistries(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestSubmit_DropsZeroQuantityLines(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	svc := newTestService(t, repo, okNotifier())

	result, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "ana",
		Activity: "Farmeo",
		Lines: []SubmitLine{
			{ItemID: "tablet", Quantity: 1},
			{ItemID: "ak-47", Quantity: 0},
		},
	})
	require.NoError(t, err)

	reg, err := svc.GetByID(ctx, result.RegistryID)
	require.NoError(t, err)
	require.Len(t, reg.Lines, 1)
	assert.Equal(t, "tablet", reg.Lines[0].ItemID)
}

func TestSubmit_NotifierFailureKeepsLoot(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	fn := &fakeNotifier{err: errors.New("connection refused")}
	svc := newTestService(t, repo, fn)

	result, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "juan",
		Activity: "Asalto",
		Lines:    []SubmitLine{{ItemID: "ak-47", Quantity: 1}},
	})
	require.NoError(t, err, "a failed webhook must not fail the submission")
	assert.False(t, result.Notified)

	reg, err := svc.GetByID(ctx, result.RegistryID)
	require.NoError(t, err)
	assert.False(t, reg.Processed)
	require.NotNil(t, reg.ProcessError)
	assert.Contains(t, *reg.ProcessError, domain.ErrMsgNotification)

	entries, err := repo.GetEntriesByMember(ctx, "juan")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Quantity)
}

func TestSubmit_NotifierBadStatusRecorded(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	fn := &fakeNotifier{result: notifier.Result{OK: false, StatusCode: 429, Body: "rate limited"}}
	svc := newTestService(t, repo, fn)

	result, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "ana",
		Activity: "Farmeo",
		Lines:    []SubmitLine{{ItemID: "tablet", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.False(t, result.Notified)

	reg, err := svc.GetByID(ctx, result.RegistryID)
	require.NoError(t, err)
	require.NotNil(t, reg.ProcessError)
	assert.Contains(t, *reg.ProcessError, "429")
}

func TestSubmit_LinesFrozenAgainstCatalogEdits(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	svc := newTestService(t, repo, okNotifier())

	result, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "juan",
		Activity: "Asalto",
		Lines:    []SubmitLine{{ItemID: "ak-47", Quantity: 1}},
	})
	require.NoError(t, err)

	// Repricing the item after the fact must not rewrite history.
	require.NoError(t, repo.UpdateItem(ctx, &domain.Item{ID: "ak-47", Name: "AK 47", BaseValue: 99999, Payable: true}))

	reg, err := svc.GetByID(ctx, result.RegistryID)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), reg.Lines[0].BaseValue)
}

func TestProcessUnprocessed_RetriesNotification(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	fn := &fakeNotifier{err: errors.New("unreachable")}
	svc := newTestService(t, repo, fn)

	result, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "juan",
		Activity: "Asalto",
		Lines:    []SubmitLine{{ItemID: "ak-47", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.False(t, result.Notified)

	// Webhook comes back, catch-up run drains the backlog.
	fn.err = nil
	fn.result = notifier.Result{OK: true, StatusCode: 200, Body: `{"id":"msg-2"}`}

	processed, err := svc.ProcessUnprocessed(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	reg, err := svc.GetByID(ctx, result.RegistryID)
	require.NoError(t, err)
	assert.True(t, reg.Processed)
	assert.Nil(t, reg.ProcessError)

	// Re-running finds nothing; inventory is untouched by the retry.
	processed, err = svc.ProcessUnprocessed(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, processed)

	entries, err := repo.GetEntriesByMember(ctx, "juan")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Quantity)
}

func TestProcessUnprocessed_MemberDeletedAfterSubmit(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	fn := &fakeNotifier{err: errors.New("unreachable")}
	svc := newTestService(t, repo, fn)

	result, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "ana",
		Activity: "Farmeo",
		Lines:    []SubmitLine{{ItemID: "tablet", Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteMember(ctx, "ana"))

	fn.err = nil
	fn.result = notifier.Result{OK: true, StatusCode: 200, Body: "{}"}

	processed, err := svc.ProcessUnprocessed(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	// The frozen member name backs the notification.
	last := fn.payloads[len(fn.payloads)-1]
	assert.Equal(t, "Ana", last.MemberName)

	reg, err := svc.GetByID(ctx, result.RegistryID)
	require.NoError(t, err)
	assert.True(t, reg.Processed)
}

func TestListByMember(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	svc := newTestService(t, repo, okNotifier())

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctx, SubmitInput{
			AuthorID: "admin-1",
			MemberID: "juan",
			Activity: "Asalto",
			Lines:    []SubmitLine{{ItemID: "ak-47", Quantity: 1}},
		})
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "ana",
		Activity: "Farmeo",
		Lines:    []SubmitLine{{ItemID: "tablet", Quantity: 1}},
	})
	require.NoError(t, err)

	regs, err := svc.ListByMember(ctx, "juan")
	require.NoError(t, err)
	assert.Len(t, regs, 3)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := seedRepo(t)
	svc := newTestService(t, repo, okNotifier())

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmit_InventoryFailureKeepsRegistry(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	fn := okNotifier()
	svc := newTestService(t, repo, fn)

	repo.FailInventoryWith = errors.New("db down")
	_, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "juan",
		Activity: "Asalto",
		Lines:    []SubmitLine{{ItemID: "ak-47", Quantity: 2}},
	})
	require.ErrorIs(t, err, domain.ErrPersistence)

	// The registry row was written first and stays behind as the audit
	// trail, unprocessed and with the failure recorded.
	regs, listErr := repo.GetRegistriesByMember(ctx, "juan")
	require.NoError(t, listErr)
	require.Len(t, regs, 1)
	assert.False(t, regs[0].Processed)
	require.NotNil(t, regs[0].ProcessError)
	assert.Contains(t, *regs[0].ProcessError, "inventory")
	require.Len(t, regs[0].Lines, 1)
	assert.Equal(t, "ak-47", regs[0].Lines[0].ItemID)

	// No webhook fires for a submission that never applied its loot.
	assert.Empty(t, fn.payloads)

	repo.FailInventoryWith = nil
	entries, entErr := repo.GetEntriesByMember(ctx, "juan")
	require.NoError(t, entErr)
	assert.Empty(t, entries)
}

func TestSubmit_PersistenceFailure(t *testing.T) {
	ctx := context.Background()
	repo := seedRepo(t)
	svc := newTestService(t, repo, okNotifier())

	repo.FailWith = errors.New("db down")
	_, err := svc.Submit(ctx, SubmitInput{
		AuthorID: "admin-1",
		MemberID: "juan",
		Activity: "Asalto",
		Lines:    []SubmitLine{{ItemID: "ak-47", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
