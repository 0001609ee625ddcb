package repos_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/internal/domain"
	"productcatalog/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func fixedClock(ts string) func() time.Time {
	t, _ := time.Parse(time.RFC3339, ts)
	return func() time.Time { return t }
}

func TestCommit_CreateAssignsIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := repos.NewStore(memdb(t)).WithClock(fixedClock("2026-01-02T03:04:05Z"))

	uow := store.Begin()
	a := domain.NewProduct("Widget", "A widget", 10)
	b := domain.NewProduct("Gadget", "", 0)
	require.NoError(t, uow.Products().Create(ctx, a))
	require.NoError(t, uow.Products().Create(ctx, b))

	// nothing is visible before commit
	all, err := uow.Products().GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Zero(t, a.ID())

	require.NoError(t, uow.Commit(ctx))
	assert.Equal(t, int64(1), a.ID())
	assert.Equal(t, int64(2), b.ID())
	assert.Equal(t, "2026-01-02T03:04:05Z", a.Audit().CreatedAt.Format(time.RFC3339))
	assert.Nil(t, a.Audit().UpdatedAt)

	got, ok, err := store.Begin().Products().Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Widget", got.Name())
	assert.Equal(t, "A widget", got.Description())
	assert.Equal(t, 10, got.Quantity())
	assert.Equal(t, domain.InStock, got.StockStatus())
	assert.True(t, a.Audit().CreatedAt.Equal(got.Audit().CreatedAt))

	got, ok, err = store.Begin().Products().Get(ctx, 2)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.OutOfStock, got.StockStatus())
}

func TestGet_Missing(t *testing.T) {
	store := repos.NewStore(memdb(t))
	p, ok, err := store.Begin().Products().Get(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestCommit_UpdateSoftDeleteRestore(t *testing.T) {
	ctx := context.Background()
	now := "2026-01-01T00:00:00Z"
	store := repos.NewStore(memdb(t)).WithClock(func() time.Time { return fixedClock(now)() })

	uow := store.Begin()
	require.NoError(t, uow.Products().Create(ctx, domain.NewProduct("Widget", "", 3)))
	require.NoError(t, uow.Commit(ctx))

	// soft delete
	now = "2026-01-05T00:00:00Z"
	uow = store.Begin()
	p, _, err := uow.Products().Get(ctx, 1)
	require.NoError(t, err)
	p.SoftDelete()
	p.SetQuantity(0)
	require.NoError(t, uow.Products().Update(ctx, p))
	require.NoError(t, uow.Commit(ctx))
	require.NotNil(t, p.Audit().DeletedAt)
	assert.Equal(t, now, p.Audit().DeletedAt.Format(time.RFC3339))

	got, _, err := store.Begin().Products().Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())
	assert.Equal(t, 0, got.Quantity())
	require.NotNil(t, got.Audit().UpdatedAt)
	require.NotNil(t, got.Audit().DeletedAt)
	assert.Equal(t, now, got.Audit().DeletedAt.Format(time.RFC3339))

	// a second soft delete keeps the first stamp
	now = "2026-01-06T00:00:00Z"
	uow = store.Begin()
	got.SoftDelete()
	require.NoError(t, uow.Products().Update(ctx, got))
	require.NoError(t, uow.Commit(ctx))
	assert.Equal(t, "2026-01-05T00:00:00Z", got.Audit().DeletedAt.Format(time.RFC3339))
	assert.Equal(t, now, got.Audit().UpdatedAt.Format(time.RFC3339))

	// restore clears it
	uow = store.Begin()
	got.Restore()
	require.NoError(t, uow.Products().Update(ctx, got))
	require.NoError(t, uow.Commit(ctx))

	again, _, err := store.Begin().Products().Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, again.IsDeleted())
	assert.Nil(t, again.Audit().DeletedAt)
}

func TestCommit_HardDelete(t *testing.T) {
	ctx := context.Background()
	store := repos.NewStore(memdb(t))

	uow := store.Begin()
	p := domain.NewProduct("Widget", "", 3)
	require.NoError(t, uow.Products().Create(ctx, p))
	require.NoError(t, uow.Commit(ctx))

	uow = store.Begin()
	require.NoError(t, uow.Products().Delete(ctx, p))
	require.NoError(t, uow.Commit(ctx))
	assert.NotNil(t, p.Audit().DeletedAt)

	_, ok, err := store.Begin().Products().Get(ctx, p.ID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommit_StaleRowRollsBack(t *testing.T) {
	ctx := context.Background()
	store := repos.NewStore(memdb(t))

	uow := store.Begin()
	p := domain.NewProduct("Widget", "", 3)
	require.NoError(t, uow.Products().Create(ctx, p))
	require.NoError(t, uow.Commit(ctx))

	ghost := domain.LoadProduct(domain.Snapshot{ID: 99, Name: "Ghost", Quantity: 1})

	uow = store.Begin()
	p.SetQuantity(50)
	require.NoError(t, uow.Products().Update(ctx, p))
	require.NoError(t, uow.Products().Update(ctx, ghost))
	err := uow.Commit(ctx)
	require.ErrorIs(t, err, repos.ErrStaleProduct)

	// the first update went down with the transaction
	got, _, err := store.Begin().Products().Get(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity())
}

func TestCommit_NothingPending(t *testing.T) {
	store := repos.NewStore(memdb(t))
	assert.NoError(t, store.Begin().Commit(context.Background()))
}

func TestCreate_RejectsPersistedProduct(t *testing.T) {
	store := repos.NewStore(memdb(t))
	p := domain.LoadProduct(domain.Snapshot{ID: 3, Name: "Widget"})
	err := store.Begin().Products().Create(context.Background(), p)
	assert.ErrorIs(t, err, domain.ErrIDAlreadyAssigned)
}

func TestSeedIfEmpty_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := memdb(t)

	seeded, err := repos.SeedIfEmpty(ctx, db)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = repos.SeedIfEmpty(ctx, db)
	require.NoError(t, err)
	assert.False(t, seeded)

	all, err := repos.NewStore(db).Begin().Products().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
