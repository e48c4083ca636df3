package cart

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarforca/storefront/internal/catalog"
	"github.com/dwarforca/storefront/internal/domain/product"
	"github.com/dwarforca/storefront/internal/storage/kv"
)

// --- Helpers ---

func testSnapshot() *product.Snapshot {
	return product.NewSnapshot([]product.Product{
		{ID: 1, Name: "Killer Whale Plush - Small", Price: decimal.RequireFromString("14.99"), Stock: 5},
		{ID: 2, Name: "Killer Whale Plush - Medium", Price: decimal.RequireFromString("24.99"), Stock: 3},
		{ID: 5, Name: "Orca Enamel Pin", Price: decimal.RequireFromString("8.99"), Stock: 0},
	})
}

type recorder struct {
	summaries []Summary
	messages  []string
}

func (r *recorder) Notify(message string) {
	r.messages = append(r.messages, message)
}

func newTestManager(t *testing.T) (*Manager, *kv.MemoryStore, *recorder) {
	t.Helper()
	store := kv.NewMemoryStore()
	rec := &recorder{}
	m := New(store, testSnapshot(), WithNotifier(rec))
	m.Subscribe(func(s Summary) { rec.summaries = append(rec.summaries, s) })
	return m, store, rec
}

// failingStore reads normally but refuses every write.
type failingStore struct {
	*kv.MemoryStore
	setErr error
}

func newFailingStore(setErr error) *failingStore {
	return &failingStore{MemoryStore: kv.NewMemoryStore(), setErr: setErr}
}

func (s *failingStore) Set(context.Context, string, string) error {
	return s.setErr
}

// --- Tests ---

func TestAddItem_NewLine(t *testing.T) {
	m, _, rec := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddItem(ctx, 1))

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, "Killer Whale Plush - Small", lines[0].Name)
	assert.Equal(t, 1, lines[0].Quantity)

	totals := m.Totals()
	assert.Equal(t, 1, totals.ItemCount)
	assert.True(t, decimal.RequireFromString("14.99").Equal(totals.Total))

	require.Len(t, rec.summaries, 1)
	assert.Equal(t, []string{"Killer Whale Plush - Small added to cart!"}, rec.messages)
}

func TestAddItem_IncrementsExistingLine(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddItem(ctx, 1))
	require.NoError(t, m.AddItem(ctx, 1))
	require.NoError(t, m.AddItem(ctx, 1))

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("44.97").Equal(m.Totals().Total))
}

func TestAddItem_UnknownProductIsSilentNoop(t *testing.T) {
	m, _, rec := newTestManager(t)

	require.NoError(t, m.AddItem(context.Background(), 99))

	assert.Empty(t, m.Lines())
	assert.Empty(t, rec.summaries)
	assert.Empty(t, rec.messages)
}

func TestAddItem_ZeroStockIsSilentNoop(t *testing.T) {
	m, _, rec := newTestManager(t)

	require.NoError(t, m.AddItem(context.Background(), 5))

	assert.Empty(t, m.Lines())
	assert.Empty(t, rec.summaries)
}

func TestAddItem_AgainstFallbackCatalogNeverCreatesLines(t *testing.T) {
	store := kv.NewMemoryStore()
	snap := product.NewSnapshot(catalog.Fallback())
	m := New(store, snap)
	ctx := context.Background()

	for _, p := range snap.List() {
		require.NoError(t, m.AddItem(ctx, p.ID))
	}

	assert.Empty(t, m.Lines())
	assert.Equal(t, 0, m.Totals().ItemCount)
}

func TestAddItem_UniquenessAcrossArbitrarySequences(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 1, 2, 2, 1, 99, 1} {
		require.NoError(t, m.AddItem(ctx, id))
	}

	lines := m.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].ProductID)
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, int64(2), lines[1].ProductID)
	assert.Equal(t, 3, lines[1].Quantity)
}

func TestRemoveItem(t *testing.T) {
	m, _, rec := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddItem(ctx, 1))
	require.NoError(t, m.AddItem(ctx, 2))
	require.NoError(t, m.RemoveItem(ctx, 1))

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)
	require.Len(t, rec.summaries, 3)
}

func TestRemoveItem_AbsentLineIsNoop(t *testing.T) {
	m, _, rec := newTestManager(t)

	require.NoError(t, m.RemoveItem(context.Background(), 1))

	assert.Empty(t, rec.summaries)
}

func TestSetQuantity_Overwrites(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddItem(ctx, 1))
	require.NoError(t, m.SetQuantity(ctx, 1, 7))

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("104.93").Equal(m.Totals().Total))
}

func TestSetQuantity_CanExceedStock(t *testing.T) {
	// Stock is only checked at add time; quantity growth is unvalidated.
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddItem(ctx, 2))
	require.NoError(t, m.SetQuantity(ctx, 2, 50))

	assert.Equal(t, 50, m.Lines()[0].Quantity)
}

func TestSetQuantity_NonPositiveRemovesLine(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddItem(ctx, 1))
	require.NoError(t, m.AddItem(ctx, 1))
	require.NoError(t, m.SetQuantity(ctx, 1, -1))

	assert.Empty(t, m.Lines())

	require.NoError(t, m.AddItem(ctx, 1))
	require.NoError(t, m.SetQuantity(ctx, 1, 0))
	assert.Empty(t, m.Lines())
}

func TestSetQuantity_NeverCreatesLines(t *testing.T) {
	m, _, rec := newTestManager(t)

	require.NoError(t, m.SetQuantity(context.Background(), 1, 3))

	assert.Empty(t, m.Lines())
	assert.Empty(t, rec.summaries)
}

func TestQuantityFloorInvariant(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	ops := []func() error{
		func() error { return m.AddItem(ctx, 1) },
		func() error { return m.AddItem(ctx, 2) },
		func() error { return m.SetQuantity(ctx, 1, 4) },
		func() error { return m.SetQuantity(ctx, 2, 0) },
		func() error { return m.AddItem(ctx, 2) },
		func() error { return m.RemoveItem(ctx, 1) },
	}
	for _, op := range ops {
		require.NoError(t, op())
		for _, l := range m.Lines() {
			assert.GreaterOrEqual(t, l.Quantity, 1)
		}
	}
}

func TestPersistsAfterEveryMutation(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.AddItem(ctx, 1))

	raw, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Killer Whale Plush - Small","price":14.99,"quantity":1}]`, raw)

	require.NoError(t, m.SetQuantity(ctx, 1, 2))
	raw, err = store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Killer Whale Plush - Small","price":14.99,"quantity":2}]`, raw)

	require.NoError(t, m.RemoveItem(ctx, 1))
	raw, err = store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, raw)
}

func TestLoad_RestoresPersistedCart(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, StorageKey,
		`[{"id":2,"name":"Killer Whale Plush - Medium","price":24.99,"quantity":2}]`))

	m := New(store, testSnapshot())
	m.Load(ctx)

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("49.98").Equal(m.Totals().Total))
}

func TestLoad_CorruptStateYieldsEmptyCart(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, StorageKey, `{"definitely":"not a cart"`))

	m := New(store, testSnapshot())
	m.Load(ctx)

	assert.Empty(t, m.Lines())
}

func TestLoad_AbsentStateYieldsEmptyCart(t *testing.T) {
	m := New(kv.NewMemoryStore(), testSnapshot())
	m.Load(context.Background())
	assert.Empty(t, m.Lines())
}

func TestStoreFailureLeavesStateUnchanged(t *testing.T) {
	m, store, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, m.AddItem(ctx, 1))

	broken := New(newFailingStore(errors.New("disk full")), testSnapshot())
	broken.Load(ctx)
	err := broken.AddItem(ctx, 1)
	require.Error(t, err)
	assert.Empty(t, broken.Lines())

	// The original manager is unaffected.
	raw, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
}

func TestStoreFailureKeepsLoadedState(t *testing.T) {
	fs := newFailingStore(errors.New("disk full"))
	ctx := context.Background()
	require.NoError(t, fs.MemoryStore.Set(ctx, StorageKey,
		`[{"id":1,"name":"Killer Whale Plush - Small","price":14.99,"quantity":2}]`))

	m := New(fs, testSnapshot())
	m.Load(ctx)
	require.Len(t, m.Lines(), 1)

	// A failed write leaves the restored state exactly as loaded.
	require.Error(t, m.AddItem(ctx, 1))
	require.Error(t, m.SetQuantity(ctx, 1, 5))
	require.Error(t, m.RemoveItem(ctx, 1))

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestTotalsAreExact(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	// 3×14.99 + 2×24.99 = 44.97 + 49.98 = 94.95, exactly.
	for range 3 {
		require.NoError(t, m.AddItem(ctx, 1))
	}
	require.NoError(t, m.AddItem(ctx, 2))
	require.NoError(t, m.SetQuantity(ctx, 2, 2))

	totals := m.Totals()
	assert.Equal(t, 5, totals.ItemCount)
	assert.True(t, decimal.RequireFromString("94.95").Equal(totals.Total),
		"got %s", totals.Total)
}
