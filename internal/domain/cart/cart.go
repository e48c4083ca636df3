// Package cart owns the shopping cart state: one line per product, quantity
// always at least one, every successful mutation persisted and announced.
package cart

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dwarforca/storefront/internal/domain/product"
	"github.com/dwarforca/storefront/internal/storage/kv"
)

// StorageKey is the persistent-store key holding the serialized cart. The
// format under this key matches what earlier storefront builds wrote, so an
// existing cart survives the upgrade.
const StorageKey = "dwarforca_cart"

// Line is one product's entry in the cart. Name and Price are snapshots
// taken when the line was first created; they are not re-synced if the
// catalog changes later.
type Line struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Subtotal returns price times quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Totals holds the aggregates derived from the cart lines.
type Totals struct {
	// ItemCount is the sum of all line quantities (the badge number).
	ItemCount int
	// Total is the exact sum of line subtotals. Rounding to two decimal
	// places happens only at presentation time.
	Total decimal.Decimal
}

// Summary is the observable cart state handed to subscribers after a
// mutation.
type Summary struct {
	Lines  []Line
	Totals Totals
}

// Notifier receives fire-and-forget user-facing acknowledgments such as
// "Orca Enamel Pin added to cart".
type Notifier interface {
	Notify(message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

// LogNotifier writes acknowledgments to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(message string) {
	n.Logger.Info("notification", zap.String("message", message))
}

// Option configures a Manager.
type Option func(*Manager)

// WithNotifier sets the acknowledgment sink.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the manager's logger.
func WithLogger(lg *zap.Logger) Option {
	return func(m *Manager) { m.lg = lg }
}

// Manager owns the in-memory cart, validates mutations against the catalog
// snapshot supplied at construction, and writes the serialized cart to the
// persistent store after every successful mutation.
//
// Invalid mutations (unknown product, zero-stock product, SetQuantity on an
// absent line) change nothing and report no error: the storefront never
// fails a user interaction over them. The only errors mutations return are
// persistent-store write failures, and those leave the in-memory state
// untouched as well.
type Manager struct {
	store    kv.Store
	catalog  *product.Snapshot
	notifier Notifier
	lg       *zap.Logger

	mu    sync.Mutex
	lines []Line
	subs  []func(Summary)
}

// New creates a Manager bound to the given store and catalog snapshot. The
// caller must have finished catalog retrieval (or fallen back) before
// constructing the manager; mutations never observe a partial catalog.
func New(store kv.Store, catalog *product.Snapshot, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		catalog:  catalog,
		notifier: nopNotifier{},
		lg:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load restores the cart from the persistent store. Absent or undecodable
// state yields an empty cart; Load never fails.
func (m *Manager) Load(ctx context.Context) {
	raw, err := m.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			m.lg.Warn("cart load failed, starting empty", zap.Error(err))
		}
		return
	}

	lines, err := decodeLines(raw)
	if err != nil {
		m.lg.Debug("discarding undecodable cart state", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.lines = lines
	m.mu.Unlock()
}

// Subscribe registers a callback invoked with the updated summary after
// every successful mutation. Callbacks run synchronously on the mutating
// goroutine.
func (m *Manager) Subscribe(fn func(Summary)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// AddItem adds one unit of the given product. Unknown products and products
// with zero stock are ignored. An existing line has its quantity
// incremented; otherwise a new line is appended with a name/price snapshot
// from the catalog. Stock is only consulted here: quantity may grow past
// the product's stock through repeated adds.
func (m *Manager) AddItem(ctx context.Context, productID int64) error {
	p, ok := m.catalog.Get(productID)
	if !ok || !p.Available() {
		m.lg.Debug("add ignored", zap.Int64("product_id", productID), zap.Bool("known", ok))
		return nil
	}

	m.mu.Lock()
	next := cloneLines(m.lines)
	if i := findLine(next, productID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  1,
		})
	}
	summary, err := m.commitLocked(ctx, next)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.notifier.Notify(p.Name + " added to cart!")
	m.publish(summary)
	return nil
}

// RemoveItem deletes the line for the given product. Removing an absent
// line is a no-op, not an error.
func (m *Manager) RemoveItem(ctx context.Context, productID int64) error {
	m.mu.Lock()
	i := findLine(m.lines, productID)
	if i < 0 {
		m.mu.Unlock()
		return nil
	}
	next := cloneLines(m.lines)
	next = append(next[:i], next[i+1:]...)
	summary, err := m.commitLocked(ctx, next)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.publish(summary)
	return nil
}

// SetQuantity overwrites the quantity of an existing line. A quantity of
// zero or less removes the line. SetQuantity never creates a line and never
// re-validates stock.
func (m *Manager) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return m.RemoveItem(ctx, productID)
	}

	m.mu.Lock()
	i := findLine(m.lines, productID)
	if i < 0 || m.lines[i].Quantity == quantity {
		m.mu.Unlock()
		return nil
	}
	next := cloneLines(m.lines)
	next[i].Quantity = quantity
	summary, err := m.commitLocked(ctx, next)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.publish(summary)
	return nil
}

// Lines returns the cart lines in insertion order.
func (m *Manager) Lines() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneLines(m.lines)
}

// Totals returns the derived aggregates for the current cart state.
func (m *Manager) Totals() Totals {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalsOf(m.lines)
}

// Summary returns lines and totals in one consistent snapshot.
func (m *Manager) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Summary{Lines: cloneLines(m.lines), Totals: totalsOf(m.lines)}
}

// Empty reports whether the cart holds no lines. Checkout eligibility is
// derived from this rather than tracked separately.
func (m *Manager) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lines) == 0
}

// commitLocked persists the candidate line set and installs it on success.
// On a store failure the previous state stays in place. Caller holds m.mu.
func (m *Manager) commitLocked(ctx context.Context, next []Line) (Summary, error) {
	if err := m.store.Set(ctx, StorageKey, encodeLines(next)); err != nil {
		return Summary{}, errors.Wrap(err, "persist cart")
	}
	m.lines = next
	return Summary{Lines: cloneLines(next), Totals: totalsOf(next)}, nil
}

// publish fans the summary out to subscribers. Called without m.mu held so
// subscribers may query the manager.
func (m *Manager) publish(s Summary) {
	m.mu.Lock()
	subs := make([]func(Summary), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

func totalsOf(lines []Line) Totals {
	t := Totals{Total: decimal.Zero}
	for _, l := range lines {
		t.ItemCount += l.Quantity
		t.Total = t.Total.Add(l.Subtotal())
	}
	return t
}

func findLine(lines []Line, productID int64) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
