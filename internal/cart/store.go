package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/cartsync/internal/notify"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	opLoadCart    = "cart.load"
	opAddItem     = "cart.add"
	opRemoveItem  = "cart.remove"
	opSetQuantity = "cart.set_quantity"
	opClear       = "cart.clear"
)

// Remote is the commerce service surface the store synchronizes with. A nil
// coupon with a nil error means the service had no coupon to return.
type Remote interface {
	GetCart(ctx context.Context) ([]CartItem, error)
	AddToCart(ctx context.Context, productID string) error
	RemoveFromCart(ctx context.Context, productID string) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	GetCoupon(ctx context.Context) (*Coupon, error)
	ValidateCoupon(ctx context.Context, code string) (*Coupon, error)
}

// CouponState names where the store sits in the coupon lifecycle.
type CouponState string

const (
	StateNoCoupon      CouponState = "no_coupon"
	StateCouponApplied CouponState = "coupon_applied"
	StateValidating    CouponState = "validating"
)

// Snapshot is an immutable, internally consistent view of the store.
type Snapshot struct {
	Items         []CartItem
	Coupon        *Coupon
	CouponApplied bool
	// CouponActive is true when the applied coupon contributed to Total.
	CouponActive bool
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
	// Loading is true while at least one coupon validation is in flight.
	Loading bool
	Version uint64
}

func (s Snapshot) CouponState() CouponState {
	switch {
	case s.Loading:
		return StateValidating
	case s.Coupon != nil && s.CouponApplied:
		return StateCouponApplied
	}
	return StateNoCoupon
}

// Item returns the cart line for id.
func (s Snapshot) Item(id string) (CartItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}

// Quantity returns the number of units across all lines.
func (s Snapshot) Quantity() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// StoreParams wires the store's collaborators.
type StoreParams struct {
	Remote   Remote
	Notifier notify.Sink
	Logger   *logger.Logger
	Now      func() time.Time
}

// Store is the shopper's cart and coupon state. All methods are safe for
// concurrent use; remote calls run outside the lock and results commit in
// completion order.
type Store struct {
	remote   Remote
	notifier notify.Sink
	logg     *logger.Logger
	now      func() time.Time

	mu          sync.Mutex
	state       state
	subscribers map[int]func(Snapshot)
	nextSubID   int

	// deliverMu orders subscriber calls; delivered is the last version sent.
	deliverMu sync.Mutex
	delivered uint64
}

type state struct {
	items         []CartItem
	coupon        *Coupon
	couponApplied bool
	inflight      int
	version       uint64
}

// NewStore builds an empty store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Remote == nil {
		return nil, fmt.Errorf("remote commerce client required")
	}
	if params.Notifier == nil {
		params.Notifier = notify.Discard
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Store{
		remote:      params.Remote,
		notifier:    params.Notifier,
		logg:        params.Logger,
		now:         params.Now,
		subscribers: map[int]func(Snapshot){},
	}, nil
}

// Snapshot returns the latest committed state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive committed snapshots in increasing Version
// order; a snapshot overtaken by a newer one is skipped. Calls are serialized,
// so fn must not invoke store operations. The returned function removes the
// subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// LoadCart replaces the local cart with the service's copy. On failure the
// cart is emptied.
func (s *Store) LoadCart(ctx context.Context) (Snapshot, error) {
	ctx = s.logg.WithOperation(ctx, opLoadCart)

	items, err := s.remote.GetCart(ctx)
	if err != nil {
		snap := s.commit(func(st *state) { st.items = nil })
		return snap, s.fail(ctx, err, MsgLoadCartFailed)
	}

	snap := s.commit(func(st *state) { st.items = s.reconcile(ctx, items) })
	s.logg.Debug(s.logg.WithField(ctx, "items", len(snap.Items)), "cart.loaded")
	return snap, nil
}

// AddItem adds one unit of product to the cart.
func (s *Store) AddItem(ctx context.Context, product Product) (Snapshot, error) {
	ctx = s.logg.WithOperation(ctx, opAddItem)

	product.ID = strings.TrimSpace(product.ID)
	if product.ID == "" {
		return s.Snapshot(), s.reject(ctx, MsgInvalidProduct)
	}
	ctx = s.logg.WithField(ctx, "product_id", product.ID)

	if err := s.remote.AddToCart(ctx, product.ID); err != nil {
		return s.Snapshot(), s.fail(ctx, err, MsgAddFailed)
	}

	snap := s.commit(func(st *state) {
		st.items = withIncrement(st.items, product)
	})
	s.notifier.Notify(ctx, notify.Success(MsgAdded))
	return snap, nil
}

// RemoveItem deletes the line for productID.
func (s *Store) RemoveItem(ctx context.Context, productID string) (Snapshot, error) {
	ctx = s.logg.WithOperation(ctx, opRemoveItem)

	productID = strings.TrimSpace(productID)
	if productID == "" {
		return s.Snapshot(), s.reject(ctx, MsgInvalidProduct)
	}
	ctx = s.logg.WithField(ctx, "product_id", productID)

	if err := s.remote.RemoveFromCart(ctx, productID); err != nil {
		return s.Snapshot(), s.fail(ctx, err, MsgRemoveFailed)
	}

	snap := s.commit(func(st *state) {
		st.items = without(st.items, productID)
	})
	s.notifier.Notify(ctx, notify.Success(MsgRemoved))
	return snap, nil
}

// SetQuantity sets the quantity of a line. Negative values are ignored and
// zero removes the line.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) (Snapshot, error) {
	if quantity < 0 {
		return s.Snapshot(), nil
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, productID)
	}

	ctx = s.logg.WithOperation(ctx, opSetQuantity)
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return s.Snapshot(), s.reject(ctx, MsgInvalidProduct)
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"product_id": productID, "quantity": quantity})

	if err := s.remote.UpdateQuantity(ctx, productID, quantity); err != nil {
		return s.Snapshot(), s.fail(ctx, err, MsgUpdateFailed)
	}

	return s.commit(func(st *state) {
		st.items = withQuantity(st.items, productID, quantity)
	}), nil
}

// Clear resets cart and coupon locally. Used on logout.
func (s *Store) Clear() Snapshot {
	snap := s.commit(func(st *state) {
		st.items = nil
		st.coupon = nil
		st.couponApplied = false
	})
	s.logg.Debug(s.logg.WithOperation(context.Background(), opClear), "cart.cleared")
	return snap
}

// commit applies mutate and publishes the result with fresh totals.
func (s *Store) commit(mutate func(st *state)) Snapshot {
	s.mu.Lock()
	mutate(&s.state)
	snap, subs := s.publishLocked()
	s.mu.Unlock()

	s.deliver(snap, subs)
	return snap
}

// beginLoading and endLoading track in-flight coupon validations without
// touching cart or coupon state.
func (s *Store) beginLoading() Snapshot {
	return s.commit(func(st *state) { st.inflight++ })
}

func (s *Store) endLoading() Snapshot {
	return s.commit(func(st *state) {
		if st.inflight > 0 {
			st.inflight--
		}
	})
}

func (s *Store) deliver(snap Snapshot, subs []func(Snapshot)) {
	if len(subs) == 0 {
		return
	}
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if snap.Version <= s.delivered {
		return
	}
	s.delivered = snap.Version
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) publishLocked() (Snapshot, []func(Snapshot)) {
	s.state.version++
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return s.snapshotLocked(), subs
}

// snapshotLocked derives totals and coupon activity from a single clock
// reading, so an expired coupon never discounts a snapshot that reports it
// inactive.
func (s *Store) snapshotLocked() Snapshot {
	now := s.now()
	items := make([]CartItem, len(s.state.items))
	for i, item := range s.state.items {
		items[i] = item.clone()
	}
	var coupon *Coupon
	if s.state.coupon != nil {
		c := *s.state.coupon
		coupon = &c
	}
	totals := CalculateTotals(items, coupon, s.state.couponApplied, now)
	return Snapshot{
		Items:         items,
		Coupon:        coupon,
		CouponApplied: s.state.couponApplied,
		CouponActive:  coupon != nil && s.state.couponApplied && coupon.ActiveAt(now),
		Subtotal:      totals.Subtotal,
		Total:         totals.Total,
		Loading:       s.state.inflight > 0,
		Version:       s.state.version,
	}
}

// reconcile enforces one positive-quantity line per product on a server cart.
func (s *Store) reconcile(ctx context.Context, items []CartItem) []CartItem {
	out := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" || item.Quantity <= 0 {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"product_id": item.ID,
				"quantity":   item.Quantity,
			}), "cart.item_dropped")
			continue
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item.clone())
	}
	return out
}

// reject reports invalid input detected before any remote call.
func (s *Store) reject(ctx context.Context, msg string) error {
	s.notifier.Notify(ctx, notify.Error(msg))
	s.logg.Debug(ctx, "cart.rejected")
	return pkgerrors.New(pkgerrors.CodeValidation, msg)
}

// fail relays a remote failure, preferring the service's own message.
func (s *Store) fail(ctx context.Context, err error, fallback string) error {
	s.notifier.Notify(ctx, notify.Error(userMessage(err, fallback)))
	s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"error": err.Error()}), "cart.remote_failed")
	if pkgerrors.As(err) == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fallback)
	}
	return err
}

func withIncrement(items []CartItem, product Product) []CartItem {
	out := make([]CartItem, 0, len(items)+1)
	found := false
	for _, item := range items {
		if item.ID == product.ID {
			item.Quantity++
			found = true
		}
		out = append(out, item)
	}
	if !found {
		out = append(out, CartItem{Product: product, Quantity: 1})
	}
	return out
}

func without(items []CartItem, productID string) []CartItem {
	out := make([]CartItem, 0, len(items))
	for _, item := range items {
		if item.ID != productID {
			out = append(out, item)
		}
	}
	return out
}

func withQuantity(items []CartItem, productID string, quantity int) []CartItem {
	out := make([]CartItem, len(items))
	for i, item := range items {
		if item.ID == productID {
			item.Quantity = quantity
		}
		out[i] = item
	}
	return out
}
