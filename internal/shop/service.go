package shop

import (
	"context"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/security"
)

const (
	msgProductNotFound    = "Product not found"
	msgProductIDRequired  = "Product ID is required"
	msgInvalidQuantity    = "Quantity must be zero or more"
	msgInvalidCredentials = "Invalid email or password"
)

// ServiceParams groups dependencies for the shop service.
type ServiceParams struct {
	Catalog *Catalog
	Carts   Repository
	Now     func() time.Time
}

// Service exposes the cart and coupon rules of the reference commerce service.
type Service interface {
	Products(ctx context.Context) []Product
	Cart(ctx context.Context, userID string) ([]CartLine, error)
	AddProduct(ctx context.Context, userID, productID string) ([]CartLine, error)
	RemoveProduct(ctx context.Context, userID, productID string) ([]CartLine, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) ([]CartLine, error)
	BestCoupon(ctx context.Context, userID string) (*Coupon, error)
	ValidateCoupon(ctx context.Context, userID, code string) (*Coupon, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
}

type service struct {
	catalog *Catalog
	carts   Repository
	now     func() time.Time
	locks   userLocks
}

// NewService builds a shop service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	if params.Carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository is required")
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		catalog: params.Catalog,
		carts:   params.Carts,
		now:     params.Now,
	}, nil
}

func (s *service) Products(context.Context) []Product {
	return s.catalog.Products()
}

// Cart returns the shopper's lines joined with the catalog. Lines whose
// product left the catalog are skipped.
func (s *service) Cart(ctx context.Context, userID string) ([]CartLine, error) {
	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.join(lines), nil
}

// AddProduct adds one unit of productID.
func (s *service) AddProduct(ctx context.Context, userID, productID string) ([]CartLine, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgProductIDRequired)
	}
	if _, ok := s.catalog.Product(productID); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
	}

	return s.mutate(ctx, userID, func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity++
				return lines, nil
			}
		}
		return append(lines, Line{ProductID: productID, Quantity: 1}), nil
	})
}

// RemoveProduct drops the line for productID. An empty productID empties the
// whole cart.
func (s *service) RemoveProduct(ctx context.Context, userID, productID string) ([]CartLine, error) {
	productID = strings.TrimSpace(productID)
	return s.mutate(ctx, userID, func(lines []Line) ([]Line, error) {
		if productID == "" {
			return nil, nil
		}
		out := lines[:0]
		for _, line := range lines {
			if line.ProductID != productID {
				out = append(out, line)
			}
		}
		return out, nil
	})
}

// SetQuantity overwrites a line's quantity; zero removes it.
func (s *service) SetQuantity(ctx context.Context, userID, productID string, quantity int) ([]CartLine, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgProductIDRequired)
	}
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidQuantity)
	}

	return s.mutate(ctx, userID, func(lines []Line) ([]Line, error) {
		for i := range lines {
			if lines[i].ProductID != productID {
				continue
			}
			if quantity == 0 {
				return append(lines[:i], lines[i+1:]...), nil
			}
			lines[i].Quantity = quantity
			return lines, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgProductNotFound)
	})
}

// BestCoupon returns the shopper's highest active discount, or nil.
func (s *service) BestCoupon(_ context.Context, userID string) (*Coupon, error) {
	cp, ok := s.catalog.Best(userID, s.now())
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

// ValidateCoupon returns the coupon for code when the shopper may use it.
// Expired coupons are returned as-is so the caller can report the expiry;
// unknown, retired or foreign codes yield nil.
func (s *service) ValidateCoupon(_ context.Context, userID, code string) (*Coupon, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Coupon code is required")
	}
	cp, ok := s.catalog.Coupon(code)
	if !ok || !cp.Active || !cp.visibleTo(userID) {
		return nil, nil
	}
	return &cp, nil
}

// Authenticate checks credentials against the seeded accounts.
func (s *service) Authenticate(_ context.Context, email, password string) (User, error) {
	user, ok := s.catalog.UserByEmail(email)
	if !ok || password == "" {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidCredentials)
	}
	match, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return User{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return User{}, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInvalidCredentials)
	}
	return user, nil
}

func (s *service) mutate(ctx context.Context, userID string, fn func([]Line) ([]Line, error)) ([]CartLine, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	lines, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines, err = fn(lines)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, userID, lines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return s.join(lines), nil
}

func (s *service) load(ctx context.Context, userID string) ([]Line, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	lines, err := s.carts.Load(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return lines, nil
}

func (s *service) join(lines []Line) []CartLine {
	out := make([]CartLine, 0, len(lines))
	for _, line := range lines {
		product, ok := s.catalog.Product(line.ProductID)
		if !ok || line.Quantity <= 0 {
			continue
		}
		out = append(out, CartLine{Product: product, Quantity: line.Quantity})
	}
	return out
}

// userLocks serializes read-modify-write cycles per shopper.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*userLock{}
	}
	entry, ok := l.locks[userID]
	if !ok {
		entry = &userLock{}
		l.locks[userID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
