package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/cartsync/internal/notify"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
)

const (
	opFetchCoupon  = "coupon.fetch"
	opApplyCoupon  = "coupon.apply"
	opRemoveCoupon = "coupon.remove"
)

// FetchBestCoupon asks the service for the shopper's eligible coupon and
// applies it when it is still active. Failures clear the coupon quietly.
func (s *Store) FetchBestCoupon(ctx context.Context) (Snapshot, error) {
	ctx = s.logg.WithOperation(ctx, opFetchCoupon)

	coupon, err := s.remote.GetCoupon(ctx)
	if err != nil {
		snap := s.commit(clearCoupon)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"error": err.Error()}), "coupon.fetch_failed")
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch coupon")
		}
		return snap, err
	}

	if coupon == nil || !coupon.ActiveAt(s.now()) {
		return s.commit(clearCoupon), nil
	}

	snap := s.commit(applyCoupon(*coupon))
	s.logg.Debug(s.logg.WithField(ctx, "coupon_code", coupon.Code), "coupon.fetched")
	return snap, nil
}

// ApplyCoupon validates code with the service and applies the returned
// coupon. Any failure leaves the store without a coupon. Loading is set for
// the whole call and stays set until every overlapping call has finished.
func (s *Store) ApplyCoupon(ctx context.Context, code string) (snap Snapshot, err error) {
	ctx = s.logg.WithOperation(ctx, opApplyCoupon)

	code = strings.TrimSpace(code)
	if code == "" {
		s.notifier.Notify(ctx, notify.Error(MsgEnterCouponCode))
		return s.Snapshot(), pkgerrors.New(pkgerrors.CodeValidation, MsgEnterCouponCode)
	}
	ctx = s.logg.WithField(ctx, "coupon_code", code)

	s.beginLoading()
	defer func() {
		snap = s.endLoading()
	}()

	return Snapshot{}, s.validateAndApply(ctx, code)
}

func (s *Store) validateAndApply(ctx context.Context, code string) error {
	coupon, err := s.remote.ValidateCoupon(ctx, code)
	if err != nil {
		s.commit(clearCoupon)
		if pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
			s.notifier.Notify(ctx, notify.Error(MsgLoginForCoupon))
		} else {
			s.notifier.Notify(ctx, notify.Error(userMessage(err, MsgApplyFailed)))
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"error": err.Error()}), "coupon.apply_failed")
		if pkgerrors.As(err) == nil {
			err = pkgerrors.Wrap(pkgerrors.CodeDependency, err, MsgApplyFailed)
		}
		return err
	}

	if coupon == nil {
		s.commit(clearCoupon)
		s.notifier.Notify(ctx, notify.Error(MsgInvalidCoupon))
		return pkgerrors.New(pkgerrors.CodeCouponInvalid, MsgInvalidCoupon)
	}

	if !coupon.ActiveAt(s.now()) {
		s.commit(clearCoupon)
		s.notifier.Notify(ctx, notify.Error(MsgExpiredCoupon))
		return pkgerrors.New(pkgerrors.CodeCouponExpired, MsgExpiredCoupon).
			WithDetails(map[string]any{"expiration_date": coupon.ExpirationDate})
	}

	s.commit(applyCoupon(*coupon))
	s.notifier.Notify(ctx, notify.Success(fmt.Sprintf(msgCouponApplied, coupon.DiscountPercentage.String())))
	return nil
}

// RemoveCoupon drops the applied coupon locally.
func (s *Store) RemoveCoupon(ctx context.Context) Snapshot {
	ctx = s.logg.WithOperation(ctx, opRemoveCoupon)
	snap := s.commit(clearCoupon)
	s.notifier.Notify(ctx, notify.Success(MsgCouponRemoved))
	return snap
}

func clearCoupon(st *state) {
	st.coupon = nil
	st.couponApplied = false
}

func applyCoupon(c Coupon) func(st *state) {
	return func(st *state) {
		st.coupon = &c
		st.couponApplied = true
	}
}
