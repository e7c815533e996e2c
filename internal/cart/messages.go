package cart

import (
	"errors"
	"strings"
)

// Shopper-facing messages relayed through the notifier.
const (
	MsgInvalidProduct = "Invalid product"
	MsgAdded          = "Product added to cart"
	MsgAddFailed      = "Failed to add to cart"
	MsgRemoved        = "Item removed from cart"
	MsgRemoveFailed   = "Failed to remove item from cart"
	MsgUpdateFailed   = "Failed to update quantity"
	MsgLoadCartFailed = "Failed to fetch cart items"

	MsgEnterCouponCode = "Please enter a coupon code"
	MsgInvalidCoupon   = "Invalid coupon code"
	MsgExpiredCoupon   = "This coupon has expired"
	MsgLoginForCoupon  = "Please log in to apply a coupon"
	MsgApplyFailed     = "Failed to apply coupon"
	MsgCouponRemoved   = "Coupon removed"
	msgCouponApplied   = "Coupon applied! %s%% off"
)

// serviceMessenger is implemented by transport errors that carry the
// human-readable message from the service's error body.
type serviceMessenger interface {
	ServiceMessage() string
}

func userMessage(err error, fallback string) string {
	var sm serviceMessenger
	if errors.As(err, &sm) {
		if msg := strings.TrimSpace(sm.ServiceMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}
