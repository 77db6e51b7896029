package model

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeItemNotFound         = "ITEM_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeAddressNotFound      = "ADDRESS_NOT_FOUND"
	ErrCodeNotInCart            = "NOT_IN_CART"
	ErrCodeMissingDiscount      = "MISSING_DISCOUNT"
	ErrCodeCheckoutIncomplete   = "CHECKOUT_INCOMPLETE"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodePaymentFailed        = "PAYMENT_FAILED"
	ErrCodeBillingRequired      = "BILLING_ADDRESS_REQUIRED"
	ErrCodePaymentRequired      = "PAYMENT_REQUIRED"
	ErrCodeNothingToCharge      = "NOTHING_TO_CHARGE"
	ErrCodeInvalidAddress       = "INVALID_ADDRESS"
	ErrCodeInvalidCoupon        = "INVALID_COUPON"
	ErrCodeCouponApplied        = "COUPON_ALREADY_APPLIED"
	ErrCodeInvalidTransition    = "INVALID_TRANSITION"
	ErrCodeInvalidRefundRequest = "INVALID_REFUND_REQUEST"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError is a business rule violation reported back to the caller.
// A DomainError may refine a broader one; errors.Is matches both.
type DomainError struct {
	Code    string
	Message string
	parent  *DomainError
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the broader error this one refines, if any.
func (e *DomainError) Unwrap() error {
	if e.parent == nil {
		return nil
	}
	return e.parent
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// refine creates a domain error that is also reported as parent.
func refine(parent *DomainError, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		parent:  parent,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrItemNotFound       = refine(ErrNotFound, ErrCodeItemNotFound, "Item not found")
	ErrOrderNotFound      = refine(ErrNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrAddressNotFound    = refine(ErrNotFound, ErrCodeAddressNotFound, "Address not found")
	ErrNotInCart          = NewDomainError(ErrCodeNotInCart, "Item is not in the cart")
	ErrMissingDiscount    = NewDomainError(ErrCodeMissingDiscount, "Item has no discount price")
	ErrCheckoutIncomplete = NewDomainError(ErrCodeCheckoutIncomplete, "Checkout requires a billing address and a payment")
	ErrEmptyCart          = refine(ErrCheckoutIncomplete, ErrCodeEmptyCart, "Cart is empty")
	ErrPaymentFailed      = refine(ErrCheckoutIncomplete, ErrCodePaymentFailed, "Payment was not successful")
	ErrBillingRequired    = refine(ErrCheckoutIncomplete, ErrCodeBillingRequired, "A billing address is required")
	ErrPaymentRequired    = refine(ErrCheckoutIncomplete, ErrCodePaymentRequired, "A payment token is required")
	ErrNothingToCharge    = refine(ErrCheckoutIncomplete, ErrCodeNothingToCharge, "Order total must be greater than zero to be charged")
	ErrInvalidAddress     = refine(ErrCheckoutIncomplete, ErrCodeInvalidAddress, "Address needs a street, a country and a zip code")
	ErrInvalidCoupon      = NewDomainError(ErrCodeInvalidCoupon, "Coupon code does not exist")
	ErrCouponApplied      = NewDomainError(ErrCodeCouponApplied, "A coupon is already applied to this order")
	ErrInvalidTransition  = NewDomainError(ErrCodeInvalidTransition, "Order cannot move to the requested state")
	ErrInvalidRefund      = NewDomainError(ErrCodeInvalidRefundRequest, "Refund request needs a reason and a valid email")
)
