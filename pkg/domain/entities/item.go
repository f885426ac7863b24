package entities

import "errors"

// ItemMasterID identifies a catalog entry. Delivery lines are matched to
// tender lines by this key, never by a delivery-local id.
type ItemMasterID string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// Sentinel errors callers can branch on
var (
	ErrTenderNotFound          = errors.New("tender not found")
	ErrDeliveryNotFound        = errors.New("delivery not found")
	ErrDeliveryFinalized       = errors.New("delivery is finalized")
	ErrDuplicateDeliveryNumber = errors.New("duplicate delivery number")
	ErrInvalidQuantity         = errors.New("invalid quantity")
)
