package entities

// FulfillmentStatus classifies received quantity against ordered quantity
type FulfillmentStatus int

const (
	FulfillmentPending FulfillmentStatus = iota
	FulfillmentPartial
	FulfillmentComplete
	FulfillmentExcess
)

// String method for FulfillmentStatus enum
func (s FulfillmentStatus) String() string {
	switch s {
	case FulfillmentPending:
		return "pending"
	case FulfillmentPartial:
		return "partial"
	case FulfillmentComplete:
		return "complete"
	case FulfillmentExcess:
		return "excess"
	default:
		return "unknown"
	}
}

// MarshalText renders the status as its string form
func (s FulfillmentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DeliveryStatus is the three-valued delivery badge. Excess collapses into Complete.
type DeliveryStatus int

const (
	DeliveryPending DeliveryStatus = iota
	DeliveryComplete
	DeliveryFinalized
)

// String method for DeliveryStatus enum
func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryPending:
		return "Pending"
	case DeliveryComplete:
		return "Complete"
	case DeliveryFinalized:
		return "Finalized"
	default:
		return "Unknown"
	}
}

// MarshalText renders the status as its string form
func (s DeliveryStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
