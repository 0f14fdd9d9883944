package analytics

import (
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/types"
)

// RawParamValue mirrors the typed value slots of a GA4 export event_params
// entry. Exactly one slot is populated per parameter.
type RawParamValue struct {
	StringValue *string
	IntValue    *int64
	FloatValue  *float64
	DoubleValue *float64
}

// RawParam is one key/value entry from the event parameter list.
type RawParam struct {
	Key   string
	Value RawParamValue
}

// RawEcommerce carries the nested commerce object of a purchase event.
type RawEcommerce struct {
	PurchaseRevenue *float64
	ShippingValue   *float64
}

// RawItem is a line item from the export's items list. The warehouse is not
// strict about types here, so the fields stay untyped until coercion.
type RawItem struct {
	ItemID   any
	Price    any
	Quantity any
}

// RawEvent is one unprocessed analytics event record.
type RawEvent struct {
	EventDate       string
	EventTimestamp  int64
	EventName       string
	UserPseudoID    string
	Params          []RawParam
	Ecommerce       *RawEcommerce
	Items           []RawItem
}

// NormalizedEvent is the flat record produced by Normalize. Commerce is nil
// for events outside the purchase family.
type NormalizedEvent struct {
	UserPseudoID    string
	EventName       string
	TimestampMicros int64
	UTMSource       *string
	UTMCampaign     *string
	UTMMedium       *string
	UTMTerm         *string
	Commerce        *types.EventParams
}

// Window bounds an event fetch from the warehouse.
type Window struct {
	Start time.Time
	End   time.Time
}
