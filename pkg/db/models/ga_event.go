package models

import (
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/db/types"
)

// GAEvent is an analytics warehouse event persisted locally for matching.
// Identity is (pseudo id, event timestamp); re-ingestion of the same pair is
// a no-op. EventTimestamp is truncated to second resolution on ingestion,
// EventTimestampNumeric keeps the raw microsecond value from the warehouse.
type GAEvent struct {
	GAUserPseudoID        string             `gorm:"column:ga_user_pseudo_id;primaryKey"`
	EventName             string             `gorm:"column:event_name;not null"`
	EventTimestamp        time.Time          `gorm:"column:event_timestamp;primaryKey"`
	EventTimestampNumeric int64              `gorm:"column:event_timestamp_numeric;not null"`
	UTMSource             *string            `gorm:"column:utm_source"`
	UTMCampaign           *string            `gorm:"column:utm_campaign"`
	UTMMedium             *string            `gorm:"column:utm_medium"`
	UTMTerm               *string            `gorm:"column:utm_term"`
	EventParams           *types.EventParams `gorm:"column:event_params;type:jsonb;serializer:json"`
}

func (GAEvent) TableName() string { return "ga_events" }

// PurchaseFamilyEvents are the event names that carry commerce intent data.
var PurchaseFamilyEvents = []string{
	"purchase",
	"form_submit",
	"add_payment_info",
	"add_shipping_info",
	"begin_checkout",
	"add_to_cart",
}

// IsPurchaseFamily reports whether name belongs to the purchase-family set.
func IsPurchaseFamily(name string) bool {
	for _, candidate := range PurchaseFamilyEvents {
		if candidate == name {
			return true
		}
	}
	return false
}
