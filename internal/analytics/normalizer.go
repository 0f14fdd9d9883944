package analytics

import (
	"strconv"

	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/db/types"
)

// Normalize flattens a raw warehouse event into the shape persisted to
// ga_events. Traffic-source parameters are carried for every event; the
// commerce payload is only built for purchase-family events.
func Normalize(raw RawEvent) NormalizedEvent {
	flat := flattenParams(raw.Params)

	norm := NormalizedEvent{
		UserPseudoID:    raw.UserPseudoID,
		EventName:       raw.EventName,
		TimestampMicros: raw.EventTimestamp,
		UTMSource:       stringParam(flat, "source"),
		UTMCampaign:     stringParam(flat, "campaign"),
		UTMMedium:       stringParam(flat, "medium"),
		UTMTerm:         stringParam(flat, "term"),
	}

	if !models.IsPurchaseFamily(raw.EventName) {
		return norm
	}

	var total, shipping float64
	if raw.Ecommerce != nil {
		if raw.Ecommerce.PurchaseRevenue != nil {
			total = *raw.Ecommerce.PurchaseRevenue
		}
		if raw.Ecommerce.ShippingValue != nil {
			shipping = *raw.Ecommerce.ShippingValue
		}
	}
	// Pre-purchase steps, and sparse purchase rows whose ecommerce object
	// resolved to zero, carry the running total in the value param.
	if total == 0 {
		total = coerceFloat(flat["value"])
	}

	products := make([]types.ProductLine, 0, len(raw.Items))
	for _, item := range raw.Items {
		products = append(products, types.ProductLine{
			ItemID:   coerceInt(item.ItemID),
			Price:    coerceFloat(item.Price),
			Quantity: int(coerceInt(item.Quantity)),
		})
	}

	params := types.EventParams{
		OrderTotal:    total,
		ShippingValue: shipping,
		Products:      products,
	}
	// Some export rows omit the shipping component. When the total is
	// present and exceeds the product sum, the difference is shipping.
	if params.OrderTotal == 0 || params.ShippingValue == 0 {
		params.ShippingValue = params.OrderTotal - params.ProductSum()
	}
	norm.Commerce = &params

	return norm
}

// flattenParams reduces the typed parameter list to a plain key/value map,
// taking the first populated value slot per key.
func flattenParams(params []RawParam) map[string]any {
	flat := make(map[string]any, len(params))
	for _, p := range params {
		switch {
		case p.Value.StringValue != nil:
			flat[p.Key] = *p.Value.StringValue
		case p.Value.IntValue != nil:
			flat[p.Key] = *p.Value.IntValue
		case p.Value.FloatValue != nil:
			flat[p.Key] = *p.Value.FloatValue
		case p.Value.DoubleValue != nil:
			flat[p.Key] = *p.Value.DoubleValue
		}
	}
	return flat
}

func stringParam(flat map[string]any, key string) *string {
	v, ok := flat[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func coerceFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func coerceInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case float32:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(t, 64)
			if ferr != nil {
				return 0
			}
			return int64(f)
		}
		return n
	default:
		return 0
	}
}
