package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strParam(key, value string) RawParam {
	return RawParam{Key: key, Value: RawParamValue{StringValue: &value}}
}

func floatParam(key string, value float64) RawParam {
	return RawParam{Key: key, Value: RawParamValue{DoubleValue: &value}}
}

func TestNormalizeCarriesTrafficSource(t *testing.T) {
	norm := Normalize(RawEvent{
		EventName:      "page_view",
		EventTimestamp: 1736503200000000,
		UserPseudoID:   "user-1",
		Params: []RawParam{
			strParam("source", "google"),
			strParam("campaign", "spring_sale"),
			strParam("medium", "cpc"),
		},
	})

	require.NotNil(t, norm.UTMSource)
	assert.Equal(t, "google", *norm.UTMSource)
	require.NotNil(t, norm.UTMCampaign)
	assert.Equal(t, "spring_sale", *norm.UTMCampaign)
	require.NotNil(t, norm.UTMMedium)
	assert.Equal(t, "cpc", *norm.UTMMedium)
	assert.Nil(t, norm.UTMTerm)
	assert.Nil(t, norm.Commerce, "non purchase-family events carry no commerce payload")
}

func TestNormalizePurchaseUsesEcommerceObject(t *testing.T) {
	revenue := 107.48
	shipping := 12.50
	norm := Normalize(RawEvent{
		EventName:      "purchase",
		EventTimestamp: 1736503200000000,
		UserPseudoID:   "user-1",
		Ecommerce:      &RawEcommerce{PurchaseRevenue: &revenue, ShippingValue: &shipping},
		Items: []RawItem{
			{ItemID: "111", Price: "44.99", Quantity: float64(2)},
			{ItemID: int64(222), Price: 5.00, Quantity: int64(1)},
		},
	})

	require.NotNil(t, norm.Commerce)
	assert.Equal(t, 107.48, norm.Commerce.OrderTotal)
	assert.Equal(t, 12.50, norm.Commerce.ShippingValue)
	require.Len(t, norm.Commerce.Products, 2)
	assert.Equal(t, int64(111), norm.Commerce.Products[0].ItemID)
	assert.Equal(t, 44.99, norm.Commerce.Products[0].Price)
	assert.Equal(t, 2, norm.Commerce.Products[0].Quantity)
	assert.Equal(t, int64(222), norm.Commerce.Products[1].ItemID)
}

func TestNormalizeCheckoutFallsBackToValueParam(t *testing.T) {
	norm := Normalize(RawEvent{
		EventName:      "begin_checkout",
		EventTimestamp: 1736503200000000,
		UserPseudoID:   "user-1",
		Params:         []RawParam{floatParam("value", 89.99)},
		Items:          []RawItem{{ItemID: int64(111), Price: 89.99, Quantity: int64(1)}},
	})

	require.NotNil(t, norm.Commerce)
	assert.Equal(t, 89.99, norm.Commerce.OrderTotal)
	assert.InDelta(t, 0, norm.Commerce.ShippingValue, 1e-9)
}

func TestNormalizeBackfillsShippingFromTotal(t *testing.T) {
	// Total exceeds the product sum and shipping is missing, so the gap
	// is treated as the shipping charge.
	norm := Normalize(RawEvent{
		EventName:      "add_payment_info",
		EventTimestamp: 1736503200000000,
		UserPseudoID:   "user-1",
		Params:         []RawParam{floatParam("value", 102.48)},
		Items:          []RawItem{{ItemID: int64(111), Price: 44.99, Quantity: int64(2)}},
	})

	require.NotNil(t, norm.Commerce)
	assert.Equal(t, 102.48, norm.Commerce.OrderTotal)
	assert.InDelta(t, 12.50, norm.Commerce.ShippingValue, 1e-9)
}

func TestNormalizeZeroEcommerceRevenueFallsBackToValueParam(t *testing.T) {
	zero := 0.0
	norm := Normalize(RawEvent{
		EventName:      "purchase",
		EventTimestamp: 1736503200000000,
		UserPseudoID:   "user-1",
		Ecommerce:      &RawEcommerce{PurchaseRevenue: &zero, ShippingValue: &zero},
		Params:         []RawParam{floatParam("value", 102.48)},
		Items:          []RawItem{{ItemID: int64(111), Price: 44.99, Quantity: int64(2)}},
	})

	require.NotNil(t, norm.Commerce)
	assert.Equal(t, 102.48, norm.Commerce.OrderTotal, "zero ecommerce revenue yields to the value param")
	assert.InDelta(t, 12.50, norm.Commerce.ShippingValue, 1e-9)
	assert.GreaterOrEqual(t, norm.Commerce.ShippingValue, 0.0, "back-fill never goes negative off a zero total")
}

func TestNormalizeZeroedCommerceOnMissingData(t *testing.T) {
	norm := Normalize(RawEvent{
		EventName:      "add_to_cart",
		EventTimestamp: 1736503200000000,
		UserPseudoID:   "user-1",
	})

	require.NotNil(t, norm.Commerce)
	assert.Zero(t, norm.Commerce.OrderTotal)
	assert.Zero(t, norm.Commerce.ShippingValue)
	assert.Empty(t, norm.Commerce.Products)
}

func TestFlattenParamsTakesFirstPopulatedSlot(t *testing.T) {
	n := int64(42)
	flat := flattenParams([]RawParam{
		{Key: "ga_session_id", Value: RawParamValue{IntValue: &n}},
		strParam("source", "bing"),
		{Key: "empty", Value: RawParamValue{}},
	})

	assert.Equal(t, int64(42), flat["ga_session_id"])
	assert.Equal(t, "bing", flat["source"])
	_, ok := flat["empty"]
	assert.False(t, ok)
}

func TestCoercions(t *testing.T) {
	assert.Equal(t, int64(7), coerceInt("7"))
	assert.Equal(t, int64(7), coerceInt("7.0"))
	assert.Equal(t, int64(7), coerceInt(7.9))
	assert.Equal(t, int64(0), coerceInt("n/a"))
	assert.Equal(t, 7.5, coerceFloat("7.5"))
	assert.Equal(t, 7.0, coerceFloat(int64(7)))
	assert.Equal(t, 0.0, coerceFloat(nil))
}
