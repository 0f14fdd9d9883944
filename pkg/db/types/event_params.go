package types

// EventParams is the structured parameter bag persisted with purchase-family
// analytics events. Non-commerce events carry a NULL bag.
type EventParams struct {
	OrderTotal    float64       `json:"order_total"`
	ShippingValue float64       `json:"shipping_value"`
	Products      []ProductLine `json:"products"`
}

// ProductSum returns Σ(price×quantity) over the stored products.
func (p EventParams) ProductSum() float64 {
	var sum float64
	for _, line := range p.Products {
		sum += line.Price * float64(line.Quantity)
	}
	return sum
}
