package types

// ProductLine is the (item id, price, quantity) triple used for matching
// orders against analytics purchase events. The JSON field names and types
// must line up with the objects stored in ga_events.event_params->'products',
// since candidate matching relies on jsonb containment over them.
type ProductLine struct {
	ItemID   int64   `json:"item_id"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// OrderProduct is a storefront order line item as persisted on orders.
// Name and URL are carried for reporting; matching only uses the triple.
type OrderProduct struct {
	ItemID   int64   `json:"item_id"`
	Name     string  `json:"name,omitempty"`
	URL      string  `json:"url,omitempty"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Line projects the order product down to the matchable triple. The probe
// sent to the containment query must not carry extra keys, otherwise no
// stored product object would contain it.
func (p OrderProduct) Line() ProductLine {
	return ProductLine{ItemID: p.ItemID, Price: p.Price, Quantity: p.Quantity}
}

// OrderProducts is stored as a jsonb column on orders.
type OrderProducts []OrderProduct

// Lines projects every order product to its matchable triple.
func (ps OrderProducts) Lines() []ProductLine {
	lines := make([]ProductLine, 0, len(ps))
	for _, p := range ps {
		lines = append(lines, p.Line())
	}
	return lines
}
