package analytics

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/angelmondragon/attribution-backend/pkg/db/models"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
	"google.golang.org/api/iterator"
)

// warehouse is the slice of the BigQuery client the source needs.
type warehouse interface {
	EventsTableID() string
	Query(ctx context.Context, sql string, params []bigquery.QueryParameter) (*bigquery.RowIterator, error)
}

type bigQuerySource struct {
	wh   warehouse
	logg *logger.Logger
}

// NewBigQuerySource builds an EventSource reading the GA4 export tables.
func NewBigQuerySource(wh warehouse, logg *logger.Logger) (EventSource, error) {
	if wh == nil {
		return nil, fmt.Errorf("warehouse client is required")
	}
	return &bigQuerySource{wh: wh, logg: logg}, nil
}

type bqParamValue struct {
	StringValue bigquery.NullString  `bigquery:"string_value"`
	IntValue    bigquery.NullInt64   `bigquery:"int_value"`
	FloatValue  bigquery.NullFloat64 `bigquery:"float_value"`
	DoubleValue bigquery.NullFloat64 `bigquery:"double_value"`
}

type bqParam struct {
	Key   string       `bigquery:"key"`
	Value bqParamValue `bigquery:"value"`
}

type bqItem struct {
	ItemID   bigquery.NullString  `bigquery:"item_id"`
	Price    bigquery.NullFloat64 `bigquery:"price"`
	Quantity bigquery.NullInt64   `bigquery:"quantity"`
}

type bqEventRow struct {
	EventDate       string               `bigquery:"event_date"`
	EventTimestamp  int64                `bigquery:"event_timestamp"`
	EventName       string               `bigquery:"event_name"`
	UserPseudoID    bigquery.NullString  `bigquery:"user_pseudo_id"`
	Params          []bqParam            `bigquery:"event_params"`
	PurchaseRevenue bigquery.NullFloat64 `bigquery:"purchase_revenue"`
	ShippingValue   bigquery.NullFloat64 `bigquery:"shipping_value"`
	Items           []bqItem             `bigquery:"items"`
}

// FetchEvents pulls purchase-family and traffic-tagged events inside the
// window. The ecommerce record and items list are projected flat so NULL
// records survive the scan.
func (s *bigQuerySource) FetchEvents(ctx context.Context, window Window) ([]RawEvent, error) {
	sql, params := s.buildQuery(window)

	it, err := s.wh.Query(ctx, sql, params)
	if err != nil {
		return nil, fmt.Errorf("querying ga4 export: %w", err)
	}

	var events []RawEvent
	for {
		var row bqEventRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading ga4 export row: %w", err)
		}
		events = append(events, row.toRaw())
	}

	if s.logg != nil {
		s.logg.Info(ctx, fmt.Sprintf("fetched %d warehouse events", len(events)))
	}
	return events, nil
}

func (s *bigQuerySource) buildQuery(window Window) (string, []bigquery.QueryParameter) {
	table := s.wh.EventsTableID()
	var suffixFilter string
	if strings.HasSuffix(table, "*") {
		// Wildcard exports need suffix pruning or the scan touches every
		// daily table.
		suffixFilter = "AND _TABLE_SUFFIX BETWEEN @start_suffix AND @end_suffix\n"
	}

	sql := fmt.Sprintf(`
SELECT
  event_date,
  event_timestamp,
  event_name,
  user_pseudo_id,
  event_params,
  ecommerce.purchase_revenue AS purchase_revenue,
  ecommerce.shipping_value AS shipping_value,
  ARRAY(
    SELECT AS STRUCT CAST(item.item_id AS STRING) AS item_id, item.price, item.quantity
    FROM UNNEST(items) AS item
  ) AS items
FROM %s
WHERE TIMESTAMP_MICROS(event_timestamp) BETWEEN @window_start AND @window_end
%s  AND (
    event_name IN UNNEST(@purchase_events)
    OR EXISTS (
      SELECT 1 FROM UNNEST(event_params) AS p
      WHERE p.key = 'source' AND p.value.string_value IS NOT NULL
    )
  )
ORDER BY event_timestamp ASC`, "`"+table+"`", suffixFilter)

	params := []bigquery.QueryParameter{
		{Name: "window_start", Value: window.Start.UTC()},
		{Name: "window_end", Value: window.End.UTC()},
		{Name: "purchase_events", Value: models.PurchaseFamilyEvents},
	}
	if suffixFilter != "" {
		params = append(params,
			bigquery.QueryParameter{Name: "start_suffix", Value: window.Start.UTC().Format("20060102")},
			bigquery.QueryParameter{Name: "end_suffix", Value: window.End.UTC().Format("20060102")},
		)
	}
	return sql, params
}

func (r bqEventRow) toRaw() RawEvent {
	raw := RawEvent{
		EventDate:      r.EventDate,
		EventTimestamp: r.EventTimestamp,
		EventName:      r.EventName,
	}
	if r.UserPseudoID.Valid {
		raw.UserPseudoID = r.UserPseudoID.StringVal
	}

	raw.Params = make([]RawParam, 0, len(r.Params))
	for _, p := range r.Params {
		value := RawParamValue{}
		if p.Value.StringValue.Valid {
			s := p.Value.StringValue.StringVal
			value.StringValue = &s
		}
		if p.Value.IntValue.Valid {
			n := p.Value.IntValue.Int64
			value.IntValue = &n
		}
		if p.Value.FloatValue.Valid {
			f := p.Value.FloatValue.Float64
			value.FloatValue = &f
		}
		if p.Value.DoubleValue.Valid {
			f := p.Value.DoubleValue.Float64
			value.DoubleValue = &f
		}
		raw.Params = append(raw.Params, RawParam{Key: p.Key, Value: value})
	}

	if r.PurchaseRevenue.Valid || r.ShippingValue.Valid {
		eco := &RawEcommerce{}
		if r.PurchaseRevenue.Valid {
			rev := r.PurchaseRevenue.Float64
			eco.PurchaseRevenue = &rev
		}
		if r.ShippingValue.Valid {
			ship := r.ShippingValue.Float64
			eco.ShippingValue = &ship
		}
		raw.Ecommerce = eco
	}

	raw.Items = make([]RawItem, 0, len(r.Items))
	for _, item := range r.Items {
		ri := RawItem{}
		if item.ItemID.Valid {
			ri.ItemID = item.ItemID.StringVal
		}
		if item.Price.Valid {
			ri.Price = item.Price.Float64
		}
		if item.Quantity.Valid {
			ri.Quantity = item.Quantity.Int64
		}
		raw.Items = append(raw.Items, ri)
	}
	return raw
}
