package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/config"
)

func testConfig() config.ShopifyConfig {
	return config.ShopifyConfig{
		Domain:      "example.myshopify.com",
		AccessToken: "shpat_test",
		APIVersion:  "2023-10",
		Timeout:     5 * time.Second,
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(config.ShopifyConfig{Domain: "x"}, nil); err == nil {
		t.Fatal("expected error without access token")
	}
	if _, err := NewClient(config.ShopifyConfig{AccessToken: "x"}, nil); err == nil {
		t.Fatal("expected error without domain")
	}
}

func TestFetchOrdersFollowsPagination(t *testing.T) {
	var gotToken string
	page := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(accessTokenHeader)
		page++
		switch page {
		case 1:
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/admin/api/2023-10/orders.json?page_info=abc>; rel="next"`, r.Host))
			fmt.Fprint(w, `{"orders":[{"id":1,"created_at":"2025-01-10T10:00:00Z","total_price":"50.00","line_items":[{"product_id":7,"name":"Lamp","price":"45.00","quantity":1}]}]}`)
		default:
			fmt.Fprint(w, `{"orders":[{"id":2,"created_at":"2025-01-11T10:00:00Z","total_price":"20.00"}]}`)
		}
	}))
	defer server.Close()

	client, err := NewClient(testConfig(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.WithBaseURL(server.URL)

	orders, err := client.FetchOrders(context.Background(), time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("fetch orders: %v", err)
	}
	if gotToken != "shpat_test" {
		t.Fatalf("expected access token header, got %q", gotToken)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders across pages, got %d", len(orders))
	}
	if orders[0].ID != 1 || orders[1].ID != 2 {
		t.Fatalf("unexpected order ids: %+v", orders)
	}
	if len(orders[0].LineItems) != 1 || orders[0].LineItems[0].ProductID != 7 {
		t.Fatalf("unexpected line items: %+v", orders[0].LineItems)
	}
}

func TestFetchOrdersNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(testConfig(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.WithBaseURL(server.URL)

	if _, err := client.FetchOrders(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestNextPageURL(t *testing.T) {
	header := `<https://x/prev>; rel="previous", <https://x/next?page_info=abc>; rel="next"`
	if got := nextPageURL(header); got != "https://x/next?page_info=abc" {
		t.Fatalf("unexpected next url: %q", got)
	}
	if got := nextPageURL(`<https://x/prev>; rel="previous"`); got != "" {
		t.Fatalf("expected empty next url, got %q", got)
	}
}
