package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/attribution-backend/pkg/config"
	"github.com/angelmondragon/attribution-backend/pkg/logger"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	defaultPageLimit  = 250
)

// Order is the raw storefront order payload consumed by the ingestor.
type Order struct {
	ID             int64      `json:"id"`
	CreatedAt      time.Time  `json:"created_at"`
	TotalPrice     string     `json:"total_price"`
	Customer       *Customer  `json:"customer"`
	BillingAddress *Address   `json:"billing_address"`
	LineItems      []LineItem `json:"line_items"`
}

type Customer struct {
	ID        int64      `json:"id"`
	Email     *string    `json:"email"`
	FirstName *string    `json:"first_name"`
	LastName  *string    `json:"last_name"`
	CreatedAt *time.Time `json:"created_at"`
}

type Address struct {
	Phone *string `json:"phone"`
}

type LineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type ordersEnvelope struct {
	Orders []Order `json:"orders"`
}

// Client talks to the Shopify Admin REST API. Pagination via the Link header
// is handled here so callers receive the full result set.
type Client struct {
	cfg        config.ShopifyConfig
	httpClient *http.Client
	logg       *logger.Logger
	baseURL    string
}

// NewClient builds a Shopify Admin client from config.
func NewClient(cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Domain) == "" {
		return nil, errors.New("shopify domain is required")
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("shopify access token is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logg:       logg,
		baseURL:    fmt.Sprintf("https://%s", cfg.Domain),
	}, nil
}

// WithBaseURL overrides the API host, used by tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// ProductURL returns the storefront URL for a product id.
func (c *Client) ProductURL(productID int64) string {
	if productID == 0 {
		return "N/A"
	}
	return fmt.Sprintf("https://%s/products/%d", c.cfg.Domain, productID)
}

// FetchOrders pulls all orders created at or after since, following
// page_info links until the listing is exhausted.
func (c *Client) FetchOrders(ctx context.Context, since time.Time) ([]Order, error) {
	endpoint := fmt.Sprintf("%s/admin/api/%s/orders.json", c.baseURL, c.cfg.APIVersion)
	query := url.Values{}
	query.Set("created_at_min", since.UTC().Format(time.RFC3339))
	query.Set("limit", fmt.Sprintf("%d", defaultPageLimit))

	var all []Order
	next := endpoint + "?" + query.Encode()
	for next != "" {
		orders, link, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, orders...)
		next = link
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]Order, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building orders request: %w", err)
	}
	req.Header.Set(accessTokenHeader, c.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("calling shopify orders api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, "", fmt.Errorf("shopify orders api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var envelope ordersEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, "", fmt.Errorf("decoding orders response: %w", err)
	}

	return envelope.Orders, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from a Shopify Link header.
func nextPageURL(header string) string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if !strings.Contains(section[1], `rel="next"`) {
			continue
		}
		target := strings.TrimSpace(section[0])
		target = strings.TrimPrefix(target, "<")
		target = strings.TrimSuffix(target, ">")
		return target
	}
	return ""
}
