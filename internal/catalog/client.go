// Package catalog reads products and stock from the storefront API.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nikolayk812/cartstore-demo/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Client struct {
	http *resty.Client
}

type Option func(*resty.Client)

// WithTimeout bounds each request. Requests are unbounded by default.
func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) {
		c.SetTimeout(d)
	}
}

func New(baseURL string, opts ...Option) *Client {
	hc := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	rc := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{http: rc}
}

// stockPayload keeps Amount as a pointer so a body without it can be told apart from zero stock.
type stockPayload struct {
	ID     int64 `json:"id"`
	Amount *int  `json:"amount"`
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var product domain.Product

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(productID, 10)).
		SetResult(&product).
		Get("/products/{id}")
	if err != nil {
		return domain.Product{}, fmt.Errorf("GET products/%d: %w: %w", productID, domain.ErrCatalogUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return domain.Product{}, fmt.Errorf("GET products/%d: %w", productID, domain.ErrProductNotFound)
	case resp.IsError():
		return domain.Product{}, fmt.Errorf("GET products/%d: status %d: %w", productID, resp.StatusCode(), domain.ErrCatalogUnavailable)
	}

	if product.ID != productID {
		return domain.Product{}, fmt.Errorf("GET products/%d: got product[%d]: %w", productID, product.ID, domain.ErrCatalogUnavailable)
	}

	return product, nil
}

func (c *Client) GetStock(ctx context.Context, productID int64) (domain.Stock, error) {
	var payload stockPayload

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(productID, 10)).
		SetResult(&payload).
		Get("/stock/{id}")
	if err != nil {
		return domain.Stock{}, fmt.Errorf("GET stock/%d: %w: %w", productID, domain.ErrCatalogUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return domain.Stock{}, fmt.Errorf("GET stock/%d: %w", productID, domain.ErrStockUnavailable)
	case resp.IsError():
		return domain.Stock{}, fmt.Errorf("GET stock/%d: status %d: %w", productID, resp.StatusCode(), domain.ErrCatalogUnavailable)
	}

	if payload.Amount == nil {
		return domain.Stock{}, fmt.Errorf("GET stock/%d: amount is missing: %w", productID, domain.ErrStockUnavailable)
	}

	return domain.Stock{ID: productID, Amount: *payload.Amount}, nil
}
