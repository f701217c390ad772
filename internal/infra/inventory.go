package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// stockResponse is returned by the inventory aggregator for one material.
type stockResponse struct {
	Material string          `json:"material"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

// InventoryClient queries the external inventory aggregator, which is the
// source of truth for material stock. All calls go through the circuit
// breaker so an aggregator outage fast-fails instead of piling up blocked
// settlements.
type InventoryClient struct {
	baseURL    string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewInventoryClient(baseURL string, cb *CircuitBreaker) *InventoryClient {
	return &InventoryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

// Breaker exposes the circuit breaker state for the health endpoint.
func (c *InventoryClient) Breaker() *CircuitBreaker { return c.cb }

// CurrentStock returns the aggregator's current quantity for a material.
func (c *InventoryClient) CurrentStock(ctx context.Context, material string) (decimal.Decimal, error) {
	var result stockResponse
	err := c.cb.Execute(func() error {
		endpoint := fmt.Sprintf("%s/stock/%s", c.baseURL, url.PathEscape(material))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("inventory: create request: %w", err)
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("inventory: aggregator unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			// Unknown material reads as zero stock rather than an outage.
			result = stockResponse{Material: material, Quantity: decimal.Zero}
			return nil
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("inventory: aggregator returned %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("inventory: decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return result.Quantity, nil
}
