package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// GatewayClient queries the payment gateway over HTTP. The gateway owns the
// provider-specific wire format; this side only sees the generic trade state.
type GatewayClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewGatewayClient(baseURL string) *GatewayClient {
	return &GatewayClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *GatewayClient) QueryTrade(ctx context.Context, orderID string) (Trade, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/trades/%s", c.BaseURL, orderID), nil)
	if err != nil {
		return Trade{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Trade{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// the provider has not seen the trade yet
		return Trade{State: TradePending}, nil
	case resp.StatusCode >= 500:
		return Trade{}, fmt.Errorf("%w: gateway status %d", ErrProviderUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Trade{}, fmt.Errorf("gateway status %d", resp.StatusCode)
	}

	var t Trade
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return Trade{}, fmt.Errorf("decode trade: %w", err)
	}
	return t, nil
}
