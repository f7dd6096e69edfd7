// Package billing is the thin glue to the hosted billing provider:
// checkout session creation and subscription cancellation. Webhook
// reconciliation and invoice handling live on the provider's side.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.stripe.com/v1"

type Client struct {
	secretKey string
	client    *http.Client
	apiURL    string
	logger    *slog.Logger
}

func NewClient(secretKey string, logger *slog.Logger) *Client {
	return &Client{
		secretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
		apiURL:    defaultAPIURL,
		logger:    logger,
	}
}

// SetTestTransport points the client at a test server.
func (c *Client) SetTestTransport(url string) {
	c.apiURL = url
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type providerError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession opens a subscription checkout for the given
// price and returns the hosted payment page URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, customerEmail, priceID, successURL, cancelURL string) (CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("customer_email", customerEmail)
	form.Set("line_items[0][price]", priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)

	var session CheckoutSession
	if err := c.post(ctx, "/checkout/sessions", form, &session); err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return session, nil
}

// CancelSubscription cancels the provider-side subscription. The local
// plan downgrade happens separately at the store.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.apiURL+"/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.readError(resp)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.readError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) readError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var pe providerError
	if json.Unmarshal(body, &pe) == nil && pe.Error.Message != "" {
		return fmt.Errorf("provider error %d (%s): %s", resp.StatusCode, pe.Error.Type, pe.Error.Message)
	}
	return fmt.Errorf("provider error %d: %s", resp.StatusCode, string(body))
}
