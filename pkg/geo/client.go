package geo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client implements Gateway against the school-management platform's routing
// provider. Every call is a single POST with an "action" discriminator.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// ClientConfig holds configuration for the routing provider client
type ClientConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new routing provider client
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// geocodeRequest is the provider request body for address resolution
type geocodeRequest struct {
	Action  string `json:"action"`
	Address string `json:"address"`
}

// distanceRequest is the provider request body for route distance
type distanceRequest struct {
	Action      string   `json:"action"`
	Origin      string   `json:"origin"`
	Destination string   `json:"destination"`
	Waypoints   []string `json:"waypoints,omitempty"`
}

// providerResponse is the provider's uniform response envelope
type providerResponse struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Data    json.RawMessage `json:"data"`
	ErrCode string          `json:"errCode"`
}

// Geocode resolves a free-form address to coordinates
func (c *Client) Geocode(address string) (*GeocodeResult, error) {
	if address == "" {
		return nil, fmt.Errorf("address is required")
	}

	data, err := c.post(geocodeRequest{
		Action:  "geocode",
		Address: address,
	})
	if err != nil {
		return nil, err
	}

	var result GeocodeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse geocode result: %w", err)
	}

	return &result, nil
}

// CalculateDistance returns the road distance and travel time for a route
// from origin to destination via the given waypoints in order.
func (c *Client) CalculateDistance(origin, destination string, waypoints []string) (*DistanceResult, error) {
	if origin == "" || destination == "" {
		return nil, fmt.Errorf("origin and destination are required")
	}

	data, err := c.post(distanceRequest{
		Action:      "calculate_distance",
		Origin:      origin,
		Destination: destination,
		Waypoints:   waypoints,
	})
	if err != nil {
		return nil, err
	}

	var result DistanceResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse distance result: %w", err)
	}

	return &result, nil
}

// post sends one action request and unwraps the provider envelope
func (c *Client) post(payload interface{}) (json.RawMessage, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	var envelope providerResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if envelope.Status != "success" {
		return nil, fmt.Errorf("provider request failed: %s (error code: %s)", envelope.Comment, envelope.ErrCode)
	}

	return envelope.Data, nil
}

// GetName returns the name of this gateway
func (c *Client) GetName() string {
	return "Routing Provider Gateway"
}
