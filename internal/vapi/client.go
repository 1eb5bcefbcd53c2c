package vapi

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
)

const DefaultBaseURL = "https://api.vapi.ai"

var ErrCallNotFound = errors.New("call not found")

// Client fetches call records from the vendor REST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Call fetches a call by ID and returns it along with the raw JSON body.
func (c *Client) Call(ctx context.Context, callID string) (*Call, json.RawMessage, error) {
	if callID == "" {
		return nil, nil, errors.New("call id is required")
	}

	endpoint := fmt.Sprintf("%s/call/%s", c.baseURL, url.PathEscape(callID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch call %s: %w", callID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read call %s: %w", callID, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil, ErrCallNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("fetch call failed with status %d: %s", resp.StatusCode, string(body))
	}

	var call Call
	if err := json.Unmarshal(body, &call); err != nil {
		return nil, nil, fmt.Errorf("decode call %s: %w", callID, err)
	}

	return &call, json.RawMessage(body), nil
}
