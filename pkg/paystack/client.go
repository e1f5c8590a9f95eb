package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client represents a Paystack API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new Paystack client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

// Initialize starts a hosted checkout session and returns the redirect URL
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/transaction/initialize", req)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transaction: %w", err)
	}

	var initResp InitializeResponse
	if err := json.Unmarshal(body, &initResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal initialize response: %w", err)
	}
	if !initResp.Status {
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, initResp.Message)
	}

	return &initResp, nil
}

// Verify confirms a transaction's status with the gateway. The gateway is
// the source of truth; a payment is only recorded successful when this
// returns a "success" status for the reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyTransaction, error) {
	if reference == "" {
		return nil, ErrTransactionNotFound
	}

	endpoint := "/transaction/verify/" + url.PathEscape(reference)
	body, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to verify transaction: %w", err)
	}

	var verifyResp VerifyResponse
	if err := json.Unmarshal(body, &verifyResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal verify response: %w", err)
	}

	if !verifyResp.Status {
		return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, verifyResp.Message)
	}
	if verifyResp.Data.Status != "success" {
		return nil, fmt.Errorf("%w: status %s", ErrVerificationFailed, verifyResp.Data.Status)
	}

	return &verifyResp.Data, nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("%w: %s", ErrUnauthorized, string(body))
		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrTransactionNotFound, string(body))
		default:
			return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
		}
	}

	return body, nil
}
