package api

// MARKETPLACE API CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.getJSON(ctx, "/api/user/profile", token, &profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, upd ProfileUpdate) error {
	body, err := json.Marshal(upd)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		fmt.Sprintf("%s/api/user/profile", c.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	return nil
}

// Countries, CallingCodes and PaymentServices are the three mount-time
// reference loads. Each retries transient failures independently; there is no
// ordering guarantee between them.

func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var countries []Country
	if err := c.getJSONRetry(ctx, "/api/reference/countries", &countries); err != nil {
		return nil, fmt.Errorf("get countries: %w", err)
	}
	return countries, nil
}

func (c *Client) CallingCodes(ctx context.Context) ([]CallingCode, error) {
	var codes []CallingCode
	if err := c.getJSONRetry(ctx, "/api/reference/calling-codes", &codes); err != nil {
		return nil, fmt.Errorf("get calling codes: %w", err)
	}
	return codes, nil
}

func (c *Client) PaymentServices(ctx context.Context) ([]PaymentService, error) {
	var services []PaymentService
	if err := c.getJSONRetry(ctx, "/api/reference/payment-services", &services); err != nil {
		return nil, fmt.Errorf("get payment services: %w", err)
	}
	return services, nil
}

func (c *Client) Cart(ctx context.Context, userID string) ([]CartItem, error) {
	var items []CartItem
	path := "/api/cart?user_id=" + url.QueryEscape(userID)
	if err := c.getJSON(ctx, path, "", &items); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return items, nil
}

// UploadFile posts the article file as multipart form data and returns the
// hosted file URL.
func (c *Client) UploadFile(ctx context.Context, token, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/api/files", c.baseURL),
		&buf,
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return result.URL, nil
}

func (c *Client) SubmitClientOrder(ctx context.Context, token string, order ClientOrderRequest) (*OrderResult, error) {
	return c.submitOrder(ctx, token, "/api/orders/client", order)
}

func (c *Client) SubmitPublisherOrder(ctx context.Context, token string, order PublisherOrderRequest) (*OrderResult, error) {
	return c.submitOrder(ctx, token, "/api/orders/publisher", order)
}

// submitOrder posts the order and returns the decoded result without judging
// the status code. The body is decoded best-effort even on failure statuses
// because the token-expiry message can arrive with any status.
func (c *Client) submitOrder(ctx context.Context, token, path string, order any) (*OrderResult, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded struct {
		Status int `json:"status"`
		Data   struct {
			Message string              `json:"message"`
			Data    *PaymentTransaction `json:"data"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.logger.Warn("Order response body is not valid JSON",
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
	}

	return &OrderResult{
		StatusCode:  resp.StatusCode,
		Message:     decoded.Data.Message,
		Transaction: decoded.Data.Data,
	}, nil
}

func (c *Client) PaymentStatus(ctx context.Context, uuid, orderID string) (bool, error) {
	body, err := json.Marshal(map[string]string{
		"uuid":     uuid,
		"order_id": orderID,
	})
	if err != nil {
		return false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		fmt.Sprintf("%s/api/payments/status", c.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result struct {
		IsPaid bool `json:"is_paid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return result.IsPaid, nil
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) getJSONRetry(ctx context.Context, path string, out any) error {
	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 15 * time.Second
	retryPolicy.MaxInterval = 5 * time.Second

	return backoff.RetryNotify(
		func() error {
			return c.getJSON(ctx, path, "", out)
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			c.logger.Warn("Reference data fetch failed, retrying...",
				zap.String("path", path),
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
}
