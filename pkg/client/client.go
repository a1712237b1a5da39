// Package client is a typed REST client for the FarmToMarket API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type Client struct {
	BaseURL  string
	Token    string
	Language string
	HTTP     *http.Client
}

// New returns a client for baseURL, for example "http://localhost:8080/api".
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// do sends one request and decodes the envelope's data into out. Mutating
// requests carry a fresh Idempotency-Key.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.Language != "" {
		req.Header.Set("Accept-Language", c.Language)
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("client: decode response: %w", err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: unmarshal data: %w", err)
		}
	}
	return nil
}

func (c *Client) Notifications(ctx context.Context, userID string) ([]Notification, error) {
	var out []Notification
	err := c.do(ctx, http.MethodGet, "/notifications/user/"+url.PathEscape(userID), nil, &out)
	return out, err
}

func (c *Client) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var out unreadCount
	err := c.do(ctx, http.MethodGet, "/notifications/user/"+url.PathEscape(userID)+"/unread-count", nil, &out)
	return out.Unread, err
}

func (c *Client) MarkRead(ctx context.Context, notificationID uuid.UUID) (*Notification, error) {
	var out Notification
	if err := c.do(ctx, http.MethodPut, "/notifications/"+notificationID.String()+"/read", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, "/products/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RecordSale(ctx context.Context, productID uuid.UUID, req SaleRequest) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/products/"+productID.String()+"/sales", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RespondToCancellation(ctx context.Context, bookingID uuid.UUID, action CancellationAction) (*Booking, error) {
	var out Booking
	body := cancellationAnswer{Action: action}
	if err := c.do(ctx, http.MethodPut, "/bookings/"+bookingID.String()+"/respond-cancellation", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
