// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/jukebox-party/device"
	"github.com/danielhkuo/jukebox-party/middleware"
	"github.com/danielhkuo/jukebox-party/models"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Client talks to the jukebox API for one terminal. Credentials are
// attached to every request when set.
type Client struct {
	base          *url.URL
	http          *http.Client
	adminPassword string
	kioskSecret   string
}

func New(baseURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	return &Client{base: u, http: &http.Client{Timeout: defaultTimeout}}, nil
}

// WithAdminPassword returns a copy that sends the operator password.
func (c *Client) WithAdminPassword(password string) *Client {
	cp := *c
	cp.adminPassword = password
	return &cp
}

// WithKioskSecret returns a copy that sends the kiosk secret.
func (c *Client) WithKioskSecret(secret string) *Client {
	cp := *c
	cp.kioskSecret = secret
	return &cp
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.adminPassword != "" {
		req.Header.Set(middleware.AdminPasswordHeader, c.adminPassword)
	}
	if c.kioskSecret != "" {
		req.Header.Set(middleware.KioskSecretHeader, c.kioskSecret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e models.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message = e.Error
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

// Library fetches the whole catalog.
func (c *Client) Library(ctx context.Context) ([]models.Song, error) {
	var songs []models.Song
	if err := c.do(ctx, http.MethodGet, "/api/library", nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Queue fetches every request, completed or not.
func (c *Client) Queue(ctx context.Context) ([]models.Request, error) {
	var requests []models.Request
	if err := c.do(ctx, http.MethodGet, "/api/queue", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) Credits(ctx context.Context) (int64, error) {
	var resp models.CreditsResponse
	if err := c.do(ctx, http.MethodGet, "/api/credits", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// WriteCredits stores an absolute credit count. Needs the operator
// password or the kiosk secret.
func (c *Client) WriteCredits(ctx context.Context, count int64) error {
	return c.do(ctx, http.MethodPut, "/api/credits", models.SetCreditsRequest{Count: count}, nil)
}

// SubmitKiosk sends a credit-paid request with the given kiosk secret.
func (c *Client) SubmitKiosk(ctx context.Context, kioskSecret string, req models.SubmitRequest) (models.Request, error) {
	var resp models.SubmitResponse
	if err := c.WithKioskSecret(kioskSecret).do(ctx, http.MethodPost, "/api/request", req, &resp); err != nil {
		return models.Request{}, err
	}
	return resp.Request, nil
}

// SubmitEmergency sends a request after a completed checkout.
func (c *Client) SubmitEmergency(ctx context.Context, req models.SubmitRequest) (models.Request, error) {
	var resp models.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/request/emergency", req, &resp); err != nil {
		return models.Request{}, err
	}
	return resp.Request, nil
}

// CreateCheckoutSession returns the hosted checkout URL.
func (c *Client) CreateCheckoutSession(ctx context.Context, req models.CheckoutSessionRequest) (string, error) {
	var resp models.CheckoutSessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/create-checkout-session", req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// Verify checks the operator password and returns the kiosk secret the
// server hands out. A wrong password is device.ErrUnauthorized.
func (c *Client) Verify(ctx context.Context, password string) (string, error) {
	var resp models.VerifyResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/verify", models.VerifyRequest{Password: password}, &resp)
	if IsStatus(err, http.StatusUnauthorized) {
		return "", device.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if !resp.Valid {
		return "", device.ErrUnauthorized
	}
	return resp.KioskSecret, nil
}

// Operator actions

// Next completes whatever is playing.
func (c *Client) Next(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/next", nil, nil)
}

// Previous restores the most recently completed request.
func (c *Client) Previous(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/previous", nil, nil)
}

// Refill adds amount to the pool on the server and returns the new count.
func (c *Client) Refill(ctx context.Context, amount int64) (int64, error) {
	var resp models.CreditsResponse
	if err := c.do(ctx, http.MethodPost, "/api/admin/refill", models.RefillRequest{Amount: amount}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) SetCompleted(ctx context.Context, id string, completed bool) error {
	action := "complete"
	if !completed {
		action = "restore"
	}
	return c.do(ctx, http.MethodPost, "/api/admin/requests/"+url.PathEscape(id)+"/"+action, nil, nil)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/requests/"+url.PathEscape(id), nil, nil)
}
