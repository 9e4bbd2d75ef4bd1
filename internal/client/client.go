package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"employeedir/internal/domain/employee"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx envelope returned by the service.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Fields    map[string][]string
	RequestID string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api %d: %s %v", e.Status, e.Message, e.Fields)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// FieldErrors exposes the per-field reasons of a validation failure.
func (e *APIError) FieldErrors() map[string][]string {
	if e.Status != http.StatusUnprocessableEntity {
		return nil
	}
	return e.Fields
}

// FieldErrors returns per-field reasons when err is a validation failure.
func FieldErrors(err error) map[string][]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.FieldErrors()
	}
	return nil
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends a bearer token so mutations are attributed to its actor.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// Client talks to the /api/employees resource.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Status    string              `json:"status"`
	Data      json.RawMessage     `json:"data"`
	Message   string              `json:"message"`
	Code      string              `json:"code"`
	Errors    map[string][]string `json:"errors"`
	RequestID string              `json:"requestId"`
}

func (c *Client) List(ctx context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	if _, err := c.do(ctx, http.MethodGet, "/api/employees", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (employee.Employee, error) {
	var out employee.Employee
	_, err := c.do(ctx, http.MethodGet, employeePath(id), nil, &out)
	return out, err
}

// Create sends a fresh Idempotency-Key so a retried call cannot create twice.
func (c *Client) Create(ctx context.Context, in employee.Input) (employee.Employee, error) {
	var out employee.Employee
	_, err := c.do(ctx, http.MethodPost, "/api/employees", in, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id int64, in employee.Input) (employee.Employee, error) {
	var out employee.Employee
	_, err := c.do(ctx, http.MethodPut, employeePath(id), in, &out)
	return out, err
}

// Delete returns the confirmation message from the service.
func (c *Client) Delete(ctx context.Context, id int64) (string, error) {
	env, err := c.do(ctx, http.MethodDelete, employeePath(id), nil, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

func employeePath(id int64) string {
	return "/api/employees/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body any, dst any) (envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return envelope{}, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return envelope{}, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 300 {
			return envelope{}, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return envelope{}, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= 300 || env.Status != "success" {
		return env, &APIError{
			Status:    resp.StatusCode,
			Code:      env.Code,
			Message:   env.Message,
			Fields:    env.Errors,
			RequestID: env.RequestID,
		}
	}
	if dst != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			return env, fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return env, nil
}
