// Package answers retrieves the recorded answers of an RNA from the REST API
// and tracks which subject's answers are currently loaded.
package answers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rna/domain"

	"github.com/gofiber/fiber/v2"
)

var ErrNotFound = errors.New("rna not found")

// StatusError is returned for non-2xx responses other than 404.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL string
	timeout time.Duration
	headers map[string]string
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a header to every request, e.g. the security headers the
// API expects.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
		headers: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

type result struct {
	code int
	body []byte
	err  error
}

// GetAnswers fetches GET /api/v1/rnas/{rnaID}/answers. The request is
// abandoned as soon as ctx is done.
func (c *Client) GetAnswers(ctx context.Context, rnaID string) ([]domain.Answer, error) {
	endpoint := fmt.Sprintf("%s/api/v1/rnas/%s/answers", c.baseURL, url.PathEscape(rnaID))

	done := make(chan result, 1)
	go func() {
		agent := fiber.Get(endpoint)
		agent.Timeout(c.timeout)
		agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
		for k, v := range c.headers {
			agent.Set(k, v)
		}

		code, body, errs := agent.Bytes()
		done <- result{code: code, body: body, err: errors.Join(errs...)}
	}()

	var res result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-done:
	}

	if res.err != nil {
		return nil, fmt.Errorf("failed to fetch answers: %w", res.err)
	}

	if res.code == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.code < 200 || res.code >= 300 {
		return nil, &StatusError{Code: res.code, Body: string(res.body)}
	}

	var response struct {
		Answers []domain.Answer `json:"answers"`
	}
	if err := json.Unmarshal(res.body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode answers: %w", err)
	}

	if response.Answers == nil {
		response.Answers = []domain.Answer{}
	}

	return response.Answers, nil
}
