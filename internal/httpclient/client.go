package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bighogz/stockdiag/internal/telemetry"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrBadJSON reports an upstream body that could not be decoded.
var ErrBadJSON = errors.New("httpclient: response is not valid JSON")

const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Shared transport with timeout and connection reuse.
var Default = New(30*time.Second, 2)

// Client performs JSON GETs with exponential-backoff retries on transport
// errors, 429 and 5xx.
type Client struct {
	HTTP       *http.Client
	MaxRetries int
	RetryWait  time.Duration
}

func New(timeout time.Duration, maxRetries int) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		MaxRetries: maxRetries,
		RetryWait:  250 * time.Millisecond,
	}
}

// GetJSON fetches rawURL and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out interface{}) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	ctx, span := telemetry.Tracer().Start(ctx, "GET "+u.Host,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("server.address", u.Host),
			attribute.String("url.path", u.Path),
		))
	defer span.End()

	attempts := 0
	var body []byte
	op := func() error {
		attempts++
		b, err := c.do(ctx, rawURL, header)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) {
				span.SetAttributes(attribute.Int("http.response.status_code", se.StatusCode))
				if !se.Retryable() {
					return backoff.Permanent(err)
				}
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		span.SetAttributes(attribute.Int("http.response.status_code", http.StatusOK))
		body = b
		return nil
	}

	err = backoff.Retry(op, c.backoff(ctx))
	span.SetAttributes(attribute.Int("http.attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		span.SetStatus(codes.Error, "decode")
		return fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	return nil
}

func (c *Client) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.RetryWait
	b.MaxElapsedTime = c.HTTP.Timeout
	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

func (c *Client) do(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		preview := string(body)
		if len(preview) > maxErrorBody {
			preview = preview[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: preview}
	}
	return body, nil
}
