package provisioning

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/muurk/wifiprov/internal/credentials"
)

const (
	// DefaultClientTimeout is the per-request timeout of a portal client
	DefaultClientTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the initial delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay caps the exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second
)

// ClientErrorType represents the category of a client failure
type ClientErrorType int

const (
	// ErrTypeNetwork indicates the portal could not be reached
	ErrTypeNetwork ClientErrorType = iota
	// ErrTypeRejected indicates the portal answered 400
	ErrTypeRejected
	// ErrTypeHTTP indicates any other unexpected status
	ErrTypeHTTP
)

// String returns a human-readable name for the error type
func (t ClientErrorType) String() string {
	switch t {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeRejected:
		return "Rejected"
	case ErrTypeHTTP:
		return "HTTP Error"
	default:
		return fmt.Sprintf("ClientErrorType(%d)", t)
	}
}

// ClientError is a failure talking to a portal
type ClientError struct {
	Type       ClientErrorType
	Message    string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ClientError) Unwrap() error {
	return e.Err
}

// Retryable reports whether repeating the request may succeed
func (e *ClientError) Retryable() bool {
	return e.Type == ErrTypeNetwork
}

// IsRejected checks if the portal refused a submission
func IsRejected(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Type == ErrTypeRejected
}

// Client talks to a running portal, typically from a phone-less setup
// machine joined to the device's access point.
type Client struct {
	// BaseURL is the portal URL (e.g., "http://192.168.1.1:80")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration
}

// NewClient creates a client for the portal at host:port
func NewClient(host string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", host, port))
}

// NewClientWithURL creates a client with a full base URL
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		HTTPClient:    &http.Client{Timeout: DefaultClientTimeout},
		MaxRetries:    DefaultMaxRetries,
		RetryDelay:    DefaultRetryDelay,
		MaxRetryDelay: DefaultMaxRetryDelay,
	}
}

func (c *Client) retry(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.RetryDelay
	policy.MaxInterval = c.MaxRetryDelay
	policy.MaxElapsedTime = 0

	return backoff.Retry(func() error {
		err := op()
		var clientErr *ClientError
		if err != nil && errors.As(err, &clientErr) && !clientErr.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.MaxRetries)), ctx))
}

// Page fetches the form page
func (c *Client) Page(ctx context.Context) (string, error) {
	var page string
	err := c.retry(ctx, func() error {
		var err error
		page, err = c.pageAttempt(ctx)
		return err
	})
	return page, err
}

func (c *Client) pageAttempt(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return "", &ClientError{Type: ErrTypeNetwork, Message: "failed to create GET request", Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", &ClientError{Type: ErrTypeNetwork, Message: "portal unreachable", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ClientError{Type: ErrTypeNetwork, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ClientError{
			Type:       ErrTypeHTTP,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
		}
	}

	return string(body), nil
}

// Submit posts credentials to the portal. A 400 reply is returned as a
// rejection carrying the portal's message and is not retried.
func (c *Client) Submit(ctx context.Context, creds *credentials.Credentials) error {
	return c.SubmitForm(ctx, EncodeCredentials(creds))
}

// SubmitForm posts a raw form-urlencoded body
func (c *Client) SubmitForm(ctx context.Context, body string) error {
	return c.retry(ctx, func() error {
		return c.submitAttempt(ctx, body)
	})
}

func (c *Client) submitAttempt(ctx context.Context, body string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/", strings.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeNetwork, Message: "failed to create POST request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &ClientError{Type: ErrTypeNetwork, Message: "POST request failed", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	page, _ := io.ReadAll(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return &ClientError{
			Type:       ErrTypeRejected,
			StatusCode: resp.StatusCode,
			Message:    extractMessage(string(page)),
		}
	default:
		return &ClientError{
			Type:       ErrTypeHTTP,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("submission failed with status %d", resp.StatusCode),
		}
	}
}

// extractMessage pulls the message out of a rendered error page: the
// contents of the last paragraph.
func extractMessage(page string) string {
	end := strings.LastIndex(page, "</p>")
	if end < 0 {
		return strings.TrimSpace(page)
	}
	start := strings.LastIndex(page[:end], "<p>")
	if start < 0 {
		return strings.TrimSpace(page)
	}
	return html.UnescapeString(strings.TrimSpace(page[start+len("<p>") : end]))
}
