package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// ErrEndpointMissing is returned when no endpoint URL is configured.
var ErrEndpointMissing = errors.New("graphql: endpoint is required")

// ResponseError carries the messages of a GraphQL "errors" array.
type ResponseError struct {
	Messages []string
}

func (e *ResponseError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTimeout bounds every request. The form session imposes no timeout of
// its own; this is where the policy lives.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(name, value string) Option {
	return func(c *Client) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		c.headers[name] = value
	}
}

// Client posts queries and mutations to a GraphQL endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	headers  map[string]string
	columns  map[string]string
}

// New constructs a client for endpoint.
func New(endpoint string, options ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, ErrEndpointMissing
	}
	c := &Client{
		endpoint: endpoint,
		http:     http.DefaultClient,
		headers:  make(map[string]string),
		columns:  make(map[string]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do executes a GraphQL document and decodes its "data" member into out.
func (c *Client) Do(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := sonic.Marshal(request{Query: query, OperationName: operation, Variables: variables})
	if err != nil {
		return fmt.Errorf("graphql: encode %s: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("graphql: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("graphql: %s: %w", operation, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("graphql: read %s response: %w", operation, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}

	var env envelope
	if err := sonic.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("graphql: decode %s response: %w", operation, err)
	}
	if len(env.Errors) > 0 {
		messages := make([]string, 0, len(env.Errors))
		for _, item := range env.Errors {
			messages = append(messages, item.Message)
		}
		return &ResponseError{Messages: messages}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("graphql: %s returned no data", operation)
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("graphql: decode %s data: %w", operation, err)
	}
	return nil
}
