// Package github implements the discussion store on top of the GitHub
// Discussions GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrGraphQL marks a response carrying a GraphQL errors array.
	ErrGraphQL = errors.New("graphql error")
	// ErrHTTPStatus marks a non-200 response from the endpoint.
	ErrHTTPStatus = errors.New("github API error")
	// ErrNoCategories means the repository exposes no discussion categories.
	ErrNoCategories = errors.New("no discussion categories found")
	// ErrTokenMissing is returned when the store is called without a token.
	ErrTokenMissing = errors.New("github token not configured")
)

// DefaultEndpoint is the public GitHub GraphQL endpoint.
const DefaultEndpoint = "https://api.github.com/graphql"

// Config configures a Client.
type Config struct {
	Endpoint string
	Token    string
	Owner    string
	Name     string
	Timeout  time.Duration
}

// DefaultConfig returns sensible defaults for the given repository.
func DefaultConfig(owner, name, token string) Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Token:    token,
		Owner:    owner,
		Name:     name,
		Timeout:  30 * time.Second,
	}
}

// Category is a discussion category, kept in the order the API returns them.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to one repository's discussions.
type Client struct {
	endpoint   string
	token      string
	owner      string
	name       string
	httpClient *http.Client
	logger     *zap.Logger

	mu         sync.Mutex
	repoID     string
	categories []Category
}

// NewClient creates a client for the configured repository.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		owner:      cfg.Owner,
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Repo returns the owner/name this client targets.
func (c *Client) Repo() string {
	return c.owner + "/" + c.name
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// do executes one query and decodes its data into out. It does not retry.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	if c.token == "" {
		return ErrTokenMissing
	}

	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrHTTPStatus, resp.StatusCode)
	}

	var gr graphqlResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, len(gr.Errors))
		for i, e := range gr.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(msgs, "; "))
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return fmt.Errorf("%w: empty data", ErrGraphQL)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}
