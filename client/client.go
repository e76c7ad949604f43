// Package client is a minimal GraphQL client for a sublinear server, the
// counterpart of what IDE and agent tooling uses against the hosted API.
package client

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"
)

type Client struct {
    Endpoint   string
    APIKey     string
    HTTPClient *http.Client
}

// New creates a client for the /graphql endpoint at base. The key is sent as
// the Authorization header when non-empty.
func New(base, apiKey string) *Client {
    return &Client{
        Endpoint:   base + "/graphql",
        APIKey:     apiKey,
        HTTPClient: &http.Client{Timeout: 15 * time.Second},
    }
}

type graphQLRequest struct {
    Query     string         `json:"query"`
    Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
    Message string `json:"message"`
}

type graphQLResponse struct {
    Data   json.RawMessage `json:"data"`
    Errors []graphQLError  `json:"errors"`
}

// Do executes one query or mutation and unmarshals the data payload into out
// (which may be nil). The first GraphQL-level error is returned as an error.
func (c *Client) Do(ctx context.Context, query string, variables map[string]any, out any) error {
    body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
    if err != nil { return err }

    req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
    if err != nil { return err }
    req.Header.Set("Content-Type", "application/json")
    if c.APIKey != "" { req.Header.Set("Authorization", c.APIKey) }

    resp, err := c.HTTPClient.Do(req)
    if err != nil { return err }
    defer resp.Body.Close()

    raw, err := io.ReadAll(resp.Body)
    if err != nil { return err }
    if resp.StatusCode != http.StatusOK {
        return fmt.Errorf("sublinear: status %d: %s", resp.StatusCode, raw)
    }

    var parsed graphQLResponse
    if err := json.Unmarshal(raw, &parsed); err != nil {
        return fmt.Errorf("sublinear: decode response: %w", err)
    }
    if len(parsed.Errors) > 0 {
        return fmt.Errorf("sublinear: %s", parsed.Errors[0].Message)
    }
    if out == nil { return nil }
    return json.Unmarshal(parsed.Data, out)
}
