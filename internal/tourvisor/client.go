// Package tourvisor implements the HTTP client for the Tourvisor search API:
// query-string requests, XML response bodies, an asynchronous job model.
package tourvisor

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/hussainn7/TravellingService/core/config"
	"github.com/hussainn7/TravellingService/core/logger"
	"github.com/hussainn7/TravellingService/core/netutil"
)

// Client talks to the Tourvisor XML API. Credentials come from configuration
// and are attached to every request, never logged.
type Client struct {
	baseURL  string
	login    string
	password string
	http     *http.Client
}

// NewClient constructs a Client. A nil httpClient falls back to the shared
// retrying client.
func NewClient(cfg coreconfig.TourvisorConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = netutil.BuildHTTPClient()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		login:    cfg.Login,
		password: cfg.Password,
		http:     httpClient,
	}
}

// Submit creates a search job and returns its request identifier.
// A response without an identifier is terminal for the attempt.
func (c *Client) Submit(ctx context.Context, req SearchRequest) (string, error) {
	params := req.Values()
	body, err := c.get(ctx, "search.php", params)
	if err != nil {
		return "", &TransportError{Op: "submit", Err: err}
	}

	var env submitEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return "", &ParseError{Op: "submit", Err: err}
	}
	if msg := strings.TrimSpace(env.ErrorMessage); msg != "" {
		return "", &TransportError{Op: "submit", Err: errors.New(msg)}
	}
	requestID := strings.TrimSpace(env.RequestID)
	if requestID == "" {
		return "", &ParseError{Op: "submit", Err: ErrNoRequestID}
	}

	logger.Debug(ctx, "tourvisor", "submit.ok",
		slog.String("request_id", requestID),
		slog.String("country", req.Country),
		slog.String("departure", req.Departure),
	)
	return requestID, nil
}

// Status fetches the current state of a search job.
func (c *Client) Status(ctx context.Context, requestID string) (Status, error) {
	params := url.Values{}
	params.Set("requestid", requestID)
	params.Set("type", "status")

	body, err := c.get(ctx, "result.php", params)
	if err != nil {
		return Status{}, &TransportError{Op: "status", Err: err}
	}

	var env statusEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return Status{}, &ParseError{Op: "status", Err: err}
	}
	return env.Status, nil
}

// Results fetches the hotel list of a search job. An empty list is a valid
// outcome and is distinct from a malformed body.
func (c *Client) Results(ctx context.Context, requestID string) ([]Hotel, error) {
	params := url.Values{}
	params.Set("requestid", requestID)
	params.Set("type", "result")

	body, err := c.get(ctx, "result.php", params)
	if err != nil {
		return nil, &TransportError{Op: "result", Err: err}
	}

	var env resultEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Op: "result", Err: err}
	}
	return env.Result.Hotels, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("authlogin", c.login)
	params.Set("authpass", c.password)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	logger.Debug(ctx, "tourvisor", "request.done",
		slog.String("endpoint", endpoint),
		slog.Int("bytes", len(body)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return body, nil
}
