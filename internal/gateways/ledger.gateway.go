package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/makonda/offering-cards/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

var (
	ErrLedgerUnavailable = errors.New("legacy ledger unavailable")
)

// RecordRequest is the payload the legacy ledger accepts for one
// mirrored offering entry.
type RecordRequest struct {
	EntryID     int64           `json:"entry_id"`
	CardCode    string          `json:"card_code"`
	PayerID     int64           `json:"payer_id"`
	EntryType   string          `json:"entry_type"`
	Amount      decimal.Decimal `json:"amount"`
	ServiceDate string          `json:"service_date"`
	MassType    string          `json:"mass_type,omitempty"`
}

type RecordResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	RetryDelay      time.Duration
	MaxConns        int
	ReadBufferSize  int
	WriteBufferSize int
}

// Client talks to the legacy church ledger over HTTP. The ledger is a
// mirror, not a source of truth, so callers decide how hard to retry.
type Client struct {
	config *Config
	http   *fasthttp.Client
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if config.BaseURL == "" {
		return nil, errors.New("ledger base url is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	client := &Client{
		config: config,
		http: &fasthttp.Client{
			MaxConnsPerHost:     config.MaxConns,
			ReadTimeout:         config.Timeout,
			WriteTimeout:        config.Timeout,
			MaxIdleConnDuration: 60 * time.Second,
			ReadBufferSize:      config.ReadBufferSize,
			WriteBufferSize:     config.WriteBufferSize,
		},
	}

	logger.Info("Ledger client initialized", "url", config.BaseURL, "timeout", config.Timeout)

	return client, nil
}

// Record mirrors one offering entry into the legacy ledger, retrying
// transient failures.
func (c *Client) Record(ctx context.Context, req *RecordRequest) (*RecordResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		start := time.Now()
		response, err := c.doRequest(ctx, "POST", "/api/v1/offerings", reqBody)
		latency := time.Since(start).Milliseconds()

		if err != nil {
			logger.Warn("Ledger request failed, retrying", "error", err, "attempt", attempt+1)
			lastErr = err
			continue
		}

		var resp RecordResponse
		if err := json.Unmarshal(response, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		logger.Info("Entry mirrored to ledger", "entry_id", req.EntryID, "status", resp.Status, "latency_ms", latency)

		return &resp, nil
	}

	return nil, fmt.Errorf("%w: failed after %d attempts: %v", ErrLedgerUnavailable, c.config.MaxRetries+1, lastErr)
}

// Healthy reports whether the ledger answers its health endpoint.
func (c *Client) Healthy(ctx context.Context) bool {
	_, err := c.doRequest(ctx, "GET", "/health", nil)
	return err == nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.config.BaseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")

	if body != nil {
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK && statusCode != fasthttp.StatusCreated && statusCode != fasthttp.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", statusCode, resp.Body())
	}

	result := make([]byte, len(resp.Body()))
	copy(result, resp.Body())

	return result, nil
}
