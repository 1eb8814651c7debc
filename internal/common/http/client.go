// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"cowin-slot-assistant/internal/common/errors"
	"cowin-slot-assistant/internal/common/logger"
	"cowin-slot-assistant/internal/common/metrics"
	"cowin-slot-assistant/internal/common/validation"
)

// maxBodyBytes caps how much of a response is read into memory.
const maxBodyBytes = 4 << 20

type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	token      string
	logger     logger.Logger
}

type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    logger.Logger
}

func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		logger:    log,
	}
}

// SetToken sets the bearer token sent with every subsequent request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

// Request describes a single API call. Resource names the endpoint for
// errors and metrics; Schema, when set, is checked before decoding into Out.
type Request struct {
	Method   string
	Path     string
	Resource string
	Body     interface{}
	Schema   *validation.JSONSchema
	Out      interface{}
}

// Do executes req. A non-2xx response fails with FETCH_FAILED carrying the
// status code and body.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	start := time.Now()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.APIRequests.WithLabelValues(req.Resource, "error").Inc()
		c.logger.Warn("API request failed", map[string]interface{}{
			"resource": req.Resource,
			"error":    err.Error(),
		})
		return nil, errors.NewTransportFailedError(req.Resource, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.NewTransportFailedError(req.Resource, err)
	}

	metrics.APIRequests.WithLabelValues(req.Resource, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.APIRequestDuration.WithLabelValues(req.Resource).Observe(time.Since(start).Seconds())

	c.logger.Debug("API request completed", map[string]interface{}{
		"resource":   req.Resource,
		"statusCode": resp.StatusCode,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, errors.NewFetchFailedError(req.Resource, resp.StatusCode, string(body))
	}

	if req.Schema != nil {
		result, err := validation.ValidateDocument(body, *req.Schema)
		if err != nil {
			return body, errors.NewInvalidPayloadError(req.Resource, err.Error())
		}
		if !result.Valid {
			return body, errors.NewInvalidPayloadError(req.Resource, strings.Join(result.GetErrorMessages(), "; "))
		}
	}

	if req.Out != nil {
		if err := json.Unmarshal(body, req.Out); err != nil {
			return body, errors.NewInvalidPayloadError(req.Resource, err.Error())
		}
	}

	return body, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var reader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", req.Resource, err)
		}
		reader = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.Path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", req.Resource, err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	return httpReq, nil
}
