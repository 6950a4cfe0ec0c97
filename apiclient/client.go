// Package apiclient talks to the Martory REST backend. Every call carries the headers
// built by HeaderBuilder and comes back as a tagged Outcome: success, unreachable or
// rejected. There are no retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/martory/go-tenant-session/internal/errors"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxResponseBytes = 4 << 20

// Request describes one backend call
type Request struct {
	Method string
	Path   string
	Body   any
	// Tenant overrides the resolved tenant for this call
	Tenant string
	// TenantScoped calls are refused locally when no tenant resolves
	TenantScoped bool
}

// Client is a Martory backend client
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    *HeaderBuilder
	logger     zerolog.Logger
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithLogger sets a structured logger for the client
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for baseURL (e.g. "https://api.martory.com")
func New(baseURL string, headers *HeaderBuilder, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		headers:    headers,
		logger:     log.Logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Headers returns the header builder in use
func (c *Client) Headers() *HeaderBuilder {
	return c.headers
}

// Do performs req and classifies the result. Transport failures, including context
// cancellation, are OutcomeUnreachable.
func (c *Client) Do(ctx context.Context, req Request) Outcome {
	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return Outcome{Kind: OutcomeRejected, Message: "invalid request body", Err: err}
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return Outcome{Kind: OutcomeUnreachable, Err: pkgerrors.Wrap(err, "[Client.Do] build request")}
	}
	httpReq.Header = c.headers.BuildHeaders(req.Tenant)
	requestID := uuid.NewString()
	httpReq.Header.Set(HeaderRequestID, requestID)

	logger := c.logger.With().Str("method", req.Method).Str("path", req.Path).Str("request_id", requestID).Logger()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Debug().Err(err).Msg("backend unreachable")
		return Outcome{Kind: OutcomeUnreachable, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		logger.Debug().Err(err).Msg("reading response body failed")
		return Outcome{Kind: OutcomeUnreachable, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := serverMessage(resp.StatusCode, raw)
		logger.Debug().Int("status", resp.StatusCode).Str("server_message", msg).Msg("backend rejected request")
		return Outcome{Kind: OutcomeRejected, StatusCode: resp.StatusCode, Body: raw, Message: msg}
	}
	return Outcome{Kind: OutcomeSuccess, StatusCode: resp.StatusCode, Body: raw}
}

// call runs req and decodes a successful body into out
func (c *Client) call(ctx context.Context, req Request, out any) error {
	if req.TenantScoped && strings.TrimSpace(req.Tenant) == "" {
		if c.headers.resolver == nil {
			return errors.ErrNoTenant
		}
		if _, ok := c.headers.resolver.Resolve(); !ok {
			return errors.ErrNoTenant
		}
	}
	o := c.Do(ctx, req)
	if err := o.AsError(); err != nil {
		return err
	}
	return o.Decode(out)
}
