package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	pkerrors "github.com/kbukum/paykit/errors"
)

const defaultUserAgent = "paykit/" + Version

// Version is the SDK version reported in the User-Agent header.
const Version = "0.1.0"

const tracerName = "github.com/kbukum/paykit/transport"

// Client executes logical API calls through the delivery pipeline.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a new pipeline client.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		httpClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}, nil
}

// Do executes one logical call: authenticate, sign if mutating, dispatch
// with retries. The returned Response is non-nil for any response received
// from the server, including error statuses.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, req.Method+" "+req.Path)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	)

	resp, err := c.do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if resp != nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	// Serialize the body exactly once. The same bytes are signed and
	// resent on every attempt.
	body, err := encodeBody(req.Body)
	if err != nil {
		return nil, pkerrors.NewValidationError(fmt.Errorf("encode request body: %w", err))
	}

	var token string
	if c.config.TokenSource != nil {
		token, err = c.config.TokenSource.Token(ctx)
		if err != nil {
			return nil, err
		}
	}

	// Mutating requests are signed once per logical call, never per
	// attempt: a retried request must carry the identical signature.
	var signature string
	if c.config.Signer != nil && isMutating(req.Method) {
		signature, err = c.sign(req, body)
		if err != nil {
			return nil, err
		}
	}

	start := time.Now()
	reauthenticated := false
	attempt := 1
	for {
		resp, err := c.attempt(ctx, req, body, token, signature)
		if err == nil {
			return resp, nil
		}

		// Bounded 401 path: invalidate the cached token, re-authenticate
		// and replay once. Distinct from the transport retry budget.
		if pkerrors.IsAuthRejection(err) && !reauthenticated && c.config.TokenSource != nil {
			reauthenticated = true
			c.config.TokenSource.Invalidate(token)
			c.config.Logger.Debug().Msg("access token rejected, re-authenticating")
			token, err = c.config.TokenSource.Token(ctx)
			if err != nil {
				return nil, err
			}
			continue
		}

		policy := c.config.Retry
		if policy == nil || !pkerrors.IsRetryable(err) || !isIdempotent(req) {
			return resp, err
		}
		if attempt >= policy.MaxAttempts {
			return resp, err
		}
		if policy.MaxElapsed > 0 && time.Since(start) >= policy.MaxElapsed {
			return resp, err
		}

		c.config.Logger.Debug().
			Str("method", req.Method).
			Str("path", req.Path).
			Int("attempt", attempt).
			Err(err).
			Msg("retrying transient failure")
		if werr := policy.wait(ctx, attempt); werr != nil {
			return resp, err
		}
		attempt++
	}
}

// attempt performs one physical request.
func (c *Client) attempt(ctx context.Context, req Request, body []byte, token, signature string) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req, body, token, signature)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, pkerrors.NewTimeoutError(err)
		}
		return nil, pkerrors.NewTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkerrors.NewTransportError(fmt.Errorf("read response body: %w", err))
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       respBody,
	}
	if !result.IsSuccess() {
		return result, pkerrors.FromResponse(resp.StatusCode, respBody, result.TraceID())
	}
	return result, nil
}

// sign builds the canonical signing input for a mutating request and
// delegates to the configured signer.
func (c *Client) sign(req Request, body []byte) (string, error) {
	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers[IdempotencyKeyHeader] = req.IdempotencyKey
	}
	return c.config.Signer.Sign(req.Method, signingPath(req), headers, body)
}

// signingPath is the request path including the query string, when present.
func signingPath(req Request) string {
	path := req.Path
	if len(req.Query) > 0 {
		path = path + "?" + encodeQuery(req.Query)
	}
	return path
}

// buildRequest constructs an *http.Request for one attempt.
func (c *Client) buildRequest(ctx context.Context, req Request, body []byte, token, signature string) (*http.Request, error) {
	url := strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, reader)
	if err != nil {
		return nil, pkerrors.NewTransportError(fmt.Errorf("create request: %w", err))
	}

	if len(req.Query) > 0 {
		httpReq.URL.RawQuery = encodeQuery(req.Query)
	}

	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.IdempotencyKey != "" {
		httpReq.Header.Set(IdempotencyKeyHeader, req.IdempotencyKey)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	if signature != "" {
		httpReq.Header.Set(SignatureHeader, signature)
	}

	return httpReq, nil
}

// encodeBody converts a body value into the exact bytes to transmit.
func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// encodeQuery encodes query parameters deterministically (sorted keys),
// so that the signed path matches the transmitted path.
func encodeQuery(query map[string]string) string {
	values := make(url.Values, len(query))
	for k, v := range query {
		values[k] = []string{v}
	}
	return values.Encode()
}

// isMutating reports whether a method requires a request signature.
func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
