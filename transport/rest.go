package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	pkerrors "github.com/kbukum/paykit/errors"
)

// Get performs a GET request and decodes the JSON response into type T.
func Get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	return Do[T](ctx, c, Request{Method: http.MethodGet, Path: path})
}

// Post performs a POST request with a JSON body and decodes the response
// into type T. A non-empty idempotencyKey makes the request retryable and
// is covered by the request signature.
func Post[T any](ctx context.Context, c *Client, path string, body any, idempotencyKey string) (*T, error) {
	return Do[T](ctx, c, Request{
		Method:         http.MethodPost,
		Path:           path,
		Body:           body,
		IdempotencyKey: idempotencyKey,
	})
}

// Delete performs a DELETE request and decodes the JSON response into
// type T.
func Delete[T any](ctx context.Context, c *Client, path string) (*T, error) {
	return Do[T](ctx, c, Request{Method: http.MethodDelete, Path: path})
}

// Do executes a request and decodes the JSON response into type T. An
// empty response body yields a zero value.
func Do[T any](ctx context.Context, c *Client, req Request) (*T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var data T
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, &data); err != nil {
			return nil, pkerrors.NewDecodeError(fmt.Errorf("decode response: %w", err))
		}
	}
	return &data, nil
}
