package http

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON is Get decoding the payload into T.
func GetJSON[T any](ctx context.Context, c *Client, endpoint string, params map[string]interface{}, opts ...RequestOption) Response[T] {
	return decodeResponse[T](c.Get(ctx, endpoint, params, opts...))
}

func PostJSON[T any](ctx context.Context, c *Client, endpoint string, body interface{}, opts ...RequestOption) Response[T] {
	return decodeResponse[T](c.Post(ctx, endpoint, body, opts...))
}

func PutJSON[T any](ctx context.Context, c *Client, endpoint string, body interface{}, opts ...RequestOption) Response[T] {
	return decodeResponse[T](c.Put(ctx, endpoint, body, opts...))
}

func DeleteJSON[T any](ctx context.Context, c *Client, endpoint string, opts ...RequestOption) Response[T] {
	return decodeResponse[T](c.Delete(ctx, endpoint, opts...))
}

// decodeResponse converts a raw response; a payload that does not fit T
// becomes a failure response.
func decodeResponse[T any](raw Response[json.RawMessage]) Response[T] {
	out := Response[T]{
		Success:   raw.Success,
		Error:     raw.Error,
		Err:       raw.Err,
		Timestamp: raw.Timestamp,
		Cached:    raw.Cached,
	}
	if !raw.Success || len(raw.Data) == 0 {
		return out
	}

	if err := json.Unmarshal(raw.Data, &out.Data); err != nil {
		var zero T
		out.Data = zero
		out.Success = false
		out.Err = fmt.Errorf("%w: %v", ErrDecode, err)
		out.Error = out.Err.Error()
	}
	return out
}
