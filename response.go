package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Response is the outcome of a successful attempt. Data holds the decoded
// body: JSON content types decode to generic values, text/* to a string,
// anything else stays raw bytes. Body always keeps the raw payload for
// callers that want typed decoding via JSON or Into.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
	Data       any
	// Request is the resolved request that produced this response.
	Request *Request
}

// JSON decodes the raw body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Into decodes a response body into T.
func Into[T any](r *Response) (T, error) {
	var out T
	if err := r.JSON(&out); err != nil {
		return out, err
	}
	return out, nil
}

// decodeData interprets the body by content type for Response.Data.
func decodeData(contentType string, body []byte) any {
	switch {
	case isJSONContentType(contentType):
		if len(body) == 0 {
			return nil
		}
		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			// Malformed JSON from the server; keep the raw text.
			return string(body)
		}
		return data
	case strings.HasPrefix(strings.TrimSpace(contentType), "text/"):
		return string(body)
	default:
		return body
	}
}
