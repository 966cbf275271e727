// Package shareclient is the Go consumer of the safaridesk share surface.
//
// Two client types split the two trust levels. StaffClient carries the staff
// bearer credential and talks to the issuing endpoints. ShareClient carries no
// credential at all and talks to the public token-gated endpoints; keeping it
// a separate type means a staff credential cannot leak into the anonymous
// share flow by construction.
package shareclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

type options struct {
	httpc *http.Client
}

type Option func(*options)

// WithHTTPClient replaces the default client (10s timeout, no retries).
func WithHTTPClient(httpc *http.Client) Option {
	return func(o *options) {
		o.httpc = httpc
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		httpc: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ShareToken is the staff view of an issued token.
type ShareToken struct {
	BookingID  string   `json:"booking_id"`
	Token      string   `json:"token"`
	Categories []string `json:"categories"`
	IssuedAt   int64    `json:"issued_at"`
	ExpiresAt  int64    `json:"expires_at"`
	ShareURL   string   `json:"share_url"`
}

// Booking is the summary an anonymous viewer sees.
type Booking struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

// Document is one entry of the resolved document list.
type Document struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Category    string `json:"category"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	UploadedAt  string `json:"uploaded_at"`
}

// ResolvedShare is the payload behind a live share link.
type ResolvedShare struct {
	Booking           Booking    `json:"booking"`
	Documents         []Document `json:"documents"`
	AllowedCategories []string   `json:"allowed_categories"`
	ExpiresAt         time.Time  `json:"expires_at"`
	ItineraryHTML     string     `json:"itinerary_html"`
}

// envelope is the {"data": ...} / {"error": ...} wrapper of staff endpoints.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeEnvelope(body io.Reader, dst interface{}) error {
	var env envelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Error != nil {
		return fmt.Errorf("server error: %s", env.Error.Message)
	}
	if dst == nil {
		return nil
	}
	return json.Unmarshal(env.Data, dst)
}

func joinURL(base string, parts ...string) string {
	url := strings.TrimSuffix(base, "/")
	for _, part := range parts {
		url += "/" + strings.Trim(part, "/")
	}
	return url
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

func encodeJSON(v interface{}) (io.Reader, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return &buf, nil
}

func doRequest(ctx context.Context, httpc *http.Client, method, url string, body io.Reader, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return httpc.Do(req)
}
