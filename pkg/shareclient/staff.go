package shareclient

import (
	"context"
	"fmt"
	"net/http"
)

// StaffClient issues and inspects share tokens on behalf of an authenticated
// staff session.
type StaffClient struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func NewStaffClient(baseURL, bearerToken string, opts ...Option) *StaffClient {
	o := buildOptions(opts)
	return &StaffClient{
		baseURL: baseURL,
		token:   bearerToken,
		httpc:   o.httpc,
	}
}

func (c *StaffClient) header() http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)
	header.Set("Content-Type", "application/json")
	return header
}

// CreateShare issues or refreshes the booking's share token. Empty
// categories means "share every category"; zero expiresInSeconds picks the
// server default.
func (c *StaffClient) CreateShare(ctx context.Context, bookingID string, categories []string, expiresInSeconds int64) (*ShareToken, error) {
	body, err := encodeJSON(map[string]interface{}{
		"categories":         categories,
		"expires_in_seconds": expiresInSeconds,
	})
	if err != nil {
		return nil, err
	}
	url := joinURL(c.baseURL, "api/v1/bookings", bookingID, "share")
	resp, err := doRequest(ctx, c.httpc, http.MethodPost, url, body, c.header())
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()
	if err := checkStaffStatus(resp); err != nil {
		return nil, err
	}
	var share ShareToken
	if err := decodeEnvelope(resp.Body, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// GetShare fetches the booking's current live token. A booking without one
// answers (nil, nil): "no token" is a normal state, distinct from any failure
// to reach the server.
func (c *StaffClient) GetShare(ctx context.Context, bookingID string) (*ShareToken, error) {
	url := joinURL(c.baseURL, "api/v1/bookings", bookingID, "share")
	resp, err := doRequest(ctx, c.httpc, http.MethodGet, url, nil, c.header())
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()
	if err := checkStaffStatus(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Share *ShareToken `json:"share"`
	}
	if err := decodeEnvelope(resp.Body, &payload); err != nil {
		return nil, err
	}
	return payload.Share, nil
}

// RevokeShare retires the booking's live token, if any.
func (c *StaffClient) RevokeShare(ctx context.Context, bookingID string) error {
	url := joinURL(c.baseURL, "api/v1/bookings", bookingID, "share")
	resp, err := doRequest(ctx, c.httpc, http.MethodDelete, url, nil, c.header())
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()
	if err := checkStaffStatus(resp); err != nil {
		return err
	}
	return decodeEnvelope(resp.Body, nil)
}

func checkStaffStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("booking not found")
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("invalid share request")
	default:
		return &TransientError{Status: resp.StatusCode}
	}
}
