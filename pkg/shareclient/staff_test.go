package shareclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateShare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/bookings/b1/share", r.URL.Path)
		require.Equal(t, "Bearer staff-token", r.Header.Get("Authorization"))

		var body struct {
			Categories       []string `json:"categories"`
			ExpiresInSeconds int64    `json:"expires_in_seconds"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"voucher"}, body.Categories)
		require.EqualValues(t, 3600, body.ExpiresInSeconds)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {
			"booking_id": "b1",
			"token": "abc123",
			"categories": ["voucher"],
			"issued_at": 1756720000,
			"expires_at": 1756723600,
			"share_url": "https://safaridesk.example.com/api/v1/public/share/abc123"
		}}`))
	}))
	defer server.Close()

	client := NewStaffClient(server.URL, "staff-token")
	share, err := client.CreateShare(context.Background(), "b1", []string{"voucher"}, 3600)
	require.NoError(t, err)
	require.Equal(t, "abc123", share.Token)
	require.Equal(t, []string{"voucher"}, share.Categories)
	require.Equal(t, "https://safaridesk.example.com/api/v1/public/share/abc123", share.ShareURL)
}

func TestGetShareDistinguishesAbsenceFromFailure(t *testing.T) {
	t.Run("no live token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": {"share": null}}`))
		}))
		defer server.Close()

		client := NewStaffClient(server.URL, "staff-token")
		share, err := client.GetShare(context.Background(), "b1")
		require.NoError(t, err)
		require.Nil(t, share)
	})

	t.Run("live token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data": {"share": {"booking_id": "b1", "token": "abc123"}}}`))
		}))
		defer server.Close()

		client := NewStaffClient(server.URL, "staff-token")
		share, err := client.GetShare(context.Background(), "b1")
		require.NoError(t, err)
		require.NotNil(t, share)
		require.Equal(t, "abc123", share.Token)
	})

	t.Run("server failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewStaffClient(server.URL, "staff-token")
		_, err := client.GetShare(context.Background(), "b1")
		require.True(t, IsTransient(err))
	})
}

func TestStaffUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewStaffClient(server.URL, "stale-token")
	_, err := client.GetShare(context.Background(), "b1")
	require.ErrorIs(t, err, ErrUnauthorized)
	require.False(t, IsTransient(err))
}

func TestRevokeShare(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	client := NewStaffClient(server.URL, "staff-token")
	require.NoError(t, client.RevokeShare(context.Background(), "b1"))
	require.Equal(t, http.MethodDelete, method)
	require.Equal(t, "/api/v1/bookings/b1/share", path)
}
