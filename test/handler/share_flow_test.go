package handler_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type jsonBody = map[string]interface{}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) jsonBody {
	t.Helper()
	var envelope struct {
		Data jsonBody `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func loginAs(t *testing.T, router http.Handler) string {
	t.Helper()
	email := newTestID() + "@example.com"
	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", jsonBody{
		"email":    email,
		"password": "kilimanjaro-2026",
		"name":     "Test Staff",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", jsonBody{
		"email":    email,
		"password": "kilimanjaro-2026",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createBooking(t *testing.T, router http.Handler, token string) string {
	t.Helper()
	resp := doJSON(t, router, http.MethodPost, "/api/v1/bookings", token, jsonBody{
		"reference":   "SAF-" + newTestID()[:8],
		"client_name": "Jane Traveller",
		"start_date":  "2026-10-01",
		"end_date":    "2026-10-10",
		"pax":         2,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func uploadDocument(t *testing.T, router http.Handler, token, bookingID, filename, category string) string {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test content for " + filename))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("category", category))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/documents", bookingID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	data := decodeData(t, resp)
	id, _ := data["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestShareFlow(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	staffToken := loginAs(t, router)
	bookingID := createBooking(t, router, staffToken)
	voucherID := uploadDocument(t, router, staffToken, bookingID, "voucher.pdf", "voucher")
	invoiceID := uploadDocument(t, router, staffToken, bookingID, "invoice.pdf", "invoice")

	// Issue a voucher-only share.
	resp := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/share", bookingID), staffToken, jsonBody{
		"categories": []string{"voucher"},
	})
	require.Equal(t, http.StatusOK, resp.Code)
	shareToken, _ := decodeData(t, resp)["token"].(string)
	require.NotEmpty(t, shareToken)

	// Anonymous resolve sees only the voucher.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+shareToken, nil)
	resolveResp := httptest.NewRecorder()
	router.ServeHTTP(resolveResp, req)
	require.Equal(t, http.StatusOK, resolveResp.Code)

	var resolved struct {
		Booking struct {
			ID string `json:"id"`
		} `json:"booking"`
		Documents []struct {
			ID       string `json:"id"`
			Category string `json:"category"`
		} `json:"documents"`
		AllowedCategories []string `json:"allowed_categories"`
	}
	require.NoError(t, json.Unmarshal(resolveResp.Body.Bytes(), &resolved))
	require.Equal(t, bookingID, resolved.Booking.ID)
	require.Len(t, resolved.Documents, 1)
	require.Equal(t, voucherID, resolved.Documents[0].ID)
	require.Equal(t, []string{"voucher"}, resolved.AllowedCategories)

	// In-scope download streams bytes with a filename.
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/public/share/%s/download/%s", shareToken, voucherID), nil)
	downloadResp := httptest.NewRecorder()
	router.ServeHTTP(downloadResp, req)
	require.Equal(t, http.StatusOK, downloadResp.Code)
	require.Contains(t, downloadResp.Header().Get("Content-Disposition"), "voucher.pdf")
	require.Contains(t, downloadResp.Body.String(), "%PDF-1.4")

	// A document outside the shared categories stays invisible.
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/public/share/%s/download/%s", shareToken, invoiceID), nil)
	hiddenResp := httptest.NewRecorder()
	router.ServeHTTP(hiddenResp, req)
	require.Equal(t, http.StatusNotFound, hiddenResp.Code)

	// The archive holds exactly the visible documents.
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/public/share/%s/download-all", shareToken), nil)
	archiveResp := httptest.NewRecorder()
	router.ServeHTTP(archiveResp, req)
	require.Equal(t, http.StatusOK, archiveResp.Code)
	zr, err := zip.NewReader(bytes.NewReader(archiveResp.Body.Bytes()), int64(archiveResp.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	require.Equal(t, "voucher.pdf", zr.File[0].Name)

	// Revoking kills the link immediately.
	resp = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%s/share", bookingID), staffToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+shareToken, nil)
	deadResp := httptest.NewRecorder()
	router.ServeHTTP(deadResp, req)
	require.Equal(t, http.StatusForbidden, deadResp.Code)
}

func TestShareReissueSupersedes(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	staffToken := loginAs(t, router)
	bookingID := createBooking(t, router, staffToken)

	resp := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/share", bookingID), staffToken, jsonBody{})
	require.Equal(t, http.StatusOK, resp.Code)
	firstToken, _ := decodeData(t, resp)["token"].(string)

	resp = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%s/share", bookingID), staffToken, jsonBody{})
	require.Equal(t, http.StatusOK, resp.Code)
	secondToken, _ := decodeData(t, resp)["token"].(string)
	require.NotEqual(t, firstToken, secondToken)

	// Only the latest token resolves.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+firstToken, nil)
	oldResp := httptest.NewRecorder()
	router.ServeHTTP(oldResp, req)
	require.Equal(t, http.StatusForbidden, oldResp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/public/share/"+secondToken, nil)
	newResp := httptest.NewRecorder()
	router.ServeHTTP(newResp, req)
	require.Equal(t, http.StatusOK, newResp.Code)

	resp = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%s/share", bookingID), staffToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	share, ok := decodeData(t, resp)["share"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, secondToken, share["token"])
}

func TestPublicShareUnknownToken(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/share/definitely-not-a-token", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", jsonBody{
		"email":    newTestID() + "@example.com",
		"password": "short",
		"name":     "Test Staff",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStaffEndpointsRequireAuth(t *testing.T) {
	router, cleanup := setupRouter(t)
	defer cleanup()

	resp := doJSON(t, router, http.MethodGet, "/api/v1/bookings", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
