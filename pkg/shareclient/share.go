package shareclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// ShareClient consumes the anonymous share surface. It is built without any
// credential and never sets an Authorization header; the token in the URL
// path is the whole identity.
type ShareClient struct {
	baseURL string
	httpc   *http.Client
}

func NewShareClient(baseURL string, opts ...Option) *ShareClient {
	o := buildOptions(opts)
	return &ShareClient{
		baseURL: baseURL,
		httpc:   o.httpc,
	}
}

// Resolve turns a bare token into the share payload. Forbidden-class statuses
// mean the link itself is dead (ErrLinkExpired, terminal); anything else is
// transient and retryable. Resolving is read-only and can be repeated freely.
func (c *ShareClient) Resolve(ctx context.Context, token string) (*ResolvedShare, error) {
	url := joinURL(c.baseURL, "api/v1/public/share", token)
	resp, err := doRequest(ctx, c.httpc, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()
	if err := checkShareStatus(resp); err != nil {
		return nil, err
	}
	var payload struct {
		Booking           Booking    `json:"booking"`
		Documents         []Document `json:"documents"`
		AllowedCategories []string   `json:"allowed_categories"`
		ExpiresAt         string     `json:"expires_at"`
		ItineraryHTML     string     `json:"itinerary_html"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode share payload: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, payload.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("parse expiry %q: %w", payload.ExpiresAt, err)
	}
	return &ResolvedShare{
		Booking:           payload.Booking,
		Documents:         payload.Documents,
		AllowedCategories: payload.AllowedCategories,
		ExpiresAt:         expiresAt,
		ItineraryHTML:     payload.ItineraryHTML,
	}, nil
}

type DownloadKind int

const (
	// DownloadRedirect means the server answered with a direct object URL;
	// fetch the bytes from URL.
	DownloadRedirect DownloadKind = iota + 1
	// DownloadStream means Body carries the bytes; the caller owns closing it.
	DownloadStream
)

// Download is the tagged result of a download call. The JSON-with-URL vs
// binary-stream ambiguity of the endpoint is decided here, once, and never
// leaks past this type.
type Download struct {
	Kind        DownloadKind
	URL         string
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

func (d *Download) Close() error {
	if d.Body != nil {
		return d.Body.Close()
	}
	return nil
}

// DownloadDocument fetches one document under the token. The response shape is
// sniffed from the content type; the filename falls back from the
// Content-Disposition header to the document's recorded name to a generic
// default, in that order.
func (c *ShareClient) DownloadDocument(ctx context.Context, token string, doc Document) (*Download, error) {
	url := joinURL(c.baseURL, "api/v1/public/share", token, "download", doc.ID)
	return c.download(ctx, url, doc.Filename)
}

// DownloadAll fetches the archive of every document visible under the token.
func (c *ShareClient) DownloadAll(ctx context.Context, token string) (*Download, error) {
	url := joinURL(c.baseURL, "api/v1/public/share", token, "download-all")
	return c.download(ctx, url, "documents.zip")
}

func (c *ShareClient) download(ctx context.Context, url, recordedFilename string) (*Download, error) {
	resp, err := doRequest(ctx, c.httpc, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	if err := checkShareStatus(resp); err != nil {
		drainBody(resp)
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if isJSONContentType(contentType) {
		defer resp.Body.Close()
		var payload struct {
			URL      string `json:"url"`
			Filename string `json:"filename"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode download payload: %w", err)
		}
		if payload.URL == "" {
			return nil, fmt.Errorf("download payload missing url")
		}
		return &Download{
			Kind:     DownloadRedirect,
			URL:      payload.URL,
			Filename: pickFilename("", payload.Filename, recordedFilename),
		}, nil
	}

	filename := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	return &Download{
		Kind:        DownloadStream,
		Filename:    pickFilename(filename, recordedFilename, "document"),
		ContentType: contentType,
		Body:        resp.Body,
	}, nil
}

func checkShareStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return ErrLinkExpired
	default:
		return &TransientError{Status: resp.StatusCode}
	}
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func filenameFromDisposition(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func pickFilename(candidates ...string) string {
	for _, candidate := range candidates {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return "document"
}
