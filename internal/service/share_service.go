package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/zip"
	"github.com/yuin/goldmark"

	"github.com/wildtrail/safaridesk/internal/filestore"
	"github.com/wildtrail/safaridesk/internal/model"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
	"github.com/wildtrail/safaridesk/internal/repo"
)

const rejectedTokenCacheTTL = time.Minute

type ShareService struct {
	shares     *repo.ShareRepo
	bookings   *repo.BookingRepo
	documents  *repo.DocumentRepo
	store      filestore.Store
	baseURL    string
	defaultTTL int64
	// rejected remembers recently failed tokens so repeated probing of the
	// unauthenticated resolve endpoint stops short of the database.
	rejected *expirable.LRU[string, struct{}]
	now      func() time.Time
}

func NewShareService(shares *repo.ShareRepo, bookings *repo.BookingRepo, documents *repo.DocumentRepo, store filestore.Store, baseURL string, defaultTTLSeconds int64) *ShareService {
	return &ShareService{
		shares:     shares,
		bookings:   bookings,
		documents:  documents,
		store:      store,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		defaultTTL: defaultTTLSeconds,
		rejected:   expirable.NewLRU[string, struct{}](4096, nil, rejectedTokenCacheTTL),
		now:        time.Now,
	}
}

// ShareView is what staff see after issuing or fetching a token.
type ShareView struct {
	BookingID  string   `json:"booking_id"`
	Token      string   `json:"token"`
	Categories []string `json:"categories"`
	IssuedAt   int64    `json:"issued_at"`
	ExpiresAt  int64    `json:"expires_at"`
	ShareURL   string   `json:"share_url"`
}

// ResolvedShare is the anonymous viewer payload: booking summary, the
// category-scoped live document list and the absolute expiry instant.
type ResolvedShare struct {
	Booking           ResolvedBooking  `json:"booking"`
	Documents         []SharedDocument `json:"documents"`
	AllowedCategories []string         `json:"allowed_categories"`
	ExpiresAt         string           `json:"expires_at"`
	ItineraryHTML     string           `json:"itinerary_html,omitempty"`
}

type ResolvedBooking struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`
}

// SharedDocument is the public view of a stored document. Storage keys stay
// server-side; viewers address documents by id only.
type SharedDocument struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Category    string `json:"category"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	UploadedAt  string `json:"uploaded_at"`
}

func toSharedDocuments(docs []model.BookingDocument) []SharedDocument {
	result := make([]SharedDocument, 0, len(docs))
	for _, doc := range docs {
		result = append(result, SharedDocument{
			ID:          doc.ID,
			Filename:    doc.Filename,
			Category:    doc.Category,
			ContentType: doc.ContentType,
			Size:        doc.Size,
			UploadedAt:  time.Unix(doc.Ctime, 0).UTC().Format(time.RFC3339),
		})
	}
	return result
}

// normalizeCategories trims, lowercases, deduplicates and membership-checks the
// requested category labels. An empty request means "share everything".
func normalizeCategories(input []string) ([]string, error) {
	if len(input) == 0 {
		return model.AllCategories(), nil
	}
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, raw := range input {
		category := strings.TrimSpace(strings.ToLower(raw))
		if category == "" {
			continue
		}
		if !model.IsValidCategory(category) {
			return nil, appErr.ErrInvalid
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		result = append(result, category)
	}
	if len(result) == 0 {
		return model.AllCategories(), nil
	}
	return result, nil
}

func filterByCategories(docs []model.BookingDocument, categories []string) []model.BookingDocument {
	allowed := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		allowed[category] = struct{}{}
	}
	result := make([]model.BookingDocument, 0, len(docs))
	for _, doc := range docs {
		if _, ok := allowed[doc.Category]; ok {
			result = append(result, doc)
		}
	}
	return result
}

// publicSharePath is the resolver route as registered under the API group;
// share URLs handed to staff must resolve against this server as-is.
const publicSharePath = "/api/v1/public/share/"

func (s *ShareService) shareURL(token string) string {
	return s.baseURL + publicSharePath + token
}

func (s *ShareService) view(share *model.ShareToken) *ShareView {
	return &ShareView{
		BookingID:  share.BookingID,
		Token:      share.Token,
		Categories: share.Categories,
		IssuedAt:   share.IssuedAt,
		ExpiresAt:  share.ExpiresAt,
		ShareURL:   s.shareURL(share.Token),
	}
}

// CreateShare issues a fresh token for the booking, retiring any previous live
// one first. Issuing is the only path that creates tokens, so the one-live-
// token-per-booking invariant holds by construction.
func (s *ShareService) CreateShare(ctx context.Context, bookingID string, categories []string, ttlSeconds int64) (*ShareView, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	normalized, err := normalizeCategories(categories)
	if err != nil {
		return nil, err
	}
	if ttlSeconds <= 0 {
		ttlSeconds = s.defaultTTL
	}
	now := s.now().Unix()
	if err := s.shares.RevokeByBooking(ctx, bookingID, now); err != nil {
		return nil, err
	}
	share := &model.ShareToken{
		ID:         newID(),
		BookingID:  bookingID,
		Token:      newShareToken(),
		Categories: normalized,
		State:      repo.ShareStateActive,
		IssuedAt:   now,
		ExpiresAt:  now + ttlSeconds,
		Mtime:      now,
	}
	if err := s.shares.Create(ctx, share); err != nil {
		return nil, err
	}
	return s.view(share), nil
}

// GetActiveShare returns the booking's live token, or nil when none exists.
// "No token" is a normal answer, not an error; an expired-but-unswept token
// counts as none.
func (s *ShareService) GetActiveShare(ctx context.Context, bookingID string) (*ShareView, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	share, err := s.shares.GetActiveByBooking(ctx, bookingID)
	if appErr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.now().Unix() >= share.ExpiresAt {
		return nil, nil
	}
	return s.view(share), nil
}

func (s *ShareService) RevokeShare(ctx context.Context, bookingID string) error {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return err
	}
	return s.shares.RevokeByBooking(ctx, bookingID, s.now().Unix())
}

// resolveToken validates a bare token string. Unknown, revoked and expired
// tokens all collapse into ErrForbidden: the viewer only learns that the link
// no longer works, and the client can tell this terminal class apart from
// transient failures.
func (s *ShareService) resolveToken(ctx context.Context, token string) (*model.ShareToken, error) {
	if token == "" {
		return nil, appErr.ErrForbidden
	}
	if _, ok := s.rejected.Get(token); ok {
		return nil, appErr.ErrForbidden
	}
	share, err := s.shares.GetByToken(ctx, token)
	if appErr.IsNotFound(err) {
		s.rejected.Add(token, struct{}{})
		return nil, appErr.ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if share.State != repo.ShareStateActive || s.now().Unix() >= share.ExpiresAt {
		s.rejected.Add(token, struct{}{})
		return nil, appErr.ErrForbidden
	}
	return share, nil
}

// ResolveShare turns a token into the viewer payload. It is read-only and
// repeatable: resolving neither consumes nor extends the token, and the
// document list is the booking's live set, not a snapshot.
func (s *ShareService) ResolveShare(ctx context.Context, token string) (*ResolvedShare, error) {
	share, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, share.BookingID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByBooking(ctx, share.BookingID)
	if err != nil {
		return nil, err
	}
	resolved := &ResolvedShare{
		Booking:           ResolvedBooking{ID: booking.ID, Reference: booking.Reference},
		Documents:         toSharedDocuments(filterByCategories(docs, share.Categories)),
		AllowedCategories: share.Categories,
		ExpiresAt:         time.Unix(share.ExpiresAt, 0).UTC().Format(time.RFC3339),
	}
	if strings.TrimSpace(booking.Notes) != "" {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(booking.Notes), &buf); err == nil {
			resolved.ItineraryHTML = buf.String()
		}
	}
	return resolved, nil
}

// OpenSharedDocument authorizes and opens one document under a token. The
// document must belong to the token's booking and carry an allowed category;
// anything else reads as not found so the token reveals nothing outside its
// scope.
func (s *ShareService) OpenSharedDocument(ctx context.Context, token, documentID string) (*DownloadFile, error) {
	share, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.BookingID != share.BookingID {
		return nil, appErr.ErrNotFound
	}
	if len(filterByCategories([]model.BookingDocument{*doc}, share.Categories)) == 0 {
		return nil, appErr.ErrNotFound
	}
	return openStored(ctx, s.store, doc)
}

// BuildArchive packs every document visible under the token into a zip.
// Building completes before any byte reaches the viewer, so a failed fetch
// surfaces as a plain error instead of a truncated download. Filenames
// colliding inside the archive get a numeric suffix.
func (s *ShareService) BuildArchive(ctx context.Context, token string) ([]byte, string, error) {
	share, err := s.resolveToken(ctx, token)
	if err != nil {
		return nil, "", err
	}
	booking, err := s.bookings.GetByID(ctx, share.BookingID)
	if err != nil {
		return nil, "", err
	}
	docs, err := s.documents.ListByBooking(ctx, share.BookingID)
	if err != nil {
		return nil, "", err
	}
	visible := filterByCategories(docs, share.Categories)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	used := make(map[string]int, len(visible))
	for _, doc := range visible {
		body, err := s.store.Open(ctx, doc.FileKey)
		if err != nil {
			return nil, "", err
		}
		entry, err := zw.Create(archiveEntryName(used, doc.Filename))
		if err != nil {
			_ = body.Close()
			return nil, "", err
		}
		if _, err := io.Copy(entry, body); err != nil {
			_ = body.Close()
			return nil, "", err
		}
		_ = body.Close()
	}
	if err := zw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("%s-documents.zip", booking.Reference), nil
}

func archiveEntryName(used map[string]int, filename string) string {
	if filename == "" {
		filename = "document"
	}
	count := used[filename]
	used[filename] = count + 1
	if count == 0 {
		return filename
	}
	ext := ""
	base := filename
	if idx := strings.LastIndex(filename, "."); idx > 0 {
		base = filename[:idx]
		ext = filename[idx:]
	}
	return fmt.Sprintf("%s (%d)%s", base, count, ext)
}

// SweepExpired retires long-expired live tokens. Called from the scheduler.
func (s *ShareService) SweepExpired(ctx context.Context) (int64, error) {
	return s.shares.RevokeExpired(ctx, s.now().Unix())
}
