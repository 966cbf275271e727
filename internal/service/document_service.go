package service

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/wildtrail/safaridesk/internal/filestore"
	"github.com/wildtrail/safaridesk/internal/model"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
	"github.com/wildtrail/safaridesk/internal/pkg/timeutil"
	"github.com/wildtrail/safaridesk/internal/repo"
)

type DocumentService struct {
	documents *repo.DocumentRepo
	bookings  *repo.BookingRepo
	store     filestore.Store
}

func NewDocumentService(documents *repo.DocumentRepo, bookings *repo.BookingRepo, store filestore.Store) *DocumentService {
	return &DocumentService{documents: documents, bookings: bookings, store: store}
}

type DocumentUploadInput struct {
	BookingID   string
	Filename    string
	Category    string
	ContentType string
	Size        int64
	Body        filestore.ReadSeekCloser
}

func (s *DocumentService) Upload(ctx context.Context, input DocumentUploadInput) (*model.BookingDocument, error) {
	if input.Filename == "" || input.Size <= 0 || input.Body == nil {
		return nil, appErr.ErrInvalid
	}
	category := strings.TrimSpace(strings.ToLower(input.Category))
	if category == "" {
		category = model.CategoryOther
	}
	if !model.IsValidCategory(category) {
		return nil, appErr.ErrInvalid
	}
	if _, err := s.bookings.GetByID(ctx, input.BookingID); err != nil {
		return nil, err
	}
	key := buildFileKey(input.BookingID, input.Filename)
	if err := s.store.Save(ctx, key, input.Body, input.Size); err != nil {
		return nil, err
	}
	doc := &model.BookingDocument{
		ID:          newID(),
		BookingID:   input.BookingID,
		FileKey:     key,
		Filename:    filepath.Base(input.Filename),
		Category:    category,
		ContentType: input.ContentType,
		Size:        input.Size,
		Ctime:       timeutil.NowUnix(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) ListByBooking(ctx context.Context, bookingID string) ([]model.BookingDocument, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.documents.ListByBooking(ctx, bookingID)
}

func (s *DocumentService) ReassignCategory(ctx context.Context, documentID, category string) (*model.BookingDocument, error) {
	category = strings.TrimSpace(strings.ToLower(category))
	if !model.IsValidCategory(category) {
		return nil, appErr.ErrInvalid
	}
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := s.documents.UpdateCategory(ctx, documentID, category); err != nil {
		return nil, err
	}
	doc.Category = category
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.documents.GetByID(ctx, documentID); err != nil {
		return err
	}
	return s.documents.Delete(ctx, documentID)
}

// DownloadFile is the boundary union for document retrieval: either the store
// serves the object itself (URL set) or the caller streams Body with the given
// filename and content type.
type DownloadFile struct {
	URL         string
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

func (s *DocumentService) OpenDocument(ctx context.Context, documentID string) (*DownloadFile, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return openStored(ctx, s.store, doc)
}

func openStored(ctx context.Context, store filestore.Store, doc *model.BookingDocument) (*DownloadFile, error) {
	if objectURL, ok := store.URL(doc.FileKey); ok {
		return &DownloadFile{URL: objectURL, Filename: doc.Filename, ContentType: doc.ContentType}, nil
	}
	body, err := store.Open(ctx, doc.FileKey)
	if err != nil {
		return nil, err
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &DownloadFile{Body: body, Filename: doc.Filename, ContentType: contentType}, nil
}

func buildFileKey(bookingID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := randomHex(8)
	if bookingID != "" {
		base = bookingID + "_" + base
	}
	if ext == "" {
		return base
	}
	return base + ext
}
