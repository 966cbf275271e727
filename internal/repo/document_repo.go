package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/wildtrail/safaridesk/internal/model"
	"github.com/wildtrail/safaridesk/internal/pkg/dbutil"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
)

type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

var documentColumns = []string{"id", "booking_id", "file_key", "filename", "category", "content_type", "size", "ctime"}

func scanDocument(rows *sql.Rows) (*model.BookingDocument, error) {
	var d model.BookingDocument
	if err := rows.Scan(&d.ID, &d.BookingID, &d.FileKey, &d.Filename, &d.Category, &d.ContentType, &d.Size, &d.Ctime); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DocumentRepo) Create(ctx context.Context, doc *model.BookingDocument) error {
	data := map[string]interface{}{
		"id":           doc.ID,
		"booking_id":   doc.BookingID,
		"file_key":     doc.FileKey,
		"filename":     doc.Filename,
		"category":     doc.Category,
		"content_type": doc.ContentType,
		"size":         doc.Size,
		"ctime":        doc.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("booking_documents", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*model.BookingDocument, error) {
	sqlStr, args, err := builder.BuildSelect("booking_documents", map[string]interface{}{"id": id}, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	return scanDocument(rows)
}

func (r *DocumentRepo) ListByBooking(ctx context.Context, bookingID string) ([]model.BookingDocument, error) {
	sqlStr, args, err := builder.BuildSelect("booking_documents",
		map[string]interface{}{"booking_id": bookingID, "_orderby": "ctime desc"}, documentColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.BookingDocument, 0)
	for rows.Next() {
		item, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateCategory is the only mutation a stored document supports.
func (r *DocumentRepo) UpdateCategory(ctx context.Context, id, category string) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"category": category}
	sqlStr, args, err := builder.BuildUpdate("booking_documents", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("booking_documents", map[string]interface{}{"id": id})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
