package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/didi/gendry/builder"

	"github.com/wildtrail/safaridesk/internal/model"
	"github.com/wildtrail/safaridesk/internal/pkg/dbutil"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
)

const (
	ShareStateActive  = 1
	ShareStateRevoked = 2
)

type ShareRepo struct {
	db *sql.DB
}

func NewShareRepo(db *sql.DB) *ShareRepo {
	return &ShareRepo{db: db}
}

var shareColumns = []string{"id", "booking_id", "token", "categories", "state", "issued_at", "expires_at", "mtime"}

func joinCategories(categories []string) string {
	return strings.Join(categories, ",")
}

func splitCategories(raw string) []string {
	if raw == "" {
		return []string{}
	}
	return strings.Split(raw, ",")
}

func scanShare(rows *sql.Rows) (*model.ShareToken, error) {
	var share model.ShareToken
	var categories string
	if err := rows.Scan(&share.ID, &share.BookingID, &share.Token, &categories, &share.State, &share.IssuedAt, &share.ExpiresAt, &share.Mtime); err != nil {
		return nil, err
	}
	share.Categories = splitCategories(categories)
	return &share, nil
}

func (r *ShareRepo) Create(ctx context.Context, share *model.ShareToken) error {
	data := map[string]interface{}{
		"id":         share.ID,
		"booking_id": share.BookingID,
		"token":      share.Token,
		"categories": joinCategories(share.Categories),
		"state":      share.State,
		"issued_at":  share.IssuedAt,
		"expires_at": share.ExpiresAt,
		"mtime":      share.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("share_tokens", []map[string]interface{}{data})
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

// RevokeByBooking retires every live token of a booking. Creating a new token
// always goes through here first, which keeps at most one live token per booking.
func (r *ShareRepo) RevokeByBooking(ctx context.Context, bookingID string, mtime int64) error {
	where := map[string]interface{}{"booking_id": bookingID, "state": ShareStateActive}
	update := map[string]interface{}{"state": ShareStateRevoked, "mtime": mtime}
	sqlStr, args, err := builder.BuildUpdate("share_tokens", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ShareRepo) GetByToken(ctx context.Context, token string) (*model.ShareToken, error) {
	return r.getOne(ctx, map[string]interface{}{"token": token})
}

func (r *ShareRepo) GetActiveByBooking(ctx context.Context, bookingID string) (*model.ShareToken, error) {
	return r.getOne(ctx, map[string]interface{}{"booking_id": bookingID, "state": ShareStateActive})
}

func (r *ShareRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.ShareToken, error) {
	sqlStr, args, err := builder.BuildSelect("share_tokens", where, shareColumns)
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
	return scanShare(rows)
}

// RevokeExpired flips long-expired active rows to revoked. Expiry is always
// enforced at resolve time; this only keeps the table from accumulating stale
// live rows.
func (r *ShareRepo) RevokeExpired(ctx context.Context, now int64) (int64, error) {
	sqlStr := `UPDATE share_tokens SET state = ?, mtime = ? WHERE state = ? AND expires_at <= ?`
	args := []interface{}{ShareStateRevoked, now, ShareStateActive, now}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
