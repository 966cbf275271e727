package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/wildtrail/safaridesk/internal/model"
	"github.com/wildtrail/safaridesk/internal/pkg/dbutil"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
)

type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

var bookingColumns = []string{"id", "agent_id", "reference", "client_name", "start_date", "end_date", "pax", "status", "notes", "ctime", "mtime"}

func scanBooking(rows *sql.Rows) (*model.Booking, error) {
	var b model.Booking
	if err := rows.Scan(&b.ID, &b.AgentID, &b.Reference, &b.ClientName, &b.StartDate, &b.EndDate, &b.Pax, &b.Status, &b.Notes, &b.Ctime, &b.Mtime); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	data := map[string]interface{}{
		"id":          booking.ID,
		"agent_id":    booking.AgentID,
		"reference":   booking.Reference,
		"client_name": booking.ClientName,
		"start_date":  booking.StartDate,
		"end_date":    booking.EndDate,
		"pax":         booking.Pax,
		"status":      booking.Status,
		"notes":       booking.Notes,
		"ctime":       booking.Ctime,
		"mtime":       booking.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("bookings", []map[string]interface{}{data})
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

func (r *BookingRepo) Update(ctx context.Context, booking *model.Booking) error {
	where := map[string]interface{}{"id": booking.ID}
	update := map[string]interface{}{
		"agent_id":    booking.AgentID,
		"reference":   booking.Reference,
		"client_name": booking.ClientName,
		"start_date":  booking.StartDate,
		"end_date":    booking.EndDate,
		"pax":         booking.Pax,
		"status":      booking.Status,
		"notes":       booking.Notes,
		"mtime":       booking.Mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("bookings", where, update)
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

func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("bookings", map[string]interface{}{"id": id})
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

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	sqlStr, args, err := builder.BuildSelect("bookings", map[string]interface{}{"id": id}, bookingColumns)
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
	return scanBooking(rows)
}

type BookingFilter struct {
	AgentID string
	Status  string
	Query   string
	Limit   uint
	Offset  uint
}

func (r *BookingRepo) List(ctx context.Context, filter BookingFilter) ([]model.Booking, error) {
	sqlStr := `
		SELECT id, agent_id, reference, client_name, start_date, end_date, pax, status, notes, ctime, mtime
		FROM bookings
		WHERE 1 = 1
	`
	args := []interface{}{}
	if filter.AgentID != "" {
		sqlStr += ` AND agent_id = ?`
		args = append(args, filter.AgentID)
	}
	if filter.Status != "" {
		sqlStr += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Query != "" {
		sqlStr += ` AND (reference ILIKE ? OR client_name ILIKE ?)`
		like := "%" + filter.Query + "%"
		args = append(args, like, like)
	}
	sqlStr += ` ORDER BY mtime DESC`
	if filter.Limit > 0 {
		sqlStr += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.Booking, 0)
	for rows.Next() {
		item, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *BookingRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	sqlStr := `SELECT status, COUNT(*) FROM bookings GROUP BY status`
	rows, err := r.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *BookingRepo) ListUpcoming(ctx context.Context, fromDate string, limit uint) ([]model.Booking, error) {
	sqlStr := `
		SELECT id, agent_id, reference, client_name, start_date, end_date, pax, status, notes, ctime, mtime
		FROM bookings
		WHERE start_date >= ? AND status = ?
		ORDER BY start_date ASC
		LIMIT ? OFFSET ?
	`
	args := []interface{}{fromDate, model.BookingStatusConfirmed, limit, uint(0)}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.Booking, 0)
	for rows.Next() {
		item, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
