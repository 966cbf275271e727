package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/wildtrail/safaridesk/internal/model"
	"github.com/wildtrail/safaridesk/internal/pkg/dbutil"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
)

type AgentRepo struct {
	db *sql.DB
}

func NewAgentRepo(db *sql.DB) *AgentRepo {
	return &AgentRepo{db: db}
}

var agentColumns = []string{"id", "name", "email", "phone", "country", "ctime", "mtime"}

func (r *AgentRepo) Create(ctx context.Context, agent *model.Agent) error {
	data := map[string]interface{}{
		"id":      agent.ID,
		"name":    agent.Name,
		"email":   agent.Email,
		"phone":   agent.Phone,
		"country": agent.Country,
		"ctime":   agent.Ctime,
		"mtime":   agent.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("agents", []map[string]interface{}{data})
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

func (r *AgentRepo) Update(ctx context.Context, agent *model.Agent) error {
	where := map[string]interface{}{"id": agent.ID}
	update := map[string]interface{}{
		"name":    agent.Name,
		"email":   agent.Email,
		"phone":   agent.Phone,
		"country": agent.Country,
		"mtime":   agent.Mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("agents", where, update)
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

func (r *AgentRepo) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := builder.BuildDelete("agents", map[string]interface{}{"id": id})
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

func (r *AgentRepo) GetByID(ctx context.Context, id string) (*model.Agent, error) {
	sqlStr, args, err := builder.BuildSelect("agents", map[string]interface{}{"id": id}, agentColumns)
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
	var agent model.Agent
	if err := rows.Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Phone, &agent.Country, &agent.Ctime, &agent.Mtime); err != nil {
		return nil, err
	}
	return &agent, nil
}

func (r *AgentRepo) List(ctx context.Context, query string, limit, offset uint) ([]model.Agent, error) {
	sqlStr := `
		SELECT id, name, email, phone, country, ctime, mtime
		FROM agents
	`
	args := []interface{}{}
	if query != "" {
		sqlStr += ` WHERE (name ILIKE ? OR email ILIKE ? OR country ILIKE ?)`
		like := "%" + query + "%"
		args = append(args, like, like, like)
	}
	sqlStr += ` ORDER BY name ASC`
	if limit > 0 {
		sqlStr += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.Agent, 0)
	for rows.Next() {
		var item model.Agent
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.Phone, &item.Country, &item.Ctime, &item.Mtime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
