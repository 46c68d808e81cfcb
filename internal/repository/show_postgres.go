package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"safenetwork-api/internal/model"
	"safenetwork-api/pkg/uid"
)

// PostgresHostRepository implements HostRepository using PostgreSQL.
type PostgresHostRepository struct {
	db *sqlx.DB
}

// NewPostgresHostRepository creates a new host repository.
func NewPostgresHostRepository(db *sqlx.DB) *PostgresHostRepository {
	return &PostgresHostRepository{db: db}
}

// List returns all hosts ordered by name.
func (r *PostgresHostRepository) List(ctx context.Context) ([]model.Host, error) {
	hosts := []model.Host{}
	if err := r.db.SelectContext(ctx, &hosts, `SELECT * FROM hosts ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list hosts: %w", err)
	}
	return hosts, nil
}

// GetBySlug returns the host with the given slug, or nil.
func (r *PostgresHostRepository) GetBySlug(ctx context.Context, slug string) (*model.Host, error) {
	var h model.Host
	err := r.db.GetContext(ctx, &h, `SELECT * FROM hosts WHERE slug = $1`, slug)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get host: %w", err)
	}
	return &h, nil
}

var _ HostRepository = (*PostgresHostRepository)(nil)

// PostgresShowRepository implements ShowRepository using PostgreSQL.
type PostgresShowRepository struct {
	db *sqlx.DB
}

// NewPostgresShowRepository creates a new scheduled-show repository.
func NewPostgresShowRepository(db *sqlx.DB) *PostgresShowRepository {
	return &PostgresShowRepository{db: db}
}

// List returns shows joined with host info, soonest first. A nil since
// means no time window.
func (r *PostgresShowRepository) List(ctx context.Context, showType, hostSlug string, since *time.Time, limit int) ([]model.ScheduledShowWithHost, error) {
	query := `
		SELECT s.*,
			COALESCE(h.name, '') AS host_name,
			COALESCE(NULLIF(h.whatnot_handle, ''), s.host_slug) AS host_handle,
			COALESCE(h.avatar_url, '') AS host_avatar
		FROM scheduled_shows s
		LEFT JOIN hosts h ON h.slug = s.host_slug
		WHERE 1=1`
	args := []interface{}{}

	if showType != "" {
		args = append(args, showType)
		query += fmt.Sprintf(` AND s.show_type = $%d`, len(args))
	}
	if hostSlug != "" {
		args = append(args, hostSlug)
		query += fmt.Sprintf(` AND s.host_slug = $%d`, len(args))
	}
	if since != nil {
		args = append(args, *since)
		query += fmt.Sprintf(` AND s.scheduled_at >= $%d`, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY s.scheduled_at ASC LIMIT $%d`, len(args))

	shows := []model.ScheduledShowWithHost{}
	if err := r.db.SelectContext(ctx, &shows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list shows: %w", err)
	}
	return shows, nil
}

// Insert adds a scheduled show and returns the stored row.
func (r *PostgresShowRepository) Insert(ctx context.Context, show *model.ScheduledShow) (*model.ScheduledShow, error) {
	if show.ID == "" {
		show.ID = uid.New()
	}
	var created model.ScheduledShow
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO scheduled_shows
			(id, host_slug, show_type, title, description, scheduled_at, duration_minutes, status, whatnot_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *`,
		show.ID, show.HostSlug, show.ShowType, show.Title, show.Description,
		show.ScheduledAt, show.DurationMinutes, show.Status, show.WhatnotURL, show.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to insert show: %w", err)
	}
	return &created, nil
}

// GetByID returns a show, or nil.
func (r *PostgresShowRepository) GetByID(ctx context.Context, id string) (*model.ScheduledShow, error) {
	var show model.ScheduledShow
	err := r.db.GetContext(ctx, &show, `SELECT * FROM scheduled_shows WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get show: %w", err)
	}
	return &show, nil
}

// UpdateFields applies a whitelisted update map and returns the new row.
func (r *PostgresShowRepository) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.ScheduledShow, error) {
	set, args := buildSet(updates, 2)
	query := fmt.Sprintf(`UPDATE scheduled_shows SET %s WHERE id = $1 RETURNING *`, set)

	var show model.ScheduledShow
	err := r.db.GetContext(ctx, &show, query, append([]interface{}{id}, args...)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update show: %w", err)
	}
	return &show, nil
}

// Delete removes a show.
func (r *PostgresShowRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_shows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete show: %w", err)
	}
	return nil
}

var _ ShowRepository = (*PostgresShowRepository)(nil)
