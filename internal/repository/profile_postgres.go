package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"safenetwork-api/internal/model"
	"safenetwork-api/pkg/uid"
)

// PostgresProfileRepository implements ProfileRepository using PostgreSQL.
type PostgresProfileRepository struct {
	db *sqlx.DB
}

// NewPostgresProfileRepository creates a new profile repository.
func NewPostgresProfileRepository(db *sqlx.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

// GetBySubject returns the profile for the external subject id, or nil.
func (r *PostgresProfileRepository) GetBySubject(ctx context.Context, subject string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM profiles WHERE auth_subject = $1`, subject)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// GetByUsername returns the profile for a username, or nil.
func (r *PostgresProfileRepository) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p, `SELECT * FROM profiles WHERE username = $1`, username)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}
	return &p, nil
}

// Create inserts a new profile and returns the stored row.
func (r *PostgresProfileRepository) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	if p.ID == "" {
		p.ID = uid.New()
	}
	var created model.Profile
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO profiles (id, auth_subject, email, username, display_name, avatar_url, role, loyalty_tier, profile_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *`,
		p.ID, p.AuthSubject, p.Email, p.Username, p.DisplayName, p.AvatarURL, p.Role, p.LoyaltyTier, p.ProfilePublic)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateFields applies a whitelisted update map and returns the new row.
func (r *PostgresProfileRepository) UpdateFields(ctx context.Context, subject string, updates map[string]interface{}) (*model.Profile, error) {
	set, args := buildSet(updates, 2)
	query := fmt.Sprintf(`UPDATE profiles SET %s, updated_at = NOW() WHERE auth_subject = $1 RETURNING *`, set)

	var p model.Profile
	err := r.db.GetContext(ctx, &p, query, append([]interface{}{subject}, args...)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &p, nil
}

// List returns profiles for the admin panel, newest first, with optional
// search over username/email/display_name and an optional role filter.
func (r *PostgresProfileRepository) List(ctx context.Context, search, roleFilter string, limit int) ([]model.Profile, error) {
	query := `SELECT * FROM profiles WHERE 1=1`
	args := []interface{}{}

	if search != "" {
		args = append(args, "%"+search+"%")
		n := len(args)
		query += fmt.Sprintf(` AND (username ILIKE $%d OR email ILIKE $%d OR display_name ILIKE $%d)`, n, n, n)
	}
	if roleFilter != "" {
		args = append(args, roleFilter)
		query += fmt.Sprintf(` AND role = $%d`, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	profiles := []model.Profile{}
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// GetSummaries returns the public summaries for a set of subjects.
func (r *PostgresProfileRepository) GetSummaries(ctx context.Context, subjects []string, publicOnly bool) ([]model.ProfileSummary, error) {
	if len(subjects) == 0 {
		return []model.ProfileSummary{}, nil
	}

	query := `SELECT auth_subject, username, display_name, avatar_url, role
		FROM profiles WHERE auth_subject = ANY($1)`
	if publicOnly {
		query += ` AND profile_public = TRUE`
	}

	summaries := []model.ProfileSummary{}
	if err := r.db.SelectContext(ctx, &summaries, query, pq.Array(subjects)); err != nil {
		return nil, fmt.Errorf("failed to get profile summaries: %w", err)
	}
	return summaries, nil
}

var _ ProfileRepository = (*PostgresProfileRepository)(nil)
