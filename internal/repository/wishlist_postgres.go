package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"safenetwork-api/internal/model"
	"safenetwork-api/pkg/uid"
)

// PostgresWishlistRepository implements WishlistRepository using PostgreSQL.
type PostgresWishlistRepository struct {
	db *sqlx.DB
}

// NewPostgresWishlistRepository creates a new wishlist repository.
func NewPostgresWishlistRepository(db *sqlx.DB) *PostgresWishlistRepository {
	return &PostgresWishlistRepository{db: db}
}

// ListByOwner returns the owner's wishlist, newest first.
func (r *PostgresWishlistRepository) ListByOwner(ctx context.Context, subject string, limit int) ([]model.WishlistItem, error) {
	items := []model.WishlistItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM wishlist_items WHERE auth_subject = $1
		ORDER BY created_at DESC LIMIT $2`, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}

// CountByOwner returns the owner's current item count.
func (r *PostgresWishlistRepository) CountByOwner(ctx context.Context, subject string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM wishlist_items WHERE auth_subject = $1`, subject)
	if err != nil {
		return 0, fmt.Errorf("failed to count wishlist: %w", err)
	}
	return count, nil
}

// Insert adds a wishlist item and returns the stored row.
func (r *PostgresWishlistRepository) Insert(ctx context.Context, item *model.WishlistItem) (*model.WishlistItem, error) {
	if item.ID == "" {
		item.ID = uid.New()
	}
	var created model.WishlistItem
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO wishlist_items (id, auth_subject, category, description, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		item.ID, item.AuthSubject, item.Category, item.Description, item.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to insert wishlist item: %w", err)
	}
	return &created, nil
}

// GetByID returns a wishlist item, or nil.
func (r *PostgresWishlistRepository) GetByID(ctx context.Context, id string) (*model.WishlistItem, error) {
	var item model.WishlistItem
	err := r.db.GetContext(ctx, &item, `SELECT * FROM wishlist_items WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	return &item, nil
}

// UpdateFields applies a whitelisted update map scoped to the owner.
func (r *PostgresWishlistRepository) UpdateFields(ctx context.Context, id, subject string, updates map[string]interface{}) (*model.WishlistItem, error) {
	set, args := buildSet(updates, 3)
	query := fmt.Sprintf(`UPDATE wishlist_items SET %s WHERE id = $1 AND auth_subject = $2 RETURNING *`, set)

	var item model.WishlistItem
	err := r.db.GetContext(ctx, &item, query, append([]interface{}{id, subject}, args...)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update wishlist item: %w", err)
	}
	return &item, nil
}

// Delete removes an item scoped to the owner.
func (r *PostgresWishlistRepository) Delete(ctx context.Context, id, subject string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM wishlist_items WHERE id = $1 AND auth_subject = $2`, id, subject)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

// AdminList returns wishlist items across all owners for the admin panel.
func (r *PostgresWishlistRepository) AdminList(ctx context.Context, category, search string, limit int) ([]model.WishlistItem, error) {
	query := `SELECT * FROM wishlist_items WHERE 1=1`
	args := []interface{}{}

	if category != "" {
		args = append(args, category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(` AND description ILIKE $%d`, len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	items := []model.WishlistItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to admin-list wishlists: %w", err)
	}
	return items, nil
}

var _ WishlistRepository = (*PostgresWishlistRepository)(nil)
