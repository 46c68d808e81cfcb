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

// PostgresCollectionRepository implements CollectionRepository using PostgreSQL.
type PostgresCollectionRepository struct {
	db *sqlx.DB
}

// NewPostgresCollectionRepository creates a new collection repository.
func NewPostgresCollectionRepository(db *sqlx.DB) *PostgresCollectionRepository {
	return &PostgresCollectionRepository{db: db}
}

// ListByOwner returns the owner's collection, newest first.
func (r *PostgresCollectionRepository) ListByOwner(ctx context.Context, subject string, limit int) ([]model.CollectionItem, error) {
	items := []model.CollectionItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM collection_items WHERE auth_subject = $1
		ORDER BY created_at DESC LIMIT $2`, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	return items, nil
}

// CountByOwner returns the owner's current item count.
func (r *PostgresCollectionRepository) CountByOwner(ctx context.Context, subject string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM collection_items WHERE auth_subject = $1`, subject)
	if err != nil {
		return 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return count, nil
}

// Insert adds a collection item and returns the stored row.
func (r *PostgresCollectionRepository) Insert(ctx context.Context, item *model.CollectionItem) (*model.CollectionItem, error) {
	if item.ID == "" {
		item.ID = uid.New()
	}
	var created model.CollectionItem
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO collection_items (id, auth_subject, category, description, details, photo_urls)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`,
		item.ID, item.AuthSubject, item.Category, item.Description, item.Details, pq.StringArray{})
	if err != nil {
		return nil, fmt.Errorf("failed to insert collection item: %w", err)
	}
	return &created, nil
}

// GetByID returns a collection item, or nil.
func (r *PostgresCollectionRepository) GetByID(ctx context.Context, id string) (*model.CollectionItem, error) {
	var item model.CollectionItem
	err := r.db.GetContext(ctx, &item, `SELECT * FROM collection_items WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection item: %w", err)
	}
	return &item, nil
}

// UpdateFields applies a whitelisted update map scoped to the owner.
func (r *PostgresCollectionRepository) UpdateFields(ctx context.Context, id, subject string, updates map[string]interface{}) (*model.CollectionItem, error) {
	set, args := buildSet(updates, 3)
	query := fmt.Sprintf(`UPDATE collection_items SET %s WHERE id = $1 AND auth_subject = $2 RETURNING *`, set)

	var item model.CollectionItem
	err := r.db.GetContext(ctx, &item, query, append([]interface{}{id, subject}, args...)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update collection item: %w", err)
	}
	return &item, nil
}

// SetPhotos replaces the item's photo URL list.
func (r *PostgresCollectionRepository) SetPhotos(ctx context.Context, id string, urls []string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE collection_items SET photo_urls = $2 WHERE id = $1`,
		id, pq.StringArray(urls))
	if err != nil {
		return fmt.Errorf("failed to set collection photos: %w", err)
	}
	return nil
}

// Delete removes an item scoped to the owner.
func (r *PostgresCollectionRepository) Delete(ctx context.Context, id, subject string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM collection_items WHERE id = $1 AND auth_subject = $2`, id, subject)
	if err != nil {
		return fmt.Errorf("failed to delete collection item: %w", err)
	}
	return nil
}

// AdminList returns collection items across all owners for the admin panel.
func (r *PostgresCollectionRepository) AdminList(ctx context.Context, category, search string, limit int) ([]model.CollectionItem, error) {
	query := `SELECT * FROM collection_items WHERE 1=1`
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

	items := []model.CollectionItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to admin-list collections: %w", err)
	}
	return items, nil
}

var _ CollectionRepository = (*PostgresCollectionRepository)(nil)
