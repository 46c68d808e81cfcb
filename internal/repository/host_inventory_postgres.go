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

// PostgresHostInventoryRepository implements HostInventoryRepository using
// PostgreSQL.
type PostgresHostInventoryRepository struct {
	db *sqlx.DB
}

// NewPostgresHostInventoryRepository creates a new host inventory repository.
func NewPostgresHostInventoryRepository(db *sqlx.DB) *PostgresHostInventoryRepository {
	return &PostgresHostInventoryRepository{db: db}
}

// ListAll returns every host's inventory, newest first. Admin view.
func (r *PostgresHostInventoryRepository) ListAll(ctx context.Context) ([]model.HostInventoryItem, error) {
	items := []model.HostInventoryItem{}
	err := r.db.SelectContext(ctx, &items, `SELECT * FROM host_inventory ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list host inventory: %w", err)
	}
	return items, nil
}

// ListByHost returns one host's inventory, newest first.
func (r *PostgresHostInventoryRepository) ListByHost(ctx context.Context, hostSlug string) ([]model.HostInventoryItem, error) {
	items := []model.HostInventoryItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM host_inventory WHERE host_slug = $1 ORDER BY created_at DESC`, hostSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list host inventory: %w", err)
	}
	return items, nil
}

// Insert adds an inventory item and returns the stored row.
func (r *PostgresHostInventoryRepository) Insert(ctx context.Context, item *model.HostInventoryItem) (*model.HostInventoryItem, error) {
	if item.ID == "" {
		item.ID = uid.New()
	}
	var created model.HostInventoryItem
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO host_inventory
			(id, host_slug, auth_subject, category, title, description, details, photo_urls, price_range, quantity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *`,
		item.ID, item.HostSlug, item.AuthSubject, item.Category, item.Title, item.Description,
		item.Details, pq.StringArray{}, item.PriceRange, item.Quantity, item.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to insert inventory item: %w", err)
	}
	return &created, nil
}

// GetByID returns an inventory item, or nil.
func (r *PostgresHostInventoryRepository) GetByID(ctx context.Context, id string) (*model.HostInventoryItem, error) {
	var item model.HostInventoryItem
	err := r.db.GetContext(ctx, &item, `SELECT * FROM host_inventory WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}
	return &item, nil
}

// UpdateFields applies a whitelisted update map. Ownership is checked by
// the service layer; admins may update any row.
func (r *PostgresHostInventoryRepository) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.HostInventoryItem, error) {
	set, args := buildSet(updates, 2)
	query := fmt.Sprintf(`UPDATE host_inventory SET %s WHERE id = $1 RETURNING *`, set)

	var item model.HostInventoryItem
	err := r.db.GetContext(ctx, &item, query, append([]interface{}{id}, args...)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return &item, nil
}

// SetPhotos replaces the item's photo URL list.
func (r *PostgresHostInventoryRepository) SetPhotos(ctx context.Context, id string, urls []string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE host_inventory SET photo_urls = $2 WHERE id = $1`,
		id, pq.StringArray(urls))
	if err != nil {
		return fmt.Errorf("failed to set inventory photos: %w", err)
	}
	return nil
}

// Delete removes an inventory item.
func (r *PostgresHostInventoryRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM host_inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	return nil
}

var _ HostInventoryRepository = (*PostgresHostInventoryRepository)(nil)
