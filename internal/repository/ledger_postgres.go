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

// PostgresLedgerRepository implements LedgerRepository using PostgreSQL.
type PostgresLedgerRepository struct {
	db *sqlx.DB
}

// NewPostgresLedgerRepository creates a new admin inventory ledger repository.
func NewPostgresLedgerRepository(db *sqlx.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// List returns ledger items limited to the given categories, newest first.
// An empty category set returns nothing: access fails closed.
func (r *PostgresLedgerRepository) List(ctx context.Context, categories []string, limit int) ([]model.AdminInventoryItem, error) {
	if len(categories) == 0 {
		return []model.AdminInventoryItem{}, nil
	}
	items := []model.AdminInventoryItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM admin_inventory WHERE category = ANY($1)
		ORDER BY created_at DESC LIMIT $2`, pq.Array(categories), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	return items, nil
}

// Insert adds a ledger item and returns the stored row.
func (r *PostgresLedgerRepository) Insert(ctx context.Context, item *model.AdminInventoryItem) (*model.AdminInventoryItem, error) {
	if item.ID == "" {
		item.ID = uid.New()
	}
	var created model.AdminInventoryItem
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO admin_inventory
			(id, name, category, status, quantity, quantity_sold, purchase_price, sale_price, details, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING *`,
		item.ID, item.Name, item.Category, item.Status, item.Quantity, item.QuantitySold,
		item.PurchasePrice, item.SalePrice, item.Details, item.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to insert ledger item: %w", err)
	}
	return &created, nil
}

// InsertBulk adds several ledger items in one transaction, all-or-nothing.
func (r *PostgresLedgerRepository) InsertBulk(ctx context.Context, items []*model.AdminInventoryItem) ([]model.AdminInventoryItem, error) {
	if len(items) == 0 {
		return []model.AdminInventoryItem{}, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created := make([]model.AdminInventoryItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			item.ID = uid.New()
		}
		var row model.AdminInventoryItem
		err := tx.GetContext(ctx, &row, `
			INSERT INTO admin_inventory
				(id, name, category, status, quantity, quantity_sold, purchase_price, sale_price, details, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING *`,
			item.ID, item.Name, item.Category, item.Status, item.Quantity, item.QuantitySold,
			item.PurchasePrice, item.SalePrice, item.Details, item.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to bulk insert ledger item %q: %w", item.Name, err)
		}
		created = append(created, row)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ledger bulk insert: %w", err)
	}
	return created, nil
}

// GetByID returns a ledger item, or nil.
func (r *PostgresLedgerRepository) GetByID(ctx context.Context, id string) (*model.AdminInventoryItem, error) {
	var item model.AdminInventoryItem
	err := r.db.GetContext(ctx, &item, `SELECT * FROM admin_inventory WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger item: %w", err)
	}
	return &item, nil
}

// UpdateFields applies a whitelisted update map and returns the new row.
func (r *PostgresLedgerRepository) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) (*model.AdminInventoryItem, error) {
	set, args := buildSet(updates, 2)
	query := fmt.Sprintf(`UPDATE admin_inventory SET %s, updated_at = NOW() WHERE id = $1 RETURNING *`, set)

	var item model.AdminInventoryItem
	err := r.db.GetContext(ctx, &item, query, append([]interface{}{id}, args...)...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update ledger item: %w", err)
	}
	return &item, nil
}

// RecordSale writes the post-sale quantity_sold, status and details (with
// the appended sales[] history) in one statement.
func (r *PostgresLedgerRepository) RecordSale(ctx context.Context, id string, quantitySold int, status string, details model.JSONMap) (*model.AdminInventoryItem, error) {
	var item model.AdminInventoryItem
	err := r.db.GetContext(ctx, &item, `
		UPDATE admin_inventory
		SET quantity_sold = $2, status = $3, details = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING *`, id, quantitySold, status, details)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}
	return &item, nil
}

// Delete removes a ledger item.
func (r *PostgresLedgerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_inventory WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger item: %w", err)
	}
	return nil
}

var _ LedgerRepository = (*PostgresLedgerRepository)(nil)
