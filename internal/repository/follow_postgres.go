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

// PostgresFollowRepository implements FollowRepository using PostgreSQL.
type PostgresFollowRepository struct {
	db *sqlx.DB
}

// NewPostgresFollowRepository creates a new follow repository.
func NewPostgresFollowRepository(db *sqlx.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// Upsert inserts the edge if absent and reports whether a row was created.
// Re-following is a no-op so counters are bumped exactly once per edge.
func (r *PostgresFollowRepository) Upsert(ctx context.Context, follower, following string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO follows (id, follower_subject, following_subject)
		VALUES ($1, $2, $3)
		ON CONFLICT (follower_subject, following_subject) DO NOTHING`,
		uid.New(), follower, following)
	if err != nil {
		return false, fmt.Errorf("failed to upsert follow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes the edge and reports whether it existed.
func (r *PostgresFollowRepository) Delete(ctx context.Context, follower, following string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM follows WHERE follower_subject = $1 AND following_subject = $2`,
		follower, following)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Exists reports whether follower follows following.
func (r *PostgresFollowRepository) Exists(ctx context.Context, follower, following string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM follows WHERE follower_subject = $1 AND following_subject = $2)`,
		follower, following)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}
	return exists, nil
}

// ListFollowers returns the subjects following the given subject, newest
// edge first. A zero limit returns every edge.
func (r *PostgresFollowRepository) ListFollowers(ctx context.Context, subject string, limit int) ([]string, error) {
	subjects := []string{}
	err := r.db.SelectContext(ctx, &subjects, `
		SELECT follower_subject FROM follows WHERE following_subject = $1
		ORDER BY created_at DESC LIMIT NULLIF($2, 0)`, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list followers: %w", err)
	}
	return subjects, nil
}

// ListFollowing returns the subjects the given subject follows, newest
// edge first. A zero limit returns every edge.
func (r *PostgresFollowRepository) ListFollowing(ctx context.Context, subject string, limit int) ([]string, error) {
	subjects := []string{}
	err := r.db.SelectContext(ctx, &subjects, `
		SELECT following_subject FROM follows WHERE follower_subject = $1
		ORDER BY created_at DESC LIMIT NULLIF($2, 0)`, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list following: %w", err)
	}
	return subjects, nil
}

// FilterFollowing narrows candidates to those the follower actually follows.
func (r *PostgresFollowRepository) FilterFollowing(ctx context.Context, follower string, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return []string{}, nil
	}
	subjects := []string{}
	err := r.db.SelectContext(ctx, &subjects, `
		SELECT following_subject FROM follows
		WHERE follower_subject = $1 AND following_subject = ANY($2)`,
		follower, pq.Array(candidates))
	if err != nil {
		return nil, fmt.Errorf("failed to filter following: %w", err)
	}
	return subjects, nil
}

// BumpFollowerCount atomically adjusts a profile's follower counter,
// floored at zero.
func (r *PostgresFollowRepository) BumpFollowerCount(ctx context.Context, subject string, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET follower_count = GREATEST(follower_count + $2, 0) WHERE auth_subject = $1`,
		subject, delta)
	if err != nil {
		return fmt.Errorf("failed to bump follower count: %w", err)
	}
	return nil
}

// BumpFollowingCount atomically adjusts a profile's following counter,
// floored at zero.
func (r *PostgresFollowRepository) BumpFollowingCount(ctx context.Context, subject string, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET following_count = GREATEST(following_count + $2, 0) WHERE auth_subject = $1`,
		subject, delta)
	if err != nil {
		return fmt.Errorf("failed to bump following count: %w", err)
	}
	return nil
}

var _ FollowRepository = (*PostgresFollowRepository)(nil)

// PostgresItemReactionRepository implements ItemReactionRepository using
// PostgreSQL. The aggregate map lives on the parent collection/wishlist row.
type PostgresItemReactionRepository struct {
	db *sqlx.DB
}

// NewPostgresItemReactionRepository creates a new item reaction repository.
func NewPostgresItemReactionRepository(db *sqlx.DB) *PostgresItemReactionRepository {
	return &PostgresItemReactionRepository{db: db}
}

func itemTable(itemType string) string {
	if itemType == "wishlist" {
		return "wishlist_items"
	}
	return "collection_items"
}

// GetUserReaction returns the user's reaction on an item, or nil.
func (r *PostgresItemReactionRepository) GetUserReaction(ctx context.Context, itemType, itemID, subject string) (*model.ItemReaction, error) {
	var reaction model.ItemReaction
	err := r.db.GetContext(ctx, &reaction, `
		SELECT * FROM item_reactions WHERE item_type = $1 AND item_id = $2 AND auth_subject = $3`,
		itemType, itemID, subject)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item reaction: %w", err)
	}
	return &reaction, nil
}

// Insert adds an item reaction row.
func (r *PostgresItemReactionRepository) Insert(ctx context.Context, reaction *model.ItemReaction) error {
	if reaction.ID == "" {
		reaction.ID = uid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_reactions (id, item_type, item_id, auth_subject, emoji)
		VALUES ($1, $2, $3, $4, $5)`,
		reaction.ID, reaction.ItemType, reaction.ItemID, reaction.AuthSubject, reaction.Emoji)
	if err != nil {
		return fmt.Errorf("failed to insert item reaction: %w", err)
	}
	return nil
}

// UpdateEmoji switches an existing item reaction to a new emoji.
func (r *PostgresItemReactionRepository) UpdateEmoji(ctx context.Context, id, emoji string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE item_reactions SET emoji = $2 WHERE id = $1`, id, emoji)
	if err != nil {
		return fmt.Errorf("failed to update item reaction: %w", err)
	}
	return nil
}

// Delete removes an item reaction row.
func (r *PostgresItemReactionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM item_reactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item reaction: %w", err)
	}
	return nil
}

// BumpCount atomically adjusts one emoji's counter on the parent item,
// floored at zero.
func (r *PostgresItemReactionRepository) BumpCount(ctx context.Context, itemType, itemID, emoji string, delta int) error {
	query := fmt.Sprintf(`
		UPDATE %s SET reaction_counts = jsonb_set(
			COALESCE(reaction_counts, '{}'::jsonb),
			ARRAY[$2],
			to_jsonb(GREATEST(COALESCE((reaction_counts->>$2)::int, 0) + $3, 0))
		) WHERE id = $1`, itemTable(itemType))
	_, err := r.db.ExecContext(ctx, query, itemID, emoji, delta)
	if err != nil {
		return fmt.Errorf("failed to bump item reaction count: %w", err)
	}
	return nil
}

// GetCounts returns the parent item's aggregate reaction map.
func (r *PostgresItemReactionRepository) GetCounts(ctx context.Context, itemType, itemID string) (model.ReactionCounts, error) {
	var counts model.ReactionCounts
	query := fmt.Sprintf(`SELECT reaction_counts FROM %s WHERE id = $1`, itemTable(itemType))
	err := r.db.GetContext(ctx, &counts, query, itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item reaction counts: %w", err)
	}
	return counts, nil
}

// GetCountsBatch returns item_id to aggregate reaction map for the given
// items. Items without a row are absent from the result.
func (r *PostgresItemReactionRepository) GetCountsBatch(ctx context.Context, itemType string, itemIDs []string) (map[string]model.ReactionCounts, error) {
	result := make(map[string]model.ReactionCounts)
	if len(itemIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		ID     string               `db:"id"`
		Counts model.ReactionCounts `db:"reaction_counts"`
	}
	query := fmt.Sprintf(`SELECT id, reaction_counts FROM %s WHERE id = ANY($1)`, itemTable(itemType))
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(itemIDs)); err != nil {
		return nil, fmt.Errorf("failed to get item reaction counts: %w", err)
	}
	for _, row := range rows {
		result[row.ID] = row.Counts
	}
	return result, nil
}

// GetUserReactions returns item_id to emoji for the user's reactions among
// the given items.
func (r *PostgresItemReactionRepository) GetUserReactions(ctx context.Context, itemType string, itemIDs []string, subject string) (map[string]string, error) {
	result := make(map[string]string)
	if len(itemIDs) == 0 {
		return result, nil
	}
	var reactions []model.ItemReaction
	err := r.db.SelectContext(ctx, &reactions, `
		SELECT * FROM item_reactions WHERE item_type = $1 AND auth_subject = $2 AND item_id = ANY($3)`,
		itemType, subject, pq.Array(itemIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get item reactions: %w", err)
	}
	for _, reaction := range reactions {
		result[reaction.ItemID] = reaction.Emoji
	}
	return result, nil
}

var _ ItemReactionRepository = (*PostgresItemReactionRepository)(nil)
