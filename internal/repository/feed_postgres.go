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

// PostgresFeedRepository implements FeedRepository using PostgreSQL.
// Reaction and comment counters are bumped with atomic SQL so concurrent
// requests on the same event never lose an update.
type PostgresFeedRepository struct {
	db *sqlx.DB
}

// NewPostgresFeedRepository creates a new feed repository.
func NewPostgresFeedRepository(db *sqlx.DB) *PostgresFeedRepository {
	return &PostgresFeedRepository{db: db}
}

// InsertEvent adds a feed event and returns the stored row.
func (r *PostgresFeedRepository) InsertEvent(ctx context.Context, ev *model.FeedEvent) (*model.FeedEvent, error) {
	if ev.ID == "" {
		ev.ID = uid.New()
	}
	var created model.FeedEvent
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO feed_events
			(id, event_type, source_id, auth_subject, category, title, description, details, photo_urls,
			 host_slug, host_name, author_username, author_display_name, author_avatar_url, author_role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING *`,
		ev.ID, ev.EventType, ev.SourceID, ev.AuthSubject, ev.Category, ev.Title, ev.Description,
		ev.Details, ev.PhotoURLs, ev.HostSlug, ev.HostName,
		ev.AuthorUsername, ev.AuthorDisplayName, ev.AuthorAvatarURL, ev.AuthorRole)
	if err != nil {
		return nil, fmt.Errorf("failed to insert feed event: %w", err)
	}
	return &created, nil
}

// GetEvent returns a feed event, or nil.
func (r *PostgresFeedRepository) GetEvent(ctx context.Context, id string) (*model.FeedEvent, error) {
	var ev model.FeedEvent
	err := r.db.GetContext(ctx, &ev, `SELECT * FROM feed_events WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed event: %w", err)
	}
	return &ev, nil
}

// ListEvents returns feed events, newest first, honoring the filter.
func (r *PostgresFeedRepository) ListEvents(ctx context.Context, f FeedFilter) ([]model.FeedEvent, error) {
	query := `SELECT * FROM feed_events WHERE 1=1`
	args := []interface{}{}

	if f.Cursor != nil {
		args = append(args, *f.Cursor)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.EventType != "" {
		args = append(args, f.EventType)
		query += fmt.Sprintf(` AND event_type = $%d`, len(args))
	}
	if len(f.AuthorIn) > 0 {
		args = append(args, pq.Array(f.AuthorIn))
		query += fmt.Sprintf(` AND auth_subject = ANY($%d)`, len(args))
	}

	args = append(args, f.Limit)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args))

	events := []model.FeedEvent{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list feed events: %w", err)
	}
	return events, nil
}

// DeleteEvent removes a feed event; reactions and comments cascade.
func (r *PostgresFeedRepository) DeleteEvent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feed_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete feed event: %w", err)
	}
	return nil
}

// GetUserReaction returns the user's reaction on an event, or nil.
func (r *PostgresFeedRepository) GetUserReaction(ctx context.Context, eventID, subject string) (*model.FeedReaction, error) {
	var reaction model.FeedReaction
	err := r.db.GetContext(ctx, &reaction, `
		SELECT * FROM feed_reactions WHERE feed_event_id = $1 AND auth_subject = $2`, eventID, subject)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction: %w", err)
	}
	return &reaction, nil
}

// GetUserReactions returns event_id→emoji for the user's reactions among
// the given events.
func (r *PostgresFeedRepository) GetUserReactions(ctx context.Context, eventIDs []string, subject string) (map[string]string, error) {
	result := make(map[string]string)
	if len(eventIDs) == 0 {
		return result, nil
	}

	rows := []model.FeedReaction{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM feed_reactions WHERE auth_subject = $1 AND feed_event_id = ANY($2)`,
		subject, pq.Array(eventIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}
	for _, row := range rows {
		result[row.FeedEventID] = row.Emoji
	}
	return result, nil
}

// InsertReaction adds a reaction row.
func (r *PostgresFeedRepository) InsertReaction(ctx context.Context, reaction *model.FeedReaction) error {
	if reaction.ID == "" {
		reaction.ID = uid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO feed_reactions (id, feed_event_id, auth_subject, emoji)
		VALUES ($1, $2, $3, $4)`,
		reaction.ID, reaction.FeedEventID, reaction.AuthSubject, reaction.Emoji)
	if err != nil {
		return fmt.Errorf("failed to insert reaction: %w", err)
	}
	return nil
}

// UpdateReactionEmoji switches an existing reaction to a new emoji.
func (r *PostgresFeedRepository) UpdateReactionEmoji(ctx context.Context, id, emoji string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE feed_reactions SET emoji = $2 WHERE id = $1`, id, emoji)
	if err != nil {
		return fmt.Errorf("failed to update reaction: %w", err)
	}
	return nil
}

// DeleteReaction removes a reaction row.
func (r *PostgresFeedRepository) DeleteReaction(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feed_reactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reaction: %w", err)
	}
	return nil
}

// BumpReactionCount atomically adjusts one emoji's counter on the event's
// aggregate map, floored at zero.
func (r *PostgresFeedRepository) BumpReactionCount(ctx context.Context, eventID, emoji string, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feed_events SET reaction_counts = jsonb_set(
			COALESCE(reaction_counts, '{}'::jsonb),
			ARRAY[$2],
			to_jsonb(GREATEST(COALESCE((reaction_counts->>$2)::int, 0) + $3, 0))
		) WHERE id = $1`, eventID, emoji, delta)
	if err != nil {
		return fmt.Errorf("failed to bump reaction count: %w", err)
	}
	return nil
}

// InsertComment adds a comment and returns the stored row.
func (r *PostgresFeedRepository) InsertComment(ctx context.Context, c *model.FeedComment) (*model.FeedComment, error) {
	if c.ID == "" {
		c.ID = uid.New()
	}
	var created model.FeedComment
	err := r.db.GetContext(ctx, &created, `
		INSERT INTO feed_comments
			(id, feed_event_id, auth_subject, body, author_username, author_display_name, author_avatar_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`,
		c.ID, c.FeedEventID, c.AuthSubject, c.Body,
		c.AuthorUsername, c.AuthorDisplayName, c.AuthorAvatarURL)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}
	return &created, nil
}

// GetComment returns a comment, or nil.
func (r *PostgresFeedRepository) GetComment(ctx context.Context, id string) (*model.FeedComment, error) {
	var c model.FeedComment
	err := r.db.GetContext(ctx, &c, `SELECT * FROM feed_comments WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &c, nil
}

// ListComments returns an event's comments, oldest first.
func (r *PostgresFeedRepository) ListComments(ctx context.Context, eventID string, limit int) ([]model.FeedComment, error) {
	comments := []model.FeedComment{}
	err := r.db.SelectContext(ctx, &comments, `
		SELECT * FROM feed_comments WHERE feed_event_id = $1
		ORDER BY created_at ASC LIMIT $2`, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment row.
func (r *PostgresFeedRepository) DeleteComment(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM feed_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// BumpCommentCount atomically adjusts the event's comment counter, floored
// at zero.
func (r *PostgresFeedRepository) BumpCommentCount(ctx context.Context, eventID string, delta int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE feed_events SET comment_count = GREATEST(comment_count + $2, 0) WHERE id = $1`,
		eventID, delta)
	if err != nil {
		return fmt.Errorf("failed to bump comment count: %w", err)
	}
	return nil
}

var _ FeedRepository = (*PostgresFeedRepository)(nil)
