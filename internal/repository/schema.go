package repository

import "github.com/jmoiron/sqlx"

// createTables ensures the full schema. Idempotent; runs at startup like
// the rest of the bootstrap.
func createTables(db *sqlx.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		auth_subject TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		interests TEXT NOT NULL DEFAULT '',
		whatnot_username TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'shopper',
		host_slug TEXT NOT NULL DEFAULT '',
		loyalty_tier TEXT NOT NULL DEFAULT 'bronze',
		loyalty_points INT NOT NULL DEFAULT 0,
		profile_public BOOLEAN NOT NULL DEFAULT TRUE,
		email_visible BOOLEAN NOT NULL DEFAULT FALSE,
		follower_count INT NOT NULL DEFAULT 0,
		following_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_profiles_username ON profiles(username);
	CREATE INDEX IF NOT EXISTS idx_profiles_role ON profiles(role);

	CREATE TABLE IF NOT EXISTS hosts (
		id UUID PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		whatnot_handle TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS wishlist_items (
		id UUID PRIMARY KEY,
		auth_subject TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		details JSONB NOT NULL DEFAULT '{}',
		reaction_counts JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_wishlist_owner ON wishlist_items(auth_subject);

	CREATE TABLE IF NOT EXISTS collection_items (
		id UUID PRIMARY KEY,
		auth_subject TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		details JSONB NOT NULL DEFAULT '{}',
		photo_urls TEXT[] NOT NULL DEFAULT '{}',
		reaction_counts JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_collection_owner ON collection_items(auth_subject);

	CREATE TABLE IF NOT EXISTS host_inventory (
		id UUID PRIMARY KEY,
		host_slug TEXT NOT NULL,
		auth_subject TEXT NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		details JSONB NOT NULL DEFAULT '{}',
		photo_urls TEXT[] NOT NULL DEFAULT '{}',
		price_range TEXT NOT NULL DEFAULT '',
		quantity INT NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'available',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_host_inventory_slug ON host_inventory(host_slug);

	CREATE TABLE IF NOT EXISTS scheduled_shows (
		id UUID PRIMARY KEY,
		host_slug TEXT NOT NULL,
		show_type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		scheduled_at TIMESTAMPTZ NOT NULL,
		duration_minutes INT NOT NULL DEFAULT 60,
		status TEXT NOT NULL DEFAULT 'scheduled',
		whatnot_url TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_shows_scheduled_at ON scheduled_shows(scheduled_at);
	CREATE INDEX IF NOT EXISTS idx_shows_host ON scheduled_shows(host_slug);

	CREATE TABLE IF NOT EXISTS feed_events (
		id UUID PRIMARY KEY,
		event_type TEXT NOT NULL,
		source_id TEXT NOT NULL,
		auth_subject TEXT NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		details JSONB NOT NULL DEFAULT '{}',
		photo_urls TEXT[] NOT NULL DEFAULT '{}',
		host_slug TEXT NOT NULL DEFAULT '',
		host_name TEXT NOT NULL DEFAULT '',
		author_username TEXT NOT NULL DEFAULT '',
		author_display_name TEXT NOT NULL DEFAULT '',
		author_avatar_url TEXT NOT NULL DEFAULT '',
		author_role TEXT NOT NULL DEFAULT 'shopper',
		reaction_counts JSONB NOT NULL DEFAULT '{}',
		comment_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_feed_created_at ON feed_events(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_feed_author ON feed_events(auth_subject);

	CREATE TABLE IF NOT EXISTS feed_comments (
		id UUID PRIMARY KEY,
		feed_event_id UUID NOT NULL REFERENCES feed_events(id) ON DELETE CASCADE,
		auth_subject TEXT NOT NULL,
		body TEXT NOT NULL,
		author_username TEXT NOT NULL DEFAULT '',
		author_display_name TEXT NOT NULL DEFAULT '',
		author_avatar_url TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_feed_comments_event ON feed_comments(feed_event_id);

	CREATE TABLE IF NOT EXISTS feed_reactions (
		id UUID PRIMARY KEY,
		feed_event_id UUID NOT NULL REFERENCES feed_events(id) ON DELETE CASCADE,
		auth_subject TEXT NOT NULL,
		emoji TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (feed_event_id, auth_subject)
	);

	CREATE TABLE IF NOT EXISTS item_reactions (
		id UUID PRIMARY KEY,
		item_type TEXT NOT NULL,
		item_id UUID NOT NULL,
		auth_subject TEXT NOT NULL,
		emoji TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (item_type, item_id, auth_subject)
	);

	CREATE TABLE IF NOT EXISTS follows (
		id UUID PRIMARY KEY,
		follower_subject TEXT NOT NULL,
		following_subject TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (follower_subject, following_subject)
	);
	CREATE INDEX IF NOT EXISTS idx_follows_following ON follows(following_subject);

	CREATE TABLE IF NOT EXISTS admin_inventory (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'in_stock',
		quantity INT NOT NULL DEFAULT 1,
		quantity_sold INT NOT NULL DEFAULT 0,
		purchase_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		sale_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		details JSONB NOT NULL DEFAULT '{}',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_admin_inventory_category ON admin_inventory(category);
	`
	_, err := db.Exec(query)
	return err
}
