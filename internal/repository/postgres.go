package repository

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Store bundles the per-entity repositories over one PostgreSQL pool.
type Store struct {
	db *sqlx.DB

	Profiles      *PostgresProfileRepository
	Wishlists     *PostgresWishlistRepository
	Collections   *PostgresCollectionRepository
	HostInventory *PostgresHostInventoryRepository
	Hosts         *PostgresHostRepository
	Shows         *PostgresShowRepository
	Feed          *PostgresFeedRepository
	ItemReactions *PostgresItemReactionRepository
	Follows       *PostgresFollowRepository
	Ledger        *PostgresLedgerRepository
}

// NewStore opens the PostgreSQL pool, verifies connectivity and ensures the
// schema exists.
func NewStore(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[PostgresStore] Initialized with pool: max=%d, idle=%d", 25, 10)
	return NewStoreWithDB(db), nil
}

// NewStoreWithDB builds a Store over an existing connection. Used by tests.
func NewStoreWithDB(db *sqlx.DB) *Store {
	return &Store{
		db:            db,
		Profiles:      NewPostgresProfileRepository(db),
		Wishlists:     NewPostgresWishlistRepository(db),
		Collections:   NewPostgresCollectionRepository(db),
		HostInventory: NewPostgresHostInventoryRepository(db),
		Hosts:         NewPostgresHostRepository(db),
		Shows:         NewPostgresShowRepository(db),
		Feed:          NewPostgresFeedRepository(db),
		ItemReactions: NewPostgresItemReactionRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Ledger:        NewPostgresLedgerRepository(db),
	}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, optionally on a constraint containing the given fragment.
func IsUniqueViolation(err error, constraintFragment string) bool {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return false
	}
	if pqErr.Code != "23505" {
		return false
	}
	if constraintFragment == "" {
		return true
	}
	return strings.Contains(pqErr.Constraint, constraintFragment) ||
		strings.Contains(pqErr.Message, constraintFragment)
}

// buildSet renders a deterministic SET clause from an update map. Keys are
// sorted so generated SQL is stable for tests.
func buildSet(updates map[string]interface{}, startArg int) (string, []interface{}) {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	args := make([]interface{}, 0, len(keys))
	for i, k := range keys {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", k, startArg+i))
		args = append(args, updates[k])
	}
	return strings.Join(clauses, ", "), args
}
