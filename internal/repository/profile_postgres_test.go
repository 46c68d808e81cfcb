package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestProfileRepositoryGetBySubject(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	ctx := context.Background()

	t.Run("existing profile", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "auth_subject", "email", "username", "role"}).
			AddRow("p1", "auth0|u", "u@gmail.com", "Collector_AB12", "shopper")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM profiles WHERE auth_subject = $1`)).
			WithArgs("auth0|u").
			WillReturnRows(rows)

		p, err := repo.GetBySubject(ctx, "auth0|u")
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Equal(t, "Collector_AB12", p.Username)
	})

	t.Run("missing profile is nil without error", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM profiles WHERE auth_subject = $1`)).
			WithArgs("auth0|ghost").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		p, err := repo.GetBySubject(ctx, "auth0|ghost")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryUpdateFields(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	ctx := context.Background()

	// buildSet sorts keys, so the generated SET order is deterministic.
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE profiles SET bio = $2, role = $3, updated_at = NOW() WHERE auth_subject = $1 RETURNING *`)).
		WithArgs("auth0|u", "new bio", "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "auth_subject", "bio", "role"}).
			AddRow("p1", "auth0|u", "new bio", "admin"))

	p, err := repo.UpdateFields(ctx, "auth0|u", map[string]interface{}{
		"role": "admin",
		"bio":  "new bio",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryList(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProfileRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM profiles WHERE 1=1 AND (username ILIKE $1 OR email ILIKE $1 OR display_name ILIKE $1) AND role = $2 ORDER BY created_at DESC LIMIT $3`)).
		WithArgs("%coin%", "host", 200).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).
			AddRow("p1", "CoinGuy", "host"))

	profiles, err := repo.List(ctx, "coin", "host", 200)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "CoinGuy", profiles[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(context.DeadlineExceeded, ""))
	assert.False(t, IsUniqueViolation(nil, "username"))
}

func TestBuildSet(t *testing.T) {
	set, args := buildSet(map[string]interface{}{
		"role": "admin",
		"bio":  "hello",
	}, 2)
	assert.Equal(t, "bio = $2, role = $3", set)
	assert.Equal(t, []interface{}{"hello", "admin"}, args)
}
