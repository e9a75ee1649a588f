package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jforbes02/Clubbies/internal/database/repository"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "clubbies.db")
	require.NoError(t, RunMigrations(dbPath, AppMigrations))
	require.NoError(t, RunMigrations(dbPath, AppMigrations))

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('venues','reviews','notifications')`).Scan(&n))
	require.Equal(t, 3, n)
}

func TestAuthdMigrationsCreateUsers(t *testing.T) {
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "authd.db"), AuthdMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestSeedDefaults(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "clubbies.db"), AppMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	venues := repository.NewVenueRepo(db)
	feed, err := venues.List(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	require.Equal(t, "Club Neon", feed[0].Name)

	featured, err := venues.TopRated(ctx, 3)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	require.Equal(t, "Velvet Lounge", featured[0].Name)

	reviews, err := repository.NewReviewRepo(db).ListByVenue(ctx, feed[0].ID)
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	require.Equal(t, "sarah_nightlife", reviews[0].Author)

	unread, err := repository.NewNotificationRepo(db).UnreadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, unread)

	require.Equal(t, seedID("venue", "Club Neon"), feed[0].ID)
}

func TestWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	db, err := OpenMigrated(filepath.Join(t.TempDir(), "clubbies.db"), AppMigrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO notifications(id, title) VALUES ('n1', 'hi')`); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM notifications`).Scan(&n))
	require.Zero(t, n)
}

var errBoom = errors.New("boom")
