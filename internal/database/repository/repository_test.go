package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jforbes02/Clubbies/internal/database"
	"github.com/jforbes02/Clubbies/internal/database/repository"
)

func openDB(t *testing.T, set database.MigrationSet) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "test.db"), set)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestVenueRepo(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, database.AppMigrations)
	repo := repository.NewVenueRepo(db)
	now := database.Now()

	require.NoError(t, repo.Upsert(ctx, repository.Venue{ID: "v1", Name: "Old", Rating: 3, Likes: 10, PostedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, repository.Venue{ID: "v2", Name: "New", Rating: 4, PostedAt: now}))
	require.NoError(t, repo.Upsert(ctx, repository.Venue{ID: "v3", Name: "Star", Rating: 5, Featured: true, PostedAt: now}))

	feed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	require.Equal(t, "v2", feed[0].ID)

	top, err := repo.TopRated(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "v3", top[0].ID)

	require.NoError(t, repo.Upsert(ctx, repository.Venue{ID: "v1", Name: "Renamed", Rating: 3, PostedAt: now.Add(-time.Hour)}))
	got, err := repo.Get(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, 10, got.Likes)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestVenueToggleLike(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewVenueRepo(openDB(t, database.AppMigrations))
	require.NoError(t, repo.Upsert(ctx, repository.Venue{ID: "v1", Name: "Club", Likes: 5, PostedAt: database.Now()}))

	v, err := repo.ToggleLike(ctx, "v1")
	require.NoError(t, err)
	require.True(t, v.Liked)
	require.Equal(t, 6, v.Likes)

	v, err = repo.ToggleLike(ctx, "v1")
	require.NoError(t, err)
	require.False(t, v.Liked)
	require.Equal(t, 5, v.Likes)

	_, err = repo.ToggleLike(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReviewRepo(t *testing.T) {
	ctx := context.Background()
	db := openDB(t, database.AppMigrations)
	require.NoError(t, repository.NewVenueRepo(db).Upsert(ctx, repository.Venue{ID: "v1", Name: "Club", PostedAt: database.Now()}))
	repo := repository.NewReviewRepo(db)
	now := database.Now()

	require.NoError(t, repo.Insert(ctx, repository.Review{ID: "r2", VenueID: "v1", Author: "b", Comment: "later", Rating: 4, PostedAt: now}))
	require.NoError(t, repo.Insert(ctx, repository.Review{ID: "r1", VenueID: "v1", Author: "a", Comment: "first", Rating: 5, PostedAt: now.Add(-time.Minute)}))

	got, err := repo.ListByVenue(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Author)

	err = repo.Insert(ctx, repository.Review{ID: "r3", VenueID: "v1", Author: "c", Rating: 6, PostedAt: now})
	require.Error(t, err)
	err = repo.Insert(ctx, repository.Review{ID: "r4", VenueID: "ghost", Author: "c", Rating: 3, PostedAt: now})
	require.Error(t, err)
}

func TestNotificationRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewNotificationRepo(openDB(t, database.AppMigrations))
	now := database.Now()

	require.NoError(t, repo.Upsert(ctx, repository.Notification{ID: "n1", Title: "Old", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Upsert(ctx, repository.Notification{ID: "n2", Title: "New", CreatedAt: now}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "n2", list[0].ID)

	count, err := repo.UnreadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, repo.MarkRead(ctx, "n1"))
	count, err = repo.UnreadCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	require.ErrorIs(t, repo.MarkRead(ctx, "missing"), repository.ErrNotFound)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewUserRepo(openDB(t, database.AuthdMigrations))

	u := repository.User{ID: "u1", Username: "partygoer", Email: "Party@Test.com", PasswordHash: "hash", Age: 21, Role: "user", CreatedAt: database.Now()}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByLogin(ctx, "party@test.com")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)

	got, err = repo.GetByLogin(ctx, "partygoer")
	require.NoError(t, err)
	require.Equal(t, "Party@Test.com", got.Email)

	got, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, 21, got.Age)

	_, err = repo.GetByID(ctx, "u2")
	require.ErrorIs(t, err, repository.ErrNotFound)

	field, err := repo.Conflict(ctx, "partygoer", "x@test.com")
	require.NoError(t, err)
	require.Equal(t, "username", field)
	field, err = repo.Conflict(ctx, "someone", "PARTY@test.com")
	require.NoError(t, err)
	require.Equal(t, "email", field)
	field, err = repo.Conflict(ctx, "someone", "x@test.com")
	require.NoError(t, err)
	require.Empty(t, field)

	require.Error(t, repo.Create(ctx, repository.User{ID: "u3", Username: "partygoer", Email: "y@test.com", PasswordHash: "h", Role: "user", CreatedAt: database.Now()}))
}
