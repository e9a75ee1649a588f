package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned by single-row lookups.
var ErrNotFound = errors.New("repository: not found")

// VenueRepo handles venues.
type VenueRepo struct {
	db *sql.DB
}

func NewVenueRepo(db *sql.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueColumns = `id, name, location, description, genre, venue_type, rating, likes, liked, featured, posted_at, created_at, updated_at`

func scanVenue(s interface{ Scan(...any) error }) (Venue, error) {
	var v Venue
	err := s.Scan(&v.ID, &v.Name, &v.Location, &v.Description, &v.Genre, &v.VenueType,
		&v.Rating, &v.Likes, &v.Liked, &v.Featured, &v.PostedAt, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *VenueRepo) Upsert(ctx context.Context, v Venue) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO venues(id, name, location, description, genre, venue_type, rating, likes, featured, posted_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 name=excluded.name,
	 location=excluded.location,
	 description=excluded.description,
	 genre=excluded.genre,
	 venue_type=excluded.venue_type,
	 rating=excluded.rating,
	 featured=excluded.featured,
	 posted_at=excluded.posted_at,
	 updated_at=CURRENT_TIMESTAMP;
	`, v.ID, v.Name, v.Location, v.Description, v.Genre, v.VenueType, v.Rating, v.Likes, v.Featured, v.PostedAt)
	return err
}

func (r *VenueRepo) query(ctx context.Context, q string, args ...any) ([]Venue, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// List returns the feed: non-featured venues, newest first.
func (r *VenueRepo) List(ctx context.Context) ([]Venue, error) {
	return r.query(ctx, `SELECT `+venueColumns+` FROM venues WHERE featured = 0 ORDER BY posted_at DESC, name`)
}

// All returns every venue by name.
func (r *VenueRepo) All(ctx context.Context) ([]Venue, error) {
	return r.query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY name`)
}

// TopRated returns the featured venues, best rated first.
func (r *VenueRepo) TopRated(ctx context.Context, limit int) ([]Venue, error) {
	return r.query(ctx, `SELECT `+venueColumns+` FROM venues WHERE featured = 1 ORDER BY rating DESC, name LIMIT ?`, limit)
}

func (r *VenueRepo) Get(ctx context.Context, id string) (Venue, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Venue{}, ErrNotFound
	}
	return v, err
}

// ToggleLike flips the viewer's like and adjusts the count.
func (r *VenueRepo) ToggleLike(ctx context.Context, id string) (Venue, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE venues SET
	 likes = CASE WHEN liked = 1 THEN MAX(likes - 1, 0) ELSE likes + 1 END,
	 liked = 1 - liked,
	 updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, id)
	if err != nil {
		return Venue{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Venue{}, ErrNotFound
	}
	return r.Get(ctx, id)
}
