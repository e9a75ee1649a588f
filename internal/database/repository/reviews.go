package repository

import (
	"context"
	"database/sql"
)

// ReviewRepo handles reviews.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

// Insert adds or replaces a review by id.
func (r *ReviewRepo) Insert(ctx context.Context, rv Review) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO reviews(id, venue_id, author, comment, rating, posted_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 author=excluded.author,
	 comment=excluded.comment,
	 rating=excluded.rating,
	 posted_at=excluded.posted_at;
	`, rv.ID, rv.VenueID, rv.Author, rv.Comment, rv.Rating, rv.PostedAt)
	return err
}

// ListByVenue returns a venue's reviews, oldest first.
func (r *ReviewRepo) ListByVenue(ctx context.Context, venueID string) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, venue_id, author, comment, rating, posted_at
	FROM reviews WHERE venue_id = ? ORDER BY posted_at, id`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Review
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.VenueID, &rv.Author, &rv.Comment, &rv.Rating, &rv.PostedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
