package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/jforbes02/Clubbies/internal/database/repository"
)

type seedReview struct {
	author  string
	comment string
	rating  int
	ago     time.Duration
}

type seedVenue struct {
	name        string
	location    string
	description string
	genre       string
	venueType   string
	rating      float64
	likes       int
	featured    bool
	ago         time.Duration
	reviews     []seedReview
}

var defaultVenues = []seedVenue{
	{
		name: "Club Neon", location: "Downtown District", venueType: "Nightclub",
		description: "The hottest club in the city with amazing DJs and incredible atmosphere!",
		rating:      4, likes: 342, ago: 2 * time.Hour,
		reviews: []seedReview{
			{"sarah_nightlife", "Amazing night! The music was incredible and the vibe was perfect", 5, time.Hour},
			{"mike_party", "Great place but a bit crowded. Still had a blast!", 4, 45 * time.Minute},
			{"party_queen", "Best club in the city hands down! Will definitely be back", 5, 30 * time.Minute},
		},
	},
	{
		name: "Rooftop Lounge", location: "Upper East", venueType: "Rooftop",
		description: "Stunning city views with craft cocktails and chill vibes",
		rating:      5, likes: 189, ago: 4 * time.Hour,
		reviews: []seedReview{
			{"cocktail_lover", "The view is breathtaking and cocktails are top notch!", 5, 2 * time.Hour},
			{"city_explorer", "Perfect spot for a date night. Romantic and classy", 4, time.Hour},
		},
	},
	{
		name: "Electric Underground", location: "Warehouse District", venueType: "Nightclub",
		description: "Underground techno paradise. Raw energy, incredible sound system",
		rating:      4, likes: 567, ago: 6 * time.Hour,
		reviews: []seedReview{
			{"techno_head", "This place is INSANE! Best sound system in the city", 5, 3 * time.Hour},
			{"rave_girl", "Lost myself in the music all night. Pure magic!", 5, 2 * time.Hour},
			{"bass_lover", "The bass hits different here. Mind-blowing experience", 4, time.Hour},
		},
	},
	{name: "The Underground", genre: "Electronic", venueType: "Nightclub", rating: 4.8, featured: true},
	{name: "Neon Nights", genre: "Hip Hop", venueType: "Nightclub", rating: 4.6, featured: true},
	{name: "Velvet Lounge", genre: "Jazz", venueType: "Jazz_club", rating: 4.9, featured: true},
}

var defaultNotifications = []struct {
	title, message string
	read           bool
	ago            time.Duration
}{
	{"New Event at Club XYZ", "Join us for an amazing night of music and dancing!", false, 2 * time.Hour},
	{"Venue Booking Confirmed", "Your booking for Saturday night has been confirmed.", true, 5 * time.Hour},
	{"Friend Request", "Alex wants to connect with you on Clubbies.", false, 24 * time.Hour},
	{"Special Offer", "Get 20% off your next venue booking this weekend!", true, 48 * time.Hour},
}

func seedID(kind, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+name)).String()
}

// SeedDefaults fills an empty catalogue with the starter venues, reviews and
// notifications. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	venues := repository.NewVenueRepo(db)
	existing, err := venues.All(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	now := Now()
	reviews := repository.NewReviewRepo(db)
	notes := repository.NewNotificationRepo(db)

	for _, sv := range defaultVenues {
		v := repository.Venue{
			ID:          seedID("venue", sv.name),
			Name:        sv.name,
			Location:    sv.location,
			Description: sv.description,
			Genre:       sv.genre,
			VenueType:   sv.venueType,
			Rating:      sv.rating,
			Likes:       sv.likes,
			Featured:    sv.featured,
			PostedAt:    now.Add(-sv.ago),
		}
		if err := venues.Upsert(ctx, v); err != nil {
			return err
		}
		for _, sr := range sv.reviews {
			rv := repository.Review{
				ID:       seedID("review", sv.name+"/"+sr.author),
				VenueID:  v.ID,
				Author:   sr.author,
				Comment:  sr.comment,
				Rating:   sr.rating,
				PostedAt: now.Add(-sr.ago),
			}
			if err := reviews.Insert(ctx, rv); err != nil {
				return err
			}
		}
	}
	for _, sn := range defaultNotifications {
		n := repository.Notification{
			ID:        seedID("notification", sn.title),
			Title:     sn.title,
			Message:   sn.message,
			Read:      sn.read,
			CreatedAt: now.Add(-sn.ago),
		}
		if err := notes.Upsert(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
