package repository

import "time"

// Venue represents a venue row.
type Venue struct {
	ID          string
	Name        string
	Location    string
	Description string
	Genre       string
	VenueType   string
	Rating      float64
	Likes       int
	Liked       bool
	Featured    bool
	PostedAt    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Review represents a review row.
type Review struct {
	ID       string
	VenueID  string
	Author   string
	Comment  string
	Rating   int
	PostedAt time.Time
}

// Notification represents a notification row.
type Notification struct {
	ID        string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}

// User represents an authd account row.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Age          int
	Role         string
	CreatedAt    time.Time
}
