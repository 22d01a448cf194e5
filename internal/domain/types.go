// Package domain contains the core data types for voyago.
// It has zero external dependencies and is imported by every other
// internal package (kv, store, service).
//
// JSON tags match the field names used by the persisted partition blobs,
// so data written by earlier versions of the app round-trips unchanged.
package domain

import "time"

// Destination is one entry of the travel destination catalog.
// Destinations are effectively immutable once seeded; there is no
// update or delete operation.
type Destination struct {
	ID       int64   `json:"id"`
	Location string  `json:"location"`
	Name     string  `json:"name"`
	Rating   float64 `json:"rating"`
	Image    string  `json:"image"`
}

// User is a registered account. Username is unique case-insensitively.
// The password is stored in plaintext in the local partition, a known
// weakness of the app.
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Password       string     `json:"password"`
	Email          string     `json:"email,omitempty"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
}

// NewUser holds the caller-supplied fields for user creation.
// ID and CreatedAt are assigned by the store.
type NewUser struct {
	Username       string
	Password       string
	Email          string
	FirstName      string
	LastName       string
	ProfilePicture string
}

// Activity is a checklist entry embedded in a trip. Activities have no
// storage partition of their own; they live and die with their trip.
// IDs are time-based, a separate id space from the counter-based
// top-level entities.
type Activity struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Trip is the top-level aggregate: a planned journey owned by a user,
// referencing a destination and embedding its activity checklist.
// UserID and DestinationID are id references only; the store does not
// enforce that they resolve.
type Trip struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	DestinationID int64      `json:"destinationId"`
	Name          string     `json:"name"`
	StartDate     *time.Time `json:"startDate,omitempty"` // nil when undated
	EndDate       *time.Time `json:"endDate,omitempty"`
	Activities    []Activity `json:"activities"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Step is a map waypoint belonging to a trip. Steps are persisted in
// their own partition and linked to the trip by TripID only. Within a
// trip, Order values are contiguous integers starting at 1.
type Step struct {
	ID          int64   `json:"id"`
	TripID      int64   `json:"tripId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Order       int     `json:"order"`
}
