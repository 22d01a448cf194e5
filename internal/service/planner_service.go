package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/tmorel/voyago/internal/domain"
)

// tripRepository is the subset of store.TripStore that PlannerService requires.
type tripRepository interface {
	Create(ctx context.Context, userID, destinationID int64, name string, startDate, endDate *time.Time) (domain.Trip, error)
	GetByID(ctx context.Context, id int64) (domain.Trip, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Trip, error)
	Update(ctx context.Context, trip domain.Trip) error
	Delete(ctx context.Context, tripID int64) error
	AddStep(ctx context.Context, tripID int64, title, description string, latitude, longitude float64, order int) (int64, error)
	ListSteps(ctx context.Context, tripID int64) ([]domain.Step, error)
	DeleteAllSteps(ctx context.Context, tripID int64) error
}

// destinationCatalog is the subset of store.DestinationStore that
// PlannerService requires.
type destinationCatalog interface {
	GetByID(ctx context.Context, id int64) (domain.Destination, error)
	SeedIfEmpty(ctx context.Context) error
}

// accountSeeder is the one UserStore method the startup path needs.
type accountSeeder interface {
	SeedDefaultIfEmpty(ctx context.Context) error
}

type PlannerService struct {
	trips        tripRepository
	destinations destinationCatalog
	users        accountSeeder
	logger       *slog.Logger
}

func NewPlannerService(trips tripRepository, destinations destinationCatalog, users accountSeeder, logger *slog.Logger) *PlannerService {
	return &PlannerService{
		trips:        trips,
		destinations: destinations,
		users:        users,
		logger:       logger,
	}
}

// Bootstrap seeds the demo catalog and the default account on first
// launch. Safe to run on every startup.
func (s *PlannerService) Bootstrap(ctx context.Context) error {
	if err := s.destinations.SeedIfEmpty(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap destinations: %w", err)
	}
	if err := s.users.SeedDefaultIfEmpty(ctx); err != nil {
		return fmt.Errorf("failed to bootstrap users: %w", err)
	}
	s.logger.Info("bootstrap complete")
	return nil
}

// TripSummary bundles a trip with its destination for list rendering.
// Destination is nil when the trip references a destination that no
// longer resolves.
type TripSummary struct {
	domain.Trip
	Destination *domain.Destination
}

// TripsForUser returns the user's trips most recently updated first,
// each enriched with its destination. The store keeps insertion order;
// recency ordering is this layer's job.
func (s *PlannerService) TripsForUser(ctx context.Context, userID int64) ([]TripSummary, error) {
	trips, err := s.trips.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(trips, func(i, j int) bool { return trips[i].UpdatedAt.After(trips[j].UpdatedAt) })

	summaries := make([]TripSummary, 0, len(trips))
	for _, trip := range trips {
		summary := TripSummary{Trip: trip}
		dest, err := s.destinations.GetByID(ctx, trip.DestinationID)
		switch {
		case err == nil:
			summary.Destination = &dest
		case errors.Is(err, domain.ErrNotFound):
			// Dangling reference; the screen shows the trip without a
			// destination card.
		default:
			return nil, fmt.Errorf("failed to resolve destination for trip %d: %w", trip.ID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ClampDates enforces startDate <= endDate the way the date picker
// does: when the bounds conflict, the start wins and the end is pushed
// to the day after it. Missing bounds pass through untouched.
func ClampDates(startDate, endDate *time.Time) (*time.Time, *time.Time) {
	if startDate == nil || endDate == nil {
		return startDate, endDate
	}
	if startDate.After(*endDate) {
		adjusted := startDate.AddDate(0, 0, 1)
		return startDate, &adjusted
	}
	return startDate, endDate
}

// CreateTrip persists a new trip for the user with clamped dates.
func (s *PlannerService) CreateTrip(ctx context.Context, userID, destinationID int64, name string, startDate, endDate *time.Time) (domain.Trip, error) {
	startDate, endDate = ClampDates(startDate, endDate)
	trip, err := s.trips.Create(ctx, userID, destinationID, name, startDate, endDate)
	if err != nil {
		return domain.Trip{}, err
	}
	s.logger.Info("trip created", "trip_id", trip.ID, "user_id", userID)
	return trip, nil
}

// RescheduleTrip replaces the trip's date range with clamped bounds.
// Trips belonging to another user are reported as not found, the same
// signal the screens already handle.
func (s *PlannerService) RescheduleTrip(ctx context.Context, userID, tripID int64, startDate, endDate *time.Time) (domain.Trip, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, err
	}

	trip.StartDate, trip.EndDate = ClampDates(startDate, endDate)
	if err := s.trips.Update(ctx, trip); err != nil {
		return domain.Trip{}, err
	}
	return s.trips.GetByID(ctx, tripID)
}

// TripDetails returns the trip with its destination and ordered steps,
// the full payload of the detail screen. Destination is nil when the
// reference dangles.
func (s *PlannerService) TripDetails(ctx context.Context, userID, tripID int64) (domain.Trip, *domain.Destination, []domain.Step, error) {
	trip, err := s.ownedTrip(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, nil, nil, err
	}

	var destination *domain.Destination
	dest, err := s.destinations.GetByID(ctx, trip.DestinationID)
	switch {
	case err == nil:
		destination = &dest
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Trip{}, nil, nil, fmt.Errorf("failed to resolve destination: %w", err)
	}

	steps, err := s.trips.ListSteps(ctx, tripID)
	if err != nil {
		return domain.Trip{}, nil, nil, err
	}

	return trip, destination, steps, nil
}

// StepInput is one waypoint of a step replacement. Order is assigned
// by position, 1-based.
type StepInput struct {
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
}

// ReplaceSteps swaps the trip's waypoint set for the given one,
// renumbering orders contiguously from 1. The delete and the inserts
// are separate partition writes, so a failure mid-sequence leaves a
// partial step set behind; the next successful save repairs it.
func (s *PlannerService) ReplaceSteps(ctx context.Context, userID, tripID int64, inputs []StepInput) ([]domain.Step, error) {
	if _, err := s.ownedTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	if err := s.trips.DeleteAllSteps(ctx, tripID); err != nil {
		return nil, err
	}

	for i, in := range inputs {
		if _, err := s.trips.AddStep(ctx, tripID, in.Title, in.Description, in.Latitude, in.Longitude, i+1); err != nil {
			return nil, fmt.Errorf("failed to save step %d: %w", i+1, err)
		}
	}

	s.logger.Info("trip steps replaced", "trip_id", tripID, "steps", len(inputs))
	return s.trips.ListSteps(ctx, tripID)
}

// DeleteTrip removes the trip (and, via the store, its steps).
func (s *PlannerService) DeleteTrip(ctx context.Context, userID, tripID int64) error {
	if _, err := s.ownedTrip(ctx, userID, tripID); err != nil {
		return err
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return err
	}
	s.logger.Info("trip deleted", "trip_id", tripID, "user_id", userID)
	return nil
}

// ownedTrip loads the trip and hides it from non-owners. Another
// user's trip and a missing trip are indistinguishable to the caller.
func (s *PlannerService) ownedTrip(ctx context.Context, userID, tripID int64) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.UserID != userID {
		return domain.Trip{}, domain.ErrNotFound
	}
	return trip, nil
}
