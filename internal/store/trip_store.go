package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tmorel/voyago/internal/domain"
	"github.com/tmorel/voyago/internal/kv"
)

const (
	tripsKey = "trips_data"
	stepsKey = "steps_data"
)

// timeID allocates millisecond-timestamp ids for embedded activities
// and steps. Two allocations landing in the same clock tick get
// consecutive ids instead of colliding.
type timeID struct {
	mu   sync.Mutex
	last int64
}

func (t *timeID) next(now time.Time) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := now.UnixMilli()
	if id <= t.last {
		id = t.last + 1
	}
	t.last = id
	return id
}

// TripStore owns the trip partition, the embedded activity lists, and
// the step partition. Steps live in their own partition linked to trips
// by id only; deleting a trip also deletes its steps so the weak
// reference never dangles.
type TripStore struct {
	kv  kv.Store
	now func() time.Time
	ids timeID

	mu          sync.Mutex
	initialized bool
	lastID      int64
}

func NewTripStore(kv kv.Store) *TripStore {
	return &TripStore{kv: kv, now: time.Now}
}

// Init seeds the trip id counter from the partition. Idempotent;
// mutators run it implicitly. The step partition is not counter-tracked:
// step ids are time-based.
func (s *TripStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.init(ctx)
}

func (s *TripStore) init(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	trips, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to init trip store: %w", err)
	}

	for _, t := range trips {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}

	s.initialized = true
	return nil
}

func (s *TripStore) load(ctx context.Context) ([]domain.Trip, error) {
	data, ok, err := s.kv.Get(ctx, tripsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var trips []domain.Trip
	if err := json.Unmarshal([]byte(data), &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips partition: %w", err)
	}
	return trips, nil
}

func (s *TripStore) save(ctx context.Context, trips []domain.Trip) error {
	data, err := json.Marshal(trips)
	if err != nil {
		return fmt.Errorf("failed to encode trips partition: %w", err)
	}
	return s.kv.Set(ctx, tripsKey, string(data))
}

func (s *TripStore) loadSteps(ctx context.Context) ([]domain.Step, error) {
	data, ok, err := s.kv.Get(ctx, stepsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var steps []domain.Step
	if err := json.Unmarshal([]byte(data), &steps); err != nil {
		return nil, fmt.Errorf("failed to decode steps partition: %w", err)
	}
	return steps, nil
}

func (s *TripStore) saveSteps(ctx context.Context, steps []domain.Step) error {
	data, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("failed to encode steps partition: %w", err)
	}
	return s.kv.Set(ctx, stepsKey, string(data))
}

// List returns all trips in storage order.
func (s *TripStore) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// ListByUser returns the user's trips in storage order, which is
// insertion order. Callers wanting recency order sort on UpdatedAt
// themselves; that is not a store guarantee.
func (s *TripStore) ListByUser(ctx context.Context, userID int64) ([]domain.Trip, error) {
	trips, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	var owned []domain.Trip
	for _, t := range trips {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	return owned, nil
}

// GetByID returns the trip with the given id, or domain.ErrNotFound.
func (s *TripStore) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	trips, err := s.load(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("failed to get trip: %w", err)
	}

	for _, t := range trips {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Trip{}, domain.ErrNotFound
}

// Create persists a new trip with the next counter id, an empty
// activity list, and CreatedAt == UpdatedAt.
func (s *TripStore) Create(ctx context.Context, userID, destinationID int64, name string, startDate, endDate *time.Time) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return domain.Trip{}, err
	}

	trips, err := s.load(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("failed to create trip: %w", err)
	}

	now := s.now()
	s.lastID++
	trip := domain.Trip{
		ID:            s.lastID,
		UserID:        userID,
		DestinationID: destinationID,
		Name:          name,
		StartDate:     startDate,
		EndDate:       endDate,
		Activities:    []domain.Activity{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	trips = append(trips, trip)
	if err := s.save(ctx, trips); err != nil {
		return domain.Trip{}, fmt.Errorf("failed to create trip: %w", err)
	}

	return trip, nil
}

// Update replaces the stored record wholesale with the given trip and
// stamps UpdatedAt with the current time, regardless of what the caller
// supplied. Callers must read-modify-write the full record: there is no
// field-level merge. Returns domain.ErrNotFound when no trip has the
// given id.
func (s *TripStore) Update(ctx context.Context, trip domain.Trip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return err
	}
	return s.update(ctx, trip)
}

// update must be called with s.mu held.
func (s *TripStore) update(ctx context.Context, trip domain.Trip) error {
	trips, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}

	for i := range trips {
		if trips[i].ID == trip.ID {
			trip.UpdatedAt = s.now()
			trips[i] = trip
			if err := s.save(ctx, trips); err != nil {
				return fmt.Errorf("failed to update trip: %w", err)
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

// AddActivity appends an unchecked activity with a time-based id to the
// trip's list. Returns domain.ErrNotFound when the trip is missing.
func (s *TripStore) AddActivity(ctx context.Context, tripID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return err
	}

	trip, err := s.getLocked(ctx, tripID)
	if err != nil {
		return err
	}

	trip.Activities = append(trip.Activities, domain.Activity{
		ID:        s.ids.next(s.now()),
		Text:      text,
		Completed: false,
	})
	return s.update(ctx, trip)
}

// UpdateActivityStatus sets the completed flag of one activity.
// Returns domain.ErrNotFound when the trip or the activity is missing.
func (s *TripStore) UpdateActivityStatus(ctx context.Context, tripID, activityID int64, completed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return err
	}

	trip, err := s.getLocked(ctx, tripID)
	if err != nil {
		return err
	}

	for i := range trip.Activities {
		if trip.Activities[i].ID == activityID {
			trip.Activities[i].Completed = completed
			return s.update(ctx, trip)
		}
	}
	return domain.ErrNotFound
}

// RemoveActivity deletes one activity from the trip's list. Returns
// domain.ErrNotFound when the trip or the activity is missing, the same
// policy as UpdateActivityStatus.
func (s *TripStore) RemoveActivity(ctx context.Context, tripID, activityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return err
	}

	trip, err := s.getLocked(ctx, tripID)
	if err != nil {
		return err
	}

	kept := trip.Activities[:0]
	for _, a := range trip.Activities {
		if a.ID != activityID {
			kept = append(kept, a)
		}
	}
	if len(kept) == len(trip.Activities) {
		return domain.ErrNotFound
	}

	trip.Activities = kept
	return s.update(ctx, trip)
}

// getLocked is GetByID for callers already holding s.mu.
func (s *TripStore) getLocked(ctx context.Context, tripID int64) (domain.Trip, error) {
	trips, err := s.load(ctx)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("failed to get trip: %w", err)
	}
	for _, t := range trips {
		if t.ID == tripID {
			return t, nil
		}
	}
	return domain.Trip{}, domain.ErrNotFound
}

// Delete removes the trip and all steps referencing it. Returns
// domain.ErrNotFound when no trip has the given id; the step partition
// is untouched in that case.
func (s *TripStore) Delete(ctx context.Context, tripID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return err
	}

	trips, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	kept := trips[:0]
	for _, t := range trips {
		if t.ID != tripID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(trips) {
		return domain.ErrNotFound
	}

	if err := s.save(ctx, kept); err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	if err := s.deleteStepsLocked(ctx, tripID); err != nil {
		return fmt.Errorf("failed to delete trip steps: %w", err)
	}
	return nil
}

// AddStep appends a waypoint for the trip and returns its generated id.
// The trip itself is not read or touched; the reference is by id only.
func (s *TripStore) AddStep(ctx context.Context, tripID int64, title, description string, latitude, longitude float64, order int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps, err := s.loadSteps(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to add step: %w", err)
	}

	step := domain.Step{
		ID:          s.ids.next(s.now()),
		TripID:      tripID,
		Title:       title,
		Description: description,
		Latitude:    latitude,
		Longitude:   longitude,
		Order:       order,
	}

	steps = append(steps, step)
	if err := s.saveSteps(ctx, steps); err != nil {
		return 0, fmt.Errorf("failed to add step: %w", err)
	}

	return step.ID, nil
}

// ListSteps returns the trip's waypoints ordered by Order ascending.
func (s *TripStore) ListSteps(ctx context.Context, tripID int64) ([]domain.Step, error) {
	steps, err := s.loadSteps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}

	var owned []domain.Step
	for _, st := range steps {
		if st.TripID == tripID {
			owned = append(owned, st)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].Order < owned[j].Order })
	return owned, nil
}

// DeleteAllSteps removes every step belonging to the trip. Removing
// zero steps is not an error.
func (s *TripStore) DeleteAllSteps(ctx context.Context, tripID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteStepsLocked(ctx, tripID)
}

func (s *TripStore) deleteStepsLocked(ctx context.Context, tripID int64) error {
	steps, err := s.loadSteps(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}

	kept := steps[:0]
	for _, st := range steps {
		if st.TripID != tripID {
			kept = append(kept, st)
		}
	}

	if err := s.saveSteps(ctx, kept); err != nil {
		return fmt.Errorf("failed to delete steps: %w", err)
	}
	return nil
}

// Clear wipes the trip partition and resets the id counter. Steps only
// exist for a trip, so the step partition goes with it, same as Delete.
func (s *TripStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, tripsKey); err != nil {
		return fmt.Errorf("failed to clear trips: %w", err)
	}
	if err := s.kv.Delete(ctx, stepsKey); err != nil {
		return fmt.Errorf("failed to clear steps: %w", err)
	}
	s.lastID = 0
	return nil
}
