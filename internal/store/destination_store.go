// Package store contains the partition stores for voyago. Each store
// owns one named partition of the key-value substrate holding a single
// JSON array of records, and follows the same protocol for every
// mutation: read the full partition, mutate in memory, write the full
// partition back. A per-store mutex serializes mutators so overlapping
// calls cannot clobber each other's writes; readers see the latest
// committed blob without coordination, since every write replaces the
// whole value atomically at the substrate level.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tmorel/voyago/internal/domain"
	"github.com/tmorel/voyago/internal/kv"
)

const destinationsKey = "destinations_data"

// DestinationStore owns the travel destination catalog.
type DestinationStore struct {
	kv kv.Store

	mu          sync.Mutex
	initialized bool
	lastID      int64
}

func NewDestinationStore(kv kv.Store) *DestinationStore {
	return &DestinationStore{kv: kv}
}

// Init seeds the id counter from the highest id currently in the
// partition. It is idempotent and safe to call from every screen that
// touches destinations; mutators also run it implicitly.
func (s *DestinationStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.init(ctx)
}

// init must be called with s.mu held. A failed attempt leaves the
// store uninitialized so the next call retries.
func (s *DestinationStore) init(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	destinations, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to init destination store: %w", err)
	}

	for _, d := range destinations {
		if d.ID > s.lastID {
			s.lastID = d.ID
		}
	}

	s.initialized = true
	return nil
}

func (s *DestinationStore) load(ctx context.Context) ([]domain.Destination, error) {
	data, ok, err := s.kv.Get(ctx, destinationsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var destinations []domain.Destination
	if err := json.Unmarshal([]byte(data), &destinations); err != nil {
		return nil, fmt.Errorf("failed to decode destinations partition: %w", err)
	}
	return destinations, nil
}

func (s *DestinationStore) save(ctx context.Context, destinations []domain.Destination) error {
	data, err := json.Marshal(destinations)
	if err != nil {
		return fmt.Errorf("failed to encode destinations partition: %w", err)
	}
	return s.kv.Set(ctx, destinationsKey, string(data))
}

// List returns the full catalog in storage order.
func (s *DestinationStore) List(ctx context.Context) ([]domain.Destination, error) {
	destinations, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}
	return destinations, nil
}

// GetByID returns the destination with the given id, or
// domain.ErrNotFound.
func (s *DestinationStore) GetByID(ctx context.Context, id int64) (domain.Destination, error) {
	destinations, err := s.load(ctx)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("failed to get destination: %w", err)
	}

	for _, d := range destinations {
		if d.ID == id {
			return d, nil
		}
	}
	return domain.Destination{}, domain.ErrNotFound
}

// Add appends a new destination with the next counter id.
func (s *DestinationStore) Add(ctx context.Context, location, name string, rating float64, image string) (domain.Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(ctx); err != nil {
		return domain.Destination{}, err
	}

	destinations, err := s.load(ctx)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("failed to add destination: %w", err)
	}

	s.lastID++
	destination := domain.Destination{
		ID:       s.lastID,
		Location: location,
		Name:     name,
		Rating:   rating,
		Image:    image,
	}

	destinations = append(destinations, destination)
	if err := s.save(ctx, destinations); err != nil {
		return domain.Destination{}, fmt.Errorf("failed to add destination: %w", err)
	}

	return destination, nil
}

// SeedIfEmpty inserts the demo catalog when the partition holds no
// destinations. Safe to run on every startup.
func (s *DestinationStore) SeedIfEmpty(ctx context.Context) error {
	existing, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed destinations: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	seeds := []domain.Destination{
		{Location: "Angleterre", Name: "Londres", Rating: 4.8, Image: "https://picsum.photos/id/1011/800/600"},
		{Location: "Egypte", Name: "Pyramides", Rating: 4.8, Image: "https://picsum.photos/id/1023/800/600"},
		{Location: "Montagnes", Name: "Kirghizistan", Rating: 4.8, Image: "https://picsum.photos/id/1036/800/600"},
	}
	for _, seed := range seeds {
		if _, err := s.Add(ctx, seed.Location, seed.Name, seed.Rating, seed.Image); err != nil {
			return fmt.Errorf("failed to seed destinations: %w", err)
		}
	}
	return nil
}

// Clear wipes the partition and resets the id counter. Destructive;
// callers are expected to gate it behind a confirmation.
func (s *DestinationStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, destinationsKey); err != nil {
		return fmt.Errorf("failed to clear destinations: %w", err)
	}
	s.lastID = 0
	return nil
}
