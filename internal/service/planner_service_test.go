package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorel/voyago/internal/domain"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestClampDates(t *testing.T) {
	start := date(2024, time.July, 10)
	end := date(2024, time.July, 1)

	gotStart, gotEnd := ClampDates(start, end)
	assert.True(t, gotStart.Equal(*start))
	assert.True(t, gotEnd.Equal(start.AddDate(0, 0, 1)), "end should be pushed to the day after start")
}

func TestClampDatesConsistentPairUntouched(t *testing.T) {
	start := date(2024, time.July, 1)
	end := date(2024, time.July, 10)

	gotStart, gotEnd := ClampDates(start, end)
	assert.Same(t, start, gotStart)
	assert.Same(t, end, gotEnd)
}

func TestClampDatesMissingBounds(t *testing.T) {
	start := date(2024, time.July, 1)

	gotStart, gotEnd := ClampDates(start, nil)
	assert.Same(t, start, gotStart)
	assert.Nil(t, gotEnd)

	gotStart, gotEnd = ClampDates(nil, nil)
	assert.Nil(t, gotStart)
	assert.Nil(t, gotEnd)
}

func TestBootstrapSeedsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.planner.Bootstrap(ctx))
	require.NoError(t, env.planner.Bootstrap(ctx))

	destinations, err := env.destinations.List(ctx)
	require.NoError(t, err)
	assert.Len(t, destinations, 3)

	users, err := env.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "tom", users[0].Username)
}

func TestCreateTripClampsDates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trip, err := env.planner.CreateTrip(ctx, 1, 2, "Backwards", date(2024, time.July, 10), date(2024, time.July, 1))
	require.NoError(t, err)

	require.NotNil(t, trip.EndDate)
	assert.True(t, trip.EndDate.After(*trip.StartDate))
}

func TestTripsForUserSortedByRecency(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.destinations.SeedIfEmpty(ctx))

	older, err := env.planner.CreateTrip(ctx, 1, 1, "Older", nil, nil)
	require.NoError(t, err)
	newer, err := env.planner.CreateTrip(ctx, 1, 2, "Newer", nil, nil)
	require.NoError(t, err)

	// Touching the older trip bumps it to the top
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, env.trips.AddActivity(ctx, older.ID, "repack"))

	summaries, err := env.planner.TripsForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, older.ID, summaries[0].ID)
	assert.Equal(t, newer.ID, summaries[1].ID)

	require.NotNil(t, summaries[0].Destination)
	assert.Equal(t, "Londres", summaries[0].Destination.Name)
}

func TestTripsForUserDanglingDestination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.planner.CreateTrip(ctx, 1, 999, "Nowhere", nil, nil)
	require.NoError(t, err)

	summaries, err := env.planner.TripsForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Nil(t, summaries[0].Destination)
}

func TestRescheduleTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trip, err := env.planner.CreateTrip(ctx, 1, 1, "Summer", date(2024, time.July, 1), date(2024, time.July, 10))
	require.NoError(t, err)

	updated, err := env.planner.RescheduleTrip(ctx, 1, trip.ID, date(2024, time.August, 1), date(2024, time.August, 15))
	require.NoError(t, err)
	assert.True(t, updated.StartDate.Equal(*date(2024, time.August, 1)))
	assert.True(t, updated.EndDate.Equal(*date(2024, time.August, 15)))
}

func TestRescheduleTripNotOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trip, err := env.planner.CreateTrip(ctx, 1, 1, "Private", nil, nil)
	require.NoError(t, err)

	_, err = env.planner.RescheduleTrip(ctx, 2, trip.ID, date(2024, time.August, 1), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.destinations.SeedIfEmpty(ctx))
	trip, err := env.planner.CreateTrip(ctx, 1, 2, "Detail", nil, nil)
	require.NoError(t, err)

	_, err = env.planner.ReplaceSteps(ctx, 1, trip.ID, []StepInput{
		{Title: "Airport", Latitude: 48.86, Longitude: 2.35},
	})
	require.NoError(t, err)

	got, destination, steps, err := env.planner.TripDetails(ctx, 1, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
	require.NotNil(t, destination)
	assert.Equal(t, "Pyramides", destination.Name)
	require.Len(t, steps, 1)
	assert.Equal(t, "Airport", steps[0].Title)
}

func TestReplaceStepsRenumbers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trip, err := env.planner.CreateTrip(ctx, 1, 1, "Waypoints", nil, nil)
	require.NoError(t, err)

	_, err = env.planner.ReplaceSteps(ctx, 1, trip.ID, []StepInput{
		{Title: "a", Latitude: 1, Longitude: 1},
		{Title: "b", Latitude: 2, Longitude: 2},
		{Title: "c", Latitude: 3, Longitude: 3},
	})
	require.NoError(t, err)

	steps, err := env.planner.ReplaceSteps(ctx, 1, trip.ID, []StepInput{
		{Title: "x", Latitude: 4, Longitude: 4},
		{Title: "y", Latitude: 5, Longitude: 5},
	})
	require.NoError(t, err)

	require.Len(t, steps, 2)
	assert.Equal(t, 1, steps[0].Order)
	assert.Equal(t, 2, steps[1].Order)
	assert.Equal(t, "x", steps[0].Title)
	assert.Equal(t, "y", steps[1].Title)
}

func TestReplaceStepsNotOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trip, err := env.planner.CreateTrip(ctx, 1, 1, "Private", nil, nil)
	require.NoError(t, err)

	_, err = env.planner.ReplaceSteps(ctx, 2, trip.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	trip, err := env.planner.CreateTrip(ctx, 1, 1, "Doomed", nil, nil)
	require.NoError(t, err)
	_, err = env.planner.ReplaceSteps(ctx, 1, trip.ID, []StepInput{{Title: "stop"}})
	require.NoError(t, err)

	require.NoError(t, env.planner.DeleteTrip(ctx, 1, trip.ID))

	_, _, _, err = env.planner.TripDetails(ctx, 1, trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	steps, err := env.trips.ListSteps(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)

	assert.ErrorIs(t, env.planner.DeleteTrip(ctx, 1, trip.ID), domain.ErrNotFound)
}
