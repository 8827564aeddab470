package testcases

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/store/bunstore"
)

func TestPersistence_ReopenFromSQLite(t *testing.T) {
	ctx := context.Background()

	bs, err := bunstore.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	defer bs.Close()
	require.NoError(t, bs.CreateSchema(ctx))

	now := StartTime
	c := clock.NewClock(clock.WithNow(func() time.Time { return now }))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	manager := pokertournament.NewManager(bs,
		pokertournament.WithManagerClock(c),
		pokertournament.WithManagerLogger(logger),
	)

	tour, err := manager.CreateTournament(ctx, NewDefaultTournamentSetting(model.TournamentType_Free, 0))
	require.NoError(t, err)

	engine, err := manager.GetTournamentEngine(ctx, tour.ID)
	require.NoError(t, err)

	registrations := make([]*model.Registration, 0)
	for _, p := range NewFakePlayers(3, 6) {
		r, err := engine.RegisterPlayer(ctx, p)
		require.NoError(t, err)
		registrations = append(registrations, r)
	}

	_, err = engine.GenerateTables(ctx)
	require.NoError(t, err)

	_, err = engine.StartClock(ctx)
	require.NoError(t, err)

	now = now.Add(4 * time.Minute)
	result, err := engine.EliminatePlayer(ctx, pokertournament.EliminatePlayerRequest{RegistrationID: registrations[2].ID, BountyCount: 1})
	require.NoError(t, err)
	assert.Equal(t, 6, result.Place)
	assert.Equal(t, 2, result.Points)

	// a fresh manager sees exactly what the first one saved
	reopened := pokertournament.NewManager(bs,
		pokertournament.WithManagerClock(c),
		pokertournament.WithManagerLogger(logger),
	)

	engine, err = reopened.GetTournamentEngine(ctx, tour.ID)
	require.NoError(t, err)

	status, err := engine.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Status_Running, status.Status)
	assert.Equal(t, 1, status.CurrentLevelIndex)
	assert.Equal(t, 20*60-4*60, status.RemainingSeconds)
	assert.Equal(t, 5, status.PlayersRemaining)

	players, err := engine.GetPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 6)
	assert.Equal(t, registrations[2].ID, players[5].ID)
	for _, r := range players[:5] {
		assert.True(t, r.IsSeated(), r.PlayerName)
	}

	events, err := engine.GetEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.GameEventType_TournamentCreated, events[0].Type)
	assert.Equal(t, model.GameEventType_LevelChanged, events[len(events)-1].Type)

	found, err := reopened.SearchPlayers(ctx, tour.ID, registrations[0].PlayerName[:2])
	require.NoError(t, err)
	for _, p := range found {
		assert.NotEqual(t, registrations[0].PlayerID, p.ID)
	}
}
