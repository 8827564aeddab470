package pokertournament

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
	"github.com/weedbox/pokertournament/seat_manager"
	"github.com/weedbox/pokertournament/store"
)

type fakeTime struct {
	now time.Time
}

func (ft *fakeTime) Now() time.Time {
	return ft.now
}

func (ft *fakeTime) Advance(d time.Duration) {
	ft.now = ft.now.Add(d)
}

func newTestManager(t *testing.T, st store.Store, callbacks *TournamentEngineCallbacks) (Manager, *fakeTime) {
	t.Helper()

	ft := &fakeTime{now: time.Date(2024, 5, 10, 19, 0, 0, 0, time.UTC)}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts := []ManagerOpt{
		WithManagerClock(clock.NewClock(clock.WithNow(ft.Now))),
		WithManagerLogger(logger),
		WithManagerSeatManager(seat_manager.NewSeatManager(seat_manager.WithSeed(7))),
	}
	if callbacks != nil {
		opts = append(opts, WithManagerCallbacks(callbacks))
	}

	return NewManager(st, opts...), ft
}

func newTestTournament(t *testing.T, tt model.TournamentType, players int) (TournamentEngine, *fakeTime) {
	t.Helper()

	m, ft := newTestManager(t, store.NewMemoryStore(), nil)
	te, _ := createTournament(t, m, tt)
	registerPlayers(t, te, players)
	return te, ft
}

func createTournament(t *testing.T, m Manager, tt model.TournamentType) (TournamentEngine, *model.Tournament) {
	t.Helper()

	ctx := context.Background()
	buyIn := int64(100)
	template := blind.DefaultTemplate()
	setting := TournamentSetting{
		Name:     "Friday Night",
		Type:     tt,
		Template: &template,
	}
	if tt == model.TournamentType_Paid {
		setting.BuyIn = &buyIn
	}

	tour, err := m.CreateTournament(ctx, setting)
	require.NoError(t, err)

	te, err := m.GetTournamentEngine(ctx, tour.ID)
	require.NoError(t, err)
	return te, tour
}

func registerPlayers(t *testing.T, te TournamentEngine, count int) []*model.Registration {
	t.Helper()

	registrations := make([]*model.Registration, 0, count)
	for i := 1; i <= count; i++ {
		r, err := te.RegisterPlayer(context.Background(), RegisterPlayerRequest{Name: fmt.Sprintf("Player %d", i)})
		require.NoError(t, err)
		registrations = append(registrations, r)
	}
	return registrations
}

func TestCreateTournament(t *testing.T) {
	ctx := context.Background()
	m, ft := newTestManager(t, store.NewMemoryStore(), nil)

	tour, err := m.CreateTournament(ctx, TournamentSetting{Name: "Weekly"})
	require.NoError(t, err)
	assert.NotEmpty(t, tour.ID)
	assert.Equal(t, model.TournamentType_Paid, tour.Type)
	assert.Equal(t, model.DefaultStack, tour.Stack)
	assert.Equal(t, clock.Status_Scheduled, tour.Clock.Status)
	assert.Equal(t, ft.Now(), tour.Date)
	assert.Equal(t, 0, tour.Levels.Len())
	require.Len(t, tour.Events, 1)
	assert.Equal(t, model.GameEventType_TournamentCreated, tour.Events[0].Type)

	template, err := m.GetTemplate("standard")
	require.NoError(t, err)
	tour, err = m.CreateTournament(ctx, TournamentSetting{Name: "From template", Template: &template})
	require.NoError(t, err)
	assert.Equal(t, template.Levels.Len(), tour.Levels.Len())
	assert.NotEqual(t, template.Levels[0].ID, tour.Levels[0].ID)

	_, err = m.CreateTournament(ctx, TournamentSetting{Name: "  "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.CreateTournament(ctx, TournamentSetting{Name: "Odd", Type: "CASH"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = m.GetTournamentEngine(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClock_PauseThenStartKeepsRemaining(t *testing.T) {
	ctx := context.Background()
	te, ft := newTestTournament(t, model.TournamentType_Paid, 0)

	result, err := te.StartClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_Started, result.Result)
	assert.Equal(t, 900, result.Status.RemainingSeconds)

	ft.Advance(100 * time.Second)
	result, err = te.PauseClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_Paused, result.Result)
	assert.Equal(t, 800, result.Status.RemainingSeconds)

	// time spent paused does not count
	ft.Advance(time.Hour)
	status, err := te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 800, status.RemainingSeconds)

	result, err = te.StartClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 800, result.Status.RemainingSeconds)

	ft.Advance(30 * time.Second)
	status, err = te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Status_Running, status.Status)
	assert.Equal(t, 770, status.RemainingSeconds)
	assert.Equal(t, int64(50), status.Level.BigBlind)
	assert.Equal(t, int64(100), status.NextLevel.BigBlind)
}

func TestClock_NoOpResultsDoNotMutate(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 0)

	result, err := te.PauseClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_NotRunning, result.Result)

	_, err = te.StartClock(ctx)
	require.NoError(t, err)
	before, err := te.GetEvents(ctx)
	require.NoError(t, err)

	result, err = te.StartClock(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_AlreadyRunning, result.Result)

	after, err := te.GetEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestClock_AdvanceLevelBounds(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 0)

	levels, err := te.GetLevels(ctx)
	require.NoError(t, err)

	result, err := te.AdvanceLevel(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_MinLevelReached, result.Result)
	assert.Equal(t, 0, result.Status.CurrentLevelIndex)

	for i := 1; i < levels.Len(); i++ {
		result, err = te.AdvanceLevel(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, clock.Result_LevelAdvanced, result.Result)
	}

	result, err = te.AdvanceLevel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_MaxLevelReached, result.Result)
	assert.Equal(t, levels.Len()-1, result.Status.CurrentLevelIndex)
	assert.Nil(t, result.Status.NextLevel)

	_, err = te.AdvanceLevel(ctx, 2)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestClock_SetTimerAndBreak(t *testing.T) {
	ctx := context.Background()
	te, ft := newTestTournament(t, model.TournamentType_Paid, 0)

	result, err := te.SetTimer(ctx, SetTimerRequest{Minutes: 5, Seconds: 30})
	require.NoError(t, err)
	assert.Equal(t, clock.Result_TimerSet, result.Result)
	assert.Equal(t, 330, result.Status.RemainingSeconds)

	_, err = te.SetTimer(ctx, SetTimerRequest{Minutes: -1})
	assert.ErrorIs(t, err, ErrValidation)

	result, err = te.StartBreak(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_BreakStarted, result.Result)
	assert.Equal(t, clock.Status_Break, result.Status.Status)
	assert.Equal(t, 15*60, result.Status.RemainingSeconds)
	assert.Equal(t, 0, result.Status.CurrentLevelIndex)

	ft.Advance(20 * time.Minute)
	status, err := te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.RemainingSeconds)
}

func TestFinishTournament(t *testing.T) {
	ctx := context.Background()
	te, ft := newTestTournament(t, model.TournamentType_Paid, 0)

	_, err := te.StartClock(ctx)
	require.NoError(t, err)
	ft.Advance(time.Minute)

	result, err := te.FinishTournament(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_Finished, result.Result)
	assert.Equal(t, 840, result.Status.RemainingSeconds)

	result, err = te.FinishTournament(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Result_Finished, result.Result)

	_, err = te.StartClock(ctx)
	assert.ErrorIs(t, err, ErrTournamentFinished)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = te.AdvanceLevel(ctx, 1)
	assert.ErrorIs(t, err, ErrTournamentFinished)
}

func TestRegisterPlayer(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m, _ := newTestManager(t, st, nil)
	te, _ := createTournament(t, m, model.TournamentType_Paid)

	player, err := m.CreatePlayer(ctx, RegisterPlayerRequest{Name: "Alice", Username: "ace"})
	require.NoError(t, err)

	r, err := te.RegisterPlayer(ctx, RegisterPlayerRequest{PlayerID: player.ID})
	require.NoError(t, err)
	assert.Equal(t, "ace", r.PlayerName)
	assert.Equal(t, model.RegistrationStatus_Registered, r.Status)

	_, err = te.RegisterPlayer(ctx, RegisterPlayerRequest{PlayerID: player.ID})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = te.RegisterPlayer(ctx, RegisterPlayerRequest{PlayerID: "missing"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = te.RegisterPlayer(ctx, RegisterPlayerRequest{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = te.SetRegistrationClosed(ctx, true)
	require.NoError(t, err)
	_, err = te.RegisterPlayer(ctx, RegisterPlayerRequest{Name: "Late"})
	assert.ErrorIs(t, err, ErrRegistrationClosed)

	_, err = te.SetRegistrationClosed(ctx, false)
	require.NoError(t, err)
	_, err = te.RegisterPlayer(ctx, RegisterPlayerRequest{Name: "Late"})
	require.NoError(t, err)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 2)
}

func TestSearchPlayers_ExcludesRegistered(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, store.NewMemoryStore(), nil)
	te, tour := createTournament(t, m, model.TournamentType_Free)

	alice, err := m.CreatePlayer(ctx, RegisterPlayerRequest{Name: "Alice"})
	require.NoError(t, err)
	_, err = m.CreatePlayer(ctx, RegisterPlayerRequest{Name: "Alison"})
	require.NoError(t, err)

	_, err = te.RegisterPlayer(ctx, RegisterPlayerRequest{PlayerID: alice.ID})
	require.NoError(t, err)

	found, err := m.SearchPlayers(ctx, tour.ID, "ali")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alison", found[0].FirstName)

	found, err = m.SearchPlayers(ctx, tour.ID, "a")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestEliminatePlayer_FreeTournament(t *testing.T) {
	ctx := context.Background()
	te, ft := newTestTournament(t, model.TournamentType_Free, 9)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)

	_, err = te.StartClock(ctx)
	require.NoError(t, err)
	ft.Advance(5 * time.Minute)

	result, err := te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: players[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 9, result.Place)
	assert.Equal(t, 1, result.Points)
	assert.Nil(t, result.PayoutAmount)
	assert.True(t, result.LevelAdvanced)
	require.NotNil(t, result.NewLevel)
	assert.Equal(t, 2, *result.NewLevel)

	status, err := te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, status.PlayersRemaining)
	assert.Equal(t, 1, status.CurrentLevelIndex)
	// remaining time carries over into the next level
	assert.Equal(t, 600, status.RemainingSeconds)

	// bounties add to the score
	result, err = te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: players[1].ID, BountyCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 8, result.Place)
	assert.Equal(t, 4, result.Points)

	_, err = te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: players[1].ID})
	assert.ErrorIs(t, err, ErrAlreadyEliminated)

	_, err = te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: "missing"})
	assert.ErrorIs(t, err, ErrRegistrationNotFound)

	_, err = te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: players[2].ID, BountyCount: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEliminatePlayer_PlacesStrictlyDecrease(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 6)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)

	for i, r := range players {
		result, err := te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: r.ID})
		require.NoError(t, err)
		assert.Equal(t, 6-i, result.Place)
		assert.Equal(t, 0, result.Points)
		assert.False(t, result.LevelAdvanced)
	}

	ordered, err := te.GetPlayers(ctx)
	require.NoError(t, err)
	for i, r := range ordered {
		require.NotNil(t, r.Place)
		assert.Equal(t, i+1, *r.Place)
	}
}

func TestEliminatePlayer_BindsPayout(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 15)

	view, err := te.GeneratePayouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), view.PrizePool)
	require.Len(t, view.Payouts, 3)
	assert.Equal(t, int64(750), view.Payouts[0].Amount)
	assert.Equal(t, int64(450), view.Payouts[1].Amount)
	assert.Equal(t, int64(300), view.Payouts[2].Amount)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)

	for _, r := range players[:12] {
		result, err := te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: r.ID})
		require.NoError(t, err)
		assert.Nil(t, result.PayoutAmount)
	}

	result, err := te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: players[12].ID})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Place)
	require.NotNil(t, result.PayoutAmount)
	assert.Equal(t, int64(300), *result.PayoutAmount)

	view, err = te.GetPayouts(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.Payouts[2].PlayerID)
	assert.Equal(t, players[12].PlayerID, *view.Payouts[2].PlayerID)
	assert.Equal(t, players[12].PlayerName, view.Payouts[2].PlayerName)
	assert.Nil(t, view.Payouts[0].PlayerID)
}

func TestRebuyAndAddon_NoStatusGuard(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 3)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)

	_, err = te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: players[0].ID})
	require.NoError(t, err)

	r, err := te.Rebuy(ctx, players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Rebuys)
	assert.Equal(t, model.RegistrationStatus_Eliminated, r.Status)

	r, err = te.Addon(ctx, players[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Addons)

	status, err := te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, status.TotalEntries)
	assert.Equal(t, int64(500), status.PrizePool)
	assert.Equal(t, 2, status.PlayersRemaining)
	assert.Equal(t, int64(25000), status.AverageStack)

	_, err = te.Rebuy(ctx, "missing")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 2)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)

	_, err = te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: players[0].ID})
	require.NoError(t, err)

	err = te.Unregister(ctx, players[0].ID)
	assert.ErrorIs(t, err, ErrCannotUnregisterEliminated)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, te.Unregister(ctx, players[1].ID))
	remaining, err := te.GetPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestGenerateTables(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 10)

	result, err := te.GenerateTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, seat_manager.SeatingStatus_Generated, result.Status)
	assert.Equal(t, 2, result.TableCount)

	tables, err := te.GetTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	for i, table := range tables {
		assert.Equal(t, i+1, table.Number)
		assert.Len(t, table.Seats, 5)
		seen := map[int]bool{}
		for _, seat := range table.Seats {
			assert.False(t, seen[seat.SeatNumber])
			seen[seat.SeatNumber] = true
			assert.Equal(t, model.DefaultStack, seat.Stack)
		}
	}

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)
	for _, r := range players {
		assert.True(t, r.IsSeated())
	}

	require.NoError(t, te.ClearTables(ctx))
	tables, err = te.GetTables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	players, err = te.GetPlayers(ctx)
	require.NoError(t, err)
	for _, r := range players {
		assert.False(t, r.IsSeated())
	}
}

func TestGenerateTables_NoPlayers(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 0)

	_, err := te.AddTable(ctx, AddTableRequest{})
	require.NoError(t, err)

	result, err := te.GenerateTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, seat_manager.SeatingStatus_NoPlayers, result.Status)

	tables, err := te.GetTables(ctx)
	require.NoError(t, err)
	assert.Len(t, tables, 1)
}

func TestSeatSelectedPlayers(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 3)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)
	ids := []string{players[0].ID, players[1].ID, players[2].ID}

	result, err := te.SeatSelectedPlayers(ctx, SeatPlayersRequest{RegistrationIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, seat_manager.SeatingStatus_NoTables, result.Status)

	seats := 2
	table, err := te.AddTable(ctx, AddTableRequest{MaxSeats: &seats})
	require.NoError(t, err)
	assert.Equal(t, 1, table.TableNumber)

	result, err = te.SeatSelectedPlayers(ctx, SeatPlayersRequest{RegistrationIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, seat_manager.SeatingStatus_PlayersSeated, result.Status)
	assert.Equal(t, 2, result.Seated)
	assert.Equal(t, 3, result.Requested)

	result, err = te.SeatSelectedPlayers(ctx, SeatPlayersRequest{RegistrationIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, seat_manager.SeatingStatus_NoSpace, result.Status)

	_, err = te.AddTable(ctx, AddTableRequest{})
	require.NoError(t, err)
	result, err = te.SeatSelectedPlayers(ctx, SeatPlayersRequest{RegistrationIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Seated)

	result, err = te.SeatSelectedPlayers(ctx, SeatPlayersRequest{RegistrationIDs: ids})
	require.NoError(t, err)
	assert.Equal(t, seat_manager.SeatingStatus_AlreadySeated, result.Status)

	_, err = te.SeatSelectedPlayers(ctx, SeatPlayersRequest{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMovePlayer(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 4)

	_, err := te.GenerateTables(ctx)
	require.NoError(t, err)

	tables, err := te.GetTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 1)
	require.Len(t, tables[0].Seats, 4)

	occupied := tables[0].Seats[0]
	mover := tables[0].Seats[1]

	_, err = te.MovePlayer(ctx, MovePlayerRequest{
		RegistrationID: mover.RegistrationID,
		TableID:        &tables[0].ID,
		SeatNumber:     &occupied.SeatNumber,
	})
	assert.ErrorIs(t, err, ErrSeatTaken)
	assert.ErrorIs(t, err, ErrConflict)

	outOfRange := 10
	_, err = te.MovePlayer(ctx, MovePlayerRequest{
		RegistrationID: mover.RegistrationID,
		TableID:        &tables[0].ID,
		SeatNumber:     &outOfRange,
	})
	assert.ErrorIs(t, err, ErrValidation)

	free := freeSeat(tables[0])
	result, err := te.MovePlayer(ctx, MovePlayerRequest{
		RegistrationID: mover.RegistrationID,
		TableID:        &tables[0].ID,
		SeatNumber:     &free,
	})
	require.NoError(t, err)
	assert.Equal(t, free, *result.Registration.SeatNumber)

	result, err = te.MovePlayer(ctx, MovePlayerRequest{RegistrationID: mover.RegistrationID})
	require.NoError(t, err)
	assert.False(t, result.Registration.IsSeated())

	missing := "missing"
	_, err = te.MovePlayer(ctx, MovePlayerRequest{RegistrationID: mover.RegistrationID, TableID: &missing, SeatNumber: &free})
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func freeSeat(table TableView) int {
	taken := map[int]bool{}
	for _, seat := range table.Seats {
		taken[seat.SeatNumber] = true
	}
	for seat := 1; seat <= table.MaxSeats; seat++ {
		if !taken[seat] {
			return seat
		}
	}
	return seat_manager.UnsetSeat
}

func TestDeleteTable(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 2)

	_, err := te.GenerateTables(ctx)
	require.NoError(t, err)
	tables, err := te.GetTables(ctx)
	require.NoError(t, err)

	err = te.DeleteTable(ctx, tables[0].ID)
	assert.ErrorIs(t, err, ErrTableNotEmpty)

	empty, err := te.AddTable(ctx, AddTableRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, empty.TableNumber)
	assert.Equal(t, seat_manager.DefaultMaxSeats, empty.MaxSeats)

	require.NoError(t, te.DeleteTable(ctx, empty.ID))
	assert.ErrorIs(t, te.DeleteTable(ctx, empty.ID), ErrTableNotFound)
}

func TestEliminatePlayer_SuggestsBalance(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 12)

	_, err := te.GenerateTables(ctx)
	require.NoError(t, err)
	tables, err := te.GetTables(ctx)
	require.NoError(t, err)
	require.Len(t, tables, 2)

	var result *EliminationResult
	for _, seat := range tables[0].Seats[:3] {
		result, err = te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: seat.RegistrationID})
		require.NoError(t, err)
	}

	// {3, 6} fits on one table of 9
	require.NotNil(t, result.BalanceSuggestion)
	assert.Equal(t, seat_manager.Suggestion_BreakTable, result.BalanceSuggestion.Type)
	assert.Equal(t, 1, result.BalanceSuggestion.TableNumber)
	require.Len(t, result.BalanceSuggestion.Movements, 3)
	for _, movement := range result.BalanceSuggestion.Movements {
		assert.Equal(t, 2, movement.ToTable)
	}

	suggestion, err := te.CheckTableBalance(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.BalanceSuggestion, suggestion)
}

func TestLevels(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 0)

	levels, err := te.GetLevels(ctx)
	require.NoError(t, err)
	count := levels.Len()

	_, err = te.AddLevel(ctx, AddLevelRequest{Level: blind.Level{Number: 1, SmallBlind: 10, BigBlind: 20}})
	assert.ErrorIs(t, err, ErrDuplicateLevel)

	added, err := te.AddLevel(ctx, AddLevelRequest{Level: blind.Level{Number: 11, SmallBlind: 800, BigBlind: 1600}})
	require.NoError(t, err)
	assert.Equal(t, blind.DefaultDurationMins, added.DurationMins)

	bb := int64(2000)
	updated, err := te.UpdateLevel(ctx, added.ID, blind.LevelPatch{BigBlind: &bb})
	require.NoError(t, err)
	assert.Equal(t, int64(800), updated.SmallBlind)
	assert.Equal(t, bb, updated.BigBlind)

	zero := 0
	_, err = te.UpdateLevel(ctx, added.ID, blind.LevelPatch{DurationMins: &zero})
	assert.ErrorIs(t, err, ErrValidation)

	// deleting the current final level pulls the clock back in range
	for i := 0; i < count; i++ {
		_, err = te.AdvanceLevel(ctx, 1)
		require.NoError(t, err)
	}
	require.NoError(t, te.DeleteLevel(ctx, added.ID))

	status, err := te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, count-1, status.CurrentLevelIndex)

	assert.ErrorIs(t, te.DeleteLevel(ctx, added.ID), ErrLevelNotFound)
}

func TestPayouts(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Free, 4)

	_, err := te.GeneratePayouts(ctx)
	assert.ErrorIs(t, err, ErrZeroPrizePool)

	place, amount := 1, int64(50)
	added, err := te.AddPayout(ctx, AddPayoutRequest{Place: &place, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Place 1", added.Description)

	_, err = te.AddPayout(ctx, AddPayoutRequest{Place: &place})
	assert.ErrorIs(t, err, ErrValidation)

	description := "Voucher"
	updated, err := te.UpdatePayout(ctx, added.ID, UpdatePayoutRequest{PayoutPatch: payout.PayoutPatch{Description: &description}})
	require.NoError(t, err)
	assert.Equal(t, amount, updated.Amount)
	assert.Equal(t, "Voucher", updated.Description)

	view, err := te.GetPayouts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, view.PlacesPaid)
	assert.Equal(t, int64(0), view.PrizePool)

	require.NoError(t, te.DeletePayout(ctx, added.ID))
	assert.ErrorIs(t, te.DeletePayout(ctx, added.ID), ErrPayoutNotFound)
}

func TestCallbacksAndEvents(t *testing.T) {
	ctx := context.Background()

	events := make([]model.GameEventType, 0)
	eliminated := 0
	callbacks := &TournamentEngineCallbacks{
		OnTournamentEvent: func(e model.GameEvent) {
			events = append(events, e.Type)
		},
		OnPlayerEliminated: func(string, EliminationResult) {
			eliminated++
		},
	}

	m, _ := newTestManager(t, store.NewMemoryStore(), callbacks)
	te, _ := createTournament(t, m, model.TournamentType_Free)
	registrations := registerPlayers(t, te, 2)

	_, err := te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: registrations[0].ID})
	require.NoError(t, err)

	assert.Equal(t, []model.GameEventType{
		model.GameEventType_TournamentCreated,
		model.GameEventType_PlayerRegistered,
		model.GameEventType_PlayerRegistered,
		model.GameEventType_PlayerEliminated,
		model.GameEventType_LevelChanged,
	}, events)
	assert.Equal(t, 1, eliminated)

	logged, err := te.GetEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, logged, len(events))
}

type failingStore struct {
	store.Store
}

func (fs *failingStore) SaveTournament(ctx context.Context, t *model.Tournament) error {
	return errors.New("disk full")
}

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m, _ := newTestManager(t, &failingStore{Store: st}, nil)
	te, tour := createTournament(t, m, model.TournamentType_Paid)

	var reported error
	te.OnTournamentErrorUpdated(func(tournamentID string, err error) {
		reported = err
	})

	_, err := te.StartClock(ctx)
	require.Error(t, err)
	assert.Nil(t, ErrorKind(err))
	assert.Equal(t, err, reported)

	loaded, err := st.LoadTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, clock.Status_Scheduled, loaded.Clock.Status)
	assert.Len(t, loaded.Events, 1)
}

func TestEliminatePlayer_ConcurrentPlacesAreUnique(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Free, 30)

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		places []int
	)
	for _, r := range players[1:] {
		wg.Add(1)
		go func(registrationID string) {
			defer wg.Done()

			result, err := te.EliminatePlayer(ctx, EliminatePlayerRequest{RegistrationID: registrationID})
			if !assert.NoError(t, err) {
				return
			}

			mu.Lock()
			places = append(places, result.Place)
			mu.Unlock()
		}(r.ID)
	}
	wg.Wait()

	sort.Ints(places)
	expected := make([]int, 0, 29)
	for place := 2; place <= 30; place++ {
		expected = append(expected, place)
	}
	assert.Equal(t, expected, places)

	status, err := te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.PlayersRemaining)
}

func TestSeating_ConcurrentSeatsAreUnique(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 18)

	seats := 9
	for i := 0; i < 2; i++ {
		_, err := te.AddTable(ctx, AddTableRequest{MaxSeats: &seats})
		require.NoError(t, err)
	}

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, r := range players {
		wg.Add(1)
		go func(registrationID string) {
			defer wg.Done()

			result, err := te.SeatSelectedPlayers(ctx, SeatPlayersRequest{RegistrationIDs: []string{registrationID}})
			if assert.NoError(t, err) {
				assert.Equal(t, 1, result.Seated)
			}
		}(r.ID)
	}
	wg.Wait()

	target, err := te.AddTable(ctx, AddTableRequest{MaxSeats: &seats})
	require.NoError(t, err)
	seatNumber := 1

	var (
		mu    sync.Mutex
		moved int
		taken int
	)
	for _, r := range players[:10] {
		wg.Add(1)
		go func(registrationID string) {
			defer wg.Done()

			_, err := te.MovePlayer(ctx, MovePlayerRequest{
				RegistrationID: registrationID,
				TableID:        &target.ID,
				SeatNumber:     &seatNumber,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				moved++
			case errors.Is(err, ErrSeatTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(r.ID)
	}
	wg.Wait()

	assert.Equal(t, 1, moved)
	assert.Equal(t, 9, taken)

	players, err = te.GetPlayers(ctx)
	require.NoError(t, err)

	occupied := make(map[string]string)
	for _, r := range players {
		require.True(t, r.IsSeated(), r.PlayerName)
		key := fmt.Sprintf("%s/%d", *r.TableID, *r.SeatNumber)
		assert.Empty(t, occupied[key], "%s shares %s with %s", r.PlayerName, key, occupied[key])
		occupied[key] = r.PlayerName
	}
	assert.Len(t, occupied, 18)
}

func TestCallbacks_CanCallBackIntoEngine(t *testing.T) {
	ctx := context.Background()
	te, _ := newTestTournament(t, model.TournamentType_Paid, 2)

	var paused *ClockResult
	te.OnTournamentEvent(func(e model.GameEvent) {
		if e.Type != model.GameEventType_ClockStarted {
			return
		}

		result, err := te.PauseClock(ctx)
		if assert.NoError(t, err) {
			paused = result
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := te.StartClock(ctx)
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("StartClock blocked on a callback calling back into the engine")
	}

	require.NotNil(t, paused)
	assert.Equal(t, clock.Result_Paused, paused.Result)

	status, err := te.GetClockStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.Status_Paused, status.Status)
}

func TestGetPlayers_SeatedNeedsTableAndSeat(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	m, _ := newTestManager(t, st, nil)
	te, tour := createTournament(t, m, model.TournamentType_Paid)
	registrations := registerPlayers(t, te, 3)

	loaded, err := st.LoadTournament(ctx, tour.ID)
	require.NoError(t, err)

	// a table without a seat number does not count as seated
	tableID := "table-1"
	loaded.FindRegistration(registrations[1].ID).TableID = &tableID
	loaded.FindRegistration(registrations[2].ID).Seat(tableID, 4)
	require.NoError(t, st.SaveTournament(ctx, loaded))

	players, err := te.GetPlayers(ctx)
	require.NoError(t, err)
	require.Len(t, players, 3)
	assert.Equal(t, registrations[2].ID, players[0].ID)
	assert.Equal(t, registrations[0].ID, players[1].ID)
	assert.Equal(t, registrations[1].ID, players[2].ID)
}
