package testcases

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/seat_manager"
	"github.com/weedbox/pokertournament/store"
)

// Dealer drives one tournament the way a floor manager would.
type Dealer struct {
	t       *testing.T
	ctx     context.Context
	now     time.Time
	Manager pokertournament.Manager
	Engine  pokertournament.TournamentEngine
}

func NewDealer(t *testing.T, setting pokertournament.TournamentSetting) *Dealer {
	t.Helper()

	d := &Dealer{
		t:   t,
		ctx: context.Background(),
		now: StartTime,
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	d.Manager = pokertournament.NewManager(store.NewMemoryStore(),
		pokertournament.WithManagerClock(clock.NewClock(clock.WithNow(func() time.Time { return d.now }))),
		pokertournament.WithManagerLogger(logger),
		pokertournament.WithManagerSeatManager(seat_manager.NewSeatManager(seat_manager.WithSeed(2024))),
	)

	tour, err := d.Manager.CreateTournament(d.ctx, setting)
	require.NoError(t, err)

	d.Engine, err = d.Manager.GetTournamentEngine(d.ctx, tour.ID)
	require.NoError(t, err)

	return d
}

func (d *Dealer) Wait(duration time.Duration) {
	d.now = d.now.Add(duration)
}

func (d *Dealer) RegisterAll(players []pokertournament.RegisterPlayerRequest) []*model.Registration {
	d.t.Helper()

	registrations := make([]*model.Registration, 0, len(players))
	for _, p := range players {
		r, err := d.Engine.RegisterPlayer(d.ctx, p)
		require.NoError(d.t, err)
		registrations = append(registrations, r)
	}
	return registrations
}

func (d *Dealer) Eliminate(registrationID string, bounty int) *pokertournament.EliminationResult {
	d.t.Helper()

	result, err := d.Engine.EliminatePlayer(d.ctx, pokertournament.EliminatePlayerRequest{
		RegistrationID: registrationID,
		BountyCount:    bounty,
	})
	require.NoError(d.t, err)
	return result
}

func (d *Dealer) Status() *pokertournament.ClockStatus {
	d.t.Helper()

	status, err := d.Engine.GetClockStatus(d.ctx)
	require.NoError(d.t, err)
	return status
}

func (d *Dealer) Tournament() *model.Tournament {
	d.t.Helper()

	tour, err := d.Engine.GetTournament(d.ctx)
	require.NoError(d.t, err)
	return tour
}

// Remaining returns the REGISTERED entries in registration order.
func (d *Dealer) Remaining() []*model.Registration {
	return d.Tournament().RegisteredPlayers()
}

/*
ApplySuggestion 依照拆併桌建議搬移玩家
  - break_table: 依 Movements 逐一搬到目標桌的空位
  - balance: 從人數最多的桌搬 PlayersCount 人到人數最少的桌
*/
func (d *Dealer) ApplySuggestion(suggestion *seat_manager.BalanceSuggestion) {
	d.t.Helper()

	if suggestion == nil {
		return
	}

	tables, err := d.Engine.GetTables(d.ctx)
	require.NoError(d.t, err)

	byNumber := make(map[int]pokertournament.TableView)
	for _, table := range tables {
		byNumber[table.Number] = table
	}

	switch suggestion.Type {
	case seat_manager.Suggestion_BreakTable:
		for _, movement := range suggestion.Movements {
			d.moveToFreeSeat(movement.RegistrationID, movement.ToTableID)
		}
		require.NoError(d.t, d.Engine.DeleteTable(d.ctx, suggestion.TableID))
	case seat_manager.Suggestion_Balance:
		from := byNumber[suggestion.FromTable]
		to := byNumber[suggestion.ToTable]
		for _, seat := range from.Seats[:suggestion.PlayersCount] {
			d.moveToFreeSeat(seat.RegistrationID, to.ID)
		}
	}
}

func (d *Dealer) moveToFreeSeat(registrationID string, tableID string) {
	d.t.Helper()

	tables, err := d.Engine.GetTables(d.ctx)
	require.NoError(d.t, err)

	for _, table := range tables {
		if table.ID != tableID {
			continue
		}

		taken := make(map[int]bool)
		for _, seat := range table.Seats {
			taken[seat.SeatNumber] = true
		}

		for seat := 1; seat <= table.MaxSeats; seat++ {
			if taken[seat] {
				continue
			}

			_, err := d.Engine.MovePlayer(d.ctx, pokertournament.MovePlayerRequest{
				RegistrationID: registrationID,
				TableID:        &table.ID,
				SeatNumber:     &seat,
			})
			require.NoError(d.t, err)
			return
		}
	}

	d.t.Fatalf("no free seat at table %s", tableID)
}
