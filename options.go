package pokertournament

import (
	"github.com/sirupsen/logrus"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
	"github.com/weedbox/pokertournament/seat_manager"
)

type TournamentEngineCallbacks struct {
	OnTournamentUpdated      func(t *model.Tournament)
	OnTournamentErrorUpdated func(tournamentID string, err error)
	OnTournamentEvent        func(event model.GameEvent)
	OnPlayerEliminated       func(tournamentID string, result EliminationResult)
}

func NewTournamentEngineCallbacks() *TournamentEngineCallbacks {
	return &TournamentEngineCallbacks{
		OnTournamentUpdated:      func(*model.Tournament) {},
		OnTournamentErrorUpdated: func(string, error) {},
		OnTournamentEvent:        func(model.GameEvent) {},
		OnPlayerEliminated:       func(string, EliminationResult) {},
	}
}

// Merge chains the callbacks set in other after the ones already set, so
// several subscribers (metrics, event bus) can share one engine.
func (cb *TournamentEngineCallbacks) Merge(other *TournamentEngineCallbacks) *TournamentEngineCallbacks {
	if other == nil {
		return cb
	}

	prevUpdated, prevError, prevEvent, prevEliminated := cb.OnTournamentUpdated, cb.OnTournamentErrorUpdated, cb.OnTournamentEvent, cb.OnPlayerEliminated
	if other.OnTournamentUpdated != nil {
		cb.OnTournamentUpdated = func(t *model.Tournament) {
			prevUpdated(t)
			other.OnTournamentUpdated(t)
		}
	}
	if other.OnTournamentErrorUpdated != nil {
		cb.OnTournamentErrorUpdated = func(id string, err error) {
			prevError(id, err)
			other.OnTournamentErrorUpdated(id, err)
		}
	}
	if other.OnTournamentEvent != nil {
		cb.OnTournamentEvent = func(e model.GameEvent) {
			prevEvent(e)
			other.OnTournamentEvent(e)
		}
	}
	if other.OnPlayerEliminated != nil {
		cb.OnPlayerEliminated = func(id string, r EliminationResult) {
			prevEliminated(id, r)
			other.OnPlayerEliminated(id, r)
		}
	}

	return cb
}

type TournamentEngineOptions struct {
	MaxSeats          int              // 每桌人數上限
	BreakDurationMins int              // 預設休息時間 (分鐘)
	Paytable          *payout.Paytable // 獎金分配表
}

func NewTournamentEngineOptions() *TournamentEngineOptions {
	return &TournamentEngineOptions{
		MaxSeats:          seat_manager.DefaultMaxSeats,
		BreakDurationMins: clock.DefaultBreakDurationMins,
		Paytable:          payout.DefaultPaytable,
	}
}

type TournamentEngineOpt func(*tournamentEngine)

func WithLogger(logger *logrus.Logger) TournamentEngineOpt {
	return func(te *tournamentEngine) {
		te.logger = logger
	}
}

func WithClock(c *clock.Clock) TournamentEngineOpt {
	return func(te *tournamentEngine) {
		te.clock = c
	}
}

func WithSeatManager(sm seat_manager.SeatManager) TournamentEngineOpt {
	return func(te *tournamentEngine) {
		te.seatManager = sm
	}
}
