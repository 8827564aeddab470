package pokertournament

import (
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
	"github.com/weedbox/pokertournament/seat_manager"
)

// ClockResult is returned by every clock operation. Result carries the
// no-op and boundary outcomes (already_running, max_level_reached, ...).
type ClockResult struct {
	Result clock.Result `json:"status"`
	Status ClockStatus  `json:"clock"`
}

type LevelSummary struct {
	Number     int   `json:"number"`
	SmallBlind int64 `json:"small_blind"`
	BigBlind   int64 `json:"big_blind"`
	Ante       int64 `json:"ante"`
	IsBreak    bool  `json:"is_break"`
}

func NewLevelSummary(level blind.Level) *LevelSummary {
	return &LevelSummary{
		Number:     level.Number,
		SmallBlind: level.SmallBlind,
		BigBlind:   level.BigBlind,
		Ante:       level.Ante,
		IsBreak:    level.IsBreak,
	}
}

type ClockStatus struct {
	TournamentID      string        `json:"tournament_id"`
	Status            clock.Status  `json:"status"`
	RemainingSeconds  int           `json:"remaining_seconds"`
	CurrentLevelIndex int           `json:"current_level_index"`
	Level             *LevelSummary `json:"level"`
	NextLevel         *LevelSummary `json:"next_level"`
	PlayersRemaining  int           `json:"players_remaining"`
	TotalEntries      int           `json:"total_entries"`
	AverageStack      int64         `json:"average_stack"`
	PrizePool         int64         `json:"prize_pool"`
}

type EliminationResult struct {
	RegistrationID    string                          `json:"registration_id"`
	PlayerID          string                          `json:"player_id"`
	Place             int                             `json:"place"`
	BountyCount       int                             `json:"bounty_count"`
	Points            int                             `json:"points"`
	PayoutAmount      *int64                          `json:"payout_amount"`
	LevelAdvanced     bool                            `json:"level_advanced"`
	NewLevel          *int                            `json:"new_level"`
	BalanceSuggestion *seat_manager.BalanceSuggestion `json:"balance_suggestion"`
}

type SeatingResult struct {
	Status      string                        `json:"status"`
	TableCount  int                           `json:"table_count,omitempty"`
	Seated      int                           `json:"seated_count"`
	Requested   int                           `json:"requested_count"`
	Assignments []seat_manager.SeatAssignment `json:"assignments,omitempty"`
}

type MoveResult struct {
	Registration      *model.Registration             `json:"registration"`
	BalanceSuggestion *seat_manager.BalanceSuggestion `json:"balance_suggestion"`
}

type SeatView struct {
	SeatNumber     int    `json:"seat_number"`
	PlayerName     string `json:"player_name"`
	PlayerID       string `json:"player_id"`
	RegistrationID string `json:"registration_id"`
	Stack          int64  `json:"stack"` // 以買入次數估算的籌碼量
}

type TableView struct {
	ID       string     `json:"id"`
	Number   int        `json:"number"`
	MaxSeats int        `json:"max_seats"`
	Seats    []SeatView `json:"seats"`
}

type PayoutView struct {
	payout.Payout
	PlayerName string `json:"player_name,omitempty"`
}

type PayoutsView struct {
	Payouts    []PayoutView `json:"payouts"`
	PrizePool  int64        `json:"prize_pool"`
	PlacesPaid int          `json:"places_paid"`
}
