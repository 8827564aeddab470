package bunstore

import (
	"time"

	"github.com/uptrace/bun"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
)

type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID                 string     `bun:"id,pk"`
	Name               string     `bun:"name,notnull"`
	Date               time.Time  `bun:"date,notnull"`
	Season             string     `bun:"season"`
	Type               string     `bun:"type,notnull"`
	BuyIn              *int64     `bun:"buy_in"`
	Stack              int64      `bun:"stack,notnull"`
	RegistrationClosed bool       `bun:"registration_closed,notnull"`
	ClockStatus        string     `bun:"clock_status,notnull"`
	CurrentLevelIndex  int        `bun:"current_level_index,notnull"`
	LevelStartedAt     *time.Time `bun:"level_started_at"`
	TimerSeconds       *int       `bun:"timer_seconds"`
	BreakStartedAt     *time.Time `bun:"break_started_at"`
	BreakDurationMins  *int       `bun:"break_duration_minutes"`
	CreatedAt          time.Time  `bun:"created_at,notnull"`
	UpdatedAt          time.Time  `bun:"updated_at,notnull"`
}

type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID         string    `bun:"id,pk"`
	ExternalID string    `bun:"external_id"`
	Username   string    `bun:"username"`
	FirstName  string    `bun:"first_name"`
	LastName   string    `bun:"last_name"`
	Phone      string    `bun:"phone"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

// Child rows carry the slice position of the aggregate so it loads back in
// the same order.

type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	TournamentID string    `bun:"tournament_id,pk"`
	ID           string    `bun:"id,pk"`
	Position     int       `bun:"position,notnull"`
	PlayerID     string    `bun:"player_id,notnull"`
	PlayerName   string    `bun:"player_name"`
	TableID      *string   `bun:"table_id"`
	SeatNumber   *int      `bun:"seat_number"`
	Status       string    `bun:"status,notnull"`
	Rebuys       int       `bun:"rebuys,notnull"`
	Addons       int       `bun:"addons,notnull"`
	Place        *int      `bun:"place"`
	BountyCount  int       `bun:"bounty_count,notnull"`
	Points       *int      `bun:"points"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type Table struct {
	bun.BaseModel `bun:"table:seating_tables,alias:st"`

	TournamentID string `bun:"tournament_id,pk"`
	ID           string `bun:"id,pk"`
	Position     int    `bun:"position,notnull"`
	TableNumber  int    `bun:"table_number,notnull"`
	MaxSeats     int    `bun:"max_seats,notnull"`
}

type Level struct {
	bun.BaseModel `bun:"table:blind_levels,alias:bl"`

	TournamentID string `bun:"tournament_id,pk"`
	ID           string `bun:"id,pk"`
	Position     int    `bun:"position,notnull"`
	Number       int    `bun:"level_number,notnull"`
	SmallBlind   int64  `bun:"small_blind,notnull"`
	BigBlind     int64  `bun:"big_blind,notnull"`
	Ante         int64  `bun:"ante,notnull"`
	DurationMins int    `bun:"duration,notnull"`
	IsBreak      bool   `bun:"is_break,notnull"`
}

type Payout struct {
	bun.BaseModel `bun:"table:payouts,alias:po"`

	TournamentID string  `bun:"tournament_id,pk"`
	ID           string  `bun:"id,pk"`
	Position     int     `bun:"position,notnull"`
	Place        *int    `bun:"place"`
	Amount       int64   `bun:"amount,notnull"`
	PlayerID     *string `bun:"player_id"`
	Description  string  `bun:"description"`
}

type GameEvent struct {
	bun.BaseModel `bun:"table:game_events,alias:ge"`

	TournamentID string    `bun:"tournament_id,pk"`
	ID           string    `bun:"id,pk"`
	Position     int       `bun:"position,notnull"`
	Type         string    `bun:"type,notnull"`
	Description  string    `bun:"description"`
	Timestamp    time.Time `bun:"timestamp,notnull"`
}

var childModels = []interface{}{
	(*Registration)(nil),
	(*Table)(nil),
	(*Level)(nil),
	(*Payout)(nil),
	(*GameEvent)(nil),
}

var models = append([]interface{}{(*Tournament)(nil), (*Player)(nil)}, childModels...)

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func newTournament(t *model.Tournament) *Tournament {
	return &Tournament{
		ID:                 t.ID,
		Name:               t.Name,
		Date:               t.Date.UTC(),
		Season:             t.Season,
		Type:               string(t.Type),
		BuyIn:              t.BuyIn,
		Stack:              t.Stack,
		RegistrationClosed: t.RegistrationClosed,
		ClockStatus:        string(t.Clock.Status),
		CurrentLevelIndex:  t.Clock.CurrentLevelIndex,
		LevelStartedAt:     utc(t.Clock.LevelStartedAt),
		TimerSeconds:       t.Clock.TimerSeconds,
		BreakStartedAt:     utc(t.Clock.BreakStartedAt),
		BreakDurationMins:  t.Clock.BreakDurationMins,
		CreatedAt:          t.CreatedAt.UTC(),
		UpdatedAt:          t.UpdatedAt.UTC(),
	}
}

func (row *Tournament) toModel() *model.Tournament {
	return &model.Tournament{
		ID:                 row.ID,
		Name:               row.Name,
		Date:               row.Date.UTC(),
		Season:             row.Season,
		Type:               model.TournamentType(row.Type),
		BuyIn:              row.BuyIn,
		Stack:              row.Stack,
		RegistrationClosed: row.RegistrationClosed,
		Clock: clock.State{
			Status:            clock.Status(row.ClockStatus),
			CurrentLevelIndex: row.CurrentLevelIndex,
			LevelStartedAt:    utc(row.LevelStartedAt),
			TimerSeconds:      row.TimerSeconds,
			BreakStartedAt:    utc(row.BreakStartedAt),
			BreakDurationMins: row.BreakDurationMins,
		},
		Levels:        blind.Ladder{},
		Registrations: []*model.Registration{},
		Tables:        []*model.Table{},
		Payouts:       []payout.Payout{},
		Events:        []model.GameEvent{},
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func newPlayer(p *model.Player) *Player {
	return &Player{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		Username:   p.Username,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Phone:      p.Phone,
		CreatedAt:  p.CreatedAt.UTC(),
	}
}

func (row *Player) toModel() *model.Player {
	return &model.Player{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Username:   row.Username,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		Phone:      row.Phone,
		CreatedAt:  row.CreatedAt.UTC(),
	}
}

// children flattens the nested collections of t into insertable rows.
type children struct {
	registrations []Registration
	tables        []Table
	levels        []Level
	payouts       []Payout
	events        []GameEvent
}

func newChildren(t *model.Tournament) children {
	c := children{}

	for i, r := range t.Registrations {
		c.registrations = append(c.registrations, Registration{
			TournamentID: t.ID,
			ID:           r.ID,
			Position:     i,
			PlayerID:     r.PlayerID,
			PlayerName:   r.PlayerName,
			TableID:      r.TableID,
			SeatNumber:   r.SeatNumber,
			Status:       string(r.Status),
			Rebuys:       r.Rebuys,
			Addons:       r.Addons,
			Place:        r.Place,
			BountyCount:  r.BountyCount,
			Points:       r.Points,
			CreatedAt:    r.CreatedAt.UTC(),
		})
	}

	for i, table := range t.Tables {
		c.tables = append(c.tables, Table{
			TournamentID: t.ID,
			ID:           table.ID,
			Position:     i,
			TableNumber:  table.TableNumber,
			MaxSeats:     table.MaxSeats,
		})
	}

	for i, level := range t.Levels {
		c.levels = append(c.levels, Level{
			TournamentID: t.ID,
			ID:           level.ID,
			Position:     i,
			Number:       level.Number,
			SmallBlind:   level.SmallBlind,
			BigBlind:     level.BigBlind,
			Ante:         level.Ante,
			DurationMins: level.DurationMins,
			IsBreak:      level.IsBreak,
		})
	}

	for i, p := range t.Payouts {
		c.payouts = append(c.payouts, Payout{
			TournamentID: t.ID,
			ID:           p.ID,
			Position:     i,
			Place:        p.Place,
			Amount:       p.Amount,
			PlayerID:     p.PlayerID,
			Description:  p.Description,
		})
	}

	for i, e := range t.Events {
		c.events = append(c.events, GameEvent{
			TournamentID: t.ID,
			ID:           e.ID,
			Position:     i,
			Type:         string(e.Type),
			Description:  e.Description,
			Timestamp:    e.Timestamp.UTC(),
		})
	}

	return c
}

func (c children) apply(t *model.Tournament) {
	for _, row := range c.registrations {
		t.Registrations = append(t.Registrations, &model.Registration{
			ID:           row.ID,
			TournamentID: row.TournamentID,
			PlayerID:     row.PlayerID,
			PlayerName:   row.PlayerName,
			TableID:      row.TableID,
			SeatNumber:   row.SeatNumber,
			Status:       model.RegistrationStatus(row.Status),
			Rebuys:       row.Rebuys,
			Addons:       row.Addons,
			Place:        row.Place,
			BountyCount:  row.BountyCount,
			Points:       row.Points,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}

	for _, row := range c.tables {
		t.Tables = append(t.Tables, &model.Table{
			ID:           row.ID,
			TournamentID: row.TournamentID,
			TableNumber:  row.TableNumber,
			MaxSeats:     row.MaxSeats,
		})
	}

	for _, row := range c.levels {
		t.Levels = append(t.Levels, blind.Level{
			ID:           row.ID,
			Number:       row.Number,
			SmallBlind:   row.SmallBlind,
			BigBlind:     row.BigBlind,
			Ante:         row.Ante,
			DurationMins: row.DurationMins,
			IsBreak:      row.IsBreak,
		})
	}

	for _, row := range c.payouts {
		t.Payouts = append(t.Payouts, payout.Payout{
			ID:          row.ID,
			Place:       row.Place,
			Amount:      row.Amount,
			PlayerID:    row.PlayerID,
			Description: row.Description,
		})
	}

	for _, row := range c.events {
		t.Events = append(t.Events, model.GameEvent{
			ID:           row.ID,
			TournamentID: row.TournamentID,
			Type:         model.GameEventType(row.Type),
			Description:  row.Description,
			Timestamp:    row.Timestamp.UTC(),
		})
	}
}
