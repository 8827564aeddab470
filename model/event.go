package model

import "time"

type GameEventType string

const (
	GameEventType_TournamentCreated   GameEventType = "TOURNAMENT_CREATED"
	GameEventType_ClockStarted        GameEventType = "CLOCK_STARTED"
	GameEventType_ClockPaused         GameEventType = "CLOCK_PAUSED"
	GameEventType_LevelChanged        GameEventType = "LEVEL_CHANGED"
	GameEventType_TimerSet            GameEventType = "TIMER_SET"
	GameEventType_BreakStarted        GameEventType = "BREAK_STARTED"
	GameEventType_TournamentFinished  GameEventType = "TOURNAMENT_FINISHED"
	GameEventType_RegistrationToggled GameEventType = "REGISTRATION_TOGGLED"
	GameEventType_PlayerRegistered    GameEventType = "PLAYER_REGISTERED"
	GameEventType_PlayerUnregistered  GameEventType = "PLAYER_UNREGISTERED"
	GameEventType_PlayerEliminated    GameEventType = "PLAYER_ELIMINATED"
	GameEventType_PlayerRebuy         GameEventType = "PLAYER_REBUY"
	GameEventType_PlayerAddon         GameEventType = "PLAYER_ADDON"
	GameEventType_PlayerMoved         GameEventType = "PLAYER_MOVED"
	GameEventType_TablesGenerated     GameEventType = "TABLES_GENERATED"
	GameEventType_TablesCleared       GameEventType = "TABLES_CLEARED"
	GameEventType_TableAdded          GameEventType = "TABLE_ADDED"
	GameEventType_TableDeleted        GameEventType = "TABLE_DELETED"
	GameEventType_PlayersSeated       GameEventType = "PLAYERS_SEATED"
	GameEventType_LevelsUpdated       GameEventType = "LEVELS_UPDATED"
	GameEventType_PayoutsUpdated      GameEventType = "PAYOUTS_UPDATED"
)

// GameEvent is one entry of the append-only tournament log.
type GameEvent struct {
	ID           string        `json:"id"`
	TournamentID string        `json:"tournament_id"`
	Type         GameEventType `json:"type"`
	Description  string        `json:"description"`
	Timestamp    time.Time     `json:"timestamp"`
}
