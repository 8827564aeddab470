package seat_manager

const (
	UnsetSeat       = -1
	DefaultMaxSeats = 9

	// Balance suggestion types
	Suggestion_BreakTable = "break_table" // 拆桌
	Suggestion_Balance    = "balance"     // 平衡人數

	// Seating results
	SeatingStatus_NoPlayers     = "no_players"
	SeatingStatus_NoTables      = "no_tables"
	SeatingStatus_NoSpace       = "no_space"
	SeatingStatus_AlreadySeated = "already_seated"
	SeatingStatus_PlayersSeated = "players_seated"
	SeatingStatus_Generated     = "tables_generated"
)
