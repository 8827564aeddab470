package model

type Table struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	TableNumber  int    `json:"table_number"` // 桌號, 同賽事內唯一
	MaxSeats     int    `json:"max_seats"`    // 每桌人數上限
}
