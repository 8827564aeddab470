package model

import "time"

type RegistrationStatus string

const (
	RegistrationStatus_Registered RegistrationStatus = "REGISTERED" // 參賽中
	RegistrationStatus_Eliminated RegistrationStatus = "ELIMINATED" // 已淘汰
)

type Registration struct {
	ID           string             `json:"id"`
	TournamentID string             `json:"tournament_id"`
	PlayerID     string             `json:"player_id"`
	PlayerName   string             `json:"player_name"`           // 報名時的顯示名稱
	TableID      *string            `json:"table_id,omitempty"`    // 所在桌次
	SeatNumber   *int               `json:"seat_number,omitempty"` // 座位號碼 1 ~ max seats
	Status       RegistrationStatus `json:"status"`                // 參賽狀態
	Rebuys       int                `json:"rebuys"`                // 重購次數
	Addons       int                `json:"addons"`                // 加購次數
	Place        *int               `json:"place,omitempty"`       // 淘汰名次
	BountyCount  int                `json:"bounty_count"`          // 淘汰他人數
	Points       *int               `json:"points,omitempty"`      // 積分
	CreatedAt    time.Time          `json:"created_at"`
}

func (r Registration) IsRegistered() bool {
	return r.Status == RegistrationStatus_Registered
}

func (r Registration) IsEliminated() bool {
	return r.Status == RegistrationStatus_Eliminated
}

func (r Registration) IsSeated() bool {
	return r.TableID != nil && r.SeatNumber != nil
}

func (r *Registration) Seat(tableID string, seatNumber int) {
	r.TableID = &tableID
	r.SeatNumber = &seatNumber
}

func (r *Registration) Unseat() {
	r.TableID = nil
	r.SeatNumber = nil
}

// Chips estimates the player's stack from the buy-ins they made.
func (r Registration) Chips(stack int64) int64 {
	return stack * int64(1+r.Rebuys+r.Addons)
}
