package model

import (
	"encoding/json"
	"math"
	"time"

	"github.com/thoas/go-funk"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/payout"
)

type TournamentType string

const (
	TournamentType_Paid TournamentType = "PAID" // 買入賽
	TournamentType_Free TournamentType = "FREE" // 免費積分賽
)

func (tt TournamentType) IsValid() bool {
	return tt == TournamentType_Paid || tt == TournamentType_Free
}

const DefaultStack int64 = 10000

type Tournament struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`                // 賽事名稱
	Date               time.Time       `json:"date"`                // 比賽日期
	Season             string          `json:"season,omitempty"`    // 賽季 (winter, spring, summer, autumn)
	Type               TournamentType  `json:"type"`                // PAID / FREE
	BuyIn              *int64          `json:"buy_in,omitempty"`    // 買入金額
	Stack              int64           `json:"stack"`               // 起始籌碼
	RegistrationClosed bool            `json:"registration_closed"` // 是否停止報名
	Clock              clock.State     `json:"clock"`               // 計時器狀態
	Levels             blind.Ladder    `json:"levels"`              // 盲注結構
	Registrations      []*Registration `json:"registrations"`       // 報名紀錄
	Tables             []*Table        `json:"tables"`              // 桌次
	Payouts            []payout.Payout `json:"payouts"`             // 獎金表
	Events             []GameEvent     `json:"events"`              // 事件紀錄
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Setters
func (t *Tournament) Touch(now time.Time) {
	t.UpdatedAt = now
}

func (t *Tournament) AddEvent(event GameEvent) {
	event.TournamentID = t.ID
	t.Events = append(t.Events, event)
}

func (t *Tournament) RemoveRegistration(registrationID string) {
	t.Registrations = funk.Filter(t.Registrations, func(r *Registration) bool {
		return r.ID != registrationID
	}).([]*Registration)
}

func (t *Tournament) RemoveTable(tableID string) {
	t.Tables = funk.Filter(t.Tables, func(table *Table) bool {
		return table.ID != tableID
	}).([]*Table)
}

// Getters
func (t Tournament) GetJSON() (string, error) {
	encoded, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (t Tournament) IsFree() bool {
	return t.Type == TournamentType_Free
}

func (t Tournament) CurrentLevel() (blind.Level, bool) {
	return t.Levels.At(t.Clock.CurrentLevelIndex)
}

func (t Tournament) NextLevel() (blind.Level, bool) {
	return t.Levels.Next(t.Clock.CurrentLevelIndex)
}

func (t Tournament) FindRegistration(registrationID string) *Registration {
	for _, r := range t.Registrations {
		if r.ID == registrationID {
			return r
		}
	}
	return nil
}

func (t Tournament) FindRegistrationByPlayer(playerID string) *Registration {
	for _, r := range t.Registrations {
		if r.PlayerID == playerID {
			return r
		}
	}
	return nil
}

func (t Tournament) RegisteredPlayers() []*Registration {
	return funk.Filter(t.Registrations, func(r *Registration) bool {
		return r.IsRegistered()
	}).([]*Registration)
}

func (t Tournament) EliminatedPlayers() []*Registration {
	return funk.Filter(t.Registrations, func(r *Registration) bool {
		return r.IsEliminated()
	}).([]*Registration)
}

// RegisteredCount is the number of players still in the tournament.
func (t Tournament) RegisteredCount() int {
	return len(t.RegisteredPlayers())
}

// TotalRegistrations counts every registration ever made, eliminated
// entries included.
func (t Tournament) TotalRegistrations() int {
	return len(t.Registrations)
}

func (t Tournament) TotalRebuys() int {
	total := 0
	for _, r := range t.Registrations {
		total += r.Rebuys
	}
	return total
}

func (t Tournament) TotalAddons() int {
	total := 0
	for _, r := range t.Registrations {
		total += r.Addons
	}
	return total
}

// TotalEntries is registrations + rebuys + addons.
func (t Tournament) TotalEntries() int {
	return payout.TotalEntries(t.TotalRegistrations(), t.TotalRebuys(), t.TotalAddons())
}

func (t Tournament) PrizePool() int64 {
	if t.BuyIn == nil {
		return 0
	}
	return payout.PrizePool(t.TotalRegistrations(), t.TotalRebuys(), t.TotalAddons(), *t.BuyIn)
}

// TotalChips is the chip count in play, assuming every entry is worth one
// starting stack.
func (t Tournament) TotalChips() int64 {
	return int64(t.TotalEntries()) * t.Stack
}

// AverageStack rounds the chips in play over the remaining players.
func (t Tournament) AverageStack() int64 {
	remaining := int64(t.RegisteredCount())
	if remaining == 0 {
		return 0
	}
	return int64(math.RoundToEven(float64(t.TotalChips()) / float64(remaining)))
}

func (t Tournament) FindTable(tableID string) *Table {
	for _, table := range t.Tables {
		if table.ID == tableID {
			return table
		}
	}
	return nil
}

func (t Tournament) NextTableNumber() int {
	next := 1
	for _, table := range t.Tables {
		if table.TableNumber >= next {
			next = table.TableNumber + 1
		}
	}
	return next
}

// SeatedAt returns the REGISTERED entries sitting at tableID.
func (t Tournament) SeatedAt(tableID string) []*Registration {
	return funk.Filter(t.Registrations, func(r *Registration) bool {
		return r.IsRegistered() && r.TableID != nil && *r.TableID == tableID
	}).([]*Registration)
}
