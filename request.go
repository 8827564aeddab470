package pokertournament

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
)

// RegisterPlayerRequest either references an existing player by PlayerID or
// carries the identity fields of a new one.
type RegisterPlayerRequest struct {
	PlayerID   string `json:"player_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Username   string `json:"username,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

func (req RegisterPlayerRequest) Validate() error {
	if req.PlayerID == "" && strings.TrimSpace(req.Name) == "" {
		return NewValidationError("player name is required")
	}
	return nil
}

// NewPlayer builds the player identity carried by the request. A missing
// external id is generated.
func (req RegisterPlayerRequest) NewPlayer(now time.Time) *model.Player {
	externalID := req.ExternalID
	if externalID == "" {
		externalID = uuid.New().String()
	}

	return &model.Player{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		Username:   strings.TrimSpace(req.Username),
		FirstName:  strings.TrimSpace(req.Name),
		LastName:   strings.TrimSpace(req.LastName),
		Phone:      strings.TrimSpace(req.Phone),
		CreatedAt:  now,
	}
}

type EliminatePlayerRequest struct {
	RegistrationID string `json:"registration_id"`
	BountyCount    int    `json:"bounty_count"`
}

func (req EliminatePlayerRequest) Validate() error {
	if req.RegistrationID == "" {
		return NewValidationError("registration id is required")
	}
	if req.BountyCount < 0 {
		return NewValidationError("bounty count must not be negative")
	}
	return nil
}

type SetTimerRequest struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

func (req SetTimerRequest) Validate() error {
	if req.Minutes < 0 || req.Seconds < 0 {
		return NewValidationError("timer must not be negative")
	}
	return nil
}

type AddTableRequest struct {
	MaxSeats *int `json:"max_seats,omitempty"`
}

func (req AddTableRequest) Validate() error {
	if req.MaxSeats != nil && *req.MaxSeats <= 0 {
		return NewValidationError("max seats must be positive")
	}
	return nil
}

type SeatPlayersRequest struct {
	RegistrationIDs []string `json:"registration_ids"`
}

func (req SeatPlayersRequest) Validate() error {
	if len(req.RegistrationIDs) == 0 {
		return NewValidationError("no players selected")
	}
	return nil
}

// MovePlayerRequest reseats a registration. A nil TableID unseats it.
type MovePlayerRequest struct {
	RegistrationID string  `json:"registration_id"`
	TableID        *string `json:"table_id,omitempty"`
	SeatNumber     *int    `json:"seat_number,omitempty"`
}

func (req MovePlayerRequest) Validate() error {
	if req.RegistrationID == "" {
		return NewValidationError("registration id is required")
	}
	if req.TableID != nil && *req.TableID != "" && req.SeatNumber == nil {
		return NewValidationError("seat number is required")
	}
	return nil
}

func (req MovePlayerRequest) Unseat() bool {
	return req.TableID == nil || *req.TableID == ""
}

type AddLevelRequest struct {
	blind.Level
}

// ToLevel applies the default duration to an unset one.
func (req AddLevelRequest) ToLevel() blind.Level {
	level := req.Level
	level.ID = ""
	if level.DurationMins == 0 {
		level.DurationMins = blind.DefaultDurationMins
	}
	return level
}

func (req AddLevelRequest) Validate() error {
	if err := blind.Validate(req.ToLevel()); err != nil {
		return NewValidationError("level number, blinds and duration are invalid")
	}
	return nil
}

type AddPayoutRequest struct {
	Place       *int   `json:"place"`
	Amount      *int64 `json:"amount"`
	Description string `json:"description,omitempty"`
}

func (req AddPayoutRequest) Validate() error {
	if req.Place == nil || *req.Place <= 0 || req.Amount == nil || *req.Amount <= 0 {
		return NewValidationError("place and amount are required")
	}
	return nil
}

type UpdatePayoutRequest struct {
	payout.PayoutPatch
}

func (req UpdatePayoutRequest) Validate() error {
	if req.Place != nil && *req.Place <= 0 {
		return NewValidationError("place must be positive")
	}
	if req.Amount != nil && *req.Amount < 0 {
		return NewValidationError("amount must not be negative")
	}
	return nil
}
