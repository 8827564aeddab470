package payout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrZeroPrizePool  = errors.New("payout: prize pool is zero")
	ErrInvalidPayout  = errors.New("payout: place and amount are required")
	ErrPayoutNotFound = errors.New("payout: payout not found")
)

type Payout struct {
	ID          string  `json:"id"`
	Place       *int    `json:"place,omitempty"`
	Amount      int64   `json:"amount"`
	PlayerID    *string `json:"player_id,omitempty"`
	Description string  `json:"description"`
}

func (p Payout) IsPending() bool {
	return p.PlayerID == nil
}

// PayoutPatch carries the fields of an update request. Nil fields keep their
// current value.
type PayoutPatch struct {
	Place       *int    `json:"place,omitempty"`
	Amount      *int64  `json:"amount,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PrizePool is (registrations + rebuys + addons) * buyIn.
func PrizePool(registrations, rebuys, addons int, buyIn int64) int64 {
	return int64(registrations+rebuys+addons) * buyIn
}

func TotalEntries(registrations, rebuys, addons int) int {
	return registrations + rebuys + addons
}

type PayoutEngine struct {
	paytable *Paytable
}

func NewPayoutEngine(pt *Paytable) *PayoutEngine {
	if pt == nil {
		pt = DefaultPaytable
	}
	return &PayoutEngine{
		paytable: pt,
	}
}

/*
Generate 依照總報名數產生獎金表
  - prize pool 為 0 時不產生
  - 每個名次金額四捨五入至 paytable increment
*/
func (pe *PayoutEngine) Generate(pool int64, entries int) ([]Payout, error) {
	if pool <= 0 {
		return nil, ErrZeroPrizePool
	}

	percentages := pe.paytable.Percentages(entries)
	payouts := make([]Payout, 0, len(percentages))
	for idx, percentage := range percentages {
		place := idx + 1
		payouts = append(payouts, Payout{
			ID:          uuid.New().String(),
			Place:       &place,
			Amount:      pe.paytable.Amount(pool, percentage),
			Description: fmt.Sprintf("Place %d", place),
		})
	}

	return payouts, nil
}

func NewManualPayout(place *int, amount *int64, description string) (Payout, error) {
	if place == nil || *place <= 0 || amount == nil || *amount <= 0 {
		return Payout{}, ErrInvalidPayout
	}

	if description == "" {
		description = fmt.Sprintf("Place %d", *place)
	}

	p := *place
	return Payout{
		ID:          uuid.New().String(),
		Place:       &p,
		Amount:      *amount,
		Description: description,
	}, nil
}

func Apply(p Payout, patch PayoutPatch) (Payout, error) {
	if patch.Place != nil {
		if *patch.Place <= 0 {
			return p, ErrInvalidPayout
		}
		place := *patch.Place
		p.Place = &place
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return p, ErrInvalidPayout
		}
		p.Amount = *patch.Amount
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	return p, nil
}

// Bind attaches playerID to the first pending payout for place. A payout that
// already has a player is never rebound. It returns the index of the bound
// payout, or -1.
func Bind(payouts []Payout, place int, playerID string) int {
	for idx, p := range payouts {
		if p.Place == nil || *p.Place != place {
			continue
		}

		if !p.IsPending() {
			continue
		}

		pid := playerID
		payouts[idx].PlayerID = &pid
		return idx
	}
	return -1
}

func Find(payouts []Payout, payoutID string) (int, bool) {
	for idx, p := range payouts {
		if p.ID == payoutID {
			return idx, true
		}
	}
	return -1, false
}
