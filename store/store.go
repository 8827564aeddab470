package store

import (
	"context"
	"errors"
	"time"

	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
)

var (
	ErrTournamentNotFound = errors.New("store: tournament not found")
	ErrTournamentExists   = errors.New("store: tournament already exists")
	ErrPlayerNotFound     = errors.New("store: player not found")
	ErrPlayerExists       = errors.New("store: player already exists")
)

// Store persists tournament aggregates and player identities. SaveTournament
// replaces the whole aggregate; an error leaves the stored copy untouched.
type Store interface {
	CreateTournament(ctx context.Context, t *model.Tournament) error
	LoadTournament(ctx context.Context, tournamentID string) (*model.Tournament, error)
	SaveTournament(ctx context.Context, t *model.Tournament) error
	ListTournaments(ctx context.Context, filter TournamentFilter) ([]*model.Tournament, error)

	GetPlayer(ctx context.Context, playerID string) (*model.Player, error)
	CreatePlayer(ctx context.Context, p *model.Player) error
	FindPlayers(ctx context.Context, query string) ([]*model.Player, error)
	ListPlayers(ctx context.Context, playerIDs []string) ([]*model.Player, error)
}

// TournamentFilter narrows ListTournaments. Zero fields match everything.
// From is inclusive, To is exclusive.
type TournamentFilter struct {
	Type   model.TournamentType
	Status clock.Status
	From   *time.Time
	To     *time.Time
}

func (f TournamentFilter) Match(t *model.Tournament) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}

	if f.Status != "" && t.Clock.Status != f.Status {
		return false
	}

	if f.From != nil && t.Date.Before(*f.From) {
		return false
	}

	if f.To != nil && !t.Date.Before(*f.To) {
		return false
	}

	return true
}
