package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/thoas/go-funk"
	"github.com/weedbox/pokertournament/model"
)

type memoryStore struct {
	mu          sync.RWMutex
	tournaments map[string]*model.Tournament
	players     map[string]*model.Player
}

// NewMemoryStore keeps everything in process memory. Aggregates are copied in
// and out, so callers never share state with the store.
func NewMemoryStore() Store {
	return &memoryStore{
		tournaments: make(map[string]*model.Tournament),
		players:     make(map[string]*model.Player),
	}
}

func (ms *memoryStore) CreateTournament(ctx context.Context, t *model.Tournament) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exist := ms.tournaments[t.ID]; exist {
		return ErrTournamentExists
	}

	ms.tournaments[t.ID] = t.Clone()
	return nil
}

func (ms *memoryStore) LoadTournament(ctx context.Context, tournamentID string) (*model.Tournament, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	t, exist := ms.tournaments[tournamentID]
	if !exist {
		return nil, ErrTournamentNotFound
	}

	return t.Clone(), nil
}

func (ms *memoryStore) SaveTournament(ctx context.Context, t *model.Tournament) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exist := ms.tournaments[t.ID]; !exist {
		return ErrTournamentNotFound
	}

	ms.tournaments[t.ID] = t.Clone()
	return nil
}

func (ms *memoryStore) ListTournaments(ctx context.Context, filter TournamentFilter) ([]*model.Tournament, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*model.Tournament, 0)
	for _, t := range ms.tournaments {
		if filter.Match(t) {
			result = append(result, t.Clone())
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Date.Before(result[j].Date)
	})

	return result, nil
}

func (ms *memoryStore) GetPlayer(ctx context.Context, playerID string) (*model.Player, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	p, exist := ms.players[playerID]
	if !exist {
		return nil, ErrPlayerNotFound
	}

	return p.Clone(), nil
}

func (ms *memoryStore) CreatePlayer(ctx context.Context, p *model.Player) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exist := ms.players[p.ID]; exist {
		return ErrPlayerExists
	}

	for _, existing := range ms.players {
		if p.ExternalID != "" && existing.ExternalID == p.ExternalID {
			return ErrPlayerExists
		}
	}

	ms.players[p.ID] = p.Clone()
	return nil
}

// FindPlayers matches query case-insensitively against names and phone.
func (ms *memoryStore) FindPlayers(ctx context.Context, query string) ([]*model.Player, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))

	result := make([]*model.Player, 0)
	for _, p := range ms.players {
		fields := []string{p.Username, p.FirstName, p.LastName, p.Phone}
		matched := funk.Filter(fields, func(field string) bool {
			return field != "" && strings.Contains(strings.ToLower(field), q)
		}).([]string)
		if q == "" || len(matched) > 0 {
			result = append(result, p.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayName() < result[j].DisplayName()
	})

	return result, nil
}

func (ms *memoryStore) ListPlayers(ctx context.Context, playerIDs []string) ([]*model.Player, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*model.Player, 0, len(playerIDs))
	for _, id := range funk.UniqString(playerIDs) {
		if p, exist := ms.players[id]; exist {
			result = append(result, p.Clone())
		}
	}

	return result, nil
}
