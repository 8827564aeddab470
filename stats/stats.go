package stats

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/thoas/go-funk"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/store"
)

type TournamentColumn struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

type Result struct {
	Place  *int `json:"place"`
	Points *int `json:"points,omitempty"` // FREE 賽事才有
}

type PlayerRow struct {
	PlayerID   string            `json:"player_id"`
	PlayerName string            `json:"player_name"`
	Results    map[string]Result `json:"results"` // tournament id -> result
}

type ResultsMatrix struct {
	Type        model.TournamentType `json:"type"`
	Tournaments []TournamentColumn   `json:"tournaments"`
	Players     []PlayerRow          `json:"players"`
}

type PayoutLeader struct {
	PlayerID          string `json:"player_id"`
	PlayerName        string `json:"player_name"`
	TotalWinnings     int64  `json:"total_winnings"`
	TournamentsPlayed int    `json:"tournaments_played"`
	FirstPlaces       int    `json:"first_places"`
}

type RebuyLeader struct {
	PlayerID          string  `json:"player_id"`
	PlayerName        string  `json:"player_name"`
	TotalRebuys       int     `json:"total_rebuys"`
	TournamentsPlayed int     `json:"tournaments_played"`
	AverageRebuys     float64 `json:"avg_rebuys"`
}

type BountyLeader struct {
	PlayerID          string  `json:"player_id"`
	PlayerName        string  `json:"player_name"`
	TotalBounties     int     `json:"total_bounties"`
	TournamentsPlayed int     `json:"tournaments_played"`
	AverageBounties   float64 `json:"avg_bounties"`
}

// Service aggregates FINISHED tournaments read from a store.
type Service struct {
	store store.Store
	now   func() time.Time
}

type ServiceOpt func(*Service)

func NewService(st store.Store, opts ...ServiceOpt) *Service {
	s := &Service{
		store: st,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithNow sets the time source used to pick the default season year.
func WithNow(now func() time.Time) ServiceOpt {
	return func(s *Service) {
		s.now = now
	}
}

func (s *Service) tournaments(ctx context.Context, q Query) ([]*model.Tournament, error) {
	filter, err := q.Filter(s.now())
	if err != nil {
		return nil, err
	}
	return s.store.ListTournaments(ctx, filter)
}

// names resolves display names from the player store, falling back to the
// name captured at registration.
func (s *Service) names(ctx context.Context, tournaments []*model.Tournament) (map[string]string, error) {
	names := make(map[string]string)
	for _, t := range tournaments {
		for _, r := range t.Registrations {
			names[r.PlayerID] = r.PlayerName
		}
	}

	players, err := s.store.ListPlayers(ctx, funk.Keys(names).([]string))
	if err != nil {
		return nil, err
	}

	for _, p := range players {
		names[p.ID] = p.DisplayName()
	}

	return names, nil
}

/*
Results 產生玩家 x 賽事的名次矩陣
  - 賽事依日期排序
  - 玩家依名字排序
  - FREE 賽事附帶積分
*/
func (s *Service) Results(ctx context.Context, q Query) (*ResultsMatrix, error) {
	tournaments, err := s.tournaments(ctx, q)
	if err != nil {
		return nil, err
	}

	matrix := &ResultsMatrix{
		Type:        q.Type,
		Tournaments: make([]TournamentColumn, 0, len(tournaments)),
		Players:     make([]PlayerRow, 0),
	}

	if len(tournaments) == 0 {
		return matrix, nil
	}

	names, err := s.names(ctx, tournaments)
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*PlayerRow)
	for _, t := range tournaments {
		matrix.Tournaments = append(matrix.Tournaments, TournamentColumn{
			ID:   t.ID,
			Name: t.Name,
			Date: t.Date,
		})

		for _, r := range t.Registrations {
			row, exist := rows[r.PlayerID]
			if !exist {
				row = &PlayerRow{
					PlayerID:   r.PlayerID,
					PlayerName: names[r.PlayerID],
					Results:    make(map[string]Result),
				}
				rows[r.PlayerID] = row
			}

			result := Result{Place: r.Place}
			if t.IsFree() {
				points := 0
				if r.Points != nil {
					points = *r.Points
				}
				result.Points = &points
			}
			row.Results[t.ID] = result
		}
	}

	for _, row := range rows {
		matrix.Players = append(matrix.Players, *row)
	}

	sort.SliceStable(matrix.Players, func(i, j int) bool {
		a, b := strings.ToLower(matrix.Players[i].PlayerName), strings.ToLower(matrix.Players[j].PlayerName)
		if a != b {
			return a < b
		}
		return matrix.Players[i].PlayerID < matrix.Players[j].PlayerID
	})

	return matrix, nil
}

// PayoutLeaders ranks players by bound payout amounts, highest first.
// Only players who won something are listed.
func (s *Service) PayoutLeaders(ctx context.Context, q Query) ([]PayoutLeader, error) {
	tournaments, err := s.tournaments(ctx, q)
	if err != nil {
		return nil, err
	}

	leaders := make(map[string]*PayoutLeader)
	for _, t := range tournaments {
		for _, p := range t.Payouts {
			if p.PlayerID == nil {
				continue
			}

			leader, exist := leaders[*p.PlayerID]
			if !exist {
				leader = &PayoutLeader{PlayerID: *p.PlayerID}
				leaders[*p.PlayerID] = leader
			}
			leader.TotalWinnings += p.Amount
		}
	}

	for _, t := range tournaments {
		for _, r := range t.Registrations {
			leader, exist := leaders[r.PlayerID]
			if !exist {
				continue
			}

			leader.TournamentsPlayed++
			if r.Place != nil && *r.Place == 1 {
				leader.FirstPlaces++
			}
		}
	}

	names, err := s.names(ctx, tournaments)
	if err != nil {
		return nil, err
	}

	result := make([]PayoutLeader, 0, len(leaders))
	for _, leader := range leaders {
		leader.PlayerName = names[leader.PlayerID]
		result = append(result, *leader)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].TotalWinnings != result[j].TotalWinnings {
			return result[i].TotalWinnings > result[j].TotalWinnings
		}
		return result[i].PlayerName < result[j].PlayerName
	})

	return result, nil
}

type tally struct {
	playerID string
	total    int
	played   int
}

func (s *Service) tallies(tournaments []*model.Tournament, count func(r *model.Registration) int) []tally {
	tallies := make(map[string]*tally)
	for _, t := range tournaments {
		for _, r := range t.Registrations {
			entry, exist := tallies[r.PlayerID]
			if !exist {
				entry = &tally{playerID: r.PlayerID}
				tallies[r.PlayerID] = entry
			}
			entry.total += count(r)
			entry.played++
		}
	}

	result := make([]tally, 0, len(tallies))
	for _, entry := range tallies {
		if entry.total > 0 {
			result = append(result, *entry)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].total != result[j].total {
			return result[i].total > result[j].total
		}
		return result[i].playerID < result[j].playerID
	})

	return result
}

// RebuyLeaders ranks players by total rebuys. Players without rebuys are
// left out.
func (s *Service) RebuyLeaders(ctx context.Context, q Query) ([]RebuyLeader, error) {
	tournaments, err := s.tournaments(ctx, q)
	if err != nil {
		return nil, err
	}

	names, err := s.names(ctx, tournaments)
	if err != nil {
		return nil, err
	}

	leaders := make([]RebuyLeader, 0)
	for _, entry := range s.tallies(tournaments, func(r *model.Registration) int { return r.Rebuys }) {
		leaders = append(leaders, RebuyLeader{
			PlayerID:          entry.playerID,
			PlayerName:        names[entry.playerID],
			TotalRebuys:       entry.total,
			TournamentsPlayed: entry.played,
			AverageRebuys:     average(entry.total, entry.played),
		})
	}

	return leaders, nil
}

// BountyLeaders ranks players by total bounties. Players without bounties
// are left out.
func (s *Service) BountyLeaders(ctx context.Context, q Query) ([]BountyLeader, error) {
	tournaments, err := s.tournaments(ctx, q)
	if err != nil {
		return nil, err
	}

	names, err := s.names(ctx, tournaments)
	if err != nil {
		return nil, err
	}

	leaders := make([]BountyLeader, 0)
	for _, entry := range s.tallies(tournaments, func(r *model.Registration) int { return r.BountyCount }) {
		leaders = append(leaders, BountyLeader{
			PlayerID:          entry.playerID,
			PlayerName:        names[entry.playerID],
			TotalBounties:     entry.total,
			TournamentsPlayed: entry.played,
			AverageBounties:   average(entry.total, entry.played),
		})
	}

	return leaders, nil
}

// Years lists the distinct years with a FINISHED tournament of type tt,
// newest first.
func (s *Service) Years(ctx context.Context, tt model.TournamentType) ([]int, error) {
	tournaments, err := s.tournaments(ctx, Query{Type: tt})
	if err != nil {
		return nil, err
	}

	years := make([]int, 0)
	for _, t := range tournaments {
		if !funk.ContainsInt(years, t.Date.Year()) {
			years = append(years, t.Date.Year())
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// average rounds total/played to two decimals.
func average(total, played int) float64 {
	if played == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(played)*100) / 100
}
