package testcases

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/weedbox/pokertournament"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/model"
)

var StartTime = time.Date(2024, 11, 8, 19, 30, 0, 0, time.UTC)

func NewDefaultTournamentSetting(tt model.TournamentType, buyIn int64) pokertournament.TournamentSetting {
	setting := pokertournament.TournamentSetting{
		Name:   "Friday Night Poker",
		Date:   StartTime,
		Season: "autumn",
		Type:   tt,
		Stack:  10000,
		Levels: []blind.Level{
			{Number: 1, SmallBlind: 25, BigBlind: 50, DurationMins: 20},
			{Number: 2, SmallBlind: 50, BigBlind: 100, DurationMins: 20},
			{Number: 3, SmallBlind: 100, BigBlind: 200, Ante: 25, DurationMins: 20},
			{Number: 4, DurationMins: 10, IsBreak: true},
			{Number: 5, SmallBlind: 200, BigBlind: 400, Ante: 50, DurationMins: 15},
			{Number: 6, SmallBlind: 300, BigBlind: 600, Ante: 75, DurationMins: 15},
		},
	}

	if buyIn > 0 {
		setting.BuyIn = &buyIn
	}

	return setting
}

// NewFakePlayers returns count registration requests with reproducible
// identities.
func NewFakePlayers(seed uint64, count int) []pokertournament.RegisterPlayerRequest {
	faker := gofakeit.New(seed)

	players := make([]pokertournament.RegisterPlayerRequest, 0, count)
	for i := 0; i < count; i++ {
		players = append(players, pokertournament.RegisterPlayerRequest{
			Name:       faker.FirstName(),
			Username:   faker.Username(),
			LastName:   faker.LastName(),
			Phone:      faker.Phone(),
			ExternalID: faker.UUID(),
		})
	}

	return players
}
