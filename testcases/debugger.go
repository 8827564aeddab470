package testcases

import (
	"fmt"
	"sort"

	"github.com/weedbox/pokertournament/model"
)

func DebugPrintStandings(t *model.Tournament) {
	fmt.Printf("---------- %s (%s) ----------\n", t.Name, t.Clock.Status)
	fmt.Println("[Level Index] ", t.Clock.CurrentLevelIndex)
	fmt.Println("[Remaining Players] ", t.RegisteredCount())
	fmt.Println("[Prize Pool] ", t.PrizePool())

	registrations := make([]*model.Registration, 0, len(t.Registrations))
	registrations = append(registrations, t.Registrations...)
	sort.SliceStable(registrations, func(i, j int) bool {
		return place(registrations[i]) < place(registrations[j])
	})

	for _, r := range registrations {
		points := "-"
		if r.Points != nil {
			points = fmt.Sprintf("%d", *r.Points)
		}

		if r.IsEliminated() {
			fmt.Printf("#%-3d %-20s points: %s, bounty: %d, rebuys: %d, addons: %d\n", *r.Place, r.PlayerName, points, r.BountyCount, r.Rebuys, r.Addons)
		} else {
			fmt.Printf("     %-20s (playing)\n", r.PlayerName)
		}
	}

	fmt.Println("[Payouts]")
	for _, p := range t.Payouts {
		winner := "pending"
		if p.PlayerID != nil {
			winner = *p.PlayerID
		}
		fmt.Printf("%s: %d -> %s\n", p.Description, p.Amount, winner)
	}
}

func place(r *model.Registration) int {
	if r.Place == nil {
		return 0
	}
	return *r.Place
}
