package seat_manager

import (
	"fmt"
	"sort"
)

func DebugPrintTables(msg string, tables []TableSeats) {
	fmt.Printf("[%s] %d tables\n", msg, len(tables))
	for _, table := range tables {
		players := make([]SeatPlayer, len(table.Players))
		copy(players, table.Players)
		sort.Slice(players, func(i, j int) bool {
			return players[i].SeatNumber < players[j].SeatNumber
		})

		fmt.Printf("Table %d (%d/%d)\n", table.TableNumber, table.Occupancy(), table.MaxSeats)
		for _, p := range players {
			fmt.Printf("  Seat %d is occupied by %s (%s)\n", p.SeatNumber, p.RegistrationID, p.PlayerName)
		}
	}
}
