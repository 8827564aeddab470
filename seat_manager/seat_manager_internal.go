package seat_manager

import (
	"fmt"
	"sort"
)

func (sm *seatManager) shuffled(ids []string) []string {
	result := make([]string, len(ids))
	copy(result, ids)

	sm.random.Shuffle(len(result), func(i, j int) {
		result[i], result[j] = result[j], result[i]
	})

	return result
}

// randomSeatNumbers returns count distinct seat numbers from 1..maxSeats.
func (sm *seatManager) randomSeatNumbers(maxSeats, count int) []int {
	seats := make([]int, maxSeats)
	for i := range seats {
		seats[i] = i + 1
	}

	sm.random.Shuffle(len(seats), func(i, j int) {
		seats[i], seats[j] = seats[j], seats[i]
	})

	return seats[:count]
}

func (sm *seatManager) breakTable(target TableSeats, remaining []TableSeats) *BalanceSuggestion {
	working := cloneTables(remaining)

	players := make([]SeatPlayer, len(target.Players))
	copy(players, target.Players)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].SeatNumber < players[j].SeatNumber
	})

	movements := make([]Movement, 0, len(players))
	for _, p := range players {
		idx := leastOccupied(working)
		if idx == -1 {
			// remaining tables cannot absorb everyone
			return nil
		}

		to := &working[idx]
		to.Players = append(to.Players, SeatPlayer{
			RegistrationID: p.RegistrationID,
			PlayerName:     p.PlayerName,
			SeatNumber:     UnsetSeat,
		})

		movements = append(movements, Movement{
			RegistrationID: p.RegistrationID,
			PlayerName:     p.PlayerName,
			FromTable:      target.TableNumber,
			ToTable:        to.TableNumber,
			ToTableID:      to.TableID,
		})
	}

	return &BalanceSuggestion{
		Type:         Suggestion_BreakTable,
		TableNumber:  target.TableNumber,
		TableID:      target.TableID,
		Movements:    movements,
		PlayersCount: len(movements),
		Message:      fmt.Sprintf("Break table %d and move %d players", target.TableNumber, len(movements)),
	}
}

// leastOccupied returns the index of the table with the fewest players that
// still has a free seat. Ties go to the lower table number.
func leastOccupied(tables []TableSeats) int {
	found := -1
	for i, t := range tables {
		if !t.HasCapacity() {
			continue
		}

		if found == -1 {
			found = i
			continue
		}

		best := tables[found]
		if t.Occupancy() < best.Occupancy() ||
			(t.Occupancy() == best.Occupancy() && t.TableNumber < best.TableNumber) {
			found = i
		}
	}
	return found
}

func freeSeats(table TableSeats) []int {
	taken := make(map[int]bool, len(table.Players))
	for _, p := range table.Players {
		taken[p.SeatNumber] = true
	}

	free := make([]int, 0, table.MaxSeats)
	for seat := 1; seat <= table.MaxSeats; seat++ {
		if !taken[seat] {
			free = append(free, seat)
		}
	}
	return free
}

func sortByOccupancy(tables []TableSeats) []TableSeats {
	sorted := cloneTables(tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TableNumber < sorted[j].TableNumber
	})
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Occupancy() < sorted[j].Occupancy()
	})
	return sorted
}

func lowestNumbered(tables []TableSeats) TableSeats {
	lowest := tables[0]
	for _, t := range tables[1:] {
		if t.TableNumber < lowest.TableNumber {
			lowest = t
		}
	}
	return lowest
}

func cloneTables(tables []TableSeats) []TableSeats {
	cloned := make([]TableSeats, len(tables))
	for i, t := range tables {
		cloned[i] = t
		cloned[i].Players = make([]SeatPlayer, len(t.Players))
		copy(cloned[i].Players, t.Players)
	}
	return cloned
}
