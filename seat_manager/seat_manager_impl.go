package seat_manager

import (
	"fmt"

	"github.com/thoas/go-funk"
)

/*
GenerateTables 初始分桌
  - 桌數 = ceil(N / maxSeats)
  - 玩家隨機排序後平均分配, 前 N % 桌數 桌多一人
  - 每桌座位號碼為 1..maxSeats 的隨機排列
*/
func (sm *seatManager) GenerateTables(registrationIDs []string, maxSeats int) ([]TablePlan, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if maxSeats <= 0 {
		return nil, ErrInvalidMaxSeats
	}

	if len(funk.UniqString(registrationIDs)) != len(registrationIDs) {
		return nil, ErrDuplicatePlayer
	}

	total := len(registrationIDs)
	if total == 0 {
		return []TablePlan{}, nil
	}

	tableCount := (total + maxSeats - 1) / maxSeats
	base := total / tableCount
	extra := total % tableCount

	players := sm.shuffled(registrationIDs)

	plans := make([]TablePlan, 0, tableCount)
	cursor := 0
	for i := 0; i < tableCount; i++ {
		count := base
		if i < extra {
			count++
		}

		plan := TablePlan{
			TableNumber: i + 1,
			MaxSeats:    maxSeats,
			Seats:       make([]SeatAssignment, 0, count),
		}

		seatNumbers := sm.randomSeatNumbers(maxSeats, count)
		for j := 0; j < count; j++ {
			plan.Seats = append(plan.Seats, SeatAssignment{
				RegistrationID: players[cursor],
				TableNumber:    plan.TableNumber,
				SeatNumber:     seatNumbers[j],
			})
			cursor++
		}

		plans = append(plans, plan)
	}

	return plans, nil
}

/*
SeatPlayers 將尚未入座的玩家安排到現有桌子
  - 依隨機順序處理玩家
  - 每次挑選人數最少且仍有空位的桌子, 再隨機挑一個空位
  - 所有桌子都滿時停止, 回報已入座/要求人數
*/
func (sm *seatManager) SeatPlayers(tables []TableSeats, registrationIDs []string) SeatingResult {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	result := SeatingResult{
		Assignments: make([]SeatAssignment, 0),
		Requested:   len(registrationIDs),
	}

	if len(registrationIDs) == 0 {
		result.Status = SeatingStatus_AlreadySeated
		return result
	}

	if len(tables) == 0 {
		result.Status = SeatingStatus_NoTables
		return result
	}

	// work on copies so the caller's snapshot is untouched
	working := cloneTables(tables)

	for _, regID := range sm.shuffled(registrationIDs) {
		idx := leastOccupied(working)
		if idx == -1 {
			break
		}

		table := &working[idx]
		free := freeSeats(*table)
		seat := free[sm.random.Intn(len(free))]

		table.Players = append(table.Players, SeatPlayer{
			RegistrationID: regID,
			SeatNumber:     seat,
		})

		result.Assignments = append(result.Assignments, SeatAssignment{
			RegistrationID: regID,
			TableID:        table.TableID,
			TableNumber:    table.TableNumber,
			SeatNumber:     seat,
		})
	}

	result.Seated = len(result.Assignments)
	switch {
	case result.Seated == 0:
		result.Status = SeatingStatus_NoSpace
	default:
		result.Status = SeatingStatus_PlayersSeated
	}

	return result
}

/*
CheckTableBalance 檢查是否需要拆桌或平衡人數 (僅建議, 不修改座位)
  - 桌數超過 ceil(總人數 / maxSeats) 且人數最少的桌子有人: 拆掉該桌
  - 最多與最少人數差距大於 1: 從最多的桌子移動 floor((max-min)/2) 人到最少的桌子
  - 其餘情況不需調整, 回傳 nil
*/
func (sm *seatManager) CheckTableBalance(tables []TableSeats) *BalanceSuggestion {
	if len(tables) <= 1 {
		return nil
	}

	sorted := sortByOccupancy(tables)

	totalSeated := 0
	for _, t := range sorted {
		totalSeated += t.Occupancy()
	}

	maxSeats := lowestNumbered(tables).MaxSeats
	if maxSeats <= 0 {
		maxSeats = DefaultMaxSeats
	}

	required := (totalSeated + maxSeats - 1) / maxSeats
	smallest := sorted[0]
	largest := sorted[len(sorted)-1]

	if len(sorted) > required && smallest.Occupancy() > 0 {
		if suggestion := sm.breakTable(smallest, sorted[1:]); suggestion != nil {
			return suggestion
		}
	}

	diff := largest.Occupancy() - smallest.Occupancy()
	if diff > 1 {
		count := diff / 2
		return &BalanceSuggestion{
			Type:           Suggestion_Balance,
			FromTable:      largest.TableNumber,
			ToTable:        smallest.TableNumber,
			PlayersCount:   count,
			FromTableCount: largest.Occupancy(),
			ToTableCount:   smallest.Occupancy(),
			Message:        fmt.Sprintf("Move %d players from table %d to table %d", count, largest.TableNumber, smallest.TableNumber),
		}
	}

	return nil
}

// ValidateMove checks that seatNumber at table can take registrationID.
func (sm *seatManager) ValidateMove(table TableSeats, registrationID string, seatNumber int) error {
	if seatNumber < 1 || seatNumber > table.MaxSeats {
		return ErrInvalidSeat
	}

	for _, p := range table.Players {
		if p.SeatNumber == seatNumber && p.RegistrationID != registrationID {
			return ErrSeatTaken
		}
	}

	return nil
}
