package pokertournament

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/seat_manager"
)

/*
GenerateTables 重新產生桌次
  - 清除現有桌次與座位後, 依人數產生 ceil(N/C) 桌並隨機入座
  - 沒有參賽中玩家時不做任何變更
*/
func (te *tournamentEngine) GenerateTables(ctx context.Context) (*SeatingResult, error) {
	var result SeatingResult
	_, err := te.update(ctx, "GenerateTables", func(tx *transaction) error {
		registrationIDs := funk.Map(tx.t.RegisteredPlayers(), func(r *model.Registration) string {
			return r.ID
		}).([]string)

		if len(registrationIDs) == 0 {
			result = SeatingResult{
				Status: seat_manager.SeatingStatus_NoPlayers,
			}
			return nil
		}

		plans, err := te.seatManager.GenerateTables(registrationIDs, te.options.MaxSeats)
		if err != nil {
			return err
		}

		for _, r := range tx.t.Registrations {
			r.Unseat()
		}

		tx.t.Tables = make([]*model.Table, 0, len(plans))
		assignments := make([]seat_manager.SeatAssignment, 0, len(registrationIDs))
		for _, plan := range plans {
			table := &model.Table{
				ID:           uuid.New().String(),
				TournamentID: tx.t.ID,
				TableNumber:  plan.TableNumber,
				MaxSeats:     plan.MaxSeats,
			}
			tx.t.Tables = append(tx.t.Tables, table)

			for _, seat := range plan.Seats {
				tx.t.FindRegistration(seat.RegistrationID).Seat(table.ID, seat.SeatNumber)
				seat.TableID = table.ID
				assignments = append(assignments, seat)
			}
		}

		result = SeatingResult{
			Status:      seat_manager.SeatingStatus_Generated,
			TableCount:  len(plans),
			Seated:      len(assignments),
			Requested:   len(registrationIDs),
			Assignments: assignments,
		}

		tx.record(model.GameEventType_TablesGenerated, "%d tables generated for %d players", len(plans), len(registrationIDs))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (te *tournamentEngine) GetTables(ctx context.Context) ([]TableView, error) {
	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TableView, 0, len(t.Tables))
	for _, table := range t.Tables {
		view := TableView{
			ID:       table.ID,
			Number:   table.TableNumber,
			MaxSeats: table.MaxSeats,
			Seats:    make([]SeatView, 0),
		}

		for _, r := range t.SeatedAt(table.ID) {
			if r.SeatNumber == nil {
				continue
			}

			view.Seats = append(view.Seats, SeatView{
				SeatNumber:     *r.SeatNumber,
				PlayerName:     r.PlayerName,
				PlayerID:       r.PlayerID,
				RegistrationID: r.ID,
				Stack:          r.Chips(t.Stack),
			})
		}

		sort.Slice(view.Seats, func(i, j int) bool {
			return view.Seats[i].SeatNumber < view.Seats[j].SeatNumber
		})

		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		return views[i].Number < views[j].Number
	})

	return views, nil
}

func (te *tournamentEngine) ClearTables(ctx context.Context) error {
	_, err := te.update(ctx, "ClearTables", func(tx *transaction) error {
		for _, r := range tx.t.Registrations {
			r.Unseat()
		}

		count := len(tx.t.Tables)
		tx.t.Tables = []*model.Table{}
		tx.record(model.GameEventType_TablesCleared, "%d tables cleared", count)
		return nil
	})
	return err
}

func (te *tournamentEngine) AddTable(ctx context.Context, req AddTableRequest) (*model.Table, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	maxSeats := te.options.MaxSeats
	if req.MaxSeats != nil {
		maxSeats = *req.MaxSeats
	}

	var table *model.Table
	_, err := te.update(ctx, "AddTable", func(tx *transaction) error {
		table = &model.Table{
			ID:           uuid.New().String(),
			TournamentID: tx.t.ID,
			TableNumber:  tx.t.NextTableNumber(),
			MaxSeats:     maxSeats,
		}
		tx.t.Tables = append(tx.t.Tables, table)

		tx.record(model.GameEventType_TableAdded, "Table %d added with %d seats", table.TableNumber, table.MaxSeats)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

// DeleteTable refuses to drop a table while REGISTERED players sit at it.
func (te *tournamentEngine) DeleteTable(ctx context.Context, tableID string) error {
	_, err := te.update(ctx, "DeleteTable", func(tx *transaction) error {
		table := tx.t.FindTable(tableID)
		if table == nil {
			return ErrTableNotFound
		}

		if len(tx.t.SeatedAt(tableID)) > 0 {
			return ErrTableNotEmpty
		}

		for _, r := range tx.t.Registrations {
			if r.TableID != nil && *r.TableID == tableID {
				r.Unseat()
			}
		}

		tx.t.RemoveTable(tableID)
		tx.record(model.GameEventType_TableDeleted, "Table %d deleted", table.TableNumber)
		return nil
	})
	return err
}

/*
SeatSelectedPlayers 將指定的玩家安排入座
  - 只處理參賽中且尚未有座位的玩家
  - 優先安排至人數最少的桌次, 座位隨機
  - 座位不足時回報實際入座人數
*/
func (te *tournamentEngine) SeatSelectedPlayers(ctx context.Context, req SeatPlayersRequest) (*SeatingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result SeatingResult
	_, err := te.update(ctx, "SeatSelectedPlayers", func(tx *transaction) error {
		eligible := make([]string, 0, len(req.RegistrationIDs))
		for _, registrationID := range funk.UniqString(req.RegistrationIDs) {
			r := tx.t.FindRegistration(registrationID)
			if r == nil || !r.IsRegistered() || r.SeatNumber != nil {
				continue
			}

			r.TableID = nil
			eligible = append(eligible, r.ID)
		}

		seating := te.seatManager.SeatPlayers(tableSeats(tx.t), eligible)
		for _, assignment := range seating.Assignments {
			tx.t.FindRegistration(assignment.RegistrationID).Seat(assignment.TableID, assignment.SeatNumber)
		}

		result = SeatingResult{
			Status:      seating.Status,
			TableCount:  len(tx.t.Tables),
			Seated:      seating.Seated,
			Requested:   seating.Requested,
			Assignments: seating.Assignments,
		}

		if seating.Seated > 0 {
			tx.record(model.GameEventType_PlayersSeated, "%d of %d players seated", seating.Seated, seating.Requested)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

/*
MovePlayer 換位
  - 指定桌次時檢查座位範圍與是否已有人
  - 未指定桌次時將玩家移出座位
*/
func (te *tournamentEngine) MovePlayer(ctx context.Context, req MovePlayerRequest) (*MoveResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result MoveResult
	_, err := te.update(ctx, "MovePlayer", func(tx *transaction) error {
		r := tx.t.FindRegistration(req.RegistrationID)
		if r == nil {
			return ErrRegistrationNotFound
		}

		from := "unseated"
		if r.TableID != nil {
			if table := tx.t.FindTable(*r.TableID); table != nil {
				from = tableLabel(table, r.SeatNumber)
			}
		}

		if req.Unseat() {
			r.Unseat()
			tx.record(model.GameEventType_PlayerMoved, "%s moved from %s to unseated", r.PlayerName, from)
		} else {
			if r.IsEliminated() {
				return ErrAlreadyEliminated
			}

			table := tx.t.FindTable(*req.TableID)
			if table == nil {
				return ErrTableNotFound
			}

			ts, _ := findTableSeats(tableSeats(tx.t), table.ID)
			if err := te.seatManager.ValidateMove(ts, r.ID, *req.SeatNumber); err != nil {
				return err
			}

			r.Seat(table.ID, *req.SeatNumber)
			tx.record(model.GameEventType_PlayerMoved, "%s moved from %s to %s", r.PlayerName, from, tableLabel(table, r.SeatNumber))
		}

		result = MoveResult{
			Registration:      r.Clone(),
			BalanceSuggestion: te.balanceSuggestion(tx.t),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func tableLabel(table *model.Table, seatNumber *int) string {
	if seatNumber == nil {
		return fmt.Sprintf("table %d", table.TableNumber)
	}
	return fmt.Sprintf("table %d seat %d", table.TableNumber, *seatNumber)
}

func (te *tournamentEngine) CheckTableBalance(ctx context.Context) (*seat_manager.BalanceSuggestion, error) {
	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	return te.balanceSuggestion(t), nil
}
