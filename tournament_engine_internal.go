package pokertournament

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/seat_manager"
)

// transaction is the working copy of one locked state change. Events are
// appended to the aggregate and fired only after the save succeeded.
type transaction struct {
	te     *tournamentEngine
	t      *model.Tournament
	events []model.GameEvent
}

func (tx *transaction) record(eventType model.GameEventType, format string, args ...interface{}) {
	event := model.GameEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Description: fmt.Sprintf(format, args...),
		Timestamp:   tx.te.clock.Now(),
	}
	tx.t.AddEvent(event)
	tx.events = append(tx.events, tx.t.Events[len(tx.t.Events)-1])
}

func (tx *transaction) changed() bool {
	return len(tx.events) > 0
}

func (tx *transaction) levelNumber() int {
	level, exist := tx.t.CurrentLevel()
	if !exist {
		return tx.t.Clock.CurrentLevelIndex + 1
	}
	return level.Number
}

func (te *tournamentEngine) load(ctx context.Context) (*model.Tournament, error) {
	t, err := te.store.LoadTournament(ctx, te.tournamentID)
	if err != nil {
		return nil, translateError(err)
	}
	return t, nil
}

/*
update 以單一交易執行狀態變更
  - 取得 engine lock, 從 store 讀取副本後交給 fn 修改
  - fn 回傳錯誤時不寫回任何變更
  - 沒有產生事件視為沒有變更, 不寫回 store
  - 事件與 callback 在釋放 lock 之後才觸發, callback 可以再呼叫 engine
*/
func (te *tournamentEngine) update(ctx context.Context, action string, fn func(tx *transaction) error) (*model.Tournament, error) {
	tx, err := te.commit(ctx, fn)
	if err != nil {
		te.emitErrorEvent(action, err)
		return nil, err
	}

	if !tx.changed() {
		return tx.t, nil
	}

	for _, event := range tx.events {
		te.emitEvent(action, event)
	}
	te.onTournamentUpdated(tx.t)

	return tx.t, nil
}

func (te *tournamentEngine) commit(ctx context.Context, fn func(tx *transaction) error) (*transaction, error) {
	te.lock.Lock()
	defer te.lock.Unlock()

	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	tx := &transaction{
		te: te,
		t:  t,
	}

	if err := fn(tx); err != nil {
		return nil, translateError(err)
	}

	if !tx.changed() {
		return tx, nil
	}

	tx.t.Touch(te.clock.Now())
	if err := te.store.SaveTournament(ctx, tx.t); err != nil {
		return nil, translateError(err)
	}

	return tx, nil
}

func (te *tournamentEngine) clockAction(ctx context.Context, action string, fn func(tx *transaction) (clock.Result, error)) (*ClockResult, error) {
	var result clock.Result
	t, err := te.update(ctx, action, func(tx *transaction) error {
		r, err := fn(tx)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ClockResult{
		Result: result,
		Status: te.clockStatus(t),
	}, nil
}

func (te *tournamentEngine) clockStatus(t *model.Tournament) ClockStatus {
	status := ClockStatus{
		TournamentID:      t.ID,
		Status:            t.Clock.Status,
		RemainingSeconds:  te.clock.Remaining(t.Clock, t.Levels),
		CurrentLevelIndex: t.Clock.CurrentLevelIndex,
		PlayersRemaining:  t.RegisteredCount(),
		TotalEntries:      t.TotalEntries(),
		AverageStack:      t.AverageStack(),
		PrizePool:         t.PrizePool(),
	}

	if level, exist := t.CurrentLevel(); exist {
		status.Level = NewLevelSummary(level)
	}

	if level, exist := t.NextLevel(); exist {
		status.NextLevel = NewLevelSummary(level)
	}

	return status
}

// tableSeats builds the occupancy snapshot the seat manager works on. Only
// REGISTERED entries holding a seat occupy it.
func tableSeats(t *model.Tournament) []seat_manager.TableSeats {
	tables := make([]seat_manager.TableSeats, 0, len(t.Tables))
	for _, table := range t.Tables {
		ts := seat_manager.TableSeats{
			TableID:     table.ID,
			TableNumber: table.TableNumber,
			MaxSeats:    table.MaxSeats,
			Players:     make([]seat_manager.SeatPlayer, 0),
		}

		for _, r := range t.SeatedAt(table.ID) {
			if r.SeatNumber == nil {
				continue
			}

			ts.Players = append(ts.Players, seat_manager.SeatPlayer{
				RegistrationID: r.ID,
				PlayerName:     r.PlayerName,
				SeatNumber:     *r.SeatNumber,
			})
		}

		tables = append(tables, ts)
	}

	sort.Slice(tables, func(i, j int) bool {
		return tables[i].TableNumber < tables[j].TableNumber
	})

	return tables
}

func findTableSeats(tables []seat_manager.TableSeats, tableID string) (seat_manager.TableSeats, bool) {
	for _, ts := range tables {
		if ts.TableID == tableID {
			return ts, true
		}
	}
	return seat_manager.TableSeats{}, false
}

func (te *tournamentEngine) balanceSuggestion(t *model.Tournament) *seat_manager.BalanceSuggestion {
	return te.seatManager.CheckTableBalance(tableSeats(t))
}
