package pokertournament

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
	"github.com/weedbox/pokertournament/seat_manager"
	"github.com/weedbox/pokertournament/store"
)

type TournamentEngine interface {
	// Events
	OnTournamentUpdated(fn func(*model.Tournament))                            // 賽事更新事件監聽器
	OnTournamentErrorUpdated(fn func(tournamentID string, err error))          // 錯誤更新事件監聽器
	OnTournamentEvent(fn func(model.GameEvent))                                // 賽事紀錄監聽器
	OnPlayerEliminated(fn func(tournamentID string, result EliminationResult)) // 玩家淘汰監聽器

	// Tournament Actions
	GetTournamentID() string                                                           // 取得賽事 ID
	GetTournament(ctx context.Context) (*model.Tournament, error)                      // 取得賽事
	SetRegistrationClosed(ctx context.Context, closed bool) (*model.Tournament, error) // 開關報名
	GetEvents(ctx context.Context) ([]model.GameEvent, error)                          // 取得賽事紀錄

	// Clock Actions
	StartClock(ctx context.Context) (*ClockResult, error)                    // 開始計時
	PauseClock(ctx context.Context) (*ClockResult, error)                    // 暫停計時
	AdvanceLevel(ctx context.Context, direction int) (*ClockResult, error)   // 升降盲注等級
	SetTimer(ctx context.Context, req SetTimerRequest) (*ClockResult, error) // 設定剩餘時間
	StartBreak(ctx context.Context, durationMins int) (*ClockResult, error)  // 中場休息
	FinishTournament(ctx context.Context) (*ClockResult, error)              // 結束賽事
	GetClockStatus(ctx context.Context) (*ClockStatus, error)                // 取得計時器狀態

	// Player Actions
	RegisterPlayer(ctx context.Context, req RegisterPlayerRequest) (*model.Registration, error)  // 報名
	EliminatePlayer(ctx context.Context, req EliminatePlayerRequest) (*EliminationResult, error) // 淘汰
	Rebuy(ctx context.Context, registrationID string) (*model.Registration, error)               // 重購
	Addon(ctx context.Context, registrationID string) (*model.Registration, error)               // 加購
	Unregister(ctx context.Context, registrationID string) error                                 // 取消報名
	GetPlayers(ctx context.Context) ([]*model.Registration, error)                               // 取得報名列表

	// Table Actions
	GenerateTables(ctx context.Context) (*SeatingResult, error)                              // 重新產生桌次並隨機入座
	GetTables(ctx context.Context) ([]TableView, error)                                      // 取得桌次
	ClearTables(ctx context.Context) error                                                   // 清除所有桌次
	AddTable(ctx context.Context, req AddTableRequest) (*model.Table, error)                 // 新增桌次
	DeleteTable(ctx context.Context, tableID string) error                                   // 刪除桌次
	SeatSelectedPlayers(ctx context.Context, req SeatPlayersRequest) (*SeatingResult, error) // 指定玩家入座
	MovePlayer(ctx context.Context, req MovePlayerRequest) (*MoveResult, error)              // 換位
	CheckTableBalance(ctx context.Context) (*seat_manager.BalanceSuggestion, error)          // 拆併桌建議

	// Level Actions
	GetLevels(ctx context.Context) (blind.Ladder, error)                                           // 取得盲注結構
	AddLevel(ctx context.Context, req AddLevelRequest) (*blind.Level, error)                       // 新增等級
	UpdateLevel(ctx context.Context, levelID string, patch blind.LevelPatch) (*blind.Level, error) // 更新等級
	DeleteLevel(ctx context.Context, levelID string) error                                         // 刪除等級

	// Payout Actions
	GetPayouts(ctx context.Context) (*PayoutsView, error)                                               // 取得獎金表
	GeneratePayouts(ctx context.Context) (*PayoutsView, error)                                          // 依報名數產生獎金表
	AddPayout(ctx context.Context, req AddPayoutRequest) (*payout.Payout, error)                        // 新增獎金
	UpdatePayout(ctx context.Context, payoutID string, req UpdatePayoutRequest) (*payout.Payout, error) // 更新獎金
	DeletePayout(ctx context.Context, payoutID string) error                                            // 刪除獎金
}

type tournamentEngine struct {
	lock                     sync.Mutex
	tournamentID             string
	store                    store.Store
	options                  *TournamentEngineOptions
	clock                    *clock.Clock
	seatManager              seat_manager.SeatManager
	payoutEngine             *payout.PayoutEngine
	logger                   *logrus.Logger
	onTournamentUpdated      func(*model.Tournament)
	onTournamentErrorUpdated func(string, error)
	onTournamentEvent        func(model.GameEvent)
	onPlayerEliminated       func(string, EliminationResult)
}

func NewTournamentEngine(tournamentID string, st store.Store, options *TournamentEngineOptions, opts ...TournamentEngineOpt) TournamentEngine {
	if options == nil {
		options = NewTournamentEngineOptions()
	}

	callbacks := NewTournamentEngineCallbacks()
	te := &tournamentEngine{
		tournamentID:             tournamentID,
		store:                    st,
		options:                  options,
		clock:                    clock.NewClock(),
		seatManager:              seat_manager.NewSeatManager(),
		payoutEngine:             payout.NewPayoutEngine(options.Paytable),
		logger:                   logrus.StandardLogger(),
		onTournamentUpdated:      callbacks.OnTournamentUpdated,
		onTournamentErrorUpdated: callbacks.OnTournamentErrorUpdated,
		onTournamentEvent:        callbacks.OnTournamentEvent,
		onPlayerEliminated:       callbacks.OnPlayerEliminated,
	}

	for _, opt := range opts {
		opt(te)
	}

	return te
}

func (te *tournamentEngine) OnTournamentUpdated(fn func(*model.Tournament)) {
	te.onTournamentUpdated = fn
}

func (te *tournamentEngine) OnTournamentErrorUpdated(fn func(string, error)) {
	te.onTournamentErrorUpdated = fn
}

func (te *tournamentEngine) OnTournamentEvent(fn func(model.GameEvent)) {
	te.onTournamentEvent = fn
}

func (te *tournamentEngine) OnPlayerEliminated(fn func(string, EliminationResult)) {
	te.onPlayerEliminated = fn
}

func (te *tournamentEngine) GetTournamentID() string {
	return te.tournamentID
}

func (te *tournamentEngine) GetTournament(ctx context.Context) (*model.Tournament, error) {
	return te.load(ctx)
}

func (te *tournamentEngine) SetRegistrationClosed(ctx context.Context, closed bool) (*model.Tournament, error) {
	return te.update(ctx, "SetRegistrationClosed", func(tx *transaction) error {
		if tx.t.RegistrationClosed == closed {
			return nil
		}

		tx.t.RegistrationClosed = closed
		if closed {
			tx.record(model.GameEventType_RegistrationToggled, "Registration closed")
		} else {
			tx.record(model.GameEventType_RegistrationToggled, "Registration opened")
		}
		return nil
	})
}

func (te *tournamentEngine) GetEvents(ctx context.Context) ([]model.GameEvent, error) {
	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	if t.Events == nil {
		return []model.GameEvent{}, nil
	}
	return t.Events, nil
}

/*
StartClock 開始或繼續計時
  - 已在計時中時回傳 already_running, 不做任何變更
  - 第一次開始時以當前等級完整時間為倒數
*/
func (te *tournamentEngine) StartClock(ctx context.Context) (*ClockResult, error) {
	return te.clockAction(ctx, "StartClock", func(tx *transaction) (clock.Result, error) {
		result, err := te.clock.Start(&tx.t.Clock, tx.t.Levels)
		if err != nil || result != clock.Result_Started {
			return result, err
		}

		tx.record(model.GameEventType_ClockStarted, "Clock started at level %d", tx.levelNumber())
		return result, nil
	})
}

func (te *tournamentEngine) PauseClock(ctx context.Context) (*ClockResult, error) {
	return te.clockAction(ctx, "PauseClock", func(tx *transaction) (clock.Result, error) {
		result, err := te.clock.Pause(&tx.t.Clock)
		if err != nil || result != clock.Result_Paused {
			return result, err
		}

		tx.record(model.GameEventType_ClockPaused, "Clock paused with %d seconds remaining", *tx.t.Clock.TimerSeconds)
		return result, nil
	})
}

func (te *tournamentEngine) AdvanceLevel(ctx context.Context, direction int) (*ClockResult, error) {
	if direction != 1 && direction != -1 {
		return nil, NewValidationError("direction must be 1 or -1")
	}

	return te.clockAction(ctx, "AdvanceLevel", func(tx *transaction) (clock.Result, error) {
		result, err := te.clock.AdvanceLevel(&tx.t.Clock, tx.t.Levels, direction)
		if err != nil {
			return result, err
		}

		if result == clock.Result_LevelAdvanced || result == clock.Result_LevelDecreased {
			tx.record(model.GameEventType_LevelChanged, "Level changed to %d", tx.levelNumber())
		}
		return result, nil
	})
}

func (te *tournamentEngine) SetTimer(ctx context.Context, req SetTimerRequest) (*ClockResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return te.clockAction(ctx, "SetTimer", func(tx *transaction) (clock.Result, error) {
		result, err := te.clock.SetTimer(&tx.t.Clock, req.Minutes, req.Seconds)
		if err != nil {
			return result, err
		}

		tx.record(model.GameEventType_TimerSet, "Timer set to %02d:%02d", req.Minutes, req.Seconds)
		return result, nil
	})
}

func (te *tournamentEngine) StartBreak(ctx context.Context, durationMins int) (*ClockResult, error) {
	if durationMins == 0 {
		durationMins = te.options.BreakDurationMins
	}

	if durationMins < 0 {
		return nil, NewValidationError("break duration must be positive")
	}

	return te.clockAction(ctx, "StartBreak", func(tx *transaction) (clock.Result, error) {
		result, err := te.clock.StartBreak(&tx.t.Clock, durationMins)
		if err != nil {
			return result, err
		}

		tx.record(model.GameEventType_BreakStarted, "Break started for %d minutes", durationMins)
		return result, nil
	})
}

func (te *tournamentEngine) FinishTournament(ctx context.Context) (*ClockResult, error) {
	return te.clockAction(ctx, "FinishTournament", func(tx *transaction) (clock.Result, error) {
		if tx.t.Clock.Status == clock.Status_Finished {
			return clock.Result_Finished, nil
		}

		result := te.clock.Finish(&tx.t.Clock)
		tx.record(model.GameEventType_TournamentFinished, "Tournament finished with %d players remaining", tx.t.RegisteredCount())
		return result, nil
	})
}

func (te *tournamentEngine) GetClockStatus(ctx context.Context) (*ClockStatus, error) {
	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	status := te.clockStatus(t)
	return &status, nil
}
