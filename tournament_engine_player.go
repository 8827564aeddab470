package pokertournament

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
	"github.com/weedbox/pokertournament/points"
)

/*
RegisterPlayer 報名
  - PlayerID 有值時使用既有玩家, 否則以 Name 建立新玩家
  - 同一玩家在同一賽事只能報名一次
  - 停止報名後不接受報名
*/
func (te *tournamentEngine) RegisterPlayer(ctx context.Context, req RegisterPlayerRequest) (*model.Registration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var registration *model.Registration
	_, err := te.update(ctx, "RegisterPlayer", func(tx *transaction) error {
		if tx.t.RegistrationClosed {
			return ErrRegistrationClosed
		}

		if req.PlayerID != "" && tx.t.FindRegistrationByPlayer(req.PlayerID) != nil {
			return ErrAlreadyRegistered
		}

		player, err := te.resolvePlayer(ctx, req)
		if err != nil {
			return err
		}

		if tx.t.FindRegistrationByPlayer(player.ID) != nil {
			return ErrAlreadyRegistered
		}

		registration = &model.Registration{
			ID:           uuid.New().String(),
			TournamentID: tx.t.ID,
			PlayerID:     player.ID,
			PlayerName:   player.DisplayName(),
			Status:       model.RegistrationStatus_Registered,
			CreatedAt:    te.clock.Now(),
		}
		tx.t.Registrations = append(tx.t.Registrations, registration)

		tx.record(model.GameEventType_PlayerRegistered, "%s registered", registration.PlayerName)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return registration.Clone(), nil
}

func (te *tournamentEngine) resolvePlayer(ctx context.Context, req RegisterPlayerRequest) (*model.Player, error) {
	if req.PlayerID != "" {
		return te.store.GetPlayer(ctx, req.PlayerID)
	}

	player := req.NewPlayer(te.clock.Now())
	if err := te.store.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}

	return player, nil
}

/*
EliminatePlayer 淘汰玩家
  - 名次為淘汰前仍在場上的人數
  - FREE 賽事計算積分並自動升一個盲注等級 (保留剩餘時間)
  - 綁定該名次的獎金
  - 回傳拆併桌建議
*/
func (te *tournamentEngine) EliminatePlayer(ctx context.Context, req EliminatePlayerRequest) (*EliminationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result EliminationResult
	_, err := te.update(ctx, "EliminatePlayer", func(tx *transaction) error {
		r := tx.t.FindRegistration(req.RegistrationID)
		if r == nil {
			return ErrRegistrationNotFound
		}

		if r.IsEliminated() {
			return ErrAlreadyEliminated
		}

		place := tx.t.RegisteredCount()
		score := 0
		if tx.t.IsFree() {
			score = points.Award(place, tx.t.TotalRegistrations(), req.BountyCount)
		}

		r.Status = model.RegistrationStatus_Eliminated
		r.Place = &place
		r.BountyCount = req.BountyCount
		r.Points = &score
		r.Unseat()

		result = EliminationResult{
			RegistrationID: r.ID,
			PlayerID:       r.PlayerID,
			Place:          place,
			BountyCount:    req.BountyCount,
			Points:         score,
		}

		if idx := payout.Bind(tx.t.Payouts, place, r.PlayerID); idx >= 0 {
			amount := tx.t.Payouts[idx].Amount
			result.PayoutAmount = &amount
		}

		tx.record(model.GameEventType_PlayerEliminated, "%s eliminated in place %d", r.PlayerName, place)

		if tx.t.IsFree() && tx.t.Clock.Status != clock.Status_Finished {
			advanced, err := te.clock.AutoAdvance(&tx.t.Clock, tx.t.Levels)
			if err != nil {
				return err
			}

			if advanced {
				newLevel := tx.t.Clock.CurrentLevelIndex + 1
				result.LevelAdvanced = true
				result.NewLevel = &newLevel
				tx.record(model.GameEventType_LevelChanged, "Level changed to %d after elimination", tx.levelNumber())
			}
		}

		result.BalanceSuggestion = te.balanceSuggestion(tx.t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	te.emitPlayerEliminated(result)
	return &result, nil
}

// Rebuy does not check the registration status. Eliminated entries can
// still rebuy; it only raises the prize pool.
func (te *tournamentEngine) Rebuy(ctx context.Context, registrationID string) (*model.Registration, error) {
	return te.updateRegistration(ctx, "Rebuy", registrationID, func(tx *transaction, r *model.Registration) {
		r.Rebuys++
		tx.record(model.GameEventType_PlayerRebuy, "%s rebuy (%d)", r.PlayerName, r.Rebuys)
	})
}

func (te *tournamentEngine) Addon(ctx context.Context, registrationID string) (*model.Registration, error) {
	return te.updateRegistration(ctx, "Addon", registrationID, func(tx *transaction, r *model.Registration) {
		r.Addons++
		tx.record(model.GameEventType_PlayerAddon, "%s add-on (%d)", r.PlayerName, r.Addons)
	})
}

func (te *tournamentEngine) updateRegistration(ctx context.Context, action string, registrationID string, fn func(tx *transaction, r *model.Registration)) (*model.Registration, error) {
	var registration *model.Registration
	_, err := te.update(ctx, action, func(tx *transaction) error {
		r := tx.t.FindRegistration(registrationID)
		if r == nil {
			return ErrRegistrationNotFound
		}

		fn(tx, r)
		registration = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return registration.Clone(), nil
}

func (te *tournamentEngine) Unregister(ctx context.Context, registrationID string) error {
	_, err := te.update(ctx, "Unregister", func(tx *transaction) error {
		r := tx.t.FindRegistration(registrationID)
		if r == nil {
			return ErrRegistrationNotFound
		}

		if r.IsEliminated() {
			return ErrCannotUnregisterEliminated
		}

		tx.t.RemoveRegistration(registrationID)
		tx.record(model.GameEventType_PlayerUnregistered, "%s unregistered", r.PlayerName)
		return nil
	})
	return err
}

/*
GetPlayers 取得報名列表
  - 已入座 > 未入座 > 已淘汰 (依名次)
  - 同組內依報名時間排序
*/
func (te *tournamentEngine) GetPlayers(ctx context.Context) ([]*model.Registration, error) {
	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	registrations := make([]*model.Registration, 0, len(t.Registrations))
	registrations = append(registrations, t.Registrations...)

	sort.SliceStable(registrations, func(i, j int) bool {
		a, b := registrations[i], registrations[j]
		if ga, gb := playerGroup(a), playerGroup(b); ga != gb {
			return ga < gb
		}

		if a.IsEliminated() && a.Place != nil && b.Place != nil && *a.Place != *b.Place {
			return *a.Place < *b.Place
		}

		return a.CreatedAt.Before(b.CreatedAt)
	})

	return registrations, nil
}

func playerGroup(r *model.Registration) int {
	switch {
	case r.IsEliminated():
		return 2
	case r.IsSeated():
		return 0
	}
	return 1
}
