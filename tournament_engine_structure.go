package pokertournament

import (
	"context"
	"sort"

	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/payout"
)

func (te *tournamentEngine) GetLevels(ctx context.Context) (blind.Ladder, error) {
	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	if t.Levels == nil {
		return blind.Ladder{}, nil
	}
	return t.Levels, nil
}

func (te *tournamentEngine) AddLevel(ctx context.Context, req AddLevelRequest) (*blind.Level, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var added blind.Level
	_, err := te.update(ctx, "AddLevel", func(tx *transaction) error {
		ladder, level, err := tx.t.Levels.Add(req.ToLevel())
		if err != nil {
			return err
		}

		tx.t.Levels = ladder
		added = level
		tx.record(model.GameEventType_LevelsUpdated, "Level %d added", level.Number)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &added, nil
}

func (te *tournamentEngine) UpdateLevel(ctx context.Context, levelID string, patch blind.LevelPatch) (*blind.Level, error) {
	var updated blind.Level
	_, err := te.update(ctx, "UpdateLevel", func(tx *transaction) error {
		ladder, level, err := tx.t.Levels.Update(levelID, patch)
		if err != nil {
			return err
		}

		tx.t.Levels = ladder
		updated = level
		tx.record(model.GameEventType_LevelsUpdated, "Level %d updated", level.Number)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteLevel keeps the clock index inside the shortened ladder.
func (te *tournamentEngine) DeleteLevel(ctx context.Context, levelID string) error {
	_, err := te.update(ctx, "DeleteLevel", func(tx *transaction) error {
		idx, exist := tx.t.Levels.Find(levelID)
		if !exist {
			return ErrLevelNotFound
		}
		number := tx.t.Levels[idx].Number

		ladder, err := tx.t.Levels.Delete(levelID)
		if err != nil {
			return err
		}
		tx.t.Levels = ladder

		if last := ladder.Len() - 1; tx.t.Clock.CurrentLevelIndex > last {
			tx.t.Clock.CurrentLevelIndex = max(last, 0)
		}

		tx.record(model.GameEventType_LevelsUpdated, "Level %d deleted", number)
		return nil
	})
	return err
}

func (te *tournamentEngine) GetPayouts(ctx context.Context) (*PayoutsView, error) {
	t, err := te.load(ctx)
	if err != nil {
		return nil, err
	}

	return payoutsView(t), nil
}

/*
GeneratePayouts 依總報名數重新產生獎金表
  - 既有的獎金表 (含手動新增) 會被取代
  - 獎金池為 0 時回傳 ErrZeroPrizePool
*/
func (te *tournamentEngine) GeneratePayouts(ctx context.Context) (*PayoutsView, error) {
	t, err := te.update(ctx, "GeneratePayouts", func(tx *transaction) error {
		payouts, err := te.payoutEngine.Generate(tx.t.PrizePool(), tx.t.TotalEntries())
		if err != nil {
			return err
		}

		tx.t.Payouts = payouts
		tx.record(model.GameEventType_PayoutsUpdated, "%d payouts generated from prize pool %d", len(payouts), tx.t.PrizePool())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return payoutsView(t), nil
}

func (te *tournamentEngine) AddPayout(ctx context.Context, req AddPayoutRequest) (*payout.Payout, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var added payout.Payout
	_, err := te.update(ctx, "AddPayout", func(tx *transaction) error {
		p, err := payout.NewManualPayout(req.Place, req.Amount, req.Description)
		if err != nil {
			return err
		}

		tx.t.Payouts = append(tx.t.Payouts, p)
		added = p
		tx.record(model.GameEventType_PayoutsUpdated, "Payout for place %d added", *p.Place)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &added, nil
}

func (te *tournamentEngine) UpdatePayout(ctx context.Context, payoutID string, req UpdatePayoutRequest) (*payout.Payout, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated payout.Payout
	_, err := te.update(ctx, "UpdatePayout", func(tx *transaction) error {
		idx, exist := payout.Find(tx.t.Payouts, payoutID)
		if !exist {
			return ErrPayoutNotFound
		}

		p, err := payout.Apply(tx.t.Payouts[idx], req.PayoutPatch)
		if err != nil {
			return err
		}

		tx.t.Payouts[idx] = p
		updated = p
		tx.record(model.GameEventType_PayoutsUpdated, "Payout %s updated", p.Description)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (te *tournamentEngine) DeletePayout(ctx context.Context, payoutID string) error {
	_, err := te.update(ctx, "DeletePayout", func(tx *transaction) error {
		idx, exist := payout.Find(tx.t.Payouts, payoutID)
		if !exist {
			return ErrPayoutNotFound
		}

		description := tx.t.Payouts[idx].Description
		tx.t.Payouts = append(tx.t.Payouts[:idx], tx.t.Payouts[idx+1:]...)
		tx.record(model.GameEventType_PayoutsUpdated, "Payout %s deleted", description)
		return nil
	})
	return err
}

// payoutsView lists payouts by place, with manual rows without a place last.
func payoutsView(t *model.Tournament) *PayoutsView {
	view := &PayoutsView{
		Payouts:    make([]PayoutView, 0, len(t.Payouts)),
		PrizePool:  t.PrizePool(),
		PlacesPaid: len(t.Payouts),
	}

	names := make(map[string]string)
	for _, r := range t.Registrations {
		names[r.PlayerID] = r.PlayerName
	}

	for _, p := range t.Payouts {
		pv := PayoutView{
			Payout: p,
		}
		if p.PlayerID != nil {
			pv.PlayerName = names[*p.PlayerID]
		}
		view.Payouts = append(view.Payouts, pv)
	}

	sort.SliceStable(view.Payouts, func(i, j int) bool {
		a, b := view.Payouts[i].Place, view.Payouts[j].Place
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})

	return view
}
