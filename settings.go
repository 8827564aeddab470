package pokertournament

import (
	"strings"
	"time"

	"github.com/weedbox/pokertournament/blind"
	"github.com/weedbox/pokertournament/model"
)

type TournamentSetting struct {
	Name     string               `json:"name"`
	Date     time.Time            `json:"date"`
	Season   string               `json:"season,omitempty"`
	Type     model.TournamentType `json:"type"`
	BuyIn    *int64               `json:"buy_in,omitempty"`
	Stack    int64                `json:"stack"`
	Levels   []blind.Level        `json:"levels"`
	Template *blind.Template      `json:"template,omitempty"` // 套用賽事範本
}

/*
Resolve 補齊建立賽事所需的設定
  - 有範本時, 未指定的欄位以範本為準
  - 未指定籌碼時使用預設 10000
*/
func (ts TournamentSetting) Resolve() (TournamentSetting, blind.Ladder, error) {
	resolved := ts
	ladder := blind.Ladder{}

	if ts.Template != nil {
		if resolved.Type == "" {
			resolved.Type = model.TournamentType(ts.Template.Type)
		}
		if resolved.BuyIn == nil && ts.Template.BuyIn != nil {
			buyIn := *ts.Template.BuyIn
			resolved.BuyIn = &buyIn
		}
		if resolved.Stack == 0 {
			resolved.Stack = ts.Template.Stack
		}
		if len(ts.Levels) == 0 {
			ladder = ts.Template.Ladder()
		}
	}

	for _, level := range ts.Levels {
		level.ID = ""
		updated, _, err := ladder.Add(level)
		if err != nil {
			return resolved, nil, translateError(err)
		}
		ladder = updated
	}

	if resolved.Type == "" {
		resolved.Type = model.TournamentType_Paid
	}
	if resolved.Stack == 0 {
		resolved.Stack = model.DefaultStack
	}

	resolved.Name = strings.TrimSpace(resolved.Name)
	if resolved.Name == "" {
		return resolved, nil, NewValidationError("tournament name is required")
	}
	if !resolved.Type.IsValid() {
		return resolved, nil, NewValidationError("unknown tournament type %q", resolved.Type)
	}
	if resolved.Stack < 0 {
		return resolved, nil, NewValidationError("stack must be positive")
	}
	if resolved.BuyIn != nil && *resolved.BuyIn < 0 {
		return resolved, nil, NewValidationError("buy-in must not be negative")
	}

	return resolved, ladder, nil
}
