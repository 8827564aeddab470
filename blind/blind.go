package blind

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrInvalidLevel   = errors.New("blind: invalid level")
	ErrDuplicateLevel = errors.New("blind: level number already exists")
	ErrLevelNotFound  = errors.New("blind: level not found")
)

const DefaultDurationMins = 15

type Level struct {
	ID           string `json:"id"`
	Number       int    `json:"level_number"` // 盲注等級, starts from 1
	SmallBlind   int64  `json:"small_blind"`
	BigBlind     int64  `json:"big_blind"`
	Ante         int64  `json:"ante"`
	DurationMins int    `json:"duration"` // 等級持續時間 (minutes)
	IsBreak      bool   `json:"is_break"`
}

func (l Level) DurationSeconds() int {
	return l.DurationMins * 60
}

// LevelPatch carries the fields of an update request. Nil fields keep their
// current value.
type LevelPatch struct {
	Number       *int   `json:"level_number,omitempty"`
	SmallBlind   *int64 `json:"small_blind,omitempty"`
	BigBlind     *int64 `json:"big_blind,omitempty"`
	Ante         *int64 `json:"ante,omitempty"`
	DurationMins *int   `json:"duration,omitempty"`
	IsBreak      *bool  `json:"is_break,omitempty"`
}

// Ladder is the ordered blind structure of a tournament.
type Ladder []Level

func NewLadder(levels ...Level) Ladder {
	ladder := make(Ladder, 0, len(levels))
	ladder = append(ladder, levels...)
	ladder.sort()
	return ladder
}

func Validate(level Level) error {
	if level.Number < 1 ||
		level.SmallBlind < 0 ||
		level.BigBlind < 0 ||
		level.Ante < 0 ||
		level.DurationMins <= 0 {
		return ErrInvalidLevel
	}
	return nil
}

func (ladder Ladder) Len() int {
	return len(ladder)
}

func (ladder Ladder) At(idx int) (Level, bool) {
	if idx < 0 || idx >= len(ladder) {
		return Level{}, false
	}
	return ladder[idx], true
}

func (ladder Ladder) Next(idx int) (Level, bool) {
	return ladder.At(idx + 1)
}

func (ladder Ladder) IsFinalIndex(idx int) bool {
	return idx >= len(ladder)-1
}

func (ladder Ladder) Find(levelID string) (int, bool) {
	for idx, level := range ladder {
		if level.ID == levelID {
			return idx, true
		}
	}
	return -1, false
}

func (ladder Ladder) Clone() Ladder {
	if ladder == nil {
		return nil
	}
	cloned := make(Ladder, len(ladder))
	copy(cloned, ladder)
	return cloned
}

/*
Add 新增盲注等級
  - level number 在同一個賽事中不可重複
  - 未指定 ID 時自動產生
*/
func (ladder Ladder) Add(level Level) (Ladder, Level, error) {
	if err := Validate(level); err != nil {
		return ladder, Level{}, err
	}

	if ladder.hasNumber(level.Number, "") {
		return ladder, Level{}, ErrDuplicateLevel
	}

	if level.ID == "" {
		level.ID = uuid.New().String()
	}

	updated := append(ladder.Clone(), level)
	updated.sort()
	return updated, level, nil
}

func (ladder Ladder) Update(levelID string, patch LevelPatch) (Ladder, Level, error) {
	idx, exist := ladder.Find(levelID)
	if !exist {
		return ladder, Level{}, ErrLevelNotFound
	}

	level := ladder[idx]
	if patch.Number != nil {
		level.Number = *patch.Number
	}
	if patch.SmallBlind != nil {
		level.SmallBlind = *patch.SmallBlind
	}
	if patch.BigBlind != nil {
		level.BigBlind = *patch.BigBlind
	}
	if patch.Ante != nil {
		level.Ante = *patch.Ante
	}
	if patch.DurationMins != nil {
		level.DurationMins = *patch.DurationMins
	}
	if patch.IsBreak != nil {
		level.IsBreak = *patch.IsBreak
	}

	if err := Validate(level); err != nil {
		return ladder, Level{}, err
	}

	if ladder.hasNumber(level.Number, level.ID) {
		return ladder, Level{}, ErrDuplicateLevel
	}

	updated := ladder.Clone()
	updated[idx] = level
	updated.sort()
	return updated, level, nil
}

func (ladder Ladder) Delete(levelID string) (Ladder, error) {
	idx, exist := ladder.Find(levelID)
	if !exist {
		return ladder, ErrLevelNotFound
	}

	updated := make(Ladder, 0, len(ladder)-1)
	updated = append(updated, ladder[:idx]...)
	updated = append(updated, ladder[idx+1:]...)
	return updated, nil
}

func (ladder Ladder) hasNumber(number int, exceptID string) bool {
	for _, level := range ladder {
		if level.Number == number && level.ID != exceptID {
			return true
		}
	}
	return false
}

func (ladder Ladder) sort() {
	sort.SliceStable(ladder, func(i, j int) bool {
		return ladder[i].Number < ladder[j].Number
	})
}
