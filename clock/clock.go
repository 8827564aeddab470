package clock

import (
	"errors"
	"time"

	"github.com/weedbox/pokertournament/blind"
)

var (
	ErrClockFinished    = errors.New("clock: tournament already finished")
	ErrNoLevels         = errors.New("clock: no levels configured")
	ErrInvalidDirection = errors.New("clock: direction must be +1 or -1")
	ErrInvalidTimer     = errors.New("clock: timer value must not be negative")
	ErrInvalidDuration  = errors.New("clock: break duration must be positive")
)

type Status string

const (
	Status_Scheduled Status = "SCHEDULED"
	Status_Running   Status = "RUNNING"
	Status_Paused    Status = "PAUSED"
	Status_Break     Status = "BREAK"
	Status_Finished  Status = "FINISHED"
)

// Result reports the outcome of a clock operation. Boundary and no-op
// outcomes are results, not errors.
type Result string

const (
	Result_Started         Result = "started"
	Result_AlreadyRunning  Result = "already_running"
	Result_Paused          Result = "paused"
	Result_NotRunning      Result = "not_running"
	Result_LevelAdvanced   Result = "level_advanced"
	Result_LevelDecreased  Result = "level_decreased"
	Result_MaxLevelReached Result = "max_level_reached"
	Result_MinLevelReached Result = "min_level_reached"
	Result_TimerSet        Result = "timer_set"
	Result_BreakStarted    Result = "break_started"
	Result_Finished        Result = "tournament_finished"
)

const DefaultBreakDurationMins = 15

// State is the persisted clock snapshot of a tournament.
//
// While RUNNING or BREAK, LevelStartedAt is set and TimerSeconds is the
// baseline the elapsed time is subtracted from. Otherwise TimerSeconds is the
// authoritative remaining time.
type State struct {
	Status            Status     `json:"status"`
	CurrentLevelIndex int        `json:"current_level_index"`
	LevelStartedAt    *time.Time `json:"level_started_at,omitempty"`
	TimerSeconds      *int       `json:"timer_seconds,omitempty"`
	BreakStartedAt    *time.Time `json:"break_start_time,omitempty"`
	BreakDurationMins *int       `json:"break_duration_minutes,omitempty"`
}

func NewState() State {
	return State{
		Status:            Status_Scheduled,
		CurrentLevelIndex: 0,
	}
}

func (s State) IsTicking() bool {
	return (s.Status == Status_Running || s.Status == Status_Break) && s.LevelStartedAt != nil
}

type ClockOpt func(*Clock)

type Clock struct {
	now func() time.Time
}

func NewClock(opts ...ClockOpt) *Clock {
	c := &Clock{
		now: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithNow injects the time source used for elapsed time calculations.
func WithNow(now func() time.Time) ClockOpt {
	return func(c *Clock) {
		c.now = now
	}
}

func (c *Clock) Now() time.Time {
	return c.now()
}

func (c *Clock) Start(s *State, ladder blind.Ladder) (Result, error) {
	if s.Status == Status_Finished {
		return "", ErrClockFinished
	}

	if s.Status == Status_Running {
		return Result_AlreadyRunning, nil
	}

	if s.TimerSeconds == nil {
		level, exist := ladder.At(s.CurrentLevelIndex)
		if !exist {
			return "", ErrNoLevels
		}
		s.TimerSeconds = intPtr(level.DurationSeconds())
	}

	s.LevelStartedAt = c.nowPtr()
	s.Status = Status_Running
	return Result_Started, nil
}

func (c *Clock) Pause(s *State) (Result, error) {
	if s.Status == Status_Finished {
		return "", ErrClockFinished
	}

	if s.Status != Status_Running {
		return Result_NotRunning, nil
	}

	s.TimerSeconds = intPtr(c.elapsedRemaining(*s))
	s.LevelStartedAt = nil
	s.Status = Status_Paused
	return Result_Paused, nil
}

/*
AdvanceLevel 手動切換盲注等級
  - direction 只能是 +1 或 -1
  - 超出範圍時回傳 boundary result, 不修改狀態
  - 新等級從完整時間重新倒數
*/
func (c *Clock) AdvanceLevel(s *State, ladder blind.Ladder, direction int) (Result, error) {
	if s.Status == Status_Finished {
		return "", ErrClockFinished
	}

	if direction != 1 && direction != -1 {
		return "", ErrInvalidDirection
	}

	target := s.CurrentLevelIndex + direction
	level, exist := ladder.At(target)
	if !exist {
		if direction > 0 {
			return Result_MaxLevelReached, nil
		}
		return Result_MinLevelReached, nil
	}

	s.CurrentLevelIndex = target
	s.TimerSeconds = intPtr(level.DurationSeconds())
	if s.Status == Status_Running {
		s.LevelStartedAt = c.nowPtr()
	}

	if direction > 0 {
		return Result_LevelAdvanced, nil
	}
	return Result_LevelDecreased, nil
}

// AutoAdvance moves to the next level keeping the remaining time of the
// current countdown. It reports false at the final level.
func (c *Clock) AutoAdvance(s *State, ladder blind.Ladder) (bool, error) {
	if s.Status == Status_Finished {
		return false, ErrClockFinished
	}

	if ladder.IsFinalIndex(s.CurrentLevelIndex) {
		return false, nil
	}

	remaining := c.Remaining(*s, ladder)

	s.CurrentLevelIndex++
	s.TimerSeconds = intPtr(remaining)
	if s.IsTicking() {
		s.LevelStartedAt = c.nowPtr()
	}

	return true, nil
}

func (c *Clock) SetTimer(s *State, minutes, seconds int) (Result, error) {
	if s.Status == Status_Finished {
		return "", ErrClockFinished
	}

	total := minutes*60 + seconds
	if minutes < 0 || seconds < 0 || total < 0 {
		return "", ErrInvalidTimer
	}

	s.TimerSeconds = intPtr(total)
	if s.IsTicking() {
		s.LevelStartedAt = c.nowPtr()
	}

	return Result_TimerSet, nil
}

func (c *Clock) StartBreak(s *State, durationMins int) (Result, error) {
	if s.Status == Status_Finished {
		return "", ErrClockFinished
	}

	if durationMins <= 0 {
		return "", ErrInvalidDuration
	}

	now := c.nowPtr()
	s.BreakStartedAt = now
	s.BreakDurationMins = intPtr(durationMins)
	s.TimerSeconds = intPtr(durationMins * 60)
	s.LevelStartedAt = now
	s.Status = Status_Break
	return Result_BreakStarted, nil
}

// Finish freezes the remaining time and moves the clock to its terminal
// state. Calling it again is a no-op.
func (c *Clock) Finish(s *State) Result {
	if s.Status == Status_Finished {
		return Result_Finished
	}

	if s.IsTicking() {
		s.TimerSeconds = intPtr(c.elapsedRemaining(*s))
	}
	s.LevelStartedAt = nil
	s.Status = Status_Finished
	return Result_Finished
}

/*
Remaining 計算剩餘秒數 (每次讀取時計算, 不依賴背景計時器)
  - RUNNING / BREAK: max(0, timer_seconds - elapsed)
  - 其他狀態: timer_seconds
  - 尚未開始: 當前等級完整時間
*/
func (c *Clock) Remaining(s State, ladder blind.Ladder) int {
	if s.IsTicking() && s.TimerSeconds != nil {
		return c.elapsedRemaining(s)
	}

	if s.TimerSeconds != nil {
		return *s.TimerSeconds
	}

	if level, exist := ladder.At(s.CurrentLevelIndex); exist {
		return level.DurationSeconds()
	}

	return 0
}

func (c *Clock) elapsedRemaining(s State) int {
	if s.TimerSeconds == nil {
		return 0
	}

	if s.LevelStartedAt == nil {
		return *s.TimerSeconds
	}

	elapsed := c.now().Sub(*s.LevelStartedAt).Seconds()
	remaining := int(float64(*s.TimerSeconds) - elapsed)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Clock) nowPtr() *time.Time {
	now := c.now()
	return &now
}

func intPtr(v int) *int {
	return &v
}
