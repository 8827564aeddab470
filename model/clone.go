package model

import (
	"time"

	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/payout"
)

// Clone returns a deep copy, so the result can be mutated without touching
// the original.
func (t *Tournament) Clone() *Tournament {
	if t == nil {
		return nil
	}

	cloned := *t
	cloned.BuyIn = cloneInt64(t.BuyIn)
	cloned.Clock = cloneClockState(t.Clock)
	cloned.Levels = t.Levels.Clone()

	if t.Registrations != nil {
		cloned.Registrations = make([]*Registration, 0, len(t.Registrations))
		for _, r := range t.Registrations {
			cloned.Registrations = append(cloned.Registrations, r.Clone())
		}
	}

	if t.Tables != nil {
		cloned.Tables = make([]*Table, 0, len(t.Tables))
		for _, table := range t.Tables {
			tc := *table
			cloned.Tables = append(cloned.Tables, &tc)
		}
	}

	if t.Payouts != nil {
		cloned.Payouts = make([]payout.Payout, 0, len(t.Payouts))
		for _, p := range t.Payouts {
			p.Place = cloneInt(p.Place)
			p.PlayerID = cloneString(p.PlayerID)
			cloned.Payouts = append(cloned.Payouts, p)
		}
	}

	if t.Events != nil {
		cloned.Events = make([]GameEvent, len(t.Events))
		copy(cloned.Events, t.Events)
	}

	return &cloned
}

func (r *Registration) Clone() *Registration {
	cloned := *r
	cloned.TableID = cloneString(r.TableID)
	cloned.SeatNumber = cloneInt(r.SeatNumber)
	cloned.Place = cloneInt(r.Place)
	cloned.Points = cloneInt(r.Points)
	return &cloned
}

func (p *Player) Clone() *Player {
	cloned := *p
	return &cloned
}

func cloneClockState(s clock.State) clock.State {
	s.LevelStartedAt = cloneTime(s.LevelStartedAt)
	s.TimerSeconds = cloneInt(s.TimerSeconds)
	s.BreakStartedAt = cloneTime(s.BreakStartedAt)
	s.BreakDurationMins = cloneInt(s.BreakDurationMins)
	return s
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
