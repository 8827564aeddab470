package blind

// Template is a reusable tournament structure. New tournaments copy its
// levels, so later edits of the template do not touch running events.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	BuyIn       *int64 `json:"buy_in,omitempty"`
	Stack       int64  `json:"stack"`
	Levels      Ladder `json:"levels"`
}

// Ladder returns a fresh copy of the template levels with new level IDs.
func (t Template) Ladder() Ladder {
	ladder := Ladder{}
	for _, level := range t.Levels {
		level.ID = ""
		updated, _, err := ladder.Add(level)
		if err != nil {
			continue
		}
		ladder = updated
	}
	return ladder
}

func DefaultTemplate() Template {
	return Template{
		Name:  "Standard",
		Type:  "PAID",
		Stack: 10000,
		Levels: NewLadder(
			Level{Number: 1, SmallBlind: 25, BigBlind: 50, DurationMins: DefaultDurationMins},
			Level{Number: 2, SmallBlind: 50, BigBlind: 100, DurationMins: DefaultDurationMins},
			Level{Number: 3, SmallBlind: 75, BigBlind: 150, DurationMins: DefaultDurationMins},
			Level{Number: 4, SmallBlind: 100, BigBlind: 200, Ante: 25, DurationMins: DefaultDurationMins},
			Level{Number: 5, DurationMins: 10, IsBreak: true},
			Level{Number: 6, SmallBlind: 150, BigBlind: 300, Ante: 50, DurationMins: DefaultDurationMins},
			Level{Number: 7, SmallBlind: 200, BigBlind: 400, Ante: 50, DurationMins: DefaultDurationMins},
			Level{Number: 8, SmallBlind: 300, BigBlind: 600, Ante: 75, DurationMins: DefaultDurationMins},
			Level{Number: 9, SmallBlind: 400, BigBlind: 800, Ante: 100, DurationMins: DefaultDurationMins},
			Level{Number: 10, SmallBlind: 600, BigBlind: 1200, Ante: 200, DurationMins: DefaultDurationMins},
		),
	}
}
