package payout

import "math"

// Row describes the places paid for fields up to MaxEntries entrants.
// Percentages are in basis points (10000 = 100%).
type Row struct {
	MaxEntries  int
	Percentages []int
}

type Paytable struct {
	Name      string
	Increment int64 // amounts are rounded to a multiple of this
	Rows      []Row // ordered by MaxEntries, the last row is open ended
}

var DefaultPaytable = &Paytable{
	Name:      "Standard",
	Increment: 10,
	Rows: []Row{
		{
			MaxEntries:  10,
			Percentages: []int{7000, 3000},
		},
		{
			MaxEntries:  20,
			Percentages: []int{5000, 3000, 2000},
		},
		{
			MaxEntries:  30,
			Percentages: []int{4500, 2700, 1800, 1000},
		},
		{
			MaxEntries:  math.MaxInt,
			Percentages: []int{4000, 2500, 1700, 1100, 700},
		},
	},
}

// Percentages returns the payout split for the given entrant count. Small
// fields never pay more places than there are entrants.
func (pt *Paytable) Percentages(entries int) []int {
	if len(pt.Rows) == 0 || entries <= 0 {
		return []int{}
	}

	row := pt.Rows[len(pt.Rows)-1]
	for _, r := range pt.Rows {
		if entries <= r.MaxEntries {
			row = r
			break
		}
	}

	places := len(row.Percentages)
	if entries < places {
		places = entries
	}

	return row.Percentages[:places]
}

// Amount applies a percentage to the pool, truncating to a whole unit first
// and then rounding half to even to the paytable increment.
func (pt *Paytable) Amount(pool int64, percentage int) int64 {
	raw := pool * int64(percentage) / 10000

	increment := pt.Increment
	if increment <= 0 {
		increment = 1
	}

	return int64(math.RoundToEven(float64(raw)/float64(increment))) * increment
}
