package stats

import (
	"errors"
	"time"

	"github.com/weedbox/pokertournament/clock"
	"github.com/weedbox/pokertournament/model"
	"github.com/weedbox/pokertournament/store"
)

var (
	ErrUnknownSeason = errors.New("stats: unknown season")
	ErrInvalidRange  = errors.New("stats: date_from is after date_to")
)

const (
	Season_Winter = "winter"
	Season_Spring = "spring"
	Season_Summer = "summer"
	Season_Autumn = "autumn"
)

// Query selects the FINISHED tournaments of one type. From and To are
// inclusive calendar days. A Season overrides From and To; Year defaults to
// the current year.
type Query struct {
	Type   model.TournamentType `json:"type"`
	From   *time.Time           `json:"date_from,omitempty"`
	To     *time.Time           `json:"date_to,omitempty"`
	Season string               `json:"season,omitempty"`
	Year   int                  `json:"year,omitempty"`
}

/*
SeasonRange 取得賽季日期區間 (含頭尾)
  - winter: 12/01 ~ 隔年 02/28
  - spring: 03/01 ~ 05/31
  - summer: 06/01 ~ 08/31
  - autumn: 09/01 ~ 11/30
*/
func SeasonRange(season string, year int) (time.Time, time.Time, error) {
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	switch season {
	case Season_Winter:
		return day(year, time.December, 1), day(year+1, time.February, 28), nil
	case Season_Spring:
		return day(year, time.March, 1), day(year, time.May, 31), nil
	case Season_Summer:
		return day(year, time.June, 1), day(year, time.August, 31), nil
	case Season_Autumn:
		return day(year, time.September, 1), day(year, time.November, 30), nil
	}

	return time.Time{}, time.Time{}, ErrUnknownSeason
}

// Filter converts q into a store filter. The upper bound becomes the start
// of the day after To.
func (q Query) Filter(now time.Time) (store.TournamentFilter, error) {
	filter := store.TournamentFilter{
		Type:   q.Type,
		Status: clock.Status_Finished,
	}

	from, to := q.From, q.To
	if q.Season != "" {
		year := q.Year
		if year == 0 {
			year = now.Year()
		}

		start, end, err := SeasonRange(q.Season, year)
		if err != nil {
			return filter, err
		}
		from, to = &start, &end
	}

	if from != nil && to != nil && truncateDay(*from).After(truncateDay(*to)) {
		return filter, ErrInvalidRange
	}

	if from != nil {
		start := truncateDay(*from)
		filter.From = &start
	}

	if to != nil {
		end := truncateDay(*to).AddDate(0, 0, 1)
		filter.To = &end
	}

	return filter, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
