package models

import (
	"fmt"
	"time"
)

// WeekInfo describes the issue week, derived from the run date
type WeekInfo struct {
	ISOWeek int    `json:"isoWeek"`
	ISOYear int    `json:"isoYear"`
	Vol     string `json:"vol"`
	Week    string `json:"week"`
	Date    string `json:"date"`
	Range   string `json:"range"`
}

// NewWeekInfo computes the week labels for the given moment
func NewWeekInfo(now time.Time) WeekInfo {
	year, week := now.ISOWeek()

	// Monday of the ISO week
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
	sunday := monday.AddDate(0, 0, 6)

	return WeekInfo{
		ISOWeek: week,
		ISOYear: year,
		Vol:     fmt.Sprintf("Vol.%02d%02d", year%100, week),
		Week:    fmt.Sprintf("第%d周", week),
		Date:    now.Format("2006.01.02"),
		Range:   monday.Format("01.02") + "-" + sunday.Format("01.02"),
	}
}

// ItemDate formats a story date the way items carry it
func ItemDate(t time.Time) string {
	return t.Format("01.02")
}
