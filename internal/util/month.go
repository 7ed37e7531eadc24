package util

import (
	"fmt"
	"time"

	"github.com/dafibh/ledger/ledger-backend/internal/domain"
)

// MonthLayout is the canonical month key format
const MonthLayout = "2006-01"

// DayLayout is the key format of a local calendar day
const DayLayout = "2006-01-02"

// ParseMonth parses a YYYY-MM month key
func ParseMonth(month string) (year int, m time.Month, err error) {
	if len(month) != len(MonthLayout) {
		return 0, 0, fmt.Errorf("%w: %q", domain.ErrInvalidMonth, month)
	}
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", domain.ErrInvalidMonth, month)
	}
	return t.Year(), t.Month(), nil
}

// ValidateMonth returns domain.ErrInvalidMonth unless month is a YYYY-MM key
func ValidateMonth(month string) error {
	_, _, err := ParseMonth(month)
	return err
}

// MonthRange returns the half-open range [start, end) of a month in loc
func MonthRange(month string, loc *time.Location) (start, end time.Time, err error) {
	year, m, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = time.Date(year, m, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0), nil
}

// MonthOf returns the month key of t as seen in loc
func MonthOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(MonthLayout)
}

// DayOf returns the calendar day key of t as seen in loc
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// PreviousMonth returns the month key before month
func PreviousMonth(month string) (string, error) {
	year, m, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	if m == time.January {
		return fmt.Sprintf("%04d-12", year-1), nil
	}
	return fmt.Sprintf("%04d-%02d", year, m-1), nil
}

// NextMonth returns the month key after month
func NextMonth(month string) (string, error) {
	year, m, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	if m == time.December {
		return fmt.Sprintf("%04d-01", year+1), nil
	}
	return fmt.Sprintf("%04d-%02d", year, m+1), nil
}
