// Package period models a calendar month and decides whether records of that
// month may still be changed.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
)

const (
	MIN_YEAR = 1900
	MAX_YEAR = 9999
)

// Period is a (year, month) pair. Day of month never matters.
type Period struct {
	Year  int
	Month time.Month
}

func New(year int, month int) (Period, error) {
	p := Period{Year: year, Month: time.Month(month)}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

func FromTime(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Current returns the period "now" falls in.
func Current(now time.Time) Period {
	return FromTime(now)
}

// Parse accepts "YYYY-MM" and "YYYY-M".
func Parse(raw string) (Period, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, "-")
	if len(parts) != 2 {
		return Period{}, appErrors.New(appErrors.ErrInvalidInput, "Invalid period '%s', expected format is YYYY-MM.", raw)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Period{}, appErrors.New(appErrors.ErrInvalidInput, "Invalid period year '%s'.", parts[0])
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return Period{}, appErrors.New(appErrors.ErrInvalidInput, "Invalid period month '%s'.", parts[1])
	}
	return New(year, month)
}

func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return appErrors.New(appErrors.ErrInvalidInput, "Month must be between 1 and 12, got %d.", int(p.Month))
	}
	if p.Year < MIN_YEAR || p.Year > MAX_YEAR {
		return appErrors.New(appErrors.ErrInvalidInput, "Year must be between %d and %d, got %d.", MIN_YEAR, MAX_YEAR, p.Year)
	}
	return nil
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Compare returns -1, 0 or +1 ordering by year first, then month.
func (p Period) Compare(other Period) int {
	switch {
	case p.Year < other.Year:
		return -1
	case p.Year > other.Year:
		return 1
	case p.Month < other.Month:
		return -1
	case p.Month > other.Month:
		return 1
	default:
		return 0
	}
}

func (p Period) Before(other Period) bool {
	return p.Compare(other) < 0
}

func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

func (p Period) Previous() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// FirstDay is midnight UTC of the first day of the period.
func (p Period) FirstDay() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// IsMutable reports whether records of p may still be created, changed or
// removed when the clock reads today: p must not be before today's month.
func IsMutable(p Period, today time.Time) bool {
	return p.Year > today.Year() || (p.Year == today.Year() && p.Month >= today.Month())
}

// EnsureMutable wraps IsMutable into a PERIOD LOCKED error.
func EnsureMutable(p Period, today time.Time, what string) error {
	if IsMutable(p, today) {
		return nil
	}
	return appErrors.New(appErrors.ErrPeriodLocked, "Cannot change %s of %s, past months are read-only.", what, p.String())
}
