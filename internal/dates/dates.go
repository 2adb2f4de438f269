package dates

import "time"

// DayFormat is the local calendar date layout used as a lookup key for
// daily records and score-ledger buckets.
const DayFormat = "2006-01-02"

// Key returns the local calendar date of t as YYYY-MM-DD.
func Key(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseKey parses a YYYY-MM-DD date key into a UTC-midnight time.
func ParseKey(key string) (time.Time, error) {
	return time.Parse(DayFormat, key)
}

// midnight maps t to 00:00 UTC of its local calendar date. Working on
// UTC midnights makes day subtraction exact across DST transitions.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Monday of t's week, midnight-aligned.
func WeekStart(t time.Time) time.Time {
	dd := midnight(t)
	day := int(dd.Weekday()) // 0 Sunday, 1 Monday, ...
	diff := 1 - day
	if day == 0 {
		diff = -6
	}
	return dd.AddDate(0, 0, diff)
}

// SameWeek reports whether a falls in the week containing ref
// (Monday inclusive through the following Monday exclusive).
func SameWeek(a, ref time.Time) bool {
	ws := WeekStart(ref)
	we := ws.AddDate(0, 0, 7)
	da := midnight(a)
	return !da.Before(ws) && da.Before(we)
}

// DaysSince returns whole calendar days elapsed from startISO
// (YYYY-MM-DD) to now, where the start day itself is day 0. Both ends
// are zeroed to midnight before subtracting so time-of-day and DST
// shifts never skew the count.
func DaysSince(startISO string, now time.Time) (int, error) {
	s, err := ParseKey(startISO)
	if err != nil {
		return 0, err
	}
	return int(midnight(now).Sub(s).Hours() / 24), nil
}
