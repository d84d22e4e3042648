package domain

import "time"

// DateLayout is the stored calendar-date format.
const DateLayout = "2006-01-02"

// DateOf formats t as a local calendar date.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate reports whether s is a well-formed calendar date.
func ValidDate(s string) bool {
	_, err := time.ParseInLocation(DateLayout, s, time.Local)
	return err == nil
}

// Yesterday returns the calendar date exactly one day before today.
// Calendar arithmetic, not elapsed hours: a play shortly before midnight
// followed by one shortly after still counts as consecutive days.
func Yesterday(today string) string {
	t, err := time.ParseInLocation(DateLayout, today, time.Local)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(DateLayout)
}

// NextStreak computes the streak after recording an answer on today, given
// the current streak and the date of the most recent prior answer.
//
// Same day leaves the streak unchanged, so repeated answers within one day
// never inflate it. Yesterday continues the streak; an empty lastPlayed
// (first-ever play) takes the same branch since 0+1 starts it at 1. Any
// larger gap, or a lastPlayed in the future from clock skew, resets to 1.
func NextStreak(current int, lastPlayed, today string) int {
	switch {
	case lastPlayed == today:
		return current
	case lastPlayed == "" || lastPlayed == Yesterday(today):
		return current + 1
	default:
		return 1
	}
}
