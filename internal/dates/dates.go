// Package dates provides calendar-day arithmetic in the school's timezone.
// Event dates are plain YYYY-MM-DD strings; "today" is computed in
// Argentina time (UTC-3, no DST) so that late-evening UTC does not roll
// events into the wrong day.
package dates

import "time"

const layout = "2006-01-02"

var zone = time.FixedZone("ART", -3*60*60)

// Now returns the current time in the school's timezone.
func Now() time.Time {
	return time.Now().In(zone)
}

// Today returns the current date as YYYY-MM-DD.
func Today() string {
	return todayFrom(Now())
}

func todayFrom(t time.Time) string {
	return t.In(zone).Format(layout)
}

// WeekStart returns the Monday of the current week.
func WeekStart() string {
	return weekStartFrom(Now())
}

func weekStartFrom(t time.Time) string {
	t = t.In(zone)
	diff := int(t.Weekday()) - int(time.Monday)
	if diff < 0 {
		diff += 7 // Sunday belongs to the week that started six days earlier
	}
	return t.AddDate(0, 0, -diff).Format(layout)
}

// WeekEnd returns the Sunday of the current week.
func WeekEnd() string {
	return weekEndFrom(Now())
}

func weekEndFrom(t time.Time) string {
	start, _ := time.ParseInLocation(layout, weekStartFrom(t), zone)
	return start.AddDate(0, 0, 6).Format(layout)
}

// AddDays shifts a YYYY-MM-DD date by n days. Invalid input is returned
// unchanged; callers only ever feed it dates produced by this package.
func AddDays(date string, n int) string {
	t, err := time.ParseInLocation(layout, date, zone)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(layout)
}
