// Package stats derives attendance statistics from a store snapshot.
// Every function is pure: the same snapshot and reference date always
// produce the same output, so results can be replayed in tests.
package stats

import (
	"math"
	"sort"
	"time"

	"attendhub/internal/store"
)

// DateLayout is the calendar-day form used throughout the snapshot.
const DateLayout = "2006-01-02"

// DailyCounts returns per-status counts among records on the given date.
func DailyCounts(records []store.AttendanceRecord, date string) map[store.Status]int {
	counts := make(map[store.Status]int)
	for _, r := range records {
		if r.Date == date {
			counts[r.Status]++
		}
	}
	return counts
}

// AttendanceRate returns round(100 * presentLike / totalMembers).
// A zero member count yields 0 rather than a division error.
func AttendanceRate(presentLike, totalMembers int) int {
	if totalMembers == 0 {
		return 0
	}
	return int(math.Round(float64(presentLike) / float64(totalMembers) * 100))
}

// TrailingWindow returns the `days` most recent calendar dates ending at ref
// inclusive, oldest first. Month and year boundaries are handled by real date
// arithmetic, not string manipulation.
func TrailingWindow(days int, ref string) ([]string, error) {
	end, err := time.Parse(DateLayout, ref)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, nil
	}
	out := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		out = append(out, end.AddDate(0, 0, -i).Format(DateLayout))
	}
	return out, nil
}

// CurrentStreak counts consecutive present-like dates for a member, scanning
// backward from the most recent record on or before ref. The streak breaks at
// the first non-present-like status or missing calendar date; weekends are
// not skipped.
func CurrentStreak(records []store.AttendanceRecord, memberID, ref string) int {
	byDate := make(map[string]store.Status)
	var dates []string
	for _, r := range records {
		if r.MemberID != memberID || r.Date > ref {
			continue
		}
		if _, seen := byDate[r.Date]; !seen {
			dates = append(dates, r.Date)
		}
		byDate[r.Date] = r.Status
	}
	if len(dates) == 0 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	start, err := time.Parse(DateLayout, dates[0])
	if err != nil {
		return 0
	}
	streak := 0
	for day := start; ; day = day.AddDate(0, 0, -1) {
		status, ok := byDate[day.Format(DateLayout)]
		if !ok || !store.PresentLike(status) {
			break
		}
		streak++
	}
	return streak
}

// DeptStat is the per-department slice of a daily breakdown.
type DeptStat struct {
	Department store.Department `json:"department"`
	Present    int              `json:"present"`
	Total      int              `json:"total"`
	Rate       int              `json:"rate"`
}

// DepartmentBreakdown groups members by department and computes the
// present-like count and rate for one date. Departments with no members are
// omitted; order follows store.Departments.
func DepartmentBreakdown(members []store.Member, records []store.AttendanceRecord, date string) []DeptStat {
	deptOf := make(map[string]store.Department, len(members))
	totals := make(map[store.Department]int)
	for _, m := range members {
		deptOf[m.ID] = m.Department
		totals[m.Department]++
	}
	present := make(map[store.Department]int)
	for _, r := range records {
		if r.Date != date || !store.PresentLike(r.Status) {
			continue
		}
		if dept, ok := deptOf[r.MemberID]; ok {
			present[dept]++
		}
	}
	var out []DeptStat
	for _, dept := range store.Departments {
		total := totals[dept]
		if total == 0 {
			continue
		}
		out = append(out, DeptStat{
			Department: dept,
			Present:    present[dept],
			Total:      total,
			Rate:       AttendanceRate(present[dept], total),
		})
	}
	return out
}

// DailySummary is the headline view for one date: marked counts per status,
// absent derived as members with no record, and the overall rate.
type DailySummary struct {
	Date         string `json:"date"`
	Present      int    `json:"present"`
	Late         int    `json:"late"`
	HalfDay      int    `json:"half_day"`
	WorkFromHome int    `json:"work_from_home"`
	Absent       int    `json:"absent"`
	TotalMembers int    `json:"total_members"`
	Rate         int    `json:"rate"`
}

// Summarize computes the daily summary for one date. Members without a record
// count as absent alongside explicit absent markings.
func Summarize(members []store.Member, records []store.AttendanceRecord, date string) DailySummary {
	counts := DailyCounts(records, date)
	marked := 0
	for _, n := range counts {
		marked += n
	}
	presentLike := counts[store.StatusPresent] + counts[store.StatusLate] + counts[store.StatusWorkFromHome]
	return DailySummary{
		Date:         date,
		Present:      counts[store.StatusPresent],
		Late:         counts[store.StatusLate],
		HalfDay:      counts[store.StatusHalfDay],
		WorkFromHome: counts[store.StatusWorkFromHome],
		Absent:       counts[store.StatusAbsent] + max(len(members)-marked, 0),
		TotalMembers: len(members),
		Rate:         AttendanceRate(presentLike, len(members)),
	}
}

// TrendPoint is one day of a trailing-window trend.
type TrendPoint struct {
	Date         string `json:"date"`
	Present      int    `json:"present"`
	Late         int    `json:"late"`
	WorkFromHome int    `json:"work_from_home"`
	Absent       int    `json:"absent"`
}

// Trend builds per-day counts over the trailing window ending at ref, oldest
// first. Absent is derived from the member count minus marked records.
func Trend(members []store.Member, records []store.AttendanceRecord, ref string, days int) ([]TrendPoint, error) {
	window, err := TrailingWindow(days, ref)
	if err != nil {
		return nil, err
	}
	out := make([]TrendPoint, 0, len(window))
	for _, date := range window {
		counts := DailyCounts(records, date)
		marked := 0
		for _, n := range counts {
			marked += n
		}
		out = append(out, TrendPoint{
			Date:         date,
			Present:      counts[store.StatusPresent],
			Late:         counts[store.StatusLate],
			WorkFromHome: counts[store.StatusWorkFromHome],
			Absent:       counts[store.StatusAbsent] + max(len(members)-marked, 0),
		})
	}
	return out, nil
}

// StatusDistribution returns total counts per status across all records.
func StatusDistribution(records []store.AttendanceRecord) map[store.Status]int {
	counts := make(map[store.Status]int)
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

// MemberStats are one member's lifetime attendance totals.
type MemberStats struct {
	MemberID string `json:"member_id"`
	Present  int    `json:"present"`
	Late     int    `json:"late"`
	Absent   int    `json:"absent"`
	Total    int    `json:"total"`
	Rate     int    `json:"rate"`
}

// ForMember computes lifetime totals for one member. The rate is present-like
// over total marked records; a member with no records gets 0.
func ForMember(records []store.AttendanceRecord, memberID string) MemberStats {
	s := MemberStats{MemberID: memberID}
	presentLike := 0
	for _, r := range records {
		if r.MemberID != memberID {
			continue
		}
		s.Total++
		switch r.Status {
		case store.StatusPresent:
			s.Present++
		case store.StatusLate:
			s.Late++
		case store.StatusAbsent:
			s.Absent++
		}
		if store.PresentLike(r.Status) {
			presentLike++
		}
	}
	s.Rate = AttendanceRate(presentLike, s.Total)
	return s
}

// MonthSummary are one member's totals for the calendar month containing ref.
type MonthSummary struct {
	Present    int `json:"present"`
	Late       int `json:"late"`
	Absent     int `json:"absent"`
	Total      int `json:"total"`
	Rate       int `json:"rate"`
	OnTimeRate int `json:"on_time_rate"`
}

// ForMonth computes a member's totals for the month containing ref.
// OnTimeRate is present over present+late, 0 when the member has neither.
func ForMonth(records []store.AttendanceRecord, memberID, ref string) (MonthSummary, error) {
	refDay, err := time.Parse(DateLayout, ref)
	if err != nil {
		return MonthSummary{}, err
	}
	var s MonthSummary
	presentLike := 0
	for _, r := range records {
		if r.MemberID != memberID {
			continue
		}
		day, err := time.Parse(DateLayout, r.Date)
		if err != nil || day.Year() != refDay.Year() || day.Month() != refDay.Month() {
			continue
		}
		s.Total++
		switch r.Status {
		case store.StatusPresent:
			s.Present++
		case store.StatusLate:
			s.Late++
		case store.StatusAbsent:
			s.Absent++
		}
		if store.PresentLike(r.Status) {
			presentLike++
		}
	}
	s.Rate = AttendanceRate(presentLike, s.Total)
	s.OnTimeRate = AttendanceRate(s.Present, s.Present+s.Late)
	return s, nil
}
