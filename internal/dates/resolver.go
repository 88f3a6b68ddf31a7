// Package dates turns natural-language day expressions into calendar days.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
)

// MaxRelativeDays bounds "N days ago" expressions.
const MaxRelativeDays = 365

const supportedFormats = "supported formats: today, yesterday, day before yesterday, 3 days before, " +
	"N days ago, last monday, this friday, 今天, 昨天, 前天, 大前天, N天前, 上周一, 本周三, " +
	"2025-10-10, 10月10日, 2025年10月10日, 10/10, 2025/10/10"

var namedDays = map[string]int{
	"今天":                   0,
	"昨天":                   1,
	"前天":                   2,
	"大前天":                  3,
	"today":                0,
	"yesterday":            1,
	"day before yesterday": 2,
	"3 days before":        3,
}

var zhWeekdays = map[string]int{
	"一": 0, "二": 1, "三": 2, "四": 3, "五": 4, "六": 5, "日": 6, "天": 6,
}

var enWeekdays = map[string]int{
	"monday": 0, "tuesday": 1, "wednesday": 2, "thursday": 3,
	"friday": 4, "saturday": 5, "sunday": 6,
}

type matcher struct {
	re      *regexp.Regexp
	resolve func(m []string, now time.Time) (time.Time, error)
}

// Patterns are tried in order and only need to match a prefix of the input.
var matchers = []matcher{
	{re: regexp.MustCompile(`^(\d+)\s*天前`), resolve: daysAgo},
	{re: regexp.MustCompile(`^(\d+)\s*days?\s+ago`), resolve: daysAgo},
	{re: regexp.MustCompile(`^(上|本)周([一二三四五六日天])`), resolve: func(m []string, now time.Time) (time.Time, error) {
		return weekday(now, zhWeekdays[m[2]], m[1] == "上"), nil
	}},
	{re: regexp.MustCompile(`^(last|this)\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`), resolve: func(m []string, now time.Time) (time.Time, error) {
		return weekday(now, enWeekdays[m[2]], m[1] == "last"), nil
	}},
	{re: regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})`), resolve: func(m []string, now time.Time) (time.Time, error) {
		return calendarDay(m[0], m[1], m[2], m[3], now)
	}},
	{re: regexp.MustCompile(`^(?:(\d{4})年)?(\d{1,2})月(\d{1,2})日`), resolve: func(m []string, now time.Time) (time.Time, error) {
		return calendarDay(m[0], m[1], m[2], m[3], now)
	}},
	{re: regexp.MustCompile(`^(?:(\d{4})/)?(\d{1,2})/(\d{1,2})`), resolve: func(m []string, now time.Time) (time.Time, error) {
		return calendarDay(m[0], m[1], m[2], m[3], now)
	}},
}

// Resolve maps expr to a calendar day (midnight in now's location).
func Resolve(expr string, now time.Time) (time.Time, error) {
	query := strings.ToLower(strings.TrimSpace(expr))
	if query == "" {
		return time.Time{}, domain.InvalidParameter("date query is empty",
			"provide a date such as today, yesterday or 2025-10-10")
	}

	if offset, ok := namedDays[query]; ok {
		return Today(now).AddDate(0, 0, -offset), nil
	}

	for _, m := range matchers {
		if groups := m.re.FindStringSubmatch(query); groups != nil {
			return m.resolve(groups, now)
		}
	}

	return time.Time{}, domain.InvalidParameter(fmt.Sprintf("unrecognized date format: %s", expr), supportedFormats)
}

// Today truncates now to the start of its calendar day.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Format renders a day as YYYY-MM-DD.
func Format(day time.Time) string {
	return day.Format(domain.DayLayout)
}

// ValidateNotFuture rejects days after today.
func ValidateNotFuture(day, now time.Time) error {
	if Today(day).After(Today(now)) {
		return domain.InvalidParameter(
			fmt.Sprintf("cannot query future date: %s", Format(day)),
			"use today or a past date")
	}
	return nil
}

// ValidateNotTooOld rejects days more than maxDays before today.
func ValidateNotTooOld(day, now time.Time, maxDays int) error {
	if Today(day).AddDate(0, 0, maxDays).Before(Today(now)) {
		return domain.InvalidParameter(
			fmt.Sprintf("date is too old: %s", Format(day)),
			fmt.Sprintf("query data within %d days", maxDays))
	}
	return nil
}

func daysAgo(m []string, now time.Time) (time.Time, error) {
	n, err := strconv.Atoi(m[1])
	if err != nil || n > MaxRelativeDays {
		return time.Time{}, domain.InvalidParameter(
			fmt.Sprintf("days too large: %s", m[1]),
			"use relative dates within 365 days or an absolute date")
	}
	return Today(now).AddDate(0, 0, -n), nil
}

// weekday uses Monday=0 indexing.
func weekday(now time.Time, target int, lastWeek bool) time.Time {
	current := (int(now.Weekday()) + 6) % 7
	diff := current - target
	if lastWeek {
		diff += 7
	} else if diff < 0 {
		diff += 7
	}
	return Today(now).AddDate(0, 0, -diff)
}

func calendarDay(raw, yearStr, monthStr, dayStr string, now time.Time) (time.Time, error) {
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)

	year := now.Year()
	if yearStr != "" {
		year, _ = strconv.Atoi(yearStr)
	} else if month > int(now.Month()) {
		year--
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if month < 1 || month > 12 || t.Day() != day || int(t.Month()) != month {
		return time.Time{}, domain.InvalidParameter(
			fmt.Sprintf("invalid date: %s", raw),
			fmt.Sprintf("%04d-%02d-%02d is not a calendar date", year, month, day))
	}
	return t, nil
}
