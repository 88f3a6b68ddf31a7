package dates

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/baseradar/baseradar/internal/domain"
)

// Wednesday.
var fixedNow = time.Date(2025, time.October, 15, 14, 30, 0, 0, time.UTC)

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		expr string
		want string
	}{
		{"today", "2025-10-15"},
		{"  Yesterday ", "2025-10-14"},
		{"day before yesterday", "2025-10-13"},
		{"3 days before", "2025-10-12"},
		{"今天", "2025-10-15"},
		{"昨天", "2025-10-14"},
		{"前天", "2025-10-13"},
		{"大前天", "2025-10-12"},
		{"3天前", "2025-10-12"},
		{"5 days ago", "2025-10-10"},
		{"3 days ago", "2025-10-12"},
		{"1 day ago", "2025-10-14"},
		{"last monday", "2025-10-06"},
		{"this monday", "2025-10-13"},
		{"this friday", "2025-10-10"},
		{"this wednesday", "2025-10-15"},
		{"last wednesday", "2025-10-08"},
		{"上周三", "2025-10-08"},
		{"本周三", "2025-10-15"},
		{"本周日", "2025-10-12"},
		{"2025-10-10", "2025-10-10"},
		{"2025-1-5", "2025-01-05"},
		{"2025-10-10 morning", "2025-10-10"},
		{"2024年10月10日", "2024-10-10"},
		{"10月10日", "2025-10-10"},
		{"2025/09/30", "2025-09-30"},
		{"12/25", "2024-12-25"},
	}

	for _, tc := range cases {
		got, err := Resolve(tc.expr, fixedNow)
		if err != nil {
			t.Fatalf("Resolve(%q) error: %v", tc.expr, err)
		}
		if Format(got) != tc.want {
			t.Fatalf("Resolve(%q) = %s, want %s", tc.expr, Format(got), tc.want)
		}
	}
}

func TestResolveInfersPreviousYear(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC)
	got, err := Resolve("10月10日", now)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if Format(got) != "2024-10-10" {
		t.Fatalf("expected 2024-10-10, got %s", Format(got))
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"", "   ", "someday", "400 days ago", "2025-02-30", "13/01", "2025年2月29日"} {
		_, err := Resolve(expr, fixedNow)
		if err == nil {
			t.Fatalf("Resolve(%q) expected error", expr)
		}
		var de *domain.Error
		if !errors.As(err, &de) || de.Code != domain.CodeInvalidParameter {
			t.Fatalf("Resolve(%q) expected invalid parameter, got %v", expr, err)
		}
		if de.Suggestion == "" {
			t.Fatalf("Resolve(%q) expected a suggestion", expr)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := ValidateNotFuture(fixedNow.AddDate(0, 0, 1), fixedNow); err == nil {
		t.Fatalf("expected tomorrow to be rejected")
	}
	if err := ValidateNotFuture(fixedNow, fixedNow); err != nil {
		t.Fatalf("today rejected: %v", err)
	}
	if err := ValidateNotTooOld(fixedNow.AddDate(0, 0, -366), fixedNow, 365); err == nil {
		t.Fatalf("expected 366 days ago to be rejected")
	}
	if err := ValidateNotTooOld(fixedNow.AddDate(0, 0, -365), fixedNow, 365); err != nil {
		t.Fatalf("365 days ago rejected: %v", err)
	}
}

func TestParseRange(t *testing.T) {
	t.Parallel()

	r, err := ParseRange("2025-10-09", "2025-10-15", fixedNow)
	if err != nil {
		t.Fatalf("ParseRange error: %v", err)
	}
	if r.Len() != 7 {
		t.Fatalf("expected 7 days, got %d", r.Len())
	}

	if _, err := ParseRange("2025-10-15", "2025-10-09", fixedNow); domain.CodeOf(err) != domain.CodeInvalidParameter {
		t.Fatalf("expected invalid parameter for reversed range, got %v", err)
	}
	if _, err := ParseRange("2025-10-15", "2025-10-16", fixedNow); domain.CodeOf(err) != domain.CodeInvalidParameter {
		t.Fatalf("expected invalid parameter for future end, got %v", err)
	}
}

func TestResolvePreset(t *testing.T) {
	t.Parallel()

	week, err := ResolvePreset(PresetLastWeek, "", "", fixedNow)
	if err != nil {
		t.Fatalf("ResolvePreset error: %v", err)
	}
	if Format(week.Start) != "2025-10-08" || Format(week.End) != "2025-10-14" {
		t.Fatalf("unexpected last_week range %s", week)
	}

	if _, err := ResolvePreset(PresetCustom, "", "", fixedNow); err == nil {
		t.Fatalf("custom preset without dates should fail")
	}
}

func TestValidateNotTooOldAcrossDST(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// The 2025-11-02 calendar day is 25 hours long.
	day := time.Date(2025, time.November, 2, 0, 0, 0, 0, ny)
	now := time.Date(2025, time.November, 3, 9, 0, 0, 0, ny)
	if err := ValidateNotTooOld(day, now, 1); err != nil {
		t.Fatalf("one calendar day back rejected: %v", err)
	}
	if err := ValidateNotTooOld(day.AddDate(0, 0, -1), now, 1); err == nil {
		t.Fatalf("two calendar days back accepted")
	}
}
