package agenda

import (
	"testing"
	"time"
)

func baseSnapshot() Snapshot {
	return Snapshot{
		Appointments:     "gen-1",
		SelectedDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Builder:          nil,
		ViewWidth:        480,
		ViewHeight:       800,
		TimeLabelWidth:   50,
		TextScale:        1,
		TimedItemHeight:  60,
		AllDayItemHeight: 50,
		SubjectFontSize:  16,
		TimeFontSize:     13,
		Locale:           "en",
	}
}

func TestDiff(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Snapshot)
		want   UpdateAction
	}{
		{"identical", func(*Snapshot) {}, UpdateNone},
		{"list identity", func(s *Snapshot) { s.Appointments = "gen-2" }, UpdateRelayout},
		{"selected date", func(s *Snapshot) { s.SelectedDate = s.SelectedDate.AddDate(0, 0, 1) }, UpdateRelayout},
		{"builder swapped", func(s *Snapshot) { s.Builder = "custom" }, UpdateRelayout},
		{"viewport width", func(s *Snapshot) { s.ViewWidth = 300 }, UpdateRelayout},
		{"viewport height", func(s *Snapshot) { s.ViewHeight = 600 }, UpdateRelayout},
		{"time label width", func(s *Snapshot) { s.TimeLabelWidth = 70 }, UpdateRelayout},
		{"text scale", func(s *Snapshot) { s.TextScale = 1.3 }, UpdateRepaint},
		{"font size", func(s *Snapshot) { s.SubjectFontSize = 18 }, UpdateRepaint},
		{"locale", func(s *Snapshot) { s.Locale = "ko" }, UpdateRepaint},
		{"time format", func(s *Snapshot) { s.TimeFormat = "HH:mm" }, UpdateRepaint},
		{"wide layout", func(s *Snapshot) { s.WideLayout = true }, UpdateRepaint},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			old := baseSnapshot()
			next := baseSnapshot()
			tc.mutate(&next)
			if got := Diff(old, next); got != tc.want {
				t.Errorf("Diff = %v, want %v", got, tc.want)
			}
		})
	}
}
