package autopost

import (
	"testing"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// 2026-03-11 is a Wednesday.
var wednesday = time.Date(2026, 3, 11, 14, 30, 45, 0, time.UTC)

func TestNextRunEveryNDays(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want time.Time
	}{
		{"n=7", `{"days":7}`, wednesday.AddDate(0, 0, 7)},
		{"default", `{}`, wednesday.AddDate(0, 0, 7)},
		{"n=1", `{"days":1}`, wednesday.AddDate(0, 0, 1)},
		{"explicit zero clamps to 1", `{"days":0}`, wednesday.AddDate(0, 0, 1)},
		{"negative clamps to 1", `{"days":-3}`, wednesday.AddDate(0, 0, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextRun(wednesday, model.CadenceEveryNDays, model.DecodeCadence(tc.doc))
			if !got.Equal(tc.want) {
				t.Errorf("NextRun() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNextRunEveryNDaysKeepsTimeOfDay(t *testing.T) {
	got := NextRun(wednesday, model.CadenceEveryNDays, model.DecodeCadence(`{"days":7}`))
	h, m, s := got.Clock()
	if h != 14 || m != 30 || s != 45 {
		t.Errorf("time of day changed: %02d:%02d:%02d", h, m, s)
	}
}

func TestNextRunWeeklyFromWednesday(t *testing.T) {
	got := NextRun(wednesday, model.CadenceWeekly, model.DecodeCadence(`{"day_of_week":1}`))
	want := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC) // next Monday
	if !got.Equal(want) {
		t.Errorf("NextRun() = %v, want %v", got, want)
	}
}

func TestNextRunWeeklySameDayRollsForward(t *testing.T) {
	monday := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	got := NextRun(monday, model.CadenceWeekly, model.DecodeCadence(`{"day_of_week":1}`))
	want := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("target day today must roll to next week: got %v, want %v", got, want)
	}
}

func TestNextRunWeeklyExplicitMidnight(t *testing.T) {
	got := NextRun(wednesday, model.CadenceWeekly, model.DecodeCadence(`{"day_of_week":5,"hour":0,"minute":15}`))
	want := time.Date(2026, 3, 13, 0, 15, 0, 0, time.UTC) // Friday
	if !got.Equal(want) {
		t.Errorf("explicit hour 0 must not default to 10: got %v, want %v", got, want)
	}
}

func TestNextRunWeeklyDefaults(t *testing.T) {
	got := NextRun(wednesday, model.CadenceWeekly, model.DecodeCadence(`{}`))
	want := time.Date(2026, 3, 16, 10, 0, 0, 0, time.UTC) // Monday 10:00
	if !got.Equal(want) {
		t.Errorf("NextRun() = %v, want %v", got, want)
	}
}

func TestNextRunCron(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want time.Duration
	}{
		{"minutes=2 clamps to 5", `{"minutes":2}`, 5 * time.Minute},
		{"default 60", `{}`, 60 * time.Minute},
		{"minutes=90", `{"minutes":90}`, 90 * time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextRun(wednesday, model.CadenceCron, model.DecodeCadence(tc.doc))
			if want := wednesday.Add(tc.want); !got.Equal(want) {
				t.Errorf("NextRun() = %v, want %v", got, want)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Blog update 2026-03-11", "blog-update-2026-03-11"},
		{"Crème Brûlée!", "creme-brulee"},
		{"  spaced   out  ", "spaced-out"},
		{"///", ""},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
