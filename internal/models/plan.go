// ABOUTME: LongevityPlan is the seven-day recurring template of PlanItems
// ABOUTME: Day labels are weekday names; item ids are unique across the whole plan
package models

import (
	"fmt"
	"sort"
	"time"
)

// ActivityType classifies a plan item
type ActivityType string

const (
	Supplement ActivityType = "SUPPLEMENT"
	Meal       ActivityType = "MEAL"
	Exercise   ActivityType = "EXERCISE"
	Sleep      ActivityType = "SLEEP"
	Fasting    ActivityType = "FASTING"
	Biohack    ActivityType = "BIOHACK"
)

// ActivityTypes lists every valid activity type
var ActivityTypes = []ActivityType{Supplement, Meal, Exercise, Sleep, Fasting, Biohack}

// Valid reports whether t is one of the known activity types
func (t ActivityType) Valid() bool {
	for _, at := range ActivityTypes {
		if t == at {
			return true
		}
	}
	return false
}

// Weekdays holds the fixed day labels, Sunday first to line up with time.Weekday.
var Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeekdayName returns the plan label for t's weekday
func WeekdayName(t time.Time) string {
	return Weekdays[int(t.Weekday())]
}

// IsWeekday reports whether day is one of the fixed labels
func IsWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ClockTime formats t as a zero-padded 24-hour "HH:MM" string
func ClockTime(t time.Time) string {
	return t.Format("15:04")
}

// PlanItem is one schedulable activity
type PlanItem struct {
	ID          string       `json:"id" yaml:"id"`
	Time        string       `json:"time" yaml:"time"`
	Activity    string       `json:"activity" yaml:"activity"`
	Type        ActivityType `json:"type" yaml:"type"`
	Description string       `json:"description" yaml:"description"`
	Completed   bool         `json:"completed" yaml:"completed"`
}

// DailyPlan is the set of items for one weekday
type DailyPlan struct {
	Day   string     `json:"day" yaml:"day"`
	Items []PlanItem `json:"items" yaml:"items"`
}

// LongevityPlan is the weekly template
type LongevityPlan struct {
	Week []DailyPlan `json:"week" yaml:"week"`
}

// Clone returns a deep copy of the plan
func (p LongevityPlan) Clone() LongevityPlan {
	out := LongevityPlan{Week: make([]DailyPlan, len(p.Week))}
	for i, d := range p.Week {
		items := make([]PlanItem, len(d.Items))
		copy(items, d.Items)
		out.Week[i] = DailyPlan{Day: d.Day, Items: items}
	}
	return out
}

// Day returns the plan for the given label
func (p LongevityPlan) Day(name string) (DailyPlan, bool) {
	for _, d := range p.Week {
		if d.Day == name {
			return d, true
		}
	}
	return DailyPlan{}, false
}

// Item looks up an item by day label and id
func (p LongevityPlan) Item(day, id string) (PlanItem, bool) {
	d, ok := p.Day(day)
	if !ok {
		return PlanItem{}, false
	}
	for _, it := range d.Items {
		if it.ID == id {
			return it, true
		}
	}
	return PlanItem{}, false
}

// Validate checks the structural invariant: exactly seven days with unique weekday labels.
// Item contents are not validated.
func (p LongevityPlan) Validate() error {
	if len(p.Week) != len(Weekdays) {
		return fmt.Errorf("plan must have %d days, got %d", len(Weekdays), len(p.Week))
	}
	seen := make(map[string]bool, len(p.Week))
	for _, d := range p.Week {
		if !IsWeekday(d.Day) {
			return fmt.Errorf("unknown day label %q", d.Day)
		}
		if seen[d.Day] {
			return fmt.Errorf("duplicate day label %q", d.Day)
		}
		seen[d.Day] = true
	}
	return nil
}

// Sorted returns the day's items ordered by time. The receiver is not modified.
func (d DailyPlan) Sorted() []PlanItem {
	items := append([]PlanItem(nil), d.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time < items[j].Time
	})
	return items
}

// OfType returns the day's items of the given type in time order
func (d DailyPlan) OfType(t ActivityType) []PlanItem {
	var out []PlanItem
	for _, it := range d.Sorted() {
		if it.Type == t {
			out = append(out, it)
		}
	}
	return out
}

// Progress returns completed and total item counts for the day
func (d DailyPlan) Progress() (done, total int) {
	for _, it := range d.Items {
		if it.Completed {
			done++
		}
	}
	return done, len(d.Items)
}
