// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package domain

import (
	"sort"
	"time"
)

// PMStatus is the state of a preventive-maintenance task.
type PMStatus string

const (
	PMCompleted PMStatus = "completed"
	PMUpcoming  PMStatus = "upcoming"
	PMMissed    PMStatus = "missed"
)

// PMTask is one scheduled maintenance job.
type PMTask struct {
	ID      int
	Title   string
	Date    time.Time
	Status  PMStatus
	Section Section
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SampleTasks is the placeholder schedule shown until PM data is stored
// in the backend.
var SampleTasks = []PMTask{
	{ID: 1, Title: "Boiler A Maintenance", Date: day(2025, time.January, 10), Status: PMCompleted, Section: SectionUtilities},
	{ID: 2, Title: "Chemical Tank Cleaning", Date: day(2025, time.January, 12), Status: PMUpcoming, Section: SectionProcess},
	{ID: 3, Title: "Conveyor Belt Check", Date: day(2025, time.January, 8), Status: PMMissed, Section: SectionBottling},
	{ID: 4, Title: "Power System Inspection", Date: day(2025, time.January, 15), Status: PMUpcoming, Section: SectionLVSG5},
}

// PMCounts tallies tasks by status.
type PMCounts struct {
	Completed int
	Missed    int
	Upcoming  int
}

// Schedule is a month view over a task list.
type Schedule struct {
	tasks []PMTask
	month time.Time
}

// NewSchedule starts at the month containing at.
func NewSchedule(tasks []PMTask, at time.Time) *Schedule {
	return &Schedule{tasks: tasks, month: firstOfMonth(at)}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Month returns the first day of the displayed month.
func (s *Schedule) Month() time.Time { return s.month }

// Title returns the month heading, e.g. "January 2025".
func (s *Schedule) Title() string { return s.month.Format("January 2006") }

// Prev moves to the previous month.
func (s *Schedule) Prev() { s.month = s.month.AddDate(0, -1, 0) }

// Next moves to the following month.
func (s *Schedule) Next() { s.month = s.month.AddDate(0, 1, 0) }

// Tasks returns the tasks due in the displayed month, by date.
func (s *Schedule) Tasks() []PMTask {
	var out []PMTask
	for _, t := range s.tasks {
		if t.Date.Year() == s.month.Year() && t.Date.Month() == s.month.Month() {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Counts tallies the displayed month's tasks by status.
func (s *Schedule) Counts() PMCounts {
	var c PMCounts
	for _, t := range s.Tasks() {
		switch t.Status {
		case PMCompleted:
			c.Completed++
		case PMMissed:
			c.Missed++
		case PMUpcoming:
			c.Upcoming++
		}
	}
	return c
}
