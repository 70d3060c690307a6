package entity

import "time"

// DashboardSelection is the filter chosen on the dashboard. Empty or unknown
// values are resolved to the first available option.
type DashboardSelection struct {
	Owner       string
	MuscleGroup string
	Exercise    string
}

// SeriesPoint is one workout on the progress chart.
type SeriesPoint struct {
	Date   time.Time
	Weight float64
	Reps   Reps
}

// DashboardView is a fully resolved selection with its options and chart data.
type DashboardView struct {
	Owners       []string
	MuscleGroups []string
	Exercises    []string
	Selection    DashboardSelection
	Series       []SeriesPoint
	Version      uint64
}

// Empty reports whether there is nothing to plot for the selection.
func (v DashboardView) Empty() bool {
	return len(v.Series) == 0
}
