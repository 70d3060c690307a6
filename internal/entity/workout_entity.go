package entity

import (
	"time"
)

// DateLayout is the civil date format used in the workouts file.
const DateLayout = "2006-01-02"

// Reps holds the rep count of every completed set, in order.
// Legacy records carry a single scalar count; Legacy keeps that shape so the
// row is written back the way it was read.
type Reps struct {
	Sets   []int
	Legacy bool
}

// NewReps builds a current-shape Reps from set counts.
func NewReps(sets ...int) Reps {
	return Reps{Sets: append([]int(nil), sets...)}
}

// NewLegacyReps builds a scalar-shape Reps.
func NewLegacyReps(count int) Reps {
	return Reps{Sets: []int{count}, Legacy: true}
}

// Clone returns a copy that does not share the Sets backing array.
func (r Reps) Clone() Reps {
	r.Sets = append([]int(nil), r.Sets...)
	return r
}

// Total returns the sum of reps across all sets.
func (r Reps) Total() int {
	total := 0
	for _, n := range r.Sets {
		total += n
	}
	return total
}

type WorkoutRecord struct {
	Owner       string
	Date        time.Time // civil date, midnight UTC
	MuscleGroup string
	Exercise    string
	Weight      float64
	Reps        Reps
}

// CivilDate truncates t to its calendar day in loc and returns it as midnight UTC,
// which is how record dates are compared and stored.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
