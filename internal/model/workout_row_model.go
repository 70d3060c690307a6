package model

// WorkoutColumns is the canonical column order of the workouts file.
var WorkoutColumns = []string{"user_id", "date", "muscle_group", "exercise", "weight", "reps"}

// WorkoutRow is one raw line of the workouts file, before any parsing.
type WorkoutRow struct {
	UserID      string
	Date        string
	MuscleGroup string
	Exercise    string
	Weight      string
	Reps        string
}

// Values returns the row fields in WorkoutColumns order.
func (r WorkoutRow) Values() []string {
	return []string{r.UserID, r.Date, r.MuscleGroup, r.Exercise, r.Weight, r.Reps}
}

// WorkoutRowFromValues picks fields out of a CSV record using a header index.
// Missing columns are left empty.
func WorkoutRowFromValues(values []string, index map[string]int) WorkoutRow {
	get := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(values) {
			return ""
		}
		return values[i]
	}
	return WorkoutRow{
		UserID:      get("user_id"),
		Date:        get("date"),
		MuscleGroup: get("muscle_group"),
		Exercise:    get("exercise"),
		Weight:      get("weight"),
		Reps:        get("reps"),
	}
}
