package entity

// OtherChoice is the synthetic keyboard entry that switches the dialog to free-text input.
const OtherChoice = "Other"

// MuscleVocabulary is derived from the seed list and workout history; it is never stored.
type MuscleVocabulary struct {
	MuscleGroups []string
	Exercises    map[string][]string
}

// ExercisesFor returns the exercise choices for a muscle group, always ending with OtherChoice.
func (v MuscleVocabulary) ExercisesFor(muscleGroup string) []string {
	if list, ok := v.Exercises[muscleGroup]; ok {
		return list
	}
	return []string{OtherChoice}
}
