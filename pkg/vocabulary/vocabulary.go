// Package vocabulary derives the muscle-group and exercise choices offered by the dialog.
package vocabulary

import (
	"gym-statistics/internal/entity"
)

// Derive merges the seed with every distinct muscle group and exercise found in records.
// An empty owner derives from all records. Seed entries keep their order, observed
// entries follow in order of first appearance, and entity.OtherChoice always comes last.
// The result is freshly allocated on every call.
func Derive(seed Seed, records []entity.WorkoutRecord, owner string) entity.MuscleVocabulary {
	groups := newOrderedSet()
	exercises := make(map[string]*orderedSet)

	exercisesOf := func(group string) *orderedSet {
		set, ok := exercises[group]
		if !ok {
			set = newOrderedSet()
			exercises[group] = set
		}
		return set
	}

	for _, g := range seed.MuscleGroups {
		groups.add(g.Name)
		set := exercisesOf(g.Name)
		for _, ex := range g.Exercises {
			set.add(ex)
		}
	}

	for _, r := range records {
		if owner != "" && r.Owner != owner {
			continue
		}
		groups.add(r.MuscleGroup)
		exercisesOf(r.MuscleGroup).add(r.Exercise)
	}

	vocab := entity.MuscleVocabulary{
		MuscleGroups: append(groups.items, entity.OtherChoice),
		Exercises:    make(map[string][]string, len(exercises)),
	}
	for _, group := range groups.items {
		vocab.Exercises[group] = append(exercisesOf(group).items, entity.OtherChoice)
	}
	return vocab
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

// add ignores blanks and OtherChoice, which is appended separately.
func (s *orderedSet) add(v string) {
	if v == "" || v == entity.OtherChoice {
		return
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}
