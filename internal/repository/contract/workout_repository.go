package contract

import (
	"context"
	"errors"

	"gym-statistics/internal/entity"
)

// ErrNothingToDelete is returned by DeleteMostRecent when the owner has no records.
var ErrNothingToDelete = errors.New("nothing to delete")

// WorkoutRepository owns the ordered, append-only collection of workout records
// and its durable file. Insertion order is identity for "most recent".
type WorkoutRepository interface {
	// Load re-reads the durable file in full. It never fails: a missing or
	// unreadable file yields an empty collection.
	Load(ctx context.Context) []entity.WorkoutRecord
	Append(ctx context.Context, record entity.WorkoutRecord) error
	DeleteMostRecent(ctx context.Context, owner string) (*entity.WorkoutRecord, error)
	Records() []entity.WorkoutRecord
	LastFor(owner, muscleGroup, exercise string) (*entity.WorkoutRecord, bool)
	VocabularyFor(owner string) entity.MuscleVocabulary
}
