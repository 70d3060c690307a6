package implementation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"gym-statistics/internal/entity"
	"gym-statistics/internal/pkg/logger"
	"gym-statistics/internal/repository/contract"
	"gym-statistics/pkg/fileio"
	"gym-statistics/pkg/vocabulary"
)

// WorkoutRepositoryImpl keeps the record collection in memory and rewrites the
// whole file on every mutation. Rewrites go through a temp file and rename under
// an advisory lock, so a reader never observes a half-written file.
type WorkoutRepositoryImpl struct {
	path     string
	encoding Encoding
	seed     vocabulary.Seed
	logger   logger.ILogger

	mu      sync.RWMutex
	records []entity.WorkoutRecord
	// damaged is set when the last load discarded an unreadable or corrupt file.
	// The first rewrite copies that file aside before replacing it.
	damaged bool
}

func NewWorkoutRepository(path string, encoding Encoding, seed vocabulary.Seed, log logger.ILogger) *WorkoutRepositoryImpl {
	return &WorkoutRepositoryImpl{
		path:     path,
		encoding: encoding,
		seed:     seed,
		logger:   log,
	}
}

var _ contract.WorkoutRepository = (*WorkoutRepositoryImpl)(nil)

// Path returns the durable file location.
func (r *WorkoutRepositoryImpl) Path() string {
	return r.path
}

func (r *WorkoutRepositoryImpl) Load(ctx context.Context) []entity.WorkoutRecord {
	records, damaged := r.readFile()

	r.mu.Lock()
	r.records = records
	r.damaged = damaged
	r.mu.Unlock()

	return cloneRecords(records)
}

func (r *WorkoutRepositoryImpl) readFile() ([]entity.WorkoutRecord, bool) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Info("WorkoutRepository", "Workouts file not found, starting empty", map[string]interface{}{"path": r.path})
			return []entity.WorkoutRecord{}, false
		}
		r.logger.Error("WorkoutRepository", "Failed to read workouts file, starting empty", map[string]interface{}{"path": r.path, "error": err.Error()})
		return []entity.WorkoutRecord{}, true
	}

	records, rowErrors, err := decodeWorkouts(data)
	if err != nil {
		r.logger.Error("WorkoutRepository", "Workouts file is corrupt, starting empty", map[string]interface{}{"path": r.path, "error": err.Error()})
		return []entity.WorkoutRecord{}, true
	}
	for _, rowErr := range rowErrors {
		r.logger.Warn("WorkoutRepository", "Skipping malformed row", map[string]interface{}{"path": r.path, "line": rowErr.Line, "error": rowErr.Err.Error()})
	}
	if records == nil {
		records = []entity.WorkoutRecord{}
	}
	return records, false
}

func (r *WorkoutRepositoryImpl) Append(ctx context.Context, record entity.WorkoutRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]entity.WorkoutRecord, len(r.records), len(r.records)+1)
	copy(next, r.records)
	next = append(next, cloneRecord(record))

	if err := r.writeFile(next); err != nil {
		return err
	}
	r.records = next
	return nil
}

func (r *WorkoutRepositoryImpl) DeleteMostRecent(ctx context.Context, owner string) (*entity.WorkoutRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].Owner == owner {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, contract.ErrNothingToDelete
	}

	removed := r.records[idx]
	next := make([]entity.WorkoutRecord, 0, len(r.records)-1)
	next = append(next, r.records[:idx]...)
	next = append(next, r.records[idx+1:]...)

	if err := r.writeFile(next); err != nil {
		return nil, err
	}
	r.records = next
	return &removed, nil
}

func (r *WorkoutRepositoryImpl) Records() []entity.WorkoutRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneRecords(r.records)
}

// LastFor returns the owner's most recent record for the given exercise.
func (r *WorkoutRepositoryImpl) LastFor(owner, muscleGroup, exercise string) (*entity.WorkoutRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.Owner == owner && rec.MuscleGroup == muscleGroup && rec.Exercise == exercise {
			found := cloneRecord(rec)
			return &found, true
		}
	}
	return nil, false
}

func (r *WorkoutRepositoryImpl) VocabularyFor(owner string) entity.MuscleVocabulary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return vocabulary.Derive(r.seed, r.records, owner)
}

func (r *WorkoutRepositoryImpl) writeFile(records []entity.WorkoutRecord) error {
	if r.damaged {
		backup, err := fileio.Preserve(r.path, time.Now())
		if err != nil {
			return fmt.Errorf("preserve damaged workouts file: %w", err)
		}
		r.damaged = false
		if backup != "" {
			r.logger.Warn("WorkoutRepository", "Damaged workouts file kept aside before rewrite", map[string]interface{}{"path": r.path, "backup": backup})
		}
	}

	var buf bytes.Buffer
	if err := encodeWorkouts(&buf, records, r.encoding); err != nil {
		return err
	}
	return fileio.WriteAtomic(r.path, 0644, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func cloneRecord(r entity.WorkoutRecord) entity.WorkoutRecord {
	r.Reps = r.Reps.Clone()
	return r
}

func cloneRecords(records []entity.WorkoutRecord) []entity.WorkoutRecord {
	out := make([]entity.WorkoutRecord, len(records))
	for i, r := range records {
		out[i] = cloneRecord(r)
	}
	return out
}
