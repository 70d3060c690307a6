package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gym-statistics/internal/entity"
	"gym-statistics/internal/model"
)

var (
	ErrInvalidWeight   = errors.New("weight must be a non-negative number")
	ErrInvalidReps     = errors.New("reps must be whole numbers")
	ErrEmptyReps       = errors.New("at least one set is required")
	ErrNonPositiveRep  = errors.New("every set needs at least one rep")
	ErrLegacySingleSet = errors.New("legacy mode accepts a single rep count")
	ErrInvalidDate     = errors.New("invalid date")
	ErrMissingField    = errors.New("missing required field")
)

type WorkoutMapper struct{}

func NewWorkoutMapper() *WorkoutMapper {
	return &WorkoutMapper{}
}

// ToEntity parses a raw file row. The returned error names the first field that failed.
func (m *WorkoutMapper) ToEntity(row model.WorkoutRow) (*entity.WorkoutRecord, error) {
	owner := strings.TrimSpace(row.UserID)
	if owner == "" {
		return nil, fmt.Errorf("user_id: %w", ErrMissingField)
	}

	date, err := ParseDate(row.Date)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", row.Date, err)
	}

	weight, err := ParseWeight(row.Weight)
	if err != nil {
		return nil, fmt.Errorf("weight %q: %w", row.Weight, err)
	}

	reps, err := DecodeReps(row.Reps)
	if err != nil {
		return nil, fmt.Errorf("reps %q: %w", row.Reps, err)
	}

	return &entity.WorkoutRecord{
		Owner:       owner,
		Date:        date,
		MuscleGroup: row.MuscleGroup,
		Exercise:    row.Exercise,
		Weight:      weight,
		Reps:        reps,
	}, nil
}

func (m *WorkoutMapper) ToModel(r *entity.WorkoutRecord) model.WorkoutRow {
	return model.WorkoutRow{
		UserID:      r.Owner,
		Date:        r.Date.Format(entity.DateLayout),
		MuscleGroup: r.MuscleGroup,
		Exercise:    r.Exercise,
		Weight:      FormatWeight(r.Weight),
		Reps:        EncodeReps(r.Reps),
	}
}

// ParseDate accepts "2006-01-02" and tolerates a trailing time component.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) < len(entity.DateLayout) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.Parse(entity.DateLayout, value[:len(entity.DateLayout)])
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseWeight reads a user- or file-supplied weight. A single decimal comma is
// accepted; "1,000" looks like digit grouping and "1,2.5" mixes separators, so
// both are rejected.
func ParseWeight(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if whole, frac, found := strings.Cut(text, ","); found {
		if strings.ContainsAny(frac, ",.") || strings.Contains(whole, ".") || len(frac) == 3 {
			return 0, ErrInvalidWeight
		}
		text = whole + "." + frac
	}
	if text == "" {
		return 0, ErrInvalidWeight
	}
	w, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return 0, ErrInvalidWeight
	}
	return w, nil
}

// FormatWeight always keeps a decimal point so files stay readable by float-typed readers.
func FormatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ParseReps reads dialog input: whitespace-separated positive integers,
// or exactly one integer when legacy is set.
func ParseReps(text string, legacy bool) (entity.Reps, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return entity.Reps{}, ErrEmptyReps
	}
	if legacy && len(fields) != 1 {
		return entity.Reps{}, ErrLegacySingleSet
	}

	sets := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n > maxRep {
			return entity.Reps{}, ErrInvalidReps
		}
		if n <= 0 {
			return entity.Reps{}, ErrNonPositiveRep
		}
		sets = append(sets, n)
	}

	if legacy {
		return entity.NewLegacyReps(sets[0]), nil
	}
	return entity.NewReps(sets...), nil
}

// maxRep bounds a single set so every accepted count converts to int exactly.
const maxRep = math.MaxInt32

// DecodeReps reads the reps column: a bare integer (legacy) or a literal
// sequence such as "[8, 8, 6]".
func DecodeReps(field string) (entity.Reps, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return entity.Reps{}, ErrEmptyReps
	}

	if strings.HasPrefix(field, "[") {
		var sets []int
		if err := json.Unmarshal([]byte(field), &sets); err != nil {
			return entity.Reps{}, ErrInvalidReps
		}
		if len(sets) == 0 {
			return entity.Reps{}, ErrEmptyReps
		}
		for _, n := range sets {
			if n <= 0 {
				return entity.Reps{}, ErrNonPositiveRep
			}
			if n > maxRep {
				return entity.Reps{}, ErrInvalidReps
			}
		}
		return entity.NewReps(sets...), nil
	}

	// Float-typed writers may have stored "10.0".
	f, err := strconv.ParseFloat(field, 64)
	if err != nil || f != math.Trunc(f) || f > maxRep {
		return entity.Reps{}, ErrInvalidReps
	}
	if f <= 0 {
		return entity.Reps{}, ErrNonPositiveRep
	}
	return entity.NewLegacyReps(int(f)), nil
}

// EncodeReps is the inverse of DecodeReps.
func EncodeReps(r entity.Reps) string {
	if r.Legacy && len(r.Sets) == 1 {
		return strconv.Itoa(r.Sets[0])
	}
	parts := make([]string, len(r.Sets))
	for i, n := range r.Sets {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FormatReps renders reps for chat replies, e.g. "8 8 6".
func FormatReps(r entity.Reps) string {
	parts := make([]string, len(r.Sets))
	for i, n := range r.Sets {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}
