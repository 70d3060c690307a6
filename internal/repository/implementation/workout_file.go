package implementation

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"gym-statistics/internal/entity"
	"gym-statistics/internal/mapper"
	"gym-statistics/internal/model"
)

// Encoding selects how the workouts file is written. Both encodings are always readable.
type Encoding string

const (
	// EncodingCurrent: semicolon-delimited, reps as a sequence "[8, 8, 6]".
	EncodingCurrent Encoding = "current"
	// EncodingLegacy: comma-delimited, reps as one bare integer per row.
	EncodingLegacy Encoding = "legacy"
)

var ErrUnknownEncoding = errors.New("unknown store encoding")

func ParseEncoding(value string) (Encoding, error) {
	switch Encoding(strings.ToLower(strings.TrimSpace(value))) {
	case EncodingCurrent, "":
		return EncodingCurrent, nil
	case EncodingLegacy:
		return EncodingLegacy, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, value)
}

func (e Encoding) Delimiter() rune {
	if e == EncodingLegacy {
		return ','
	}
	return ';'
}

// RowError describes a data row that could not be parsed and was skipped.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

var errBadHeader = errors.New("workouts file header is missing required columns")

// decodeWorkouts parses a whole workouts file. The delimiter is taken from the header
// line, so legacy and current files are both accepted. A bad header is fatal for the
// file; bad rows are returned as RowErrors and skipped.
func decodeWorkouts(data []byte) ([]entity.WorkoutRecord, []RowError, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, column := range header {
		index[strings.TrimSpace(column)] = i
	}
	for _, column := range model.WorkoutColumns {
		if _, ok := index[column]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", errBadHeader, column)
		}
	}

	m := mapper.NewWorkoutMapper()
	var (
		records   []entity.WorkoutRecord
		rowErrors []RowError
	)
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rowErrors = append(rowErrors, RowError{Line: parseErr.Line, Err: err})
				continue
			}
			return records, rowErrors, err
		}
		if isBlank(values) {
			continue
		}
		line, _ := reader.FieldPos(0)

		record, err := m.ToEntity(model.WorkoutRowFromValues(values, index))
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Err: err})
			continue
		}
		records = append(records, *record)
	}
	return records, rowErrors, nil
}

// encodeWorkouts writes the header and every record in insertion order.
func encodeWorkouts(w io.Writer, records []entity.WorkoutRecord, enc Encoding) error {
	writer := csv.NewWriter(w)
	writer.Comma = enc.Delimiter()

	if err := writer.Write(model.WorkoutColumns); err != nil {
		return err
	}
	m := mapper.NewWorkoutMapper()
	for i := range records {
		if err := writer.Write(m.ToModel(&records[i]).Values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func detectDelimiter(data []byte) rune {
	firstLine := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		firstLine = data[:i]
	}
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		return ';'
	}
	return ','
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
