package implementation

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gym-statistics/pkg/fileio"
)

// MigrationReport summarises a one-time rewrite of the workouts file.
type MigrationReport struct {
	Records      int
	Converted    int // legacy scalar reps turned into sequences
	SkippedRows  []RowError
	BackupPath   string
	DryRun       bool
	TargetFormat Encoding
}

// MigrateWorkoutsFile rewrites path in the target encoding. Unlike Load it refuses
// to continue on an unreadable or corrupt file, and it keeps a copy of the original
// next to it unless dryRun is set.
func MigrateWorkoutsFile(path string, target Encoding, dryRun bool) (*MigrationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	records, rowErrors, err := decodeWorkouts(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	report := &MigrationReport{
		Records:      len(records),
		SkippedRows:  rowErrors,
		DryRun:       dryRun,
		TargetFormat: target,
	}

	for i := range records {
		reps := &records[i].Reps
		switch {
		case target == EncodingCurrent && reps.Legacy:
			reps.Legacy = false
			report.Converted++
		case target == EncodingLegacy && !reps.Legacy && len(reps.Sets) == 1:
			reps.Legacy = true
			report.Converted++
		}
	}

	if dryRun {
		return report, nil
	}

	report.BackupPath = path + ".bak"
	if err := os.WriteFile(report.BackupPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	var buf bytes.Buffer
	if err := encodeWorkouts(&buf, records, target); err != nil {
		return nil, err
	}
	err = fileio.WriteAtomic(path, 0644, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
