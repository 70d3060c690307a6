package fileio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Preserve copies path to path+".corrupt-<unix seconds>" under the sidecar lock
// and returns the copy's location. A file the process cannot read is renamed
// aside instead; anything but a regular file is refused. A missing file yields
// "" and no error.
func Preserve(path string, now time.Time) (string, error) {
	lock, err := Acquire(path + ".lock")
	if err != nil {
		return "", fmt.Errorf("lock %s: %w", path, err)
	}
	defer lock.Release()

	backup := fmt.Sprintf("%s.corrupt-%d", path, now.Unix())

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := os.WriteFile(backup, data, 0644); err != nil {
			return "", fmt.Errorf("write %s: %w", backup, err)
		}
		return backup, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	}

	if info, statErr := os.Stat(path); statErr == nil && !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	if err := os.Rename(path, backup); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("move %s aside: %w", path, err)
	}
	return backup, nil
}
