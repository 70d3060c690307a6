package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"gym-statistics/internal/model"
	"gym-statistics/internal/pkg/logger"
	"gym-statistics/internal/repository/contract"
	"gym-statistics/pkg/fileio"
)

var ErrEmptyName = errors.New("name must not be empty")

// UserNameRepositoryImpl is loaded once at start and rewritten in full on every registration.
type UserNameRepositoryImpl struct {
	path   string
	logger logger.ILogger

	mu      sync.RWMutex
	names   model.UserNames
	damaged bool
}

// NewUserNameRepository reads the registry file. A missing or unreadable file
// starts an empty registry; an unreadable one is copied aside before the first
// registration rewrites it.
func NewUserNameRepository(path string, log logger.ILogger) *UserNameRepositoryImpl {
	r := &UserNameRepositoryImpl{path: path, logger: log, names: model.UserNames{}}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return r
	case err != nil:
		log.Error("UserNameRepository", "Failed to read user names", map[string]interface{}{"path": path, "error": err.Error()})
		r.damaged = true
		return r
	}

	var names model.UserNames
	if err := json.Unmarshal(data, &names); err != nil {
		log.Error("UserNameRepository", "User names file is corrupt, starting empty", map[string]interface{}{"path": path, "error": err.Error()})
		r.damaged = true
		return r
	}
	if names != nil {
		r.names = names
	}
	return r
}

var _ contract.UserNameRepository = (*UserNameRepositoryImpl)(nil)

func (r *UserNameRepositoryImpl) NameOf(handle string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[handle]
	return name, ok
}

// Register assigns name to handle and persists the registry before returning.
// Names are compared exactly, case-sensitively.
func (r *UserNameRepositoryImpl) Register(ctx context.Context, handle, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for h, existing := range r.names {
		if existing == name && h != handle {
			return contract.ErrNameTaken
		}
	}

	next := make(model.UserNames, len(r.names)+1)
	for h, n := range r.names {
		next[h] = n
	}
	next[handle] = name

	if err := r.writeFile(next); err != nil {
		return fmt.Errorf("persist user names: %w", err)
	}
	r.names = next
	return nil
}

func (r *UserNameRepositoryImpl) writeFile(names model.UserNames) error {
	if r.damaged {
		backup, err := fileio.Preserve(r.path, time.Now())
		if err != nil {
			return err
		}
		r.damaged = false
		if backup != "" {
			r.logger.Warn("UserNameRepository", "Damaged user names file kept aside before rewrite", map[string]interface{}{"path": r.path, "backup": backup})
		}
	}

	return fileio.WriteAtomic(r.path, 0644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(names)
	})
}
