package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"

	"gym-statistics/internal/entity"
	"gym-statistics/internal/observability"
	"gym-statistics/internal/pkg/logger"
)

// Refresh triggers, used for logging and metrics.
const (
	TriggerLazy         = "lazy"
	TriggerManual       = "manual"
	TriggerTimer        = "timer"
	TriggerNotification = "notification"
	TriggerWatcher      = "watcher"
)

// WorkoutLoader re-reads the workouts file in full.
type WorkoutLoader interface {
	Load(ctx context.Context) []entity.WorkoutRecord
}

// IDashboardService is the read side of the workouts file. Queries always answer from
// the cached snapshot; only Refresh looks at the file, and it reloads only when the
// modification time differs from the one the snapshot was taken at.
type IDashboardService interface {
	Refresh(ctx context.Context, trigger string) (bool, error)
	Run(ctx context.Context, interval time.Duration)
	OnRefresh(fn func(version uint64))
	Version() uint64

	Owners(ctx context.Context) []string
	MuscleGroups(ctx context.Context, owner string) []string
	Exercises(ctx context.Context, owner, muscleGroup string) []string
	Series(ctx context.Context, selection entity.DashboardSelection) []entity.SeriesPoint
	View(ctx context.Context, selection entity.DashboardSelection) entity.DashboardView
}

type dashboardService struct {
	loader WorkoutLoader
	path   string
	stat   func(name string) (os.FileInfo, error)
	logger logger.ILogger

	refreshMu sync.Mutex // one reload at a time

	mu        sync.RWMutex
	records   []entity.WorkoutRecord
	mtime     time.Time
	loaded    bool
	version   uint64
	listeners []func(version uint64)
}

func NewDashboardService(loader WorkoutLoader, path string, log logger.ILogger) IDashboardService {
	return &dashboardService{
		loader: loader,
		path:   path,
		stat:   os.Stat,
		logger: log,
	}
}

// OnRefresh registers fn to run after every reload. Listeners run synchronously
// on the refreshing goroutine and must not call back into Refresh.
func (s *dashboardService) OnRefresh(fn func(version uint64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *dashboardService) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Refresh reloads the snapshot if the file's mtime changed since the last load, or if
// nothing is loaded yet. A missing file counts as a zero mtime. It reports whether a
// reload happened.
func (s *dashboardService) Refresh(ctx context.Context, trigger string) (bool, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	mtime, err := s.modTime()
	if err != nil {
		s.logger.Error("DashboardService", "Failed to stat workouts file", map[string]interface{}{"path": s.path, "trigger": trigger, "error": err.Error()})
		return false, err
	}

	s.mu.RLock()
	unchanged := s.loaded && mtime.Equal(s.mtime)
	s.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	records := s.loader.Load(ctx)

	s.mu.Lock()
	s.records = records
	s.mtime = mtime
	s.loaded = true
	s.version++
	version := s.version
	listeners := append([]func(uint64){}, s.listeners...)
	s.mu.Unlock()

	observability.RecordDashboardReload(trigger, len(records), mtime)
	s.logger.Info("DashboardService", "Snapshot reloaded", map[string]interface{}{
		"trigger": trigger,
		"records": len(records),
		"mtime":   mtime,
		"version": version,
	})

	for _, fn := range listeners {
		fn(version)
	}
	return true, nil
}

func (s *dashboardService) modTime() (time.Time, error) {
	info, err := s.stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Run refreshes on every tick until ctx is done.
func (s *dashboardService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.Refresh(ctx, TriggerTimer)
		}
	}
}

// snapshot returns the cached records, loading them once if nothing is cached.
func (s *dashboardService) snapshot(ctx context.Context) ([]entity.WorkoutRecord, uint64) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()

	if !loaded {
		_, _ = s.Refresh(ctx, TriggerLazy)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.version
}

func (s *dashboardService) Owners(ctx context.Context) []string {
	records, _ := s.snapshot(ctx)
	return owners(records)
}

func (s *dashboardService) MuscleGroups(ctx context.Context, owner string) []string {
	records, _ := s.snapshot(ctx)
	return muscleGroups(records, owner)
}

func (s *dashboardService) Exercises(ctx context.Context, owner, muscleGroup string) []string {
	records, _ := s.snapshot(ctx)
	return exercises(records, owner, muscleGroup)
}

func (s *dashboardService) Series(ctx context.Context, selection entity.DashboardSelection) []entity.SeriesPoint {
	records, _ := s.snapshot(ctx)
	return series(records, selection)
}

// View resolves the selection top-down: an empty or unknown owner, muscle group or
// exercise falls back to the first option available under the level above it.
func (s *dashboardService) View(ctx context.Context, selection entity.DashboardSelection) entity.DashboardView {
	records, version := s.snapshot(ctx)

	view := entity.DashboardView{Version: version}
	view.Owners = owners(records)
	view.Selection.Owner = pick(view.Owners, selection.Owner)

	view.MuscleGroups = muscleGroups(records, view.Selection.Owner)
	view.Selection.MuscleGroup = pick(view.MuscleGroups, selection.MuscleGroup)

	view.Exercises = exercises(records, view.Selection.Owner, view.Selection.MuscleGroup)
	view.Selection.Exercise = pick(view.Exercises, selection.Exercise)

	view.Series = series(records, view.Selection)
	return view
}

func pick(options []string, chosen string) string {
	for _, o := range options {
		if o == chosen {
			return chosen
		}
	}
	if len(options) == 0 {
		return ""
	}
	return options[0]
}

// The option lists keep first-appearance order, like the file.

func owners(records []entity.WorkoutRecord) []string {
	return distinct(records, func(r *entity.WorkoutRecord) (string, bool) {
		return r.Owner, true
	})
}

func muscleGroups(records []entity.WorkoutRecord, owner string) []string {
	return distinct(records, func(r *entity.WorkoutRecord) (string, bool) {
		return r.MuscleGroup, r.Owner == owner
	})
}

func exercises(records []entity.WorkoutRecord, owner, muscleGroup string) []string {
	return distinct(records, func(r *entity.WorkoutRecord) (string, bool) {
		return r.Exercise, r.Owner == owner && r.MuscleGroup == muscleGroup
	})
}

func distinct(records []entity.WorkoutRecord, key func(r *entity.WorkoutRecord) (string, bool)) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for i := range records {
		v, ok := key(&records[i])
		if !ok || v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// series is ordered by date; same-day records keep their file order.
func series(records []entity.WorkoutRecord, sel entity.DashboardSelection) []entity.SeriesPoint {
	points := []entity.SeriesPoint{}
	for _, r := range records {
		if r.Owner != sel.Owner || r.MuscleGroup != sel.MuscleGroup || r.Exercise != sel.Exercise {
			continue
		}
		points = append(points, entity.SeriesPoint{
			Date:   r.Date,
			Weight: r.Weight,
			Reps:   r.Reps.Clone(),
		})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
