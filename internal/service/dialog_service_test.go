package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gym-statistics/internal/entity"
	"gym-statistics/internal/pkg/logger"
	"gym-statistics/internal/repository/contract"
	"gym-statistics/internal/repository/memory"
	"gym-statistics/pkg/events"
	"gym-statistics/pkg/vocabulary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyWorkoutRepo struct {
	records    []entity.WorkoutRecord
	appends    int
	deletes    int
	failAppend bool
}

func (r *spyWorkoutRepo) Load(ctx context.Context) []entity.WorkoutRecord {
	return append([]entity.WorkoutRecord(nil), r.records...)
}

func (r *spyWorkoutRepo) Append(ctx context.Context, record entity.WorkoutRecord) error {
	if r.failAppend {
		return errors.New("disk full")
	}
	r.appends++
	r.records = append(r.records, record)
	return nil
}

func (r *spyWorkoutRepo) DeleteMostRecent(ctx context.Context, owner string) (*entity.WorkoutRecord, error) {
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].Owner == owner {
			removed := r.records[i]
			r.records = append(r.records[:i], r.records[i+1:]...)
			r.deletes++
			return &removed, nil
		}
	}
	return nil, contract.ErrNothingToDelete
}

func (r *spyWorkoutRepo) Records() []entity.WorkoutRecord {
	return append([]entity.WorkoutRecord(nil), r.records...)
}

func (r *spyWorkoutRepo) LastFor(owner, muscleGroup, exercise string) (*entity.WorkoutRecord, bool) {
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if rec.Owner == owner && rec.MuscleGroup == muscleGroup && rec.Exercise == exercise {
			return &rec, true
		}
	}
	return nil, false
}

func (r *spyWorkoutRepo) VocabularyFor(owner string) entity.MuscleVocabulary {
	return vocabulary.Derive(vocabulary.DefaultSeed(), r.records, owner)
}

type fakeNames map[string]string

func (n fakeNames) NameOf(handle string) (string, bool) {
	name, ok := n[handle]
	return name, ok
}

func (n fakeNames) Register(ctx context.Context, handle, name string) error {
	for h, existing := range n {
		if existing == name && h != handle {
			return contract.ErrNameTaken
		}
	}
	n[handle] = name
	return nil
}

type spyPublisher struct {
	events []events.Event
}

func (p *spyPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

type dialogFixture struct {
	svc      IDialogService
	workouts *spyWorkoutRepo
	names    fakeNames
	sessions contract.DialogSessionRepository
	changes  *spyPublisher
}

var fixedNow = time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)

func newDialogFixture(legacy bool) *dialogFixture {
	f := &dialogFixture{
		workouts: &spyWorkoutRepo{},
		names:    fakeNames{},
		sessions: memory.NewDialogSessionRepository(),
		changes:  &spyPublisher{},
	}
	f.svc = NewDialogService(f.workouts, f.names, f.sessions, f.changes, DialogOptions{
		Location:     time.FixedZone("MSK", 3*60*60),
		LegacyReps:   legacy,
		DashboardURL: "http://localhost:8055/",
		Now:          func() time.Time { return fixedNow },
	}, logger.NewNopLogger())
	return f
}

func (f *dialogFixture) send(t *testing.T, handle, text string) *entity.DialogReply {
	t.Helper()
	reply, err := f.svc.Handle(context.Background(), handle, text)
	require.NoError(t, err)
	require.NotNil(t, reply)
	return reply
}

func (f *dialogFixture) state(handle string) entity.DialogState {
	session, ok := f.sessions.Get(handle)
	if !ok {
		return entity.StateEnd
	}
	return session.State
}

func TestDialog_FullScenarioThenDeleteLast(t *testing.T) {
	f := newDialogFixture(false)

	reply := f.send(t, "tg:1", "/start")
	assert.Contains(t, reply.Text, "What's your name")
	assert.Equal(t, entity.StateGetName, f.state("tg:1"))

	reply = f.send(t, "tg:1", "Alex")
	assert.Contains(t, reply.Text, "Nice to meet you, Alex")
	assert.Equal(t, entity.StateSelectMuscle, f.state("tg:1"))
	require.NotEmpty(t, reply.Keyboard)
	assert.Equal(t, []string{"Chest", "Back"}, reply.Keyboard[0])
	lastRow := reply.Keyboard[len(reply.Keyboard)-1]
	assert.Equal(t, entity.OtherChoice, lastRow[len(lastRow)-1])

	reply = f.send(t, "tg:1", "Legs")
	assert.Equal(t, entity.StateSelectExercise, f.state("tg:1"))
	assert.Equal(t, []string{"Squat", "Machine Squat"}, reply.Keyboard[0])

	reply = f.send(t, "tg:1", "Squat")
	assert.Equal(t, entity.StateInputWeight, f.state("tg:1"))
	assert.Contains(t, reply.Text, "First time doing Squat")
	assert.True(t, reply.RemoveKeyboard)

	f.send(t, "tg:1", "100")
	assert.Equal(t, entity.StateInputReps, f.state("tg:1"))

	reply = f.send(t, "tg:1", "8 8 6")
	assert.Contains(t, reply.Text, "Workout saved, Alex!")
	assert.Contains(t, reply.Text, "/delete_last")
	assert.Contains(t, reply.Text, "http://localhost:8055/")
	assert.Equal(t, entity.StateEnd, f.state("tg:1"))

	require.Equal(t, 1, f.workouts.appends)
	assert.Equal(t, entity.WorkoutRecord{
		Owner:       "Alex",
		Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		MuscleGroup: "Legs",
		Exercise:    "Squat",
		Weight:      100,
		Reps:        entity.NewReps(8, 8, 6),
	}, f.workouts.records[0])
	require.Len(t, f.changes.events, 1)
	assert.Equal(t, events.TypeWorkoutsChanged, f.changes.events[0].EventType())

	reply = f.send(t, "tg:1", "/delete_last")
	assert.Contains(t, reply.Text, "Last workout deleted")
	assert.Empty(t, f.workouts.records)
	assert.Len(t, f.changes.events, 2)

	reply = f.send(t, "tg:1", "/delete_last")
	assert.Equal(t, "You have no saved workouts!", reply.Text)
	assert.Len(t, f.changes.events, 2)
}

func TestDialog_InvalidNumbersKeepState(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"

	f.send(t, "tg:1", "/start")
	f.send(t, "tg:1", "Chest")
	f.send(t, "tg:1", "Dips")

	for _, bad := range []string{"heavy", "-5", "", "NaN"} {
		reply := f.send(t, "tg:1", bad)
		assert.Contains(t, reply.Text, "Please enter a number")
		assert.Equal(t, entity.StateInputWeight, f.state("tg:1"))
	}

	f.send(t, "tg:1", "12,5")
	for _, bad := range []string{"eight", "8 0", "8.5", "   "} {
		reply := f.send(t, "tg:1", bad)
		assert.Contains(t, reply.Text, "positive whole numbers")
		assert.Equal(t, entity.StateInputReps, f.state("tg:1"))
	}

	session, ok := f.sessions.Get("tg:1")
	require.True(t, ok)
	assert.Equal(t, "Chest", session.MuscleGroup)
	assert.Equal(t, "Dips", session.Exercise)
	assert.Equal(t, 12.5, session.Weight)
	assert.Zero(t, f.workouts.appends)
}

func TestDialog_NameCollisionRePrompts(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:2"] = "Alex"

	f.send(t, "tg:1", "/start")
	reply := f.send(t, "tg:1", "Alex")

	assert.Contains(t, reply.Text, "already taken")
	assert.Equal(t, entity.StateGetName, f.state("tg:1"))

	reply = f.send(t, "tg:1", "Sam")
	assert.Contains(t, reply.Text, "Nice to meet you, Sam")
	assert.Equal(t, "Sam", f.names["tg:1"])
}

func TestDialog_ReturningUserIsGreeted(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"

	reply := f.send(t, "tg:1", "/start")

	assert.Equal(t, "Hi, Alex! Choose a muscle group:", reply.Text)
	assert.Equal(t, entity.StateSelectMuscle, f.state("tg:1"))
}

func TestDialog_CancelDiscardsSession(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"

	f.send(t, "tg:1", "/start")
	f.send(t, "tg:1", "Legs")
	f.send(t, "tg:1", "Squat")
	reply := f.send(t, "tg:1", "/cancel")

	assert.Equal(t, "Cancelled, Alex.", reply.Text)
	assert.True(t, reply.RemoveKeyboard)
	assert.Equal(t, entity.StateEnd, f.state("tg:1"))

	reply = f.send(t, "tg:1", "100")
	assert.Contains(t, reply.Text, "/start")
	assert.Zero(t, f.workouts.appends)
}

func TestDialog_StartRestartsFlow(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"

	f.send(t, "tg:1", "/start")
	f.send(t, "tg:1", "Legs")
	f.send(t, "tg:1", "/start@GymBot")

	session, ok := f.sessions.Get("tg:1")
	require.True(t, ok)
	assert.Equal(t, entity.StateSelectMuscle, session.State)
	assert.Empty(t, session.MuscleGroup)
}

func TestDialog_CustomMuscleAndExercise(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"

	f.send(t, "tg:1", "/start")
	reply := f.send(t, "tg:1", entity.OtherChoice)
	assert.Equal(t, entity.StateInputCustomMuscle, f.state("tg:1"))
	assert.Equal(t, "Enter the muscle group name:", reply.Text)

	reply = f.send(t, "tg:1", "Forearms")
	assert.Equal(t, entity.StateInputCustomExercise, f.state("tg:1"))
	assert.Equal(t, "Enter the exercise name:", reply.Text)

	f.send(t, "tg:1", "Wrist Curl")
	f.send(t, "tg:1", "20")
	f.send(t, "tg:1", "15 12")

	require.Len(t, f.workouts.records, 1)
	assert.Equal(t, "Forearms", f.workouts.records[0].MuscleGroup)
	assert.Equal(t, "Wrist Curl", f.workouts.records[0].Exercise)

	// The new group and exercise are offered on the next run.
	reply = f.send(t, "tg:1", "/start")
	assert.Contains(t, flatten(reply.Keyboard), "Forearms")
	reply = f.send(t, "tg:1", "Forearms")
	assert.Equal(t, [][]string{{"Wrist Curl", entity.OtherChoice}}, reply.Keyboard)
}

func TestDialog_OtherExerciseInKnownGroup(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"

	f.send(t, "tg:1", "/start")
	f.send(t, "tg:1", "Legs")
	f.send(t, "tg:1", entity.OtherChoice)
	assert.Equal(t, entity.StateInputCustomExercise, f.state("tg:1"))

	session, _ := f.sessions.Get("tg:1")
	assert.Equal(t, "Legs", session.MuscleGroup)
}

func TestDialog_WeightPromptShowsLastRecord(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"
	f.workouts.records = []entity.WorkoutRecord{
		{Owner: "Alex", Date: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), MuscleGroup: "Legs", Exercise: "Squat", Weight: 95, Reps: entity.NewReps(8, 8, 6)},
	}

	f.send(t, "tg:1", "/start")
	f.send(t, "tg:1", "Legs")
	reply := f.send(t, "tg:1", "Squat")

	assert.Contains(t, reply.Text, "Last set of this exercise")
	assert.Contains(t, reply.Text, "Date: 2024-02-20")
	assert.Contains(t, reply.Text, "Weight: 95.0 kg")
	assert.Contains(t, reply.Text, "Reps: 8 8 6")
}

func TestDialog_LegacyModeAcceptsSingleCount(t *testing.T) {
	f := newDialogFixture(true)
	f.names["tg:1"] = "Alex"

	f.send(t, "tg:1", "/start")
	f.send(t, "tg:1", "Legs")
	f.send(t, "tg:1", "Squat")
	reply := f.send(t, "tg:1", "100")
	assert.Equal(t, "Enter the number of reps:", reply.Text)

	reply = f.send(t, "tg:1", "8 8")
	assert.Contains(t, reply.Text, "whole number")
	assert.Equal(t, entity.StateInputReps, f.state("tg:1"))

	f.send(t, "tg:1", "10")
	require.Len(t, f.workouts.records, 1)
	assert.Equal(t, entity.NewLegacyReps(10), f.workouts.records[0].Reps)
}

func TestDialog_AppendFailureKeepsRepsState(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"
	f.workouts.failAppend = true

	f.send(t, "tg:1", "/start")
	f.send(t, "tg:1", "Legs")
	f.send(t, "tg:1", "Squat")
	f.send(t, "tg:1", "100")
	reply := f.send(t, "tg:1", "8 8 6")

	assert.Contains(t, reply.Text, "Could not save")
	assert.Equal(t, entity.StateInputReps, f.state("tg:1"))
	assert.Empty(t, f.changes.events)

	f.workouts.failAppend = false
	f.send(t, "tg:1", "8 8 6")
	assert.Equal(t, 1, f.workouts.appends)
}

func TestDialog_DeleteLastUnregistered(t *testing.T) {
	f := newDialogFixture(false)

	reply := f.send(t, "tg:9", "/delete_last")

	assert.Equal(t, "You have not saved any workouts yet!", reply.Text)
	assert.Zero(t, f.workouts.deletes)
}

func TestDialog_DeleteLastOnlyTouchesOwner(t *testing.T) {
	f := newDialogFixture(false)
	f.names["tg:1"] = "Alex"
	f.workouts.records = []entity.WorkoutRecord{
		{Owner: "Alex", Exercise: "Squat", Reps: entity.NewReps(5)},
		{Owner: "Sam", Exercise: "Dips", Reps: entity.NewReps(5)},
	}

	f.send(t, "tg:1", "/delete_last")

	require.Len(t, f.workouts.records, 1)
	assert.Equal(t, "Sam", f.workouts.records[0].Owner)
}

func TestDialog_TextOutsideSessionAndUnknownCommand(t *testing.T) {
	f := newDialogFixture(false)

	reply := f.send(t, "tg:1", "hello")
	assert.Equal(t, "Send /start to log a workout.", reply.Text)

	reply = f.send(t, "tg:1", "/stats")
	assert.Contains(t, reply.Text, "Unknown command")
	assert.Equal(t, entity.StateEnd, f.state("tg:1"))
}

func TestDialog_CancelledContext(t *testing.T) {
	f := newDialogFixture(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Handle(ctx, "tg:1", "/start")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyboard(t *testing.T) {
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, keyboard([]string{"a", "b", "c"}))
	assert.Equal(t, [][]string{}, keyboard(nil))
}

func flatten(rows [][]string) []string {
	var out []string
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}
