package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gym-statistics/internal/entity"
	"gym-statistics/internal/mapper"
	"gym-statistics/internal/observability"
	"gym-statistics/internal/pkg/logger"
	"gym-statistics/internal/repository/contract"
	"gym-statistics/pkg/events"
)

const (
	CommandStart      = "/start"
	CommandCancel     = "/cancel"
	CommandDeleteLast = "/delete_last"

	fallbackName = "friend"
	cancelHint   = "\nSend /cancel to abort"
	keyboardRow  = 2
)

type IDialogService interface {
	// Handle processes one chat message from handle and returns the reply to send back.
	// Only a cancelled context produces an error; every user mistake is answered with
	// a reply that keeps the conversation going.
	Handle(ctx context.Context, handle, text string) (*entity.DialogReply, error)
}

type DialogOptions struct {
	Location     *time.Location
	LegacyReps   bool // accept a single rep count, as the legacy file stores
	DashboardURL string
	Now          func() time.Time
}

type dialogService struct {
	workouts contract.WorkoutRepository
	names    contract.UserNameRepository
	sessions contract.DialogSessionRepository
	changes  IChangePublisher
	opts     DialogOptions
	logger   logger.ILogger

	// mu serializes messages, so a session and the store see one message at a time.
	mu sync.Mutex
}

func NewDialogService(
	workouts contract.WorkoutRepository,
	names contract.UserNameRepository,
	sessions contract.DialogSessionRepository,
	changes IChangePublisher,
	opts DialogOptions,
	log logger.ILogger,
) IDialogService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &dialogService{
		workouts: workouts,
		names:    names,
		sessions: sessions,
		changes:  changes,
		opts:     opts,
		logger:   log,
	}
}

func (s *dialogService) Handle(ctx context.Context, handle, text string) (*entity.DialogReply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	session, active := s.sessions.Get(handle)

	state := entity.StateStart
	if active {
		state = session.State
	}
	observability.RecordDialogMessage(string(state))

	if command, ok := parseCommand(text); ok {
		switch command {
		case CommandStart:
			s.sessions.Delete(handle)
			return s.start(handle), nil
		case CommandCancel:
			s.sessions.Delete(handle)
			return s.cancel(handle), nil
		case CommandDeleteLast:
			return s.deleteLast(ctx, handle), nil
		default:
			return &entity.DialogReply{Text: "Unknown command. Send /start to log a workout, /cancel to abort or /delete_last to remove your last set."}, nil
		}
	}

	if !active {
		return &entity.DialogReply{Text: "Send /start to log a workout."}, nil
	}

	if session.State == entity.StateGetName {
		return s.getName(ctx, session, text), nil
	}

	// Every state past GET_NAME needs the registered name as record owner.
	owner, ok := s.names.NameOf(handle)
	if !ok {
		s.logger.Warn("DialogService", "Session without registered name, restarting", map[string]interface{}{"handle": handle, "state": string(session.State)})
		s.sessions.Delete(handle)
		return s.start(handle), nil
	}

	switch session.State {
	case entity.StateSelectMuscle:
		return s.selectMuscle(session, owner, text), nil
	case entity.StateInputCustomMuscle:
		return s.inputCustomMuscle(session, text), nil
	case entity.StateSelectExercise:
		return s.selectExercise(session, owner, text), nil
	case entity.StateInputCustomExercise:
		return s.inputCustomExercise(session, owner, text), nil
	case entity.StateInputWeight:
		return s.inputWeight(session, text), nil
	case entity.StateInputReps:
		return s.inputReps(ctx, session, owner, text), nil
	}

	s.logger.Error("DialogService", "Unknown dialog state, discarding session", map[string]interface{}{"handle": handle, "state": string(session.State)})
	s.sessions.Delete(handle)
	return &entity.DialogReply{Text: "Something went wrong. Send /start to begin again.", RemoveKeyboard: true}, nil
}

// parseCommand accepts "/cmd" and the "/cmd@botname" form group chats produce.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	command := strings.Fields(text)[0]
	if at := strings.IndexByte(command, '@'); at > 0 {
		command = command[:at]
	}
	return strings.ToLower(command), true
}

func (s *dialogService) start(handle string) *entity.DialogReply {
	name, known := s.names.NameOf(handle)
	if !known {
		s.sessions.Save(&entity.DialogSession{Handle: handle, State: entity.StateGetName})
		return &entity.DialogReply{Text: "Hi! What's your name?", RemoveKeyboard: true}
	}

	s.sessions.Save(&entity.DialogSession{Handle: handle, State: entity.StateSelectMuscle})
	return &entity.DialogReply{
		Text:     fmt.Sprintf("Hi, %s! Choose a muscle group:", name),
		Keyboard: keyboard(s.workouts.VocabularyFor(name).MuscleGroups),
	}
}

func (s *dialogService) cancel(handle string) *entity.DialogReply {
	return &entity.DialogReply{
		Text:           fmt.Sprintf("Cancelled, %s.", s.displayName(handle)),
		RemoveKeyboard: true,
	}
}

func (s *dialogService) getName(ctx context.Context, session *entity.DialogSession, text string) *entity.DialogReply {
	if text == "" {
		return &entity.DialogReply{Text: "Please enter your name:", RemoveKeyboard: true}
	}

	err := s.names.Register(ctx, session.Handle, text)
	switch {
	case errors.Is(err, contract.ErrNameTaken):
		return &entity.DialogReply{Text: "This name is already taken. Please choose another one:", RemoveKeyboard: true}
	case err != nil:
		observability.RecordStoreWriteFailure()
		s.logger.Error("DialogService", "Failed to register name", map[string]interface{}{"handle": session.Handle, "error": err.Error()})
		return &entity.DialogReply{Text: "Could not save your name, please try again:", RemoveKeyboard: true}
	}

	name, _ := s.names.NameOf(session.Handle)
	s.logger.Info("DialogService", "User registered", map[string]interface{}{"handle": session.Handle, "name": name})

	session.State = entity.StateSelectMuscle
	s.sessions.Save(session)
	return &entity.DialogReply{
		Text:     fmt.Sprintf("Nice to meet you, %s! Choose a muscle group:", name),
		Keyboard: keyboard(s.workouts.VocabularyFor(name).MuscleGroups),
	}
}

func (s *dialogService) selectMuscle(session *entity.DialogSession, owner, text string) *entity.DialogReply {
	vocab := s.workouts.VocabularyFor(owner)
	if text == "" {
		return &entity.DialogReply{Text: "Choose a muscle group:", Keyboard: keyboard(vocab.MuscleGroups)}
	}

	if text == entity.OtherChoice {
		session.State = entity.StateInputCustomMuscle
		s.sessions.Save(session)
		return &entity.DialogReply{Text: "Enter the muscle group name:", RemoveKeyboard: true}
	}

	session.MuscleGroup = text
	session.State = entity.StateSelectExercise
	s.sessions.Save(session)
	return &entity.DialogReply{
		Text:     "Choose an exercise:" + cancelHint,
		Keyboard: keyboard(vocab.ExercisesFor(text)),
	}
}

func (s *dialogService) inputCustomMuscle(session *entity.DialogSession, text string) *entity.DialogReply {
	if text == "" {
		return &entity.DialogReply{Text: "Enter the muscle group name:", RemoveKeyboard: true}
	}

	session.MuscleGroup = text
	session.State = entity.StateInputCustomExercise
	s.sessions.Save(session)
	return &entity.DialogReply{Text: "Enter the exercise name:", RemoveKeyboard: true}
}

func (s *dialogService) selectExercise(session *entity.DialogSession, owner, text string) *entity.DialogReply {
	if text == "" {
		return &entity.DialogReply{
			Text:     "Choose an exercise:" + cancelHint,
			Keyboard: keyboard(s.workouts.VocabularyFor(owner).ExercisesFor(session.MuscleGroup)),
		}
	}

	if text == entity.OtherChoice {
		session.State = entity.StateInputCustomExercise
		s.sessions.Save(session)
		return &entity.DialogReply{Text: "Enter the exercise name:", RemoveKeyboard: true}
	}

	session.Exercise = text
	session.State = entity.StateInputWeight
	s.sessions.Save(session)
	return s.weightPrompt(owner, session)
}

func (s *dialogService) inputCustomExercise(session *entity.DialogSession, owner, text string) *entity.DialogReply {
	if text == "" {
		return &entity.DialogReply{Text: "Enter the exercise name:", RemoveKeyboard: true}
	}

	session.Exercise = text
	session.State = entity.StateInputWeight
	s.sessions.Save(session)
	return s.weightPrompt(owner, session)
}

// weightPrompt shows the owner's previous set of the chosen exercise, if any.
func (s *dialogService) weightPrompt(owner string, session *entity.DialogSession) *entity.DialogReply {
	var b strings.Builder
	if last, ok := s.workouts.LastFor(owner, session.MuscleGroup, session.Exercise); ok {
		fmt.Fprintf(&b, "Last set of this exercise:\nDate: %s\nWeight: %s kg\nReps: %s\n\n",
			last.Date.Format(entity.DateLayout), mapper.FormatWeight(last.Weight), mapper.FormatReps(last.Reps))
	} else {
		fmt.Fprintf(&b, "First time doing %s!\n\n", session.Exercise)
	}
	b.WriteString("Enter the weight (kg):" + cancelHint)
	return &entity.DialogReply{Text: b.String(), RemoveKeyboard: true}
}

func (s *dialogService) inputWeight(session *entity.DialogSession, text string) *entity.DialogReply {
	weight, err := mapper.ParseWeight(text)
	if err != nil {
		return &entity.DialogReply{Text: "Please enter a number (for example: 12.5):"}
	}

	session.Weight = weight
	session.State = entity.StateInputReps
	s.sessions.Save(session)
	return &entity.DialogReply{Text: s.repsPrompt()}
}

func (s *dialogService) repsPrompt() string {
	if s.opts.LegacyReps {
		return "Enter the number of reps:"
	}
	return "Enter the reps of each set separated by spaces (for example: 8 8 6):"
}

func (s *dialogService) inputReps(ctx context.Context, session *entity.DialogSession, owner, text string) *entity.DialogReply {
	reps, err := mapper.ParseReps(text, s.opts.LegacyReps)
	if err != nil {
		if s.opts.LegacyReps {
			return &entity.DialogReply{Text: "Please enter a whole number (for example: 10):"}
		}
		return &entity.DialogReply{Text: "Please enter positive whole numbers separated by spaces (for example: 8 8 6):"}
	}

	record := entity.WorkoutRecord{
		Owner:       owner,
		Date:        entity.CivilDate(s.opts.Now(), s.opts.Location),
		MuscleGroup: session.MuscleGroup,
		Exercise:    session.Exercise,
		Weight:      session.Weight,
		Reps:        reps,
	}
	if err := s.workouts.Append(ctx, record); err != nil {
		observability.RecordStoreWriteFailure()
		s.logger.Error("DialogService", "Failed to save workout", map[string]interface{}{"owner": owner, "error": err.Error()})
		return &entity.DialogReply{Text: "Could not save the workout. Please send the reps again:"}
	}

	observability.RecordWorkoutAppended()
	s.sessions.Delete(session.Handle)
	s.publishChange(ctx, owner, events.ActionAppended)
	s.logger.Info("DialogService", "Workout saved", map[string]interface{}{
		"owner":        owner,
		"muscle_group": record.MuscleGroup,
		"exercise":     record.Exercise,
		"weight":       record.Weight,
		"reps":         record.Reps.Sets,
	})

	text = fmt.Sprintf("Workout saved, %s! Send /start for a new entry.\nSend /delete_last to remove the last set", owner)
	if s.opts.DashboardURL != "" {
		text += "\nProgress charts: " + s.opts.DashboardURL
	}
	return &entity.DialogReply{Text: text, RemoveKeyboard: true}
}

func (s *dialogService) deleteLast(ctx context.Context, handle string) *entity.DialogReply {
	owner, ok := s.names.NameOf(handle)
	if !ok {
		return &entity.DialogReply{Text: "You have not saved any workouts yet!"}
	}

	removed, err := s.workouts.DeleteMostRecent(ctx, owner)
	switch {
	case errors.Is(err, contract.ErrNothingToDelete):
		return &entity.DialogReply{Text: "You have no saved workouts!"}
	case err != nil:
		observability.RecordStoreWriteFailure()
		s.logger.Error("DialogService", "Failed to delete last workout", map[string]interface{}{"owner": owner, "error": err.Error()})
		return &entity.DialogReply{Text: "Could not delete the last workout, please try again later."}
	}

	observability.RecordWorkoutDeleted()
	s.publishChange(ctx, owner, events.ActionDeleted)
	return &entity.DialogReply{Text: fmt.Sprintf("Last workout deleted: %s, %s, %s kg x %s.",
		removed.Date.Format(entity.DateLayout), removed.Exercise, mapper.FormatWeight(removed.Weight), mapper.FormatReps(removed.Reps))}
}

func (s *dialogService) publishChange(ctx context.Context, owner, action string) {
	if s.changes == nil {
		return
	}
	if err := s.changes.Publish(ctx, events.NewWorkoutsChanged(owner, action)); err != nil {
		s.logger.Warn("DialogService", "Failed to publish change event", map[string]interface{}{"owner": owner, "error": err.Error()})
	}
}

func (s *dialogService) displayName(handle string) string {
	if name, ok := s.names.NameOf(handle); ok {
		return name
	}
	return fallbackName
}

// keyboard lays out choices keyboardRow per row.
func keyboard(choices []string) [][]string {
	rows := make([][]string, 0, (len(choices)+keyboardRow-1)/keyboardRow)
	for i := 0; i < len(choices); i += keyboardRow {
		end := i + keyboardRow
		if end > len(choices) {
			end = len(choices)
		}
		rows = append(rows, append([]string(nil), choices[i:end]...))
	}
	return rows
}
