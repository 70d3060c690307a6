package entity

type DialogState string

const (
	StateStart               DialogState = "START"
	StateGetName             DialogState = "GET_NAME"
	StateSelectMuscle        DialogState = "SELECT_MUSCLE"
	StateInputCustomMuscle   DialogState = "INPUT_CUSTOM_MUSCLE"
	StateSelectExercise      DialogState = "SELECT_EXERCISE"
	StateInputCustomExercise DialogState = "INPUT_CUSTOM_EXERCISE"
	StateInputWeight         DialogState = "INPUT_WEIGHT"
	StateInputReps           DialogState = "INPUT_REPS"
	StateEnd                 DialogState = "END"
)

// DialogSession is the in-memory state of one data-entry conversation.
type DialogSession struct {
	Handle      string
	State       DialogState
	MuscleGroup string
	Exercise    string
	Weight      float64
}

// DialogReply is what the engine sends back for one incoming message.
// Keyboard rows are rendered by the chat transport; RemoveKeyboard hides a previous one.
type DialogReply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
}
