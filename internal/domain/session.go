package domain

// SessionState is the finite state of a user's workout-entry session
type SessionState string

const (
	// StateIdle: no capture in progress; entry point
	StateIdle SessionState = "idle"
	// StateCamera: awaiting a capture
	StateCamera SessionState = "camera"
	// StateIdentifying: identification call in flight
	StateIdentifying SessionState = "identifying"
	// StateConfirming: identification displayed, awaiting user decision
	StateConfirming SessionState = "confirming"
	// StateLogging: set entry against the confirmed exercise
	StateLogging SessionState = "logging"
)

// SessionSnapshot is the externally visible view of one user session
type SessionSnapshot struct {
	State           SessionState          `json:"state"`
	Workout         *WorkoutWithExercises `json:"workout,omitempty"`
	CurrentExercise *ExerciseWithSets     `json:"current_exercise,omitempty"`
	Identification  *Identification       `json:"identification,omitempty"`
}
