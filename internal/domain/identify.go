package domain

import "context"

// Confidence is the model's self-reported certainty for an identification
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether the confidence is one of the three allowed values
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// UnknownExercise is the sentinel name the vision prompt returns when it
// cannot identify anything. It is a normal, valid result: the user corrects
// it manually from the catalog downstream.
const UnknownExercise = "Unknown"

// Identification is the structured guess returned by the vision capability
// for one captured image. It is transient and never persisted.
type Identification struct {
	ExerciseName string     `json:"exercise_name"`
	Equipment    string     `json:"equipment"`
	MuscleGroup  string     `json:"muscle_group"`
	Confidence   Confidence `json:"confidence"`
	Alternatives []string   `json:"alternatives"`
}

// Unknown reports whether this is the cannot-identify sentinel
func (i *Identification) Unknown() bool {
	return i.ExerciseName == UnknownExercise
}

// IdentifierService sends one image to the external vision capability and
// returns a validated Identification or a typed failure. Exactly one
// upstream call per invocation; retries are the caller's concern.
type IdentifierService interface {
	Identify(ctx context.Context, imageBase64, mediaType string) (*Identification, error)
}
