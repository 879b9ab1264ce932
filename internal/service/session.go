package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/singleflight"
)

// SessionService owns the workout-entry state machine for every user:
// idle -> camera -> identifying -> confirming -> logging, with the back
// paths described on each transition. The current state doubles as the
// mutual-exclusion device: an action issued in the wrong state fails with
// ErrInvalidTransition instead of racing the one in flight.
type SessionService struct {
	workouts   *WorkoutService
	identifier domain.IdentifierService
	files      domain.FileRepository

	mu       sync.Mutex
	sessions map[string]*userSession
	flight   singleflight.Group
}

// userSession is one user's in-memory machine state. generation increases
// with every capture; an identification result carrying an older generation
// is stale and gets discarded rather than applied.
type userSession struct {
	state           domain.SessionState
	generation      uint64
	identification  *domain.Identification
	pendingPhotoURL string
}

func NewSessionService(
	workouts *WorkoutService,
	identifier domain.IdentifierService,
	files domain.FileRepository,
) *SessionService {
	return &SessionService{
		workouts:   workouts,
		identifier: identifier,
		files:      files,
		sessions:   make(map[string]*userSession),
	}
}

// Start moves the user from idle to camera, ensuring an active workout
// exists: it resumes the unfinished one if present, otherwise creates one.
func (s *SessionService) Start(ctx context.Context, userID string) (*domain.SessionSnapshot, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}

	s.mu.Lock()
	sess := s.sessions[userID]
	if sess != nil && sess.state != domain.StateIdle {
		s.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}
	s.mu.Unlock()

	_, err := s.workouts.ResumeActiveWorkout(ctx, userID)
	if errors.Is(err, domain.ErrNoActiveWorkout) {
		_, err = s.workouts.StartWorkout(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[userID] = &userSession{state: domain.StateCamera}
	s.mu.Unlock()

	return s.Snapshot(ctx, userID)
}

// Capture runs the identification pipeline for one image: camera ->
// identifying, exactly one upstream call, then confirming on success or back
// to camera on failure. A new capture may be issued while one is identifying;
// it supersedes the older one, whose result is then discarded as stale.
// Identical concurrent captures collapse into a single upstream call.
func (s *SessionService) Capture(ctx context.Context, userID, imageBase64, mediaType string) (*domain.SessionSnapshot, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || (sess.state != domain.StateCamera && sess.state != domain.StateIdentifying) {
		s.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}
	if imageBase64 == "" {
		s.mu.Unlock()
		return nil, domain.NewValidationError("imageBase64", "must not be empty")
	}

	sess.state = domain.StateIdentifying
	sess.generation++
	gen := sess.generation
	s.mu.Unlock()

	digest := sha256.Sum256([]byte(imageBase64))
	flightKey := userID + ":" + hex.EncodeToString(digest[:8])

	result, err, _ := s.flight.Do(flightKey, func() (interface{}, error) {
		return s.identifier.Identify(ctx, imageBase64, mediaType)
	})

	// The photo upload talks to blob storage and must not run under s.mu;
	// every session would stall behind it
	var photoURL string
	if err == nil {
		photoURL = s.uploadPhoto(ctx, userID, imageBase64)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer capture superseded this one while the call was in flight;
	// its outcome must not be applied.
	if sess.generation != gen {
		return nil, domain.ErrStaleCapture
	}

	if err != nil {
		sess.state = domain.StateCamera
		return nil, err
	}

	sess.identification = result.(*domain.Identification)
	sess.pendingPhotoURL = photoURL
	sess.state = domain.StateConfirming

	return s.snapshotLocked(userID, sess), nil
}

// Retake discards the pending identification and returns to camera
func (s *SessionService) Retake(userID string) (*domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.state != domain.StateConfirming {
		return nil, domain.ErrInvalidTransition
	}

	sess.identification = nil
	sess.pendingPhotoURL = ""
	sess.state = domain.StateCamera

	return s.snapshotLocked(userID, sess), nil
}

// Confirm persists the exercise (identified, alternative or manual catalog
// pick) and moves to logging. On persistence failure the machine stays in
// confirming so the same action can be retried.
func (s *SessionService) Confirm(ctx context.Context, userID, name, equipment, muscleGroup string, identifiedByAI bool) (*domain.SessionSnapshot, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || sess.state != domain.StateConfirming {
		s.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}
	photoURL := sess.pendingPhotoURL
	s.mu.Unlock()

	_, err := s.workouts.ConfirmExercise(ctx, userID, name, equipment, muscleGroup, photoURL, identifiedByAI)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.identification = nil
	sess.pendingPhotoURL = ""
	sess.state = domain.StateLogging

	return s.snapshotLocked(userID, sess), nil
}

// AddSet logs one validated set against the current exercise (stays in logging)
func (s *SessionService) AddSet(ctx context.Context, userID, exerciseID string, weight float64, reps int, unit domain.WeightUnit, rpe *float64, notes string) (*domain.Set, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || sess.state != domain.StateLogging {
		s.mu.Unlock()
		return nil, domain.ErrInvalidTransition
	}
	s.mu.Unlock()

	return s.workouts.AddSet(ctx, userID, exerciseID, weight, reps, unit, rpe, notes)
}

// DeleteSet removes one set by identity (stays in logging); surviving sets
// are not renumbered
func (s *SessionService) DeleteSet(ctx context.Context, userID, setID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || sess.state != domain.StateLogging {
		s.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	s.mu.Unlock()

	return s.workouts.DeleteSet(ctx, userID, setID)
}

// NextExercise finishes the current exercise and returns to camera for the
// next capture
func (s *SessionService) NextExercise(userID string) (*domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.state != domain.StateLogging {
		return nil, domain.ErrInvalidTransition
	}

	s.workouts.FinishExercise(userID)
	sess.state = domain.StateCamera

	return s.snapshotLocked(userID, sess), nil
}

// End closes the workout, attaching the optional free-text notes. Reachable
// from camera and logging only: an identification in flight or awaiting
// confirmation must resolve first.
func (s *SessionService) End(ctx context.Context, userID, notes string) error {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || (sess.state != domain.StateCamera && sess.state != domain.StateLogging) {
		s.mu.Unlock()
		return domain.ErrInvalidTransition
	}
	s.mu.Unlock()

	if err := s.workouts.EndWorkout(ctx, userID, notes); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

// Cancel backs out of the camera to idle. Only allowed while the workout has
// no exercises yet; once something is logged the session ends via End.
func (s *SessionService) Cancel(userID string) (*domain.SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.state != domain.StateCamera {
		return nil, domain.ErrInvalidTransition
	}

	tree, _ := s.workouts.Active(userID)
	if tree != nil && len(tree.Exercises) > 0 {
		return nil, domain.ErrInvalidTransition
	}

	sess.state = domain.StateIdle
	return s.snapshotLocked(userID, sess), nil
}

// Snapshot returns the externally visible session view. When the process
// holds no session for the user it attempts to rehydrate from storage: an
// unfinished workout resumes into camera, otherwise the user is idle.
func (s *SessionService) Snapshot(ctx context.Context, userID string) (*domain.SessionSnapshot, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()

	if !ok {
		_, err := s.workouts.ResumeActiveWorkout(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNoActiveWorkout) {
				return &domain.SessionSnapshot{State: domain.StateIdle}, nil
			}
			return nil, err
		}

		s.mu.Lock()
		sess = &userSession{state: domain.StateCamera}
		s.sessions[userID] = sess
		s.mu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(userID, sess), nil
}

// OnAuthChange drops all in-memory session state for a user that signed out
func (s *SessionService) OnAuthChange(userID string, signedIn bool) {
	if signedIn {
		return
	}
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
}

func (s *SessionService) snapshotLocked(userID string, sess *userSession) *domain.SessionSnapshot {
	tree, current := s.workouts.Active(userID)
	return &domain.SessionSnapshot{
		State:           sess.state,
		Workout:         tree,
		CurrentExercise: current,
		Identification:  sess.identification,
	}
}

// uploadPhoto stores the captured frame under a workout-scoped key and
// returns its public URL. Photo storage is best-effort: a failure is logged
// and the exercise is simply created without a photo reference.
func (s *SessionService) uploadPhoto(ctx context.Context, userID, imageBase64 string) string {
	if s.files == nil {
		return ""
	}

	tree, _ := s.workouts.Active(userID)
	if tree == nil {
		return ""
	}

	data, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		log.Printf("Warning: captured image is not valid base64: %v", err)
		return ""
	}

	filename := fmt.Sprintf("%s/%s.jpg", tree.ID, newCaptureID())
	url, err := s.files.Upload(ctx, data, filename, "image/jpeg")
	if err != nil {
		log.Printf("Warning: failed to upload exercise photo: %v", err)
		return ""
	}
	return url
}

// newCaptureID returns a sortable unique id for captured frames
func newCaptureID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
