package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
)

const activeWorkoutCacheTTL = 24 * time.Hour

// WorkoutService is the single in-memory source of truth for each user's
// active workout tree (Workout -> Exercise[] -> Set[]), kept strictly
// consistent with storage: every mutation persists first and touches the
// in-memory tree only after the persistence call succeeded.
type WorkoutService struct {
	workoutRepo  domain.WorkoutRepository
	exerciseRepo domain.ExerciseRepository
	setRepo      domain.SetRepository
	cache        domain.CacheRepository

	mu     sync.Mutex
	active map[string]*activeWorkout // keyed by user id
}

// activeWorkout is one user's in-memory aggregate plus the exercise
// currently being edited
type activeWorkout struct {
	tree    *domain.WorkoutWithExercises
	current *domain.ExerciseWithSets
}

func NewWorkoutService(
	workoutRepo domain.WorkoutRepository,
	exerciseRepo domain.ExerciseRepository,
	setRepo domain.SetRepository,
	cache domain.CacheRepository,
) *WorkoutService {
	return &WorkoutService{
		workoutRepo:  workoutRepo,
		exerciseRepo: exerciseRepo,
		setRepo:      setRepo,
		cache:        cache,
		active:       make(map[string]*activeWorkout),
	}
}

// StartWorkout creates a new active workout for the user. Returns
// ErrWorkoutInProgress if one already exists.
func (s *WorkoutService) StartWorkout(ctx context.Context, userID string) (*domain.WorkoutWithExercises, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[userID]; ok {
		return nil, domain.ErrWorkoutInProgress
	}

	workout := &domain.Workout{
		UserID:    userID,
		StartedAt: time.Now(),
	}
	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}

	tree := &domain.WorkoutWithExercises{
		Workout:   *workout,
		Exercises: []*domain.ExerciseWithSets{},
	}
	s.active[userID] = &activeWorkout{tree: tree}
	s.refreshCache(ctx, userID, tree)

	return tree, nil
}

// ResumeActiveWorkout rehydrates the user's unfinished workout into the
// in-memory tree. The cached snapshot is tried first; on a miss the tree is
// rebuilt from primary storage, exercises ordered by creation time, sets by
// set_number. Returns ErrNoActiveWorkout when there is nothing to resume.
func (s *WorkoutService) ResumeActiveWorkout(ctx context.Context, userID string) (*domain.WorkoutWithExercises, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if aw, ok := s.active[userID]; ok {
		return aw.tree, nil
	}

	if s.cache != nil {
		cached, err := s.cache.GetActiveWorkout(ctx, userID)
		if err != nil {
			log.Printf("Warning: failed to read workout cache: %v", err)
		} else if cached != nil && cached.Active() {
			s.active[userID] = &activeWorkout{tree: cached}
			return cached, nil
		}
	}

	workout, err := s.workoutRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.ListByWorkout(ctx, workout.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises: %w", err)
	}

	tree := &domain.WorkoutWithExercises{
		Workout:   *workout,
		Exercises: make([]*domain.ExerciseWithSets, 0, len(exercises)),
	}
	for _, ex := range exercises {
		sets, err := s.setRepo.ListByExercise(ctx, ex.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load sets for exercise %s: %w", ex.ID, err)
		}
		if sets == nil {
			sets = []*domain.Set{}
		}
		tree.Exercises = append(tree.Exercises, &domain.ExerciseWithSets{
			Exercise: *ex,
			Sets:     sets,
		})
	}

	s.active[userID] = &activeWorkout{tree: tree}
	s.refreshCache(ctx, userID, tree)

	return tree, nil
}

// ConfirmExercise persists a new exercise on the active workout and makes it
// the current exercise
func (s *WorkoutService) ConfirmExercise(ctx context.Context, userID, name, equipment, muscleGroup, photoURL string, identifiedByAI bool) (*domain.ExerciseWithSets, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	aw, ok := s.active[userID]
	if !ok {
		return nil, domain.ErrNoActiveWorkout
	}

	exercise := &domain.Exercise{
		WorkoutID:      aw.tree.ID,
		Name:           name,
		Equipment:      equipment,
		MuscleGroup:    muscleGroup,
		PhotoURL:       photoURL,
		IdentifiedByAI: identifiedByAI,
	}
	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, err
	}

	withSets := &domain.ExerciseWithSets{
		Exercise: *exercise,
		Sets:     []*domain.Set{},
	}
	aw.tree.Exercises = append(aw.tree.Exercises, withSets)
	aw.current = withSets
	s.refreshCache(ctx, userID, aw.tree)

	return withSets, nil
}

// AddSet validates input, assigns the next set number from the in-memory
// count, persists the set and appends it to the current exercise. The
// exercise id must match the current exercise being edited.
func (s *WorkoutService) AddSet(ctx context.Context, userID, exerciseID string, weight float64, reps int, unit domain.WeightUnit, rpe *float64, notes string) (*domain.Set, error) {
	if err := domain.ValidateSetInput(weight, reps, unit, rpe); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	aw, ok := s.active[userID]
	if !ok {
		return nil, domain.ErrNoActiveWorkout
	}
	if aw.current == nil || aw.current.ID != exerciseID {
		return nil, domain.ErrExerciseNotFound
	}

	set := &domain.Set{
		ExerciseID: aw.current.ID,
		SetNumber:  len(aw.current.Sets) + 1,
		Weight:     weight,
		Reps:       reps,
		WeightUnit: unit,
		RPE:        rpe,
		Notes:      notes,
	}
	if err := s.setRepo.Create(ctx, set); err != nil {
		return nil, err
	}

	aw.current.Sets = append(aw.current.Sets, set)
	s.refreshCache(ctx, userID, aw.tree)

	return set, nil
}

// DeleteSet removes one set by identity from storage and from the current
// exercise. Surviving sets keep their set numbers; the sequence stays sparse.
func (s *WorkoutService) DeleteSet(ctx context.Context, userID, setID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, ok := s.active[userID]
	if !ok {
		return domain.ErrNoActiveWorkout
	}
	if aw.current == nil {
		return domain.ErrSetNotFound
	}

	found := false
	for _, set := range aw.current.Sets {
		if set.ID == setID {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrSetNotFound
	}

	if err := s.setRepo.Delete(ctx, setID); err != nil {
		return err
	}

	kept := aw.current.Sets[:0]
	for _, set := range aw.current.Sets {
		if set.ID != setID {
			kept = append(kept, set)
		}
	}
	aw.current.Sets = kept
	s.refreshCache(ctx, userID, aw.tree)

	return nil
}

// FinishExercise clears the current exercise so the next capture starts a
// fresh one
func (s *WorkoutService) FinishExercise(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if aw, ok := s.active[userID]; ok {
		aw.current = nil
	}
}

// EndWorkout persists the end timestamp, with the optional session notes,
// and clears all in-memory state for the user
func (s *WorkoutService) EndWorkout(ctx context.Context, userID, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, ok := s.active[userID]
	if !ok {
		return domain.ErrNoActiveWorkout
	}

	if notes != "" {
		if err := s.workoutRepo.AppendNotes(ctx, aw.tree.ID, notes); err != nil {
			return err
		}
		aw.tree.Notes = notes
	}

	if err := s.workoutRepo.End(ctx, aw.tree.ID, time.Now()); err != nil {
		return err
	}

	delete(s.active, userID)
	if s.cache != nil {
		if err := s.cache.InvalidateActiveWorkout(ctx, userID); err != nil {
			log.Printf("Warning: failed to invalidate workout cache: %v", err)
		}
	}
	return nil
}

// Active returns the user's in-memory tree and current exercise, or nil
// when no workout is active in this process
func (s *WorkoutService) Active(userID string) (*domain.WorkoutWithExercises, *domain.ExerciseWithSets) {
	s.mu.Lock()
	defer s.mu.Unlock()

	aw, ok := s.active[userID]
	if !ok {
		return nil, nil
	}
	return aw.tree, aw.current
}

// GetWorkout loads one finished or active workout with its full tree
// straight from storage (history view)
func (s *WorkoutService) GetWorkout(ctx context.Context, userID, workoutID string) (*domain.WorkoutWithExercises, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.UserID != userID {
		return nil, domain.ErrForbidden
	}

	exercises, err := s.exerciseRepo.ListByWorkout(ctx, workout.ID)
	if err != nil {
		return nil, err
	}

	tree := &domain.WorkoutWithExercises{
		Workout:   *workout,
		Exercises: make([]*domain.ExerciseWithSets, 0, len(exercises)),
	}
	for _, ex := range exercises {
		sets, err := s.setRepo.ListByExercise(ctx, ex.ID)
		if err != nil {
			return nil, err
		}
		if sets == nil {
			sets = []*domain.Set{}
		}
		tree.Exercises = append(tree.Exercises, &domain.ExerciseWithSets{Exercise: *ex, Sets: sets})
	}
	return tree, nil
}

// ListWorkouts returns the user's workout history, most recent first
func (s *WorkoutService) ListWorkouts(ctx context.Context, userID string, limit int64) ([]*domain.Workout, error) {
	return s.workoutRepo.ListByUser(ctx, userID, limit)
}

// refreshCache mirrors the tree into the snapshot cache. Cache failures are
// logged and never fail the mutation that triggered them.
func (s *WorkoutService) refreshCache(ctx context.Context, userID string, tree *domain.WorkoutWithExercises) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetActiveWorkout(ctx, userID, tree, activeWorkoutCacheTTL); err != nil {
		log.Printf("Warning: failed to cache active workout: %v", err)
	}
}
