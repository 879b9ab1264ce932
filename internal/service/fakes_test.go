package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gymsnap/gymsnap/internal/domain"
)

// In-memory repository fakes used by the service tests. They honor the same
// ordering contracts as the Mongo implementations.

type fakeWorkoutRepo struct {
	mu       sync.Mutex
	seq      int
	workouts map[string]*domain.Workout
}

func newFakeWorkoutRepo() *fakeWorkoutRepo {
	return &fakeWorkoutRepo{workouts: make(map[string]*domain.Workout)}
}

func (r *fakeWorkoutRepo) Create(ctx context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.workouts {
		if w.UserID == workout.UserID && w.EndedAt == nil {
			return domain.ErrWorkoutInProgress
		}
	}

	r.seq++
	workout.ID = fmt.Sprintf("workout-%d", r.seq)
	workout.CreatedAt = time.Now()
	cp := *workout
	r.workouts[workout.ID] = &cp
	return nil
}

func (r *fakeWorkoutRepo) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkoutRepo) GetActiveByUser(ctx context.Context, userID string) (*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, w := range r.workouts {
		if w.UserID == userID && w.EndedAt == nil {
			cp := *w
			return &cp, nil
		}
	}
	return nil, domain.ErrNoActiveWorkout
}

func (r *fakeWorkoutRepo) End(ctx context.Context, id string, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok {
		return domain.ErrWorkoutNotFound
	}
	w.EndedAt = &endedAt
	return nil
}

func (r *fakeWorkoutRepo) AppendNotes(ctx context.Context, id string, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok {
		return domain.ErrWorkoutNotFound
	}
	w.Notes = notes
	return nil
}

func (r *fakeWorkoutRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Workout
	for _, w := range r.workouts {
		if w.UserID == userID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeExerciseRepo struct {
	mu        sync.Mutex
	seq       int
	exercises []*domain.Exercise
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{}
}

func (r *fakeExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	exercise.ID = fmt.Sprintf("exercise-%d", r.seq)
	exercise.CreatedAt = time.Now()
	cp := *exercise
	r.exercises = append(r.exercises, &cp)
	return nil
}

func (r *fakeExerciseRepo) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ex := range r.exercises {
		if ex.ID == id {
			cp := *ex
			return &cp, nil
		}
	}
	return nil, domain.ErrExerciseNotFound
}

func (r *fakeExerciseRepo) ListByWorkout(ctx context.Context, workoutID string) ([]*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// insertion order doubles as created_at ascending
	var out []*domain.Exercise
	for _, ex := range r.exercises {
		if ex.WorkoutID == workoutID {
			cp := *ex
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSetRepo struct {
	mu   sync.Mutex
	seq  int
	sets []*domain.Set

	failCreate error
}

func newFakeSetRepo() *fakeSetRepo {
	return &fakeSetRepo{}
}

func (r *fakeSetRepo) Create(ctx context.Context, set *domain.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate != nil {
		return r.failCreate
	}

	r.seq++
	set.ID = fmt.Sprintf("set-%d", r.seq)
	set.CreatedAt = time.Now()
	cp := *set
	r.sets = append(r.sets, &cp)
	return nil
}

func (r *fakeSetRepo) GetByID(ctx context.Context, id string) (*domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sets {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrSetNotFound
}

func (r *fakeSetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.sets {
		if s.ID == id {
			r.sets = append(r.sets[:i], r.sets[i+1:]...)
			return nil
		}
	}
	return domain.ErrSetNotFound
}

func (r *fakeSetRepo) ListByExercise(ctx context.Context, exerciseID string) ([]*domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Set
	for _, s := range r.sets {
		if s.ExerciseID == exerciseID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

// fakeIdentifier returns a canned result or error
type fakeIdentifier struct {
	mu     sync.Mutex
	result *domain.Identification
	err    error
	calls  int
}

func (f *fakeIdentifier) Identify(ctx context.Context, imageBase64, mediaType string) (*domain.Identification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.result
	return &cp, nil
}

// blockingIdentifier parks every call until release is closed, so tests can
// hold an identification in flight
type blockingIdentifier struct {
	mu      sync.Mutex
	calls   int
	result  *domain.Identification
	release chan struct{}
}

func (f *blockingIdentifier) Identify(ctx context.Context, imageBase64, mediaType string) (*domain.Identification, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	<-f.release
	cp := *f.result
	return &cp, nil
}

func (f *blockingIdentifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// blockingFiles signals when an upload begins and parks it until released
type blockingFiles struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingFiles) Upload(ctx context.Context, file []byte, filename, contentType string) (string, error) {
	close(f.started)
	<-f.release
	return "http://blob.test/" + filename, nil
}
