package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func rpe(v float64) *float64 { return &v }

func TestValidateSetInput(t *testing.T) {
	cases := []struct {
		name   string
		weight float64
		reps   int
		unit   WeightUnit
		rpe    *float64
		ok     bool
	}{
		{"minimal valid", 0.5, 1, WeightKg, nil, true},
		{"lbs valid", 225, 5, WeightLbs, nil, true},
		{"rpe lower bound", 100, 5, WeightKg, rpe(1), true},
		{"rpe upper bound", 100, 5, WeightKg, rpe(10), true},
		{"rpe half step", 100, 5, WeightKg, rpe(8.5), true},
		{"zero weight", 0, 5, WeightKg, nil, false},
		{"negative weight", -1, 5, WeightKg, nil, false},
		{"nan weight", math.NaN(), 5, WeightKg, nil, false},
		{"inf weight", math.Inf(1), 5, WeightKg, nil, false},
		{"zero reps", 100, 0, WeightKg, nil, false},
		{"negative reps", 100, -3, WeightKg, nil, false},
		{"unknown unit", 100, 5, "pood", nil, false},
		{"empty unit", 100, 5, "", nil, false},
		{"rpe below one", 100, 5, WeightKg, rpe(0.5), false},
		{"rpe above ten", 100, 5, WeightKg, rpe(10.5), false},
		{"rpe quarter step", 100, 5, WeightKg, rpe(7.25), false},
		{"rpe nan", 100, 5, WeightKg, rpe(math.NaN()), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSetInput(tc.weight, tc.reps, tc.unit, tc.rpe)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsValidation(err), "expected validation error, got %v", err)
			}
		})
	}
}

func TestWorkoutActive(t *testing.T) {
	w := &Workout{}
	assert.True(t, w.Active())

	now := w.StartedAt
	w.EndedAt = &now
	assert.False(t, w.Active())
}
