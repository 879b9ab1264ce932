// Package catalog holds the built-in exercise reference list used to seed
// the catalog collection and as the in-process fallback for manual
// correction when the catalog has not been seeded yet.
package catalog

import (
	"strings"

	"github.com/gymsnap/gymsnap/internal/domain"
)

// Builtin is the static (name, equipment, muscle group) reference list
var Builtin = []domain.CatalogExercise{
	// Chest
	{Name: "Bench Press", Equipment: "Barbell", MuscleGroup: "Chest"},
	{Name: "Incline Bench Press", Equipment: "Barbell", MuscleGroup: "Chest"},
	{Name: "Dumbbell Press", Equipment: "Dumbbell", MuscleGroup: "Chest"},
	{Name: "Chest Fly", Equipment: "Cable Machine", MuscleGroup: "Chest"},
	{Name: "Push-ups", Equipment: "Bodyweight", MuscleGroup: "Chest"},

	// Back
	{Name: "Lat Pulldown", Equipment: "Cable Machine", MuscleGroup: "Back"},
	{Name: "Pull-ups", Equipment: "Bodyweight", MuscleGroup: "Back"},
	{Name: "Barbell Row", Equipment: "Barbell", MuscleGroup: "Back"},
	{Name: "Dumbbell Row", Equipment: "Dumbbell", MuscleGroup: "Back"},
	{Name: "Seated Cable Row", Equipment: "Cable Machine", MuscleGroup: "Back"},
	{Name: "Deadlift", Equipment: "Barbell", MuscleGroup: "Back"},

	// Legs
	{Name: "Squat", Equipment: "Barbell", MuscleGroup: "Legs"},
	{Name: "Leg Press", Equipment: "Machine", MuscleGroup: "Legs"},
	{Name: "Leg Extension", Equipment: "Machine", MuscleGroup: "Legs"},
	{Name: "Leg Curl", Equipment: "Machine", MuscleGroup: "Legs"},
	{Name: "Lunges", Equipment: "Dumbbell", MuscleGroup: "Legs"},
	{Name: "Calf Raise", Equipment: "Machine", MuscleGroup: "Legs"},

	// Shoulders
	{Name: "Overhead Press", Equipment: "Barbell", MuscleGroup: "Shoulders"},
	{Name: "Dumbbell Shoulder Press", Equipment: "Dumbbell", MuscleGroup: "Shoulders"},
	{Name: "Lateral Raise", Equipment: "Dumbbell", MuscleGroup: "Shoulders"},
	{Name: "Front Raise", Equipment: "Dumbbell", MuscleGroup: "Shoulders"},
	{Name: "Face Pull", Equipment: "Cable Machine", MuscleGroup: "Shoulders"},

	// Arms
	{Name: "Bicep Curl", Equipment: "Dumbbell", MuscleGroup: "Arms"},
	{Name: "Hammer Curl", Equipment: "Dumbbell", MuscleGroup: "Arms"},
	{Name: "Tricep Extension", Equipment: "Cable Machine", MuscleGroup: "Arms"},
	{Name: "Tricep Dips", Equipment: "Bodyweight", MuscleGroup: "Arms"},
	{Name: "Cable Curl", Equipment: "Cable Machine", MuscleGroup: "Arms"},

	// Core
	{Name: "Plank", Equipment: "Bodyweight", MuscleGroup: "Core"},
	{Name: "Crunches", Equipment: "Bodyweight", MuscleGroup: "Core"},
	{Name: "Russian Twist", Equipment: "Bodyweight", MuscleGroup: "Core"},
	{Name: "Cable Crunch", Equipment: "Cable Machine", MuscleGroup: "Core"},
	{Name: "Leg Raises", Equipment: "Bodyweight", MuscleGroup: "Core"},
}

// FindByName returns the builtin entry with the given name (case-insensitive),
// or nil if there is none
func FindByName(name string) *domain.CatalogExercise {
	for i := range Builtin {
		if strings.EqualFold(Builtin[i].Name, name) {
			return &Builtin[i]
		}
	}
	return nil
}
