package vocabulary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedGroup is one built-in muscle group with its starter exercises.
type SeedGroup struct {
	Name      string   `yaml:"name"`
	Exercises []string `yaml:"exercises"`
}

// Seed is the fixed vocabulary offered before any history exists.
type Seed struct {
	MuscleGroups []SeedGroup `yaml:"muscle_groups"`
}

// DefaultSeed mirrors the keyboard the bot has always shipped with.
func DefaultSeed() Seed {
	return Seed{MuscleGroups: []SeedGroup{
		{Name: "Chest", Exercises: []string{"Bench Press", "Hammer Press", "Dips"}},
		{Name: "Back", Exercises: []string{"Lat Pulldown", "Behind-the-Neck Pulldown", "Deadlift"}},
		{Name: "Triceps", Exercises: []string{"Dips", "Overhead Extension"}},
		{Name: "Shoulders", Exercises: []string{"Lateral Raise", "Front Raise"}},
		{Name: "Biceps", Exercises: []string{"Barbell Curl", "Hammer Curl"}},
		{Name: "Legs", Exercises: []string{"Squat", "Machine Squat", "Leg Extension", "Leg Curl"}},
		{Name: "Calves", Exercises: []string{"Seated Calf Raise"}},
	}}
}

// LoadSeed reads a YAML seed file. An empty path yields DefaultSeed.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read vocabulary file: %w", err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse vocabulary file %s: %w", path, err)
	}
	if len(seed.MuscleGroups) == 0 {
		return Seed{}, fmt.Errorf("vocabulary file %s defines no muscle groups", path)
	}
	return seed, nil
}
