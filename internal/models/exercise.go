package models

import (
	"encoding/json"
	"fmt"
)

// Difficulty is the coarse skill level of an exercise.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// ParseDifficulty converts a stored label into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
	return d, nil
}

// Exercise is a static catalog entry. Exercises are selected, never created,
// by the user.
type Exercise struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Icon              string     `json:"icon"`
	TargetMuscles     []string   `json:"target_muscles"`
	Difficulty        Difficulty `json:"difficulty"`
	CaloriesPerMinute float64    `json:"calories_per_minute"`
}

// Clone returns a copy that shares no slices with e.
func (e Exercise) Clone() Exercise {
	c := e
	c.TargetMuscles = append([]string(nil), e.TargetMuscles...)
	return c
}

// MarshalMuscles encodes target muscles for text columns (SQLite).
func MarshalMuscles(muscles []string) (string, error) {
	if muscles == nil {
		muscles = []string{}
	}
	b, err := json.Marshal(muscles)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// UnmarshalMuscles is the inverse of MarshalMuscles.
func UnmarshalMuscles(s string) ([]string, error) {
	var muscles []string
	if s == "" {
		return muscles, nil
	}
	if err := json.Unmarshal([]byte(s), &muscles); err != nil {
		return nil, fmt.Errorf("decoding target muscles: %w", err)
	}
	return muscles, nil
}
