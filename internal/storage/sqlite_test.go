package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/models"
)

func openTestCatalog(t *testing.T, dir string) *SQLiteCatalog {
	t.Helper()
	c, err := OpenSQLite(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

// TestSQLiteCatalogSeed verifies a fresh database holds the built-in catalog
// in display order.
func TestSQLiteCatalogSeed(t *testing.T) {
	c := openTestCatalog(t, t.TempDir())

	got, err := c.ListExercises(context.Background())
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	want := catalog.Exercises()
	if len(got) != len(want) {
		t.Fatalf("got %d exercises, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, want[i].ID)
		}
	}

	sq := got[0]
	if sq.Name != "Squats" || sq.Difficulty != models.Beginner || sq.CaloriesPerMinute != 8 {
		t.Errorf("unexpected squats row: %+v", sq)
	}
	if len(sq.TargetMuscles) != 3 || sq.TargetMuscles[2] != "Hamstrings" {
		t.Errorf("target muscles = %v", sq.TargetMuscles)
	}
}

func TestSQLiteCatalogGetExercise(t *testing.T) {
	c := openTestCatalog(t, t.TempDir())

	e, err := c.GetExercise(context.Background(), "jumping-jacks")
	if err != nil {
		t.Fatalf("GetExercise: %v", err)
	}
	if e.CaloriesPerMinute != 10 {
		t.Errorf("calories per minute = %v, want 10", e.CaloriesPerMinute)
	}

	_, err = c.GetExercise(context.Background(), "burpees")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestSQLiteCatalogKeepsEdits verifies that reopening does not overwrite
// rows changed locally.
func TestSQLiteCatalogKeepsEdits(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	c, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	edited := catalog.Exercises()[1]
	edited.CaloriesPerMinute = 6.5
	if err := c.Upsert(ctx, 2, edited); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	burpees := models.Exercise{
		ID:                "burpees",
		Name:              "Burpees",
		Difficulty:        models.Advanced,
		CaloriesPerMinute: 12,
	}
	if err := c.Upsert(ctx, 5, burpees); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	c.Close()

	c = openTestCatalog(t, dir)
	got, err := c.GetExercise(ctx, "pushups")
	if err != nil {
		t.Fatalf("GetExercise: %v", err)
	}
	if got.CaloriesPerMinute != 6.5 {
		t.Errorf("calories per minute = %v, want 6.5", got.CaloriesPerMinute)
	}

	all, err := c.ListExercises(ctx)
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(all) != 5 || all[4].ID != "burpees" {
		t.Errorf("expected burpees last of 5, got %d rows", len(all))
	}
	if all[4].TargetMuscles == nil || len(all[4].TargetMuscles) != 0 {
		t.Errorf("nil muscles should round-trip as empty, got %#v", all[4].TargetMuscles)
	}
}

func TestSQLiteCatalogRejectsBadDifficulty(t *testing.T) {
	c := openTestCatalog(t, t.TempDir())
	err := c.Upsert(context.Background(), 9, models.Exercise{ID: "x", Name: "X", Difficulty: "Expert"})
	if err == nil {
		t.Fatal("expected error for unknown difficulty")
	}
}
