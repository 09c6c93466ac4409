package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/prooflens/prooflens/internal/core"
)

func testDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

func sampleVerification() *core.Verification {
	return &core.Verification{
		ID:     uuid.New().String(),
		Status: core.StatusVerified,
		Task: core.TaskDescriptor{
			Title:    "Clean my desk",
			Notes:    "remove the papers",
			Category: core.CategoryHome,
			Priority: core.PriorityMedium,
		},
		Completed:       true,
		Confidence:      0.59,
		Feedback:        "Great job! The area looks clean and organized.",
		MatchedElements: []string{"clean surface", "desk"},
		Features: &core.ImageFeatures{
			DetectedObjects: []string{"desk", "empty surface"},
			SceneLabels:     []string{"clean surface"},
			Complexity:      0.15,
			Brightness:      0.8,
		},
		ImageHash: "abc123",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// =============================================================================
// Migration Tests
// =============================================================================

func TestMigrate_Idempotent(t *testing.T) {
	db := testDB(t)

	// second run applies nothing and must not fail
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}
}

// =============================================================================
// VerificationStore Tests
// =============================================================================

func TestVerificationStore_CreateAndGet(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	v := sampleVerification()
	if err := store.Create(v); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.GetByID(v.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	if got.Status != core.StatusVerified {
		t.Errorf("Status = %v, want %v", got.Status, core.StatusVerified)
	}
	if got.Task.Title != v.Task.Title {
		t.Errorf("Task.Title = %q, want %q", got.Task.Title, v.Task.Title)
	}
	if got.Confidence != v.Confidence {
		t.Errorf("Confidence = %v, want %v", got.Confidence, v.Confidence)
	}
	if len(got.MatchedElements) != 2 || got.MatchedElements[0] != "clean surface" {
		t.Errorf("MatchedElements = %v, want %v", got.MatchedElements, v.MatchedElements)
	}
	if got.Features == nil || got.Features.Complexity != 0.15 {
		t.Errorf("Features = %+v, want round-tripped features", got.Features)
	}
}

func TestVerificationStore_GetMissing(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	_, err := store.GetByID("nope")
	if !errors.Is(err, core.ErrVerificationNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrVerificationNotFound", err)
	}
}

func TestVerificationStore_CreateWithoutFeatures(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	v := sampleVerification()
	v.Features = nil
	if err := store.Create(v); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.GetByID(v.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Features != nil {
		t.Errorf("Features = %+v, want nil", got.Features)
	}
}

func TestVerificationStore_ListNewestFirst(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		v := sampleVerification()
		v.Task.Title = fmt.Sprintf("task %d", i)
		v.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.Create(v); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, err := store.List(10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
	if list[0].Task.Title != "task 2" {
		t.Errorf("list[0].Task.Title = %q, want newest first", list[0].Task.Title)
	}
}

func TestVerificationStore_ListLimit(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	for i := 0; i < 5; i++ {
		if err := store.Create(sampleVerification()); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, err := store.List(2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("len(list) = %d, want 2", len(list))
	}
}

func TestVerificationStore_ListByCategory(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	home := sampleVerification()
	if err := store.Create(home); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	gym := sampleVerification()
	gym.Task.Category = core.CategoryExercise
	if err := store.Create(gym); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	list, err := store.ListByCategory(core.CategoryExercise, 10)
	if err != nil {
		t.Fatalf("ListByCategory() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}
	if list[0].Task.Category != core.CategoryExercise {
		t.Errorf("Category = %v, want exercise", list[0].Task.Category)
	}
}

func TestVerificationStore_Stats(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	verified := sampleVerification()
	if err := store.Create(verified); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	failed := sampleVerification()
	failed.Status = core.StatusNotVerified
	failed.Completed = false
	failed.Confidence = 0.1
	if err := store.Create(failed); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}

	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.Verified != 1 || stats.NotVerified != 1 {
		t.Errorf("Verified = %d NotVerified = %d, want 1 and 1", stats.Verified, stats.NotVerified)
	}
	wantAvg := (0.59 + 0.1) / 2
	if diff := stats.AvgConfidence - wantAvg; diff > 0.001 || diff < -0.001 {
		t.Errorf("AvgConfidence = %v, want %v", stats.AvgConfidence, wantAvg)
	}
}

func TestVerificationStore_StatsEmpty(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	stats, err := store.GetStats()
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.Total != 0 || stats.AvgConfidence != 0 {
		t.Errorf("stats = %+v, want zeros on empty table", stats)
	}
}

func TestVerificationStore_Delete(t *testing.T) {
	store := NewVerificationStore(testDB(t))

	v := sampleVerification()
	if err := store.Create(v); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := store.Delete(v.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.GetByID(v.ID); !errors.Is(err, core.ErrVerificationNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrVerificationNotFound", err)
	}
	if err := store.Delete(v.ID); !errors.Is(err, core.ErrVerificationNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrVerificationNotFound", err)
	}
}
