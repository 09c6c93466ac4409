package match

import (
	"strings"
	"testing"

	"github.com/prooflens/prooflens/internal/core"
)

// deskTaskContext mirrors what the resolver produces for "Clean my desk"
// with category home.
func deskTaskContext() core.TaskContext {
	return core.TaskContext{
		Kind: core.KindCleaning,
		Keywords: map[string]bool{
			"clean": true, "desk": true,
		},
		ExpectedObjects: map[string]bool{
			"surface": true, "furniture": true, "cleaning supplies": true,
			"desk": true, "table": true, "empty surface": true, "organized items": true,
		},
		ExpectedScenes: map[string]bool{
			"room": true, "kitchen": true, "living room": true, "clean surface": true,
			"workspace": true, "office": true, "tidy environment": true, "organized space": true,
		},
		IsRemovalTask: true,
		ItemsToRemove: []string{"items", "clutter", "stuff", "objects", "things"},
	}
}

func runTaskContext() core.TaskContext {
	return core.TaskContext{
		Kind:     core.KindExercise,
		Keywords: map[string]bool{"run": true},
		ExpectedObjects: map[string]bool{
			"person": true, "sneakers": true, "equipment": true, "mat": true, "road": true,
		},
		ExpectedScenes: map[string]bool{
			"gym": true, "outdoors": true, "fitness center": true, "park": true,
			"street": true, "treadmill": true,
		},
		IsExerciseTask: true,
		ExerciseTypes:  []string{"run"},
	}
}

// =============================================================================
// Removal Strategy Tests
// =============================================================================

func TestMatch_CleanDeskScenario(t *testing.T) {
	m := NewMatcher()

	features := &core.ImageFeatures{
		DetectedObjects: []string{"desk", "empty surface"},
		SceneLabels:     []string{"clean surface", "tidy environment"},
		Complexity:      0.15,
	}

	result := m.Match(deskTaskContext(), features)

	if !result.IsCompleted {
		t.Error("IsCompleted = false, want true for clean desk photo")
	}
	if result.Confidence <= 0.3 {
		t.Errorf("Confidence = %v, want > 0.3", result.Confidence)
	}
	if len(result.MatchedElements) == 0 {
		t.Error("MatchedElements is empty, want evidence entries")
	}
}

func TestMatch_ClutteredDeskScenario(t *testing.T) {
	m := NewMatcher()

	features := &core.ImageFeatures{
		DetectedObjects: []string{"paper", "book", "pen", "mug", "laptop"},
		SceneLabels:     []string{"cluttered space"},
		Complexity:      0.85,
	}

	result := m.Match(deskTaskContext(), features)

	if result.IsCompleted {
		t.Error("IsCompleted = true, want false for cluttered desk photo")
	}

	// remaining items are recorded so feedback can name them
	stillPresent := 0
	for _, el := range result.MatchedElements {
		if strings.HasSuffix(el, "still present") {
			stillPresent++
		}
	}
	if stillPresent < 3 {
		t.Errorf("MatchedElements = %v, want desk items recorded as still present", result.MatchedElements)
	}
	if !strings.HasSuffix(result.MatchedElements[0], "still present") {
		t.Errorf("MatchedElements[0] = %q, want a still-present entry first", result.MatchedElements[0])
	}
}

func TestMatch_RemovalRecordsRemovedItems(t *testing.T) {
	m := NewMatcher()

	features := &core.ImageFeatures{
		DetectedObjects: []string{"desk"},
		SceneLabels:     []string{"clean surface"},
		Complexity:      0.1,
	}

	result := m.Match(deskTaskContext(), features)

	found := false
	for _, el := range result.MatchedElements {
		if el == "clutter removed" {
			found = true
		}
	}
	if !found {
		t.Errorf("MatchedElements = %v, want removed-item entries", result.MatchedElements)
	}
}

// =============================================================================
// Exercise Strategy Tests
// =============================================================================

func TestMatch_GymScenario(t *testing.T) {
	m := NewMatcher()

	withObjects := &core.ImageFeatures{
		DetectedObjects: []string{"treadmill", "person"},
		SceneLabels:     []string{"gym", "fitness center"},
	}
	withoutObjects := &core.ImageFeatures{
		SceneLabels: []string{"gym", "fitness center"},
	}

	full := m.Match(runTaskContext(), withObjects)
	bare := m.Match(runTaskContext(), withoutObjects)

	if full.Confidence <= bare.Confidence {
		t.Errorf("Confidence with objects = %v, without = %v; want strictly greater",
			full.Confidence, bare.Confidence)
	}

	// gym scene and person indicator are both recorded
	if !containsElement(full.MatchedElements, "gym") {
		t.Errorf("MatchedElements = %v, want gym scene", full.MatchedElements)
	}
	if !containsElement(full.MatchedElements, "person") {
		t.Errorf("MatchedElements = %v, want person", full.MatchedElements)
	}
}

func TestMatch_ExerciseEquipmentIndicators(t *testing.T) {
	m := NewMatcher()

	ctx := runTaskContext()
	features := &core.ImageFeatures{
		DetectedObjects: []string{"treadmill", "dumbbell", "bench"},
		SceneLabels:     []string{"gym"},
	}

	result := m.Match(ctx, features)

	for _, want := range []string{"treadmill", "dumbbell", "bench"} {
		if !containsElement(result.MatchedElements, want) {
			t.Errorf("MatchedElements = %v, want equipment indicator %q", result.MatchedElements, want)
		}
	}
}

// =============================================================================
// Standard Strategy Tests
// =============================================================================

func TestMatch_StandardKeywordMatch(t *testing.T) {
	m := NewMatcher()

	ctx := core.TaskContext{
		Kind:            core.KindGeneral,
		Keywords:        map[string]bool{"plants": true, "water": true},
		ExpectedObjects: map[string]bool{},
		ExpectedScenes:  map[string]bool{},
	}
	features := &core.ImageFeatures{
		DetectedObjects: []string{"plants", "watering can"},
	}

	result := m.Match(ctx, features)

	// 2 keyword hits over 2 expectation slots
	if !result.IsCompleted {
		t.Error("IsCompleted = false, want true")
	}
	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", result.Confidence)
	}
}

func TestMatch_EmptyFeaturesZeroConfidence(t *testing.T) {
	m := NewMatcher()

	ctx := core.TaskContext{
		Kind:            core.KindGeneral,
		Keywords:        map[string]bool{"plants": true},
		ExpectedObjects: map[string]bool{},
		ExpectedScenes:  map[string]bool{},
	}

	result := m.Match(ctx, &core.ImageFeatures{})

	if result.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0 for empty features", result.Confidence)
	}
	if result.IsCompleted {
		t.Error("IsCompleted = true, want false")
	}
}

func TestMatch_EmptyContextNoDivideByZero(t *testing.T) {
	m := NewMatcher()

	ctx := core.TaskContext{
		Kind:            core.KindGeneral,
		Keywords:        map[string]bool{},
		ExpectedObjects: map[string]bool{},
		ExpectedScenes:  map[string]bool{},
	}

	result := m.Match(ctx, &core.ImageFeatures{DetectedObjects: []string{"thing"}})

	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("Confidence = %v, want within [0,1]", result.Confidence)
	}
}

// =============================================================================
// Invariant Tests
// =============================================================================

func TestMatch_ThresholdInvariant(t *testing.T) {
	m := NewMatcher()

	contexts := []core.TaskContext{deskTaskContext(), runTaskContext(), {
		Kind:            core.KindGeneral,
		Keywords:        map[string]bool{"thing": true},
		ExpectedObjects: map[string]bool{},
		ExpectedScenes:  map[string]bool{},
	}}
	featureSets := []*core.ImageFeatures{
		{},
		{DetectedObjects: []string{"desk", "thing"}, SceneLabels: []string{"gym"}, Complexity: 0.2},
		{DetectedObjects: []string{"paper", "mug"}, SceneLabels: []string{"cluttered space"}, Complexity: 0.9},
	}

	for _, ctx := range contexts {
		for _, features := range featureSets {
			result := m.Match(ctx, features)
			if result.IsCompleted != (result.Confidence > CompletionThreshold) {
				t.Errorf("IsCompleted = %v inconsistent with Confidence = %v",
					result.IsCompleted, result.Confidence)
			}
			if result.Confidence < 0 || result.Confidence > 1 {
				t.Errorf("Confidence = %v out of [0,1]", result.Confidence)
			}
		}
	}
}

// =============================================================================
// Fuzzy Matching Tests
// =============================================================================

func TestWordsMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"exercising", "exercise", true}, // substring
		{"gym", "gym", true},             // exact
		{"xyz", "exercise", false},       // distance exceeds threshold
		{"desk", "dask", true},           // one edit within range
		{"cup", "map", false},            // two edits exceed range
		{"treadmill", "treadmil", true},  // substring either direction
		{"", "desk", false},
	}
	for _, tt := range tests {
		if got := WordsMatch(tt.a, tt.b); got != tt.want {
			t.Errorf("WordsMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func containsElement(elements []string, want string) bool {
	for _, el := range elements {
		if el == want {
			return true
		}
	}
	return false
}
