// Package core defines the fundamental types for prooflens.
// Everything the verification pipeline consumes or produces lives here.
package core

import (
	"time"
)

// -----------------------------------------------------------------------------
// TASK - The unit of work being verified
// -----------------------------------------------------------------------------

// TaskCategory is the closed set of task categories. Upstream always supplies
// one of these values; there is no "unknown" category.
type TaskCategory string

const (
	CategoryExercise TaskCategory = "exercise"
	CategoryStudy    TaskCategory = "study"
	CategoryWork     TaskCategory = "work"
	CategoryHealth   TaskCategory = "health"
	CategoryTravel   TaskCategory = "travel"
	CategoryShopping TaskCategory = "shopping"
	CategoryHome     TaskCategory = "home"
	CategoryOther    TaskCategory = "other"
)

// Categories lists every valid TaskCategory.
var Categories = []TaskCategory{
	CategoryExercise, CategoryStudy, CategoryWork, CategoryHealth,
	CategoryTravel, CategoryShopping, CategoryHome, CategoryOther,
}

// Priority of a task, as set by the user upstream.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TaskDescriptor is the read-only snapshot of a task the pipeline verifies.
type TaskDescriptor struct {
	Title    string       `json:"title"`
	Notes    string       `json:"notes"`
	Category TaskCategory `json:"category"`
	Priority Priority     `json:"priority"`
}

// -----------------------------------------------------------------------------
// LEXICAL PROFILE - What the task text says
// -----------------------------------------------------------------------------

// Difficulty is the estimated effort of a task.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// EntityCategory buckets named entities extracted from task text.
type EntityCategory string

const (
	EntityPersons       EntityCategory = "persons"
	EntityLocations     EntityCategory = "locations"
	EntityOrganizations EntityCategory = "organizations"
	EntityOther         EntityCategory = "other"
)

// LexicalProfile is the cached lexical analysis of one task's text.
type LexicalProfile struct {
	TitleKeywords map[string]bool             `json:"title_keywords"`
	NotesKeywords map[string]bool             `json:"notes_keywords"`
	AllKeywords   map[string]bool             `json:"all_keywords"`
	Entities      map[EntityCategory][]string `json:"entities"`
	ActionVerbs   []string                    `json:"action_verbs"`
	Difficulty    Difficulty                  `json:"difficulty"`
}

// KeywordList returns AllKeywords as a slice (order unspecified).
func (p *LexicalProfile) KeywordList() []string {
	out := make([]string, 0, len(p.AllKeywords))
	for k := range p.AllKeywords {
		out = append(out, k)
	}
	return out
}

// -----------------------------------------------------------------------------
// TASK CONTEXT - What the photo is expected to show
// -----------------------------------------------------------------------------

// TaskKind selects the matching strategy for a task.
type TaskKind string

const (
	KindGeneral  TaskKind = "general"
	KindCleaning TaskKind = "cleaning"
	KindExercise TaskKind = "exercise"
	KindWork     TaskKind = "work"
	KindStudy    TaskKind = "study"
	KindHealth   TaskKind = "health"
	KindShopping TaskKind = "shopping"
	KindTravel   TaskKind = "travel"
)

// TaskContext is the expected visual vocabulary for a task.
type TaskContext struct {
	Kind            TaskKind        `json:"kind"`
	ExpectedObjects map[string]bool `json:"expected_objects"`
	ExpectedScenes  map[string]bool `json:"expected_scenes"`
	Keywords        map[string]bool `json:"keywords"`

	IsRemovalTask  bool `json:"is_removal_task"`
	IsExerciseTask bool `json:"is_exercise_task"`

	// Populated only for removal tasks.
	ItemsToRemove []string `json:"items_to_remove,omitempty"`

	// Populated only for exercise tasks.
	ExerciseTypes     []string `json:"exercise_types,omitempty"`
	ExerciseEquipment []string `json:"exercise_equipment,omitempty"`
}

// -----------------------------------------------------------------------------
// IMAGE FEATURES - What the photo shows
// -----------------------------------------------------------------------------

// ImageFeatures are the heuristic features extracted from one submitted image.
// None of this is real object detection; labels come from geometric and color
// statistics plus documented random filler.
type ImageFeatures struct {
	DetectedObjects []string `json:"detected_objects"`
	SceneLabels     []string `json:"scene_labels"`
	ExtractedText   []string `json:"extracted_text"`

	Complexity    float64 `json:"complexity"`   // 0-1
	Brightness    float64 `json:"brightness"`   // 0-1
	Colorfulness  float64 `json:"colorfulness"` // 0-1
	EdgeDensity   float64 `json:"edge_density"` // 0-1
	GymLikelihood bool    `json:"gym_likelihood"`

	DominantColors  []string `json:"dominant_colors"`
	HorizontalLines int      `json:"horizontal_lines"`
	VerticalLines   int      `json:"vertical_lines"`
}

// Elements returns every textual element of the image in evaluation order:
// objects, then scenes, then extracted text.
func (f *ImageFeatures) Elements() []string {
	out := make([]string, 0, len(f.DetectedObjects)+len(f.SceneLabels)+len(f.ExtractedText))
	out = append(out, f.DetectedObjects...)
	out = append(out, f.SceneLabels...)
	out = append(out, f.ExtractedText...)
	return out
}

// -----------------------------------------------------------------------------
// MATCH RESULT - The verdict
// -----------------------------------------------------------------------------

// MatchResult is the evidence matcher's verdict for one verification.
// Invariant: IsCompleted == (Confidence > match.CompletionThreshold).
type MatchResult struct {
	IsCompleted bool    `json:"is_completed"`
	Confidence  float64 `json:"confidence"` // 0-1

	// MatchedElements explains the score, in order of contribution.
	// Feedback generation interpolates the first few entries; never sort.
	MatchedElements []string `json:"matched_elements"`
}

// -----------------------------------------------------------------------------
// VERIFICATION - A persisted pipeline run
// -----------------------------------------------------------------------------

// VerificationStatus is the terminal state of a verification run.
type VerificationStatus string

const (
	StatusVerified    VerificationStatus = "verified"
	StatusNotVerified VerificationStatus = "not_verified"
	StatusImageFailed VerificationStatus = "image_failed"
)

// Verification is the host-layer record of one pipeline run.
type Verification struct {
	ID     string             `json:"id"`
	Status VerificationStatus `json:"status"`

	// Task snapshot at verification time
	Task TaskDescriptor `json:"task"`

	// Outcome
	Completed       bool     `json:"completed"`
	Confidence      float64  `json:"confidence"`
	Feedback        string   `json:"feedback"`
	MatchedElements []string `json:"matched_elements"`

	// Raw feature summary for audit/debugging
	Features *ImageFeatures `json:"features,omitempty"`

	// Content hash of the submitted image pixels
	ImageHash string `json:"image_hash"`

	CreatedAt time.Time `json:"created_at"`
}
