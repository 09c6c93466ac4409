// Package feedback renders the final verification message from a match
// result. It is a deterministic template dispatch over (strategy, verdict,
// confidence band) with no numeric state of its own.
package feedback

import (
	"fmt"
	"strings"

	"github.com/prooflens/prooflens/internal/core"
)

// Generator renders verification feedback.
type Generator struct{}

// NewGenerator creates a feedback generator
func NewGenerator() *Generator {
	return &Generator{}
}

// DecodeFailure is the terminal message for an unreadable image.
const DecodeFailure = "The photo could not be processed. Please try again with a different image."

// -----------------------------------------------------------------------------
// DISPATCH TABLE
// -----------------------------------------------------------------------------

type strategy int

const (
	strategyStandard strategy = iota
	strategyRemoval
	strategyExercise
)

type band int

const (
	bandVeryHigh band = iota // > 0.8
	bandHigh                 // > 0.6
	bandMedium               // > 0.4
	bandLow                  // > 0.2
	bandVeryLow
)

func confidenceBand(confidence float64) band {
	switch {
	case confidence > 0.8:
		return bandVeryHigh
	case confidence > 0.6:
		return bandHigh
	case confidence > 0.4:
		return bandMedium
	case confidence > 0.2:
		return bandLow
	default:
		return bandVeryLow
	}
}

type templateKey struct {
	strategy  strategy
	completed bool
	band      band
}

// Each template interpolates the leading matched elements via %s.
var templates = map[templateKey]string{
	// removal, completed
	{strategyRemoval, true, bandVeryHigh}: "Excellent work! The space is clean and everything has been cleared away. Verified: %s.",
	{strategyRemoval, true, bandHigh}:     "Great job! The area looks clean and organized. Evidence: %s.",
	{strategyRemoval, true, bandMedium}:   "Nice work, the space looks clean. Noted: %s.",
	{strategyRemoval, true, bandLow}:      "The area appears mostly clean. Observed: %s.",
	{strategyRemoval, true, bandVeryLow}:  "The space seems clean, though the photo gives little to go on.",

	// removal, not completed
	{strategyRemoval, false, bandVeryHigh}: "The area is not clear yet. Remaining: %s.",
	{strategyRemoval, false, bandHigh}:     "Some items still need to be cleared. Remaining: %s.",
	{strategyRemoval, false, bandMedium}:   "The space is not fully cleared yet. Still there: %s.",
	{strategyRemoval, false, bandLow}:      "This does not look finished yet. Items spotted: %s.",
	{strategyRemoval, false, bandVeryLow}:  "The photo does not show a cleared space. Found: %s.",

	// exercise, completed
	{strategyExercise, true, bandVeryHigh}: "Impressive workout evidence! Confirmed: %s.",
	{strategyExercise, true, bandHigh}:     "Workout verified. The photo shows: %s.",
	{strategyExercise, true, bandMedium}:   "Looks like you got your exercise in. Seen: %s.",
	{strategyExercise, true, bandLow}:      "Some workout evidence found: %s.",
	{strategyExercise, true, bandVeryLow}:  "Exercise accepted, though the photo shows little detail.",

	// exercise, not completed
	{strategyExercise, false, bandVeryHigh}: "The photo does not clearly show a workout. Only found: %s.",
	{strategyExercise, false, bandHigh}:     "Not enough workout evidence in this photo. Found: %s.",
	{strategyExercise, false, bandMedium}:   "This does not look like workout evidence. Seen: %s.",
	{strategyExercise, false, bandLow}:      "The photo does not match an exercise session.",
	{strategyExercise, false, bandVeryLow}:  "No workout evidence found in this photo.",

	// standard, completed
	{strategyStandard, true, bandVeryHigh}: "Task verified with strong evidence: %s.",
	{strategyStandard, true, bandHigh}:     "Task verified. The photo shows: %s.",
	{strategyStandard, true, bandMedium}:   "The photo matches the task. Found: %s.",
	{strategyStandard, true, bandLow}:      "The photo loosely matches the task: %s.",
	{strategyStandard, true, bandVeryLow}:  "Accepted, though the evidence is thin.",

	// standard, not completed
	{strategyStandard, false, bandVeryHigh}: "The photo does not match the task. Only found: %s.",
	{strategyStandard, false, bandHigh}:     "Weak match against the task. Found: %s.",
	{strategyStandard, false, bandMedium}:   "The photo does not clearly show this task. Seen: %s.",
	{strategyStandard, false, bandLow}:      "Not enough matching evidence in this photo.",
	{strategyStandard, false, bandVeryLow}:  "The photo does not show evidence of this task.",
}

// -----------------------------------------------------------------------------
// GENERATION
// -----------------------------------------------------------------------------

// Generate renders the feedback message for a match result.
func (g *Generator) Generate(ctx core.TaskContext, result core.MatchResult) string {
	key := templateKey{
		strategy:  strategyFor(ctx),
		completed: result.IsCompleted,
		band:      confidenceBand(result.Confidence),
	}

	template, ok := templates[key]
	if !ok {
		// Table covers the full key space; this is a safety net only.
		template = "Verification complete. Evidence: %s."
	}

	if !strings.Contains(template, "%s") {
		return template
	}
	return fmt.Sprintf(template, leadElements(result.MatchedElements))
}

func strategyFor(ctx core.TaskContext) strategy {
	switch {
	case ctx.IsRemovalTask:
		return strategyRemoval
	case ctx.IsExerciseTask:
		return strategyExercise
	default:
		return strategyStandard
	}
}

// leadElements joins the first three matched elements for interpolation.
func leadElements(elements []string) string {
	if len(elements) == 0 {
		return "no specific details"
	}
	if len(elements) > 3 {
		elements = elements[:3]
	}
	return strings.Join(elements, ", ")
}
