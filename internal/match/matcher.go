// Package match reconciles the expected task vocabulary with the labels
// extracted from a verification photo, producing a confidence score and a
// completion verdict.
package match

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/prooflens/prooflens/internal/core"
)

// CompletionThreshold is the single confidence cutoff for the completion
// verdict, shared by all three strategies.
const CompletionThreshold = 0.3

// Matcher scores image evidence against a task context.
type Matcher struct{}

// NewMatcher creates an evidence matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// Match selects the scoring strategy from the task context flags. Removal
// wins over exercise when both flags are set.
func (m *Matcher) Match(ctx core.TaskContext, features *core.ImageFeatures) core.MatchResult {
	switch {
	case ctx.IsRemovalTask:
		return m.matchRemoval(ctx, features)
	case ctx.IsExerciseTask:
		return m.matchExercise(ctx, features)
	default:
		return m.matchStandard(ctx, features)
	}
}

// -----------------------------------------------------------------------------
// FIXED INDICATOR VOCABULARIES
// -----------------------------------------------------------------------------

var cleanIndicators = []string{"clean", "empty", "tidy", "organized", "clear", "neat"}

var clutterIndicators = []string{"cluttered", "messy", "disorganized", "many items"}

var fewItemsIndicators = []string{"empty", "few items", "minimal", "bare"}

var surfaceIndicators = []string{"surface", "desk", "table"}

// deskItemVocabulary are things commonly left on a desk; their absence from
// the photo is evidence of removal.
var deskItemVocabulary = []string{
	"paper", "papers", "cup", "cups", "mug", "bottle", "laptop", "book",
	"books", "pen", "pens", "notebook", "folder", "cable", "charger",
	"plate", "glass", "box", "trash", "wrapper",
}

var gymSceneIndicators = []string{"gym", "fitness", "workout", "exercise", "training"}

var equipmentIndicators = []string{
	"machine", "treadmill", "weight", "bench", "equipment",
	"bike", "dumbbell", "barbell",
}

// -----------------------------------------------------------------------------
// STRATEGIES
// -----------------------------------------------------------------------------

// matchRemoval scores a cleaning/removal task. The central evidence is what
// is NOT in the photo: expected removable items that no longer appear.
func (m *Matcher) matchRemoval(ctx core.TaskContext, features *core.ImageFeatures) core.MatchResult {
	elements := features.Elements()
	score := 0.0
	matched := []string{}

	for _, scene := range features.SceneLabels {
		if indicator := firstIndicator(scene, cleanIndicators); indicator != "" {
			score += 2.0
			matched = append(matched, scene)
			break
		}
	}

	for _, element := range elements {
		if firstIndicator(element, clutterIndicators) != "" {
			score -= 2.0
			break
		}
	}

	for _, object := range features.DetectedObjects {
		if firstIndicator(object, fewItemsIndicators) != "" {
			score += 2.0
			matched = append(matched, object)
			break
		}
	}

	// Desk items still visible in the photo argue against completion and
	// feed the feedback message.
	foundCount := 0
	for _, item := range deskItemVocabulary {
		if elementContains(elements, item) {
			foundCount++
			matched = append(matched, item+" still present")
		}
	}

	for _, item := range ctx.ItemsToRemove {
		if !elementContains(elements, item) {
			score += 0.5
			matched = append(matched, item+" removed")
		}
	}
	if len(ctx.ItemsToRemove) > 0 && foundCount <= len(ctx.ItemsToRemove)/3 {
		score += 1.0
	}

	for _, element := range elements {
		if firstIndicator(element, surfaceIndicators) != "" {
			score += 1.0
			matched = append(matched, element)
			break
		}
	}

	if features.Complexity < 0.3 {
		score += 1.5
	} else if features.Complexity > 0.7 {
		score -= 1.0
	}

	return m.verdict(ctx, score, matched)
}

// matchExercise scores a workout task from gym scenes, equipment labels and
// person presence.
func (m *Matcher) matchExercise(ctx core.TaskContext, features *core.ImageFeatures) core.MatchResult {
	elements := features.Elements()
	score := 0.0
	matched := []string{}

	for _, scene := range features.SceneLabels {
		if firstIndicator(scene, gymSceneIndicators) != "" {
			score += 2.0
			matched = append(matched, scene)
			break
		}
	}

	for _, indicator := range equipmentIndicators {
		if elementContains(elements, indicator) {
			score += 0.5
			matched = append(matched, indicator)
		}
	}

	for _, kind := range ctx.ExerciseTypes {
		if elementContains(elements, kind) {
			score += 1.0
			matched = append(matched, kind)
		}
	}
	for _, equip := range ctx.ExerciseEquipment {
		if elementContains(elements, equip) {
			score += 1.0
			matched = append(matched, equip)
		}
	}

	for _, element := range elements {
		if strings.Contains(element, "person") {
			score += 1.0
			matched = append(matched, element)
			break
		}
	}

	return m.verdict(ctx, score, matched)
}

// matchStandard fuzzy-matches task keywords and expected vocabulary against
// the image labels.
func (m *Matcher) matchStandard(ctx core.TaskContext, features *core.ImageFeatures) core.MatchResult {
	elements := features.Elements()
	score := 0.0
	matched := []string{}

	for _, keyword := range sortedKeys(ctx.Keywords) {
		if fuzzyContains(elements, keyword) {
			score += 1.0
			matched = append(matched, keyword)
		}
	}
	for _, object := range sortedKeys(ctx.ExpectedObjects) {
		if fuzzyContains(features.DetectedObjects, object) {
			score += 0.5
			matched = append(matched, object)
		}
	}
	for _, scene := range sortedKeys(ctx.ExpectedScenes) {
		if fuzzyContains(features.SceneLabels, scene) {
			score += 0.5
			matched = append(matched, scene)
		}
	}

	return m.verdict(ctx, score, matched)
}

// verdict converts the accumulated score into a MatchResult. The denominator
// counts expectation slots, not achievable points, so confidence is a rough
// heuristic rather than a calibrated probability.
func (m *Matcher) verdict(ctx core.TaskContext, score float64, matched []string) core.MatchResult {
	possible := len(ctx.Keywords) + len(ctx.ExpectedObjects) + len(ctx.ExpectedScenes)
	if possible < 1 {
		possible = 1
	}

	confidence := score / float64(possible)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return core.MatchResult{
		IsCompleted:     confidence > CompletionThreshold,
		Confidence:      confidence,
		MatchedElements: matched,
	}
}

// -----------------------------------------------------------------------------
// MATCH PRIMITIVES
// -----------------------------------------------------------------------------

// WordsMatch reports a fuzzy word match: substring in either direction, or a
// Levenshtein distance within min(2, shorterLen/3).
func WordsMatch(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}

	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	allowed := minLen / 3
	if allowed > 2 {
		allowed = 2
	}
	return levenshtein.ComputeDistance(a, b) <= allowed
}

// fuzzyContains reports whether any element fuzzy-matches the word.
func fuzzyContains(elements []string, word string) bool {
	for _, element := range elements {
		if WordsMatch(element, word) {
			return true
		}
	}
	return false
}

// elementContains reports whether any element contains word as a substring.
func elementContains(elements []string, word string) bool {
	for _, element := range elements {
		if strings.Contains(strings.ToLower(element), strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// firstIndicator returns the first indicator found inside s, or "".
func firstIndicator(s string, indicators []string) string {
	lower := strings.ToLower(s)
	for _, indicator := range indicators {
		if strings.Contains(lower, indicator) {
			return indicator
		}
	}
	return ""
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
