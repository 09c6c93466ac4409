// Package taskctx maps a task's category and wording to the visual vocabulary
// the matcher should expect in a verification photo.
package taskctx

import (
	"sort"
	"strings"

	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/lexical"
)

// Resolver derives a TaskContext from a task descriptor. Resolution is a pure
// function of the task text and category; the lexical analyzer underneath
// caches per content, so repeated resolution of the same task is cheap.
type Resolver struct {
	analyzer *lexical.Analyzer
}

// NewResolver creates a resolver backed by the given lexical analyzer.
func NewResolver(analyzer *lexical.Analyzer) *Resolver {
	return &Resolver{analyzer: analyzer}
}

// -----------------------------------------------------------------------------
// FIXED VOCABULARIES
// -----------------------------------------------------------------------------

type categoryProfile struct {
	kind    core.TaskKind
	objects []string
	scenes  []string
}

// one entry per TaskCategory value
var categoryProfiles = map[core.TaskCategory]categoryProfile{
	core.CategoryExercise: {
		kind:    core.KindExercise,
		objects: []string{"person", "sneakers", "equipment", "mat"},
		scenes:  []string{"gym", "outdoors", "fitness center", "park"},
	},
	core.CategoryStudy: {
		kind:    core.KindStudy,
		objects: []string{"book", "notebook", "laptop", "pen", "paper"},
		scenes:  []string{"desk", "library", "study room"},
	},
	core.CategoryWork: {
		kind:    core.KindWork,
		objects: []string{"laptop", "computer", "monitor", "document", "keyboard"},
		scenes:  []string{"office", "desk", "workspace", "meeting room"},
	},
	core.CategoryHealth: {
		kind:    core.KindHealth,
		objects: []string{"medicine", "bottle", "water", "food", "vegetables"},
		scenes:  []string{"kitchen", "bathroom", "clinic"},
	},
	core.CategoryTravel: {
		kind:    core.KindTravel,
		objects: []string{"luggage", "suitcase", "ticket", "passport", "backpack"},
		scenes:  []string{"airport", "station", "road", "outdoors"},
	},
	core.CategoryShopping: {
		kind:    core.KindShopping,
		objects: []string{"bag", "cart", "receipt", "groceries", "products"},
		scenes:  []string{"store", "market", "mall"},
	},
	core.CategoryHome: {
		kind:    core.KindCleaning,
		objects: []string{"surface", "furniture", "cleaning supplies"},
		scenes:  []string{"room", "kitchen", "living room", "clean surface"},
	},
	core.CategoryOther: {
		kind:    core.KindGeneral,
		objects: []string{},
		scenes:  []string{},
	},
}

// trigger substrings found in title keywords extend the expected vocabulary.
// Every matching trigger fires; extensions union into the context sets.
type triggerRule struct {
	triggers []string
	objects  []string
	scenes   []string
}

var triggerRules = []triggerRule{
	{
		triggers: []string{"desk", "table"},
		objects:  []string{"desk", "table", "surface", "empty surface"},
		scenes:   []string{"workspace", "office"},
	},
	{
		triggers: []string{"clean", "tidy", "organize"},
		objects:  []string{"empty surface", "organized items"},
		scenes:   []string{"clean surface", "tidy environment", "organized space"},
	},
	{
		triggers: []string{"cook", "bake", "food"},
		objects:  []string{"food", "plate", "pan", "ingredients"},
		scenes:   []string{"kitchen", "dining table"},
	},
	{
		triggers: []string{"exercise", "workout", "gym", "fitness", "train"},
		objects:  []string{"person", "equipment", "weight", "machine"},
		scenes:   []string{"gym", "fitness center", "workout area"},
	},
	{
		triggers: []string{"run", "jog", "walk"},
		objects:  []string{"person", "sneakers", "road"},
		scenes:   []string{"outdoors", "park", "street", "treadmill"},
	},
	{
		triggers: []string{"weight", "lift", "strength"},
		objects:  []string{"weight", "dumbbell", "barbell", "bench"},
		scenes:   []string{"gym", "weight room"},
	},
}

var removalKeywords = map[string]bool{
	"remove": true, "clean": true, "clear": true,
	"empty": true, "declutter": true, "organize": true,
}

var exerciseKeywords = map[string]bool{
	"exercise": true, "workout": true, "gym": true, "fitness": true,
	"train": true, "run": true, "lift": true, "cardio": true, "strength": true,
}

var defaultItemsToRemove = []string{"items", "clutter", "stuff", "objects", "things"}

var defaultExerciseTypes = []string{"workout", "exercise", "fitness"}

var exerciseTypeWords = []string{
	"run", "jog", "walk", "swim", "cycling", "yoga", "pilates",
	"cardio", "lifting", "strength", "workout", "exercise", "fitness",
	"training", "stretch", "sport",
}

var exerciseEquipmentWords = []string{
	"treadmill", "dumbbell", "barbell", "bench", "machine", "weight",
	"kettlebell", "mat", "bike", "elliptical", "rack", "band", "rope",
}

// -----------------------------------------------------------------------------
// RESOLUTION
// -----------------------------------------------------------------------------

// Determine resolves the expected visual vocabulary for a task. If the lexical
// analyzer degraded to empty keywords, the result falls back to the
// category-only base vocabulary.
func (r *Resolver) Determine(task core.TaskDescriptor) core.TaskContext {
	profile := r.analyzer.AnalyzeTask(task)

	base, ok := categoryProfiles[task.Category]
	if !ok {
		base = categoryProfiles[core.CategoryOther]
	}

	ctx := core.TaskContext{
		Kind:            base.kind,
		ExpectedObjects: make(map[string]bool),
		ExpectedScenes:  make(map[string]bool),
		Keywords:        make(map[string]bool, len(profile.AllKeywords)),
	}
	for _, obj := range base.objects {
		ctx.ExpectedObjects[obj] = true
	}
	for _, scene := range base.scenes {
		ctx.ExpectedScenes[scene] = true
	}
	for kw := range profile.AllKeywords {
		ctx.Keywords[kw] = true
	}

	titleKeywords := sortedKeys(profile.TitleKeywords)

	for _, rule := range triggerRules {
		if !matchesTrigger(titleKeywords, rule.triggers) {
			continue
		}
		for _, obj := range rule.objects {
			ctx.ExpectedObjects[obj] = true
		}
		for _, scene := range rule.scenes {
			ctx.ExpectedScenes[scene] = true
		}
	}

	for _, kw := range titleKeywords {
		if removalKeywords[kw] {
			ctx.IsRemovalTask = true
		}
		if exerciseKeywords[kw] {
			ctx.IsExerciseTask = true
		}
	}
	if task.Category == core.CategoryExercise {
		ctx.IsExerciseTask = true
	}

	if ctx.IsRemovalTask {
		ctx.ItemsToRemove = r.itemsToRemove(task.Title)
	}
	if ctx.IsExerciseTask {
		ctx.ExerciseTypes, ctx.ExerciseEquipment = exerciseVocabulary(sortedKeys(profile.AllKeywords))
	}

	return ctx
}

// matchesTrigger reports whether any title keyword contains any trigger
// substring.
func matchesTrigger(keywords []string, triggers []string) bool {
	for _, kw := range keywords {
		for _, trigger := range triggers {
			if strings.Contains(kw, trigger) {
				return true
			}
		}
	}
	return false
}

// itemsToRemove extracts the items named after the literal "remove" in the
// title. Without usable keywords after that point, a generic default applies.
func (r *Resolver) itemsToRemove(title string) []string {
	lower := strings.ToLower(title)
	idx := strings.Index(lower, "remove")
	if idx < 0 {
		return defaultItemsToRemove
	}

	suffix := title[idx+len("remove"):]
	keywords := r.analyzer.ExtractKeywords(suffix)

	// Preserve word order from the title rather than map order.
	items := []string{}
	seen := make(map[string]bool)
	for _, word := range strings.Fields(suffix) {
		word = strings.ToLower(strings.Trim(word, ".,!?-"))
		if keywords[word] && !seen[word] {
			seen[word] = true
			items = append(items, word)
		}
	}
	if len(items) == 0 {
		return defaultItemsToRemove
	}
	return items
}

// exerciseVocabulary buckets keywords that contain an exercise-type or
// equipment word as a substring. Keywords arrive sorted so output is stable.
func exerciseVocabulary(keywords []string) (types, equipment []string) {
	types = []string{}
	equipment = []string{}
	for _, kw := range keywords {
		for _, word := range exerciseTypeWords {
			if strings.Contains(kw, word) {
				types = append(types, kw)
				break
			}
		}
		for _, word := range exerciseEquipmentWords {
			if strings.Contains(kw, word) {
				equipment = append(equipment, kw)
				break
			}
		}
	}
	if len(types) == 0 {
		types = defaultExerciseTypes
	}
	return types, equipment
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
