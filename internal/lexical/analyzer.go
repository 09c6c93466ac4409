package lexical

import (
	"encoding/hex"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"

	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/logging"
)

// Analyzer computes lexical profiles of tasks, with a bounded content-keyed
// cache so repeated verifications of the same task text skip the tagger.
type Analyzer struct {
	tagger Tagger
	cache  *lru.Cache[string, *core.LexicalProfile]
	group  singleflight.Group
}

// Config for the analyzer
type Config struct {
	Tagger    Tagger
	CacheSize int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Tagger:    NewProseTagger(),
		CacheSize: 512,
	}
}

// NewAnalyzer creates a lexical analyzer
func NewAnalyzer(cfg Config) *Analyzer {
	if cfg.Tagger == nil {
		cfg.Tagger = NewProseTagger()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}

	cache, _ := lru.New[string, *core.LexicalProfile](cfg.CacheSize)
	return &Analyzer{
		tagger: cfg.Tagger,
		cache:  cache,
	}
}

// corporate suffixes that mark an NNP token run as an organization
var corporateSuffixes = map[string]bool{
	"inc": true, "corp": true, "ltd": true, "llc": true, "gmbh": true,
}

// contentTag reports whether a Penn tag marks a noun, verb or adjective.
func contentTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") ||
		strings.HasPrefix(tag, "VB") ||
		strings.HasPrefix(tag, "JJ")
}

// keepToken applies the shared keyword filter: content word, length > 2,
// not a stop word.
func keepToken(word, tag string) bool {
	return contentTag(tag) && len(word) > 2 && !isStopWord(word)
}

// ExtractKeywords returns the content-word keywords of text.
// If the tagger is unavailable the result is empty, never an error.
func (a *Analyzer) ExtractKeywords(text string) map[string]bool {
	keywords := make(map[string]bool)
	if strings.TrimSpace(text) == "" {
		return keywords
	}

	tagging, err := a.tagger.Analyze(text)
	if err != nil {
		logging.Warn("tagger unavailable, returning empty keywords: %v", err)
		return keywords
	}

	for _, tok := range tagging.Tokens {
		word := strings.ToLower(tok.Text)
		if keepToken(word, tok.Tag) {
			keywords[word] = true
		}
	}
	return keywords
}

// ExtractEntities buckets named entities into persons, locations,
// organizations and other.
func (a *Analyzer) ExtractEntities(text string) map[core.EntityCategory][]string {
	entities := map[core.EntityCategory][]string{
		core.EntityPersons:       {},
		core.EntityLocations:     {},
		core.EntityOrganizations: {},
		core.EntityOther:         {},
	}
	if strings.TrimSpace(text) == "" {
		return entities
	}

	tagging, err := a.tagger.Analyze(text)
	if err != nil {
		logging.Warn("tagger unavailable, returning empty entities: %v", err)
		return entities
	}

	named := make(map[string]bool)
	for _, ent := range tagging.Entities {
		lower := strings.ToLower(ent.Text)
		named[lower] = true
		switch ent.Label {
		case "PERSON":
			entities[core.EntityPersons] = append(entities[core.EntityPersons], lower)
		case "GPE":
			entities[core.EntityLocations] = append(entities[core.EntityLocations], lower)
		}
	}

	// Proper-noun runs ending in a corporate suffix count as organizations.
	var run []string
	flush := func() {
		if len(run) > 1 {
			last := strings.ToLower(strings.TrimSuffix(run[len(run)-1], "."))
			if corporateSuffixes[last] {
				org := strings.ToLower(strings.Join(run, " "))
				entities[core.EntityOrganizations] = append(entities[core.EntityOrganizations], org)
				named[org] = true
			}
		}
		run = run[:0]
	}
	for _, tok := range tagging.Tokens {
		if strings.HasPrefix(tok.Tag, "NNP") {
			run = append(run, tok.Text)
			continue
		}
		flush()
	}
	flush()

	// Everything else that is a content word and not a stop word lands in other.
	seen := make(map[string]bool)
	for _, tok := range tagging.Tokens {
		word := strings.ToLower(tok.Text)
		if !keepToken(word, tok.Tag) || named[word] || seen[word] {
			continue
		}
		seen[word] = true
		entities[core.EntityOther] = append(entities[core.EntityOther], word)
	}

	return entities
}

// ExtractActionVerbs returns verb tokens in order of appearance.
func (a *Analyzer) ExtractActionVerbs(text string) []string {
	verbs := []string{}
	if strings.TrimSpace(text) == "" {
		return verbs
	}

	tagging, err := a.tagger.Analyze(text)
	if err != nil {
		logging.Warn("tagger unavailable, returning empty verbs: %v", err)
		return verbs
	}

	seen := make(map[string]bool)
	for _, tok := range tagging.Tokens {
		if !strings.HasPrefix(tok.Tag, "VB") {
			continue
		}
		word := strings.ToLower(tok.Text)
		if len(word) <= 2 || isStopWord(word) || seen[word] {
			continue
		}
		seen[word] = true
		verbs = append(verbs, word)
	}
	return verbs
}

// profileKey hashes the full task content so edits invalidate naturally.
func profileKey(task core.TaskDescriptor) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(task.Title))
	h.Write([]byte{0})
	h.Write([]byte(task.Notes))
	h.Write([]byte{0})
	h.Write([]byte(task.Category))
	h.Write([]byte{0})
	h.Write([]byte(task.Priority))
	return hex.EncodeToString(h.Sum(nil))
}

// AnalyzeTask computes (or returns the cached) lexical profile of a task.
// Concurrent calls for the same content coalesce onto a single computation.
func (a *Analyzer) AnalyzeTask(task core.TaskDescriptor) *core.LexicalProfile {
	key := profileKey(task)

	if profile, ok := a.cache.Get(key); ok {
		return profile
	}

	result, _, _ := a.group.Do(key, func() (interface{}, error) {
		profile := a.buildProfile(task)
		a.cache.Add(key, profile)
		return profile, nil
	})

	return result.(*core.LexicalProfile)
}

func (a *Analyzer) buildProfile(task core.TaskDescriptor) *core.LexicalProfile {
	titleKeywords := a.ExtractKeywords(task.Title)
	notesKeywords := a.ExtractKeywords(task.Notes)

	all := make(map[string]bool, len(titleKeywords)+len(notesKeywords))
	for k := range titleKeywords {
		all[k] = true
	}
	for k := range notesKeywords {
		all[k] = true
	}

	combined := strings.TrimSpace(task.Title + " " + task.Notes)

	return &core.LexicalProfile{
		TitleKeywords: titleKeywords,
		NotesKeywords: notesKeywords,
		AllKeywords:   all,
		Entities:      a.ExtractEntities(combined),
		ActionVerbs:   a.ExtractActionVerbs(combined),
		Difficulty:    EstimateDifficulty(task),
	}
}

// EstimateDifficulty scores a task's effort from its priority, category and
// text shape. Pure function, no randomness.
func EstimateDifficulty(task core.TaskDescriptor) core.Difficulty {
	score := 0

	switch task.Priority {
	case core.PriorityLow:
		score += 1
	case core.PriorityMedium:
		score += 2
	case core.PriorityHigh:
		score += 3
	}

	switch task.Category {
	case core.CategoryWork, core.CategoryStudy:
		score += 2
	case core.CategoryExercise, core.CategoryHealth:
		score += 1
	}

	if len(strings.Fields(task.Title)) > 5 {
		score++
	}
	if strings.TrimSpace(task.Notes) != "" {
		score++
	}

	switch {
	case score >= 6:
		return core.DifficultyHard
	case score >= 3:
		return core.DifficultyMedium
	default:
		return core.DifficultyEasy
	}
}
