package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/lexical"
)

// CleanDeskTask is the canonical removal-task fixture.
func CleanDeskTask() core.TaskDescriptor {
	return core.TaskDescriptor{
		Title:    "Clean my desk",
		Category: core.CategoryHome,
		Priority: core.PriorityMedium,
	}
}

// RunTask is the canonical exercise-task fixture.
func RunTask() core.TaskDescriptor {
	return core.TaskDescriptor{
		Title:    "Go for a run",
		Category: core.CategoryExercise,
		Priority: core.PriorityLow,
	}
}

// UniformImage is a solid-color bitmap; flat images read as clean surfaces.
func UniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// GymImage is half near-black, half metal-gray, which trips the gym-color
// detector.
func GymImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{20, 20, 20, 255}
			if x >= w/2 {
				c = color.RGBA{128, 128, 128, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// PNGBytes encodes an image to PNG.
func PNGBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// WordTagger is a deterministic lexical.Tagger for tests; it tags from a
// fixed word table so no model data is needed. Unknown words tag as NN.
type WordTagger struct {
	Err error
}

var wordTags = map[string]string{
	"the": "DT", "my": "PRP$", "a": "DT", "and": "CC", "for": "IN", "go": "VB",
	"clean": "VB", "remove": "VB", "organize": "VB", "buy": "VB", "run": "NN",
}

// Analyze implements lexical.Tagger.
func (w *WordTagger) Analyze(text string) (*lexical.Tagging, error) {
	if w.Err != nil {
		return nil, w.Err
	}
	tagging := &lexical.Tagging{}
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,!?-")
		if word == "" {
			continue
		}
		tag := "NN"
		if t, ok := wordTags[strings.ToLower(word)]; ok {
			tag = t
		}
		tagging.Tokens = append(tagging.Tokens, lexical.Token{Text: word, Tag: tag})
	}
	return tagging, nil
}

// TestAnalyzer is a lexical analyzer backed by the WordTagger.
func TestAnalyzer() *lexical.Analyzer {
	return lexical.NewAnalyzer(lexical.Config{Tagger: &WordTagger{}, CacheSize: 32})
}
