package vision

import (
	"image"
	"math/rand"
)

// imageStats carries every numeric feature the label synthesizers share.
type imageStats struct {
	brightness   float64
	colorfulness float64
	edgeDensity  float64
	complexity   float64

	lineRows []int
	lineCols []int

	gymColors         bool
	equipmentPatterns bool
	gymLikely         bool

	dominant []string
}

func (s *imageStats) horizontalLines() int { return len(s.lineRows) }
func (s *imageStats) verticalLines() int   { return len(s.lineCols) }

// -----------------------------------------------------------------------------
// REGION LABELS - pseudo-rectangles from the line grid
// -----------------------------------------------------------------------------

// regionLabels derives object labels from the rectangles the detected line
// grid implies. Aspect ratio and area of each cell map onto a coarse label.
func regionLabels(stats *imageStats) []string {
	rows, cols := stats.lineRows, stats.lineCols
	if len(rows) < 2 || len(cols) < 2 {
		return nil
	}

	labels := []string{}
	seen := make(map[string]bool)
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			labels = append(labels, label)
		}
	}

	imageArea := float64(scaledSize * scaledSize)
	for i := 0; i+1 < len(rows); i++ {
		for j := 0; j+1 < len(cols); j++ {
			h := float64(rows[i+1] - rows[i])
			w := float64(cols[j+1] - cols[j])
			if h <= 0 || w <= 0 {
				continue
			}
			aspect := w / h
			area := (w * h) / imageArea

			switch {
			case aspect > 3:
				add("shelf")
			case aspect < 0.33:
				add("bottle")
			case area > 0.3 && stats.gymColors:
				add("exercise machine")
			case area > 0.3:
				add("table")
			case aspect >= 2 && area > 0.08:
				add("bench")
			case area < 0.05 && aspect >= 0.5 && aspect <= 2 && stats.gymColors:
				add("weight")
			case area < 0.05:
				add("small object")
			default:
				add("item")
			}
		}
	}
	return labels
}

// -----------------------------------------------------------------------------
// POSE LABELS - skin-tone region geometry
// -----------------------------------------------------------------------------

// poseLabels looks for a skin-toned region and classifies its rough geometry.
// A person is reported whenever enough skin tone is present; the pose label
// is a guess from the bounding box shape and position.
func poseLabels(scaled *image.RGBA, stats *imageStats) []string {
	bounds := scaled.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	minX, minY := width, height
	maxX, maxY := -1, -1
	var sumY, count int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !isSkinTone(rgbaAt(scaled, x, y)) {
				continue
			}
			count++
			sumY += y
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if float64(count)/float64(width*height) < 0.02 {
		return nil
	}

	boxW := float64(maxX - minX + 1)
	boxH := float64(maxY - minY + 1)
	centroidY := float64(sumY) / float64(count) / float64(height)

	labels := []string{"person"}
	switch {
	case boxW > 1.5*boxH:
		labels = append(labels, "person lying down")
	case centroidY > 0.6 && boxH < 0.5*float64(height):
		labels = append(labels, "person squatting")
	case boxW >= 0.8*boxH && boxW <= 1.25*boxH && centroidY > 0.35 && centroidY < 0.65:
		labels = append(labels, "person seated")
	case stats.gymLikely:
		labels = append(labels, "person exercising")
	}
	return labels
}

// isSkinTone matches the usual RGB skin heuristic.
func isSkinTone(p pixel) bool {
	return p.r > 95 && p.g > 40 && p.b > 20 &&
		p.r > p.g && p.r > p.b && p.r-p.g > 15
}

// -----------------------------------------------------------------------------
// EQUIPMENT LABELS - threshold rules over the shared stats
// -----------------------------------------------------------------------------

type equipmentRule struct {
	label string
	match func(*imageStats) bool
}

// equipmentRules are evaluated in order; every matching rule fires and the
// results are deduplicated afterwards. There is no first-match cutoff.
var equipmentRules = []equipmentRule{
	{"leg press machine", func(s *imageStats) bool {
		return s.verticalLines() >= 4 && s.gymColors && s.complexity > 0.5
	}},
	{"cable machine", func(s *imageStats) bool {
		return s.verticalLines() >= 5 && s.horizontalLines() >= 2 && s.gymColors
	}},
	{"multi gym", func(s *imageStats) bool {
		return s.horizontalLines() >= 4 && s.verticalLines() >= 4 && s.gymColors
	}},
	{"treadmill", func(s *imageStats) bool {
		return s.horizontalLines() >= 3 && s.gymColors &&
			s.brightness < 0.6 && s.edgeDensity > 0.3
	}},
	{"flat bench", func(s *imageStats) bool {
		return s.horizontalLines() >= 2 && s.verticalLines() <= 2 &&
			s.gymColors && s.complexity < 0.5
	}},
	{"adjustable bench", func(s *imageStats) bool {
		return s.horizontalLines() >= 3 && s.verticalLines() <= 3 &&
			s.gymColors && s.complexity >= 0.5
	}},
	{"dumbbells", func(s *imageStats) bool {
		return s.gymColors && s.edgeDensity > 0.5 && s.complexity > 0.6
	}},
	{"weight plates", func(s *imageStats) bool {
		return s.gymColors && s.edgeDensity > 0.4 && hasDominant(s, "black")
	}},
	{"exercise bike", func(s *imageStats) bool {
		return s.verticalLines() >= 3 && s.horizontalLines() <= 2 && s.gymColors
	}},
	{"elliptical", func(s *imageStats) bool {
		return s.verticalLines() >= 4 && s.horizontalLines() >= 3 &&
			s.edgeDensity > 0.45 && s.gymColors
	}},
}

func hasDominant(s *imageStats, color string) bool {
	for _, c := range s.dominant {
		if c == color {
			return true
		}
	}
	return false
}

// equipmentLabels runs the full rule table and deduplicates the hits.
func equipmentLabels(stats *imageStats) []string {
	labels := []string{}
	seen := make(map[string]bool)
	for _, rule := range equipmentRules {
		if !rule.match(stats) {
			continue
		}
		if !seen[rule.label] {
			seen[rule.label] = true
			labels = append(labels, rule.label)
		}
	}
	return labels
}

// -----------------------------------------------------------------------------
// SCENE LABELS
// -----------------------------------------------------------------------------

// sceneLabels classifies the overall scene from the shared stats.
func sceneLabels(stats *imageStats) []string {
	labels := []string{}

	if stats.gymLikely {
		labels = append(labels, "gym", "fitness center", "workout area")
	}
	if stats.complexity < 0.3 {
		labels = append(labels, "clean surface", "tidy environment")
	}
	if stats.complexity > 0.6 {
		labels = append(labels, "cluttered space", "many items")
	}
	if stats.brightness > 0.7 {
		labels = append(labels, "bright room")
	}
	if stats.brightness < 0.25 {
		labels = append(labels, "dim room")
	}
	if len(labels) == 0 {
		labels = append(labels, "indoor scene")
	}
	return labels
}

// -----------------------------------------------------------------------------
// TEXT HEURISTIC
// -----------------------------------------------------------------------------

// textMarkers flags dense high-contrast alternation typical of printed text.
// There is no actual OCR; at most a single "text" marker is produced.
func textMarkers(scaled *image.RGBA) []string {
	bounds := scaled.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 4 || height < 4 {
		return []string{}
	}

	textRows := 0
	for y := height / 4; y < 3*height/4; y++ {
		transitions := 0
		prev := rgbaAt(scaled, 0, y)
		for x := 1; x < width; x++ {
			cur := rgbaAt(scaled, x, y)
			if channelDelta(cur, prev) > 60 {
				transitions++
			}
			prev = cur
		}
		if transitions > width/4 {
			textRows++
		}
	}

	if textRows >= height/10 {
		return []string{"text"}
	}
	return []string{}
}

// -----------------------------------------------------------------------------
// FILLER LABELS - documented random detector noise
// -----------------------------------------------------------------------------

var fillerObjectCandidates = []string{"item", "object", "furniture", "container", "surface"}

var fillerSceneCandidates = []string{"indoor space", "room", "area", "environment"}

// fillerLabels draws random generic labels to simulate detector noise. This
// is the one intentionally nondeterministic part of feature extraction.
func fillerLabels(rng *rand.Rand) (objects, scenes []string) {
	objects = []string{}
	scenes = []string{}

	for i, n := 0, rng.Intn(3); i < n; i++ {
		objects = append(objects, fillerObjectCandidates[rng.Intn(len(fillerObjectCandidates))])
	}
	if rng.Intn(2) == 1 {
		scenes = append(scenes, fillerSceneCandidates[rng.Intn(len(fillerSceneCandidates))])
	}
	return objects, scenes
}
