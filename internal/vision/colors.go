package vision

// colorProportions summarizes the gym-relevant color share of the samples.
type colorProportions struct {
	black  float64
	gray   float64
	bright float64 // bright red or bright blue
}

// gymColorProportions classifies every sample as near-black, metal-gray,
// bright-red or bright-blue by fixed RGB thresholds.
func gymColorProportions(samples []pixel) colorProportions {
	if len(samples) == 0 {
		return colorProportions{}
	}

	var black, gray, bright int
	for _, p := range samples {
		switch {
		case p.r < 50 && p.g < 50 && p.b < 50:
			black++
		case isMetalGray(p):
			gray++
		case p.r > 180 && p.g < 100 && p.b < 100:
			bright++ // bright red
		case p.b > 180 && p.r < 100 && p.g < 100:
			bright++ // bright blue
		}
	}

	n := float64(len(samples))
	return colorProportions{
		black:  float64(black) / n,
		gray:   float64(gray) / n,
		bright: float64(bright) / n,
	}
}

// isMetalGray matches mid-range pixels with roughly equal channels.
func isMetalGray(p pixel) bool {
	if p.r < 80 || p.r > 200 {
		return false
	}
	return abs(p.r-p.g) < 25 && abs(p.g-p.b) < 25 && abs(p.r-p.b) < 25
}

// hasGymColors applies the fixed proportion rule for gym interiors.
func hasGymColors(props colorProportions) bool {
	if props.black > 0.15 && props.gray > 0.1 {
		return true
	}
	if props.gray > 0.2 {
		return true
	}
	return props.bright > 0.05 && props.gray > 0.1
}

// gymLikelihood weights color, edge and pattern evidence into a single flag.
func gymLikelihood(colors bool, edge float64, patterns bool) bool {
	score := 0.0
	if colors {
		score += 0.4
	}
	if edge > 0.4 {
		score += 0.3
	}
	if patterns {
		score += 0.3
	}
	return score > 0.5
}

// paletteNames in classification order; ties in frequency resolve to the
// earlier name.
var paletteNames = []string{
	"black", "white", "gray", "red", "green", "blue", "yellow",
	"cyan", "magenta", "orange", "brown", "wood", "other",
}

// classifyPalette maps one pixel onto the fixed palette by RGB-range rules.
func classifyPalette(p pixel) string {
	r, g, b := p.r, p.g, p.b
	switch {
	case r < 50 && g < 50 && b < 50:
		return "black"
	case r > 200 && g > 200 && b > 200:
		return "white"
	case abs(r-g) < 25 && abs(g-b) < 25 && abs(r-b) < 25:
		return "gray"
	case r > 150 && g > 100 && g < 180 && b < 100:
		return "orange"
	case r > 150 && g < 100 && b < 100:
		return "red"
	case g > 150 && r < 100 && b < 100:
		return "green"
	case b > 150 && r < 100 && g < 100:
		return "blue"
	case r > 150 && g > 150 && b < 100:
		return "yellow"
	case g > 150 && b > 150 && r < 100:
		return "cyan"
	case r > 150 && b > 150 && g < 100:
		return "magenta"
	case r > 100 && r < 200 && g > 60 && g < 150 && b < 80 && r > g && g > b:
		return "wood"
	case r > 80 && r < 160 && g > 40 && g < 110 && b < 70:
		return "brown"
	default:
		return "other"
	}
}

// dominantColors returns the top three palette colors by sample frequency.
func dominantColors(samples []pixel) []string {
	if len(samples) == 0 {
		return []string{}
	}

	counts := make(map[string]int)
	for _, p := range samples {
		counts[classifyPalette(p)]++
	}

	top := []string{}
	used := make(map[string]bool)
	for len(top) < 3 {
		best, bestCount := "", 0
		for _, name := range paletteNames {
			if used[name] {
				continue
			}
			if counts[name] > bestCount {
				best, bestCount = name, counts[name]
			}
		}
		if bestCount == 0 {
			break
		}
		used[best] = true
		top = append(top, best)
	}
	return top
}
