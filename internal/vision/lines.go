package vision

import "image"

// linePositions scans the scaled image for long runs of similar consecutive
// pixels. Every 10th row is walked left to right; a run of pixels whose
// per-channel delta against the previous pixel stays under runDelta, longer
// than a third of the width, marks that row as containing a horizontal line.
// Columns are scanned symmetrically for vertical lines. Returns the y
// positions of line rows and the x positions of line columns.
func linePositions(scaled *image.RGBA) (rows, cols []int) {
	bounds := scaled.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return nil, nil
	}

	for y := 0; y < height; y += 10 {
		run, best := 1, 1
		prev := rgbaAt(scaled, 0, y)
		for x := 1; x < width; x++ {
			cur := rgbaAt(scaled, x, y)
			if similar(cur, prev) {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 1
			}
			prev = cur
		}
		if best > width/3 {
			rows = append(rows, y)
		}
	}

	for x := 0; x < width; x += 10 {
		run, best := 1, 1
		prev := rgbaAt(scaled, x, 0)
		for y := 1; y < height; y++ {
			cur := rgbaAt(scaled, x, y)
			if similar(cur, prev) {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 1
			}
			prev = cur
		}
		if best > height/3 {
			cols = append(cols, x)
		}
	}

	return rows, cols
}

// countLines returns how many scanned rows and columns contain a line.
func countLines(scaled *image.RGBA) (horizontal, vertical int) {
	rows, cols := linePositions(scaled)
	return len(rows), len(cols)
}

// similar reports whether every channel delta stays under runDelta.
func similar(a, b pixel) bool {
	return abs(a.r-b.r) < runDelta &&
		abs(a.g-b.g) < runDelta &&
		abs(a.b-b.b) < runDelta
}

// hasEquipmentPatterns flags the grid geometry typical of racks and machines.
func hasEquipmentPatterns(horizontal, vertical int) bool {
	return horizontal >= 3 && vertical >= 3
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
