package vision

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"math/rand"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/logging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Extractor computes image features with a bounded content-keyed cache.
// Features are deterministic per bitmap except for the random filler labels,
// which freeze into the cache entry on first extraction.
type Extractor struct {
	cache     *lru.Cache[string, *core.ImageFeatures]
	sampleCap int
	filler    bool

	mu  sync.Mutex
	rng *rand.Rand
}

// Config for the extractor.
type Config struct {
	CacheSize      int
	PixelSampleCap int
	FillerLabels   bool
	Seed           int64 // 0 means time-seeded
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		CacheSize:      64,
		PixelSampleCap: 1000,
		FillerLabels:   true,
	}
}

// NewExtractor creates an image feature extractor
func NewExtractor(cfg Config) *Extractor {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.PixelSampleCap <= 0 {
		cfg.PixelSampleCap = 1000
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	cache, _ := lru.New[string, *core.ImageFeatures](cfg.CacheSize)
	return &Extractor{
		cache:     cache,
		sampleCap: cfg.PixelSampleCap,
		filler:    cfg.FillerLabels,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Decode parses image bytes into a bitmap. PNG, JPEG and GIF are accepted.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, core.ErrEmptyImage
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrImageDecode, err)
	}
	logging.Debug("decoded %s image %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// ContentKey hashes the working downscale of an image together with its
// original dimensions. Identical bitmaps always collide; distinct bitmaps
// practically never do.
func ContentKey(img image.Image) string {
	scaled := downscale(img)
	h, _ := blake2b.New256(nil)
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(img.Bounds().Dx()))
	binary.LittleEndian.PutUint32(dims[4:], uint32(img.Bounds().Dy()))
	h.Write(dims[:])
	h.Write(scaled.Pix)
	return hex.EncodeToString(h.Sum(nil))
}

// Extract computes the features of one image. The report callback, when
// non-nil, is invoked as each analysis phase begins. A cached bitmap skips
// straight to the result.
func (e *Extractor) Extract(ctx context.Context, img image.Image, report func(phase string)) (*core.ImageFeatures, error) {
	if report == nil {
		report = func(string) {}
	}

	key := ContentKey(img)
	if features, ok := e.cache.Get(key); ok {
		logging.Debug("feature cache hit for %s", key[:12])
		return features, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, core.ErrVerifyCancelled
	}

	scaled := downscale(img)
	samples := samplePixels(img, e.sampleCap)

	stats := &imageStats{
		brightness:   brightness(samples),
		colorfulness: colorfulness(samples),
		edgeDensity:  edgeDensity(scaled),
		dominant:     dominantColors(samplePixels(scaled, e.sampleCap)),
	}
	stats.complexity = complexity(stats.edgeDensity, stats.colorfulness)
	stats.lineRows, stats.lineCols = linePositions(scaled)
	stats.gymColors = hasGymColors(gymColorProportions(samples))
	stats.equipmentPatterns = hasEquipmentPatterns(stats.horizontalLines(), stats.verticalLines())
	stats.gymLikely = gymLikelihood(stats.gymColors, stats.edgeDensity, stats.equipmentPatterns)

	// The three sub-analyses are pure functions of the scaled bitmap and the
	// shared stats, so they run concurrently.
	var (
		text    []string
		objects []string
		scenes  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return core.ErrVerifyCancelled
		}
		report("extracting text")
		text = textMarkers(scaled)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return core.ErrVerifyCancelled
		}
		report("detecting objects")
		objects = append(regionLabels(stats), poseLabels(scaled, stats)...)
		objects = append(objects, equipmentLabels(stats)...)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return core.ErrVerifyCancelled
		}
		report("classifying scene")
		scenes = sceneLabels(stats)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.filler {
		e.mu.Lock()
		fillerObjects, fillerScenes := fillerLabels(e.rng)
		e.mu.Unlock()
		objects = append(objects, fillerObjects...)
		scenes = append(scenes, fillerScenes...)
	}

	features := &core.ImageFeatures{
		DetectedObjects: dedup(objects),
		SceneLabels:     dedup(scenes),
		ExtractedText:   text,
		Complexity:      stats.complexity,
		Brightness:      stats.brightness,
		Colorfulness:    stats.colorfulness,
		EdgeDensity:     stats.edgeDensity,
		GymLikelihood:   stats.gymLikely,
		DominantColors:  stats.dominant,
		HorizontalLines: stats.horizontalLines(),
		VerticalLines:   stats.verticalLines(),
	}

	e.cache.Add(key, features)
	return features, nil
}

// dedup removes repeated labels, preserving first-seen order.
func dedup(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out
}
