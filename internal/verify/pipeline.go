// Package verify runs the full evidence pipeline: lexical analysis and
// context resolution of the task, feature extraction of the photo, evidence
// matching and feedback rendering.
package verify

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/prooflens/prooflens/internal/core"
	"github.com/prooflens/prooflens/internal/feedback"
	"github.com/prooflens/prooflens/internal/lexical"
	"github.com/prooflens/prooflens/internal/logging"
	"github.com/prooflens/prooflens/internal/match"
	"github.com/prooflens/prooflens/internal/taskctx"
	"github.com/prooflens/prooflens/internal/vision"
)

// Progress is one progress event of a running verification.
type Progress struct {
	Phase    string  `json:"phase"`
	Fraction float64 `json:"fraction"`
}

// ProgressFunc receives progress events. Fractions never decrease across the
// events of one verification.
type ProgressFunc func(Progress)

// Result is the terminal outcome of one verification. Every call that is not
// cancelled produces a definite result; an unreadable image yields a
// failed-closed result rather than an error.
type Result struct {
	Status          core.VerificationStatus
	Completed       bool
	Confidence      float64
	Feedback        string
	MatchedElements []string
	Features        *core.ImageFeatures
	Context         core.TaskContext
	ImageHash       string
}

// Pipeline wires the five analysis stages together.
type Pipeline struct {
	resolver  *taskctx.Resolver
	extractor *vision.Extractor
	matcher   *match.Matcher
	generator *feedback.Generator
}

// Config for the pipeline. Nil fields fall back to defaults.
type Config struct {
	Analyzer  *lexical.Analyzer
	Extractor *vision.Extractor
}

// NewPipeline creates a verification pipeline
func NewPipeline(cfg Config) *Pipeline {
	if cfg.Analyzer == nil {
		cfg.Analyzer = lexical.NewAnalyzer(lexical.DefaultConfig())
	}
	if cfg.Extractor == nil {
		cfg.Extractor = vision.NewExtractor(vision.DefaultConfig())
	}
	return &Pipeline{
		resolver:  taskctx.NewResolver(cfg.Analyzer),
		extractor: cfg.Extractor,
		matcher:   match.NewMatcher(),
		generator: feedback.NewGenerator(),
	}
}

// phaseFractions fixes the progress fraction reported as each phase begins.
var phaseFractions = map[string]float64{
	"decoding image":              0.05,
	"extracting text":             0.20,
	"detecting objects":           0.35,
	"classifying scene":           0.50,
	"analyzing task requirements": 0.60,
	"matching evidence":           0.80,
	"generating feedback":         0.90,
	"complete":                    1.00,
}

// reporter serializes progress events and keeps the fraction monotonic even
// when concurrent stages report out of order.
type reporter struct {
	mu   sync.Mutex
	last float64
	fn   ProgressFunc
}

func (r *reporter) phase(name string) {
	if r.fn == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fraction := phaseFractions[name]
	if fraction < r.last {
		fraction = r.last
	}
	r.last = fraction
	// Delivered under the lock so observers never see fractions regress.
	r.fn(Progress{Phase: name, Fraction: fraction})
}

// Verify runs the whole pipeline for one task and image. The only error it
// returns is cancellation; an undecodable image fails closed into the result.
func (p *Pipeline) Verify(ctx context.Context, task core.TaskDescriptor, imageData []byte, onProgress ProgressFunc) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.ErrVerifyCancelled
	}

	rep := &reporter{fn: onProgress}
	rep.phase("decoding image")

	img, err := vision.Decode(imageData)
	if err != nil {
		logging.Warn("verification failed closed on decode: %v", err)
		rep.phase("complete")
		return &Result{
			Status:    core.StatusImageFailed,
			Completed: false,
			Feedback:  feedback.DecodeFailure,
		}, nil
	}

	// Task analysis and image analysis depend on disjoint inputs; run them
	// concurrently and join before matching.
	var (
		taskContext core.TaskContext
		features    *core.ImageFeatures
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return core.ErrVerifyCancelled
		}
		rep.phase("analyzing task requirements")
		taskContext = p.resolver.Determine(task)
		return nil
	})
	g.Go(func() error {
		var err error
		features, err = p.extractor.Extract(gctx, img, rep.phase)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, core.ErrVerifyCancelled) || ctx.Err() != nil {
			return nil, core.ErrVerifyCancelled
		}
		return nil, err
	}

	rep.phase("matching evidence")
	matchResult := p.matcher.Match(taskContext, features)

	rep.phase("generating feedback")
	message := p.generator.Generate(taskContext, matchResult)

	status := core.StatusNotVerified
	if matchResult.IsCompleted {
		status = core.StatusVerified
	}

	rep.phase("complete")
	logging.Debug("verification done: completed=%v confidence=%.2f", matchResult.IsCompleted, matchResult.Confidence)

	return &Result{
		Status:          status,
		Completed:       matchResult.IsCompleted,
		Confidence:      matchResult.Confidence,
		Feedback:        message,
		MatchedElements: matchResult.MatchedElements,
		Features:        features,
		Context:         taskContext,
		ImageHash:       vision.ContentKey(img),
	}, nil
}
