// Package funnel holds the scan-to-lead state machine. One controller
// runs one visitor session: image intake, remote analysis with fallback,
// a minimum-duration progress presentation, gated result disclosure and
// finally lead submission.
//
// The presentation timer and the analysis call race each other. The
// controller joins them with a single rule: the preview is shown only
// once both have settled. Every asynchronous completion carries the
// generation it was started under; a completion whose generation no
// longer matches the controller's is discarded, which is what makes the
// soft reset safe while work is in flight.
package funnel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/agencyscout/scout-funnel/internal/entity"
	"github.com/agencyscout/scout-funnel/internal/imaging"
	"github.com/agencyscout/scout-funnel/internal/usecase"
)

// Stage is the controller's current position in the funnel.
type Stage string

const (
	StageIdle           Stage = "IDLE"
	StageProcessing     Stage = "PROCESSING"
	StageAwaitingResult Stage = "AWAITING_RESULT"
	StagePreview        Stage = "PREVIEW"
	StageComplete       Stage = "COMPLETE"
)

// User-visible notices surfaced alongside a transition back to idle.
const (
	NoticeUnsupportedImage = "We couldn't read that image. Please upload a JPEG or PNG photo."
	NoticeAnalysisFailed   = "Something went wrong during the analysis. Please try again."
	NoticeServerTimeout    = "The analysis server took too long to respond. Please try again."
)

var (
	ErrNotIdle      = errors.New("funnel: a scan is already in progress")
	ErrNotInPreview = errors.New("funnel: no result to submit against")
	ErrNotQualified = errors.New("funnel: score below qualification threshold")
)

// ProcessingMessages are the rotating captions served while the
// presentation runs.
var ProcessingMessages = []string{
	"Analyzing Facial Geometry...",
	"Evaluating Symmetry...",
	"Auditing Aesthetic Markers...",
	"Cross-Referencing 2026 Trends...",
}

// Normalizer produces a transmission-ready encoded image.
type Normalizer interface {
	Normalize(raw []byte) ([]byte, error)
}

// Analyzer scores an encoded portrait. Implementations never fail; an
// unreachable service yields a synthetic result instead.
type Analyzer interface {
	Analyze(ctx context.Context, encodedImage []byte) *entity.AnalysisResult
}

// Submitter persists a validated lead with its analysis snapshot.
type Submitter interface {
	Execute(ctx context.Context, input usecase.SubmitLeadInput, snapshot entity.AnalysisResult, imageBlob []byte) (*entity.Lead, error)
}

// Config carries the product-tunable funnel policy.
type Config struct {
	QualifyThreshold int
	MinPresentation  time.Duration
	SafetyTimeout    time.Duration
}

type Controller struct {
	normalizer Normalizer
	analyzer   Analyzer
	submitter  Submitter
	clock      Clock
	cfg        Config
	logger     *slog.Logger

	mu         sync.Mutex
	stage      Stage
	generation uint64
	image      []byte // normalized portrait for the current attempt
	result     *entity.AnalysisResult
	presented  bool
	notice     string
}

func NewController(normalizer Normalizer, analyzer Analyzer, submitter Submitter, clock Clock, cfg Config, logger *slog.Logger) *Controller {
	if clock == nil {
		clock = SystemClock
	}
	return &Controller{
		normalizer: normalizer,
		analyzer:   analyzer,
		submitter:  submitter,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
		stage:      StageIdle,
	}
}

// Begin starts an attempt from a raw uploaded image. Only legal from
// idle; callers reset first to scan another face.
func (c *Controller) Begin(ctx context.Context, rawImage []byte) error {
	c.mu.Lock()
	if c.stage != StageIdle {
		c.mu.Unlock()
		return ErrNotIdle
	}
	c.generation++
	gen := c.generation
	c.stage = StageProcessing
	c.image = nil
	c.result = nil
	c.presented = false
	c.notice = ""
	c.mu.Unlock()

	c.logger.Info("scan started", "generation", gen)

	// The presentation never finishes early, whatever the network does.
	go func() {
		<-c.clock.After(c.cfg.MinPresentation)
		c.presentationElapsed(gen)
	}()

	// Defensive upper bound: if even the placeholder path never resolves,
	// the attempt is abandoned.
	go func() {
		<-c.clock.After(c.cfg.SafetyTimeout)
		c.safetyExpired(gen)
	}()

	go c.runAnalysis(ctx, gen, rawImage)

	return nil
}

func (c *Controller) runAnalysis(ctx context.Context, gen uint64, rawImage []byte) {
	encoded, err := c.normalizer.Normalize(rawImage)
	if err != nil {
		notice := NoticeAnalysisFailed
		if errors.Is(err, imaging.ErrUnsupportedFormat) {
			notice = NoticeUnsupportedImage
		}
		c.logger.Warn("normalize failed", "generation", gen, "error", err)
		c.abandon(gen, notice)
		return
	}

	c.storeImage(gen, encoded)

	// Soft cancellation: the call is not aborted on reset, its result is
	// simply discarded on arrival.
	result := c.analyzer.Analyze(ctx, encoded)
	c.resultArrived(gen, result)
}

func (c *Controller) storeImage(gen uint64, encoded []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.image = encoded
}

func (c *Controller) presentationElapsed(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.presented = true
	if c.stage != StageProcessing {
		return
	}
	c.stage = StageAwaitingResult
	if c.result != nil {
		c.applyResultLocked()
	}
}

func (c *Controller) resultArrived(gen uint64, result *entity.AnalysisResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("stale analysis result discarded", "generation", gen)
		return
	}
	if c.stage != StageProcessing && c.stage != StageAwaitingResult {
		return
	}
	if result == nil || result.Failed() {
		c.logger.Warn("analysis reported failure", "generation", gen)
		c.resetLocked(NoticeAnalysisFailed)
		return
	}
	c.result = result
	if c.presented {
		c.applyResultLocked()
	}
}

// applyResultLocked moves a settled attempt into preview. Callers hold
// the mutex and have verified both completions.
func (c *Controller) applyResultLocked() {
	c.stage = StagePreview
	c.logger.Info("preview ready",
		"generation", c.generation,
		"score", c.result.SuitabilityScore,
		"synthetic", c.result.Synthetic,
	)
}

func (c *Controller) safetyExpired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if c.stage != StageProcessing && c.stage != StageAwaitingResult {
		return
	}
	c.logger.Error("attempt abandoned by safety timeout", "generation", gen)
	c.resetLocked(NoticeServerTimeout)
}

func (c *Controller) abandon(gen uint64, notice string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.resetLocked(notice)
}

// Reset returns the funnel to idle from any stage. Cancellation is soft:
// pending completions are invalidated by the generation bump, not
// aborted.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked("")
}

func (c *Controller) resetLocked(notice string) {
	c.generation++
	c.stage = StageIdle
	c.image = nil
	c.result = nil
	c.presented = false
	c.notice = notice
}

// Submit runs the lead submission for the current preview. Only a
// qualifying result offers a submission path; non-qualifying previews
// are retry-only. A duplicate or validation failure leaves the stage
// untouched so the visitor can correct the form inline.
func (c *Controller) Submit(ctx context.Context, input usecase.SubmitLeadInput) (*entity.Lead, error) {
	c.mu.Lock()
	if c.stage != StagePreview || c.result == nil {
		c.mu.Unlock()
		return nil, ErrNotInPreview
	}
	if !c.result.Qualifies(c.cfg.QualifyThreshold) {
		c.mu.Unlock()
		return nil, ErrNotQualified
	}
	gen := c.generation
	snapshot := *c.result
	image := c.image
	c.mu.Unlock()

	// The store round-trips happen outside the lock so the reset control
	// stays responsive during submission.
	lead, err := c.submitter.Execute(ctx, input, snapshot, image)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.generation && c.stage == StagePreview {
		c.stage = StageComplete
	}
	return lead, nil
}

// Stage reports the current stage.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Generation reports the current attempt generation. Mostly useful in
// tests asserting stale completions are discarded.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
