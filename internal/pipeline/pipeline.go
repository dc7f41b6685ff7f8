package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/triaged/internal/analysis"
	"github.com/fyrsmithlabs/triaged/internal/audit"
	"github.com/fyrsmithlabs/triaged/internal/classify"
	"github.com/fyrsmithlabs/triaged/internal/config"
	"github.com/fyrsmithlabs/triaged/internal/feedback"
	"github.com/fyrsmithlabs/triaged/internal/priority"
	"github.com/fyrsmithlabs/triaged/internal/quality"
	"github.com/fyrsmithlabs/triaged/internal/techdetect"
	"github.com/fyrsmithlabs/triaged/internal/ticket"
)

// SkipReasonLowConfidence is recorded on results skipped by the
// skip_low_confidence_items processing rule.
const SkipReasonLowConfidence = "low_confidence"

// ItemResult is the per-item outcome of a batch. Exactly one of Ticket,
// SkipReason, or Err is meaningful.
type ItemResult struct {
	Item       feedback.Item
	Ticket     *feedback.Ticket
	SkipReason string
	Err        error
}

// Processed reports whether the item produced a ticket.
func (r ItemResult) Processed() bool { return r.Ticket != nil }

// BatchResult is the outcome of one ProcessBatch call.
type BatchResult struct {
	SessionID string
	Results   []ItemResult
	Succeeded int
	Failed    int
	Skipped   int
}

// Tickets returns the produced tickets in input order.
func (b BatchResult) Tickets() []*feedback.Ticket {
	out := make([]*feedback.Ticket, 0, len(b.Results))
	for _, r := range b.Results {
		if r.Ticket != nil {
			out = append(out, r.Ticket)
		}
	}
	return out
}

// Orchestrator runs the seven triage stages. Stage components that depend on
// agent settings are rebuilt from a pinned config snapshot per batch, so a
// live config update takes effect at the next batch boundary and never
// mid-batch.
type Orchestrator struct {
	classifier classify.Classifier
	scorer     *priority.Scorer
	extractor  *techdetect.Extractor
	assembler  *ticket.Assembler
	store      *config.Store
	log        *audit.Log
	logger     *zap.Logger
}

// New creates an orchestrator.
func New(classifier classify.Classifier, store *config.Store, log *audit.Log, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		classifier: classifier,
		scorer:     priority.NewScorer(),
		extractor:  techdetect.NewExtractor(),
		assembler:  ticket.NewAssembler(),
		store:      store,
		log:        log,
		logger:     logger.Named("pipeline"),
	}
}

// ProcessItem triages a single item under a fresh session ID.
func (o *Orchestrator) ProcessItem(ctx context.Context, item feedback.Item) (*feedback.Ticket, error) {
	res := o.processItem(ctx, o.store.Snapshot(), uuid.NewString(), item)
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Ticket == nil {
		return nil, fmt.Errorf("item %s skipped: %s", item.SourceID, res.SkipReason)
	}
	return res.Ticket, nil
}

// ProcessBatch triages items with min(BatchSize, len(items)) workers. Results
// are returned in input order; one failing item never blocks the rest.
func (o *Orchestrator) ProcessBatch(ctx context.Context, items []feedback.Item) BatchResult {
	start := time.Now()
	cfg := o.store.Snapshot()
	sessionID := uuid.NewString()

	batch := BatchResult{
		SessionID: sessionID,
		Results:   make([]ItemResult, len(items)),
	}
	if len(items) == 0 {
		o.log.Append(audit.SessionSummary(sessionID, 0, 0, elapsedMS(start)))
		return batch
	}

	workers := cfg.ProcessingRules.BatchSize
	if workers < 1 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	o.logger.Info("batch started",
		zap.String("session_id", sessionID),
		zap.Int("items", len(items)),
		zap.Int("workers", workers),
	)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				batch.Results[i] = o.processItem(ctx, cfg, sessionID, items[i])
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, r := range batch.Results {
		switch {
		case r.Err != nil:
			batch.Failed++
		case r.Ticket != nil:
			batch.Succeeded++
		default:
			batch.Skipped++
		}
	}

	o.log.Append(audit.SessionSummary(sessionID, len(items), batch.Succeeded, elapsedMS(start)))
	o.logger.Info("batch finished",
		zap.String("session_id", sessionID),
		zap.Int("succeeded", batch.Succeeded),
		zap.Int("failed", batch.Failed),
		zap.Int("skipped", batch.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return batch
}

// processItem runs the seven stages for one item against a pinned config
// snapshot. Every stage appends exactly one audit entry.
func (o *Orchestrator) processItem(ctx context.Context, cfg *config.Config, sessionID string, item feedback.Item) ItemResult {
	res := ItemResult{Item: item}

	// Stage 1: classification.
	stageStart := time.Now()
	cctx, cancel := context.WithTimeout(ctx, cfg.AgentSettings.ClassificationTimeoutDuration())
	cls, err := o.classifier.Classify(cctx, item.Text)
	cancel()
	if err != nil {
		o.log.Append(audit.StageFailure(sessionID, item, audit.StageClassification, err, elapsedMS(stageStart)))
		ItemFailures.Inc()
		o.logger.Warn("classification failed",
			zap.String("source_id", item.SourceID), zap.Error(err))
		res.Err = fmt.Errorf("classify item %s: %w", item.SourceID, err)
		return res
	}
	observe(audit.StageClassification, stageStart)
	o.log.Append(audit.Classification(sessionID, item, cls.Category, cls.Confidence, elapsedMS(stageStart)))
	ItemsProcessed.WithLabelValues(string(cls.Category)).Inc()

	if cfg.ProcessingRules.SkipLowConfidenceItems && cls.Category == feedback.CategoryUncertain {
		ItemsSkipped.WithLabelValues(SkipReasonLowConfidence).Inc()
		res.SkipReason = SkipReasonLowConfidence
		return res
	}

	// Stage 2: bug analysis.
	stageStart = time.Now()
	bugs := analysis.NewBugAnalyzer(o.extractor, o.scorer, cfg.AgentSettings.EnableBugAnalysis)
	bugRes := bugs.Analyze(item.Text, cls.Category)
	observe(audit.StageBugAnalysis, stageStart)
	o.log.Append(audit.BugAnalysis(sessionID, item,
		bugRes.IsBug, bugRes.Severity, bugRes.Priority, bugRes.ReproductionSteps, elapsedMS(stageStart)))

	// Stage 3: feature analysis.
	stageStart = time.Now()
	features := analysis.NewFeatureAnalyzer(o.scorer, cfg.AgentSettings.EnableFeatureExtraction)
	featRes := features.Analyze(item.Text, cls.Category)
	observe(audit.StageFeatureAnalysis, stageStart)
	o.log.Append(audit.FeatureAnalysis(sessionID, item,
		featRes.IsFeature, featRes.Impact, featRes.Complexity, featRes.UserBenefit, elapsedMS(stageStart)))

	// Stage 4: priority.
	stageStart = time.Now()
	prio := o.scorer.Score(item.Text, cls.Category)
	observe(audit.StagePriority, stageStart)
	o.log.Append(audit.PriorityDecision(sessionID, item, cls.Category, prio, elapsedMS(stageStart)))

	// Stage 5: technical extraction.
	stageStart = time.Now()
	details := techdetect.NoDetails
	if cfg.AgentSettings.EnableTechnicalExtraction {
		details = o.extractor.Extract(item.Text)
	}
	observe(audit.StageTechnical, stageStart)
	o.log.Append(audit.TechnicalExtraction(sessionID, item, details, techdetect.HasDetails(details), elapsedMS(stageStart)))

	// Stage 6: ticket assembly.
	stageStart = time.Now()
	t := o.assembler.Assemble(ticket.Inputs{
		Item:             item,
		Classification:   cls,
		Priority:         prio,
		TechnicalDetails: details,
		Bug:              bugRes,
		Feature:          featRes,
	})
	observe(audit.StageTicketCreation, stageStart)
	o.log.Append(audit.TicketCreation(sessionID, item, t.Title, cls.Category, prio, elapsedMS(stageStart)))
	TicketsCreated.WithLabelValues(string(prio)).Inc()

	// Stage 7: quality review.
	stageStart = time.Now()
	reviewer := quality.NewReviewer(cfg.AgentSettings.EnableQualityReview)
	assessment := reviewer.Review(t)
	t.QualityScore = assessment.Score
	t.QualityIssues = assessment.Issues
	t.ReviewStatus = assessment.Status
	observe(audit.StageQualityReview, stageStart)
	o.log.Append(audit.QualityReview(sessionID, item,
		assessment.Score, string(assessment.Status), assessment.Issues, elapsedMS(stageStart)))

	res.Ticket = t
	return res
}

func observe(stage audit.Stage, start time.Time) {
	StageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
}

func elapsedMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
