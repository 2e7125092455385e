package analysis

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AthenaOS24/AthenaOS/internal/observability/metrics"
	"github.com/AthenaOS24/AthenaOS/internal/session"
	"github.com/AthenaOS24/AthenaOS/pkg/logging"
)

var tracer = otel.Tracer("athenaos.analysis")

// Analyzer runs the per-turn analysis pass: sanitize, moderate, detect
// urgency, classify, pick an intervention, and scan history for repetition.
type Analyzer struct {
	sanitizer     *Sanitizer
	rules         *RuleSet
	moderation    ModerationClassifier
	sentiment     SentimentClassifier
	emotion       EmotionClassifier
	interventions *InterventionSelector
	logger        *logging.Logger
	metrics       *metrics.AnalysisMetrics
}

// AnalyzerOptions carries the collaborators for NewAnalyzer. Rules, Logger
// and Metrics may be nil; classifiers and the selector are required.
type AnalyzerOptions struct {
	Sanitizer     *Sanitizer
	Rules         *RuleSet
	Moderation    ModerationClassifier
	Sentiment     SentimentClassifier
	Emotion       EmotionClassifier
	Interventions *InterventionSelector
	Logger        *logging.Logger
	Metrics       *metrics.AnalysisMetrics
}

func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	if opts.Sanitizer == nil {
		opts.Sanitizer = NewSanitizer(true)
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRules()
	}
	if opts.Interventions == nil {
		opts.Interventions = NewInterventionSelector(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	return &Analyzer{
		sanitizer:     opts.Sanitizer,
		rules:         opts.Rules,
		moderation:    opts.Moderation,
		sentiment:     opts.Sentiment,
		emotion:       opts.Emotion,
		interventions: opts.Interventions,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}
}

// Analyze runs the full pass over one input turn. It returns ErrEmptyInput
// when nothing survives sanitization and ErrHarmfulInput when moderation
// blocks the turn; classifier failures never fail the pass, they degrade it.
func (a *Analyzer) Analyze(ctx context.Context, input string, history []session.Message) (Result, error) {
	ctx, span := tracer.Start(ctx, "analysis.Analyze")
	defer span.End()
	start := time.Now()
	defer func() {
		a.metrics.ObserveAnalysisDuration(time.Since(start).Seconds())
	}()

	sanitized := a.sanitizer.Sanitize(input)
	if sanitized == "" {
		a.metrics.ObserveTurn(metrics.OutcomeRejected)
		return Result{}, ErrEmptyInput
	}
	lowered := strings.ToLower(sanitized)

	mod := a.moderation.Moderate(ctx, sanitized)
	if mod.Degraded {
		a.logger.Warn("moderation degraded, input allowed through unscreened")
		a.metrics.ObserveDegraded("moderation")
	}
	if mod.Harmful {
		span.SetAttributes(attribute.Bool("analysis.harmful", true))
		a.metrics.ObserveTurn(metrics.OutcomeRejected)
		return Result{IsHarmful: true, SanitizedInput: sanitized}, ErrHarmfulInput
	}

	urgency, rule := a.rules.DetectUrgency(lowered)
	if urgency != UrgencyNone {
		span.SetAttributes(
			attribute.String("analysis.urgency", string(urgency)),
			attribute.String("analysis.rule", rule),
		)
	}

	var (
		sent        SentimentResult
		emo         EmotionResult
		distortions []string
		repetitive  []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sent = a.sentiment.Sentiment(gctx, sanitized)
		return nil
	})
	g.Go(func() error {
		emo = a.emotion.Emotions(gctx, sanitized)
		return nil
	})
	g.Go(func() error {
		distortions = a.rules.DetectDistortions(lowered)
		return nil
	})
	g.Go(func() error {
		repetitive = DetectRepetition(history)
		return nil
	})
	_ = g.Wait() // classifiers report failure through Degraded, never error

	if sent.Degraded {
		a.metrics.ObserveDegraded("sentiment")
	}
	if emo.Degraded {
		a.metrics.ObserveDegraded("emotion")
	}

	result := Result{
		Sentiment:      sent.Sentiment,
		Emotions:       emo.Emotions,
		UrgencyLevel:   urgency,
		SanitizedInput: sanitized,
		CBT: CBTAnalysis{
			Patterns:           distortions,
			Intervention:       a.interventions.Select(distortions, emo.Emotions),
			RepetitivePatterns: repetitive,
		},
	}
	if mod.Degraded {
		result.DegradedStages = append(result.DegradedStages, "moderation")
	}
	if sent.Degraded {
		result.DegradedStages = append(result.DegradedStages, "sentiment")
	}
	if emo.Degraded {
		result.DegradedStages = append(result.DegradedStages, "emotion")
	}

	// Urgency overrides the sentiment label so downstream consumers see one
	// consistent severity signal.
	switch urgency {
	case UrgencyCrisis:
		result.Sentiment.Label = "crisis"
		result.Resources = ResourcesFor(UrgencyCrisis)[:2]
	case UrgencyConcern:
		result.Sentiment.Label = "concern"
		result.Resources = ResourcesFor(UrgencyConcern)[:3]
	}

	// With every signal source down and no rule hit there is nothing to
	// vouch for the turn being low-risk, so it is held at concern.
	if urgency == UrgencyNone && mod.Degraded && sent.Degraded && emo.Degraded {
		a.logger.Warn("all classifiers degraded, holding turn at concern")
		result.UrgencyLevel = UrgencyConcern
		result.Sentiment.Label = "concern"
		result.Resources = ResourcesFor(UrgencyConcern)[:3]
	}

	span.SetAttributes(
		attribute.String("analysis.sentiment", result.Sentiment.Label),
		attribute.Int("analysis.distortions", len(distortions)),
	)
	a.logTurn(span, result)
	return result, nil
}

func (a *Analyzer) logTurn(span trace.Span, result Result) {
	a.logger.Info("analysis complete",
		"trace_id", span.SpanContext().TraceID().String(),
		"sentiment", result.Sentiment.Label,
		"urgency", string(result.UrgencyLevel),
		"distortions", result.CBT.Patterns,
		"degraded", result.DegradedStages,
	)
}
