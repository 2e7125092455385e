package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AthenaOS24/AthenaOS/internal/analysis"
	"github.com/AthenaOS24/AthenaOS/internal/observability/metrics"
	"github.com/AthenaOS24/AthenaOS/internal/responder"
	"github.com/AthenaOS24/AthenaOS/internal/session"
	"github.com/AthenaOS24/AthenaOS/pkg/logging"
)

var tracer = otel.Tracer("athenaos.chat")

const crisisReplyHeader = "I hear the pain and urgency in your words, and I'm deeply concerned for your safety. " +
	"Please know you're not alone right now.\n\n**IMMEDIATE HELP IS AVAILABLE:**\n"

const crisisReplyFooter = "\n\nI'm here to listen, but please reach out to these services immediately."

// TurnRequest is one user message addressed to a session. SessionID may be
// empty, in which case a new session is created. History optionally seeds
// the session with prior turns imported from the client.
type TurnRequest struct {
	SessionID string
	Input     string
	History   []session.Message
}

// TurnResult packages the reply with the analysis that produced it.
type TurnResult struct {
	Reply     string
	Analysis  analysis.Result
	SessionID string
	Timestamp time.Time
	WordCount int
}

// Service runs the conversation loop: analyze the turn, either short-circuit
// with a safety response or ask the responder for one, and record both sides
// in the session.
type Service struct {
	store         session.Store
	analyzer      *analysis.Analyzer
	client        responder.Client
	provider      string
	timeout       time.Duration
	historyWindow int
	logger        *logging.Logger
	metrics       *metrics.AnalysisMetrics
	now           func() time.Time

	// locks serializes whole turns per session id so two concurrent
	// requests for the same session cannot interleave their history reads
	// and appends.
	locks *session.Locker
}

// ServiceOptions configures NewService. Store, Analyzer and Client are
// required; the rest default sensibly.
type ServiceOptions struct {
	Store         session.Store
	Analyzer      *analysis.Analyzer
	Client        responder.Client
	Provider      string
	Timeout       time.Duration
	HistoryWindow int
	Logger        *logging.Logger
	Metrics       *metrics.AnalysisMetrics
	Now           func() time.Time
}

func NewService(opts ServiceOptions) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 6
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Provider == "" {
		opts.Provider = "unknown"
	}
	return &Service{
		store:         opts.Store,
		analyzer:      opts.Analyzer,
		client:        opts.Client,
		provider:      opts.Provider,
		timeout:       opts.Timeout,
		historyWindow: opts.HistoryWindow,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		now:           opts.Now,
		locks:         session.NewLocker(),
	}
}

// ProcessTurn handles one message end to end. Input rejections surface as
// errors satisfying analysis.IsInputRejected; responder failures do not fail
// the turn, they fall back to a fixed reply.
func (s *Service) ProcessTurn(ctx context.Context, req TurnRequest) (TurnResult, error) {
	ctx, span := tracer.Start(ctx, "chat.ProcessTurn")
	defer span.End()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	span.SetAttributes(attribute.String("chat.session_id", sessionID))

	s.locks.Lock(sessionID)
	defer s.locks.Unlock(sessionID)

	if len(req.History) > 0 {
		if err := s.store.Append(ctx, sessionID, req.History...); err != nil {
			return TurnResult{}, fmt.Errorf("chat: import history: %w", err)
		}
	}

	history, err := s.store.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return TurnResult{}, fmt.Errorf("chat: load history: %w", err)
	}

	result, err := s.analyzer.Analyze(ctx, req.Input, history)
	if err != nil {
		span.SetStatus(codes.Error, "input rejected")
		return TurnResult{}, err
	}

	if result.UrgencyLevel == analysis.UrgencyCrisis {
		s.metrics.ObserveTurn(metrics.OutcomeCrisis)
		reply := crisisReply(result.Resources)
		if err := s.recordTurn(ctx, sessionID, result.SanitizedInput, reply); err != nil {
			s.logger.Error("failed to record crisis turn", "error", err, "session_id", sessionID)
		}
		return s.packaged(sessionID, reply, result), nil
	}

	reply, outcome, err := s.generate(ctx, result, history)
	if err != nil {
		s.metrics.ObserveTurn(metrics.OutcomeRejected)
		span.SetStatus(codes.Error, "responder rejected")
		return TurnResult{}, fmt.Errorf("chat: %w", err)
	}
	s.metrics.ObserveTurn(outcome)

	if result.UrgencyLevel == analysis.UrgencyConcern {
		reply = appendResourceFooter(reply, result.Resources)
	}

	if err := s.recordTurn(ctx, sessionID, result.SanitizedInput, reply); err != nil {
		s.logger.Error("failed to record turn", "error", err, "session_id", sessionID)
	}
	return s.packaged(sessionID, reply, result), nil
}

// generate asks the responder for a reply under the configured timeout.
// Unavailability produces the fixed fallback text; only a vendor safety
// rejection propagates, as a distinct client-visible error.
func (s *Service) generate(ctx context.Context, result analysis.Result, history []session.Message) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	window := history
	if len(window) > s.historyWindow {
		window = window[len(window)-s.historyWindow:]
	}
	messages := make([]responder.Message, 0, len(window)+1)
	for _, m := range window {
		messages = append(messages, responder.Message{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, responder.Message{Role: responder.RoleUser, Content: result.SanitizedInput})

	start := time.Now()
	resp, err := s.client.Complete(ctx, responder.Request{
		System:      []string{BuildSystemPrompt(result)},
		Messages:    messages,
		MaxTokens:   256,
		Temperature: 0.7,
		TopP:        0.9,
	})
	latency := time.Since(start).Seconds()

	switch {
	case err == nil:
		s.metrics.ObserveResponderLatency(s.provider, "ok", latency)
		reply := strings.TrimSpace(resp.Text)
		if reply == "" {
			s.logger.Warn("responder returned empty text, using fallback")
			return FallbackReply, metrics.OutcomeFallback, nil
		}
		return reply, metrics.OutcomeNormal, nil
	case errors.Is(err, responder.ErrRejected):
		s.metrics.ObserveResponderLatency(s.provider, "rejected", latency)
		s.logger.Warn("responder rejected the prompt", "error", err)
		return "", "", err
	default:
		s.metrics.ObserveResponderLatency(s.provider, "error", latency)
		s.logger.Error("responder failed, using fallback", "error", err)
		return FallbackReply, metrics.OutcomeFallback, nil
	}
}

func (s *Service) recordTurn(ctx context.Context, sessionID, input, reply string) error {
	now := s.now().UTC()
	return s.store.Append(ctx, sessionID,
		session.Message{Role: session.RoleUser, Content: input, Timestamp: now},
		session.Message{Role: session.RoleAssistant, Content: reply, Timestamp: now},
	)
}

func (s *Service) packaged(sessionID, reply string, result analysis.Result) TurnResult {
	return TurnResult{
		Reply:     reply,
		Analysis:  result,
		SessionID: sessionID,
		Timestamp: s.now().UTC(),
		WordCount: len(strings.Fields(reply)),
	}
}

// History returns the stored turns for a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]session.Message, error) {
	return s.store.Get(ctx, sessionID)
}

// DeleteSession removes a session and its history, waiting out any turn in
// flight for it.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	s.locks.Lock(sessionID)
	err := s.store.Delete(ctx, sessionID)
	s.locks.Unlock(sessionID)
	if err == nil {
		s.locks.Forget(sessionID)
	}
	return err
}

func crisisReply(resources []string) string {
	var b strings.Builder
	b.WriteString(crisisReplyHeader)
	for i, r := range resources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + r)
	}
	b.WriteString(crisisReplyFooter)
	return b.String()
}

// appendResourceFooter attaches support resources to a reply unless the
// reply already mentions them.
func appendResourceFooter(reply string, resources []string) string {
	if len(resources) == 0 {
		return reply
	}
	for _, r := range resources {
		if strings.Contains(reply, r) {
			return reply
		}
	}
	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\nIf you'd like extra support:\n")
	for i, r := range resources {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + r)
	}
	return b.String()
}
