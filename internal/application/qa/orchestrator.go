package qa

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leaselens/leaselens/internal/application/semcache"
	"github.com/leaselens/leaselens/internal/domain/lease"
	"github.com/leaselens/leaselens/internal/infrastructure/ai"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/prometheus"
	"github.com/leaselens/leaselens/pkg/errors"
	ltypes "github.com/leaselens/leaselens/pkg/types/lease"
)

// State names the terminal state of one question.
type State string

const (
	StateNoContext    State = "no_context"
	StateCacheHit     State = "cache_hit"
	StateComputeFresh State = "compute_fresh"
)

// FallbackNoContext is returned, without calling the LLM, when no analysis
// exists for the lease.
const FallbackNoContext = "I don't have an analysis for this lease yet. " +
	"Please upload and analyze the lease document first, then ask your question again."

// Disclaimer is appended to every fresh LLM answer.
const Disclaimer = "\n\n---\nThis is educational information about NYC housing law, not legal advice. " +
	"For advice about your specific situation, consult a licensed attorney or a tenant assistance organization."

// Answer is the orchestrator's response to one question.
type Answer struct {
	LeaseID string `json:"leaseId"`
	Text    string `json:"answer"`
	State   State  `json:"state"`
}

// Options tunes the orchestrator.
type Options struct {
	MaxTurns int
	TTL      time.Duration
}

// Orchestrator answers questions about analyzed leases. Per question it
// resolves the stored analysis, consults the semantic cache, and only then
// calls the LLM. LLM failures are the one error class that propagates;
// history and cache write failures degrade to log lines.
type Orchestrator struct {
	analyses      lease.AnalysisRepository
	conversations lease.ConversationRepository
	cache         *semcache.Cache
	completer     ai.Completer
	opts          Options
	logger        logging.Logger
	metrics       *prometheus.Collector
	inflight      singleflight.Group
}

// NewOrchestrator wires an Orchestrator. cache may be nil.
func NewOrchestrator(
	analyses lease.AnalysisRepository,
	conversations lease.ConversationRepository,
	cache *semcache.Cache,
	completer ai.Completer,
	opts Options,
	logger logging.Logger,
	metrics *prometheus.Collector,
) *Orchestrator {
	if opts.MaxTurns < 2 {
		opts.MaxTurns = 20
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &Orchestrator{
		analyses:      analyses,
		conversations: conversations,
		cache:         cache,
		completer:     completer,
		opts:          opts,
		logger:        logger.Named("qa"),
		metrics:       metrics,
	}
}

// Ask answers one question about the given lease on behalf of userID.
func (o *Orchestrator) Ask(ctx context.Context, leaseID, userID, question string) (*Answer, error) {
	if leaseID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "leaseId is required")
	}
	if strings.TrimSpace(question) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "question is empty")
	}

	log := o.logger.With(
		logging.String("lease_id", leaseID),
		logging.String("user_id", userID))

	analysis, err := o.analyses.Get(ctx, leaseID)
	if err != nil {
		if !errors.IsNotFound(err) {
			// degraded store reads map to the no-context path as well
			log.Warn("analysis lookup failed", logging.Err(err))
		}
		o.appendHistory(ctx, log, leaseID, userID, question, FallbackNoContext)
		return &Answer{LeaseID: leaseID, Text: FallbackNoContext, State: StateNoContext}, nil
	}

	cacheReq := o.cacheRequest(leaseID, question, analysis)
	if o.cache != nil {
		if cached, ok := o.cache.Get(ctx, cacheReq); ok {
			log.Debug("answer served from cache")
			return &Answer{LeaseID: leaseID, Text: cached, State: StateCacheHit}, nil
		}
	}

	text, err := o.computeFresh(ctx, log, cacheReq, analysis, leaseID, userID, question)
	if err != nil {
		return nil, err
	}
	return &Answer{LeaseID: leaseID, Text: text, State: StateComputeFresh}, nil
}

// History returns the stored conversation for a lease and user.
func (o *Orchestrator) History(ctx context.Context, leaseID, userID string) (*lease.Conversation, error) {
	if leaseID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "leaseId is required")
	}
	return o.conversations.Get(ctx, leaseID, userID)
}

// cacheRequest keys the cache over question, lease and the analysis shape,
// so re-analysis naturally misses stale answers.
func (o *Orchestrator) cacheRequest(leaseID, question string, analysis *lease.AnalysisResult) semcache.Request {
	contextIDs := make([]string, 0, len(analysis.Violations))
	for _, v := range analysis.Violations {
		contextIDs = append(contextIDs, v.ClauseID)
	}
	return semcache.Request{
		Query:   question,
		LeaseID: leaseID,
		Context: contextIDs,
	}
}

func (o *Orchestrator) computeFresh(
	ctx context.Context,
	log logging.Logger,
	cacheReq semcache.Request,
	analysis *lease.AnalysisResult,
	leaseID, userID, question string,
) (string, error) {
	// collapse concurrent identical questions into one LLM call
	key := semcache.Key(cacheReq)
	value, err, _ := o.inflight.Do(key, func() (interface{}, error) {
		history := o.loadHistory(ctx, log, leaseID, userID)
		messages := buildMessages(analysis, history, question)

		start := time.Now()
		raw, err := o.completer.Complete(ctx, messages)
		o.metrics.LLMDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			o.metrics.LLMRequests.WithLabelValues("error").Inc()
			return "", errors.Wrap(err, errors.ErrCodeLLMUnavailable, "answer question")
		}
		o.metrics.LLMRequests.WithLabelValues("ok").Inc()

		text := raw + Disclaimer
		if o.cache != nil {
			o.cache.Put(ctx, cacheReq, text)
		}
		o.appendHistory(ctx, log, leaseID, userID, question, text)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

func (o *Orchestrator) loadHistory(ctx context.Context, log logging.Logger, leaseID, userID string) []lease.Turn {
	conv, err := o.conversations.Get(ctx, leaseID, userID)
	if err != nil {
		log.Warn("history lookup failed", logging.Err(err))
		return nil
	}
	return conv.Turns
}

// appendHistory is best effort: a failed write loses history, never the
// answer.
func (o *Orchestrator) appendHistory(ctx context.Context, log logging.Logger, leaseID, userID, question, answer string) {
	now := time.Now().UTC()
	turns := []lease.Turn{
		{Role: ltypes.RoleUser, Content: question, Timestamp: now},
		{Role: ltypes.RoleAssistant, Content: answer, Timestamp: now},
	}
	if err := o.conversations.Append(ctx, leaseID, userID, turns, o.opts.MaxTurns, o.opts.TTL); err != nil {
		log.Warn("history append failed", logging.Err(err))
	}
}
