package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/observability"
	"github.com/jcarlosmelian/promtscp/internal/repository"
	"github.com/jcarlosmelian/promtscp/internal/scoring"
	"github.com/jcarlosmelian/promtscp/internal/session"
)

// staleEvaluationGrace is how long past its delay a stored pending
// evaluation without a running task is still honoured.
const staleEvaluationGrace = 30 * time.Second

// DefaultScoringDelay is how long a simulated evaluation "thinks".
const DefaultScoringDelay = 700 * time.Millisecond

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEvaluationPending rejects intents while an evaluation is running.
	ErrEvaluationPending = session.ErrEvaluationPending
)

// SessionService drives walkthrough sessions. Every intent on a session is
// serialised; intents on different sessions run concurrently.
type SessionService interface {
	Create(ctx context.Context) (dto.SessionView, error)
	Get(ctx context.Context, id string) (dto.SessionView, error)
	End(ctx context.Context, id string) error
	AdvanceStage(ctx context.Context, id string) (dto.SessionView, error)
	RevealBasicPrompt(ctx context.Context, id string) (dto.SessionView, error)
	SelectTask(ctx context.Context, id string, req dto.SelectTaskRequest) (dto.SessionView, error)
	ResetSequence(ctx context.Context, id string) (dto.SessionView, error)
	CheckSequence(ctx context.Context, id string) (dto.SessionView, error)
	AnswerPrinciple(ctx context.Context, id string, req dto.AnswerPrincipleRequest) (dto.SessionView, error)
	AdvancePrinciple(ctx context.Context, id string) (dto.SessionView, error)
	ToggleEnhancement(ctx context.Context, id string, req dto.ToggleEnhancementRequest) (dto.SessionView, error)
	SimulateEvaluation(ctx context.Context, id string) (dto.SessionView, error)
	AdvanceCursor(ctx context.Context, id string) (dto.SessionView, error)
	AwaitEvaluation(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (<-chan dto.SessionView, func(), error)
	Close()
}

// SessionServiceConfig tunes a SessionService.
type SessionServiceConfig struct {
	ScoringDelay  time.Duration
	ExpertEnabled bool
	// Shuffler randomises task order; nil uses the process-wide source.
	Shuffler session.Shuffler
	Now      func() time.Time
}

type evaluationTask struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type sessionService struct {
	repo      repository.SessionRepository
	catalog   *catalog.Catalog
	publisher ChoicePublisher
	validator *validator.Validate
	hub       *viewHub
	logger    zerolog.Logger
	tracer    trace.Tracer
	cfg       SessionServiceConfig

	locksMu sync.Mutex
	locks   map[string]*sessionLock

	shuffleMu sync.Mutex

	evalMu sync.Mutex
	evals  map[string]*evaluationTask
	wg     sync.WaitGroup

	baseCtx    context.Context
	baseCancel context.CancelFunc
}

// NewSessionService creates a session service over repo and the read-only catalogue.
func NewSessionService(repo repository.SessionRepository, cat *catalog.Catalog, publisher ChoicePublisher, validate *validator.Validate, cfg SessionServiceConfig, logger zerolog.Logger) SessionService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ScoringDelay < 0 {
		cfg.ScoringDelay = DefaultScoringDelay
	}
	if validate == nil {
		validate = validator.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &sessionService{
		repo:       repo,
		catalog:    cat,
		publisher:  publisher,
		validator:  validate,
		hub:        newViewHub(logger),
		logger:     logger.With().Str("component", "session_service").Logger(),
		tracer:     otel.Tracer("github.com/jcarlosmelian/promtscp/internal/service/session"),
		cfg:        cfg,
		locks:      make(map[string]*sessionLock),
		evals:      make(map[string]*evaluationTask),
		baseCtx:    ctx,
		baseCancel: cancel,
	}
}

func (s *sessionService) Create(ctx context.Context) (dto.SessionView, error) {
	id := uuid.NewString()

	s.shuffleMu.Lock()
	st := session.New(id, s.catalog, s.cfg.Shuffler, s.cfg.Now().UTC())
	s.shuffleMu.Unlock()

	if err := s.repo.Save(ctx, st); err != nil {
		return dto.SessionView{}, fmt.Errorf("create session: %w", err)
	}

	observability.SessionsCreated().Inc()
	observability.SessionsActive().Inc()
	s.logger.Info().Str("session_id", id).Msg("session started")
	return s.view(st), nil
}

func (s *sessionService) Get(ctx context.Context, id string) (dto.SessionView, error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return dto.SessionView{}, err
	}
	return s.view(st), nil
}

func (s *sessionService) End(ctx context.Context, id string) error {
	unlock := s.lockSession(id)
	defer unlock()

	s.cancelEvaluation(id)
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return fmt.Errorf("end session: %w", err)
	}

	s.hub.closeSession(id)

	observability.SessionsActive().Dec()
	s.logger.Info().Str("session_id", id).Msg("session ended")
	return nil
}

func (s *sessionService) AdvanceStage(ctx context.Context, id string) (dto.SessionView, error) {
	return s.mutate(ctx, id, "advance_stage", func(st *session.State) error {
		return session.Advance(st)
	})
}

func (s *sessionService) RevealBasicPrompt(ctx context.Context, id string) (dto.SessionView, error) {
	return s.mutate(ctx, id, "reveal_basic_prompt", func(st *session.State) error {
		return session.RevealBasicPrompt(st)
	})
}

func (s *sessionService) SelectTask(ctx context.Context, id string, req dto.SelectTaskRequest) (dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionView{}, err
	}
	return s.mutate(ctx, id, "select_task", func(st *session.State) error {
		return session.SelectTask(st, req.TaskID)
	})
}

func (s *sessionService) ResetSequence(ctx context.Context, id string) (dto.SessionView, error) {
	return s.mutate(ctx, id, "reset_sequence", func(st *session.State) error {
		s.shuffleMu.Lock()
		defer s.shuffleMu.Unlock()
		return session.ResetSequence(st, s.catalog, s.cfg.Shuffler)
	})
}

func (s *sessionService) CheckSequence(ctx context.Context, id string) (dto.SessionView, error) {
	var choice models.PlayerChoice
	view, err := s.mutate(ctx, id, "check_sequence", func(st *session.State) error {
		var err error
		_, choice, err = session.CheckSequence(st, s.catalog)
		return err
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	s.publisher.Publish(ctx, choice)
	return view, nil
}

func (s *sessionService) AnswerPrinciple(ctx context.Context, id string, req dto.AnswerPrincipleRequest) (dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionView{}, err
	}
	var choice models.PlayerChoice
	view, err := s.mutate(ctx, id, "answer_principle", func(st *session.State) error {
		var err error
		_, choice, err = session.AnswerPrinciple(st, s.catalog, models.Answer(req.Answer))
		return err
	})
	if err != nil {
		return dto.SessionView{}, err
	}
	s.publisher.Publish(ctx, choice)
	return view, nil
}

func (s *sessionService) AdvancePrinciple(ctx context.Context, id string) (dto.SessionView, error) {
	return s.mutate(ctx, id, "advance_principle", func(st *session.State) error {
		return session.AdvancePrinciple(st, s.catalog)
	})
}

func (s *sessionService) ToggleEnhancement(ctx context.Context, id string, req dto.ToggleEnhancementRequest) (dto.SessionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.SessionView{}, err
	}
	return s.mutate(ctx, id, "toggle_enhancement", func(st *session.State) error {
		return session.ToggleEnhancement(st, s.catalog, req.ChoiceID)
	})
}

func (s *sessionService) SimulateEvaluation(ctx context.Context, id string) (dto.SessionView, error) {
	var (
		task   *evaluationTask
		input  scoring.Input
		choice models.PlayerChoice
	)
	view, err := s.mutate(ctx, id, "simulate_evaluation", func(st *session.State) error {
		reserved, err := s.reserveEvaluation(id)
		if err != nil {
			return err
		}
		input, choice, err = session.BeginEvaluation(st, s.catalog, s.cfg.Now().UTC())
		if err != nil {
			s.discardEvaluation(id, reserved)
			return err
		}
		task = reserved
		return nil
	})
	if err != nil {
		if task != nil {
			s.discardEvaluation(id, task)
		}
		return dto.SessionView{}, err
	}

	s.publisher.Publish(ctx, choice)
	s.wg.Add(1)
	go s.runEvaluation(id, task, input)
	return view, nil
}

func (s *sessionService) AdvanceCursor(ctx context.Context, id string) (dto.SessionView, error) {
	return s.mutate(ctx, id, "advance_cursor", func(st *session.State) error {
		return session.AdvanceCursor(st, s.catalog)
	})
}

// AwaitEvaluation blocks until the pending evaluation of id, if any, has
// been applied or cancelled.
func (s *sessionService) AwaitEvaluation(ctx context.Context, id string) error {
	s.evalMu.Lock()
	task := s.evals[id]
	s.evalMu.Unlock()
	if task == nil {
		return nil
	}

	select {
	case <-task.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *sessionService) Subscribe(ctx context.Context, id string) (<-chan dto.SessionView, func(), error) {
	st, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	sub := s.hub.register(id)
	select {
	case sub.send <- s.view(st):
	default:
	}
	return sub.send, func() { s.hub.unregister(id, sub) }, nil
}

// Close cancels every in-flight evaluation and waits for them to stop.
func (s *sessionService) Close() {
	s.baseCancel()
	s.wg.Wait()
}

// sessionLock is a per-session mutex that lives in the lock table only while
// some caller holds or waits for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lockSession serialises work on id and returns the matching unlock. The
// table entry is dropped on the last unlock, so ids that never resolve to a
// session leave nothing behind.
func (s *sessionService) lockSession(id string) func() {
	s.locksMu.Lock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sessionLock{}
		s.locks[id] = lock
	}
	lock.refs++
	s.locksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		s.locksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *sessionService) load(ctx context.Context, id string) (*session.State, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	// A pending flag with no local task and an expired deadline was left by
	// a process that stopped before applying it.
	if st.Chaining.Pending && !s.evaluationRunning(id) {
		cutoff := s.cfg.Now().UTC().Add(-(s.cfg.ScoringDelay + staleEvaluationGrace))
		if session.ExpirePending(st, cutoff) {
			s.logger.Warn().Str("session_id", id).Msg("discarding orphaned evaluation")
		}
	}
	return st, nil
}

func (s *sessionService) evaluationRunning(id string) bool {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()
	_, ok := s.evals[id]
	return ok
}

// mutate applies fn to a copy of the stored state under the session lock
// and persists the copy only when fn succeeds.
func (s *sessionService) mutate(ctx context.Context, id, intent string, fn func(st *session.State) error) (dto.SessionView, error) {
	unlock := s.lockSession(id)
	defer unlock()

	current, err := s.load(ctx, id)
	if err != nil {
		observability.Intents().WithLabelValues(intent, "not_found").Inc()
		return dto.SessionView{}, err
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		observability.Intents().WithLabelValues(intent, "rejected").Inc()
		s.logger.Debug().Err(err).Str("session_id", id).Str("intent", intent).Msg("intent rejected")
		return dto.SessionView{}, err
	}
	next.UpdatedAt = s.cfg.Now().UTC()

	if err := s.repo.Save(ctx, next); err != nil {
		observability.Intents().WithLabelValues(intent, "error").Inc()
		return dto.SessionView{}, fmt.Errorf("save session: %w", err)
	}

	observability.Intents().WithLabelValues(intent, "ok").Inc()
	if current.Stage != next.Stage {
		s.logger.Info().Str("session_id", id).Str("from", string(current.Stage)).Str("to", string(next.Stage)).Msg("stage advanced")
	}

	view := s.view(next)
	s.hub.broadcast(id, view)
	return view, nil
}

func (s *sessionService) reserveEvaluation(id string) (*evaluationTask, error) {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	if _, busy := s.evals[id]; busy {
		return nil, ErrEvaluationPending
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	task := &evaluationTask{ctx: ctx, cancel: cancel, done: make(chan struct{})}
	s.evals[id] = task
	return task, nil
}

func (s *sessionService) releaseEvaluation(id string, task *evaluationTask) {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	if s.evals[id] == task {
		delete(s.evals, id)
	}
}

// discardEvaluation drops a reserved task that never started.
func (s *sessionService) discardEvaluation(id string, task *evaluationTask) {
	s.releaseEvaluation(id, task)
	task.cancel()
	close(task.done)
}

func (s *sessionService) cancelEvaluation(id string) {
	s.evalMu.Lock()
	task := s.evals[id]
	s.evalMu.Unlock()
	if task != nil {
		task.cancel()
	}
}

func (s *sessionService) runEvaluation(id string, task *evaluationTask, input scoring.Input) {
	defer s.wg.Done()
	defer close(task.done)
	defer s.releaseEvaluation(id, task)
	defer task.cancel()

	timer := time.NewTimer(s.cfg.ScoringDelay)
	defer timer.Stop()

	select {
	case <-task.ctx.Done():
		s.abandonEvaluation(id)
		return
	case <-timer.C:
	}

	unlock := s.lockSession(id)
	defer unlock()

	ctx, span := s.tracer.Start(context.WithoutCancel(task.ctx), "scoring.evaluate", trace.WithAttributes(
		attribute.String("session_id", id),
		attribute.String("step", input.Step.ID),
		attribute.Int("offer_id", input.Offer.ID),
	))
	defer span.End()

	current, err := s.load(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("session gone before evaluation completed")
		return
	}

	next := current.Clone()
	outcome, err := session.ApplyEvaluation(next, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error().Err(err).Str("session_id", id).Msg("evaluation failed")
	} else {
		span.SetAttributes(attribute.String("status", string(outcome.Status)), attribute.Float64("quality", outcome.Quality))
		observability.Evaluations().WithLabelValues(string(outcome.Kind), string(outcome.Status)).Inc()
		observability.PromptQuality().WithLabelValues(string(outcome.Kind)).Observe(outcome.Quality)
	}
	next.UpdatedAt = s.cfg.Now().UTC()

	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error().Err(err).Str("session_id", id).Msg("failed to store evaluation")
		return
	}

	s.logger.Info().
		Str("session_id", id).
		Str("step", input.Step.ID).
		Int("offer_id", input.Offer.ID).
		Float64("quality", outcome.Quality).
		Str("status", string(outcome.Status)).
		Msg("evaluation applied")
	s.hub.broadcast(id, s.view(next))
}

// abandonEvaluation clears the pending flag of a cancelled evaluation so the
// session is not stuck.
func (s *sessionService) abandonEvaluation(id string) {
	unlock := s.lockSession(id)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return
	}
	if !current.Chaining.Pending {
		return
	}
	session.CancelEvaluation(current)
	if err := s.repo.Save(ctx, current); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("failed to clear cancelled evaluation")
	}
}
