package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/middleware"
	"github.com/jcarlosmelian/promtscp/internal/observability"
	"github.com/jcarlosmelian/promtscp/internal/repository"
	"github.com/jcarlosmelian/promtscp/pkg/ai"
)

// Canned expert answers.
const (
	MessageExpertUnavailable = "La clave de API no está configurada o la consulta está vacía."
	MessageExpertFailed      = "Lo siento, no pude obtener una respuesta. Por favor, revisa tu clave de API y tu conexión."
)

// ErrExpertBusy rejects a question while another one for the same session is in flight.
var ErrExpertBusy = errors.New("expert query already in progress")

// ExpertService answers free-text questions. It never touches session state.
type ExpertService interface {
	Ask(ctx context.Context, sessionID string, req dto.ExpertQueryRequest) (dto.ExpertAnswer, error)
	Enabled() bool
}

type expertService struct {
	advisor   ai.Advisor
	repo      repository.SessionRepository
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewExpertService creates the expert service. A nil advisor disables the
// feature and every question gets the canned unavailable message.
func NewExpertService(advisor ai.Advisor, repo repository.SessionRepository, validate *validator.Validate, logger zerolog.Logger) ExpertService {
	if validate == nil {
		validate = validator.New()
	}
	return &expertService{
		advisor:   advisor,
		repo:      repo,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "expert_service").Logger(),
		inFlight:  make(map[string]struct{}),
	}
}

func (s *expertService) Enabled() bool {
	return s.advisor != nil
}

func (s *expertService) Ask(ctx context.Context, sessionID string, req dto.ExpertQueryRequest) (dto.ExpertAnswer, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ExpertAnswer{}, err
	}
	if s.repo != nil {
		if _, err := s.repo.Get(ctx, sessionID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return dto.ExpertAnswer{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
			}
			return dto.ExpertAnswer{}, err
		}
	}

	query := s.clean(req.Query)
	if query == "" || s.advisor == nil {
		observability.ExpertRequests().WithLabelValues("unavailable").Inc()
		return dto.ExpertAnswer{Answer: MessageExpertUnavailable, Degraded: true}, nil
	}

	if !s.acquire(sessionID) {
		observability.ExpertRequests().WithLabelValues("busy").Inc()
		return dto.ExpertAnswer{}, ErrExpertBusy
	}
	defer s.release(sessionID)

	answer, err := s.advisor.Ask(ctx, ai.ExpertPrompt(query))
	if err != nil {
		observability.ExpertRequests().WithLabelValues("failed").Inc()
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Str("advisor", s.advisor.Name()).
			Str("correlation_id", middleware.CorrelationIDFromContext(ctx)).
			Msg("expert query failed")
		return dto.ExpertAnswer{Answer: MessageExpertFailed, Degraded: true}, nil
	}

	observability.ExpertRequests().WithLabelValues("ok").Inc()
	return dto.ExpertAnswer{Answer: answer}, nil
}

// clean strips markup and surrounding whitespace while keeping the text
// itself, entities included, as typed.
func (s *expertService) clean(query string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(strings.TrimSpace(query))))
}

func (s *expertService) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return false
	}
	s.inFlight[sessionID] = struct{}{}
	return true
}

func (s *expertService) release(sessionID string) {
	s.mu.Lock()
	delete(s.inFlight, sessionID)
	s.mu.Unlock()
}
