package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/jcarlosmelian/promtscp/internal/middleware"
	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/observability"
)

// ChoicePublisher records graded player choices.
type ChoicePublisher interface {
	Publish(ctx context.Context, choice models.PlayerChoice)
}

type choicePublisher struct {
	nats    *nats.Conn
	subject string
	logger  zerolog.Logger
	now     func() time.Time
}

// NewChoicePublisher logs every choice and, when natsConn is set, publishes
// it as JSON on "<prefix>.choices".
func NewChoicePublisher(natsConn *nats.Conn, subjectPrefix string, logger zerolog.Logger) ChoicePublisher {
	subject := ""
	if prefix := strings.Trim(strings.TrimSpace(subjectPrefix), "."); prefix != "" {
		subject = prefix + ".choices"
	}

	return &choicePublisher{
		nats:    natsConn,
		subject: subject,
		logger:  logger.With().Str("component", "choice_publisher").Logger(),
		now:     time.Now,
	}
}

func (p *choicePublisher) Publish(ctx context.Context, choice models.PlayerChoice) {
	if choice.At.IsZero() {
		choice.At = p.now().UTC()
	}

	correct := "n/a"
	if choice.IsCorrect != nil {
		correct = strconv.FormatBool(*choice.IsCorrect)
	}
	observability.PlayerChoices().WithLabelValues(string(choice.Type), correct).Inc()

	event := p.logger.Info().
		Str("type", string(choice.Type)).
		Str("session_id", choice.SessionID).
		Str("stage", string(choice.Stage)).
		Strs("value", choice.Value)
	if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
		event = event.Str("correlation_id", correlation)
	}
	if choice.Subject != "" {
		event = event.Str("subject", choice.Subject)
	}
	if choice.IsCorrect != nil {
		event = event.Bool("is_correct", *choice.IsCorrect)
	}
	event.Msg("player choice")

	if p.nats == nil || p.subject == "" {
		return
	}

	payload, err := json.Marshal(choice)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode player choice")
		return
	}
	if err := p.nats.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish player choice")
	}
}
