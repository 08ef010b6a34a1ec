package session

import (
	"errors"
	"fmt"

	"github.com/jcarlosmelian/promtscp/internal/models"
)

var (
	ErrWrongStage        = errors.New("intent not allowed in current stage")
	ErrStageIncomplete   = errors.New("stage not completed yet")
	ErrTaskUnavailable   = errors.New("task not available")
	ErrAlreadyAnswered   = errors.New("principle already answered")
	ErrNotAnswered       = errors.New("principle not answered yet")
	ErrUnknownChoice     = errors.New("unknown choice")
	ErrNoResult          = errors.New("evaluation result not shown yet")
	ErrResultShown       = errors.New("evaluation result already shown")
	ErrMissingData       = errors.New("missing step or offer data")
	ErrEvaluationPending = errors.New("evaluation in progress")
)

func wrongStage(current, want models.Stage) error {
	return fmt.Errorf("%w: at %s, need %s", ErrWrongStage, current, want)
}
