package session

import (
	"fmt"

	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/stage"
)

// CanAdvance reports whether the generic advance intent is accepted in the
// current stage. Exercises with their own completion intents refuse it.
func CanAdvance(st *State) error {
	switch {
	case stage.IsLast(st.Stage):
		return nil
	case stage.Kind(st.Stage) == models.StageKindIntro:
		return nil
	}

	switch st.Stage {
	case models.StageBasicPromptSim:
		if !st.BasicPromptRevealed {
			return fmt.Errorf("%w: reveal the basic prompt response first", ErrStageIncomplete)
		}
		return nil
	case models.StageTaskMapping:
		if st.Tasks.Verdict == nil || !*st.Tasks.Verdict {
			return fmt.Errorf("%w: task sequence not verified", ErrStageIncomplete)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s completes through its own exercise", ErrStageIncomplete, st.Stage)
	}
}

// Advance moves to the next stage. On the last stage it is a no-op.
func Advance(st *State) error {
	if err := CanAdvance(st); err != nil {
		return err
	}
	completeStage(st)
	return nil
}

// RevealBasicPrompt shows the canned vague response of the basic prompt.
func RevealBasicPrompt(st *State) error {
	if err := requireStage(st, models.StageBasicPromptSim); err != nil {
		return err
	}
	st.BasicPromptRevealed = true
	return nil
}

func completeStage(st *State) {
	st.Stage = stage.Next(st.Stage)
}
