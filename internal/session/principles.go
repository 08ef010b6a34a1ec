package session

import (
	"fmt"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/models"
)

// CurrentPrinciple returns the principle under review.
func CurrentPrinciple(st *State, cat *catalog.Catalog) (models.Principle, error) {
	if st.Principles.Index < 0 || st.Principles.Index >= len(cat.Principles) {
		return models.Principle{}, fmt.Errorf("%w: principle %d of %d", ErrMissingData, st.Principles.Index, len(cat.Principles))
	}
	return cat.Principles[st.Principles.Index], nil
}

// AnswerPrinciple records the player's classification of the current
// scenario. Only one answer per principle is accepted.
func AnswerPrinciple(st *State, cat *catalog.Catalog, answer models.Answer) (bool, models.PlayerChoice, error) {
	if err := requireStage(st, models.StageConstitutionalAI); err != nil {
		return false, models.PlayerChoice{}, err
	}
	if answer != models.AnswerAdherence && answer != models.AnswerViolation {
		return false, models.PlayerChoice{}, fmt.Errorf("%w: answer %q", ErrUnknownChoice, answer)
	}
	if st.Principles.FeedbackShown {
		return false, models.PlayerChoice{}, ErrAlreadyAnswered
	}
	principle, err := CurrentPrinciple(st, cat)
	if err != nil {
		return false, models.PlayerChoice{}, err
	}

	correct := answer == principle.ScenarioPolarity()
	st.Principles.Selected = answer
	st.Principles.FeedbackShown = true

	choice := models.PlayerChoice{
		Type:      models.ChoicePrincipleCheck,
		SessionID: st.ID,
		Stage:     st.Stage,
		Subject:   principle.ID,
		Value:     []string{string(answer)},
		IsCorrect: boolPtr(correct),
	}
	return correct, choice, nil
}

// AdvancePrinciple moves to the next principle, completing the stage after
// the last one.
func AdvancePrinciple(st *State, cat *catalog.Catalog) error {
	if err := requireStage(st, models.StageConstitutionalAI); err != nil {
		return err
	}
	if !st.Principles.FeedbackShown {
		return ErrNotAnswered
	}

	next := st.Principles.Index + 1
	st.Principles = PrincipleState{Index: next}
	if next >= len(cat.Principles) {
		st.Principles.Index = 0
		completeStage(st)
	}
	return nil
}
