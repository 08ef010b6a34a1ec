package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/scoring"
)

// CurrentPair returns the step and offer under the cursor.
func CurrentPair(st *State, cat *catalog.Catalog) (models.ChainingStep, models.Offer, error) {
	if len(cat.Steps) == 0 || len(cat.Offers) == 0 {
		return models.ChainingStep{}, models.Offer{}, fmt.Errorf("%w: no steps or offers loaded", ErrMissingData)
	}
	c := st.Chaining
	if c.StepIndex < 0 || c.StepIndex >= len(cat.Steps) || c.OfferIndex < 0 || c.OfferIndex >= len(cat.Offers) {
		return models.ChainingStep{}, models.Offer{}, fmt.Errorf("%w: cursor (%d,%d) out of range", ErrMissingData, c.StepIndex, c.OfferIndex)
	}
	return cat.Steps[c.StepIndex], cat.Offers[c.OfferIndex], nil
}

func checkEditable(st *State) error {
	if err := requireStage(st, models.StagePromptChaining); err != nil {
		return err
	}
	if st.Chaining.Pending {
		return ErrEvaluationPending
	}
	if st.Chaining.ResultShown {
		return ErrResultShown
	}
	return nil
}

// ToggleEnhancement flips the selection of choiceID for the current pair.
func ToggleEnhancement(st *State, cat *catalog.Catalog, choiceID string) error {
	if err := checkEditable(st); err != nil {
		return err
	}
	step, _, err := CurrentPair(st, cat)
	if err != nil {
		return err
	}
	if _, ok := step.Choice(choiceID); !ok {
		return fmt.Errorf("%w: %q in step %s", ErrUnknownChoice, choiceID, step.ID)
	}

	if st.Chaining.Selected == nil {
		st.Chaining.Selected = map[string]bool{}
	}
	if st.Chaining.Selected[choiceID] {
		delete(st.Chaining.Selected, choiceID)
	} else {
		st.Chaining.Selected[choiceID] = true
	}
	return nil
}

// SelectedIDs lists the selected choice ids in step order.
func SelectedIDs(st *State, step models.ChainingStep) []string {
	ids := []string{}
	for _, choice := range step.EnhancementChoices {
		if st.Chaining.Selected[choice.ID] {
			ids = append(ids, choice.ID)
		}
	}
	return ids
}

// BeginEvaluation marks the current pair as pending since now and returns
// the scoring input to apply once the simulated delay elapses.
func BeginEvaluation(st *State, cat *catalog.Catalog, now time.Time) (scoring.Input, models.PlayerChoice, error) {
	if err := checkEditable(st); err != nil {
		return scoring.Input{}, models.PlayerChoice{}, err
	}
	step, offer, err := CurrentPair(st, cat)
	if err != nil {
		return scoring.Input{}, models.PlayerChoice{}, err
	}

	selected := make(map[string]bool, len(st.Chaining.Selected))
	for id, on := range st.Chaining.Selected {
		selected[id] = on
	}
	st.Chaining.Pending = true
	st.Chaining.PendingSince = now

	choice := models.PlayerChoice{
		Type:      models.ChoicePromptEnhancement,
		SessionID: st.ID,
		Stage:     st.Stage,
		Subject:   step.ID + "/" + strconv.Itoa(offer.ID),
		Value:     SelectedIDs(st, step),
	}

	return scoring.Input{
		Step:     step,
		Offer:    offer,
		Selected: selected,
		Offers:   cat.Offers,
	}, choice, nil
}

// ApplyEvaluation scores in against the session ledger and shows the result.
func ApplyEvaluation(st *State, in scoring.Input) (scoring.Outcome, error) {
	if !st.Chaining.Pending {
		return scoring.Outcome{}, fmt.Errorf("apply evaluation: %w", ErrNoResult)
	}
	if st.Ledger == nil {
		st.Ledger = scoring.Ledger{}
	}
	out, err := scoring.Evaluate(in, st.Ledger)
	CancelEvaluation(st)
	if err != nil {
		return scoring.Outcome{}, err
	}
	st.Chaining.ResultShown = true
	st.Chaining.LastOutcome = &out
	return out, nil
}

// CancelEvaluation clears a pending evaluation without scoring.
func CancelEvaluation(st *State) {
	st.Chaining.Pending = false
	st.Chaining.PendingSince = time.Time{}
}

// ExpirePending cancels a pending evaluation started before cutoff and
// reports whether it did. States stored without a start time count as stale.
func ExpirePending(st *State, cutoff time.Time) bool {
	if !st.Chaining.Pending || st.Chaining.PendingSince.After(cutoff) {
		return false
	}
	CancelEvaluation(st)
	return true
}

// AdvanceCursor moves to the next offer, then the next step, and completes
// the stage after the last pair.
func AdvanceCursor(st *State, cat *catalog.Catalog) error {
	if err := requireStage(st, models.StagePromptChaining); err != nil {
		return err
	}
	if st.Chaining.Pending {
		return ErrEvaluationPending
	}
	if !st.Chaining.ResultShown {
		return ErrNoResult
	}

	step, offer, done := NextCursor(st.Chaining.StepIndex, st.Chaining.OfferIndex, len(cat.Steps), len(cat.Offers))
	st.Chaining = ChainingState{StepIndex: step, OfferIndex: offer, Selected: map[string]bool{}}
	if done {
		completeStage(st)
	}
	return nil
}

// NextCursor returns the pair after (step, offer) in step-major order. done
// is true when (step, offer) was the last pair; the returned cursor is then
// reset to (0, 0).
func NextCursor(step, offer, steps, offers int) (int, int, bool) {
	if offer+1 < offers {
		return step, offer + 1, false
	}
	if step+1 < steps {
		return step + 1, 0, false
	}
	return 0, 0, true
}
