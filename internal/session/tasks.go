package session

import (
	"fmt"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/models"
)

// SelectTask moves id from the pool to the end of the sequence.
func SelectTask(st *State, id string) error {
	if err := requireStage(st, models.StageTaskMapping); err != nil {
		return err
	}
	idx := -1
	for i, candidate := range st.Tasks.Available {
		if candidate == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrTaskUnavailable, id)
	}

	st.Tasks.Available = append(st.Tasks.Available[:idx:idx], st.Tasks.Available[idx+1:]...)
	st.Tasks.Sequence = append(st.Tasks.Sequence, id)
	st.Tasks.Verdict = nil
	return nil
}

// ResetSequence reshuffles the full task set and clears sequence and verdict.
func ResetSequence(st *State, cat *catalog.Catalog, shuffler Shuffler) error {
	if err := requireStage(st, models.StageTaskMapping); err != nil {
		return err
	}
	st.Tasks = freshTasks(cat, shuffler)
	return nil
}

// CheckSequence stores and returns the verdict: true only when every task was
// placed and each position matches its canonical order.
func CheckSequence(st *State, cat *catalog.Catalog) (bool, models.PlayerChoice, error) {
	if err := requireStage(st, models.StageTaskMapping); err != nil {
		return false, models.PlayerChoice{}, err
	}

	verdict := SequenceCorrect(st.Tasks.Sequence, cat)
	st.Tasks.Verdict = &verdict

	choice := models.PlayerChoice{
		Type:      models.ChoiceTaskOrder,
		SessionID: st.ID,
		Stage:     st.Stage,
		Value:     append([]string{}, st.Tasks.Sequence...),
		IsCorrect: boolPtr(verdict),
	}
	return verdict, choice, nil
}

// SequenceCorrect compares sequence against the canonical task order.
func SequenceCorrect(sequence []string, cat *catalog.Catalog) bool {
	if len(sequence) != len(cat.Tasks) {
		return false
	}
	for i, id := range sequence {
		task, ok := cat.Task(id)
		if !ok || task.Order != i+1 {
			return false
		}
	}
	return true
}

func boolPtr(v bool) *bool { return &v }
