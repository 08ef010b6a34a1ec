// Package session holds the per-player walkthrough state and the transition
// for every intent. Transitions mutate a *State in place and return an error
// when the intent is not allowed; callers that need atomicity work on a Clone.
package session

import (
	"math/rand"
	"time"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/scoring"
	"github.com/jcarlosmelian/promtscp/internal/stage"
)

// State is the full, serialisable state of one walkthrough.
type State struct {
	ID                  string         `json:"id"`
	Stage               models.Stage   `json:"stage"`
	BasicPromptRevealed bool           `json:"basic_prompt_revealed"`
	Tasks               TaskState      `json:"tasks"`
	Principles          PrincipleState `json:"principles"`
	Chaining            ChainingState  `json:"chaining"`
	Ledger              scoring.Ledger `json:"ledger"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

// TaskState is the task-sequencing exercise.
type TaskState struct {
	Available []string `json:"available"`
	Sequence  []string `json:"sequence"`
	// Verdict is nil until the sequence is checked.
	Verdict *bool `json:"verdict,omitempty"`
}

// PrincipleState is the principle-identification exercise.
type PrincipleState struct {
	Index         int           `json:"index"`
	Selected      models.Answer `json:"selected"`
	FeedbackShown bool          `json:"feedback_shown"`
}

// ChainingState is the step/offer cursor of the prompt-chaining exercise.
type ChainingState struct {
	StepIndex   int              `json:"step_index"`
	OfferIndex  int              `json:"offer_index"`
	Selected    map[string]bool  `json:"selected"`
	Pending     bool             `json:"pending"`
	ResultShown bool             `json:"result_shown"`
	LastOutcome *scoring.Outcome `json:"last_outcome,omitempty"`

	// PendingSince is when the current evaluation was started.
	PendingSince time.Time `json:"pending_since"`
}

// Shuffler randomises task order. *rand.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

type globalShuffler struct{}

func (globalShuffler) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultShuffler uses the process-wide random source.
var DefaultShuffler Shuffler = globalShuffler{}

// New starts a walkthrough at the first stage with a shuffled task pool and
// an empty ledger.
func New(id string, cat *catalog.Catalog, shuffler Shuffler, now time.Time) *State {
	st := &State{
		ID:        id,
		Stage:     stage.First(),
		Ledger:    scoring.Ledger{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.Tasks = freshTasks(cat, shuffler)
	st.Chaining.Selected = map[string]bool{}
	return st
}

// Clone returns a deep copy of st.
func (st *State) Clone() *State {
	out := *st
	out.Tasks.Available = append([]string{}, st.Tasks.Available...)
	out.Tasks.Sequence = append([]string{}, st.Tasks.Sequence...)
	if st.Tasks.Verdict != nil {
		v := *st.Tasks.Verdict
		out.Tasks.Verdict = &v
	}
	out.Chaining.Selected = make(map[string]bool, len(st.Chaining.Selected))
	for id, on := range st.Chaining.Selected {
		out.Chaining.Selected[id] = on
	}
	if st.Chaining.LastOutcome != nil {
		o := *st.Chaining.LastOutcome
		o.Entry.Issues = append([]string{}, o.Entry.Issues...)
		out.Chaining.LastOutcome = &o
	}
	if st.Ledger != nil {
		out.Ledger = st.Ledger.Clone()
	} else {
		out.Ledger = scoring.Ledger{}
	}
	return &out
}

func freshTasks(cat *catalog.Catalog, shuffler Shuffler) TaskState {
	if shuffler == nil {
		shuffler = DefaultShuffler
	}
	ids := cat.TaskIDs()
	shuffler.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return TaskState{Available: ids, Sequence: []string{}}
}

func requireStage(st *State, want models.Stage) error {
	if st.Stage != want {
		return wrongStage(st.Stage, want)
	}
	return nil
}
