package dto

import (
	"time"

	"github.com/jcarlosmelian/promtscp/internal/models"
)

// SelectTaskRequest appends a task to the sequence.
type SelectTaskRequest struct {
	TaskID string `json:"task_id" validate:"required,max=64"`
}

// AnswerPrincipleRequest classifies the current principle scenario.
type AnswerPrincipleRequest struct {
	Answer string `json:"answer" validate:"required,oneof=adherence violation"`
}

// ToggleEnhancementRequest flips one enhancement choice.
type ToggleEnhancementRequest struct {
	ChoiceID string `json:"choice_id" validate:"required,max=64"`
}

// SessionView is the full render model of a walkthrough snapshot.
type SessionView struct {
	ID          string           `json:"id"`
	Stage       models.Stage     `json:"stage"`
	StageIndex  int              `json:"stage_index"`
	StageCount  int              `json:"stage_count"`
	StageKind   models.StageKind `json:"stage_kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CanAdvance  bool             `json:"can_advance"`
	BasicPrompt *BasicPromptView `json:"basic_prompt,omitempty"`
	TaskMapping *TaskMappingView `json:"task_mapping,omitempty"`
	Principle   *PrincipleView   `json:"principle,omitempty"`
	Chaining    *ChainingView    `json:"chaining,omitempty"`
	Summary     *SummaryView     `json:"summary,omitempty"`
	Expert      ExpertView       `json:"expert"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// BasicPromptView is the vague-prompt demonstration.
type BasicPromptView struct {
	Prompt     string `json:"prompt"`
	Revealed   bool   `json:"revealed"`
	AIResponse string `json:"ai_response,omitempty"`
	Problem    string `json:"problem,omitempty"`
}

// TaskView is a task card. Order is only filled in the reference answer.
type TaskView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order,omitempty"`
}

// TaskMappingView is the sequencing exercise.
type TaskMappingView struct {
	Available []TaskView `json:"available"`
	Sequence  []TaskView `json:"sequence"`
	Verdict   *bool      `json:"verdict,omitempty"`
	Message   string     `json:"message,omitempty"`
	Reference []TaskView `json:"reference,omitempty"`
}

// PrincipleView is the principle-identification exercise.
type PrincipleView struct {
	Index            int           `json:"index"`
	Total            int           `json:"total"`
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Scenario         string        `json:"scenario"`
	Selected         models.Answer `json:"selected,omitempty"`
	FeedbackShown    bool          `json:"feedback_shown"`
	Correct          *bool         `json:"correct,omitempty"`
	Feedback         string        `json:"feedback,omitempty"`
	ExampleAdherence string        `json:"example_adherence,omitempty"`
	IsLast           bool          `json:"is_last"`
	Error            string        `json:"error,omitempty"`
}

// ChoiceView is one enhancement checkbox.
type ChoiceView struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Selected bool   `json:"selected"`
	Feedback string `json:"feedback,omitempty"`
}

// StepView is the chaining step under the cursor.
type StepView struct {
	ID                  string               `json:"id"`
	Kind                models.StepKind      `json:"kind"`
	Name                string               `json:"name"`
	BasePrompt          string               `json:"base_prompt"`
	Criteria            string               `json:"criteria,omitempty"`
	OutputFormatExample string               `json:"output_format_example"`
	GoodExamples        []models.GoodExample `json:"good_examples"`
	BadExamples         []models.BadExample  `json:"bad_examples"`
}

// OfferView is an offer as shown to the evaluator.
type OfferView struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	AdminDocsComplete bool    `json:"admin_docs_complete"`
	TechnicalStrength string  `json:"technical_strength"`
	Price             float64 `json:"price"`
}

// OutcomeView is the simulated evaluation result of the current pair.
type OutcomeView struct {
	Status    string                  `json:"status"`
	Quality   float64                 `json:"quality"`
	Rationale string                  `json:"rationale"`
	Tone      string                  `json:"tone"`
	Result    models.EvaluationResult `json:"result"`
}

// ChainingView is the step/offer cursor exercise.
type ChainingView struct {
	StepIndex   int          `json:"step_index"`
	StepCount   int          `json:"step_count"`
	OfferIndex  int          `json:"offer_index"`
	OfferCount  int          `json:"offer_count"`
	Step        *StepView    `json:"step,omitempty"`
	Offer       *OfferView   `json:"offer,omitempty"`
	Choices     []ChoiceView `json:"choices"`
	Pending     bool         `json:"pending"`
	ResultShown bool         `json:"result_shown"`
	Outcome     *OutcomeView `json:"outcome,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// SummaryView closes the walkthrough.
type SummaryView struct {
	Ranking       []models.EvaluationResult `json:"ranking"`
	Methodologies []models.Methodology      `json:"methodologies"`
	Closing       string                    `json:"closing"`
}

// ExpertView tells clients whether the expert question box is usable.
type ExpertView struct {
	Enabled bool `json:"enabled"`
}

// NewTaskView converts a task, hiding its canonical order.
func NewTaskView(task models.Task) TaskView {
	return TaskView{ID: task.ID, Name: task.Name, Description: task.Description}
}

// NewOfferView converts an offer model.
func NewOfferView(offer models.Offer) OfferView {
	return OfferView{
		ID:                offer.ID,
		Name:              offer.Name,
		Description:       offer.Description,
		AdminDocsComplete: offer.AdminDocsComplete,
		TechnicalStrength: string(offer.TechnicalStrength),
		Price:             offer.Price,
	}
}

// NewStepView converts a chaining step without its choices.
func NewStepView(step models.ChainingStep) StepView {
	return StepView{
		ID:                  step.ID,
		Kind:                step.Kind,
		Name:                step.Name,
		BasePrompt:          step.BasePrompt,
		Criteria:            step.Criteria,
		OutputFormatExample: step.OutputFormatExample,
		GoodExamples:        step.GoodExamples,
		BadExamples:         step.BadExamples,
	}
}
