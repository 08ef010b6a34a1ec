package models

// Task is one entry of the task-sequencing exercise.
type Task struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Order       int    `json:"order" yaml:"order"`
}

// Answer is a player's classification of a principle scenario.
type Answer string

const (
	AnswerNone      Answer = ""
	AnswerAdherence Answer = "adherence"
	AnswerViolation Answer = "violation"
)

// Principle is a constitutional rule of public procurement.
type Principle struct {
	ID               string `json:"id" yaml:"id"`
	Name             string `json:"name" yaml:"name"`
	Description      string `json:"description" yaml:"description"`
	ExampleViolation string `json:"example_violation" yaml:"example_violation"`
	ExampleAdherence string `json:"example_adherence" yaml:"example_adherence"`
	// Scenario selects which example is quizzed; empty means violation.
	Scenario Answer `json:"scenario,omitempty" yaml:"scenario,omitempty"`
}

// ScenarioPolarity returns the quizzed polarity, which is also the correct answer.
func (p Principle) ScenarioPolarity() Answer {
	if p.Scenario == AnswerAdherence {
		return AnswerAdherence
	}
	return AnswerViolation
}

// ScenarioText returns the example presented to the player.
func (p Principle) ScenarioText() string {
	if p.ScenarioPolarity() == AnswerAdherence {
		return p.ExampleAdherence
	}
	return p.ExampleViolation
}

// StepKind tags a chaining step with the scoring rule applied to it.
type StepKind string

const (
	StepAdministrative StepKind = "administrative"
	StepTechnical      StepKind = "technical"
	StepEconomic       StepKind = "economic"
	StepFinal          StepKind = "final"
)

// EnhancementChoice is a selectable prompt improvement.
type EnhancementChoice struct {
	ID       string `json:"id" yaml:"id"`
	Text     string `json:"text" yaml:"text"`
	IsGood   bool   `json:"is_good" yaml:"is_good"`
	Feedback string `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// GoodExample is a few-shot example of expected output.
type GoodExample struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Points int    `json:"points,omitempty" yaml:"points,omitempty"`
}

// BadExample is a few-shot counter-example with the reason it is wrong.
type BadExample struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Reason string `json:"reason" yaml:"reason"`
}

// ChainingStep is one phase of the chained evaluation exercise.
type ChainingStep struct {
	ID                  string              `json:"id" yaml:"id"`
	Kind                StepKind            `json:"kind" yaml:"kind"`
	Name                string              `json:"name" yaml:"name"`
	BasePrompt          string              `json:"base_prompt" yaml:"base_prompt"`
	Criteria            string              `json:"criteria,omitempty" yaml:"criteria,omitempty"`
	OutputFormatExample string              `json:"output_format_example" yaml:"output_format_example"`
	GoodExamples        []GoodExample       `json:"good_examples" yaml:"good_examples"`
	BadExamples         []BadExample        `json:"bad_examples" yaml:"bad_examples"`
	EnhancementChoices  []EnhancementChoice `json:"enhancement_choices" yaml:"enhancement_choices"`
}

// Choice looks up an enhancement choice by id.
func (s ChainingStep) Choice(id string) (EnhancementChoice, bool) {
	for _, choice := range s.EnhancementChoices {
		if choice.ID == id {
			return choice, true
		}
	}
	return EnhancementChoice{}, false
}

// BasicPromptExample is the vague prompt shown before any technique is taught.
type BasicPromptExample struct {
	Prompt     string `json:"prompt" yaml:"prompt"`
	AIResponse string `json:"ai_response" yaml:"ai_response"`
	Problem    string `json:"problem" yaml:"problem"`
}

// Methodology is a row of the closing comparison table.
type Methodology struct {
	Name       string `json:"name" yaml:"name"`
	Complexity string `json:"complexity" yaml:"complexity"`
	Time       string `json:"time" yaml:"time"`
	Precision  string `json:"precision" yaml:"precision"`
	BestFor    string `json:"best_for" yaml:"best_for"`
}
