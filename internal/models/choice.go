package models

import "time"

// ChoiceType classifies a PlayerChoice event.
type ChoiceType string

const (
	ChoiceTaskOrder         ChoiceType = "TASK_ORDER"
	ChoicePrincipleCheck    ChoiceType = "PRINCIPLE_CHECK"
	ChoicePromptEnhancement ChoiceType = "PROMPT_ENHANCEMENT"
)

// PlayerChoice is emitted whenever the player commits a graded choice.
type PlayerChoice struct {
	Type      ChoiceType `json:"type"`
	SessionID string     `json:"session_id"`
	Stage     Stage      `json:"stage"`
	Subject   string     `json:"subject,omitempty"`
	Value     []string   `json:"value"`
	IsCorrect *bool      `json:"is_correct,omitempty"`
	At        time.Time  `json:"at"`
}
