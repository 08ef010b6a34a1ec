package models

// Stage identifies one top-level screen of the walkthrough.
type Stage string

const (
	StageIntroduction          Stage = "INTRODUCTION"
	StageBasicPromptIntro      Stage = "BASIC_PROMPT_INTRO"
	StageBasicPromptSim        Stage = "BASIC_PROMPT_SIM"
	StageTaskMappingIntro      Stage = "TASK_MAPPING_INTRO"
	StageTaskMapping           Stage = "TASK_MAPPING"
	StageConstitutionalAIIntro Stage = "CONSTITUTIONAL_AI_INTRO"
	StageConstitutionalAI      Stage = "CONSTITUTIONAL_AI"
	StagePromptChainingIntro   Stage = "PROMPT_CHAINING_INTRO"
	StagePromptChaining        Stage = "PROMPT_CHAINING"
	StageFewShotLearningIntro  Stage = "FEW_SHOT_LEARNING_INTRO"
	StageFinalSummaryIntro     Stage = "FINAL_SUMMARY_INTRO"
	StageGameSummary           Stage = "GAME_SUMMARY"
)

// StageKind distinguishes passive intro screens from interactive ones.
type StageKind string

const (
	StageKindIntro       StageKind = "intro"
	StageKindInteractive StageKind = "interactive"
)

// StageContent is the title and description shown for a stage.
type StageContent struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}
