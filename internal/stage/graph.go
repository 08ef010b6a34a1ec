// Package stage holds the fixed walkthrough sequence and its transition
// function. The sequence has no branches and no cycles: every stage advances
// to its successor and the final summary is absorbing.
package stage

import "github.com/jcarlosmelian/promtscp/internal/models"

var order = []models.Stage{
	models.StageIntroduction,
	models.StageBasicPromptIntro,
	models.StageBasicPromptSim,
	models.StageTaskMappingIntro,
	models.StageTaskMapping,
	models.StageConstitutionalAIIntro,
	models.StageConstitutionalAI,
	models.StagePromptChainingIntro,
	models.StagePromptChaining,
	models.StageFewShotLearningIntro,
	models.StageFinalSummaryIntro,
	models.StageGameSummary,
}

var kinds = map[models.Stage]models.StageKind{
	models.StageIntroduction:          models.StageKindIntro,
	models.StageBasicPromptIntro:      models.StageKindIntro,
	models.StageBasicPromptSim:        models.StageKindInteractive,
	models.StageTaskMappingIntro:      models.StageKindIntro,
	models.StageTaskMapping:           models.StageKindInteractive,
	models.StageConstitutionalAIIntro: models.StageKindIntro,
	models.StageConstitutionalAI:      models.StageKindInteractive,
	models.StagePromptChainingIntro:   models.StageKindIntro,
	models.StagePromptChaining:        models.StageKindInteractive,
	models.StageFewShotLearningIntro:  models.StageKindIntro,
	models.StageFinalSummaryIntro:     models.StageKindIntro,
	models.StageGameSummary:           models.StageKindInteractive,
}

// Order returns a copy of the stage sequence.
func Order() []models.Stage {
	result := make([]models.Stage, len(order))
	copy(result, order)
	return result
}

// First returns the stage a new session starts on.
func First() models.Stage {
	return order[0]
}

// Last returns the terminal stage.
func Last() models.Stage {
	return order[len(order)-1]
}

// Index returns the position of s in the sequence, or -1 if s is unknown.
func Index(s models.Stage) int {
	for i, candidate := range order {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s belongs to the sequence.
func Valid(s models.Stage) bool {
	return Index(s) >= 0
}

// IsLast reports whether s is the terminal stage.
func IsLast(s models.Stage) bool {
	return s == Last()
}

// Next returns the successor of s. The last stage maps to itself and an
// unknown stage falls back to the first one.
func Next(s models.Stage) models.Stage {
	idx := Index(s)
	if idx < 0 {
		return First()
	}
	if idx >= len(order)-1 {
		return s
	}
	return order[idx+1]
}

// Kind returns whether s is an intro or an interactive screen.
func Kind(s models.Stage) models.StageKind {
	if kind, ok := kinds[s]; ok {
		return kind
	}
	return models.StageKindIntro
}

// Count is the number of stages in the sequence.
func Count() int {
	return len(order)
}
