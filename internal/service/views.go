package service

import (
	"fmt"

	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/session"
	"github.com/jcarlosmelian/promtscp/internal/stage"
)

// Texts shown when chaining content is missing.
const (
	MessageNoChainingData = "Error: No se han cargado los pasos de creación de prompts o las ofertas."
	MessageNoCurrentPair  = "Error: Faltan datos del paso u oferta actual."
	defaultBadFeedback    = "Considera si esta es una opción óptima."
	sequenceCorrectText   = "¡Orden correcto! Este enfoque estructurado es vital."
	sequenceWrongText     = "Orden incorrecto, o no todas las tareas están secuenciadas. Inténtalo de nuevo. La secuencia correcta se muestra a continuación para tu aprendizaje."
)

func (s *sessionService) view(st *session.State) dto.SessionView {
	return BuildView(st, s.catalog, s.cfg.ExpertEnabled)
}

// BuildView renders the parts of st relevant to its current stage.
func BuildView(st *session.State, cat *catalog.Catalog, expertEnabled bool) dto.SessionView {
	content := cat.StageContent(st.Stage)
	view := dto.SessionView{
		ID:          st.ID,
		Stage:       st.Stage,
		StageIndex:  stage.Index(st.Stage),
		StageCount:  stage.Count(),
		StageKind:   stage.Kind(st.Stage),
		Title:       content.Title,
		Description: content.Description,
		CanAdvance:  session.CanAdvance(st) == nil && !stage.IsLast(st.Stage),
		Expert:      dto.ExpertView{Enabled: expertEnabled},
		UpdatedAt:   st.UpdatedAt,
	}

	switch st.Stage {
	case models.StageBasicPromptSim:
		view.BasicPrompt = basicPromptView(st, cat)
	case models.StageTaskMapping:
		view.TaskMapping = taskMappingView(st, cat)
	case models.StageConstitutionalAI:
		view.Principle = principleView(st, cat)
	case models.StagePromptChaining:
		view.Chaining = chainingView(st, cat)
	case models.StageGameSummary:
		view.Summary = &dto.SummaryView{
			Ranking:       st.Ledger.Ranking(),
			Methodologies: cat.Methodologies,
			Closing:       cat.Closing,
		}
	}
	return view
}

func basicPromptView(st *session.State, cat *catalog.Catalog) *dto.BasicPromptView {
	out := &dto.BasicPromptView{Prompt: cat.BasicPrompt.Prompt, Revealed: st.BasicPromptRevealed}
	if st.BasicPromptRevealed {
		out.AIResponse = cat.BasicPrompt.AIResponse
		out.Problem = cat.BasicPrompt.Problem
	}
	return out
}

func taskViews(cat *catalog.Catalog, ids []string) []dto.TaskView {
	out := make([]dto.TaskView, 0, len(ids))
	for _, id := range ids {
		if task, ok := cat.Task(id); ok {
			out = append(out, dto.NewTaskView(task))
		}
	}
	return out
}

func taskMappingView(st *session.State, cat *catalog.Catalog) *dto.TaskMappingView {
	out := &dto.TaskMappingView{
		Available: taskViews(cat, st.Tasks.Available),
		Sequence:  taskViews(cat, st.Tasks.Sequence),
		Verdict:   st.Tasks.Verdict,
	}
	if st.Tasks.Verdict == nil {
		return out
	}
	if *st.Tasks.Verdict {
		out.Message = sequenceCorrectText
		return out
	}

	out.Message = sequenceWrongText
	for _, task := range cat.SortedTasks() {
		ref := dto.NewTaskView(task)
		ref.Order = task.Order
		out.Reference = append(out.Reference, ref)
	}
	return out
}

func polarityWord(a models.Answer) string {
	if a == models.AnswerAdherence {
		return "adhesión"
	}
	return "violación"
}

func principleView(st *session.State, cat *catalog.Catalog) *dto.PrincipleView {
	principle, err := session.CurrentPrinciple(st, cat)
	if err != nil {
		return &dto.PrincipleView{Index: st.Principles.Index, Total: len(cat.Principles), Error: err.Error()}
	}

	out := &dto.PrincipleView{
		Index:         st.Principles.Index,
		Total:         len(cat.Principles),
		ID:            principle.ID,
		Name:          principle.Name,
		Description:   principle.Description,
		Scenario:      principle.ScenarioText(),
		Selected:      st.Principles.Selected,
		FeedbackShown: st.Principles.FeedbackShown,
		IsLast:        st.Principles.Index == len(cat.Principles)-1,
	}
	if !st.Principles.FeedbackShown {
		return out
	}

	polarity := principle.ScenarioPolarity()
	correct := st.Principles.Selected == polarity
	out.Correct = &correct
	out.ExampleAdherence = principle.ExampleAdherence
	if correct {
		out.Feedback = fmt.Sprintf("¡Correcto! Este escenario efectivamente resalta una %s de %s.", polarityWord(polarity), principle.Name)
	} else {
		out.Feedback = fmt.Sprintf("No exactamente. Este escenario en realidad muestra una %s. El principio de %s significa: %s", polarityWord(polarity), principle.Name, principle.Description)
	}
	return out
}

func chainingView(st *session.State, cat *catalog.Catalog) *dto.ChainingView {
	out := &dto.ChainingView{
		StepIndex:   st.Chaining.StepIndex,
		StepCount:   len(cat.Steps),
		OfferIndex:  st.Chaining.OfferIndex,
		OfferCount:  len(cat.Offers),
		Choices:     []dto.ChoiceView{},
		Pending:     st.Chaining.Pending,
		ResultShown: st.Chaining.ResultShown,
	}

	step, offer, err := session.CurrentPair(st, cat)
	if err != nil {
		if len(cat.Steps) == 0 || len(cat.Offers) == 0 {
			out.Error = MessageNoChainingData
		} else {
			out.Error = MessageNoCurrentPair
		}
		return out
	}

	stepView := dto.NewStepView(step)
	offerView := dto.NewOfferView(offer)
	out.Step = &stepView
	out.Offer = &offerView

	for _, choice := range step.EnhancementChoices {
		selected := st.Chaining.Selected[choice.ID]
		cv := dto.ChoiceView{ID: choice.ID, Text: choice.Text, Selected: selected}
		if selected && !choice.IsGood {
			cv.Feedback = choice.Feedback
			if cv.Feedback == "" {
				cv.Feedback = defaultBadFeedback
			}
		}
		out.Choices = append(out.Choices, cv)
	}

	if st.Chaining.ResultShown && st.Chaining.LastOutcome != nil {
		o := st.Chaining.LastOutcome
		out.Outcome = &dto.OutcomeView{
			Status:    string(o.Status),
			Quality:   o.Quality,
			Rationale: o.Rationale,
			Tone:      string(o.Tone),
			Result:    o.Entry,
		}
	}
	return out
}
