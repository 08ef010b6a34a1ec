// Package scoring simulates how a prompt-driven evaluation would score an
// offer. Each chaining step kind carries its own rule; the rule reads the
// prompt quality derived from the player's enhancement choices and writes the
// outcome into the session ledger.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jcarlosmelian/promtscp/internal/models"
)

// ErrUnknownStep is returned for a step kind without a rule.
var ErrUnknownStep = errors.New("unknown chaining step kind")

// Score ceilings.
const (
	MaxTechnicalScore = 60
	MaxEconomicScore  = 40
	MaxFinalScore     = 100
)

// Issue texts written into the ledger.
const (
	IssueIncompleteDocs = "Fallo en la comprobación administrativa: Documentos incompletos."
	IssueInconclusive   = "Comprobación administrativa no concluyente debido a la mala calidad del prompt."
	IssueWeakSynthesis  = "La claridad de la síntesis podría mejorarse debido al prompt."
	SkippedRationale    = "Omitido por estado administrativo."
)

// Status tells whether a rule ran or was skipped by its precondition.
type Status string

const (
	StatusApplied Status = "applied"
	StatusSkipped Status = "skipped"
)

// Input is everything a rule may read.
type Input struct {
	Step     models.ChainingStep
	Offer    models.Offer
	Selected map[string]bool
	// Offers is the full offer list, used for cross-offer price comparison.
	Offers []models.Offer
}

// Outcome is the result of one simulated evaluation.
type Outcome struct {
	StepID    string                  `json:"step_id"`
	Kind      models.StepKind         `json:"kind"`
	OfferID   int                     `json:"offer_id"`
	Quality   float64                 `json:"quality"`
	Status    Status                  `json:"status"`
	Rationale string                  `json:"rationale"`
	Tone      Tone                    `json:"tone"`
	Entry     models.EvaluationResult `json:"entry"`
}

type evaluation struct {
	in        Input
	quality   float64
	ledger    Ledger
	entry     models.EvaluationResult
	status    Status
	rationale strings.Builder
}

type rule struct {
	// requiresApto rules only run once the offer passed the administrative check.
	requiresApto bool
	apply        func(ev *evaluation)
	skip         func(ev *evaluation)
}

var rules = map[models.StepKind]rule{
	models.StepAdministrative: {apply: applyAdministrative},
	models.StepTechnical: {
		requiresApto: true,
		apply:        applyTechnical,
		skip: func(ev *evaluation) {
			ev.entry.TechnicalScore = 0
			ev.entry.TechnicalRationale = SkippedRationale
			ev.rationale.WriteString("Evaluación técnica omitida ya que la oferta es NO APTA administrativamente.")
		},
	},
	models.StepEconomic: {
		requiresApto: true,
		apply:        applyEconomic,
		skip: func(ev *evaluation) {
			ev.entry.EconomicScore = 0
			ev.entry.EconomicRationale = SkippedRationale
			ev.rationale.WriteString("Evaluación económica omitida ya que la oferta es NO APTA administrativamente.")
		},
	},
	models.StepFinal: {apply: applyFinal},
}

// Evaluate runs the rule for in.Step against in.Offer and writes the updated
// entry into ledger. Only the entry for in.Offer.ID is modified.
func Evaluate(in Input, ledger Ledger) (Outcome, error) {
	r, ok := rules[in.Step.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %q (step %s)", ErrUnknownStep, in.Step.Kind, in.Step.ID)
	}
	if ledger == nil {
		return Outcome{}, errors.New("scoring: nil ledger")
	}

	ev := &evaluation{
		in:      in,
		quality: PromptQuality(in.Step, in.Selected),
		ledger:  ledger,
		entry:   ledger.Entry(in.Offer),
		status:  StatusApplied,
	}
	ev.entry.Issues = append([]string{}, ev.entry.Issues...)
	fmt.Fprintf(&ev.rationale, "Evaluación para %s usando el prompt para %s: ", in.Offer.Name, in.Step.Name)

	if r.requiresApto && !ev.entry.IsApto() {
		ev.status = StatusSkipped
		r.skip(ev)
	} else {
		r.apply(ev)
	}

	ledger.Put(ev.entry)
	rationale := strings.TrimSpace(ev.rationale.String())
	return Outcome{
		StepID:    in.Step.ID,
		Kind:      in.Step.Kind,
		OfferID:   in.Offer.ID,
		Quality:   ev.quality,
		Status:    ev.status,
		Rationale: rationale,
		Tone:      ToneOf(rationale),
		Entry:     ledger[in.Offer.ID],
	}, nil
}

func applyAdministrative(ev *evaluation) {
	docs := ev.in.Offer.AdminDocsComplete
	switch {
	case docs && ev.quality > 0.5:
		ev.entry.AdministrativeCheck = models.AdminApto
		ev.rationale.WriteString("La oferta es administrativamente APTA. Todos los documentos parecen completos según el prompt bien elaborado.")
	case !docs && ev.quality > 0.5:
		ev.entry.AdministrativeCheck = models.AdminNoApto
		ev.entry.Issues = append(ev.entry.Issues, IssueIncompleteDocs)
		ev.rationale.WriteString("La oferta es administrativamente NO APTA debido a documentos incompletos (identificado por un buen prompt).")
	default:
		ev.entry.AdministrativeCheck = models.AdminNoApto
		ev.entry.Issues = append(ev.entry.Issues, IssueInconclusive)
		ev.rationale.WriteString("La oferta es administrativamente NO APTA o el prompt fue insuficiente para una verificación clara. ")
		if !docs {
			ev.rationale.WriteString("La propia oferta tenía documentos administrativos incompletos.")
		}
	}
}

var technicalBase = map[models.TechnicalStrength]float64{
	models.StrengthStrong:  50,
	models.StrengthAverage: 35,
	models.StrengthWeak:    20,
}

func applyTechnical(ev *evaluation) {
	base, ok := technicalBase[ev.in.Offer.TechnicalStrength]
	if !ok {
		base = technicalBase[models.StrengthWeak]
	}
	score := clampInt(int(math.Round(base+ev.quality*10)), 0, MaxTechnicalScore)

	var specifics strings.Builder
	fmt.Fprintf(&specifics, "Fortaleza de la oferta: %s. ", ev.in.Offer.TechnicalStrength.Label())
	if ev.quality < 0.6 {
		specifics.WriteString("El prompt podría ser más específico, lo que podría llevar a una justificación menos detallada.")
	} else {
		specifics.WriteString("El prompt permitió una justificación clara de las puntuaciones.")
	}

	ev.entry.TechnicalScore = score
	ev.entry.TechnicalRationale = specifics.String()
	fmt.Fprintf(&ev.rationale, "Puntuación técnica: %d/%d. %s", score, MaxTechnicalScore, specifics.String())
}

// LowestAptoPrice returns the minimum of offer's own price and the prices of
// every other offer currently APTO in ledger.
func LowestAptoPrice(offer models.Offer, offers []models.Offer, ledger Ledger) float64 {
	lowest := offer.Price
	for _, other := range offers {
		if other.ID == offer.ID || !ledger[other.ID].IsApto() {
			continue
		}
		if other.Price < lowest {
			lowest = other.Price
		}
	}
	return lowest
}

func applyEconomic(ev *evaluation) {
	price := ev.in.Offer.Price
	if price <= 0 || ev.quality <= 0.3 {
		ev.entry.EconomicScore = 0
		ev.entry.EconomicRationale = "La puntuación falló debido a un precio cero, datos faltantes o una calidad de prompt muy baja para el cálculo."
		fmt.Fprintf(&ev.rationale, "Problema en la puntuación económica. %s", ev.entry.EconomicRationale)
		return
	}

	lowest := LowestAptoPrice(ev.in.Offer, ev.in.Offers, ev.ledger)
	score := clampInt(int(math.Round(MaxEconomicScore*lowest/price)), 0, MaxEconomicScore)

	var specifics strings.Builder
	fmt.Fprintf(&specifics, "Basado en el precio más bajo de %s y el precio de esta oferta de %s. ", formatAmount(lowest), formatAmount(price))
	if ev.quality < 0.7 {
		specifics.WriteString("La claridad del prompt podría afectar el cálculo preciso si se involucraran fórmulas complejas, pero se aplicó la fórmula básica.")
	} else {
		specifics.WriteString("El prompt soporta una aplicación clara de la fórmula.")
	}

	ev.entry.EconomicScore = score
	ev.entry.EconomicRationale = specifics.String()
	fmt.Fprintf(&ev.rationale, "Puntuación económica: %d/%d. %s", score, MaxEconomicScore, specifics.String())
}

func applyFinal(ev *evaluation) {
	final := 0
	if ev.entry.IsApto() {
		final = clampInt(ev.entry.TechnicalScore+ev.entry.EconomicScore, 0, MaxFinalScore)
	}

	verdict := "Necesita mejorar"
	if ev.quality > 0.7 {
		verdict = "Buena"
	}
	fmt.Fprintf(&ev.rationale, "Puntuación final calculada como %d/%d. Calidad del prompt de síntesis: %s.", final, MaxFinalScore, verdict)
	if !ev.entry.IsApto() {
		ev.rationale.WriteString(" La puntuación final es 0 por no ser APTA.")
	}

	ev.entry.FinalScore = final
	if ev.quality < 0.5 {
		ev.entry.Issues = []string{IssueWeakSynthesis}
	} else {
		ev.entry.Issues = []string{}
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "€"
}
