package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcarlosmelian/promtscp/internal/models"
)

var (
	allGood = map[string]bool{"e1": true, "e2": true}
	oneGood = map[string]bool{"e1": true}
	noneSel = map[string]bool{}
)

func testOffers() []models.Offer {
	return []models.Offer{
		{ID: 1, Name: "Innovatech", AdminDocsComplete: true, TechnicalStrength: models.StrengthStrong, Price: 110000},
		{ID: 2, Name: "Cívicos", AdminDocsComplete: true, TechnicalStrength: models.StrengthAverage, Price: 95000},
		{ID: 3, Name: "GovModernize", AdminDocsComplete: false, TechnicalStrength: models.StrengthAverage, Price: 100000},
	}
}

func evaluate(t *testing.T, kind models.StepKind, offer models.Offer, selected map[string]bool, ledger Ledger) Outcome {
	t.Helper()
	out, err := Evaluate(Input{
		Step:     stepWithChoices(kind, standardChoices()...),
		Offer:    offer,
		Selected: selected,
		Offers:   testOffers(),
	}, ledger)
	require.NoError(t, err)
	return out
}

func TestAdministrativeApto(t *testing.T) {
	ledger := Ledger{}
	out := evaluate(t, models.StepAdministrative, testOffers()[0], allGood, ledger)

	require.Equal(t, StatusApplied, out.Status)
	require.Equal(t, models.AdminApto, ledger[1].AdministrativeCheck)
	require.Empty(t, ledger[1].Issues)
	require.Contains(t, out.Rationale, "APTA")
	require.Equal(t, ToneSuccess, out.Tone)
	require.Equal(t, "Innovatech", ledger[1].Name)
}

func TestAdministrativeIncompleteDocsNeverApto(t *testing.T) {
	offer := testOffers()[2]
	for _, selected := range []map[string]bool{allGood, oneGood, noneSel} {
		ledger := Ledger{3: {ID: 3, Name: offer.Name, Issues: []string{"previo"}}}
		evaluate(t, models.StepAdministrative, offer, selected, ledger)

		require.Equal(t, models.AdminNoApto, ledger[3].AdministrativeCheck)
		require.Len(t, ledger[3].Issues, 2)
		require.Equal(t, "previo", ledger[3].Issues[0])
	}

	ledger := Ledger{}
	evaluate(t, models.StepAdministrative, offer, allGood, ledger)
	require.Equal(t, []string{IssueIncompleteDocs}, ledger[3].Issues)
}

func TestAdministrativeLowQualityIsInconclusive(t *testing.T) {
	ledger := Ledger{}
	out := evaluate(t, models.StepAdministrative, testOffers()[0], oneGood, ledger)

	require.Equal(t, models.AdminNoApto, ledger[1].AdministrativeCheck)
	require.Equal(t, []string{IssueInconclusive}, ledger[1].Issues)
	require.Equal(t, ToneWarning, out.Tone)
	require.NotContains(t, out.Rationale, "documentos administrativos incompletos")

	evaluate(t, models.StepAdministrative, testOffers()[2], noneSel, ledger)
	require.Equal(t, []string{IssueInconclusive}, ledger[3].Issues)
}

func TestTechnicalSkippedWithoutApto(t *testing.T) {
	ledger := Ledger{}
	out := evaluate(t, models.StepTechnical, testOffers()[2], allGood, ledger)

	require.Equal(t, StatusSkipped, out.Status)
	require.Equal(t, 0, ledger[3].TechnicalScore)
	require.Equal(t, SkippedRationale, ledger[3].TechnicalRationale)
	require.Contains(t, out.Rationale, "omitida")
}

func TestTechnicalScoreByStrength(t *testing.T) {
	cases := []struct {
		strength models.TechnicalStrength
		selected map[string]bool
		want     int
	}{
		{models.StrengthStrong, allGood, 60},
		{models.StrengthStrong, oneGood, 55},
		{models.StrengthAverage, allGood, 45},
		{models.StrengthAverage, noneSel, 35},
		{models.StrengthWeak, oneGood, 25},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s-%d", tc.strength, tc.want), func(t *testing.T) {
			offer := models.Offer{ID: 9, Name: "X", AdminDocsComplete: true, TechnicalStrength: tc.strength, Price: 1}
			ledger := Ledger{9: {ID: 9, AdministrativeCheck: models.AdminApto}}
			evaluate(t, models.StepTechnical, offer, tc.selected, ledger)
			require.Equal(t, tc.want, ledger[9].TechnicalScore)
		})
	}
}

func TestTechnicalRationaleReflectsQuality(t *testing.T) {
	ledger := Ledger{1: {ID: 1, AdministrativeCheck: models.AdminApto}}
	evaluate(t, models.StepTechnical, testOffers()[0], oneGood, ledger)
	require.Contains(t, ledger[1].TechnicalRationale, "podría ser más específico")

	evaluate(t, models.StepTechnical, testOffers()[0], allGood, ledger)
	require.Contains(t, ledger[1].TechnicalRationale, "justificación clara")
}

func TestEconomicScoreBounds(t *testing.T) {
	prices := []float64{1, 50000, 95000, 110000, 250000, 1e7}
	for _, own := range prices {
		for _, other := range prices {
			offers := []models.Offer{
				{ID: 1, Name: "A", Price: own},
				{ID: 2, Name: "B", Price: other},
			}
			ledger := Ledger{
				1: {ID: 1, AdministrativeCheck: models.AdminApto},
				2: {ID: 2, AdministrativeCheck: models.AdminApto},
			}
			_, err := Evaluate(Input{
				Step:     stepWithChoices(models.StepEconomic, standardChoices()...),
				Offer:    offers[0],
				Selected: allGood,
				Offers:   offers,
			}, ledger)
			require.NoError(t, err)
			score := ledger[1].EconomicScore
			require.GreaterOrEqual(t, score, 0)
			require.LessOrEqual(t, score, MaxEconomicScore)
			if own <= other {
				require.Equal(t, MaxEconomicScore, score)
			}
		}
	}
}

func TestEconomicFallsBackToOwnPrice(t *testing.T) {
	ledger := Ledger{1: {ID: 1, AdministrativeCheck: models.AdminApto}}
	out := evaluate(t, models.StepEconomic, testOffers()[0], allGood, ledger)

	require.Equal(t, 40, ledger[1].EconomicScore)
	require.Contains(t, out.Rationale, "110000€")
	require.Equal(t, 110000.0, LowestAptoPrice(testOffers()[0], testOffers(), ledger))
}

func TestEconomicIgnoresOffersThatAreNotApto(t *testing.T) {
	ledger := Ledger{
		1: {ID: 1, AdministrativeCheck: models.AdminApto},
		3: {ID: 3, AdministrativeCheck: models.AdminNoApto},
	}
	evaluate(t, models.StepEconomic, testOffers()[0], allGood, ledger)
	require.Equal(t, 40, ledger[1].EconomicScore)
}

func TestEconomicFailsOnLowQuality(t *testing.T) {
	ledger := Ledger{1: {ID: 1, AdministrativeCheck: models.AdminApto}}
	out := evaluate(t, models.StepEconomic, testOffers()[0], noneSel, ledger)

	require.Equal(t, StatusApplied, out.Status)
	require.Equal(t, 0, ledger[1].EconomicScore)
	require.Contains(t, out.Rationale, "Problema")
	require.Equal(t, ToneWarning, out.Tone)
}

func TestFinalScoreConsistency(t *testing.T) {
	statuses := []models.AdminStatus{models.AdminApto, models.AdminNoApto, models.AdminUnset}
	for _, status := range statuses {
		ledger := Ledger{1: {ID: 1, AdministrativeCheck: status, TechnicalScore: 47, EconomicScore: 33, Issues: []string{"a", "b"}}}
		evaluate(t, models.StepFinal, testOffers()[0], allGood, ledger)

		if status == models.AdminApto {
			require.Equal(t, 80, ledger[1].FinalScore)
		} else {
			require.Equal(t, 0, ledger[1].FinalScore)
		}
		require.Empty(t, ledger[1].Issues)
	}
}

func TestFinalReplacesIssuesOnLowQuality(t *testing.T) {
	ledger := Ledger{1: {ID: 1, AdministrativeCheck: models.AdminNoApto, Issues: []string{"a", "b"}}}
	out := evaluate(t, models.StepFinal, testOffers()[0], noneSel, ledger)

	require.Equal(t, []string{IssueWeakSynthesis}, ledger[1].Issues)
	require.Contains(t, out.Rationale, "Necesita mejorar")
	require.Contains(t, out.Rationale, "por no ser APTA")
}

func TestUnknownStepKind(t *testing.T) {
	_, err := Evaluate(Input{Step: models.ChainingStep{ID: "x", Kind: "bogus"}, Offer: testOffers()[0]}, Ledger{})
	require.ErrorIs(t, err, ErrUnknownStep)
}

func TestEndToEndScenario(t *testing.T) {
	offers := testOffers()
	ledger := Ledger{}

	out := evaluate(t, models.StepAdministrative, offers[0], allGood, ledger)
	require.Equal(t, models.AdminApto, out.Entry.AdministrativeCheck)
	evaluate(t, models.StepAdministrative, offers[1], allGood, ledger)

	evaluate(t, models.StepTechnical, offers[0], allGood, ledger)
	require.Equal(t, 60, ledger[1].TechnicalScore)

	evaluate(t, models.StepEconomic, offers[0], allGood, ledger)
	require.Equal(t, 35, ledger[1].EconomicScore)

	out = evaluate(t, models.StepFinal, offers[0], allGood, ledger)
	require.Equal(t, 95, ledger[1].FinalScore)
	require.Contains(t, out.Rationale, "95/100")
	require.Contains(t, out.Rationale, "Buena")
	require.Equal(t, ToneSuccess, out.Tone)
}

func TestEvaluateOnlyTouchesCurrentOffer(t *testing.T) {
	ledger := Ledger{2: {ID: 2, AdministrativeCheck: models.AdminApto, TechnicalScore: 40}}
	before := ledger.Clone()

	evaluate(t, models.StepAdministrative, testOffers()[0], allGood, ledger)
	require.Equal(t, before[2], ledger[2])
}

func TestLedgerRanking(t *testing.T) {
	ledger := Ledger{
		1: {ID: 1, FinalScore: 70},
		2: {ID: 2, FinalScore: 90},
		3: {ID: 3, FinalScore: 70},
	}
	ranking := ledger.Ranking()
	require.Equal(t, []int{2, 1, 3}, []int{ranking[0].ID, ranking[1].ID, ranking[2].ID})
}

func TestToneOf(t *testing.T) {
	require.Equal(t, ToneSuccess, ToneOf("La oferta es administrativamente APTA."))
	require.Equal(t, ToneSuccess, ToneOf("Puntuación técnica: 55/60."))
	require.Equal(t, ToneWarning, ToneOf("La oferta es administrativamente NO APTA."))
	require.Equal(t, ToneWarning, ToneOf("Evaluación técnica omitida."))
	require.Equal(t, ToneWarning, ToneOf("sin marcadores"))
}
