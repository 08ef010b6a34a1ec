package scoring

import "github.com/jcarlosmelian/promtscp/internal/models"

// DefaultQuality is used when a step defines no good choices.
const DefaultQuality = 0.5

// QualityBreakdown shows how a prompt quality value was derived.
type QualityBreakdown struct {
	GoodChosen int     `json:"good_chosen"`
	BadChosen  int     `json:"bad_chosen"`
	TotalGood  int     `json:"total_good"`
	Quality    float64 `json:"quality"`
}

// MeasureQuality scores the selected enhancements of one step. Bad choices
// subtract from good ones; the result is clamped to [0, 1]. Ids that do not
// belong to the step are ignored.
func MeasureQuality(step models.ChainingStep, selected map[string]bool) QualityBreakdown {
	var b QualityBreakdown
	for _, choice := range step.EnhancementChoices {
		if choice.IsGood {
			b.TotalGood++
		}
		if !selected[choice.ID] {
			continue
		}
		if choice.IsGood {
			b.GoodChosen++
		} else {
			b.BadChosen++
		}
	}

	if b.TotalGood == 0 {
		b.Quality = DefaultQuality
		return b
	}
	b.Quality = clampFloat(float64(b.GoodChosen-b.BadChosen)/float64(b.TotalGood), 0, 1)
	return b
}

// PromptQuality is MeasureQuality without the breakdown.
func PromptQuality(step models.ChainingStep, selected map[string]bool) float64 {
	return MeasureQuality(step, selected).Quality
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
