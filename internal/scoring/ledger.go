package scoring

import (
	"sort"

	"github.com/jcarlosmelian/promtscp/internal/models"
)

// Ledger holds one EvaluationResult per offer id. Entries are created on
// first write and never removed.
type Ledger map[int]models.EvaluationResult

// Entry returns the stored result for offer, or a fresh unset one.
func (l Ledger) Entry(offer models.Offer) models.EvaluationResult {
	if entry, ok := l[offer.ID]; ok {
		return entry
	}
	return models.EvaluationResult{
		ID:     offer.ID,
		Name:   offer.Name,
		Issues: []string{},
	}
}

// Status returns the administrative status recorded for an offer id.
func (l Ledger) Status(offerID int) models.AdminStatus {
	return l[offerID].AdministrativeCheck
}

// Put stores entry under its offer id.
func (l Ledger) Put(entry models.EvaluationResult) {
	if entry.Issues == nil {
		entry.Issues = []string{}
	}
	l[entry.ID] = entry
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for id, entry := range l {
		entry.Issues = append([]string{}, entry.Issues...)
		out[id] = entry
	}
	return out
}

// Ranking lists entries by final score, highest first. Ties keep offer id order.
func (l Ledger) Ranking() []models.EvaluationResult {
	items := make([]models.EvaluationResult, 0, len(l))
	for _, entry := range l {
		items = append(items, entry)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].FinalScore != items[j].FinalScore {
			return items[i].FinalScore > items[j].FinalScore
		}
		return items[i].ID < items[j].ID
	})
	return items
}
