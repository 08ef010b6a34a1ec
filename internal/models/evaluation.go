package models

// AdminStatus is the administrative compliance verdict for an offer.
type AdminStatus string

const (
	AdminUnset  AdminStatus = ""
	AdminApto   AdminStatus = "APTO"
	AdminNoApto AdminStatus = "NO APTO"
)

// EvaluationResult accumulates the scoring state of one offer.
type EvaluationResult struct {
	ID                  int         `json:"id"`
	Name                string      `json:"name"`
	AdministrativeCheck AdminStatus `json:"administrative_check"`
	TechnicalScore      int         `json:"technical_score"`
	EconomicScore       int         `json:"economic_score"`
	FinalScore          int         `json:"final_score"`
	Issues              []string    `json:"issues"`
	TechnicalRationale  string      `json:"technical_rationale,omitempty"`
	EconomicRationale   string      `json:"economic_rationale,omitempty"`
}

// IsApto reports whether the offer passed the administrative check.
func (r EvaluationResult) IsApto() bool {
	return r.AdministrativeCheck == AdminApto
}
