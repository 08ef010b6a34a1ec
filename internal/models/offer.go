package models

// TechnicalStrength is the simplified quality of an offer's technical proposal.
type TechnicalStrength string

const (
	StrengthWeak    TechnicalStrength = "weak"
	StrengthAverage TechnicalStrength = "average"
	StrengthStrong  TechnicalStrength = "strong"
)

// Label returns the Spanish label used in rationale text.
func (s TechnicalStrength) Label() string {
	switch s {
	case StrengthStrong:
		return "fuerte"
	case StrengthAverage:
		return "media"
	case StrengthWeak:
		return "débil"
	default:
		return string(s)
	}
}

// Offer is a simulated vendor bid. Offers are seeded from the catalogue and
// never mutated.
type Offer struct {
	ID                    int               `json:"id" yaml:"id"`
	Name                  string            `json:"name" yaml:"name"`
	Description           string            `json:"description" yaml:"description"`
	AdminDocsComplete     bool              `json:"admin_docs_complete" yaml:"admin_docs_complete"`
	TechnicalStrength     TechnicalStrength `json:"technical_strength" yaml:"technical_strength"`
	Price                 float64           `json:"price" yaml:"price"`
	Clarity               bool              `json:"clarity" yaml:"clarity"`
	UsesQuantifiableData  bool              `json:"uses_quantifiable_data" yaml:"uses_quantifiable_data"`
	JustificationProvided bool              `json:"justification_provided" yaml:"justification_provided"`
}
