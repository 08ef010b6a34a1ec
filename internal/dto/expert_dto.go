package dto

// ExpertQueryRequest is a free-text question for the expert model.
type ExpertQueryRequest struct {
	Query string `json:"query" validate:"max=2000"`
}

// ExpertAnswer is the text returned to the player. Degraded is true when a
// canned message replaced the model answer.
type ExpertAnswer struct {
	Answer   string `json:"answer"`
	Degraded bool   `json:"degraded"`
}
