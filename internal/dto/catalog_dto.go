package dto

import "github.com/jcarlosmelian/promtscp/internal/models"

// StageOverview lists a stage with its kind and content.
type StageOverview struct {
	Stage       models.Stage     `json:"stage"`
	Kind        models.StageKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

// CatalogResponse is the read-only walkthrough content. Task orders and
// choice correctness are withheld.
type CatalogResponse struct {
	Stages        []StageOverview      `json:"stages"`
	Offers        []OfferView          `json:"offers"`
	Tasks         []TaskView           `json:"tasks"`
	Principles    []PrincipleSummary   `json:"principles"`
	Steps         []StepView           `json:"steps"`
	Methodologies []models.Methodology `json:"methodologies"`
}

// PrincipleSummary names a principle without its quiz scenario.
type PrincipleSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
