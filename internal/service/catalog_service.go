package service

import (
	"github.com/jcarlosmelian/promtscp/internal/catalog"
	"github.com/jcarlosmelian/promtscp/internal/dto"
	"github.com/jcarlosmelian/promtscp/internal/stage"
)

// CatalogService exposes the read-only walkthrough content.
type CatalogService interface {
	Overview() dto.CatalogResponse
}

type catalogService struct {
	overview dto.CatalogResponse
}

// NewCatalogService renders cat once; the catalogue never changes at runtime.
func NewCatalogService(cat *catalog.Catalog) CatalogService {
	resp := dto.CatalogResponse{Methodologies: cat.Methodologies}
	for _, s := range stage.Order() {
		content := cat.StageContent(s)
		resp.Stages = append(resp.Stages, dto.StageOverview{
			Stage:       s,
			Kind:        stage.Kind(s),
			Title:       content.Title,
			Description: content.Description,
		})
	}
	for _, offer := range cat.Offers {
		resp.Offers = append(resp.Offers, dto.NewOfferView(offer))
	}
	for _, task := range cat.Tasks {
		resp.Tasks = append(resp.Tasks, dto.NewTaskView(task))
	}
	for _, p := range cat.Principles {
		resp.Principles = append(resp.Principles, dto.PrincipleSummary{ID: p.ID, Name: p.Name, Description: p.Description})
	}
	for _, step := range cat.Steps {
		resp.Steps = append(resp.Steps, dto.NewStepView(step))
	}
	return &catalogService{overview: resp}
}

func (s *catalogService) Overview() dto.CatalogResponse {
	return s.overview
}
