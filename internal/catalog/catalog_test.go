package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcarlosmelian/promtscp/internal/models"
	"github.com/jcarlosmelian/promtscp/internal/stage"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Len(t, c.Offers, 3)
	require.Len(t, c.Tasks, 5)
	require.Len(t, c.Principles, 5)
	require.Len(t, c.Steps, 4)
	require.Len(t, c.Methodologies, 6)
	require.NotEmpty(t, c.Closing)

	for _, s := range stage.Order() {
		require.NotEmpty(t, c.StageContent(s).Title, "stage %s", s)
	}

	kinds := []models.StepKind{models.StepAdministrative, models.StepTechnical, models.StepEconomic, models.StepFinal}
	for i, step := range c.Steps {
		require.Equal(t, kinds[i], step.Kind)
		require.Len(t, step.EnhancementChoices, 3)
	}

	offer, ok := c.Offer(1)
	require.True(t, ok)
	require.Equal(t, models.StrengthStrong, offer.TechnicalStrength)
	require.Equal(t, 110000.0, offer.Price)

	require.Equal(t, models.AnswerViolation, c.Principles[0].ScenarioPolarity())
}

func TestSortedTasksFollowsCanonicalOrder(t *testing.T) {
	c := MustDefault()
	sorted := c.SortedTasks()
	for i, task := range sorted {
		require.Equal(t, i+1, task.Order)
	}
	require.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, c.TaskIDs())
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	broken := strings.Replace(string(defaultContent), "technical_strength: strong", "technical_strength: excellent", 1)
	_, err := Parse([]byte(broken))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidCatalog))
}

func TestParseRejectsDuplicateTaskOrder(t *testing.T) {
	broken := strings.Replace(string(defaultContent), "order: 5", "order: 4", 1)
	_, err := Parse([]byte(broken))
	require.ErrorIs(t, err, ErrInvalidCatalog)
	require.Contains(t, err.Error(), "order")
}

func TestParseRejectsMissingStageContent(t *testing.T) {
	broken := strings.Replace(string(defaultContent), "  GAME_SUMMARY:\n", "  OTHER_STAGE:\n", 1)
	_, err := Parse([]byte(broken))
	require.ErrorIs(t, err, ErrInvalidCatalog)
	require.Contains(t, err.Error(), "GAME_SUMMARY")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultContent, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Steps, 4)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
