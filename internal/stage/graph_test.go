package stage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jcarlosmelian/promtscp/internal/models"
)

func TestNextYieldsUniqueSuccessor(t *testing.T) {
	seq := Order()
	for i := 0; i < len(seq)-1; i++ {
		require.Equal(t, seq[i+1], Next(seq[i]), "successor of %s", seq[i])
	}
}

func TestNextOnLastStageIsAbsorbing(t *testing.T) {
	last := Last()
	require.Equal(t, models.StageGameSummary, last)
	require.Equal(t, last, Next(last))
	require.Equal(t, last, Next(Next(last)))
}

func TestWalkVisitsEveryStageOnce(t *testing.T) {
	seen := map[models.Stage]int{}
	current := First()
	for i := 0; i < Count()+3; i++ {
		seen[current]++
		current = Next(current)
	}
	for _, s := range Order() {
		require.GreaterOrEqual(t, seen[s], 1)
		if !IsLast(s) {
			require.Equal(t, 1, seen[s], "stage %s revisited", s)
		}
	}
}

func TestIndexAndKind(t *testing.T) {
	require.Equal(t, 0, Index(models.StageIntroduction))
	require.Equal(t, -1, Index(models.Stage("UNKNOWN")))
	require.False(t, Valid(models.Stage("UNKNOWN")))
	require.Equal(t, models.StageKindIntro, Kind(models.StageTaskMappingIntro))
	require.Equal(t, models.StageKindInteractive, Kind(models.StagePromptChaining))
	require.Equal(t, First(), Next(models.Stage("UNKNOWN")))
}

func TestOrderReturnsCopy(t *testing.T) {
	seq := Order()
	seq[0] = models.StageGameSummary
	require.Equal(t, models.StageIntroduction, First())
}
