package top

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMondayOf(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"monday maps to itself", time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC), "2026-01-05"},
		{"wednesday", time.Date(2026, 1, 7, 8, 30, 0, 0, time.UTC), "2026-01-05"},
		{"sunday closes the week", time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC), "2026-01-05"},
		{"year boundary", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2025-12-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monday := mondayOf(tt.now)
			assert.Equal(t, tt.want, monday.Format("2006-01-02"))
			assert.Equal(t, 0, monday.Hour())
		})
	}
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, float64(0), completionRate(completionCount{Total: 0, Completed: 0}))
	assert.Equal(t, float64(50), completionRate(completionCount{Total: 4, Completed: 2}))
	assert.Equal(t, 33.3, completionRate(completionCount{Total: 3, Completed: 1}))
	assert.Equal(t, float64(100), completionRate(completionCount{Total: 5, Completed: 5}))
}

func TestAverageScore(t *testing.T) {
	score := func(v int) *int { return &v }

	t.Run("nobody submitted", func(t *testing.T) {
		assert.Nil(t, averageScore([]MemberEvaluation{{Name: "a"}, {Name: "b"}}))
	})

	t.Run("ignores missing scores", func(t *testing.T) {
		avg := averageScore([]MemberEvaluation{
			{Name: "a", Score: score(4)},
			{Name: "b"},
			{Name: "c", Score: score(5)},
		})
		require.NotNil(t, avg)
		assert.Equal(t, 4.5, *avg)
	})

	t.Run("rounds to one decimal", func(t *testing.T) {
		avg := averageScore([]MemberEvaluation{
			{Name: "a", Score: score(3)},
			{Name: "b", Score: score(4)},
			{Name: "c", Score: score(3)},
		})
		require.NotNil(t, avg)
		assert.Equal(t, 3.3, *avg)
	})
}
