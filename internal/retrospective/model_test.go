package retrospective

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentWeek(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart string
		wantEnd   string
	}{
		{
			name:      "monday",
			now:       time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC),
			wantStart: "2026-01-05",
			wantEnd:   "2026-01-11",
		},
		{
			name:      "midweek",
			now:       time.Date(2026, 1, 7, 23, 59, 0, 0, time.UTC),
			wantStart: "2026-01-05",
			wantEnd:   "2026-01-11",
		},
		{
			name:      "sunday belongs to the week before",
			now:       time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
			wantStart: "2026-01-05",
			wantEnd:   "2026-01-11",
		},
		{
			name:      "year boundary",
			now:       time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
			wantStart: "2025-12-29",
			wantEnd:   "2026-01-04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			week := CurrentWeek(tt.now)
			assert.Equal(t, tt.wantStart, week.Start)
			assert.Equal(t, tt.wantEnd, week.End)
		})
	}
}
