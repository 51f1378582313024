package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      float64
	}{
		{"no tasks", 0, 0, 0},
		{"none done", 0, 4, 0},
		{"all done", 4, 4, 100},
		{"half done", 2, 4, 50},
		{"rounds to one decimal", 1, 3, 33.3},
		{"rounds up", 2, 3, 66.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completionRate(tt.completed, tt.total))
		})
	}
}

func TestMarkOverdue(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)
	tomorrow := time.Now().AddDate(0, 0, 1)

	tasks := markOverdue([]Task{
		{Title: "past due", DueDate: &yesterday, Status: "pending"},
		{Title: "past but completed", DueDate: &yesterday, Status: "completed"},
		{Title: "still time", DueDate: &tomorrow, Status: "pending"},
		{Title: "no due date", Status: "pending"},
	})

	assert.True(t, tasks[0].IsOverdue)
	assert.False(t, tasks[1].IsOverdue)
	assert.False(t, tasks[2].IsOverdue)
	assert.False(t, tasks[3].IsOverdue)
}

func TestMarkOverdueNilSlice(t *testing.T) {
	tasks := markOverdue(nil)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestUpdateInputEmpty(t *testing.T) {
	var in UpdateInput
	assert.True(t, in.Empty())

	title := "new title"
	in.Title = &title
	assert.False(t, in.Empty())
}
