package retrospective

import "time"

// Retrospective is a submitted weekly self-review.
type Retrospective struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	WeekStartDate       time.Time  `json:"week_start_date"`
	WeekEndDate         time.Time  `json:"week_end_date"`
	RequirementsRating  int        `json:"requirements_rating"`
	RequirementsReason  string     `json:"requirements_reason"`
	DevelopmentRating   int        `json:"development_rating"`
	DevelopmentReason   string     `json:"development_reason"`
	PresentationRating  int        `json:"presentation_rating"`
	PresentationReason  string     `json:"presentation_reason"`
	RetrospectiveRating int        `json:"retrospective_rating"`
	RetrospectiveReason string     `json:"retrospective_reason"`
	OtherRating         int        `json:"other_rating"`
	OtherReason         string     `json:"other_reason"`
	FutureOutlook       string     `json:"future_outlook"`
	Status              string     `json:"status"`
	SubmittedAt         *time.Time `json:"submitted_at"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Task mirrors the tasks rows shown alongside retrospectives.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	AssignedTo  int64      `json:"assigned_to"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Detail is a retrospective with its linked tasks.
type Detail struct {
	Retrospective
	Tasks []Task `json:"tasks"`
}

// Week is a Monday-to-Sunday span.
type Week struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CurrentWeek computes this week's Monday and Sunday around the given time.
func CurrentWeek(now time.Time) Week {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday closes the week
	}
	monday := now.AddDate(0, 0, 1-weekday)
	sunday := monday.AddDate(0, 0, 6)
	return Week{
		Start: monday.Format("2006-01-02"),
		End:   sunday.Format("2006-01-02"),
	}
}
