package feedback

import "time"

// TeamRetrospective is a retrospective row with the author's name, as listed
// on the feedback screen.
type TeamRetrospective struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	UserName            string     `json:"user_name"`
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

// Reply is one threaded reply on a feedback.
type Reply struct {
	ID         int64     `json:"id"`
	FeedbackID int64     `json:"feedback_id"`
	UserID     int64     `json:"user_id"`
	UserName   string    `json:"user_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReactionCount aggregates reactions of one type on a feedback.
type ReactionCount struct {
	ReactionType string `json:"reaction_type"`
	Count        int    `json:"count"`
}

// Feedback is one feedback with listing metadata. SenderName is set on
// received listings, ReceiverName on sent listings.
type Feedback struct {
	ID              int64           `json:"id"`
	RetrospectiveID int64           `json:"retrospective_id"`
	SenderID        int64           `json:"sender_id"`
	ReceiverID      int64           `json:"receiver_id"`
	Content         string          `json:"content"`
	IsRead          bool            `json:"is_read"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	SenderName      *string         `json:"sender_name,omitempty"`
	ReceiverName    *string         `json:"receiver_name,omitempty"`
	WeekStartDate   time.Time       `json:"week_start_date"`
	ReplyCount      int             `json:"reply_count"`
	ReactionCount   int             `json:"reaction_count"`
	Replies         []Reply         `json:"replies"`
	Reactions       []ReactionCount `json:"reactions"`
}
