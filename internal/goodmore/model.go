// Package goodmore implements peer recognition messages. A Good&More pairs a
// mandatory "good" message with an optional "more" improvement hint and moves
// through the statuses sent, read and reacted.
package goodmore

import "time"

// GoodMore is one recognition message together with the counterpart's name
// resolved for display. SenderName is filled on received listings,
// ReceiverName on sent listings and both on the detail view.
type GoodMore struct {
	ID            int64      `json:"id"`
	SenderID      int64      `json:"sender_id"`
	ReceiverID    int64      `json:"receiver_id"`
	GoodMessage   string     `json:"good_message"`
	MoreMessage   *string    `json:"more_message"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	SenderName    *string    `json:"sender_name,omitempty"`
	SenderEmail   *string    `json:"sender_email,omitempty"`
	ReceiverName  *string    `json:"receiver_name,omitempty"`
	ReceiverEmail *string    `json:"receiver_email,omitempty"`
	ReactionCount int        `json:"reaction_count"`
	Reactions     []Reaction `json:"reactions,omitempty"`
}

// Reaction is a single user's response to a Good&More. Each user keeps at
// most one reaction per message.
type Reaction struct {
	ID              int64     `json:"id"`
	GoodMoreID      int64     `json:"good_more_id"`
	UserID          int64     `json:"user_id"`
	ReactionType    string    `json:"reaction_type"`
	ReactionContent *string   `json:"reaction_content"`
	CreatedAt       time.Time `json:"created_at"`
	UserName        *string   `json:"user_name,omitempty"`
	UserEmail       *string   `json:"user_email,omitempty"`
}

// Pagination describes one page of a history listing.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// Notification is one entry in a user's notification feed, either an unread
// Good&More they received or a reaction left on one they sent.
type Notification struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	GoodMessage string    `json:"good_message"`
	MoreMessage *string   `json:"more_message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	SenderName  *string   `json:"sender_name"`
	Type        string    `json:"type"`
}
