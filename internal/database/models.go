package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the row model for the users table. email_verified is set at
// registration time; the verification token columns are only populated by an
// explicit resend.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID                         int64      `bun:"id,pk,autoincrement"`
	Name                       string     `bun:"name,notnull"`
	Email                      string     `bun:"email,notnull,unique"`
	Password                   string     `bun:"password,notnull"`
	TeamName                   string     `bun:"team_name,notnull"`
	EmailVerified              bool       `bun:"email_verified,notnull"`
	EmailVerificationToken     *string    `bun:"email_verification_token"`
	EmailVerificationExpiresAt *time.Time `bun:"email_verification_expires_at"`
	CreatedAt                  time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt                  time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Session is one authenticated browser context. The id is the opaque 64-hex
// identifier handed to the client; rows live until logout or deletion.
type Session struct {
	bun.BaseModel `bun:"table:sessions"`

	ID           string    `bun:"id,pk"`
	UserID       int64     `bun:"user_id,notnull"`
	IPAddress    *string   `bun:"ip_address"`
	UserAgent    *string   `bun:"user_agent"`
	LastActivity time.Time `bun:"last_activity,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// PasswordReset is an ephemeral credential-recovery token. At most one live
// row per email; rows are deleted on consumption.
type PasswordReset struct {
	bun.BaseModel `bun:"table:password_resets"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Email     string    `bun:"email,notnull"`
	Token     string    `bun:"token,notnull,unique"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type Team struct {
	bun.BaseModel `bun:"table:teams"`

	ID   int64  `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

type TeamMember struct {
	bun.BaseModel `bun:"table:team_members"`

	ID        int64     `bun:"id,pk,autoincrement"`
	TeamID    int64     `bun:"team_id,notnull"`
	UserID    int64     `bun:"user_id,notnull"`
	Role      string    `bun:"role,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type Task struct {
	bun.BaseModel `bun:"table:tasks"`

	ID          int64      `bun:"id,pk,autoincrement"`
	UserID      int64      `bun:"user_id,notnull"`
	AssignedTo  int64      `bun:"assigned_to,notnull"`
	Title       string     `bun:"title,notnull"`
	Description *string    `bun:"description"`
	Status      string     `bun:"status,notnull"`
	DueDate     *time.Time `bun:"due_date"`
	CompletedAt *time.Time `bun:"completed_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Retrospective is a weekly self-review across five rated aspects.
type Retrospective struct {
	bun.BaseModel `bun:"table:retrospectives"`

	ID                   int64      `bun:"id,pk,autoincrement"`
	UserID               int64      `bun:"user_id,notnull"`
	WeekStartDate        time.Time  `bun:"week_start_date,notnull"`
	WeekEndDate          time.Time  `bun:"week_end_date,notnull"`
	RequirementsRating   int        `bun:"requirements_rating,notnull"`
	RequirementsReason   string     `bun:"requirements_reason,notnull"`
	DevelopmentRating    int        `bun:"development_rating,notnull"`
	DevelopmentReason    string     `bun:"development_reason,notnull"`
	PresentationRating   int        `bun:"presentation_rating,notnull"`
	PresentationReason   string     `bun:"presentation_reason,notnull"`
	RetrospectiveRating  int        `bun:"retrospective_rating,notnull"`
	RetrospectiveReason  string     `bun:"retrospective_reason,notnull"`
	OtherRating          int        `bun:"other_rating,notnull"`
	OtherReason          string     `bun:"other_reason,notnull"`
	FutureOutlook        string     `bun:"future_outlook,notnull"`
	Status               string     `bun:"status,notnull"`
	SubmittedAt          *time.Time `bun:"submitted_at"`
	CreatedAt            time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt            time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

type RetrospectiveTask struct {
	bun.BaseModel `bun:"table:retrospective_tasks"`

	ID              int64     `bun:"id,pk,autoincrement"`
	RetrospectiveID int64     `bun:"retrospective_id,notnull"`
	TaskID          int64     `bun:"task_id,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type Feedback struct {
	bun.BaseModel `bun:"table:feedbacks"`

	ID              int64     `bun:"id,pk,autoincrement"`
	RetrospectiveID int64     `bun:"retrospective_id,notnull"`
	SenderID        int64     `bun:"sender_id,notnull"`
	ReceiverID      int64     `bun:"receiver_id,notnull"`
	Content         string    `bun:"content,notnull"`
	IsRead          bool      `bun:"is_read,notnull,default:false"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type FeedbackReply struct {
	bun.BaseModel `bun:"table:feedback_replies"`

	ID         int64     `bun:"id,pk,autoincrement"`
	FeedbackID int64     `bun:"feedback_id,notnull"`
	UserID     int64     `bun:"user_id,notnull"`
	Content    string    `bun:"content,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type FeedbackReaction struct {
	bun.BaseModel `bun:"table:feedback_reactions"`

	ID           int64     `bun:"id,pk,autoincrement"`
	FeedbackID   int64     `bun:"feedback_id,notnull"`
	UserID       int64     `bun:"user_id,notnull"`
	ReactionType string    `bun:"reaction_type,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// GoodMore is a peer-recognition message. Status moves sent -> read -> reacted.
type GoodMore struct {
	bun.BaseModel `bun:"table:good_mores"`

	ID          int64     `bun:"id,pk,autoincrement"`
	SenderID    int64     `bun:"sender_id,notnull"`
	ReceiverID  int64     `bun:"receiver_id,notnull"`
	GoodMessage string    `bun:"good_message,notnull"`
	MoreMessage *string   `bun:"more_message"`
	Status      string    `bun:"status,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type GoodMoreReaction struct {
	bun.BaseModel `bun:"table:good_more_reactions"`

	ID              int64     `bun:"id,pk,autoincrement"`
	GoodMoreID      int64     `bun:"good_more_id,notnull"`
	UserID          int64     `bun:"user_id,notnull"`
	ReactionType    string    `bun:"reaction_type,notnull"`
	ReactionContent *string   `bun:"reaction_content"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type Goal struct {
	bun.BaseModel `bun:"table:goals"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      int64     `bun:"user_id,notnull"`
	Title       string    `bun:"title,notnull"`
	Description *string   `bun:"description"`
	Status      string    `bun:"status,notnull"`
	Evaluation  *string   `bun:"evaluation"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type TeamRetrospectiveEvaluation struct {
	bun.BaseModel `bun:"table:team_retrospective_evaluations"`

	ID              int64     `bun:"id,pk,autoincrement"`
	UserID          int64     `bun:"user_id,notnull"`
	TeamID          int64     `bun:"team_id,notnull"`
	WeekStartDate   time.Time `bun:"week_start_date,notnull"`
	EvaluationScore int       `bun:"evaluation_score,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

type OutlookCheck struct {
	bun.BaseModel `bun:"table:outlook_checks"`

	ID              int64     `bun:"id,pk,autoincrement"`
	UserID          int64     `bun:"user_id,notnull"`
	RetrospectiveID int64     `bun:"retrospective_id,notnull"`
	IsCompleted     bool      `bun:"is_completed,notnull"`
	CreatedAt       time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt       time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
