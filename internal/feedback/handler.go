package feedback

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/validate"
)

// Handler contains HTTP handlers for the feedback endpoints
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateFeedbackRequest represents the feedback creation body
type CreateFeedbackRequest struct {
	RetrospectiveID int64  `json:"retrospective_id" validate:"required"`
	SenderID        int64  `json:"sender_id" validate:"required"`
	ReceiverID      int64  `json:"receiver_id" validate:"required"`
	Content         string `json:"content" validate:"required,max=1000"`
}

// UpdateFeedbackRequest represents the feedback edit body
type UpdateFeedbackRequest struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

// CreateReplyRequest represents the reply body
type CreateReplyRequest struct {
	FeedbackID int64  `json:"feedback_id"`
	UserID     int64  `json:"user_id"`
	Content    string `json:"content"`
}

// ReactionRequest represents the reaction toggle body
type ReactionRequest struct {
	FeedbackID   int64  `json:"feedback_id"`
	UserID       int64  `json:"user_id"`
	ReactionType string `json:"reaction_type"`
}

// MarkReadRequest represents the mark-read body
type MarkReadRequest struct {
	FeedbackID int64 `json:"feedback_id"`
}

// DataResponse wraps a data payload in the success envelope
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// MessageResponse is the generic success envelope
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ReactionResponse reports the toggle outcome.
type ReactionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// TeamRetrospectives lists the team's submitted retrospectives
// @Summary      Team retrospectives
// @Tags         feedback
// @Produce      json
// @Param        team_id query int true "Team id"
// @Success      200 {object} DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing team_id"
// @Router       /feedback/retrospectives [get]
func (h *Handler) TeamRetrospectives(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	teamID, ok := queryInt(r, "team_id")
	if !ok {
		httputil.RespondError(w, "team_id is required", http.StatusUnprocessableEntity)
		return
	}

	retros, err := h.repo.TeamRetrospectives(r.Context(), teamID)
	if err != nil {
		logger.Error("failed to list team retrospectives", "error", err.Error())
		httputil.RespondError(w, "failed to load retrospectives", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: retros}, http.StatusOK)
}

// List returns received or sent feedback for a user
// @Summary      List feedback
// @Tags         feedback
// @Produce      json
// @Param        user_id query int true "User id"
// @Param        type query string false "received (default) or sent"
// @Success      200 {object} DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing user_id"
// @Router       /feedback/feedbacks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := queryInt(r, "user_id")
	if !ok {
		httputil.RespondError(w, "user_id is required", http.StatusUnprocessableEntity)
		return
	}

	var feedbacks []Feedback
	var err error
	if r.URL.Query().Get("type") == "sent" {
		feedbacks, err = h.repo.ListSent(r.Context(), userID)
	} else {
		feedbacks, err = h.repo.ListReceived(r.Context(), userID)
	}
	if err != nil {
		logger.Error("failed to list feedback", "error", err.Error())
		httputil.RespondError(w, "failed to load feedback", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: feedbacks}, http.StatusOK)
}

// Create sends feedback on a retrospective
// @Summary      Send feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request body CreateFeedbackRequest true "Feedback fields"
// @Success      201 {object} MessageResponse
// @Failure      422 {object} httputil.FieldErrorResponse "Validation errors"
// @Router       /feedback/feedbacks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if fieldErrors := validate.Fields(req); fieldErrors != nil {
		httputil.RespondFieldErrors(w, fieldErrors)
		return
	}

	id, err := h.repo.Create(r.Context(), req.RetrospectiveID, req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		logger.Error("failed to create feedback", "error", err.Error())
		httputil.RespondError(w, "failed to send feedback", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "feedback sent",
		Data:    map[string]int64{"id": id},
	}, http.StatusCreated)
}

// Update edits a feedback's content
// @Summary      Edit feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request body UpdateFeedbackRequest true "Feedback id and new content"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing fields or content too long"
// @Router       /feedback/feedback [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req UpdateFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ID == 0 || req.Content == "" {
		httputil.RespondError(w, "required fields: id, content", http.StatusUnprocessableEntity)
		return
	}
	if len([]rune(req.Content)) > 1000 {
		httputil.RespondError(w, "content must be at most 1000 characters", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.UpdateContent(r.Context(), req.ID, req.Content); err != nil {
		logger.Error("failed to update feedback", "error", err.Error())
		httputil.RespondError(w, "failed to update feedback", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "feedback updated"}, http.StatusOK)
}

// Delete removes a feedback
// @Summary      Delete feedback
// @Tags         feedback
// @Produce      json
// @Param        id query int true "Feedback id"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing id"
// @Router       /feedback/feedback [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := queryInt(r, "id")
	if !ok {
		httputil.RespondError(w, "id is required", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		logger.Error("failed to delete feedback", "error", err.Error())
		httputil.RespondError(w, "failed to delete feedback", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "feedback deleted"}, http.StatusOK)
}

// Reply adds a threaded reply
// @Summary      Reply to feedback
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request body CreateReplyRequest true "Reply fields"
// @Success      201 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing fields or content too long"
// @Router       /feedback/reply [post]
func (h *Handler) Reply(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.FeedbackID == 0 || req.UserID == 0 || req.Content == "" {
		httputil.RespondError(w, "required fields: feedback_id, user_id, content", http.StatusUnprocessableEntity)
		return
	}
	if len([]rune(req.Content)) > 1000 {
		httputil.RespondError(w, "content must be at most 1000 characters", http.StatusUnprocessableEntity)
		return
	}

	id, err := h.repo.CreateReply(r.Context(), req.FeedbackID, req.UserID, req.Content)
	if err != nil {
		logger.Error("failed to create reply", "error", err.Error())
		httputil.RespondError(w, "failed to send reply", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "reply sent",
		Data:    map[string]int64{"id": id},
	}, http.StatusCreated)
}

// Reaction toggles the caller's reaction on a feedback
// @Summary      Toggle reaction
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request body ReactionRequest true "Reaction fields"
// @Success      200 {object} ReactionResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing fields"
// @Router       /feedback/reaction [post]
func (h *Handler) Reaction(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.FeedbackID == 0 || req.UserID == 0 || req.ReactionType == "" {
		httputil.RespondError(w, "required fields: feedback_id, user_id, reaction_type", http.StatusUnprocessableEntity)
		return
	}

	action, err := h.repo.ToggleReaction(r.Context(), req.FeedbackID, req.UserID, req.ReactionType)
	if err != nil {
		logger.Error("failed to toggle reaction", "error", err.Error())
		httputil.RespondError(w, "failed to toggle reaction", http.StatusInternalServerError)
		return
	}

	message := "reaction added"
	if action == "removed" {
		message = "reaction removed"
	}

	httputil.RespondJSON(w, ReactionResponse{
		Success: true,
		Message: message,
		Action:  action,
	}, http.StatusOK)
}

// MarkRead flags a feedback as read
// @Summary      Mark feedback read
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        request body MarkReadRequest true "Feedback id"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing feedback_id"
// @Router       /feedback/mark-read [put]
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.FeedbackID == 0 {
		httputil.RespondError(w, "feedback_id is required", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.MarkAsRead(r.Context(), req.FeedbackID); err != nil {
		logger.Error("failed to mark feedback as read", "error", err.Error())
		httputil.RespondError(w, "failed to mark as read", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "marked as read"}, http.StatusOK)
}

func queryInt(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
