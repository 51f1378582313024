package goodmore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Handler contains HTTP handlers for the Good&More endpoints
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// SendRequest represents the send body. MoreMessage is optional.
type SendRequest struct {
	SenderID    int64   `json:"sender_id"`
	ReceiverID  int64   `json:"receiver_id"`
	GoodMessage string  `json:"good_message"`
	MoreMessage *string `json:"more_message"`
}

// ReactionRequest represents the reaction body. ReactionContent is optional.
type ReactionRequest struct {
	GoodMoreID      int64   `json:"good_more_id"`
	UserID          int64   `json:"user_id"`
	ReactionType    string  `json:"reaction_type"`
	ReactionContent *string `json:"reaction_content"`
}

// MarkReadRequest represents the notification read body
type MarkReadRequest struct {
	GoodMoreID int64 `json:"good_more_id"`
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

// PageResponse is the envelope for paginated history listings.
type PageResponse struct {
	Success    bool        `json:"success"`
	Data       []GoodMore  `json:"data"`
	Pagination *Pagination `json:"pagination"`
}

// NotificationsResponse carries the notification feed and unread counter.
type NotificationsResponse struct {
	Success     bool           `json:"success"`
	Data        []Notification `json:"data"`
	UnreadCount int            `json:"unread_count"`
}

// Send delivers a Good&More to another user
// @Summary      Send a Good&More
// @Tags         goodmore
// @Accept       json
// @Produce      json
// @Param        request body SendRequest true "Message fields"
// @Success      201 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing fields"
// @Router       /good-more/send [post]
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.SenderID == 0 || req.ReceiverID == 0 {
		httputil.RespondError(w, "required fields: sender_id, receiver_id", http.StatusUnprocessableEntity)
		return
	}
	if req.GoodMessage == "" {
		httputil.RespondError(w, "good message is required", http.StatusUnprocessableEntity)
		return
	}

	gm, err := h.repo.Create(r.Context(), SendInput{
		SenderID:    req.SenderID,
		ReceiverID:  req.ReceiverID,
		GoodMessage: req.GoodMessage,
		MoreMessage: req.MoreMessage,
	})
	if err != nil {
		logger.Error("failed to create good&more", "error", err.Error())
		httputil.RespondError(w, "failed to send good&more", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "good&more sent",
		Data:    gm,
	}, http.StatusCreated)
}

// SentHistory lists messages the user sent, paginated
// @Summary      Sent history
// @Tags         goodmore
// @Produce      json
// @Param        sender_id query int true "Sender id"
// @Param        page query int false "Page, starting at 1"
// @Param        per_page query int false "Page size, capped at 100"
// @Success      200 {object} PageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing sender_id"
// @Router       /good-more/sent [get]
func (h *Handler) SentHistory(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	senderID, ok := queryInt(r, "sender_id")
	if !ok {
		httputil.RespondError(w, "sender_id is required", http.StatusUnprocessableEntity)
		return
	}
	page, perPage := pageParams(r)

	items, pagination, err := h.repo.ListSent(r.Context(), senderID, page, perPage)
	if err != nil {
		logger.Error("failed to list sent good&mores", "error", err.Error())
		httputil.RespondError(w, "failed to load sent history", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, PageResponse{Success: true, Data: items, Pagination: pagination}, http.StatusOK)
}

// ReceivedHistory lists messages the user received, paginated. Viewing the
// inbox marks its unread messages as read.
// @Summary      Received history
// @Tags         goodmore
// @Produce      json
// @Param        receiver_id query int true "Receiver id"
// @Param        page query int false "Page, starting at 1"
// @Param        per_page query int false "Page size, capped at 100"
// @Success      200 {object} PageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing receiver_id"
// @Router       /good-more/received [get]
func (h *Handler) ReceivedHistory(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	receiverID, ok := queryInt(r, "receiver_id")
	if !ok {
		httputil.RespondError(w, "receiver_id is required", http.StatusUnprocessableEntity)
		return
	}
	page, perPage := pageParams(r)

	items, pagination, err := h.repo.ListReceived(r.Context(), receiverID, page, perPage)
	if err != nil {
		logger.Error("failed to list received good&mores", "error", err.Error())
		httputil.RespondError(w, "failed to load received history", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, PageResponse{Success: true, Data: items, Pagination: pagination}, http.StatusOK)
}

// Detail returns one message with its reactions
// @Summary      Good&More detail
// @Tags         goodmore
// @Produce      json
// @Param        id query int true "Good&More id"
// @Success      200 {object} DataResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown id"
// @Failure      422 {object} httputil.ErrorResponse "Missing id"
// @Router       /good-more/detail [get]
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := queryInt(r, "id")
	if !ok {
		httputil.RespondError(w, "id is required", http.StatusUnprocessableEntity)
		return
	}

	gm, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "good&more not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get good&more", "error", err.Error())
		httputil.RespondError(w, "failed to load good&more", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: gm}, http.StatusOK)
}

// Notifications lists a user's unread messages and reactions on their sent
// messages
// @Summary      Notifications
// @Tags         goodmore
// @Produce      json
// @Param        user_id query int true "User id"
// @Success      200 {object} NotificationsResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing user_id"
// @Router       /good-more/notifications [get]
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := queryInt(r, "user_id")
	if !ok {
		httputil.RespondError(w, "user_id is required", http.StatusUnprocessableEntity)
		return
	}

	items, unread, err := h.repo.Notifications(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list notifications", "error", err.Error())
		httputil.RespondError(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, NotificationsResponse{
		Success:     true,
		Data:        items,
		UnreadCount: unread,
	}, http.StatusOK)
}

// MarkNotificationRead marks a received message as read
// @Summary      Mark notification read
// @Tags         goodmore
// @Accept       json
// @Produce      json
// @Param        request body MarkReadRequest true "Good&More id"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing good_more_id"
// @Router       /good-more/notifications/read [post]
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.GoodMoreID == 0 {
		httputil.RespondError(w, "good_more_id is required", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.MarkAsRead(r.Context(), req.GoodMoreID); err != nil {
		logger.Error("failed to mark notification as read", "error", err.Error())
		httputil.RespondError(w, "failed to mark as read", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "notification marked as read"}, http.StatusOK)
}

// AddReaction stores the caller's reaction on a message
// @Summary      Add reaction
// @Tags         goodmore
// @Accept       json
// @Produce      json
// @Param        request body ReactionRequest true "Reaction fields"
// @Success      201 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown good_more_id"
// @Failure      422 {object} httputil.ErrorResponse "Missing fields"
// @Router       /good-more/reaction [post]
func (h *Handler) AddReaction(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.GoodMoreID == 0 || req.UserID == 0 || req.ReactionType == "" {
		httputil.RespondError(w, "required fields: good_more_id, user_id, reaction_type", http.StatusUnprocessableEntity)
		return
	}

	reaction, err := h.repo.AddReaction(r.Context(), ReactionInput{
		GoodMoreID:      req.GoodMoreID,
		UserID:          req.UserID,
		ReactionType:    req.ReactionType,
		ReactionContent: req.ReactionContent,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "good&more not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to add reaction", "error", err.Error())
		httputil.RespondError(w, "failed to add reaction", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "reaction added",
		Data:    reaction,
	}, http.StatusCreated)
}

// RemoveReaction deletes a reaction by id
// @Summary      Remove reaction
// @Tags         goodmore
// @Produce      json
// @Param        id query int true "Reaction id"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} httputil.ErrorResponse "Unknown id"
// @Failure      422 {object} httputil.ErrorResponse "Missing id"
// @Router       /good-more/reaction [delete]
func (h *Handler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := queryInt(r, "id")
	if !ok {
		httputil.RespondError(w, "id is required", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.DeleteReaction(r.Context(), id); err != nil {
		if errors.Is(err, ErrReactionNotFound) {
			httputil.RespondError(w, "reaction not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to delete reaction", "error", err.Error())
		httputil.RespondError(w, "failed to delete reaction", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "reaction deleted"}, http.StatusOK)
}

func pageParams(r *http.Request) (page, perPage int) {
	page = 1
	if v, ok := queryInt(r, "page"); ok && v > 0 {
		page = int(v)
	}
	perPage = defaultPerPage
	if v, ok := queryInt(r, "per_page"); ok && v > 0 {
		perPage = int(v)
		if perPage > maxPerPage {
			perPage = maxPerPage
		}
	}
	return page, perPage
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
