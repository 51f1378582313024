package task

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
)

const defaultTeamID = 1

// Handler contains HTTP handlers for the dashboard endpoints
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateTaskRequest represents the task creation request body
type CreateTaskRequest struct {
	UserID      int64   `json:"user_id"`
	AssignedTo  *int64  `json:"assigned_to"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

// UpdateTaskRequest represents the partial task update request body
type UpdateTaskRequest struct {
	ID          *int64  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	AssignedTo  *int64  `json:"assigned_to"`
	DueDate     *string `json:"due_date"`
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

// Stats returns the completion-rate roll-ups
// @Summary      Dashboard statistics
// @Tags         dashboard
// @Produce      json
// @Param        user_id query int true "User id"
// @Param        team_id query int false "Team id (default 1)"
// @Success      200 {object} DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing user_id"
// @Router       /dashboard/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := queryInt(r, "user_id")
	if !ok {
		httputil.RespondError(w, "user_id is required", http.StatusUnprocessableEntity)
		return
	}
	teamID := queryIntDefault(r, "team_id", defaultTeamID)

	stats, err := h.repo.Stats(r.Context(), userID, teamID)
	if err != nil {
		logger.Error("failed to compute dashboard stats", "error", err.Error())
		httputil.RespondError(w, "failed to load statistics", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: stats}, http.StatusOK)
}

// ListTasks returns personal or team tasks
// @Summary      List tasks
// @Tags         dashboard
// @Produce      json
// @Param        user_id query int false "Filter by assignee"
// @Param        team_id query int false "Team id (default 1)"
// @Success      200 {object} DataResponse
// @Router       /dashboard/tasks [get]
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var tasks []Task
	var err error
	if userID, ok := queryInt(r, "user_id"); ok {
		tasks, err = h.repo.ListByAssignee(r.Context(), userID)
	} else {
		teamID := queryIntDefault(r, "team_id", defaultTeamID)
		tasks, err = h.repo.ListByTeam(r.Context(), teamID)
	}
	if err != nil {
		logger.Error("failed to list tasks", "error", err.Error())
		httputil.RespondError(w, "failed to load tasks", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: tasks}, http.StatusOK)
}

// CreateTask creates a new task
// @Summary      Create task
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        request body CreateTaskRequest true "Task fields"
// @Success      201 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing required fields"
// @Router       /dashboard/tasks [post]
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == 0 || req.Title == "" {
		httputil.RespondError(w, "required fields: user_id, title", http.StatusUnprocessableEntity)
		return
	}

	assignedTo := req.UserID
	if req.AssignedTo != nil {
		assignedTo = *req.AssignedTo
	}
	status := "pending"
	if req.Status != nil {
		status = *req.Status
	}
	// Unspecified due dates land one week out
	dueDate := time.Now().AddDate(0, 0, 7)
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			httputil.RespondError(w, "due_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
			return
		}
		dueDate = parsed
	}

	id, createdAt, err := h.repo.Create(r.Context(), CreateInput{
		UserID:      req.UserID,
		AssignedTo:  assignedTo,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     dueDate,
	})
	if err != nil {
		logger.Error("failed to create task", "error", err.Error())
		httputil.RespondError(w, "failed to create task", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "task created",
		Data:    map[string]any{"id": id, "created_at": createdAt},
	}, http.StatusCreated)
}

// UpdateTask applies a partial update
// @Summary      Update task
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        request body UpdateTaskRequest true "Fields to update"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing id or no fields"
// @Router       /dashboard/task [put]
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ID == nil {
		httputil.RespondError(w, "id is required", http.StatusUnprocessableEntity)
		return
	}

	in := UpdateInput{
		ID:          *req.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			httputil.RespondError(w, "due_date must be YYYY-MM-DD", http.StatusUnprocessableEntity)
			return
		}
		in.DueDate = &parsed
	}

	if in.Empty() {
		httputil.RespondError(w, "no fields to update", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.Update(r.Context(), in); err != nil {
		logger.Error("failed to update task", "error", err.Error())
		httputil.RespondError(w, "failed to update task", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "task updated"}, http.StatusOK)
}

// DeleteTask removes a task
// @Summary      Delete task
// @Tags         dashboard
// @Produce      json
// @Param        id query int true "Task id"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing id"
// @Router       /dashboard/task [delete]
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := queryInt(r, "id")
	if !ok {
		httputil.RespondError(w, "id is required", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		logger.Error("failed to delete task", "error", err.Error())
		httputil.RespondError(w, "failed to delete task", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "task deleted"}, http.StatusOK)
}

// TeamMembers returns the team roster
// @Summary      List team members
// @Tags         dashboard
// @Produce      json
// @Param        team_id query int false "Team id (default 1)"
// @Success      200 {object} DataResponse
// @Router       /dashboard/team-members [get]
func (h *Handler) TeamMembers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	teamID := queryIntDefault(r, "team_id", defaultTeamID)

	members, err := h.repo.TeamMembers(r.Context(), teamID)
	if err != nil {
		logger.Error("failed to list team members", "error", err.Error())
		httputil.RespondError(w, "failed to load team members", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: members}, http.StatusOK)
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

func queryIntDefault(r *http.Request, name string, def int64) int64 {
	if v, ok := queryInt(r, name); ok {
		return v
	}
	return def
}
