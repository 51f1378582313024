package retrospective

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/database"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/validate"
)

// Handler contains HTTP handlers for the retrospective endpoints
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateTaskRequest represents the retrospective-screen task creation body
type CreateTaskRequest struct {
	UserID      int64   `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// CreateRequest represents the retrospective submission body. Five aspects
// are rated 1-5 with a mandatory reason each.
type CreateRequest struct {
	UserID              int64   `json:"user_id" validate:"required"`
	WeekStartDate       string  `json:"week_start_date" validate:"required"`
	WeekEndDate         string  `json:"week_end_date" validate:"required"`
	RequirementsRating  int     `json:"requirements_rating" validate:"required,gte=1,lte=5"`
	RequirementsReason  string  `json:"requirements_reason" validate:"required,max=1000"`
	DevelopmentRating   int     `json:"development_rating" validate:"required,gte=1,lte=5"`
	DevelopmentReason   string  `json:"development_reason" validate:"required,max=1000"`
	PresentationRating  int     `json:"presentation_rating" validate:"required,gte=1,lte=5"`
	PresentationReason  string  `json:"presentation_reason" validate:"required,max=1000"`
	RetrospectiveRating int     `json:"retrospective_rating" validate:"required,gte=1,lte=5"`
	RetrospectiveReason string  `json:"retrospective_reason" validate:"required,max=1000"`
	OtherRating         int     `json:"other_rating" validate:"required,gte=1,lte=5"`
	OtherReason         string  `json:"other_reason" validate:"required,max=1000"`
	FutureOutlook       string  `json:"future_outlook" validate:"required,max=1000"`
	TaskIDs             []int64 `json:"task_ids"`
}

// DataResponse wraps a data payload in the success envelope
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// CurrentWeekResponse carries this week's retrospective, if submitted.
type CurrentWeekResponse struct {
	Success     bool           `json:"success"`
	Data        *Retrospective `json:"data"`
	CurrentWeek Week           `json:"current_week"`
}

// RecentTasks returns the user's tasks from the past 7 days
// @Summary      Recent tasks
// @Tags         retrospectives
// @Produce      json
// @Param        user_id query int true "User id"
// @Success      200 {object} DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing user_id"
// @Router       /retrospectives/tasks [get]
func (h *Handler) RecentTasks(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := queryInt(r, "user_id")
	if !ok {
		httputil.RespondError(w, "user_id is required", http.StatusUnprocessableEntity)
		return
	}

	tasks, err := h.repo.RecentTasks(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list recent tasks", "error", err.Error())
		httputil.RespondError(w, "failed to load tasks", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: tasks}, http.StatusOK)
}

// CreateTask adds a task from the retrospective screen
// @Summary      Create task
// @Tags         retrospectives
// @Accept       json
// @Produce      json
// @Param        request body CreateTaskRequest true "Task fields"
// @Success      201 {object} DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing required fields"
// @Router       /retrospectives/tasks [post]
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

	status := "pending"
	if req.Status != nil {
		status = *req.Status
	}

	created, err := h.repo.CreateTask(r.Context(), req.UserID, req.Title, req.Description, status)
	if err != nil {
		logger.Error("failed to create task", "error", err.Error())
		httputil.RespondError(w, "failed to create task", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: created}, http.StatusCreated)
}

// List returns the user's retrospectives
// @Summary      List retrospectives
// @Tags         retrospectives
// @Produce      json
// @Param        user_id query int true "User id"
// @Success      200 {object} DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing user_id"
// @Router       /retrospectives [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := queryInt(r, "user_id")
	if !ok {
		httputil.RespondError(w, "user_id is required", http.StatusUnprocessableEntity)
		return
	}

	retros, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list retrospectives", "error", err.Error())
		httputil.RespondError(w, "failed to load retrospectives", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: retros}, http.StatusOK)
}

// Create submits a retrospective with optional task links
// @Summary      Submit retrospective
// @Tags         retrospectives
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Retrospective fields"
// @Success      201 {object} DataResponse
// @Failure      422 {object} httputil.FieldErrorResponse "Validation errors"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /retrospectives [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if fieldErrors := validate.Fields(req); fieldErrors != nil {
		httputil.RespondFieldErrors(w, fieldErrors)
		return
	}

	weekStart, err := time.Parse("2006-01-02", req.WeekStartDate)
	if err != nil {
		httputil.RespondFieldErrors(w, map[string]string{"week_start_date": "must be YYYY-MM-DD"})
		return
	}
	weekEnd, err := time.Parse("2006-01-02", req.WeekEndDate)
	if err != nil {
		httputil.RespondFieldErrors(w, map[string]string{"week_end_date": "must be YYYY-MM-DD"})
		return
	}

	retro := &database.Retrospective{
		UserID:              req.UserID,
		WeekStartDate:       weekStart,
		WeekEndDate:         weekEnd,
		RequirementsRating:  req.RequirementsRating,
		RequirementsReason:  req.RequirementsReason,
		DevelopmentRating:   req.DevelopmentRating,
		DevelopmentReason:   req.DevelopmentReason,
		PresentationRating:  req.PresentationRating,
		PresentationReason:  req.PresentationReason,
		RetrospectiveRating: req.RetrospectiveRating,
		RetrospectiveReason: req.RetrospectiveReason,
		OtherRating:         req.OtherRating,
		OtherReason:         req.OtherReason,
		FutureOutlook:       req.FutureOutlook,
	}

	id, err := h.repo.Create(r.Context(), retro, req.TaskIDs)
	if err != nil {
		logger.Error("failed to create retrospective", "error", err.Error())
		httputil.RespondError(w, "failed to submit retrospective", http.StatusInternalServerError)
		return
	}

	logger.Info("retrospective submitted", "retrospective_id", id, "user_id", req.UserID)

	httputil.RespondJSON(w, DataResponse{
		Success: true,
		Data:    map[string]int64{"id": id},
	}, http.StatusCreated)
}

// Detail returns one retrospective with linked tasks
// @Summary      Retrospective detail
// @Tags         retrospectives
// @Produce      json
// @Param        id query int true "Retrospective id"
// @Success      200 {object} DataResponse
// @Failure      404 {object} httputil.ErrorResponse "Not found"
// @Failure      422 {object} httputil.ErrorResponse "Missing id"
// @Router       /retrospectives/detail [get]
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := queryInt(r, "id")
	if !ok {
		httputil.RespondError(w, "id is required", http.StatusUnprocessableEntity)
		return
	}

	detail, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, "retrospective not found", http.StatusNotFound)
			return
		}
		logger.Error("failed to get retrospective", "error", err.Error())
		httputil.RespondError(w, "failed to load retrospective", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: detail}, http.StatusOK)
}

// CurrentWeekRetro returns this week's retrospective, or null when none exists
// @Summary      Current week retrospective
// @Tags         retrospectives
// @Produce      json
// @Param        user_id query int true "User id"
// @Success      200 {object} CurrentWeekResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing user_id"
// @Router       /retrospectives/current-week [get]
func (h *Handler) CurrentWeekRetro(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := queryInt(r, "user_id")
	if !ok {
		httputil.RespondError(w, "user_id is required", http.StatusUnprocessableEntity)
		return
	}

	week := CurrentWeek(time.Now())

	retro, err := h.repo.GetByWeek(r.Context(), userID, week.Start)
	if err != nil && !errors.Is(err, ErrNotFound) {
		logger.Error("failed to get current week retrospective", "error", err.Error())
		httputil.RespondError(w, "failed to load retrospective", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, CurrentWeekResponse{
		Success:     true,
		Data:        retro,
		CurrentWeek: week,
	}, http.StatusOK)
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
