package top

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
)

// Handler contains HTTP handlers for the home screen endpoints
type Handler struct {
	repo   *Repository
	logger *logging.Logger
}

func NewHandler(repo *Repository, logger *logging.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// TeamEvaluationRequest represents the weekly self evaluation body
type TeamEvaluationRequest struct {
	UserID          int64 `json:"user_id"`
	TeamID          int64 `json:"team_id"`
	EvaluationScore int   `json:"evaluation_score"`
}

// OutlookCheckRequest represents the outlook check body
type OutlookCheckRequest struct {
	UserID          int64 `json:"user_id"`
	RetrospectiveID int64 `json:"retrospective_id"`
	IsCompleted     *bool `json:"is_completed"`
}

// GoalEvaluationRequest represents the goal evaluation body. Evaluation is
// "+", "-" or null to clear.
type GoalEvaluationRequest struct {
	GoalID     int64   `json:"goal_id"`
	Evaluation *string `json:"evaluation"`
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
}

// Dashboard returns the home screen aggregates
// @Summary      Home dashboard
// @Tags         top
// @Produce      json
// @Param        user_id query int true "User id"
// @Param        team_id query int true "Team id"
// @Success      200 {object} DataResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing user_id or team_id"
// @Router       /top/dashboard [get]
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, okUser := queryInt(r, "user_id")
	teamID, okTeam := queryInt(r, "team_id")
	if !okUser || !okTeam {
		httputil.RespondError(w, "user_id and team_id are required", http.StatusUnprocessableEntity)
		return
	}

	dashboard, err := h.repo.Dashboard(r.Context(), userID, teamID, time.Now())
	if err != nil {
		logger.Error("failed to build dashboard", "error", err.Error())
		httputil.RespondError(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{Success: true, Data: dashboard}, http.StatusOK)
}

// TeamEvaluation stores the caller's 1 to 5 evaluation for the current week
// @Summary      Submit team evaluation
// @Tags         top
// @Accept       json
// @Produce      json
// @Param        request body TeamEvaluationRequest true "Evaluation fields"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing fields or score out of range"
// @Router       /top/team-evaluation [post]
func (h *Handler) TeamEvaluation(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req TeamEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == 0 || req.TeamID == 0 || req.EvaluationScore == 0 {
		httputil.RespondError(w, "required fields: user_id, team_id, evaluation_score", http.StatusUnprocessableEntity)
		return
	}
	if req.EvaluationScore < 1 || req.EvaluationScore > 5 {
		httputil.RespondError(w, "evaluation_score must be between 1 and 5", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.UpsertTeamEvaluation(r.Context(), req.UserID, req.TeamID, req.EvaluationScore, time.Now()); err != nil {
		logger.Error("failed to submit team evaluation", "error", err.Error())
		httputil.RespondError(w, "failed to submit evaluation", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "evaluation submitted"}, http.StatusOK)
}

// OutlookCheck records whether last week's outlook was carried out
// @Summary      Update outlook check
// @Tags         top
// @Accept       json
// @Produce      json
// @Param        request body OutlookCheckRequest true "Check fields"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing fields"
// @Router       /top/outlook-check [put]
func (h *Handler) OutlookCheck(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req OutlookCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.UserID == 0 || req.RetrospectiveID == 0 || req.IsCompleted == nil {
		httputil.RespondError(w, "required fields: user_id, retrospective_id, is_completed", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.UpsertOutlookCheck(r.Context(), req.UserID, req.RetrospectiveID, *req.IsCompleted); err != nil {
		logger.Error("failed to update outlook check", "error", err.Error())
		httputil.RespondError(w, "failed to update outlook check", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "outlook check updated"}, http.StatusOK)
}

// GoalEvaluation sets or clears a goal's +/- evaluation
// @Summary      Update goal evaluation
// @Tags         top
// @Accept       json
// @Produce      json
// @Param        request body GoalEvaluationRequest true "Evaluation fields"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing goal_id or invalid evaluation"
// @Router       /top/goal-evaluation [put]
func (h *Handler) GoalEvaluation(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req GoalEvaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.GoalID == 0 {
		httputil.RespondError(w, "goal_id is required", http.StatusUnprocessableEntity)
		return
	}
	if req.Evaluation != nil && *req.Evaluation != "+" && *req.Evaluation != "-" {
		httputil.RespondError(w, "evaluation must be +, - or null", http.StatusUnprocessableEntity)
		return
	}

	if err := h.repo.UpdateGoalEvaluation(r.Context(), req.GoalID, req.Evaluation); err != nil {
		logger.Error("failed to update goal evaluation", "error", err.Error())
		httputil.RespondError(w, "failed to update goal evaluation", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, MessageResponse{Success: true, Message: "goal evaluation updated"}, http.StatusOK)
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
