package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/ratelimit"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/user"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/validate"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service      *Service
	users        *user.Repository
	rateLimiter  *ratelimit.Limiter
	logger       *logging.Logger
	cookieName   string
	cookieMaxAge time.Duration
	isProduction bool
}

func NewHandler(
	service *Service,
	users *user.Repository,
	rateLimiter *ratelimit.Limiter,
	logger *logging.Logger,
	cookieName string,
	cookieMaxAge time.Duration,
	isProduction bool,
) *Handler {
	return &Handler{
		service:      service,
		users:        users,
		rateLimiter:  rateLimiter,
		logger:       logger,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		isProduction: isProduction,
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,min=2,max=255"`
	Email                string `json:"email" validate:"required,email"`
	TeamName             string `json:"team_name" validate:"required,oneof=A B C D E F G H"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	RedirectURL string `json:"redirect_url"`
}

// VerifyEmailRequest represents the email verification request
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// ResendVerificationRequest represents the resend verification email request
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordRequest represents the password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the password reset confirmation
type ResetPasswordRequest struct {
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// RegisterResponse represents the registration response
type RegisterResponse struct {
	Success              bool       `json:"success"`
	Message              string     `json:"message"`
	User                 *user.User `json:"user"`
	VerificationRequired bool       `json:"verification_required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Success     bool       `json:"success"`
	Message     string     `json:"message"`
	User        *user.User `json:"user"`
	SessionID   string     `json:"session_id"`
	RedirectURL string     `json:"redirect_url"`
}

// CheckSessionResponse represents the session check response
type CheckSessionResponse struct {
	Success       bool       `json:"success"`
	Authenticated bool       `json:"authenticated"`
	User          *user.User `json:"user,omitempty"`
}

// MessageResponse is the generic success envelope
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataResponse wraps a data payload in the success envelope
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account and its team membership. Accounts are active immediately.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration fields"
// @Success      201 {object} RegisterResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      422 {object} httputil.FieldErrorResponse "Validation errors or duplicate email"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		httputil.RespondError(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	// All violations are collected and returned together
	if fieldErrors := validate.Fields(req); fieldErrors != nil {
		logger.Warn("registration failed: validation errors")
		httputil.RespondFieldErrors(w, fieldErrors)
		return
	}

	newUser, err := h.service.Register(r.Context(), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		TeamName: req.TeamName,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondFieldErrors(w, map[string]string{
				"email": "email already exists",
			})
			return
		}
		if errors.Is(err, ErrUnknownTeam) {
			logger.Warn("registration failed: unknown team", "team", req.TeamName)
			httputil.RespondFieldErrors(w, map[string]string{
				"team_name": "please select a valid team",
			})
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to register user", http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", newUser.ID)

	httputil.RespondJSON(w, RegisterResponse{
		Success:              true,
		Message:              "Registration complete. You can now login.",
		User:                 newUser,
		VerificationRequired: false,
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password and receive a session identifier
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} httputil.ErrorResponse "Invalid request body"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      422 {object} httputil.ErrorResponse "Missing fields"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		httputil.RespondError(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "login"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	if req.Email == "" || req.Password == "" {
		logger.Warn("login failed: missing fields")
		httputil.RespondError(w, "email and password are required", http.StatusUnprocessableEntity)
		return
	}

	loggedInUser, session, err := h.service.Login(r.Context(), req.Email, req.Password, ip, r.UserAgent())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondError(w, "invalid email or password", http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondError(w, "failed to login", http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", loggedInUser.ID)

	SetSessionCookie(w, h.cookieName, session.ID, h.isProduction, h.cookieMaxAge)

	redirectURL := req.RedirectURL
	if redirectURL == "" {
		redirectURL = "/index.html"
	}

	httputil.RespondJSON(w, LoginResponse{
		Success:     true,
		Message:     "logged in successfully",
		User:        loggedInUser,
		SessionID:   session.ID,
		RedirectURL: redirectURL,
	}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Delete the presented session and clear the cookie. Succeeds with no active session.
// @Tags         auth
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	sessionID := SessionIDFromRequest(r, h.cookieName)
	if err := h.service.Logout(r.Context(), sessionID); err != nil {
		logger.Warn("failed to delete session on logout", "error", err.Error())
		// Still clear the cookie
	}

	ClearSessionCookie(w, h.cookieName)

	logger.Info("user logged out")

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "logged out",
	}, http.StatusOK)
}

// CheckSession reports whether the caller holds a valid session
// @Summary      Check session
// @Description  Returns the authenticated flag and, when valid, the user. Touches last activity.
// @Tags         auth
// @Produce      json
// @Success      200 {object} CheckSessionResponse
// @Router       /auth/check-session [get]
func (h *Handler) CheckSession(w http.ResponseWriter, r *http.Request) {
	sc, ok := GetSessionFromContext(r.Context())
	if !ok {
		httputil.RespondJSON(w, CheckSessionResponse{
			Success:       false,
			Authenticated: false,
		}, http.StatusOK)
		return
	}

	httputil.RespondJSON(w, CheckSessionResponse{
		Success:       true,
		Authenticated: true,
		User:          sc.User,
	}, http.StatusOK)
}

// CurrentUser returns the authenticated user's public fields
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} DataResponse
// @Failure      401 {object} httputil.ErrorResponse "Not authenticated"
// @Router       /auth/me [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sc, ok := GetSessionFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "not authenticated", http.StatusUnauthorized)
		return
	}

	httputil.RespondJSON(w, DataResponse{
		Success: true,
		Data:    sc.User,
	}, http.StatusOK)
}

// ListUsers returns all users ordered by name
// @Summary      List users
// @Tags         auth
// @Produce      json
// @Success      200 {object} DataResponse
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/users [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.users.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondError(w, "failed to list users", http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, DataResponse{
		Success: true,
		Data:    users,
	}, http.StatusOK)
}

// VerifyEmail handles email verification
// @Summary      Verify email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Verification token"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Expired token or already verified"
// @Failure      404 {object} httputil.ErrorResponse "Unknown token"
// @Failure      422 {object} httputil.ErrorResponse "Missing token"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/verify-email [post]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify email request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Token == "" {
		logger.Warn("email verification failed: token missing")
		httputil.RespondError(w, "verification token is required", http.StatusUnprocessableEntity)
		return
	}

	if err := h.service.VerifyEmail(r.Context(), req.Token); err != nil {
		switch {
		case errors.Is(err, ErrInvalidVerificationToken):
			logger.Warn("email verification failed: unknown token")
			httputil.RespondError(w, "invalid verification token", http.StatusNotFound)
		case errors.Is(err, ErrEmailAlreadyVerified):
			logger.Warn("email verification failed: already verified")
			httputil.RespondError(w, "this email is already verified", http.StatusBadRequest)
		case errors.Is(err, ErrVerificationTokenExpired):
			logger.Warn("email verification failed: token expired")
			httputil.RespondError(w, "verification token has expired", http.StatusBadRequest)
		default:
			logger.Error("email verification failed: internal error", "error", err.Error())
			httputil.RespondError(w, "failed to verify email", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("email verified successfully")

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "email verified successfully",
	}, http.StatusOK)
}

// ResendVerification handles resending the verification email
// @Summary      Resend verification email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResendVerificationRequest true "Email address"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Already verified"
// @Failure      404 {object} httputil.ErrorResponse "Unknown user"
// @Failure      422 {object} httputil.ErrorResponse "Missing email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /auth/resend-verification [post]
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResendVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid resend verification request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		httputil.RespondError(w, "email is required", http.StatusUnprocessableEntity)
		return
	}

	ip := getClientIP(r)
	if h.throttled(w, r, ip, req.Email, logger) {
		return
	}

	if err := h.service.ResendVerification(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			logger.Warn("resend verification failed: unknown user")
			httputil.RespondError(w, "user not found", http.StatusNotFound)
		case errors.Is(err, ErrEmailAlreadyVerified):
			logger.Warn("resend verification failed: already verified")
			httputil.RespondError(w, "this email is already verified", http.StatusBadRequest)
		default:
			logger.Error("resend verification failed: internal error", "error", err.Error())
			httputil.RespondError(w, "failed to resend verification email", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("verification email resent", "email", req.Email)

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "verification email sent",
	}, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request password reset
// @Description  Send a password reset link. Always reports success to prevent email enumeration.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} MessageResponse
// @Failure      422 {object} httputil.ErrorResponse "Missing email"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" {
		httputil.RespondError(w, "email is required", http.StatusUnprocessableEntity)
		return
	}

	ip := getClientIP(r)
	if h.throttled(w, r, ip, req.Email, logger) {
		return
	}

	// Always succeeds from the caller's point of view
	_ = h.service.ForgotPassword(r.Context(), req.Email)

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "If an account exists with that email, a password reset link has been sent.",
	}, http.StatusOK)
}

// ResetPassword handles password reset with token
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResetPasswordRequest true "Reset token and new password"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} httputil.ErrorResponse "Expired token"
// @Failure      404 {object} httputil.ErrorResponse "Unknown token"
// @Failure      422 {object} httputil.FieldErrorResponse "Validation errors"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /auth/reset-password [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if fieldErrors := validate.Fields(req); fieldErrors != nil {
		logger.Warn("password reset failed: validation errors")
		httputil.RespondFieldErrors(w, fieldErrors)
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, ErrResetTokenNotFound):
			logger.Warn("password reset failed: unknown token")
			httputil.RespondError(w, "invalid reset token", http.StatusNotFound)
		case errors.Is(err, ErrResetTokenExpired):
			logger.Warn("password reset failed: token expired")
			httputil.RespondError(w, "reset token has expired", http.StatusBadRequest)
		default:
			logger.Error("password reset failed: internal error", "error", err.Error())
			httputil.RespondError(w, "failed to reset password", http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset successfully")

	httputil.RespondJSON(w, MessageResponse{
		Success: true,
		Message: "Password reset successfully. You can now login with your new password.",
	}, http.StatusOK)
}

// throttled applies the shared IP limit and per-email cooldown used by the
// email-sending endpoints. Reports true when the request was rejected.
func (h *Handler) throttled(w http.ResponseWriter, r *http.Request, ip, email string, logger *logging.Logger) bool {
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		// Continue despite error to avoid blocking legitimate requests
	} else if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip)
		httputil.RespondError(w, "too many requests, please try again later", http.StatusTooManyRequests)
		return true
	}

	onCooldown, err := h.rateLimiter.CheckEmailCooldown(r.Context(), email)
	if err != nil {
		logger.Error("failed to check email cooldown", "error", err.Error())
	} else if onCooldown {
		logger.Warn("email on cooldown", "email", email)
		httputil.RespondError(w, "please wait before requesting another email", http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}
	if err := h.rateLimiter.SetEmailCooldown(r.Context(), email); err != nil {
		logger.Error("failed to set email cooldown", "error", err.Error())
	}

	return false
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr format is "IP:port", extract just the IP
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
