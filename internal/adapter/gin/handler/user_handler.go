package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-service/internal/usecase/user"
	pkgerrors "user-service/pkg/errors"
	"user-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	svc user.Service
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(svc user.Service, log *zap.Logger) *UserHandler {
	return &UserHandler{
		svc: svc,
		log: log,
	}
}

// CreateUserRequest represents the HTTP request body for creating a user.
// Rules are enforced by the service, not by binding.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Age       *int      `json:"age,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

// CreateUserResponse is the 201 body of POST /api/users.
type CreateUserResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    UserResponse `json:"data"`
}

// ListUsersResponse is the 200 body of GET /api/users.
type ListUsersResponse struct {
	Success    bool           `json:"success"`
	Data       []UserResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// CreateUser handles POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "invalid request body",
		})
		return
	}

	created, err := h.svc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:  req.Name,
		Email: req.Email,
		Age:   req.Age,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateUserResponse{
		Success: true,
		Message: "User created successfully",
		Data:    toUserResponse(created),
	})
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	req := user.ListUsersRequest{
		Query:     c.Query("query"),
		Page:      parsePositive(c.Query("page")),
		Limit:     parsePositive(c.Query("limit")),
		SortField: c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		req.IsActive = &active
	}

	resp, err := h.svc.ListUsers(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i := range resp.Users {
		users[i] = toUserResponse(&resp.Users[i])
	}

	out := ListUsersResponse{Success: true, Data: users}
	if resp.Pagination != nil {
		out.Pagination = Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}
	c.JSON(http.StatusOK, out)
}

// handleError is the single place that maps an error kind to a status code.
// Only the client-safe message leaves the process; the full chain is logged.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var (
		validationErr *pkgerrors.ValidationError
		existsErr     *pkgerrors.AlreadyExistsError
		notFoundErr   *pkgerrors.NotFoundError
		unavailable   *pkgerrors.UnavailableError
	)

	switch {
	case errors.As(err, &validationErr):
		log.Warn("request rejected", zap.Error(err))
		fields := make([]FieldError, len(validationErr.Violations))
		for i, v := range validationErr.Violations {
			fields[i] = FieldError{Field: v.Field, Message: v.Message}
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: validationErr.Error(), Errors: fields})
	case errors.As(err, &existsErr):
		log.Warn("request conflicts with existing user", zap.Error(err))
		c.JSON(http.StatusConflict, ErrorResponse{Message: existsErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: notFoundErr.Error()})
	case errors.As(err, &unavailable):
		log.Error("store unavailable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: pkgerrors.PublicMessage(unavailable)})
	default:
		log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: pkgerrors.PublicMessage(err)})
	}
}

// parsePositive returns 0 for anything that is not a positive integer; the service applies defaults.
func parsePositive(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Age:       u.Age,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
