package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/entities"
	"github.com/mrlokans/accounts/internal/policy"
)

// Client-facing messages. Internal error text is never sent to clients.
const (
	MsgEmailExists        = "email address already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgAccountLocked      = "Account is locked due to too many failed login attempts"
	MsgUnexpected         = "An unexpected error occurred"
	MsgValidationFailed   = "Validation failed"
	MsgInvalidBody        = "Invalid request body"
	MsgTooManyAttempts    = "Too many login attempts. Please try again later."
	MsgAuthRequired       = "authentication required"
)

// StatusLocked is returned when the failed-login counter reached the lockout threshold.
const StatusLocked = http.StatusLocked

// ErrorResponse is the body of every failed auth request.
type ErrorResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Errors  policy.FieldErrors `json:"errors,omitempty"`
}

// AccountResponse wraps the client-facing view of an account.
type AccountResponse struct {
	User entities.Summary `json:"user"`
}

// SignInResult is the typed outcome of a session sign-in. Status mirrors the
// HTTP status so clients never have to parse an error string.
type SignInResult struct {
	Status  int               `json:"status"`
	Message string            `json:"message,omitempty"`
	User    *entities.Summary `json:"user,omitempty"`
}

func newErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message}
}

// ResolveError maps a workflow error to its HTTP status and response body.
func ResolveError(err error) (int, ErrorResponse) {
	if verr, ok := policy.IsValidationError(err); ok {
		resp := newErrorResponse(MsgValidationFailed)
		resp.Errors = verr.Fields
		return http.StatusBadRequest, resp
	}

	switch {
	case errors.Is(err, ErrEmailExists):
		return http.StatusConflict, newErrorResponse(MsgEmailExists)
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, newErrorResponse(MsgInvalidCredentials)
	case errors.Is(err, ErrAccountLocked):
		return StatusLocked, newErrorResponse(MsgAccountLocked)
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, newErrorResponse(MsgTooManyAttempts)
	default:
		return http.StatusInternalServerError, newErrorResponse(MsgUnexpected)
	}
}

// respondError writes the mapped error and logs anything unexpected.
func respondError(c *gin.Context, err error) {
	status, resp := ResolveError(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, resp)
}
