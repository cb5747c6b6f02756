package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/service/auth"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// APIError is the client-facing rendering of an internal error.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

// MapError translates an internal error into a status, code and safe message.
// Raw error text never reaches the result except for validation messages,
// which are built from field names and fixed rule descriptions.
func MapError(err error) APIError {
	var (
		transitionErr *domain.TransitionError
		validationErr *domain.ValidationError
	)

	switch {
	case err == nil:
		return internalError()

	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return APIError{Status: http.StatusUnauthorized, Code: shared.CodeUnauthorized, Message: "Token expired"}
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return APIError{Status: http.StatusUnauthorized, Code: shared.CodeUnauthorized, Message: "Invalid token"}
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return APIError{Status: http.StatusUnauthorized, Code: shared.CodeUnauthorized, Message: "Invalid refresh token"}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return APIError{Status: http.StatusUnauthorized, Code: shared.CodeUnauthorized, Message: "Invalid email or password"}
	case errors.Is(err, auth.ErrInactiveUser):
		return APIError{Status: http.StatusUnauthorized, Code: shared.CodeUnauthorized, Message: "User account is inactive"}

	// Corrupt data is never reported as a client mistake
	case errors.Is(err, domain.ErrInvalidState):
		return internalError()

	// Authorization errors
	case errors.Is(err, domain.ErrPermissionDenied):
		return APIError{
			Status:  http.StatusForbidden,
			Code:    shared.CodeForbidden,
			Message: "You do not have permission to modify this task",
		}

	// Workflow errors
	case errors.As(err, &transitionErr):
		return APIError{
			Status:  http.StatusBadRequest,
			Code:    shared.CodeInvalidTransition,
			Message: fmt.Sprintf("Cannot transition from '%s' to '%s'", transitionErr.Current, transitionErr.Target),
			Details: map[string]any{
				"current_state": string(transitionErr.Current),
				"target_state":  string(transitionErr.Target),
			},
		}
	case errors.Is(err, domain.ErrInvalidTransition):
		return APIError{Status: http.StatusBadRequest, Code: shared.CodeInvalidTransition, Message: "Invalid status transition"}

	// Not found errors
	case errors.Is(err, store.ErrTaskNotFound):
		return APIError{Status: http.StatusNotFound, Code: shared.CodeNotFound, Message: "Task not found"}
	case errors.Is(err, store.ErrUserNotFound):
		return APIError{Status: http.StatusNotFound, Code: shared.CodeNotFound, Message: "User not found"}
	case errors.Is(err, store.ErrNotFound):
		return APIError{Status: http.StatusNotFound, Code: shared.CodeNotFound, Message: "Resource not found"}

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return APIError{Status: http.StatusConflict, Code: shared.CodeConflict, Message: "Email already exists"}
	case errors.Is(err, store.ErrDuplicate):
		return APIError{Status: http.StatusConflict, Code: shared.CodeConflict, Message: "Resource already exists"}
	case errors.Is(err, store.ErrConflict):
		return APIError{
			Status:  http.StatusConflict,
			Code:    shared.CodeConflict,
			Message: "Task was modified concurrently, please retry",
		}

	// Validation errors
	case errors.As(err, &validationErr):
		return APIError{
			Status:  http.StatusUnprocessableEntity,
			Code:    shared.CodeValidation,
			Message: fmt.Sprintf("Invalid %s: %s", validationErr.Field, validationErr.Message),
			Details: map[string]any{"field": validationErr.Field},
		}
	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return APIError{Status: http.StatusUnprocessableEntity, Code: shared.CodeValidation, Message: "Invalid entity data"}

	default:
		return internalError()
	}
}

func internalError() APIError {
	return APIError{
		Status:  http.StatusInternalServerError,
		Code:    shared.CodeInternal,
		Message: "An unexpected error occurred",
	}
}

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes.
func MapErrorToStatusCode(err error) int {
	return MapError(err).Status
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type.
func GetSafeErrorMessage(err error) string {
	return MapError(err).Message
}

// HandleAPIError maps err and writes the error envelope, logging the full
// error. A non-empty fallback replaces the generic message of 5xx responses.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	apiErr := MapError(err)
	if fallback != "" && apiErr.Status >= http.StatusInternalServerError {
		apiErr.Message = fallback
	}

	var opts []shared.ResponseOption
	if apiErr.Details != nil {
		opts = append(opts, shared.WithDetails(apiErr.Details))
	}
	shared.RespondWithErrorAndLog(w, r, apiErr.Status, apiErr.Code, apiErr.Message, err, opts...)
}

// SanitizeValidationError turns validator output into a short message naming
// the first failing field. Anything else becomes a generic message.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}

	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag(), fe.Param()))
}

// validationField returns the first failing field of a validator error, or "".
func validationField(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	return verrs[0].Field()
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag, param string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		return "validation failed"
	}
}
