package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/redact"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// List query bounds.
const (
	DefaultPerPage  = 20
	MaxPerPage      = 100
	MaxSearchLength = 100
)

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", nil)
	}
	return id, nil
}

// requireActor returns the authenticated user's ID, writing a 401 response
// when the context carries none.
func requireActor(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	actorID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, shared.CodeUnauthorized, "Authentication required")
		return 0, false
	}
	return actorID, true
}

// handleActorAndPathID is a composite helper that extracts both the actor ID
// from context and an ID from the path parameters. It writes an error response
// if either extraction fails.
func handleActorAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (int64, int64, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	actorID, ok := requireActor(w, r, log)
	if !ok {
		return 0, 0, false
	}

	pathID, err := getPathID(r, paramName)
	if err != nil {
		log.Warn("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return 0, 0, false
	}

	return actorID, pathID, true
}

// decodeAndValidate decodes the JSON body into v and validates it. On failure
// it writes a 400 for malformed bodies or a 422 for rule violations.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any, log *slog.Logger) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		log.Debug("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, shared.CodeBadRequest, "Invalid request format")
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		var opts []shared.ResponseOption
		if field := validationField(err); field != "" {
			opts = append(opts, shared.WithDetails(map[string]any{"field": field}))
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity, shared.CodeValidation,
			SanitizeValidationError(err), err, opts...)
		return false
	}
	return true
}

// listTasksQuery holds the raw list parameters before conversion to a filter.
type listTasksQuery struct {
	Status     string `json:"status"      validate:"omitempty,oneof=todo in_progress done"`
	Priority   string `json:"priority"    validate:"omitempty,oneof=low medium high urgent"`
	AssigneeID int64  `json:"assignee_id" validate:"gte=0"`
	OwnerID    int64  `json:"owner_id"    validate:"gte=0"`
	Search     string `json:"search"      validate:"max=100"`
	Page       int    `json:"page"        validate:"gte=1"`
	PerPage    int    `json:"per_page"    validate:"gte=1,lte=100"`
}

// parseTaskFilter reads the list query parameters. Absent parameters take
// their defaults; malformed ones yield a domain validation error.
func parseTaskFilter(values url.Values) (store.TaskFilter, error) {
	q := listTasksQuery{
		Status:   values.Get("status"),
		Priority: values.Get("priority"),
		Search:   strings.TrimSpace(values.Get("search")),
		Page:     1,
		PerPage:  DefaultPerPage,
	}

	var err error
	if q.AssigneeID, err = parseInt64Param(values, "assignee_id"); err != nil {
		return store.TaskFilter{}, err
	}
	if q.OwnerID, err = parseInt64Param(values, "owner_id"); err != nil {
		return store.TaskFilter{}, err
	}
	if raw := values.Get("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil {
			return store.TaskFilter{}, domain.NewValidationError("page", "must be an integer", nil)
		}
	}
	if raw := values.Get("per_page"); raw != "" {
		if q.PerPage, err = strconv.Atoi(raw); err != nil {
			return store.TaskFilter{}, domain.NewValidationError("per_page", "must be an integer", nil)
		}
	}

	if err := shared.Validate.Struct(q); err != nil {
		field := validationField(err)
		return store.TaskFilter{}, domain.NewValidationError(field, queryRuleMessage(field), nil)
	}

	filter := store.TaskFilter{
		Search:  q.Search,
		Page:    q.Page,
		PerPage: q.PerPage,
	}
	if q.Status != "" {
		status := domain.Status(q.Status)
		filter.Status = &status
	}
	if q.Priority != "" {
		priority := domain.Priority(q.Priority)
		filter.Priority = &priority
	}
	if q.AssigneeID > 0 {
		filter.AssigneeID = &q.AssigneeID
	}
	if q.OwnerID > 0 {
		filter.OwnerID = &q.OwnerID
	}
	return filter, nil
}

func parseInt64Param(values url.Values, name string) (int64, error) {
	raw := values.Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer", nil)
	}
	return n, nil
}

func queryRuleMessage(field string) string {
	switch field {
	case "status":
		return "must be one of todo, in_progress, done"
	case "priority":
		return "must be one of low, medium, high, urgent"
	case "search":
		return "must be at most " + strconv.Itoa(MaxSearchLength) + " characters"
	case "page":
		return "must be at least 1"
	case "per_page":
		return "must be between 1 and " + strconv.Itoa(MaxPerPage)
	default:
		return "is invalid"
	}
}
