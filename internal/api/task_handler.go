package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/service"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	if tasks == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tasks cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// CreateTask handles POST /tasks requests.
// The authenticated user becomes the owner of the new task.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, ok := requireActor(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.Create(r.Context(), actorID, service.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.Priority(req.Priority),
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// ListTasks handles GET /tasks requests
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if _, ok := requireActor(w, r, log); !ok {
		return
	}

	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	page, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	items := page.Items
	if items == nil {
		items = []*domain.TaskView{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, TaskListResponse{
		Items: items,
		Meta:  newPageMeta(filter.Page, filter.PerPage, page.Total),
	})
}

// GetTask handles GET /tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	_, taskID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// UpdateTask handles PATCH /tasks/{id} requests.
// Only title, description and priority can change here; status changes go
// through the transition endpoint.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, taskID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	if req.Status != nil {
		HandleAPIError(w, r, domain.NewValidationError("status",
			"cannot be changed by update, use the transition endpoint", nil), "")
		return
	}

	params := service.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		params.Priority = &priority
	}

	task, err := h.tasks.Update(r.Context(), taskID, actorID, params)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, taskID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), taskID, actorID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ForceDeleteTask handles DELETE /tasks/{id}/force requests.
// It is authorized exactly like DeleteTask.
func (h *TaskHandler) ForceDeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, taskID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.tasks.ForceDelete(r.Context(), taskID, actorID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignTask handles POST /tasks/{id}/assign requests
func (h *TaskHandler) AssignTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, taskID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req AssignTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.Assign(r.Context(), taskID, actorID, req.AssigneeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to assign task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// TransitionTask handles POST /tasks/{id}/transition requests
func (h *TaskHandler) TransitionTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, taskID, ok := handleActorAndPathID(w, r, "id", log)
	if !ok {
		return
	}

	var req TransitionTaskRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	task, err := h.tasks.Transition(r.Context(), taskID, actorID, domain.Status(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to transition task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// BulkTransition handles POST /tasks/bulk/transition requests.
// Per-task failures are reported inside a 200 response; only a request that
// is rejected as a whole gets an error status.
func (h *TaskHandler) BulkTransition(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actorID, ok := requireActor(w, r, log)
	if !ok {
		return
	}

	var req BulkTransitionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.tasks.BulkTransition(r.Context(), actorID, req.TaskIDs, domain.Status(req.Status))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to transition tasks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
