package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// BulkItemResult is the outcome for one id of a bulk request.
type BulkItemResult struct {
	TaskID         int64          `json:"task_id"`
	Success        bool           `json:"success"`
	PreviousStatus *domain.Status `json:"previous_status,omitempty"`
	NewStatus      *domain.Status `json:"new_status,omitempty"`
	Error          string         `json:"error,omitempty"`
}

// BulkResult aggregates a bulk request. Results[i] always describes the i-th
// requested id, and Successful+Failed == Total == len(Results).
type BulkResult struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Results    []BulkItemResult `json:"results"`
}

// BulkTransition implements TaskService.BulkTransition.
//
// Items run concurrently up to the configured limit, each in its own
// transaction. A failing item is recorded and never stops the others; the
// returned error is reserved for requests rejected as a whole.
func (s *taskServiceImpl) BulkTransition(
	ctx context.Context,
	actorID int64,
	taskIDs []int64,
	target domain.Status,
) (*BulkResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case len(taskIDs) == 0:
		return nil, domain.NewValidationError("task_ids", "must contain at least one id", nil)
	case len(taskIDs) > s.bulk.MaxItems:
		return nil, domain.NewValidationError("task_ids",
			fmt.Sprintf("must contain at most %d ids", s.bulk.MaxItems), ErrBulkTooLarge)
	case !target.Valid():
		return nil, domain.NewValidationError("status", "unknown status "+string(target), nil)
	}

	results := make([]BulkItemResult, len(taskIDs))

	var g errgroup.Group
	g.SetLimit(s.bulk.Concurrency)
	for i, id := range taskIDs {
		g.Go(func() error {
			results[i] = s.bulkItem(ctx, actorID, id, target)
			return nil
		})
	}
	_ = g.Wait()

	out := &BulkResult{Total: len(taskIDs), Results: results}
	for _, r := range results {
		if r.Success {
			out.Successful++
		} else {
			out.Failed++
		}
	}

	log.Info("bulk transition finished",
		slog.Int64("actor_id", actorID),
		slog.String("target_status", string(target)),
		slog.Int("total", out.Total),
		slog.Int("successful", out.Successful),
		slog.Int("failed", out.Failed))

	return out, nil
}

func (s *taskServiceImpl) bulkItem(
	ctx context.Context,
	actorID, taskID int64,
	target domain.Status,
) BulkItemResult {
	result := BulkItemResult{TaskID: taskID}

	previous, err := s.transition(ctx, taskID, actorID, target)
	if previous != "" {
		result.PreviousStatus = &previous
	}
	if err == nil {
		result.Success = true
		result.NewStatus = &target
		return result
	}

	var transitionErr *domain.TransitionError
	switch {
	case store.IsNotFoundError(err):
		result.Error = fmt.Sprintf("Task %d not found", taskID)
	case errors.Is(err, domain.ErrPermissionDenied):
		result.Error = "Permission denied"
	case errors.As(err, &transitionErr):
		result.Error = fmt.Sprintf("Invalid transition from '%s' to '%s'",
			transitionErr.Current, transitionErr.Target)
	case errors.Is(err, domain.ErrInvalidState):
		logger.FromContextOrDefault(ctx, s.logger).Error("task data violates workflow invariant",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		result.Error = "Task is in an invalid state"
	case errors.Is(err, store.ErrConflict):
		result.Error = "Task was modified concurrently"
	default:
		logger.FromContextOrDefault(ctx, s.logger).Error("bulk transition item failed",
			slog.Int64("task_id", taskID),
			slog.String("error", err.Error()))
		result.Error = "Internal error"
	}
	return result
}
