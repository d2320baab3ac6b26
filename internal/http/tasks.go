package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TaskQueue is the part of the task client the admin endpoints use.
// *tasks.Client implements it.
type TaskQueue interface {
	EnqueueAuditCleanup(ctx context.Context, retentionDays int) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue maintenance endpoints.
type TasksController struct {
	queue TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// RunAuditCleanupRequest is the optional body of POST /admin/audit/cleanup.
type RunAuditCleanupRequest struct {
	RetentionDays int `json:"retention_days"`
}

// RunAuditCleanup handles POST /admin/audit/cleanup.
func (tc *TasksController) RunAuditCleanup(c *gin.Context) {
	var req RunAuditCleanupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}
	if req.RetentionDays < 0 {
		respondBadRequest(c, "retention_days cannot be negative")
		return
	}

	id, err := tc.queue.EnqueueAuditCleanup(c.Request.Context(), req.RetentionDays)
	if err != nil {
		respondInternalError(c, err, "enqueue audit cleanup")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": id,
		"type":    "cleanup_audit_events",
		"message": "task enqueued",
	})
}

// GetTaskStatus handles GET /admin/tasks/:id.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
