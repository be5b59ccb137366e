package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/service"
)

// JobsHandler triggers maintenance jobs on demand. There is no
// in-process timer; point a cron at these endpoints.
type JobsHandler struct {
	scheduler *service.SchedulerService
}

func NewJobsHandler(scheduler *service.SchedulerService) *JobsHandler {
	return &JobsHandler{scheduler: scheduler}
}

// POST /jobs/:name/run
func (h *JobsHandler) Run(c *gin.Context) {
	name := c.Param("name")
	switch name {
	case "sweep-overdue":
		sent, err := h.scheduler.SweepOverdueTasks()
		if err != nil {
			InternalError(c, err.Error())
			return
		}
		Success(c, gin.H{"job": name, "notifications": sent})
	case "send-reminders":
		sent, err := h.scheduler.SendTaskReminders()
		if err != nil {
			InternalError(c, err.Error())
			return
		}
		Success(c, gin.H{"job": name, "notifications": sent})
	case "expire-invitations":
		n, err := h.scheduler.ExpireInvitations()
		if err != nil {
			InternalError(c, err.Error())
			return
		}
		Success(c, gin.H{"job": name, "expired": n})
	case "daily-digest":
		if err := h.scheduler.SendDailyDigest(); err != nil {
			InternalError(c, err.Error())
			return
		}
		Success(c, gin.H{"job": name})
	case "cleanup-tokens":
		n, err := h.scheduler.CleanupExpiredTokens()
		if err != nil {
			InternalError(c, err.Error())
			return
		}
		Success(c, gin.H{"job": name, "removed": n})
	default:
		BadRequest(c, 40001, "unknown job: "+name)
	}
}
