package handler

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"gorm.io/gorm"
)

type EventsHandler struct {
	db  *gorm.DB
	hub *realtime.Hub
}

func NewEventsHandler(db *gorm.DB, hub *realtime.Hub) *EventsHandler {
	return &EventsHandler{db: db, hub: hub}
}

// GET /events/projects/:projectId
func (h *EventsHandler) ProjectStream(c *gin.Context) {
	projectID := parseID(c.Param("projectId"))
	userID := middleware.GetCurrentUserID(c)

	var project model.Project
	if err := h.db.First(&project, projectID).Error; err != nil {
		Fail(c, fmt.Errorf("40403:project not found"))
		return
	}
	if project.OwnerID != userID {
		var count int64
		h.db.Model(&model.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", projectID, userID).
			Count(&count)
		if count == 0 {
			Fail(c, fmt.Errorf("40304:not a member of this project"))
			return
		}
	}

	h.stream(c, realtime.ProjectRoom(projectID))
}

// GET /events/organizations/:orgId
func (h *EventsHandler) OrganizationStream(c *gin.Context) {
	orgID := parseID(c.Param("orgId"))
	userID := middleware.GetCurrentUserID(c)

	var count int64
	h.db.Model(&model.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count)
	if count == 0 {
		Fail(c, fmt.Errorf("40301:not a member of this organization"))
		return
	}

	h.stream(c, realtime.OrganizationRoom(orgID))
}

// GET /events/me — the caller's personal notification stream
func (h *EventsHandler) UserStream(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	h.stream(c, realtime.UserRoom(userID))
}

func (h *EventsHandler) stream(c *gin.Context, room string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events, unsub := h.hub.Subscribe(room)
	defer unsub()

	// replay anything the client missed since its last event id
	if lastID := realtime.ParseLastEventID(c.GetHeader("Last-Event-ID")); lastID > 0 {
		missed, err := h.hub.ReplayFrom(room, lastID)
		if err == nil {
			for _, ev := range missed {
				writeSSE(c.Writer, ev)
			}
			c.Writer.Flush()
		}
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			writeSSE(w, ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func writeSSE(w io.Writer, ev realtime.Event) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, payload)
}
