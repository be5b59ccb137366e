package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

func projectIDParam(c *gin.Context) uint {
	id, _ := strconv.ParseUint(c.Param("projectId"), 10, 64)
	return uint(id)
}

// RequireProjectAccess lets the project owner or any member through.
func RequireProjectAccess(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := projectIDParam(c)
		if projectID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": 40001, "message": "project id required", "data": nil})
			return
		}

		var project model.Project
		if err := db.First(&project, projectID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"code": 40403, "message": "project not found", "data": nil})
			return
		}

		userID := GetCurrentUserID(c)
		if project.OwnerID == userID {
			c.Next()
			return
		}

		var member model.ProjectMember
		if err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error; err != nil {
			abortForbidden(c, 40304, "not a member of this project")
			return
		}

		c.Next()
	}
}

// RequireMinProjectRole gates on a minimum project role. The project owner
// bypasses the hierarchy entirely; there is no OWNER entry to compare
// against.
func RequireMinProjectRole(db *gorm.DB, min role.ProjectRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := projectIDParam(c)
		if projectID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": 40001, "message": "project id required", "data": nil})
			return
		}

		var project model.Project
		if err := db.First(&project, projectID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"code": 40403, "message": "project not found", "data": nil})
			return
		}

		userID := GetCurrentUserID(c)
		if project.OwnerID == userID {
			c.Next()
			return
		}

		var member model.ProjectMember
		if err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error; err != nil {
			abortForbidden(c, 40304, "not a member of this project")
			return
		}

		ok, err := role.HasMinProjectRole(member.Role, min)
		if err != nil || !ok {
			abortForbidden(c, 40305, "insufficient project permissions")
			return
		}

		c.Next()
	}
}
