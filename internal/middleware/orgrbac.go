package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

func orgIDParam(c *gin.Context) uint {
	id, _ := strconv.ParseUint(c.Param("orgId"), 10, 64)
	return uint(id)
}

func abortForbidden(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": code, "message": message, "data": nil})
}

// RequireOrgAccess gates on any membership in the organization. The org
// role of the caller is stashed in the context for handlers that need it.
func RequireOrgAccess(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := orgIDParam(c)
		if orgID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": 40001, "message": "organization id required", "data": nil})
			return
		}

		var org model.Organization
		if err := db.First(&org, orgID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"code": 40402, "message": "organization not found", "data": nil})
			return
		}
		if !org.IsActive {
			abortForbidden(c, 40301, "organization is inactive")
			return
		}

		var member model.OrganizationMember
		if err := db.Where("organization_id = ? AND user_id = ?", orgID, GetCurrentUserID(c)).First(&member).Error; err != nil {
			abortForbidden(c, 40301, "not a member of this organization")
			return
		}

		c.Set("orgRole", member.Role)
		c.Next()
	}
}

// RequireMinOrgRole gates on a minimum position in the organization
// hierarchy.
func RequireMinOrgRole(db *gorm.DB, min role.OrgRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := orgIDParam(c)
		if orgID == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": 40001, "message": "organization id required", "data": nil})
			return
		}

		var member model.OrganizationMember
		if err := db.Where("organization_id = ? AND user_id = ?", orgID, GetCurrentUserID(c)).First(&member).Error; err != nil {
			abortForbidden(c, 40301, "not a member of this organization")
			return
		}

		ok, err := role.HasMinOrgRole(member.Role, min)
		if err != nil || !ok {
			abortForbidden(c, 40302, "insufficient organization permissions")
			return
		}

		c.Set("orgRole", member.Role)
		c.Next()
	}
}

// RequireOrgOwner gates on the exact OWNER role, not the hierarchy.
func RequireOrgOwner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := orgIDParam(c)
		var member model.OrganizationMember
		if err := db.Where("organization_id = ? AND user_id = ?", orgID, GetCurrentUserID(c)).First(&member).Error; err != nil || member.Role != role.OrgOwner {
			abortForbidden(c, 40303, "only the organization owner can perform this action")
			return
		}
		c.Set("orgRole", member.Role)
		c.Next()
	}
}

func GetOrgRole(c *gin.Context) role.OrgRole {
	r, exists := c.Get("orgRole")
	if !exists {
		return role.OrgGuest
	}
	return r.(role.OrgRole)
}
