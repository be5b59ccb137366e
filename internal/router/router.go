package router

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/handler"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

type Deps struct {
	DB                  *gorm.DB
	JWTSecret           string
	AuthHandler         *handler.AuthHandler
	OrgHandler          *handler.OrganizationHandler
	ProjectHandler      *handler.ProjectHandler
	TaskHandler         *handler.TaskHandler
	InvitationHandler   *handler.InvitationHandler
	NotificationHandler *handler.NotificationHandler
	EventsHandler       *handler.EventsHandler
	JobsHandler         *handler.JobsHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api/v1")

	// Public routes (no auth)
	auth := api.Group("/auth")
	{
		auth.POST("/register", deps.AuthHandler.Register)
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/refresh", deps.AuthHandler.Refresh)
		auth.POST("/logout", deps.AuthHandler.Logout)
	}
	// Invitation links work before login so the landing page can render
	api.GET("/invitations/:token", deps.InvitationHandler.GetByToken)
	api.GET("/org-invitations/:token", deps.OrgHandler.GetInvitationByToken)

	// Authenticated routes
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		// Profile
		authed.GET("/auth/me", deps.AuthHandler.Me)
		authed.PUT("/auth/me", deps.AuthHandler.UpdateProfile)
		authed.PUT("/auth/password", deps.AuthHandler.ChangePassword)

		// Organizations
		orgs := authed.Group("/organizations")
		{
			orgs.POST("", deps.OrgHandler.Create)
			orgs.GET("", deps.OrgHandler.List)
			orgs.GET("/slug/:slug", deps.OrgHandler.GetBySlug)

			org := orgs.Group("/:orgId")
			org.Use(middleware.RequireOrgAccess(deps.DB))
			{
				org.GET("", deps.OrgHandler.GetDetail)
				org.PUT("", deps.OrgHandler.Update)
				org.PUT("/slug", middleware.RequireOrgOwner(deps.DB), deps.OrgHandler.UpdateSlug)
				org.DELETE("", middleware.RequireOrgOwner(deps.DB), deps.OrgHandler.Delete)
				org.PUT("/settings", middleware.RequireMinOrgRole(deps.DB, role.OrgAdmin), deps.OrgHandler.UpdateSettings)
				org.POST("/switch", deps.OrgHandler.Switch)
				org.GET("/dashboard", deps.OrgHandler.GetDashboard)
				org.GET("/projects", deps.OrgHandler.GetProjects)

				org.GET("/members", deps.OrgHandler.GetMembers)
				org.POST("/members", deps.OrgHandler.AddMember)
				org.PUT("/members/:userId", deps.OrgHandler.UpdateMemberRole)
				org.DELETE("/members/:userId", deps.OrgHandler.RemoveMember)
				org.POST("/transfer-ownership", middleware.RequireOrgOwner(deps.DB), deps.OrgHandler.TransferOwnership)

				org.POST("/invitations", deps.OrgHandler.CreateInvitation)
				org.GET("/invitations", deps.OrgHandler.GetInvitations)
				org.DELETE("/invitations/:invitationId", deps.OrgHandler.CancelInvitation)
			}
		}

		// Organization invitation responses (token-scoped, any authed user)
		authed.POST("/org-invitations/:token/accept", deps.OrgHandler.AcceptInvitation)
		authed.POST("/org-invitations/:token/reject", deps.OrgHandler.RejectInvitation)

		// Projects
		projects := authed.Group("/projects")
		{
			projects.POST("", deps.ProjectHandler.Create)
			projects.GET("", deps.ProjectHandler.List)

			project := projects.Group("/:projectId")
			project.Use(middleware.RequireProjectAccess(deps.DB))
			{
				project.GET("", deps.ProjectHandler.GetDetail)
				project.PUT("", deps.ProjectHandler.Update)
				project.DELETE("", deps.ProjectHandler.Delete)
				project.GET("/stats", deps.ProjectHandler.GetStats)

				project.GET("/members", deps.ProjectHandler.GetMembers)
				project.POST("/members", middleware.RequireMinProjectRole(deps.DB, role.ProjectAdmin), deps.ProjectHandler.AddMember)
				project.PUT("/members/:userId", deps.ProjectHandler.UpdateMemberRole)
				project.DELETE("/members/:userId", deps.ProjectHandler.RemoveMember)

				project.GET("/invitations", deps.InvitationHandler.List)
				project.DELETE("/invitations/:invitationId", deps.InvitationHandler.Cancel)

				project.GET("/columns", deps.ProjectHandler.GetColumns)
				project.POST("/columns", deps.ProjectHandler.CreateColumn)
				project.PUT("/columns/reorder", deps.ProjectHandler.ReorderColumns)
				project.PUT("/columns/:columnId", deps.ProjectHandler.UpdateColumn)
				project.DELETE("/columns/:columnId", deps.ProjectHandler.DeleteColumn)
				project.GET("/columns/:columnId/tasks", deps.TaskHandler.ListByColumn)

				project.GET("/labels", deps.ProjectHandler.GetLabels)
				project.POST("/labels", deps.ProjectHandler.CreateLabel)
				project.DELETE("/labels/:labelId", deps.ProjectHandler.DeleteLabel)

				project.POST("/tasks", deps.TaskHandler.Create)
				project.GET("/tasks", deps.TaskHandler.List)
				project.GET("/tasks/:taskId", deps.TaskHandler.GetDetail)
				project.PUT("/tasks/:taskId", deps.TaskHandler.Update)
				project.DELETE("/tasks/:taskId", deps.TaskHandler.Delete)
				project.PUT("/tasks/:taskId/move", deps.TaskHandler.Move)
				project.POST("/tasks/:taskId/assignees", deps.TaskHandler.Assign)
				project.DELETE("/tasks/:taskId/assignees/:userId", deps.TaskHandler.Unassign)
				project.GET("/tasks/:taskId/comments", deps.TaskHandler.GetComments)
				project.POST("/tasks/:taskId/comments", deps.TaskHandler.AddComment)
				project.PUT("/tasks/:taskId/comments/:commentId", deps.TaskHandler.UpdateComment)
				project.DELETE("/tasks/:taskId/comments/:commentId", deps.TaskHandler.DeleteComment)
				project.GET("/tasks/:taskId/activity", deps.TaskHandler.GetActivity)
			}
		}

		// Project invitation responses
		authed.POST("/invitations/:token/accept", deps.InvitationHandler.Accept)
		authed.POST("/invitations/:token/reject", deps.InvitationHandler.Reject)

		// Notifications
		notifications := authed.Group("/notifications")
		{
			notifications.GET("", deps.NotificationHandler.List)
			notifications.GET("/unread-count", deps.NotificationHandler.UnreadCount)
			notifications.PUT("/read-all", deps.NotificationHandler.MarkAllRead)
			notifications.PUT("/:notificationId/read", deps.NotificationHandler.MarkRead)
			notifications.DELETE("/:notificationId", deps.NotificationHandler.Delete)
		}

		// Live event streams
		events := authed.Group("/events")
		{
			events.GET("/me", deps.EventsHandler.UserStream)
			events.GET("/projects/:projectId", deps.EventsHandler.ProjectStream)
			events.GET("/organizations/:orgId", deps.EventsHandler.OrganizationStream)
		}

		// Maintenance jobs
		authed.POST("/jobs/:name/run", deps.JobsHandler.Run)
	}
}
