package service

import (
	"fmt"
	"log"
	"time"

	"github.com/taskhive/backend/internal/mail"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"gorm.io/gorm"
)

// SchedulerService holds the periodic maintenance jobs. Each job is a
// plain idempotent batch method with no in-process timer; an external
// scheduler (cron, a systemd timer, the jobs endpoint) decides when to
// run them, and running one twice does no extra work.
type SchedulerService struct {
	db     *gorm.DB
	mailer mail.Mailer
	hub    *realtime.Hub
}

func NewSchedulerService(db *gorm.DB, mailer mail.Mailer, hub *realtime.Hub) *SchedulerService {
	return &SchedulerService{db: db, mailer: mailer, hub: hub}
}

// SweepOverdueTasks notifies every assignee of an unfinished task whose
// due date has passed. A notification already sent for the same task and
// user is not repeated.
func (s *SchedulerService) SweepOverdueTasks() (int, error) {
	var tasks []model.Task
	err := s.db.Preload("Assignees.User").
		Where("due_date < ? AND status NOT IN ?", time.Now(),
			[]model.TaskStatus{model.StatusDone, model.StatusCancelled}).
		Find(&tasks).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, task := range tasks {
		message := fmt.Sprintf("Task %q is overdue", task.Title)
		for _, assignee := range task.Assignees {
			var existing int64
			s.db.Model(&model.Notification{}).
				Where("user_id = ? AND type = ? AND message = ?",
					assignee.UserID, model.NotificationTaskOverdue, message).
				Count(&existing)
			if existing > 0 {
				continue
			}
			notification := &model.Notification{
				Type:    model.NotificationTaskOverdue,
				Title:   "Task overdue",
				Message: message,
				UserID:  assignee.UserID,
				Metadata: model.JSONMap{
					"taskId":    task.ID,
					"projectId": task.ProjectID,
				},
			}
			if err := s.db.Create(notification).Error; err != nil {
				log.Printf("[jobs] overdue notification for task %d: %v", task.ID, err)
				continue
			}
			s.hub.Emit(realtime.UserRoom(assignee.UserID), "notification:new", notification)
			sent++
		}
	}
	log.Printf("[jobs] overdue sweep: %d tasks checked, %d notifications", len(tasks), sent)
	return sent, nil
}

// SendTaskReminders covers tasks due within the next 24 hours. Assignees
// get an in-app notification plus a best-effort reminder email.
func (s *SchedulerService) SendTaskReminders() (int, error) {
	now := time.Now()
	var tasks []model.Task
	err := s.db.Preload("Assignees.User").Preload("Project").
		Where("due_date BETWEEN ? AND ? AND status NOT IN ?", now, now.Add(24*time.Hour),
			[]model.TaskStatus{model.StatusDone, model.StatusCancelled}).
		Find(&tasks).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, task := range tasks {
		message := fmt.Sprintf("Task %q is due soon", task.Title)
		projectName := ""
		if task.Project != nil {
			projectName = task.Project.Name
		}
		for _, assignee := range task.Assignees {
			var existing int64
			s.db.Model(&model.Notification{}).
				Where("user_id = ? AND type = ? AND message = ?",
					assignee.UserID, model.NotificationTaskDueSoon, message).
				Count(&existing)
			if existing > 0 {
				continue
			}
			notification := &model.Notification{
				Type:    model.NotificationTaskDueSoon,
				Title:   "Task due soon",
				Message: message,
				UserID:  assignee.UserID,
				Metadata: model.JSONMap{
					"taskId":    task.ID,
					"projectId": task.ProjectID,
				},
			}
			if err := s.db.Create(notification).Error; err != nil {
				log.Printf("[jobs] reminder notification for task %d: %v", task.ID, err)
				continue
			}
			if assignee.User != nil && task.DueDate != nil {
				if err := s.mailer.SendTaskReminder(assignee.User.Email, assignee.User.FullName(),
					task.Title, projectName, *task.DueDate); err != nil {
					log.Printf("[jobs] reminder mail to %s: %v", assignee.User.Email, err)
				}
			}
			s.hub.Emit(realtime.UserRoom(assignee.UserID), "notification:new", notification)
			sent++
		}
	}
	log.Printf("[jobs] reminders: %d tasks checked, %d notifications", len(tasks), sent)
	return sent, nil
}

// ExpireInvitations marks pending invitations past their expiry as
// EXPIRED, for both project and organization invitations. Rows are kept
// so a late visitor gets a precise "expired" answer instead of a 404.
func (s *SchedulerService) ExpireInvitations() (int64, error) {
	now := time.Now()

	project := s.db.Model(&model.Invitation{}).
		Where("status = ? AND expires_at < ?", model.InvitationPending, now).
		Update("status", model.InvitationExpired)
	if project.Error != nil {
		return 0, project.Error
	}

	org := s.db.Model(&model.OrganizationInvitation{}).
		Where("status = ? AND expires_at < ?", model.InvitationPending, now).
		Update("status", model.InvitationExpired)
	if org.Error != nil {
		return project.RowsAffected, org.Error
	}

	total := project.RowsAffected + org.RowsAffected
	log.Printf("[jobs] expired %d invitations", total)
	return total, nil
}

// SendDailyDigest logs a per-organization summary of board movement. The
// original system only ever logged this; kept as a log-only job.
func (s *SchedulerService) SendDailyDigest() error {
	var orgs []model.Organization
	if err := s.db.Where("is_active = ?", true).Find(&orgs).Error; err != nil {
		return err
	}

	since := time.Now().Add(-24 * time.Hour)
	for _, org := range orgs {
		var created, completed, overdue int64
		s.db.Model(&model.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.organization_id = ? AND tasks.created_at > ?", org.ID, since).
			Count(&created)
		s.db.Model(&model.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.organization_id = ? AND tasks.status = ? AND tasks.updated_at > ?",
				org.ID, model.StatusDone, since).
			Count(&completed)
		s.db.Model(&model.Task{}).
			Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.organization_id = ? AND tasks.due_date < ? AND tasks.status NOT IN ?",
				org.ID, time.Now(), []model.TaskStatus{model.StatusDone, model.StatusCancelled}).
			Count(&overdue)
		log.Printf("[jobs] digest %s: %d created, %d completed, %d overdue", org.Slug, created, completed, overdue)
	}
	return nil
}

// CleanupExpiredTokens deletes refresh tokens past their expiry.
func (s *SchedulerService) CleanupExpiredTokens() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&model.RefreshToken{})
	if result.Error != nil {
		return 0, result.Error
	}
	log.Printf("[jobs] removed %d expired refresh tokens", result.RowsAffected)
	return result.RowsAffected, nil
}
