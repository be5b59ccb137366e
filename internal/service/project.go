package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/backend/internal/mail"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"github.com/taskhive/backend/internal/role"
	"gorm.io/gorm"
)

type ProjectService struct {
	db            *gorm.DB
	mailer        mail.Mailer
	hub           *realtime.Hub
	clientURL     string
	invitationTTL time.Duration
}

func NewProjectService(db *gorm.DB, mailer mail.Mailer, hub *realtime.Hub, clientURL string, invitationTTLDays int) *ProjectService {
	return &ProjectService{
		db:            db,
		mailer:        mailer,
		hub:           hub,
		clientURL:     clientURL,
		invitationTTL: time.Duration(invitationTTLDays) * 24 * time.Hour,
	}
}

// defaultColumns is the board every new project starts with. Column order
// and status bindings drive the task state machine.
func defaultColumns() []model.BoardColumn {
	return []model.BoardColumn{
		{Name: "Backlog", Status: model.StatusBacklog, Order: 0, Color: "#6b7280"},
		{Name: "To Do", Status: model.StatusTodo, Order: 1, Color: "#3b82f6"},
		{Name: "In Progress", Status: model.StatusInProgress, Order: 2, Color: "#f59e0b"},
		{Name: "In Review", Status: model.StatusInReview, Order: 3, Color: "#8b5cf6"},
		{Name: "Done", Status: model.StatusDone, Order: 4, Color: "#10b981"},
	}
}

func defaultLabels() []model.Label {
	return []model.Label{
		{Name: "Bug", Color: "#ef4444"},
		{Name: "Feature", Color: "#3b82f6"},
		{Name: "Enhancement", Color: "#10b981"},
		{Name: "Documentation", Color: "#6b7280"},
	}
}

type CreateProjectData struct {
	Name           string
	Description    string
	Key            string
	Color          string
	StartDate      *time.Time
	EndDate        *time.Time
	OrganizationID uint
}

// Create requires an organization role above GUEST. The creator becomes
// both Project.OwnerID and an ADMIN member row; the default board and
// labels are created in the same transaction.
func (s *ProjectService) Create(userID uint, data CreateProjectData) (*model.Project, error) {
	var orgMember model.OrganizationMember
	if err := s.db.Where("organization_id = ? AND user_id = ?", data.OrganizationID, userID).
		First(&orgMember).Error; err != nil {
		return nil, fmt.Errorf("40301:not a member of this organization")
	}
	if ok, _ := role.HasMinOrgRole(orgMember.Role, role.OrgMember); !ok {
		return nil, fmt.Errorf("40302:insufficient permissions to create projects")
	}

	key := strings.ToUpper(data.Key)
	var count int64
	s.db.Model(&model.Project{}).Where("`key` = ?", key).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("40905:project key already exists")
	}

	project := &model.Project{
		OrganizationID: data.OrganizationID,
		OwnerID:        userID,
		Key:            key,
		Name:           data.Name,
		Description:    data.Description,
		Color:          data.Color,
		Status:         model.ProjectActive,
		StartDate:      data.StartDate,
		EndDate:        data.EndDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.ProjectMember{
			ProjectID: project.ID,
			UserID:    userID,
			Role:      role.ProjectAdmin,
		}).Error; err != nil {
			return err
		}
		board := &model.Board{ProjectID: project.ID, Name: "Main Board"}
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		columns := defaultColumns()
		for i := range columns {
			columns[i].BoardID = board.ID
		}
		if err := tx.Create(&columns).Error; err != nil {
			return err
		}
		labels := defaultLabels()
		for i := range labels {
			labels[i].ProjectID = project.ID
		}
		return tx.Create(&labels).Error
	})
	if err != nil {
		return nil, err
	}

	return s.FindByID(project.ID, userID)
}

func (s *ProjectService) FindAll(userID uint, page, limit int) ([]model.Project, int64, error) {
	query := s.db.Model(&model.Project{}).
		Where("owner_id = ? OR id IN (SELECT project_id FROM project_members WHERE user_id = ?)", userID, userID)

	var total int64
	query.Count(&total)

	var projects []model.Project
	if err := query.Preload("Owner").
		Order("updated_at desc").
		Offset((page - 1) * limit).Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (s *ProjectService) FindByID(projectID, userID uint) (*model.Project, error) {
	var project model.Project
	if err := s.db.Preload("Owner").Preload("Members.User").
		Preload("Boards.Columns", func(db *gorm.DB) *gorm.DB { return db.Order("board_columns.`order` asc") }).
		Preload("Labels").
		First(&project, projectID).Error; err != nil {
		return nil, fmt.Errorf("40403:project not found")
	}
	if !hasProjectAccess(&project, userID) {
		return nil, fmt.Errorf("40304:not a member of this project")
	}
	return &project, nil
}

func hasProjectAccess(p *model.Project, userID uint) bool {
	if p.OwnerID == userID {
		return true
	}
	return projectMemberOf(p, userID) != nil
}

func projectMemberOf(p *model.Project, userID uint) *model.ProjectMember {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			return &p.Members[i]
		}
	}
	return nil
}

// isOwnerOrAdmin is the gate for project mutations below ownership level.
func isOwnerOrAdmin(p *model.Project, userID uint) bool {
	if p.OwnerID == userID {
		return true
	}
	m := projectMemberOf(p, userID)
	return m != nil && m.Role == role.ProjectAdmin
}

func (s *ProjectService) Update(projectID, userID uint, updates map[string]interface{}) (*model.Project, error) {
	project, err := s.FindByID(projectID, userID)
	if err != nil {
		return nil, err
	}
	if !isOwnerOrAdmin(project, userID) {
		return nil, fmt.Errorf("40306:only the project owner or an admin can update the project")
	}
	if err := s.db.Model(&model.Project{}).Where("id = ?", projectID).Updates(updates).Error; err != nil {
		return nil, err
	}
	updated, err := s.FindByID(projectID, userID)
	if err != nil {
		return nil, err
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "project:updated", updated)
	return updated, nil
}

// Delete requires exact ownership, not ADMIN.
func (s *ProjectService) Delete(projectID, userID uint) error {
	var project model.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return fmt.Errorf("40403:project not found")
	}
	if project.OwnerID != userID {
		return fmt.Errorf("40306:only the project owner can delete the project")
	}
	return s.db.Delete(&project).Error
}

type AddMemberResult struct {
	Type       string               `json:"type"` // "invitation" or "member"
	Member     *model.ProjectMember `json:"member,omitempty"`
	Invitation *model.Invitation    `json:"invitation,omitempty"`
	Message    string               `json:"message"`
}

// AddMember branches on whether a user with the email exists: unknown
// emails get an invitation, known users are added directly. Emails on
// both paths are best-effort.
func (s *ProjectService) AddMember(projectID, userID uint, memberEmail string, memberRole role.ProjectRole) (*AddMemberResult, error) {
	var project model.Project
	if err := s.db.Preload("Members").First(&project, projectID).Error; err != nil {
		return nil, fmt.Errorf("40403:project not found")
	}
	if !isOwnerOrAdmin(&project, userID) {
		return nil, fmt.Errorf("40306:only the project owner or an admin can add members")
	}
	if !role.ValidProjectRole(memberRole) {
		return nil, fmt.Errorf("40002:invalid project role %q", string(memberRole))
	}

	var sender model.User
	s.db.First(&sender, userID)
	senderName := sender.FullName()
	if senderName == "" {
		senderName = "A team member"
	}

	var user model.User
	if err := s.db.Where("email = ?", memberEmail).First(&user).Error; err != nil {
		var pending int64
		s.db.Model(&model.Invitation{}).
			Where("project_id = ? AND email = ? AND status = ?", projectID, memberEmail, model.InvitationPending).
			Count(&pending)
		if pending > 0 {
			return nil, fmt.Errorf("40902:invitation already sent to this email")
		}

		invitation := &model.Invitation{
			ProjectID: projectID,
			Email:     memberEmail,
			Role:      memberRole,
			Token:     uuid.NewString(),
			Status:    model.InvitationPending,
			SenderID:  userID,
			ExpiresAt: time.Now().Add(s.invitationTTL),
		}
		if err := s.db.Create(invitation).Error; err != nil {
			return nil, err
		}

		if err := s.mailer.SendProjectInvitation(memberEmail, project.Name, senderName, string(memberRole), invitation.Token); err != nil {
			log.Printf("[mail] project invitation to %s not sent: %v", memberEmail, err)
		}

		return &AddMemberResult{
			Type:       "invitation",
			Invitation: invitation,
			Message:    fmt.Sprintf("Invitation sent to %s", memberEmail),
		}, nil
	}

	if projectMemberOf(&project, user.ID) != nil {
		return nil, fmt.Errorf("40901:user is already a member")
	}

	member := &model.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      memberRole,
	}
	if err := s.db.Create(member).Error; err != nil {
		return nil, err
	}
	member.User = &user

	projectURL := fmt.Sprintf("%s/projects/%d", s.clientURL, projectID)
	if err := s.mailer.SendMemberAdded(user.Email, user.FullName(), project.Name, projectURL); err != nil {
		log.Printf("[mail] member notice to %s not sent: %v", user.Email, err)
	}

	s.hub.Emit(realtime.ProjectRoom(projectID), "member:added", member)
	return &AddMemberResult{
		Type:    "member",
		Member:  member,
		Message: fmt.Sprintf("%s added to project", user.FullName()),
	}, nil
}

// RemoveMember never touches the owner; self-removal is always allowed,
// removing others needs owner-or-admin.
func (s *ProjectService) RemoveMember(projectID, userID, memberID uint) error {
	var project model.Project
	if err := s.db.Preload("Members").First(&project, projectID).Error; err != nil {
		return fmt.Errorf("40403:project not found")
	}
	if project.OwnerID == memberID {
		return fmt.Errorf("40003:cannot remove the project owner")
	}
	if memberID != userID && !isOwnerOrAdmin(&project, userID) {
		return fmt.Errorf("40306:only the project owner or an admin can remove members")
	}

	result := s.db.Where("project_id = ? AND user_id = ?", projectID, memberID).
		Delete(&model.ProjectMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("40408:member not found")
	}
	s.hub.Emit(realtime.ProjectRoom(projectID), "member:removed", map[string]interface{}{"user_id": memberID})
	return nil
}

// UpdateMemberRole requires exact ownership and can never target the
// owner, who has no role row to change.
func (s *ProjectService) UpdateMemberRole(projectID, userID, memberID uint, newRole role.ProjectRole) (*model.ProjectMember, error) {
	var project model.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		return nil, fmt.Errorf("40403:project not found")
	}
	if project.OwnerID == memberID {
		return nil, fmt.Errorf("40003:cannot change the project owner's role")
	}
	if project.OwnerID != userID {
		return nil, fmt.Errorf("40306:only the project owner can update member roles")
	}
	if !role.ValidProjectRole(newRole) {
		return nil, fmt.Errorf("40002:invalid project role %q", string(newRole))
	}

	var member model.ProjectMember
	if err := s.db.Where("project_id = ? AND user_id = ?", projectID, memberID).First(&member).Error; err != nil {
		return nil, fmt.Errorf("40408:member not found")
	}
	member.Role = newRole
	if err := s.db.Save(&member).Error; err != nil {
		return nil, err
	}
	s.db.Preload("User").First(&member, member.ID)
	return &member, nil
}

func (s *ProjectService) GetMembers(projectID, userID uint) ([]model.ProjectMember, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}
	var members []model.ProjectMember
	if err := s.db.Preload("User").
		Where("project_id = ?", projectID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (s *ProjectService) board(projectID uint) (*model.Board, error) {
	var board model.Board
	if err := s.db.Where("project_id = ?", projectID).First(&board).Error; err != nil {
		return nil, fmt.Errorf("40409:board not found")
	}
	return &board, nil
}

func (s *ProjectService) GetColumns(projectID, userID uint) ([]model.BoardColumn, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}
	board, err := s.board(projectID)
	if err != nil {
		return nil, err
	}
	var columns []model.BoardColumn
	if err := s.db.Where("board_id = ?", board.ID).Order("`order` asc").Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

type CreateColumnData struct {
	Name   string
	Order  *int
	Status model.TaskStatus
	Color  string
}

// CreateColumn places the column at max(order)+1 when no order is given.
func (s *ProjectService) CreateColumn(projectID, userID uint, data CreateColumnData) (*model.BoardColumn, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}
	board, err := s.board(projectID)
	if err != nil {
		return nil, err
	}

	column := &model.BoardColumn{
		BoardID: board.ID,
		Name:    data.Name,
		Status:  data.Status,
		Color:   data.Color,
	}
	if column.Status == "" {
		column.Status = model.StatusTodo
	}
	if column.Color == "" {
		column.Color = "#3b82f6"
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if data.Order != nil {
			column.Order = *data.Order
		} else {
			var maxColumn model.BoardColumn
			err := tx.Where("board_id = ?", board.ID).Order("`order` desc").First(&maxColumn).Error
			switch err {
			case nil:
				column.Order = maxColumn.Order + 1
			case gorm.ErrRecordNotFound:
				column.Order = 0
			default:
				return err
			}
		}
		return tx.Create(column).Error
	})
	if err != nil {
		return nil, err
	}
	return column, nil
}

func (s *ProjectService) UpdateColumn(projectID, userID, columnID uint, updates map[string]interface{}) (*model.BoardColumn, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}
	column, err := s.columnInProject(projectID, columnID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(column).Updates(updates).Error; err != nil {
		return nil, err
	}
	return column, nil
}

// DeleteColumn refuses while any task still references the column.
func (s *ProjectService) DeleteColumn(projectID, userID, columnID uint) error {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return err
	}
	column, err := s.columnInProject(projectID, columnID)
	if err != nil {
		return err
	}

	var taskCount int64
	s.db.Model(&model.Task{}).Where("column_id = ?", columnID).Count(&taskCount)
	if taskCount > 0 {
		return fmt.Errorf("40004:cannot delete a column with tasks, move or delete them first")
	}
	return s.db.Delete(column).Error
}

func (s *ProjectService) columnInProject(projectID, columnID uint) (*model.BoardColumn, error) {
	board, err := s.board(projectID)
	if err != nil {
		return nil, err
	}
	var column model.BoardColumn
	if err := s.db.First(&column, columnID).Error; err != nil || column.BoardID != board.ID {
		return nil, fmt.Errorf("40405:column not found")
	}
	return &column, nil
}

type ColumnOrder struct {
	ID    uint `json:"id" binding:"required"`
	Order int  `json:"order"`
}

// ReorderColumns applies the whole batch in one transaction.
func (s *ProjectService) ReorderColumns(projectID, userID uint, orders []ColumnOrder) ([]model.BoardColumn, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, co := range orders {
			if err := tx.Model(&model.BoardColumn{}).Where("id = ?", co.ID).
				Update("order", co.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetColumns(projectID, userID)
}

func (s *ProjectService) GetLabels(projectID, userID uint) ([]model.Label, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}
	var labels []model.Label
	if err := s.db.Where("project_id = ?", projectID).Order("name asc").Find(&labels).Error; err != nil {
		return nil, err
	}
	return labels, nil
}

func (s *ProjectService) CreateLabel(projectID, userID uint, name, color string) (*model.Label, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}
	if color == "" {
		color = "#6b7280"
	}
	label := &model.Label{ProjectID: projectID, Name: name, Color: color}
	if err := s.db.Create(label).Error; err != nil {
		return nil, err
	}
	return label, nil
}

// DeleteLabel detaches the label from every task before removing it.
func (s *ProjectService) DeleteLabel(projectID, userID, labelID uint) error {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return err
	}
	var label model.Label
	if err := s.db.Where("id = ? AND project_id = ?", labelID, projectID).First(&label).Error; err != nil {
		return fmt.Errorf("40404:label not found")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("label_id = ?", labelID).Delete(&model.TaskLabel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&label).Error
	})
}

func (s *ProjectService) GetStats(projectID, userID uint) (map[string]interface{}, error) {
	if _, err := s.FindByID(projectID, userID); err != nil {
		return nil, err
	}

	countBy := func(field string) map[string]int64 {
		out := make(map[string]int64)
		rows, err := s.db.Model(&model.Task{}).
			Select(field+", count(id) as count").
			Where("project_id = ?", projectID).
			Group(field).Rows()
		if err != nil {
			return out
		}
		defer rows.Close()
		for rows.Next() {
			var key string
			var count int64
			if err := rows.Scan(&key, &count); err == nil {
				out[key] = count
			}
		}
		return out
	}

	var recentActivity []model.Activity
	s.db.Preload("User").Preload("Task").
		Joins("JOIN tasks ON tasks.id = activities.task_id").
		Where("tasks.project_id = ?", projectID).
		Order("activities.created_at desc").
		Limit(10).
		Find(&recentActivity)

	return map[string]interface{}{
		"tasks_by_status":   countBy("status"),
		"tasks_by_priority": countBy("priority"),
		"recent_activity":   recentActivity,
	}, nil
}
