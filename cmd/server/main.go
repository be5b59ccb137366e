package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/handler"
	"github.com/taskhive/backend/internal/mail"
	"github.com/taskhive/backend/internal/model"
	"github.com/taskhive/backend/internal/realtime"
	"github.com/taskhive/backend/internal/router"
	"github.com/taskhive/backend/internal/service"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// Load config
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Organization{},
		&model.OrganizationSettings{},
		&model.OrganizationMember{},
		&model.OrganizationInvitation{},
		&model.Project{},
		&model.ProjectMember{},
		&model.Invitation{},
		&model.Label{},
		&model.Board{},
		&model.BoardColumn{},
		&model.Task{},
		&model.TaskAssignee{},
		&model.TaskLabel{},
		&model.Comment{},
		&model.Attachment{},
		&model.Activity{},
		&model.Notification{},
	); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Core components
	hub := realtime.NewHub(rdb)

	var mailer mail.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User,
			cfg.SMTP.Password, cfg.SMTP.From, cfg.Client.URL)
	} else {
		mailer = mail.NoopMailer{}
		log.Println("[mail] SMTP not configured, outbound mail disabled")
	}

	// Services
	authService := service.NewAuthService(db, cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.RefreshExpireHours)
	orgService := service.NewOrganizationService(db, mailer, hub,
		cfg.Limits.MaxOwnedOrganizations, cfg.Limits.InvitationTTLDays)
	projectService := service.NewProjectService(db, mailer, hub, cfg.Client.URL, cfg.Limits.InvitationTTLDays)
	taskService := service.NewTaskService(db, hub)
	invitationService := service.NewInvitationService(db, hub)
	notificationService := service.NewNotificationService(db)
	schedulerService := service.NewSchedulerService(db, mailer, hub)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, orgService)
	orgHandler := handler.NewOrganizationHandler(orgService)
	projectHandler := handler.NewProjectHandler(projectService)
	taskHandler := handler.NewTaskHandler(taskService)
	invitationHandler := handler.NewInvitationHandler(invitationService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	eventsHandler := handler.NewEventsHandler(db, hub)
	jobsHandler := handler.NewJobsHandler(schedulerService)

	// Gin engine
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	// Setup routes
	router.Setup(r, router.Deps{
		DB:                  db,
		JWTSecret:           cfg.JWT.Secret,
		AuthHandler:         authHandler,
		OrgHandler:          orgHandler,
		ProjectHandler:      projectHandler,
		TaskHandler:         taskHandler,
		InvitationHandler:   invitationHandler,
		NotificationHandler: notificationHandler,
		EventsHandler:       eventsHandler,
		JobsHandler:         jobsHandler,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
