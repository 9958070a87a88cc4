// Command seeduser creates a login account and its staff profile without
// going through the registration page. With -staff it creates a staff
// profile that has no login account instead.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/scentdesk/usage-backend/internal/config"
	"github.com/scentdesk/usage-backend/internal/database"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/scentdesk/usage-backend/internal/services"
	"github.com/scentdesk/usage-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

func main() {
	username := flag.String("username", "", "login name (required)")
	email := flag.String("email", "", "email address (required)")
	password := flag.String("password", "", "password, at least 6 characters (required)")
	staffName := flag.String("staff", "", "create an unlinked staff profile with this name and exit")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stdout)

	if *staffName == "" && (*username == "" || *email == "" || *password == "") {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.CreateSchema(db); err != nil {
		logger.Fatalf("Failed to create schema: %v", err)
	}

	staffRepo := database.NewStaffRepository(db)

	if *staffName != "" {
		staff, err := staffRepo.Create(*staffName, nil)
		if err != nil {
			logger.Fatalf("Failed to create staff profile: %v", err)
		}
		logger.WithFields(logrus.Fields{
			"staff_id": staff.ID,
			"name":     staff.Name,
		}).Info("✓ Staff profile created")
		return
	}

	authService := services.NewAuthService(
		database.NewUserRepository(db),
		database.NewSessionRepository(db),
		staffRepo,
		jwt.NewService(cfg.Session.Secret, cfg.Session.TTL),
		cfg.Security.BcryptCost,
		logger,
	)

	user, err := authService.Register(context.Background(), models.RegisterInput{
		Username:        *username,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *password,
	})
	if err != nil {
		logger.Fatalf("Failed to create user: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("✓ User created")
}
