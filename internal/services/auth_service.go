package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/database"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/scentdesk/usage-backend/internal/utils"
	"github.com/scentdesk/usage-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6

	msgInvalidCredentials = "Invalid username or password."
	msgSessionExpired     = "Your session has expired. Please log in again."
)

// LoginResult is a freshly opened session
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// AuthService is the authentication gateway: it verifies credentials,
// registers principals, opens and closes sessions and links principals to
// their staff profile.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	staff      StaffStore
	jwtService *jwt.Service
	bcryptCost int
	logger     *logrus.Logger
	now        func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	staff StaffStore,
	jwtService *jwt.Service,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		staff:      staff,
		jwtService: jwtService,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Login verifies credentials and opens a session. Every credential failure
// yields the same AuthenticationError so usernames cannot be probed.
func (s *AuthService) Login(ctx context.Context, username, password string, client models.ClientInfo) (*LoginResult, error) {
	user, err := s.users.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Authentication(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.IsActive {
		return nil, apperrors.Authentication(msgInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Authentication(msgInvalidCredentials)
	}

	sessionID := uuid.New()
	token, expiresAt, err := s.jwtService.GenerateSessionToken(user.ID, user.Username, sessionID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	device := utils.ParseUserAgent(client.UserAgent)
	session := &models.Session{
		ID:         sessionID,
		UserID:     user.ID,
		TokenHash:  database.HashToken(token),
		IPAddress:  models.NewNullString(client.IPAddress),
		UserAgent:  models.NewNullString(client.UserAgent),
		DeviceType: device.DeviceType,
		ExpiresAt:  expiresAt,
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("user_id", user.ID).
			Warn("Failed to update last login")
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"user_id":    user.ID,
		"session_id": sessionID,
		"device":     device.Label(),
	}).Info("User logged in")

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Register creates a principal and its staff profile. Checks run in order:
// matching passwords, password length, free username, free email.
func (s *AuthService) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if username == "" {
		return nil, apperrors.Validation("username", "Username is required.")
	}
	if email == "" {
		return nil, apperrors.Validation("email", "Email is required.")
	}
	if input.Password != input.ConfirmPassword {
		return nil, apperrors.Validation("password2", "Passwords do not match.")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.Validation("password1", fmt.Sprintf("Password must be at least %d characters long.", minPasswordLength))
	}

	taken, err := s.users.ExistsByUsername(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.Constraint("username", "Username already exists.", nil)
	}

	registered, err := s.users.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, apperrors.Constraint("email", "Email already registered.", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// A concurrent registration can still win the race; the unique
	// constraints surface that as a ConstraintError from the store.
	user, staff, err := s.users.CreateWithStaff(username, email, string(hash), username)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"user_id":  user.ID,
		"staff_id": staff.ID,
	}).Info("User registered")

	return user, nil
}

// Logout revokes the session behind token. Unknown, expired or malformed
// tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}

	claims, err := s.jwtService.ValidateSessionToken(token)
	if err != nil {
		return
	}

	if err := s.sessions.Revoke(claims.SessionID); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("session_id", claims.SessionID).
			Error("Failed to revoke session")
		return
	}

	s.logger.WithContext(ctx).WithField("session_id", claims.SessionID).Info("User logged out")
}

// Authenticate resolves a session token to its principal
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	claims, err := s.jwtService.ValidateSessionToken(token)
	if err != nil {
		return nil, apperrors.Authentication(msgSessionExpired)
	}

	session, err := s.sessions.GetActiveByID(claims.SessionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Authentication(msgSessionExpired)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	hash := database.HashToken(token)
	if session.UserID != claims.UserID || subtle.ConstantTimeCompare([]byte(hash), []byte(session.TokenHash)) != 1 {
		return nil, apperrors.Authentication(msgSessionExpired)
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Authentication(msgSessionExpired)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.Authentication(msgSessionExpired)
	}

	if err := s.sessions.Touch(session.ID); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("session_id", session.ID).
			Warn("Failed to touch session")
	}

	return &models.Principal{
		UserID:    user.ID,
		Username:  user.Username,
		SessionID: session.ID,
	}, nil
}

// ResolveStaff returns the principal's staff profile, creating one named after
// the principal on first use. Concurrent first calls converge on one row.
func (s *AuthService) ResolveStaff(ctx context.Context, principal *models.Principal) (*models.Staff, bool, error) {
	staff, created, err := s.staff.GetOrCreateForUser(principal.UserID, principal.Username)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve staff profile: %w", err)
	}

	if created {
		s.logger.WithContext(ctx).WithFields(logrus.Fields{
			"user_id":  principal.UserID,
			"staff_id": staff.ID,
		}).Info("Staff profile created")
	}
	return staff, created, nil
}

// SessionTTL is the lifetime of sessions opened by Login
func (s *AuthService) SessionTTL() time.Duration {
	return s.jwtService.TTL()
}
