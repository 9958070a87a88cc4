package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/middleware"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/scentdesk/usage-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles login, registration and logout
type AuthHandler struct {
	auth   AuthGateway
	cookie middleware.SessionCookie
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthGateway, cookie middleware.SessionCookie, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		cookie: cookie,
		logger: logger,
	}
}

// LoginPage handles GET /login/
func (h *AuthHandler) LoginPage(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); ok {
		redirect(c, homePath)
		return
	}

	h.renderLogin(c, http.StatusOK, "")
}

// Login handles POST /login/
func (h *AuthHandler) Login(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); ok {
		redirect(c, homePath)
		return
	}

	var form models.LoginForm
	if err := bindForm(c, &form); err != nil {
		addFlash(c, FlashError, "Invalid username or password.")
		h.renderLogin(c, http.StatusOK, form.Username)
		return
	}

	client := models.ClientInfo{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
	result, err := h.auth.Login(c.Request.Context(), form.Username, form.Password, client)
	if err != nil {
		if apperrors.IsAuthentication(err) {
			h.logger.WithFields(logrus.Fields{
				"username": form.Username,
				"ip":       client.IPAddress,
			}).Warn("Failed login attempt")

			addFlash(c, FlashError, err.Error())
			h.renderLogin(c, http.StatusOK, form.Username)
			return
		}
		serverError(c, h.logger, err, "Login failed")
		return
	}

	h.cookie.Set(c, result.Token, h.auth.SessionTTL())
	addFlash(c, FlashSuccess, fmt.Sprintf("Welcome back, %s!", result.User.Username))
	redirect(c, utils.SafeRedirectPath(nextParam(c), homePath))
}

// RegisterPage handles GET /register/
func (h *AuthHandler) RegisterPage(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); ok {
		redirect(c, homePath)
		return
	}

	h.renderRegister(c, http.StatusOK, models.RegisterForm{})
}

// Register handles POST /register/
func (h *AuthHandler) Register(c *gin.Context) {
	if _, ok := middleware.GetPrincipal(c); ok {
		redirect(c, homePath)
		return
	}

	var form models.RegisterForm
	if err := bindForm(c, &form); err != nil {
		addFlash(c, FlashError, apperrors.Message(err, "The submitted form could not be read."))
		h.renderRegister(c, http.StatusOK, form)
		return
	}

	_, err := h.auth.Register(c.Request.Context(), models.RegisterInput{
		Username:        form.Username,
		Email:           form.Email,
		Password:        form.Password1,
		ConfirmPassword: form.Password2,
	})
	if err != nil {
		if apperrors.IsValidation(err) || apperrors.IsConstraint(err) {
			addFlash(c, FlashError, err.Error())
			h.renderRegister(c, http.StatusOK, form)
			return
		}
		serverError(c, h.logger, err, "Registration failed")
		return
	}

	addFlash(c, FlashSuccess, "Account created successfully! Please login.")
	redirect(c, middleware.LoginPath)
}

// Logout handles GET and POST /logout/. It always ends on the home page.
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, loggedIn := middleware.GetPrincipal(c)

	h.auth.Logout(c.Request.Context(), h.cookie.Token(c))
	h.cookie.Clear(c)

	if loggedIn {
		addFlash(c, FlashSuccess, fmt.Sprintf("Goodbye, %s! You have been logged out.", principal.Username))
	}
	redirect(c, homePath)
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, username string) {
	render(c, status, "login.html", "Log in", gin.H{
		"Username": username,
		"Next":     nextParam(c),
	})
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, form models.RegisterForm) {
	render(c, status, "register.html", "Register", gin.H{
		"Username": form.Username,
		"Email":    form.Email,
	})
}

func nextParam(c *gin.Context) string {
	if next := c.Query("next"); next != "" {
		return next
	}
	return c.PostForm("next")
}
