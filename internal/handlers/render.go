package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scentdesk/usage-backend/internal/middleware"
	"github.com/sirupsen/logrus"
)

const homePath = "/"

// render executes a page template with the values every page needs
func render(c *gin.Context, status int, page, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Principal"] = nil
	if principal, ok := middleware.GetPrincipal(c); ok {
		data["Principal"] = principal
	}
	data["Messages"] = popFlashes(c)

	c.HTML(status, page, data)
}

// NotFound renders the 404 page
func NotFound(c *gin.Context) {
	render(c, http.StatusNotFound, "404.html", "Page not found", nil)
}

// serverError logs an unexpected failure and renders the generic error page
func serverError(c *gin.Context, logger *logrus.Logger, err error, msg string) {
	logger.WithContext(c.Request.Context()).WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error(msg)

	render(c, http.StatusInternalServerError, "error.html", "Something went wrong", nil)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
