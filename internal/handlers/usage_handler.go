package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/middleware"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/sirupsen/logrus"
)

const recordPath = "/record/"

// UsageHandler handles recording and browsing usage logs
type UsageHandler struct {
	usage   UsageRecorder
	catalog Catalog
	auth    AuthGateway
	logger  *logrus.Logger
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(usage UsageRecorder, catalog Catalog, auth AuthGateway, logger *logrus.Logger) *UsageHandler {
	return &UsageHandler{
		usage:   usage,
		catalog: catalog,
		auth:    auth,
		logger:  logger,
	}
}

// Home handles GET /
func Home(c *gin.Context) {
	render(c, http.StatusOK, "home.html", "Home", nil)
}

// RecordPage handles GET /record/
func (h *UsageHandler) RecordPage(c *gin.Context) {
	ctx := c.Request.Context()
	principal := middleware.MustGetPrincipal(c)

	staff, created, err := h.auth.ResolveStaff(ctx, principal)
	if err != nil {
		serverError(c, h.logger, err, "Failed to resolve staff profile")
		return
	}
	if created {
		addFlash(c, FlashInfo, fmt.Sprintf("Staff profile created for %s", principal.Username))
	}

	perfumes, err := h.catalog.List(ctx, models.PerfumeOrderByBrandName)
	if err != nil {
		serverError(c, h.logger, err, "Failed to list perfumes")
		return
	}

	render(c, http.StatusOK, "record_usage.html", "Record usage", gin.H{
		"Perfumes":     perfumes,
		"CurrentStaff": staff,
		"Genders":      models.AllGenders(),
	})
}

// Record handles POST /record/
func (h *UsageHandler) Record(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var form models.RecordUsageForm
	if err := bindForm(c, &form); err != nil {
		addFlash(c, FlashError, apperrors.Message(err, "Please select a valid gender."))
		redirect(c, recordPath)
		return
	}

	result, err := h.usage.RecordUsage(c.Request.Context(), principal, form.Gender, form.Perfume)
	switch {
	case err == nil:
	case apperrors.IsValidation(err):
		addFlash(c, FlashError, err.Error())
		redirect(c, recordPath)
		return
	case apperrors.IsNotFound(err):
		message := apperrors.Message(err, "")
		if apperrors.FieldOf(err) == "perfume" {
			message = "Selected perfume does not exist."
		}
		addFlash(c, FlashError, message)
		redirect(c, recordPath)
		return
	default:
		h.logger.WithError(err).WithField("username", principal.Username).Error("Failed to record usage")
		addFlash(c, FlashError, "Error recording usage. Please try again.")
		redirect(c, recordPath)
		return
	}

	if result.StaffCreated {
		addFlash(c, FlashInfo, fmt.Sprintf("Staff profile created for %s", principal.Username))
	}
	addFlash(c, FlashSuccess, fmt.Sprintf("Successfully recorded %s!", result.Perfume.Label()))
	redirect(c, recordPath)
}

// Today handles GET /today/
func (h *UsageHandler) Today(c *gin.Context) {
	summary, err := h.usage.Today(c.Request.Context())
	if err != nil {
		serverError(c, h.logger, err, "Failed to load today's logs")
		return
	}

	render(c, http.StatusOK, "today.html", "Today", gin.H{
		"Today":     summary.Date,
		"Total":     summary.Total(),
		"Logs":      summary.Logs,
		"ByGender":  summary.ByGender,
		"ByPerfume": summary.ByPerfume,
	})
}

// AllLogs handles GET /logs/
func (h *UsageHandler) AllLogs(c *gin.Context) {
	ctx := c.Request.Context()
	date, perfume, gender := c.Query("date"), c.Query("perfume"), c.Query("gender")

	filter := models.ParseUsageLogFilter(date, perfume, gender, h.usage.Location())
	logs, err := h.usage.Logs(ctx, filter)
	if err != nil {
		serverError(c, h.logger, err, "Failed to load logs")
		return
	}

	perfumes, err := h.catalog.List(ctx, models.PerfumeOrderByBrandName)
	if err != nil {
		serverError(c, h.logger, err, "Failed to list perfumes")
		return
	}

	render(c, http.StatusOK, "logs.html", "All logs", gin.H{
		"Logs":            logs,
		"Perfumes":        perfumes,
		"Genders":         models.AllGenders(),
		"SelectedDate":    date,
		"SelectedPerfume": perfume,
		"SelectedGender":  gender,
	})
}
