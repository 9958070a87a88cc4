package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/sirupsen/logrus"
)

const perfumesPath = "/perfumes/"

// PerfumeHandler handles catalog management pages
type PerfumeHandler struct {
	catalog Catalog
	logger  *logrus.Logger
}

// NewPerfumeHandler creates a new perfume handler
func NewPerfumeHandler(catalog Catalog, logger *logrus.Logger) *PerfumeHandler {
	return &PerfumeHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// Management handles GET /perfumes/
func (h *PerfumeHandler) Management(c *gin.Context) {
	perfumes, err := h.catalog.List(c.Request.Context(), models.PerfumeOrderByNewest)
	if err != nil {
		serverError(c, h.logger, err, "Failed to list perfumes")
		return
	}

	render(c, http.StatusOK, "perfume_management.html", "Perfumes", gin.H{
		"Perfumes": perfumes,
	})
}

// Add handles POST /perfumes/add/
func (h *PerfumeHandler) Add(c *gin.Context) {
	var form models.PerfumeForm
	if err := bindForm(c, &form); err != nil {
		addFlash(c, FlashError, fmt.Sprintf("Error adding perfume: %s", apperrors.Message(err, "invalid form")))
		redirect(c, perfumesPath)
		return
	}

	perfume, err := h.catalog.Add(c.Request.Context(), form)
	if err != nil {
		h.flashFailure(c, "adding", err)
		redirect(c, perfumesPath)
		return
	}

	addFlash(c, FlashSuccess, fmt.Sprintf("Successfully added %s!", perfume.Label()))
	redirect(c, perfumesPath)
}

// Edit handles POST /perfumes/edit/:id/
func (h *PerfumeHandler) Edit(c *gin.Context) {
	id, ok := h.lookup(c)
	if !ok {
		return
	}

	var form models.PerfumeForm
	if err := bindForm(c, &form); err != nil {
		addFlash(c, FlashError, fmt.Sprintf("Error updating perfume: %s", apperrors.Message(err, "invalid form")))
		redirect(c, perfumesPath)
		return
	}

	perfume, err := h.catalog.Update(c.Request.Context(), id, form)
	if err != nil {
		if apperrors.IsNotFound(err) {
			NotFound(c)
			return
		}
		h.flashFailure(c, "updating", err)
		redirect(c, perfumesPath)
		return
	}

	addFlash(c, FlashSuccess, fmt.Sprintf("Successfully updated %s!", perfume.Label()))
	redirect(c, perfumesPath)
}

// Delete handles POST /perfumes/delete/:id/. Usage logs of the perfume are
// removed with it.
func (h *PerfumeHandler) Delete(c *gin.Context) {
	id, ok := h.lookup(c)
	if !ok {
		return
	}

	perfume, err := h.catalog.Delete(c.Request.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			NotFound(c)
			return
		}
		h.flashFailure(c, "deleting", err)
		redirect(c, perfumesPath)
		return
	}

	addFlash(c, FlashSuccess, fmt.Sprintf("Successfully deleted %s!", perfume.Label()))
	redirect(c, perfumesPath)
}

// ToManagement redirects GET requests on the form endpoints back to the list,
// after checking that the addressed perfume exists.
func (h *PerfumeHandler) ToManagement(c *gin.Context) {
	if c.Param("id") != "" {
		if _, ok := h.lookup(c); !ok {
			return
		}
	}
	redirect(c, perfumesPath)
}

// lookup resolves the :id parameter to an existing perfume or renders the 404 page
func (h *PerfumeHandler) lookup(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		NotFound(c)
		return uuid.Nil, false
	}

	if _, err := h.catalog.Get(c.Request.Context(), id); err != nil {
		if apperrors.IsNotFound(err) {
			NotFound(c)
			return uuid.Nil, false
		}
		serverError(c, h.logger, err, "Failed to load perfume")
		return uuid.Nil, false
	}
	return id, true
}

func (h *PerfumeHandler) flashFailure(c *gin.Context, action string, err error) {
	if !apperrors.IsValidation(err) && !apperrors.IsConstraint(err) {
		h.logger.WithError(err).WithField("action", action).Error("Perfume change failed")
	}
	addFlash(c, FlashError, fmt.Sprintf("Error %s perfume: %s", action, apperrors.Message(err, "please try again.")))
}
