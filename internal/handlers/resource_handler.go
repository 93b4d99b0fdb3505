package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/resource"
)

// ======================================================
// HANDLER
// ======================================================

type ResourceHandler struct {
	directory *resource.Directory
}

func NewResourceHandler(directory *resource.Directory) *ResourceHandler {
	return &ResourceHandler{directory: directory}
}

type AssignWorkstationRequest struct {
	WorkstationID uint `json:"workstation_id" binding:"required"`
}

type CreateWorkstationRequest struct {
	Name string `json:"name" binding:"required"`
}

// ======================================================
// STAFF
// ======================================================

func (h *ResourceHandler) GetStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	staff, err := h.directory.GetStaff(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "get_staff_failed")
		return
	}
	httpresp.OK(c, staff)
}

func (h *ResourceHandler) AssignWorkstation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req AssignWorkstationRequest
	if !bind(c, &req) {
		return
	}

	staff, err := h.directory.AssignWorkstation(c.Request.Context(), id, req.WorkstationID)
	if err != nil {
		httperr.FromError(c, err, "assign_workstation_failed")
		return
	}
	httpresp.OK(c, staff)
}

func (h *ResourceHandler) DeactivateStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	staff, err := h.directory.DeactivateStaff(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "deactivate_staff_failed")
		return
	}
	httpresp.OK(c, staff)
}

func (h *ResourceHandler) ActivateStaff(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	staff, err := h.directory.ActivateStaff(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "activate_staff_failed")
		return
	}
	httpresp.OK(c, staff)
}

// ======================================================
// WORKSTATIONS
// ======================================================

func (h *ResourceHandler) GetWorkstation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ws, err := h.directory.GetWorkstation(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "get_workstation_failed")
		return
	}
	httpresp.OK(c, ws)
}

func (h *ResourceHandler) ReleaseWorkstation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.directory.ReleaseWorkstation(c.Request.Context(), id); err != nil {
		httperr.FromError(c, err, "release_workstation_failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// ======================================================
// LOCATIONS
// ======================================================

func (h *ResourceHandler) GetLocation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	loc, err := h.directory.GetLocation(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "get_location_failed")
		return
	}
	httpresp.OK(c, loc)
}

func (h *ResourceHandler) ListWorkstations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.directory.ListWorkstations(c.Request.Context(), id)
	if err != nil {
		httperr.FromError(c, err, "list_workstations_failed")
		return
	}
	httpresp.List(c, list)
}

func (h *ResourceHandler) CreateWorkstation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CreateWorkstationRequest
	if !bind(c, &req) {
		return
	}

	ws, err := h.directory.CreateWorkstation(c.Request.Context(), id, req.Name)
	if err != nil {
		httperr.FromError(c, err, "create_workstation_failed")
		return
	}
	c.JSON(http.StatusCreated, ws)
}
