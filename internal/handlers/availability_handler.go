package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barbershop-booking/internal/httperr"
	"github.com/BruksfildServices01/barbershop-booking/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/resource"
	"github.com/BruksfildServices01/barbershop-booking/internal/usecase/slots"
)

type AvailabilityHandler struct {
	index     *slots.Index
	directory *resource.Directory
	now       func() time.Time
}

func NewAvailabilityHandler(index *slots.Index, directory *resource.Directory, now func() time.Time) *AvailabilityHandler {
	if now == nil {
		now = time.Now
	}
	return &AvailabilityHandler{index: index, directory: directory, now: now}
}

// FreeTurns answers GET /availability?staff_id=&date=[&workstation_id=].
// Without workstation_id the staff member's current workstation is used.
func (h *AvailabilityHandler) FreeTurns(c *gin.Context) {
	ctx := c.Request.Context()

	staffID, ok := queryID(c, "staff_id")
	if !ok {
		return
	}
	date, ok := parseDate(c, c.Query("date"))
	if !ok {
		return
	}

	staff, err := h.directory.GetStaff(ctx, staffID)
	if err != nil {
		httperr.FromError(c, err, "availability_failed")
		return
	}

	var workstationID uint
	if c.Query("workstation_id") != "" {
		if workstationID, ok = queryID(c, "workstation_id"); !ok {
			return
		}
		if _, err := h.directory.GetWorkstation(ctx, workstationID); err != nil {
			httperr.FromError(c, err, "availability_failed")
			return
		}
	} else {
		if staff.WorkstationID == nil {
			httperr.FromError(c, httperr.ErrBusiness("staff_without_workstation"), "availability_failed")
			return
		}
		workstationID = *staff.WorkstationID
	}

	turns, err := h.index.FreeTurns(ctx, staffID, workstationID, date, h.now())
	if err != nil {
		httperr.FromError(c, err, "availability_failed")
		return
	}

	httpresp.List(c, turns)
}
