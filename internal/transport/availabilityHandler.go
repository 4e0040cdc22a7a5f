package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/internal/service"
)

type AvailabilityHandler struct {
	availabilityService service.AvailabilityService
}

func NewAvailabilityHandler(availabilityService service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

// Branches lists the clinic branches a client can book at.
func (h *AvailabilityHandler) Branches(c *gin.Context) {
	branches, err := h.availabilityService.Branches(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if branches == nil {
		branches = []*entity.Branch{}
	}
	respondData(c, http.StatusOK, branches)
}

// DoctorAvailability handles GET /availability/doctor/:id?branch_id=&date=
func (h *AvailabilityHandler) DoctorAvailability(c *gin.Context) {
	subjectID, branchID, date, err := availabilityParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	slots, err := h.availabilityService.DoctorAvailability(c.Request.Context(), subjectID, branchID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, slots)
}

// ServiceAvailability handles GET /availability/service/:id?branch_id=&date=
func (h *AvailabilityHandler) ServiceAvailability(c *gin.Context) {
	subjectID, branchID, date, err := availabilityParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	slots, err := h.availabilityService.ServiceAvailability(c.Request.Context(), subjectID, branchID, date)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, slots)
}

func availabilityParams(c *gin.Context) (subjectID, branchID int64, date string, err error) {
	subjectID, parseErr := strconv.ParseInt(c.Param("id"), 10, 64)
	if parseErr != nil || subjectID <= 0 {
		return 0, 0, "", entity.ErrInvalidQueryParam
	}

	branchID, parseErr = strconv.ParseInt(c.Query("branch_id"), 10, 64)
	if parseErr != nil || branchID <= 0 {
		return 0, 0, "", entity.ErrInvalidQueryParam
	}

	date = c.Query("date")
	if date == "" {
		return 0, 0, "", entity.ErrInvalidQueryParam
	}
	return subjectID, branchID, date, nil
}
