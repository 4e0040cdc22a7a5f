package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/internal/service"
	"github.com/careplus/clinic-backend/internal/transport/middleware"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) BookDoctor(c *gin.Context) {
	var req service.BookDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.ErrInvalidRequestBody)
		return
	}

	booking, err := h.bookingService.BookDoctor(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, booking)
}

func (h *BookingHandler) BookService(c *gin.Context) {
	var req service.BookServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.ErrInvalidRequestBody)
		return
	}

	booking, err := h.bookingService.BookService(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, booking)
}

func (h *BookingHandler) CancelDoctor(c *gin.Context)  { h.cancel(c, entity.BookingKindDoctor) }
func (h *BookingHandler) CancelService(c *gin.Context) { h.cancel(c, entity.BookingKindService) }

func (h *BookingHandler) cancel(c *gin.Context, kind entity.BookingKind) {
	bookingID, err := bookingIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.bookingService.Cancel(c.Request.Context(), kind, bookingID, ownerFilter(c)); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"status": entity.BookingStatusCanceled})
}

func (h *BookingHandler) CompleteDoctor(c *gin.Context)  { h.complete(c, entity.BookingKindDoctor) }
func (h *BookingHandler) CompleteService(c *gin.Context) { h.complete(c, entity.BookingKindService) }

func (h *BookingHandler) complete(c *gin.Context, kind entity.BookingKind) {
	bookingID, err := bookingIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.bookingService.Complete(c.Request.Context(), kind, bookingID); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"status": entity.BookingStatusCompleted})
}

func (h *BookingHandler) RescheduleDoctor(c *gin.Context) {
	h.reschedule(c, entity.BookingKindDoctor)
}

func (h *BookingHandler) RescheduleService(c *gin.Context) {
	h.reschedule(c, entity.BookingKindService)
}

func (h *BookingHandler) reschedule(c *gin.Context, kind entity.BookingKind) {
	bookingID, err := bookingIDParam(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req service.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.ErrInvalidRequestBody)
		return
	}

	booking, err := h.bookingService.Reschedule(c.Request.Context(), kind, bookingID, ownerFilter(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, booking)
}

func (h *BookingHandler) MyDoctorBookings(c *gin.Context) {
	h.ownBookings(c, entity.BookingKindDoctor)
}

func (h *BookingHandler) MyServiceBookings(c *gin.Context) {
	h.ownBookings(c, entity.BookingKindService)
}

func (h *BookingHandler) ownBookings(c *gin.Context, kind entity.BookingKind) {
	bookings, err := h.bookingService.UserBookings(c.Request.Context(), kind, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if bookings == nil {
		bookings = []*entity.Booking{}
	}
	respondData(c, http.StatusOK, bookings)
}

// Metrics returns the admin aggregate over both booking kinds.
func (h *BookingHandler) Metrics(c *gin.Context) {
	ctx := c.Request.Context()

	doctorMetrics, err := h.bookingService.Metrics(ctx, entity.BookingKindDoctor)
	if err != nil {
		respondError(c, err)
		return
	}
	serviceMetrics, err := h.bookingService.Metrics(ctx, entity.BookingKindService)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"doctor_bookings":  doctorMetrics,
		"service_bookings": serviceMetrics,
	})
}

// ownerFilter is the userID passed to booking mutations: the caller's own
// ID for clients, zero for admins so they may act on any booking.
func ownerFilter(c *gin.Context) int64 {
	if middleware.IsAdmin(c) {
		return 0
	}
	return middleware.UserID(c)
}

func bookingIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, entity.ErrInvalidQueryParam
	}
	return id, nil
}
