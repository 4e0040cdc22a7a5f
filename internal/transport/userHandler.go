package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/internal/service"
)

type UserHandler struct {
	userService    service.UserService
	bookingService service.BookingService
}

func NewUserHandler(userService service.UserService, bookingService service.BookingService) *UserHandler {
	return &UserHandler{userService: userService, bookingService: bookingService}
}

type registerUserRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=255"`
	Email    string `json:"email" binding:"required,email"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.ErrInvalidRequestBody)
		return
	}

	user := &entity.User{FullName: req.FullName, Email: req.Email}
	if err := h.userService.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

// GetUserBookings returns one user's profile together with both booking
// histories. Admin only.
func (h *UserHandler) GetUserBookings(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, entity.ErrInvalidQueryParam)
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	doctorBookings, err := h.bookingService.UserBookings(ctx, entity.BookingKindDoctor, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	serviceBookings, err := h.bookingService.UserBookings(ctx, entity.BookingKindService, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if doctorBookings == nil {
		doctorBookings = []*entity.Booking{}
	}
	if serviceBookings == nil {
		serviceBookings = []*entity.Booking{}
	}

	respondData(c, http.StatusOK, gin.H{
		"user":             user,
		"doctor_bookings":  doctorBookings,
		"service_bookings": serviceBookings,
	})
}
