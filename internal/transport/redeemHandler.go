package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/internal/service"
	"github.com/careplus/clinic-backend/internal/transport/middleware"
)

type RedeemHandler struct {
	redeemService service.RedeemService
}

func NewRedeemHandler(redeemService service.RedeemService) *RedeemHandler {
	return &RedeemHandler{redeemService: redeemService}
}

func (h *RedeemHandler) Redeem(c *gin.Context) {
	var req service.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, entity.ErrInvalidRequestBody)
		return
	}

	redemption, err := h.redeemService.Redeem(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, redemption)
}

func (h *RedeemHandler) QPoints(c *gin.Context) {
	points, err := h.redeemService.QPoints(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"qpoints": points})
}

func (h *RedeemHandler) History(c *gin.Context) {
	redemptions, err := h.redeemService.History(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if redemptions == nil {
		redemptions = []*entity.Redemption{}
	}
	respondData(c, http.StatusOK, redemptions)
}

// UserHistory returns one user's redemption ledger. Admin only.
func (h *RedeemHandler) UserHistory(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		respondError(c, entity.ErrInvalidQueryParam)
		return
	}

	redemptions, err := h.redeemService.History(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if redemptions == nil {
		redemptions = []*entity.Redemption{}
	}
	respondData(c, http.StatusOK, redemptions)
}

// Users returns every user's loyalty standing. Admin only.
func (h *RedeemHandler) Users(c *gin.Context) {
	users, err := h.redeemService.Users(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []*entity.LoyaltyUserSummary{}
	}
	respondData(c, http.StatusOK, users)
}
