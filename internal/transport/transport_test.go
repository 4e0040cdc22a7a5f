package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careplus/clinic-backend/config"
	"github.com/careplus/clinic-backend/internal/auth"
	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret"

// stubBookingService lets each test script the outcome it needs.
type stubBookingService struct {
	bookDoctorFn func(ctx context.Context, userID int64, req *service.BookDoctorRequest) (*entity.Booking, error)
	cancelFn     func(ctx context.Context, kind entity.BookingKind, bookingID, userID int64) error
	completeFn   func(ctx context.Context, kind entity.BookingKind, bookingID int64) error
	rescheduleFn func(ctx context.Context, kind entity.BookingKind, bookingID, userID int64, req *service.RescheduleRequest) (*entity.Booking, error)
}

func (s *stubBookingService) BookDoctor(ctx context.Context, userID int64, req *service.BookDoctorRequest) (*entity.Booking, error) {
	if s.bookDoctorFn != nil {
		return s.bookDoctorFn(ctx, userID, req)
	}
	return &entity.Booking{ID: 1, UserID: userID, Status: entity.BookingStatusScheduled}, nil
}

func (s *stubBookingService) BookService(_ context.Context, userID int64, _ *service.BookServiceRequest) (*entity.Booking, error) {
	return &entity.Booking{ID: 2, UserID: userID, Status: entity.BookingStatusScheduled}, nil
}

func (s *stubBookingService) Cancel(ctx context.Context, kind entity.BookingKind, bookingID, userID int64) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, kind, bookingID, userID)
	}
	return nil
}

func (s *stubBookingService) Complete(ctx context.Context, kind entity.BookingKind, bookingID int64) error {
	if s.completeFn != nil {
		return s.completeFn(ctx, kind, bookingID)
	}
	return nil
}

func (s *stubBookingService) Reschedule(ctx context.Context, kind entity.BookingKind, bookingID, userID int64, req *service.RescheduleRequest) (*entity.Booking, error) {
	if s.rescheduleFn != nil {
		return s.rescheduleFn(ctx, kind, bookingID, userID, req)
	}
	return &entity.Booking{ID: 3, Status: entity.BookingStatusScheduled}, nil
}

func (s *stubBookingService) UserBookings(_ context.Context, _ entity.BookingKind, _ int64) ([]*entity.Booking, error) {
	return nil, nil
}

func (s *stubBookingService) Metrics(_ context.Context, _ entity.BookingKind) (*entity.BookingMetrics, error) {
	return &entity.BookingMetrics{BookingsByStatus: map[entity.BookingStatus]int64{}}, nil
}

type stubAvailabilityService struct{}

func (s *stubAvailabilityService) Branches(_ context.Context) ([]*entity.Branch, error) {
	return []*entity.Branch{{ID: 1, NameEn: "Olaya"}}, nil
}

func (s *stubAvailabilityService) DoctorAvailability(_ context.Context, _, _ int64, _ string) ([]*entity.SlotAvailability, error) {
	return []*entity.SlotAvailability{}, nil
}

func (s *stubAvailabilityService) ServiceAvailability(_ context.Context, _, _ int64, _ string) ([]*entity.SlotAvailability, error) {
	return []*entity.SlotAvailability{}, nil
}

type stubRedeemService struct {
	qpoints int64
}

func (s *stubRedeemService) QPoints(_ context.Context, _ int64) (int64, error) {
	return s.qpoints, nil
}

func (s *stubRedeemService) Redeem(_ context.Context, userID int64, req *service.RedeemRequest) (*entity.Redemption, error) {
	return &entity.Redemption{ID: 1, UserID: userID, BookingID: req.BookingID, ServiceID: req.ServiceID}, nil
}

func (s *stubRedeemService) History(_ context.Context, _ int64) ([]*entity.Redemption, error) {
	return nil, nil
}

func (s *stubRedeemService) Users(_ context.Context) ([]*entity.LoyaltyUserSummary, error) {
	return nil, nil
}

type stubUserService struct{}

func (s *stubUserService) Create(_ context.Context, user *entity.User) error {
	user.ID = 1
	return nil
}

func (s *stubUserService) GetByID(_ context.Context, id int64) (*entity.User, error) {
	return &entity.User{ID: id, FullName: "Test User"}, nil
}

func (s *stubUserService) GetAll(_ context.Context) ([]*entity.User, error) {
	return nil, nil
}

func newTestRouter(booking *stubBookingService, redeem *stubRedeemService) *gin.Engine {
	cfg := &config.Config{
		Server: config.ServerConfig{AppVersion: "test", Timeout: 30 * time.Second},
		Auth: config.AuthConfig{
			JWTSecret:  testSecret,
			RateLimit:  1000,
			RateBurst:  1000,
			AdminScope: "admin",
		},
	}
	if booking == nil {
		booking = &stubBookingService{}
	}
	if redeem == nil {
		redeem = &stubRedeemService{}
	}
	return InitRoutes(cfg,
		NewBookingHandler(booking),
		NewAvailabilityHandler(&stubAvailabilityService{}),
		NewRedeemHandler(redeem),
		NewUserHandler(&stubUserService{}, booking),
	)
}

func doRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func clientToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := auth.MakeToken(userID, "", testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func adminToken(t *testing.T) string {
	t.Helper()
	token, err := auth.MakeToken(1, "admin", testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(nil, nil), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(nil, nil)

	t.Run("missing token", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/booking/doctor", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, float64(entity.ErrNoTokenFound.Code), decodeBody(t, w)["code"])
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doRequest(router, http.MethodGet, "/api/v1/booking/doctor", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, float64(entity.ErrUnauthorized.Code), decodeBody(t, w)["code"])
	})
}

func TestBookDoctorEndpoint(t *testing.T) {
	t.Run("success wraps booking in data envelope", func(t *testing.T) {
		router := newTestRouter(nil, nil)
		w := doRequest(router, http.MethodPost, "/api/v1/booking/doctor", clientToken(t, 7),
			gin.H{"doctor_id": 1, "branch_id": 1, "time_slot_id": 10, "date": "2026-09-10"})

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		data, ok := body["data"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(7), data["user_id"])
	})

	t.Run("missing fields map to invalid request body", func(t *testing.T) {
		router := newTestRouter(nil, nil)
		w := doRequest(router, http.MethodPost, "/api/v1/booking/doctor", clientToken(t, 7),
			gin.H{"doctor_id": 1})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, float64(entity.ErrInvalidRequestBody.Code), decodeBody(t, w)["code"])
	})

	t.Run("domain error keeps its code and status", func(t *testing.T) {
		booking := &stubBookingService{
			bookDoctorFn: func(_ context.Context, _ int64, _ *service.BookDoctorRequest) (*entity.Booking, error) {
				return nil, entity.ErrSlotAlreadyBooked
			},
		}
		router := newTestRouter(booking, nil)
		w := doRequest(router, http.MethodPost, "/api/v1/booking/doctor", clientToken(t, 7),
			gin.H{"doctor_id": 1, "branch_id": 1, "time_slot_id": 10, "date": "2026-09-10"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, float64(entity.ErrSlotAlreadyBooked.Code), body["code"])
		assert.Equal(t, entity.ErrSlotAlreadyBooked.Message, body["message"])
	})
}

func TestAdminRoutes(t *testing.T) {
	t.Run("client token is rejected", func(t *testing.T) {
		router := newTestRouter(nil, nil)
		w := doRequest(router, http.MethodGet, "/api/v1/metric", clientToken(t, 7), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, float64(entity.ErrAdminOnly.Code), decodeBody(t, w)["code"])
	})

	t.Run("admin token passes", func(t *testing.T) {
		router := newTestRouter(nil, nil)
		w := doRequest(router, http.MethodGet, "/api/v1/metric", adminToken(t), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("complete is admin only", func(t *testing.T) {
		router := newTestRouter(nil, nil)
		w := doRequest(router, http.MethodPost, "/api/v1/booking/doctor/5/complete", clientToken(t, 7), nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doRequest(router, http.MethodPost, "/api/v1/booking/doctor/5/complete", adminToken(t), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminOwnershipBypass(t *testing.T) {
	t.Run("admin cancels a foreign booking", func(t *testing.T) {
		gotUserID := int64(-1)
		booking := &stubBookingService{
			cancelFn: func(_ context.Context, _ entity.BookingKind, _ int64, userID int64) error {
				gotUserID = userID
				return nil
			},
		}
		router := newTestRouter(booking, nil)
		w := doRequest(router, http.MethodPost, "/api/v1/booking/doctor/5/cancel", adminToken(t), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(0), gotUserID)
	})

	t.Run("client cancel keeps the ownership filter", func(t *testing.T) {
		gotUserID := int64(-1)
		booking := &stubBookingService{
			cancelFn: func(_ context.Context, _ entity.BookingKind, _ int64, userID int64) error {
				gotUserID = userID
				return entity.ErrBookingNotFound
			},
		}
		router := newTestRouter(booking, nil)
		w := doRequest(router, http.MethodPost, "/api/v1/booking/doctor/5/cancel", clientToken(t, 7), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, int64(7), gotUserID)
	})

	t.Run("admin reschedules a foreign booking", func(t *testing.T) {
		gotUserID := int64(-1)
		booking := &stubBookingService{
			rescheduleFn: func(_ context.Context, _ entity.BookingKind, _ int64, userID int64, _ *service.RescheduleRequest) (*entity.Booking, error) {
				gotUserID = userID
				return &entity.Booking{ID: 9, Status: entity.BookingStatusScheduled}, nil
			},
		}
		router := newTestRouter(booking, nil)
		w := doRequest(router, http.MethodPost, "/api/v1/booking/service/5/reschedule", adminToken(t),
			gin.H{"time_slot_id": 30, "date": "2026-09-10"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, int64(0), gotUserID)
	})
}

func TestQPointsEndpoint(t *testing.T) {
	router := newTestRouter(nil, &stubRedeemService{qpoints: 12})
	w := doRequest(router, http.MethodGet, "/api/v1/redeem/qpoints", clientToken(t, 7), nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(12), data["qpoints"])
}

func TestCancelEndpointValidatesID(t *testing.T) {
	router := newTestRouter(nil, nil)
	w := doRequest(router, http.MethodPost, "/api/v1/booking/doctor/abc/cancel", clientToken(t, 7), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, float64(entity.ErrInvalidQueryParam.Code), decodeBody(t, w)["code"])
}

func TestRegisterEndpointIsOpen(t *testing.T) {
	router := newTestRouter(nil, nil)
	w := doRequest(router, http.MethodPost, "/api/v1/users/register", "",
		gin.H{"full_name": "Sara", "email": "sara@example.com"})
	assert.Equal(t, http.StatusCreated, w.Code)
}
