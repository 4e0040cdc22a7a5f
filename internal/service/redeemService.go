package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/careplus/clinic-backend/config"
	repository "github.com/careplus/clinic-backend/internal/database/postgres"
	"github.com/careplus/clinic-backend/internal/entity"
	"github.com/careplus/clinic-backend/pkg/queue"
)

type redeemService struct {
	redeemRepo      repository.RedeemRepository
	serviceRepo     repository.ServiceRepository
	serviceBookings repository.BookingRepository
	loyalty         config.LoyaltyConfig
	queue           TaskPublisher
}

func NewRedeemService(
	redeemRepo repository.RedeemRepository,
	serviceRepo repository.ServiceRepository,
	serviceBookings repository.BookingRepository,
	loyalty config.LoyaltyConfig,
	taskQueue TaskPublisher,
) RedeemService {
	return &redeemService{
		redeemRepo:      redeemRepo,
		serviceRepo:     serviceRepo,
		serviceBookings: serviceBookings,
		loyalty:         loyalty,
		queue:           taskQueue,
	}
}

func (s *redeemService) QPoints(ctx context.Context, userID int64) (int64, error) {
	return s.redeemRepo.QPoints(ctx, userID, s.loyalty.SpendPerPoint, s.loyalty.PointsPerRedemption)
}

// Redeem spends one redemption's worth of qpoints against a service
// booking the user owns. The balance check and the ledger insert happen
// under the user-row lock inside the repository, so concurrent redemptions
// cannot both pass the check.
func (s *redeemService) Redeem(ctx context.Context, userID int64, req *RedeemRequest) (*entity.Redemption, error) {
	svc, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.CanRedeem {
		return nil, entity.ErrServiceNotRedeemable
	}

	booking, err := s.serviceBookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, entity.ErrBookingNotFound
	}
	if booking.SubjectID != req.ServiceID {
		return nil, entity.ErrInvalidRequestBody
	}

	redemption, err := s.redeemRepo.Redeem(ctx, userID, req.BookingID, req.ServiceID,
		s.loyalty.SpendPerPoint, s.loyalty.PointsPerRedemption)
	if err != nil {
		return nil, err
	}

	logrus.Infof("Redemption recorded: id=%d user=%d booking=%d service=%d",
		redemption.ID, userID, req.BookingID, req.ServiceID)

	if s.queue != nil {
		task := &queue.Task{
			ID:   uuid.NewString(),
			Type: queue.TaskTypeRedeemRecorded,
			Data: map[string]interface{}{
				"redemption_id": redemption.ID,
				"user_id":       userID,
				"booking_id":    req.BookingID,
				"service_id":    req.ServiceID,
			},
			MaxRetries: 3,
		}
		if err := s.queue.Publish(ctx, task); err != nil {
			logrus.Warnf("Failed to publish redemption task %d: %v", redemption.ID, err)
		}
	}

	return redemption, nil
}

func (s *redeemService) History(ctx context.Context, userID int64) ([]*entity.Redemption, error) {
	return s.redeemRepo.ListByUser(ctx, userID)
}

func (s *redeemService) Users(ctx context.Context) ([]*entity.LoyaltyUserSummary, error) {
	return s.redeemRepo.ListUsers(ctx, s.loyalty.SpendPerPoint, s.loyalty.PointsPerRedemption)
}
