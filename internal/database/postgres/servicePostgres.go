package repository

import (
	"context"
	"database/sql"

	"github.com/careplus/clinic-backend/internal/entity"
)

type serviceRepository struct {
	db *sql.DB
}

func NewServiceRepository(db *sql.DB) ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) GetByID(ctx context.Context, id int64) (*entity.Service, error) {
	query := `
		SELECT id, name_en, name_ar, category_id, actual_price, discounted_price, can_redeem, is_active
		FROM service
		WHERE id = $1 AND is_active = TRUE
	`

	var service entity.Service
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&service.ID,
		&service.NameEn,
		&service.NameAr,
		&service.CategoryID,
		&service.ActualPrice,
		&service.DiscountedPrice,
		&service.CanRedeem,
		&service.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrServiceNotFound
	}
	if err != nil {
		return nil, dbError("failed to get service", err)
	}
	return &service, nil
}

func (r *serviceRepository) GetBranchLink(ctx context.Context, serviceID, branchID int64) (*entity.ServiceBranch, error) {
	query := `
		SELECT id, service_id, branch_id, maximum_booking_per_slot, is_active
		FROM service_branch
		WHERE service_id = $1 AND branch_id = $2 AND is_active = TRUE
	`

	var link entity.ServiceBranch
	err := r.db.QueryRowContext(ctx, query, serviceID, branchID).Scan(
		&link.ID,
		&link.ServiceID,
		&link.BranchID,
		&link.MaximumBookingPerSlot,
		&link.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrServiceNotOffered
	}
	if err != nil {
		return nil, dbError("failed to get service branch link", err)
	}
	return &link, nil
}

func (r *serviceRepository) ListTimeSlots(ctx context.Context, serviceID int64) ([]*entity.TimeSlot, error) {
	query := `
		SELECT id, service_id, start_time, end_time, is_active
		FROM service_time_slot
		WHERE service_id = $1 AND is_active = TRUE
		ORDER BY start_time ASC
	`

	rows, err := r.db.QueryContext(ctx, query, serviceID)
	if err != nil {
		return nil, dbError("failed to query service time slots", err)
	}
	defer rows.Close()

	return collectTimeSlots(rows)
}

func (r *serviceRepository) GetTimeSlot(ctx context.Context, slotID int64) (*entity.TimeSlot, error) {
	query := `
		SELECT id, service_id, start_time, end_time, is_active
		FROM service_time_slot
		WHERE id = $1 AND is_active = TRUE
	`

	var slot entity.TimeSlot
	err := r.db.QueryRowContext(ctx, query, slotID).Scan(
		&slot.ID,
		&slot.OwnerID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrTimeSlotNotFound
	}
	if err != nil {
		return nil, dbError("failed to get service time slot", err)
	}
	return &slot, nil
}
