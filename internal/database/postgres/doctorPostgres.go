package repository

import (
	"context"
	"database/sql"

	"github.com/careplus/clinic-backend/internal/entity"
)

type doctorRepository struct {
	db *sql.DB
}

func NewDoctorRepository(db *sql.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) GetByID(ctx context.Context, id int64) (*entity.Doctor, error) {
	query := `
		SELECT id, name_en, name_ar, session_fees, photo_url, is_active
		FROM doctor
		WHERE id = $1 AND is_active = TRUE
	`

	var doctor entity.Doctor
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doctor.ID,
		&doctor.NameEn,
		&doctor.NameAr,
		&doctor.SessionFees,
		&doctor.PhotoURL,
		&doctor.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrDoctorNotFound
	}
	if err != nil {
		return nil, dbError("failed to get doctor", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) GetBranchAssignment(ctx context.Context, doctorID, branchID int64) (*entity.DoctorBranch, error) {
	query := `
		SELECT id, doctor_id, branch_id, day_bitmap, is_active
		FROM doctor_branch
		WHERE doctor_id = $1 AND branch_id = $2 AND is_active = TRUE
	`

	var assignment entity.DoctorBranch
	err := r.db.QueryRowContext(ctx, query, doctorID, branchID).Scan(
		&assignment.ID,
		&assignment.DoctorID,
		&assignment.BranchID,
		&assignment.DayBitmap,
		&assignment.IsActive,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrDoctorNotAssigned
	}
	if err != nil {
		return nil, dbError("failed to get doctor branch assignment", err)
	}
	return &assignment, nil
}

func (r *doctorRepository) ListTimeSlots(ctx context.Context, doctorID int64) ([]*entity.TimeSlot, error) {
	query := `
		SELECT id, doctor_id, start_time, end_time, is_active
		FROM doctor_time_slot
		WHERE doctor_id = $1 AND is_active = TRUE
		ORDER BY start_time ASC
	`

	rows, err := r.db.QueryContext(ctx, query, doctorID)
	if err != nil {
		return nil, dbError("failed to query doctor time slots", err)
	}
	defer rows.Close()

	return collectTimeSlots(rows)
}

func (r *doctorRepository) GetTimeSlot(ctx context.Context, slotID int64) (*entity.TimeSlot, error) {
	query := `
		SELECT id, doctor_id, start_time, end_time, is_active
		FROM doctor_time_slot
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
		return nil, dbError("failed to get doctor time slot", err)
	}
	return &slot, nil
}

func collectTimeSlots(rows *sql.Rows) ([]*entity.TimeSlot, error) {
	var slots []*entity.TimeSlot
	for rows.Next() {
		var slot entity.TimeSlot
		err := rows.Scan(
			&slot.ID,
			&slot.OwnerID,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsActive,
		)
		if err != nil {
			return nil, dbError("failed to scan time slot", err)
		}
		slots = append(slots, &slot)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating time slots", err)
	}
	return slots, nil
}
