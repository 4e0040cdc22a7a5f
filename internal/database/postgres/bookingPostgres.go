package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/careplus/clinic-backend/internal/entity"
)

const pqUniqueViolation = "23505"

// bookingTables configures one bookingRepository for its booking table.
// Exclusive tables resolve concurrent inserts through the partial unique
// index on (subject, branch, date, slot) WHERE status = 'SCHEDULED';
// capacity tables serialize on the service_branch row instead.
type bookingTables struct {
	kind         entity.BookingKind
	table        string
	subjectCol   string
	subjectTable string
	priceCol     string
	exclusive    bool
}

var doctorBookingTables = bookingTables{
	kind:         entity.BookingKindDoctor,
	table:        "booking_doctor",
	subjectCol:   "doctor_id",
	subjectTable: "doctor",
	priceCol:     "session_fees",
	exclusive:    true,
}

var serviceBookingTables = bookingTables{
	kind:         entity.BookingKindService,
	table:        "booking_service",
	subjectCol:   "service_id",
	subjectTable: "service",
	priceCol:     "discounted_price",
	exclusive:    false,
}

type bookingRepository struct {
	db *sql.DB
	t  bookingTables
}

func NewDoctorBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db, t: doctorBookingTables}
}

func NewServiceBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db, t: serviceBookingTables}
}

// Create inserts a new SCHEDULED booking.
//
// Doctor bookings rely on the partial unique index: two clients racing for
// the same slot both reach INSERT, one commits, the other gets a unique
// violation which surfaces as ErrSlotAlreadyBooked. Service bookings lock
// the service_branch row first so the count-then-insert pair is serialized
// against other writers of the same key.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if !r.t.exclusive {
		var maxPerSlot int
		query := `SELECT maximum_booking_per_slot FROM service_branch
			WHERE service_id = $1 AND branch_id = $2 AND is_active = TRUE
			FOR UPDATE`
		err = tx.QueryRowContext(ctx, query, booking.SubjectID, booking.BranchID).Scan(&maxPerSlot)
		if err == sql.ErrNoRows {
			return entity.ErrServiceNotOffered
		}
		if err != nil {
			return dbError("failed to lock service branch", err)
		}

		var booked int
		query = `SELECT COUNT(*) FROM booking_service
			WHERE service_id = $1 AND branch_id = $2 AND date = $3 AND time_slot_id = $4
			AND status = 'SCHEDULED'`
		err = tx.QueryRowContext(ctx, query,
			booking.SubjectID, booking.BranchID, booking.Date, booking.TimeSlotID,
		).Scan(&booked)
		if err != nil {
			return dbError("failed to count scheduled bookings", err)
		}
		if booked >= maxPerSlot {
			return entity.ErrServiceSlotFull
		}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, time_slot_id, branch_id, user_id, date, vat_percentage, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.t.table, r.t.subjectCol)

	booking.Status = entity.BookingStatusScheduled
	err = tx.QueryRowContext(ctx, query,
		booking.SubjectID,
		booking.TimeSlotID,
		booking.BranchID,
		booking.UserID,
		booking.Date,
		booking.VATPercentage,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return entity.ErrSlotAlreadyBooked
		}
		return dbError("failed to create booking", err)
	}

	if err := tx.Commit(); err != nil {
		return dbError("failed to commit transaction", err)
	}

	booking.Kind = r.t.kind
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, time_slot_id, branch_id, user_id, date, vat_percentage, status, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.t.subjectCol, r.t.table)

	booking, err := r.scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, dbError("failed to get booking", err)
	}
	return booking, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Booking, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, time_slot_id, branch_id, user_id, date, vat_percentage, status, created_at, updated_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, r.t.subjectCol, r.t.table)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbError("failed to query bookings by user", err)
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id, userID int64, to entity.BookingStatus) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var ownerID int64
	var status entity.BookingStatus
	query := fmt.Sprintf(`SELECT user_id, status FROM %s WHERE id = $1 FOR UPDATE`, r.t.table)
	err = tx.QueryRowContext(ctx, query, id).Scan(&ownerID, &status)
	if err == sql.ErrNoRows {
		return entity.ErrBookingNotFound
	}
	if err != nil {
		return dbError("failed to lock booking", err)
	}

	// Someone else's booking is indistinguishable from a missing one.
	if userID > 0 && ownerID != userID {
		return entity.ErrBookingNotFound
	}
	if status.IsTerminal() {
		return entity.ErrInvalidBookingState
	}

	query = fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, r.t.table)
	if _, err := tx.ExecContext(ctx, query, to, id); err != nil {
		return dbError("failed to update booking status", err)
	}

	if err := tx.Commit(); err != nil {
		return dbError("failed to commit transaction", err)
	}
	return nil
}

// Reschedule marks the old row RESCHEDULED and inserts a fresh SCHEDULED
// row for the new slot and date. The new row keeps the vat_percentage the
// original booking was priced with. Both rows change inside one
// transaction, so the history either records the full move or none of it.
func (r *bookingRepository) Reschedule(ctx context.Context, id, userID, newSlotID int64, newDate string) (*entity.Booking, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	old := entity.Booking{ID: id}
	query := fmt.Sprintf(`
		SELECT %s, branch_id, user_id, vat_percentage, status
		FROM %s
		WHERE id = $1
		FOR UPDATE
	`, r.t.subjectCol, r.t.table)
	err = tx.QueryRowContext(ctx, query, id).Scan(
		&old.SubjectID, &old.BranchID, &old.UserID, &old.VATPercentage, &old.Status,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, dbError("failed to lock booking", err)
	}

	if userID > 0 && old.UserID != userID {
		return nil, entity.ErrBookingNotFound
	}
	if old.Status.IsTerminal() {
		return nil, entity.ErrInvalidBookingState
	}

	query = fmt.Sprintf(`UPDATE %s SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, r.t.table)
	if _, err := tx.ExecContext(ctx, query, entity.BookingStatusRescheduled, id); err != nil {
		return nil, dbError("failed to close rescheduled booking", err)
	}

	if !r.t.exclusive {
		var maxPerSlot int
		query = `SELECT maximum_booking_per_slot FROM service_branch
			WHERE service_id = $1 AND branch_id = $2 AND is_active = TRUE
			FOR UPDATE`
		err = tx.QueryRowContext(ctx, query, old.SubjectID, old.BranchID).Scan(&maxPerSlot)
		if err == sql.ErrNoRows {
			return nil, entity.ErrServiceNotOffered
		}
		if err != nil {
			return nil, dbError("failed to lock service branch", err)
		}

		var booked int
		query = `SELECT COUNT(*) FROM booking_service
			WHERE service_id = $1 AND branch_id = $2 AND date = $3 AND time_slot_id = $4
			AND status = 'SCHEDULED'`
		err = tx.QueryRowContext(ctx, query, old.SubjectID, old.BranchID, newDate, newSlotID).Scan(&booked)
		if err != nil {
			return nil, dbError("failed to count scheduled bookings", err)
		}
		if booked >= maxPerSlot {
			return nil, entity.ErrServiceSlotFull
		}
	}

	next := &entity.Booking{
		Kind:          r.t.kind,
		SubjectID:     old.SubjectID,
		TimeSlotID:    newSlotID,
		BranchID:      old.BranchID,
		UserID:        old.UserID,
		Date:          newDate,
		VATPercentage: old.VATPercentage,
		Status:        entity.BookingStatusScheduled,
	}

	query = fmt.Sprintf(`
		INSERT INTO %s (%s, time_slot_id, branch_id, user_id, date, vat_percentage, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.t.table, r.t.subjectCol)
	err = tx.QueryRowContext(ctx, query,
		next.SubjectID, next.TimeSlotID, next.BranchID, next.UserID,
		next.Date, next.VATPercentage, next.Status,
	).Scan(&next.ID, &next.CreatedAt, &next.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return nil, entity.ErrSlotAlreadyBooked
		}
		return nil, dbError("failed to create rescheduled booking", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, dbError("failed to commit transaction", err)
	}
	return next, nil
}

func (r *bookingRepository) ScheduledCounts(ctx context.Context, subjectID, branchID int64, date string) (map[int64]int, error) {
	query := fmt.Sprintf(`
		SELECT time_slot_id, COUNT(*)
		FROM %s
		WHERE %s = $1 AND branch_id = $2 AND date = $3 AND status = 'SCHEDULED'
		GROUP BY time_slot_id
	`, r.t.table, r.t.subjectCol)

	rows, err := r.db.QueryContext(ctx, query, subjectID, branchID, date)
	if err != nil {
		return nil, dbError("failed to query scheduled counts", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var slotID int64
		var count int
		if err := rows.Scan(&slotID, &count); err != nil {
			return nil, dbError("failed to scan scheduled count", err)
		}
		counts[slotID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating scheduled counts", err)
	}
	return counts, nil
}

func (r *bookingRepository) ListScheduledByDate(ctx context.Context, date string, limit int) ([]*entity.Booking, error) {
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT id, %s, time_slot_id, branch_id, user_id, date, vat_percentage, status, created_at, updated_at
		FROM %s
		WHERE date = $1 AND status = 'SCHEDULED'
		ORDER BY id ASC
		LIMIT $2
	`, r.t.subjectCol, r.t.table)

	rows, err := r.db.QueryContext(ctx, query, date, limit)
	if err != nil {
		return nil, dbError("failed to query scheduled bookings by date", err)
	}
	defer rows.Close()

	return r.collectBookings(rows)
}

func (r *bookingRepository) Metrics(ctx context.Context) (*entity.BookingMetrics, error) {
	metrics := &entity.BookingMetrics{
		BookingsByStatus: make(map[entity.BookingStatus]int64),
	}

	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM %s GROUP BY status`, r.t.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError("failed to query booking status counts", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status entity.BookingStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, dbError("failed to scan status count", err)
		}
		metrics.BookingsByStatus[status] = count
		metrics.TotalBookings += count
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating status counts", err)
	}

	query = fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN b.status = 'COMPLETED' THEN s.%s * (1 + b.vat_percentage / 100) ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN b.created_at >= CURRENT_DATE THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN b.created_at >= CURRENT_DATE - INTERVAL '7 days' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN b.created_at >= CURRENT_DATE - INTERVAL '30 days' THEN 1 ELSE 0 END), 0)
		FROM %s b
		JOIN %s s ON s.id = b.%s
	`, r.t.priceCol, r.t.table, r.t.subjectTable, r.t.subjectCol)

	err = r.db.QueryRowContext(ctx, query).Scan(
		&metrics.CompletedSpend,
		&metrics.DailyBookings,
		&metrics.WeeklyBookings,
		&metrics.MonthlyBookings,
	)
	if err != nil {
		return nil, dbError("failed to query booking metrics", err)
	}

	return metrics, nil
}

func (r *bookingRepository) scanBooking(row *sql.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.SubjectID,
		&booking.TimeSlotID,
		&booking.BranchID,
		&booking.UserID,
		&booking.Date,
		&booking.VATPercentage,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Kind = r.t.kind
	return &booking, nil
}

func (r *bookingRepository) collectBookings(rows *sql.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.SubjectID,
			&booking.TimeSlotID,
			&booking.BranchID,
			&booking.UserID,
			&booking.Date,
			&booking.VATPercentage,
			&booking.Status,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, dbError("failed to scan booking", err)
		}
		booking.Kind = r.t.kind
		bookings = append(bookings, &booking)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating bookings", err)
	}
	return bookings, nil
}
