package repository

import (
	"context"
	"database/sql"

	"github.com/careplus/clinic-backend/internal/entity"
)

type redeemRepository struct {
	db *sql.DB
}

func NewRedeemRepository(db *sql.DB) RedeemRepository {
	return &redeemRepository{db: db}
}

// querier is satisfied by both *sql.DB and *sql.Tx so the entitlement math
// can run inside the redemption transaction.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const completedSpendQuery = `
	SELECT
		COALESCE((
			SELECT SUM(d.session_fees * (1 + b.vat_percentage / 100))
			FROM booking_doctor b
			JOIN doctor d ON d.id = b.doctor_id
			WHERE b.user_id = $1 AND b.status = 'COMPLETED'
		), 0)
		+
		COALESCE((
			SELECT SUM(s.discounted_price * (1 + b.vat_percentage / 100))
			FROM booking_service b
			JOIN service s ON s.id = b.service_id
			WHERE b.user_id = $1 AND b.status = 'COMPLETED'
		), 0)
`

func completedSpend(ctx context.Context, q querier, userID int64) (float64, error) {
	var spend float64
	if err := q.QueryRowContext(ctx, completedSpendQuery, userID).Scan(&spend); err != nil {
		return 0, dbError("failed to compute completed spend", err)
	}
	return spend, nil
}

func redemptionCount(ctx context.Context, q querier, userID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM redemption WHERE user_id = $1`
	if err := q.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, dbError("failed to count redemptions", err)
	}
	return count, nil
}

// availablePoints is the derived balance: points earned from completed
// spend minus points consumed by past redemptions, clamped at zero.
func availablePoints(spend float64, redemptions int64, spendPerPoint float64, pointsPerRedemption int64) int64 {
	earned := int64(spend / spendPerPoint)
	available := earned - redemptions*pointsPerRedemption
	if available < 0 {
		return 0
	}
	return available
}

func (r *redeemRepository) QPoints(ctx context.Context, userID int64, spendPerPoint float64, pointsPerRedemption int64) (int64, error) {
	spend, err := completedSpend(ctx, r.db, userID)
	if err != nil {
		return 0, err
	}
	redemptions, err := redemptionCount(ctx, r.db, userID)
	if err != nil {
		return 0, err
	}
	return availablePoints(spend, redemptions, spendPerPoint, pointsPerRedemption), nil
}

// Redeem appends one ledger entry after re-deriving the balance under a
// lock on the user row. Two concurrent redemptions for the same user
// serialize on that lock, so the second one sees the first one's ledger
// entry and fails the balance check instead of double spending.
func (r *redeemRepository) Redeem(ctx context.Context, userID, bookingID, serviceID int64, spendPerPoint float64, pointsPerRedemption int64) (*entity.Redemption, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, dbError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	var lockedID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM app_user WHERE id = $1 FOR UPDATE`, userID).Scan(&lockedID)
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, dbError("failed to lock user", err)
	}

	spend, err := completedSpend(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	redemptions, err := redemptionCount(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if availablePoints(spend, redemptions, spendPerPoint, pointsPerRedemption) < pointsPerRedemption {
		return nil, entity.ErrInsufficientQPoints
	}

	redemption := &entity.Redemption{
		UserID:    userID,
		BookingID: bookingID,
		ServiceID: serviceID,
	}
	query := `
		INSERT INTO redemption (user_id, booking_id, service_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = tx.QueryRowContext(ctx, query, userID, bookingID, serviceID).Scan(&redemption.ID, &redemption.CreatedAt)
	if err != nil {
		return nil, dbError("failed to create redemption", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, dbError("failed to commit transaction", err)
	}
	return redemption, nil
}

func (r *redeemRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.Redemption, error) {
	query := `
		SELECT id, user_id, booking_id, service_id, created_at
		FROM redemption
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, dbError("failed to query redemptions", err)
	}
	defer rows.Close()

	var redemptions []*entity.Redemption
	for rows.Next() {
		var redemption entity.Redemption
		err := rows.Scan(
			&redemption.ID,
			&redemption.UserID,
			&redemption.BookingID,
			&redemption.ServiceID,
			&redemption.CreatedAt,
		)
		if err != nil {
			return nil, dbError("failed to scan redemption", err)
		}
		redemptions = append(redemptions, &redemption)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating redemptions", err)
	}
	return redemptions, nil
}

// ListUsers returns the loyalty standing of every user: how many completed
// visits they have and how many points they currently hold.
func (r *redeemRepository) ListUsers(ctx context.Context, spendPerPoint float64, pointsPerRedemption int64) ([]*entity.LoyaltyUserSummary, error) {
	query := `
		SELECT
			u.id,
			u.full_name,
			COALESCE((SELECT COUNT(*) FROM booking_doctor b WHERE b.user_id = u.id AND b.status = 'COMPLETED'), 0)
			+ COALESCE((SELECT COUNT(*) FROM booking_service b WHERE b.user_id = u.id AND b.status = 'COMPLETED'), 0)
				AS visit_count,
			COALESCE((
				SELECT SUM(d.session_fees * (1 + b.vat_percentage / 100))
				FROM booking_doctor b
				JOIN doctor d ON d.id = b.doctor_id
				WHERE b.user_id = u.id AND b.status = 'COMPLETED'
			), 0)
			+ COALESCE((
				SELECT SUM(s.discounted_price * (1 + b.vat_percentage / 100))
				FROM booking_service b
				JOIN service s ON s.id = b.service_id
				WHERE b.user_id = u.id AND b.status = 'COMPLETED'
			), 0) AS completed_spend,
			COALESCE((SELECT COUNT(*) FROM redemption rd WHERE rd.user_id = u.id), 0) AS redemptions
		FROM app_user u
		ORDER BY u.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError("failed to query loyalty users", err)
	}
	defer rows.Close()

	var summaries []*entity.LoyaltyUserSummary
	for rows.Next() {
		var summary entity.LoyaltyUserSummary
		var spend float64
		var redemptions int64
		err := rows.Scan(&summary.UserID, &summary.Name, &summary.VisitCount, &spend, &redemptions)
		if err != nil {
			return nil, dbError("failed to scan loyalty user", err)
		}
		summary.StampsCollected = availablePoints(spend, redemptions, spendPerPoint, pointsPerRedemption)
		summaries = append(summaries, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating loyalty users", err)
	}
	return summaries, nil
}
