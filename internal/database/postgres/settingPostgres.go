package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/careplus/clinic-backend/internal/entity"
)

type settingRepository struct {
	db *sql.DB
}

func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

// GetVATPercentage reads the current VAT rate from the setting table. The
// value is captured onto each booking at creation time; later changes to
// the setting never touch existing rows.
func (r *settingRepository) GetVATPercentage(ctx context.Context) (float64, error) {
	query := `SELECT value FROM setting WHERE name = 'vat_percentage'`

	var raw string
	err := r.db.QueryRowContext(ctx, query).Scan(&raw)
	if err == sql.ErrNoRows {
		return 0, entity.ErrInternalServer
	}
	if err != nil {
		return 0, dbError("failed to get vat_percentage setting", err)
	}

	vat, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid vat_percentage setting %q: %v", raw, err)
	}
	return vat, nil
}
