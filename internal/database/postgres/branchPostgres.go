package repository

import (
	"context"
	"database/sql"

	"github.com/careplus/clinic-backend/internal/entity"
)

type branchRepository struct {
	db *sql.DB
}

func NewBranchRepository(db *sql.DB) BranchRepository {
	return &branchRepository{db: db}
}

func (r *branchRepository) GetByID(ctx context.Context, id int64) (*entity.Branch, error) {
	query := `SELECT id, name_en, name_ar, city FROM branch WHERE id = $1`

	var branch entity.Branch
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&branch.ID,
		&branch.NameEn,
		&branch.NameAr,
		&branch.City,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrBranchNotFound
	}
	if err != nil {
		return nil, dbError("failed to get branch", err)
	}
	return &branch, nil
}

func (r *branchRepository) GetAll(ctx context.Context) ([]*entity.Branch, error) {
	query := `SELECT id, name_en, name_ar, city FROM branch ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, dbError("failed to query branches", err)
	}
	defer rows.Close()

	var branches []*entity.Branch
	for rows.Next() {
		var branch entity.Branch
		if err := rows.Scan(&branch.ID, &branch.NameEn, &branch.NameAr, &branch.City); err != nil {
			return nil, dbError("failed to scan branch", err)
		}
		branches = append(branches, &branch)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("error iterating branches", err)
	}
	return branches, nil
}
