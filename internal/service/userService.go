package service

import (
	"context"

	repository "github.com/careplus/clinic-backend/internal/database/postgres"
	"github.com/careplus/clinic-backend/internal/entity"
)

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Create(ctx context.Context, user *entity.User) error {
	return s.userRepo.Create(ctx, user)
}

func (s *userService) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) GetAll(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.GetAll(ctx)
}
