package repositories

import (
	"context"

	"stagepay/internal/domain/escrow"
	apperrors "stagepay/internal/errors"
	"stagepay/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	return translate("create user", r.db.WithContext(ctx).Create(u).Error, nil)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, translate("find user", err, apperrors.ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate("find user", err, apperrors.ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepository) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", escrow.RoleAdmin).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	return ids, translate("list admins", err, nil)
}
