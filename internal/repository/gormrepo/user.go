package gormrepo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = newID(user.ID)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return errs.Wrap(r.db.WithContext(ctx).Create(user).Error, "failed to create user")
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get user")
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, notFound(err, "failed to get user by email")
	}
	return &user, nil
}

func (r *UserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", uid).First(&user).Error; err != nil {
		return nil, notFound(err, "failed to get user by firebase uid")
	}
	return &user, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return errs.Wrap(r.db.WithContext(ctx).Save(user).Error, "failed to update user")
}

// Delete is a soft delete through gorm.DeletedAt.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return errs.Wrap(res.Error, "failed to delete user")
	}
	if res.RowsAffected == 0 {
		return errs.Markf(models.ErrNotFound, "user %s not found", id)
	}
	return nil
}
