package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"greatlibrary/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

// FindByCredentialName looks the account up by username or email, whichever
// the caller typed. Returns nil without error when no account matches.
func (r *UserRepository) FindByCredentialName(name string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ? OR email = ?", name, name).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by credential name failed: %w", err)
	}
	return &user, nil
}

// UsernameTaken reports whether a username is already registered.
func (r *UserRepository) UsernameTaken(username string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users by username failed: %w", err)
	}
	return count > 0, nil
}

// EmailTaken reports whether an email is already registered.
func (r *UserRepository) EmailTaken(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users by email failed: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

// TouchLastLogin stamps the account's last successful login time.
func (r *UserRepository) TouchLastLogin(id uint, at time.Time) error {
	if err := r.db.Model(&model.User{}).Where("id = ?", id).Update("last_login_at", at).Error; err != nil {
		return fmt.Errorf("update last login failed: %w", err)
	}
	return nil
}
