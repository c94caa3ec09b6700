package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/docuchat/auth-service/internal/domain"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound is returned by lookups when no record matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateIdentity is returned by Create when the email or username
	// unique index rejects the row. The service never learns which of the
	// two collided.
	ErrDuplicateIdentity = errors.New("email or username already in use")
)

type UserRepository interface {
	Create(user *domain.User) error
	FindByUsername(username string) (*domain.User, error)
	FindByEmailOrUsername(email, username string) (*domain.User, error)
	UpdatePassword(userID, newHash string) error
}

type GormUserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &GormUserRepository{db: db} }

func (r *GormUserRepository) Create(user *domain.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateIdentity
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *GormUserRepository) FindByUsername(username string) (*domain.User, error) {
	var u domain.User
	err := r.db.Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &u, nil
}

func (r *GormUserRepository) FindByEmailOrUsername(email, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.Where("email = ? OR username = ?", email, username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email or username: %w", err)
	}
	return &u, nil
}

func (r *GormUserRepository) UpdatePassword(userID, newHash string) error {
	res := r.db.Model(&domain.User{}).Where("id = ?", userID).
		Updates(map[string]any{"password_hash": newHash, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
