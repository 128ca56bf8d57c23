package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"floreria/internal/dto"
	"floreria/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	// FindByLogin accepts a username or an email (case-insensitive).
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Taken(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	List(ctx context.Context, filter dto.UserFilter) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	SoftDelete(ctx context.Context, id uint) error

	CreateReset(ctx context.Context, r *model.PasswordReset) error
	FindReset(ctx context.Context, tokenHash string) (*model.PasswordReset, error)
	// ConsumeReset marks the reset used and stores the new hash in one tx.
	ConsumeReset(ctx context.Context, resetID, userID uint, passwordHash string, at time.Time) error
}

// ErrResetUsed is returned by ConsumeReset when the token was already spent.
var ErrResetUsed = errors.New("password reset already used")

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	return &u, err
}

func (r *userRepo) FindByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR LOWER(email) = LOWER(?)", login, login).
		First(&u).Error
	return &u, err
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	return &u, err
}

func (r *userRepo) Taken(ctx context.Context, username, email string) (bool, bool, error) {
	var byName, byEmail int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&byName).Error; err != nil {
		return false, false, err
	}
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("LOWER(email) = LOWER(?)", email).Count(&byEmail).Error; err != nil {
		return false, false, err
	}
	return byName > 0, byEmail > 0, nil
}

func (r *userRepo) List(ctx context.Context, filter dto.UserFilter) ([]model.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}
	var users []model.User
	err := q.Order("id ASC").Offset(filter.Skip).Limit(filter.Limit).Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) SoftDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *userRepo) CreateReset(ctx context.Context, pr *model.PasswordReset) error {
	return r.db.WithContext(ctx).Create(pr).Error
}

func (r *userRepo) FindReset(ctx context.Context, tokenHash string) (*model.PasswordReset, error) {
	var pr model.PasswordReset
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&pr).Error
	return &pr, err
}

func (r *userRepo) ConsumeReset(ctx context.Context, resetID, userID uint, passwordHash string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PasswordReset{}).
			Where("id = ? AND used_at IS NULL", resetID).
			Update("used_at", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResetUsed
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).Update("password_hash", passwordHash).Error
	})
}
