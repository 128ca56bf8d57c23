package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"floreria/internal/admin"
	"floreria/internal/dto"
	"floreria/internal/model"
	"floreria/internal/repository"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Actor is the authenticated caller of an admin operation.
type Actor struct {
	ID       uint
	Username string
	Role     string
}

func (a Actor) IsAdmin() bool { return a.Role == dto.RoleAdmin }

// UserService administers accounts. The router restricts every method except
// UpdatePassword to admins; UpdatePassword checks the actor itself.
type UserService interface {
	List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error)
	Get(ctx context.Context, id uint) (*dto.UserResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	UpdateRole(ctx context.Context, actor Actor, id uint, role string) (*dto.UserResponse, error)
	UpdatePassword(ctx context.Context, actor Actor, id uint, newPassword string) error
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	resp := make([]dto.UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}
	return resp, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*dto.UserResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := userToResponse(u)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, id uint, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != u.Email {
			_, taken, err := s.repo.Taken(ctx, "", email)
			if err != nil {
				return nil, fmt.Errorf("users: check email: %w", err)
			}
			if taken {
				return nil, business(msgEmailTaken)
			}
			u.Email = email
		}
	}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("users: update: %w", err)
	}
	resp := userToResponse(u)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, actor Actor, id uint) error {
	if err := admin.CanDelete(actor.ID, id); err != nil {
		return business(err.Error())
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("users: delete: %w", err)
	}
	log.Info().Uint("user_id", id).Str("by", actor.Username).Msg("users: deactivated")
	return nil
}

func (s *userService) UpdateRole(ctx context.Context, actor Actor, id uint, role string) (*dto.UserResponse, error) {
	if err := admin.CanChangeRole(actor.ID, id); err != nil {
		return nil, business(err.Error())
	}
	if !admin.ValidRole(role) {
		return nil, business(admin.ErrBadRole.Error())
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("users: update role: %w", err)
	}
	log.Info().Uint("user_id", id).Str("role", role).Str("by", actor.Username).Msg("users: role changed")
	resp := userToResponse(u)
	return &resp, nil
}

// UpdatePassword lets admins reset anyone's password and users change their own.
func (s *userService) UpdatePassword(ctx context.Context, actor Actor, id uint, newPassword string) error {
	if !actor.IsAdmin() && actor.ID != id {
		return forbidden("No tienes permisos para realizar esta acción")
	}
	if msg := admin.PasswordStrength(newPassword); msg != "" {
		return fieldError("new_password", msg)
	}
	u, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, u); err != nil {
		return fmt.Errorf("users: update password: %w", err)
	}
	return nil
}

func (s *userService) find(ctx context.Context, id uint) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgUserNotFound)
		}
		return nil, fmt.Errorf("users: find: %w", err)
	}
	return u, nil
}
