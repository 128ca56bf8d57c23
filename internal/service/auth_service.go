package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"floreria/internal/admin"
	"floreria/internal/config"
	"floreria/internal/dto"
	"floreria/internal/middleware"
	"floreria/internal/model"
	"floreria/internal/repository"
	"floreria/internal/worker"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost = 12
	resetTTL   = time.Hour
)

const (
	msgBadCredentials  = "Usuario o contraseña incorrectos"
	msgInactiveUser    = "Usuario inactivo"
	msgBadRefresh      = "Refresh token inválido o expirado"
	msgUserGone        = "Usuario no encontrado o inactivo"
	msgUserNotFound    = "Usuario no encontrado"
	msgEmailTaken      = "Email ya registrado"
	msgUsernameTaken   = "Username ya registrado"
	msgBadReset        = "Token de reset inválido o expirado"
	MsgForgotPassword  = "Si el email existe, recibirás instrucciones para resetear tu contraseña"
	MsgPasswordChanged = "Contraseña actualizada correctamente"
	MsgLoggedOut       = "Sesión cerrada correctamente"
)

// EmailQueue is satisfied by *worker.Dispatcher.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, job worker.EmailJob) error
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *middleware.JWTClaims) error
	Me(ctx context.Context, userID uint) (*dto.UserResponse, error)
	// ForgotPassword never reveals whether the email exists.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
}

type authService struct {
	repo      repository.UserRepository
	cfg       *config.Config
	blacklist *TokenBlacklist
	mail      EmailQueue
	now       func() time.Time
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config, blacklist *TokenBlacklist, mail EmailQueue) AuthService {
	return &authService{repo: repo, cfg: cfg, blacklist: blacklist, mail: mail, now: time.Now}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.repo.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized(msgBadCredentials)
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, unauthorized(msgBadCredentials)
	}
	if !user.IsActive {
		return nil, business(msgInactiveUser)
	}
	return s.issue(user)
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if errs := admin.ValidateRegistration(req, req.Password); errs != nil {
		return nil, errs
	}

	usernameTaken, emailTaken, err := s.repo.Taken(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("auth: check taken: %w", err)
	}
	if emailTaken {
		return nil, business(msgEmailTaken)
	}
	if usernameTaken {
		return nil, business(msgUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: string(hash),
		Role:         dto.RoleUser,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth: create user: %w", err)
	}
	log.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("auth: user registered")
	return s.issue(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := middleware.ParseToken(refreshToken, s.cfg.JWTSecret)
	if err != nil || claims.TokenType != middleware.TokenRefresh {
		return nil, unauthorized(msgBadRefresh)
	}
	if revoked, _ := s.blacklist.IsRevoked(ctx, claims.ID); revoked {
		return nil, unauthorized(msgBadRefresh)
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, unauthorized(msgUserGone)
	}
	// a refresh token is single use
	if claims.ExpiresAt != nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			log.Warn().Err(err).Msg("auth: could not revoke used refresh token")
		}
	}
	return s.issue(user)
}

func (s *authService) Logout(ctx context.Context, claims *middleware.JWTClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("auth: revoke: %w", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID uint) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgUserNotFound)
		}
		return nil, err
	}
	resp := userToResponse(user)
	return &resp, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("auth: find email: %w", err)
	}
	if !user.IsActive {
		return nil
	}

	token, hash, err := newResetToken()
	if err != nil {
		return err
	}
	reset := &model.PasswordReset{
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(resetTTL),
	}
	if err := s.repo.CreateReset(ctx, reset); err != nil {
		return fmt.Errorf("auth: store reset: %w", err)
	}

	if s.mail == nil {
		log.Warn().Uint("user_id", user.ID).Msg("auth: no email queue, reset token not delivered")
		return nil
	}
	link := strings.TrimRight(s.cfg.FrontendURL, "/") + "/reset-password?token=" + token
	job := worker.EmailJob{
		To:      []string{user.Email},
		Subject: "Recuperación de contraseña",
		Body: fmt.Sprintf("Hola %s,\n\nPara crear una nueva contraseña abre este enlace:\n%s\n\n"+
			"El enlace vence en 1 hora. Si no lo solicitaste, ignora este mensaje.\n", user.FullName, link),
	}
	if err := s.mail.EnqueueEmail(ctx, job); err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("auth: enqueue reset email failed")
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	if errs := admin.ValidatePassword(req.NewPassword, req.NewPassword); errs != nil {
		return errs
	}
	reset, err := s.repo.FindReset(ctx, hashToken(req.Token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return business(msgBadReset)
		}
		return fmt.Errorf("auth: find reset: %w", err)
	}
	now := s.now()
	if reset.UsedAt != nil || now.After(reset.ExpiresAt) {
		return business(msgBadReset)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
	if err != nil {
		return err
	}
	if err := s.repo.ConsumeReset(ctx, reset.ID, reset.UserID, string(hash), now); err != nil {
		if errors.Is(err, repository.ErrResetUsed) {
			return business(msgBadReset)
		}
		return fmt.Errorf("auth: consume reset: %w", err)
	}
	log.Info().Uint("user_id", reset.UserID).Msg("auth: password reset")
	return nil
}

func (s *authService) issue(user *model.User) (*dto.TokenResponse, error) {
	access, err := s.generateToken(user, middleware.TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refresh, err := s.generateToken(user, middleware.TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         userToResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.User, typ string, duration time.Duration) (string, error) {
	now := s.now()
	claims := middleware.JWTClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// newResetToken returns a random token for the email and its SHA-256, which
// is the only form stored.
func newResetToken() (token, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("auth: reset token: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, hashToken(token), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
