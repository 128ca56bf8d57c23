// cmd/seeduser/main.go: creates or updates the initial admin user.
// Uso: SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"os"

	"floreria/internal/admin"
	"floreria/internal/config"
	"floreria/internal/dto"
	"floreria/internal/infra"
	"floreria/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	username := env("SEED_USERNAME", "admin")
	email := env("SEED_EMAIL", "admin@floreria.local")
	fullName := env("SEED_FULL_NAME", "Administrador")
	password := os.Getenv("SEED_PASSWORD")
	if msg := admin.PasswordStrength(password); msg != "" {
		log.Fatal().Str("SEED_PASSWORD", msg).Msg("contraseña inválida")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	user := model.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         dto.RoleAdmin,
		IsActive:     true,
	}
	err = db.WithContext(context.Background()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "full_name", "password_hash", "role", "is_active"}),
	}).Create(&user).Error
	if err != nil {
		log.Fatal().Err(err).Msg("upsert")
	}
	fmt.Printf("Usuario '%s' (%s) creado/actualizado como admin\n", username, email)
}
