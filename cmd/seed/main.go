// Command seed creates the default admin and user accounts when they do not
// exist yet.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"go-todo-list/internal/auth"
	"go-todo-list/internal/config"
	"go-todo-list/internal/database"
	"go-todo-list/internal/logger"
	"go-todo-list/internal/model"
	"go-todo-list/internal/repository"
	"go-todo-list/internal/service"
)

type account struct {
	email    string
	username string
	password string
	role     model.Role
}

func main() {
	var (
		adminPassword = pflag.String("admin-password", "AdminPass123", "password for admin@example.com")
		userPassword  = pflag.String("user-password", "UserPass123", "password for user@example.com")
		skipMigrate   = pflag.Bool("skip-migrate", false, "do not apply migrations before seeding")
		timeout       = pflag.Duration("timeout", 30*time.Second, "overall deadline")
	)
	pflag.Parse()

	slog.SetDefault(logger.New("pretty", "info", os.Stdout))

	if err := run(*adminPassword, *userPassword, *skipMigrate, *timeout); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(adminPassword string, userPassword string, skipMigrate bool, timeout time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logger.New(cfg.LogFormat, cfg.LogLevel, os.Stdout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer db.Close()

	if !skipMigrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL})
	if err != nil {
		return err
	}
	svc := service.NewAuthService(repository.NewUserRepository(db.SQL), auth.NewPasswordHasher(cfg.BcryptCost), issuer)

	accounts := []account{
		{email: "admin@example.com", username: "admin", password: adminPassword, role: model.RoleAdmin},
		{email: "user@example.com", username: "user", password: userPassword, role: model.RoleUser},
	}
	for _, a := range accounts {
		created, err := svc.EnsureUser(ctx, a.email, a.username, a.password, a.role)
		if err != nil {
			return fmt.Errorf("seed %s: %w", a.username, err)
		}
		if created {
			slog.Info("account created", "username", a.username, "role", a.role)
		} else {
			slog.Info("account already exists", "username", a.username)
		}
	}

	return nil
}
