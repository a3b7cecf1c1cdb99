package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"campusboard/internal/auth"
	"campusboard/internal/config"
	"campusboard/internal/domain"
	"campusboard/internal/email"
	"campusboard/internal/httpapi"
	"campusboard/internal/service"
	"campusboard/internal/store/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	var (
		authSvc    *service.AuthService
		resetSvc   *service.PasswordResetService
		usersSvc   *service.UsersService
		contentSvc *service.ContentService
		dbPing     func(context.Context) error
	)

	tokens := auth.NewTokenCodec([]byte(cfg.TokenSecret), cfg.TokenTTL)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(context.Background(), cfg.DBDSN, cfg.DBMaxConns)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		posts := postgres.NewContentStore(pgPool)

		usersSvc = &service.UsersService{Store: users}

		if err := bootstrapAdminUser(context.Background(), logger, usersSvc, cfg); err != nil {
			logger.Error("bootstrap admin failed", "err", err)
			os.Exit(1)
		}

		authSvc = &service.AuthService{
			Users:  users,
			Tokens: tokens,
		}
		resetSvc = &service.PasswordResetService{
			Users:    users,
			Tokens:   tokens,
			TokenTTL: cfg.ResetTokenTTL,
		}
		if cfg.SMTP.Host != "" {
			resetSvc.Notifier = &email.Sender{Settings: email.Settings{
				Host:      cfg.SMTP.Host,
				Port:      cfg.SMTP.Port,
				Username:  cfg.SMTP.Username,
				Password:  cfg.SMTP.Password,
				TLSMode:   cfg.SMTP.TLSMode,
				FromName:  cfg.SMTP.FromName,
				FromEmail: cfg.SMTP.FromEmail,
				Timeout:   cfg.SMTP.Timeout,
			}}
		} else {
			logger.Warn("smtp not configured, password reset emails disabled")
			resetSvc = nil
		}
		contentSvc = &service.ContentService{Store: posts}
		dbPing = pgPool.Ping
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:    logger,
		IsProd:    cfg.IsProd(),
		DBPing:    dbPing,
		Auth:      authSvc,
		Reset:     resetSvc,
		Users:     usersSvc,
		Content:   contentSvc,
		PublicURL: cfg.PublicURL,

		RateLimitWindow: cfg.RateLimitWindow,
		RateLimitMax:    cfg.RateLimitMax,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func bootstrapAdminUser(ctx context.Context, logger *slog.Logger, users *service.UsersService, cfg config.Config) error {
	if cfg.AdminBootstrapPassword == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.AdminBootstrapPassword) < 8 {
		return errors.New("APP_ADMIN_BOOTSTRAP_PASSWORD: must be at least 8 characters")
	}

	_, err := users.Create(ctx, service.CreateUserParams{
		Email:           cfg.AdminBootstrapEmail,
		Name:            cfg.AdminBootstrapName,
		Password:        cfg.AdminBootstrapPassword,
		PasswordConfirm: cfg.AdminBootstrapPassword,
		Role:            domain.RoleAdmin,
		Course:          "mca",
		Semester:        "1",
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			logger.Info("admin bootstrap: user already exists", "email", cfg.AdminBootstrapEmail)
			return nil
		}
		return fmt.Errorf("admin bootstrap: create user: %w", err)
	}

	logger.Info("admin bootstrap: created admin user", "email", cfg.AdminBootstrapEmail)
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
