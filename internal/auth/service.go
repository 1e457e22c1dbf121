package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"college-erp/internal/config"
	"college-erp/internal/users"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

type Service struct {
	repo       *Repository
	userRepo   users.Repository
	logger     *slog.Logger
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(repo *Repository, userRepo users.Repository, cfg config.AuthConfig, logger *slog.Logger) *Service {
	accessTTL := time.Duration(cfg.AccessTTLMinutes) * time.Minute
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Service{
		repo:       repo,
		userRepo:   userRepo,
		logger:     logger,
		jwtSecret:  cfg.JWTSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Login authenticates a staff user and issues an access/refresh token pair.
// Inactive accounts cannot log in regardless of password.
func (s *Service) Login(ctx context.Context, username, password string) (*users.User, string, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if user.Status != users.StatusActive {
		return nil, "", "", ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, err := GenerateAccessToken(s.jwtSecret, user.ID, user.Username, user.RoleName(), user.RoleAccessType(), s.accessTTL)
	if err != nil {
		return nil, "", "", err
	}

	refreshToken, err := GenerateRefreshToken()
	if err != nil {
		return nil, "", "", err
	}

	if err := s.repo.CreateRefreshToken(ctx, user.ID, refreshToken, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, "", "", err
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID, "role", user.RoleName())
	return user, accessToken, refreshToken, nil
}

// Refresh rotates a refresh token and issues a fresh access token.
func (s *Service) Refresh(ctx context.Context, token string) (string, string, error) {
	stored, err := s.repo.GetRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrInvalidRefresh
		}
		return "", "", err
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return "", "", err
	}
	if user.Status != users.StatusActive {
		return "", "", ErrUserInactive
	}

	accessToken, err := GenerateAccessToken(s.jwtSecret, user.ID, user.Username, user.RoleName(), user.RoleAccessType(), s.accessTTL)
	if err != nil {
		return "", "", err
	}

	newRefresh, err := GenerateRefreshToken()
	if err != nil {
		return "", "", err
	}

	if err := s.repo.DeleteRefreshToken(ctx, token); err != nil {
		return "", "", err
	}
	if err := s.repo.CreateRefreshToken(ctx, user.ID, newRefresh, time.Now().Add(s.refreshTTL)); err != nil {
		return "", "", err
	}

	return accessToken, newRefresh, nil
}

// Logout invalidates a refresh token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteRefreshToken(ctx, token)
}

// LogoutAll invalidates every refresh token for a user.
func (s *Service) LogoutAll(ctx context.Context, userID int) error {
	return s.repo.DeleteAllUserTokens(ctx, userID)
}
