package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"streamhub-backend-go/internal/db"
	"streamhub-backend-go/internal/models"
)

const bcryptCost = 12

// authService implements AuthService with bcrypt password hashing and
// JWT token pairs.
type authService struct {
	userRepo db.UserRepository
	subRepo  db.SubscriptionRepository
	videos   db.VideoRepository
	series   db.SeriesRepository
	tokens   *TokenManager
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(
	userRepo db.UserRepository,
	subRepo db.SubscriptionRepository,
	videos db.VideoRepository,
	series db.SeriesRepository,
	tokens *TokenManager,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		subRepo:  subRepo,
		videos:   videos,
		series:   series,
		tokens:   tokens,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *TokenPair, error) {
	user, err := s.createUser(ctx, req, models.RoleUser)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user registered", zap.String("userId", user.ID), zap.String("email", user.Email))
	return user, pair, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest, requiredRole string) (*models.User, *TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown email", ErrInvalidCredentials)
		}
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
	}
	if requiredRole != "" && user.Role != requiredRole {
		return nil, nil, fmt.Errorf("%w: role %q required", ErrForbidden, requiredRole)
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("user logged in", zap.String("userId", user.ID), zap.String("role", user.Role))
	return user, pair, nil
}

// Refresh validates the refresh token and issues a fresh pair. The user is
// reloaded so a role change or deletion takes effect on the next rotation.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to reload user for refresh: %w", err)
	}
	return s.tokens.IssuePair(user)
}

func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *authService) CreateAdmin(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	user, err := s.createUser(ctx, req, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin account created", zap.String("userId", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, page db.Page) ([]*models.User, int, error) {
	users, err := s.userRepo.ListByRole(ctx, "")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	total := len(users)
	if page.Offset >= total {
		return nil, total, nil
	}
	users = users[page.Offset:]
	if page.Limit > 0 && page.Limit < len(users) {
		users = users[:page.Limit]
	}
	return users, total, nil
}

func (s *authService) Stats(ctx context.Context) (*AdminStats, error) {
	users, err := s.userRepo.ListByRole(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	admins := 0
	for _, u := range users {
		if u.Role == models.RoleAdmin {
			admins++
		}
	}

	videoCount, err := s.videos.Count(ctx, db.VideoFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	seriesCount, err := s.series.Count(ctx, db.SeriesFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count series: %w", err)
	}
	activeSubs, err := s.subRepo.CountByStatus(ctx, []models.SubscriptionStatus{
		models.SubscriptionStatusActive,
		models.SubscriptionStatusTrialing,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	return &AdminStats{
		TotalUsers:          len(users),
		TotalAdmins:         admins,
		TotalVideos:         videoCount,
		TotalSeries:         seriesCount,
		ActiveSubscriptions: activeSubs,
	}, nil
}

func (s *authService) createUser(ctx context.Context, req models.RegisterRequest, role string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %q already registered", ErrConflict, email)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
