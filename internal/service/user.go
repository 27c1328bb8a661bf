package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/repository"
)

var ErrEmptyUsername = errors.New("username is required")

type UserService interface {
	// GetOrCreate maps a Telegram account to a terrain owner.
	GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error)
	// Register creates an owner without a Telegram account (HTTP API clients).
	Register(ctx context.Context, username string) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
}

type userService struct {
	repo   repository.UserRepository
	logger *zap.Logger
}

func NewUserService(repo repository.UserRepository, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		repo:   repo,
		logger: logger,
	}
}

func (s *userService) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	user, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err == nil {
		if user.Username != username {
			user.Username = username
			if updateErr := s.repo.Update(ctx, user); updateErr != nil {
				s.logger.Warn("failed to update username",
					zap.Error(updateErr),
					zap.Int64("telegram_id", telegramID),
				)
			}
		}
		return user, nil
	}

	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	newUser := &domain.User{
		TelegramID: telegramID,
		Username:   username,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, newUser); err != nil {
		// lost a race with a concurrent first message from the same account
		if errors.Is(err, domain.ErrDuplicateUser) {
			return s.repo.GetByTelegramID(ctx, telegramID)
		}
		return nil, err
	}

	s.logger.Info("new user created",
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
	)

	return newUser, nil
}

func (s *userService) Register(ctx context.Context, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	user := &domain.User{Username: username, CreatedAt: time.Now()}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", username))
	return user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}
