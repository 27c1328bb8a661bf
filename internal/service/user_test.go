package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/Rinde17/investerra-app/internal/domain"
	"github.com/Rinde17/investerra-app/internal/repository"
)

func TestUserService_GetOrCreate(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		telegramID int64
		username   string
		setup      func(*repository.MockUserRepository)
		wantNew    bool
		wantErr    bool
	}{
		{
			name:       "new user created",
			telegramID: 123,
			username:   "testuser",
			setup:      func(m *repository.MockUserRepository) {},
			wantNew:    true,
			wantErr:    false,
		},
		{
			name:       "existing user returned",
			telegramID: 123,
			username:   "testuser",
			setup: func(m *repository.MockUserRepository) {
				m.GetOrCreate(context.Background(), 123, "testuser")
			},
			wantNew: false,
			wantErr: false,
		},
		{
			name:       "username updated",
			telegramID: 123,
			username:   "newname",
			setup: func(m *repository.MockUserRepository) {
				m.GetOrCreate(context.Background(), 123, "oldname")
			},
			wantNew: false,
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMockUserRepository()
			tt.setup(repo)

			svc := NewUserService(repo, logger)
			user, err := svc.GetOrCreate(context.Background(), tt.telegramID, tt.username)

			if (err != nil) != tt.wantErr {
				t.Errorf("GetOrCreate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if user == nil {
					t.Error("GetOrCreate() returned nil user")
					return
				}
				if user.TelegramID != tt.telegramID {
					t.Errorf("user.TelegramID = %v, want %v", user.TelegramID, tt.telegramID)
				}
				if user.Username != tt.username {
					t.Errorf("user.Username = %v, want %v", user.Username, tt.username)
				}
			}
		})
	}
}

func TestUserService_GetOrCreate_RepoError(t *testing.T) {
	logger := zap.NewNop()

	repo := &errorMockUserRepo{err: errors.New("database error")}

	svc := NewUserService(repo, logger)
	_, err := svc.GetOrCreate(context.Background(), 123, "test")

	if err == nil {
		t.Error("GetOrCreate() expected error, got nil")
	}
}

func TestUserService_Register(t *testing.T) {
	repo := repository.NewMockUserRepository()
	svc := NewUserService(repo, zap.NewNop())

	user, err := svc.Register(context.Background(), "  api-client ")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("Register() did not assign an id")
	}
	if user.Username != "api-client" {
		t.Errorf("user.Username = %q, want %q", user.Username, "api-client")
	}
	if user.HasTelegram() {
		t.Error("registered user should not have a telegram account")
	}

	got, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Username != "api-client" {
		t.Errorf("Get().Username = %q", got.Username)
	}

	if _, err := svc.Register(context.Background(), "   "); !errors.Is(err, ErrEmptyUsername) {
		t.Errorf("Register(blank) error = %v, want ErrEmptyUsername", err)
	}
}

func TestUserService_Get_NotFound(t *testing.T) {
	svc := NewUserService(repository.NewMockUserRepository(), zap.NewNop())

	_, err := svc.Get(context.Background(), 404)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("Get() error = %v, want ErrUserNotFound", err)
	}
}

type errorMockUserRepo struct {
	err error
}

func (m *errorMockUserRepo) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	return nil, m.err
}

func (m *errorMockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return nil, m.err
}

func (m *errorMockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return nil, m.err
}

func (m *errorMockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.err
}

func (m *errorMockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.err
}
