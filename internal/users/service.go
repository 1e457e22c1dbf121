package users

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUsernameExists = errors.New("username already exists")
)

type Service interface {
	Create(ctx context.Context, u *User, password string) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User, newPassword string) error
	Delete(ctx context.Context, id int) error
	GetAllRoles(ctx context.Context) ([]Role, error)
	SeedDefaultRoles(ctx context.Context) error
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func (s *service) Create(ctx context.Context, u *User, password string) (*User, error) {
	if existing, _ := s.repo.GetByUsername(ctx, u.Username); existing != nil {
		return nil, ErrUsernameExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hashed)
	if u.Status == "" {
		u.Status = StatusActive
	}

	return s.repo.Create(ctx, u)
}

func (s *service) Get(ctx context.Context, id int) (*User, error) {
	if id <= 0 {
		return nil, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetAll(ctx context.Context) ([]User, error) {
	return s.repo.GetAll(ctx)
}

func (s *service) Update(ctx context.Context, u *User, newPassword string) error {
	if u.ID <= 0 {
		return ErrInvalidInput
	}

	if newPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.PasswordHash = string(hashed)
	}

	return s.repo.Update(ctx, u)
}

func (s *service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) GetAllRoles(ctx context.Context) ([]Role, error) {
	return s.repo.GetAllRoles(ctx)
}

// SeedDefaultRoles provisions the standard role set on first start.
func (s *service) SeedDefaultRoles(ctx context.Context) error {
	roles := []Role{
		{Name: RoleAdministrator, Description: "Full access to every module", AccessType: AccessEdit, AccessLevel: 100},
		{Name: RoleManager, Description: "Students, courses and fees", AccessType: AccessEdit, AccessLevel: 80},
		{Name: RoleAdmissionOfficer, Description: "Student admissions and courses", AccessType: AccessEdit, AccessLevel: 60},
		{Name: RoleAccountant, Description: "Fee collection and invoices", AccessType: AccessEdit, AccessLevel: 60},
		{Name: RoleExamController, Description: "Exam results and promotion", AccessType: AccessEdit, AccessLevel: 60},
	}

	created, err := s.repo.SeedRoles(ctx, roles)
	if err != nil {
		return err
	}
	if created > 0 {
		s.logger.InfoContext(ctx, "seeded default roles", "created", created)
	}
	return nil
}
