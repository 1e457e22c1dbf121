package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"college-erp/internal/metrics"

	"github.com/uptrace/bun"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")
)

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id int) error

	GetRoleByName(ctx context.Context, name string) (*Role, error)
	GetAllRoles(ctx context.Context) ([]Role, error)
	SeedRoles(ctx context.Context, roles []Role) (created int, err error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{db: db, metrics: m}
}

func (r *repository) Create(ctx context.Context, u *User) (*User, error) {
	start := time.Now()
	_, err := r.db.NewInsert().Model(u).Returning("*").Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "insert", "user_profiles", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*User, error) {
	start := time.Now()
	u := new(User)
	err := r.db.NewSelect().Model(u).Relation("Role").Where("u.id = ?", id).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "user_profiles", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	start := time.Now()
	u := new(User)
	err := r.db.NewSelect().Model(u).Relation("Role").Where("username = ?", username).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "user_profiles", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *repository) GetAll(ctx context.Context) ([]User, error) {
	start := time.Now()
	var list []User
	err := r.db.NewSelect().Model(&list).Relation("Role").Order("u.id ASC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "user_profiles", time.Since(start), err)
	return list, err
}

func (r *repository) Update(ctx context.Context, u *User) error {
	start := time.Now()
	u.UpdatedAt = time.Now().UTC()
	result, err := r.db.NewUpdate().Model(u).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "update", "user_profiles", time.Since(start), err)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	start := time.Now()
	result, err := r.db.NewDelete().Model(&User{ID: id}).WherePK().Exec(ctx)
	r.metrics.Database.RecordQuery(ctx, "delete", "user_profiles", time.Since(start), err)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	start := time.Now()
	role := new(Role)
	err := r.db.NewSelect().Model(role).Where("role_name = ?", name).Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "user_roles", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return role, nil
}

func (r *repository) GetAllRoles(ctx context.Context) ([]Role, error) {
	start := time.Now()
	var roles []Role
	err := r.db.NewSelect().Model(&roles).Order("access_level DESC").Scan(ctx)
	r.metrics.Database.RecordQuery(ctx, "select", "user_roles", time.Since(start), err)
	return roles, err
}

// SeedRoles inserts any missing roles by name. Safe to run on every start.
func (r *repository) SeedRoles(ctx context.Context, roles []Role) (int, error) {
	created := 0
	for i := range roles {
		start := time.Now()
		result, err := r.db.NewInsert().
			Model(&roles[i]).
			On("CONFLICT (role_name) DO NOTHING").
			Exec(ctx)
		r.metrics.Database.RecordQuery(ctx, "insert", "user_roles", time.Since(start), err)
		if err != nil {
			return created, err
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			created++
		}
	}
	return created, nil
}
