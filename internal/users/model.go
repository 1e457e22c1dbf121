package users

import (
	"time"

	"github.com/uptrace/bun"
)

// Access types on a role.
const (
	AccessEdit = "Edit"
	AccessRead = "Read"
)

// User statuses.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Role names seeded at first start.
const (
	RoleAdministrator    = "Administrator"
	RoleManager          = "Manager"
	RoleAdmissionOfficer = "Admission Officer"
	RoleAccountant       = "Accountant"
	RoleExamController   = "Exam Controller"
)

type Role struct {
	bun.BaseModel `bun:"table:user_roles,alias:r"`

	ID          int    `bun:"role_id,pk,autoincrement" json:"id"`
	Name        string `bun:"role_name,unique,notnull" json:"name" validate:"required,max=100"`
	Description string `bun:"role_description" json:"description"`
	AccessType  string `bun:"access_type,notnull" json:"accessType" validate:"required,oneof=Edit Read"`
	AccessLevel int    `bun:"access_level,notnull" json:"accessLevel"`
}

type User struct {
	bun.BaseModel `bun:"table:user_profiles,alias:u"`

	ID        int   `bun:"id,pk,autoincrement" json:"id"`
	RoleID    int   `bun:"role_id,notnull" json:"roleId" validate:"required"`
	Role      *Role `bun:"rel:belongs-to,join:role_id=role_id" json:"role,omitempty"`

	FirstName string `bun:"first_name,notnull" json:"firstName" validate:"required"`
	LastName  string `bun:"last_name,notnull" json:"lastName" validate:"required"`
	Email     string `bun:"email,unique,notnull" json:"email" validate:"required,email"`
	Phone     string `bun:"phone" json:"phone"`
	Gender    string `bun:"gender" json:"gender"`

	Birthdate   *time.Time `bun:"birthdate" json:"birthdate,omitempty"`
	Street      string     `bun:"street" json:"street"`
	AreaVillage string     `bun:"area_village" json:"areaVillage"`
	CityTehsil  string     `bun:"city_tehsil" json:"cityTehsil"`
	State       string     `bun:"state" json:"state"`

	Username     string `bun:"username,unique,notnull" json:"username" validate:"required,max=64"`
	PasswordHash string `bun:"password_hash,notnull" json:"-"` // Never expose the hash in JSON
	Status       string `bun:"status,notnull,default:'Active'" json:"status"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// RoleName is nil-safe: users loaded without the relation report no role.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// RoleAccessType is nil-safe like RoleName.
func (u *User) RoleAccessType() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.AccessType
}
