package accounts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleSuperAdmin is the platform operator role
	RoleSuperAdmin UserRole = "superadmin"
	// RoleCompanyAdmin administers a company account
	RoleCompanyAdmin UserRole = "companyadmin"
	// RoleUser is a regular application user
	RoleUser UserRole = "user"
)

// DefaultGroupName is the group every new signup is assigned to.
const DefaultGroupName = "user"

// Gender choices as stored on the profile
const (
	GenderMale    = "M"
	GenderFemale  = "F"
	GenderOther   = "O"
	GenderUnknown = "X"
)

// DeviceType identifies the client platform a user registered from
type DeviceType = string

const (
	DeviceAndroid DeviceType = "android"
	DeviceIOS     DeviceType = "ios"
	DeviceWeb     DeviceType = "web"
)

// User is the principal model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone         string     `bun:"phone_number" json:"phone_number,omitempty"`
	ProfilePhoto  string     `bun:"profile_photo" json:"profile_photo,omitempty"`
	Gender        string     `bun:"gender" json:"gender,omitempty"`
	DateOfBirth   *time.Time `bun:"date_of_birth,nullzero" json:"date_of_birth,omitempty"`
	DeviceType    DeviceType `bun:"device_type" json:"device_type,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	IsActive      bool       `bun:"is_active" json:"is_active,omitempty"`
	IsVerified    bool       `bun:"is_verified" json:"is_verified,omitempty"`
	IsStaff       bool       `bun:"is_staff" json:"is_staff,omitempty"`
	IsSuperuser   bool       `bun:"is_superuser" json:"is_superuser,omitempty"`
	OTP           *int       `bun:"otp,nullzero" json:"-"`
	LastLogin     *time.Time `bun:"last_login,nullzero" json:"last_login,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsStaffAccount reports whether the user is a staff or superuser
// account. These accounts must not use the application login path.
func (u *User) IsStaffAccount() bool {
	return u.IsStaff || u.IsSuperuser
}

// AuthToken is the opaque bearer credential bound to a user. A user
// holds at most one active token; minting a new one replaces it.
// Tokens carry no expiry of their own: validity is derived from the
// owning user's last_login at lookup time.
type AuthToken struct {
	bun.BaseModel `bun:"table:auth_tokens,alias:tok"`
	Key           string     `bun:"key,pk" json:"key,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,unique,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Group is a named role group users are assigned to at signup
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:grp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// GroupMembership joins users to groups
type GroupMembership struct {
	bun.BaseModel `bun:"table:user_groups,alias:ugr"`
	UserID        uuid.UUID  `bun:"user_id,pk,type:uuid" json:"user_id,omitempty"`
	GroupID       uuid.UUID  `bun:"group_id,pk,type:uuid" json:"group_id,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
