package model

// Role is the type of a role.
type Role string

const (
	// RoleHost is the HOST role, given to the first user that signs up.
	RoleHost Role = "HOST"
	// RoleLibrarian is the LIBRARIAN role.
	RoleLibrarian Role = "LIBRARIAN"
	// RoleMember is the MEMBER role, a patron.
	RoleMember Role = "MEMBER"
)

func (e Role) String() string {
	switch e {
	case RoleHost:
		return "HOST"
	case RoleLibrarian:
		return "LIBRARIAN"
	case RoleMember:
		return "MEMBER"
	}
	return "MEMBER"
}

func (e Role) IsValid() bool {
	return e == RoleHost || e == RoleLibrarian || e == RoleMember
}

// Permission names a capability checked before staff actions.
type Permission string

const (
	// PermissionManageLoans allows checkout, renewal, return and catalog edits.
	PermissionManageLoans Permission = "manage_loans"
)

// RolePermissions lists what each role is granted.
var RolePermissions = map[Role][]Permission{
	RoleHost:      {PermissionManageLoans},
	RoleLibrarian: {PermissionManageLoans},
	RoleMember:    {},
}

type RowStatus string

const (
	Normal   RowStatus = "NORMAL"
	Archived RowStatus = "ARCHIVED"
)

type User struct {
	ID int32 `json:"id"`

	RowStatus RowStatus `json:"row_status"`
	CreatedTs int64     `json:"created_ts"`
	UpdatedTs int64     `json:"updated_ts"`

	Username     string `json:"username"`
	Role         Role   `json:"role"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	PasswordHash string `json:"password_hash,omitempty"`
	LastLoginTs  int64  `json:"last_login_ts"`
}

type FindUser struct {
	ID        *int32     `json:"id"`
	RowStatus *RowStatus `json:"row_status"`
	Username  *string    `json:"username"`
	Role      *Role      `json:"role"`
	Email     *string    `json:"email"`

	// The maximum number of users to return.
	Limit *int
}

type UserSignupRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Nickname string `json:"nickname" validate:"max=64"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type UserSigninRequest struct {
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required"`
	NeverExpire bool   `json:"never_expire"`
}

type UserRoleRequest struct {
	Role Role `json:"role" validate:"required,oneof=LIBRARIAN MEMBER"`
}

type UpdateUser struct {
	ID int32

	RowStatus    *RowStatus
	Role         *Role
	Email        *string
	Nickname     *string
	PasswordHash *string
}
