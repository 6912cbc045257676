package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Treasure123-school/THS/core"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
)

var Roles = []Role{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// JoinRoles renders roles as "admin, teacher".
func JoinRoles(roles []Role) string {
	strs := make([]string, 0, len(roles))
	for _, r := range roles {
		strs = append(strs, string(r))
	}
	return strings.Join(strs, ", ")
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
	UpdatedAt    time.Time `json:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

// CheckPassword fails for accounts without a usable password.
func (u *User) CheckPassword(pwd string) error {
	if len(u.PasswordHash) == 0 {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Patch lists the fields of a User that an update may change. Nil fields are left untouched.
type Patch struct {
	Name         *string
	Email        *string
	Role         *Role
	PasswordHash []byte
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil && p.PasswordHash == nil
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"`
	Role     Role   `json:"role" validate:"required,role"`

	// RequirePassword is set for self sign-ups. Admin-created accounts may be created without one.
	RequirePassword bool `json:"-"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty fields are left unchanged.
type UpdateUser struct {
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            Role   `json:"role" validate:"omitempty,role"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required_with=Password,eqfield=Password"`

	// attributes of the updated user, for password similarity checks
	origName, origEmail string
}

func (uu *UpdateUser) Clean(origUsr User) {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Role = Role(core.CleanString(string(uu.Role), true /* lower */))
	uu.origName, uu.origEmail = origUsr.Name, origUsr.Email
}

// ChangesPrivilegedFields reports whether the update touches fields only admins may change.
func (uu *UpdateUser) ChangesPrivilegedFields(origUsr User) bool {
	return (uu.Email != "" && uu.Email != origUsr.Email) || (uu.Role != "" && uu.Role != origUsr.Role)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []Role    `query:"role"`
	CreatedFrom time.Time `query:"createdFrom"`
	CreatedTo   time.Time `query:"createdTo"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search, true /* lower */)
}

// Match applies an AND over the set filter fields.
// Search does a case-insensitive match on one of User.Name or User.Email.
func (qf *QueryFilter) Match(usr User) bool {
	if qf.Search != "" &&
		!strings.Contains(strings.ToLower(usr.Name), qf.Search) &&
		!strings.Contains(usr.Email, qf.Search) {
		return false
	}
	if len(qf.Roles) > 0 {
		var found bool
		for _, r := range qf.Roles {
			if usr.Role == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !qf.CreatedFrom.IsZero() && usr.CreatedAt.Before(qf.CreatedFrom) {
		return false
	}
	if !qf.CreatedTo.IsZero() && usr.CreatedAt.After(qf.CreatedTo) {
		return false
	}
	return true
}

// Stats summarizes the user base for the admin dashboard.
type Stats struct {
	TotalUsers    int    `json:"totalUsers"`
	TotalAdmins   int    `json:"totalAdmins"`
	TotalTeachers int    `json:"totalTeachers"`
	TotalStudents int    `json:"totalStudents"`
	TotalParents  int    `json:"totalParents"`
	RecentUsers   []User `json:"recentUsers"`
}
