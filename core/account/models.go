package account

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/madamaths/madamaths/core"
)

// Role is one of a closed set of account roles.
type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleStudent}

// StaffRoles may author content and grade.
var StaffRoles = []Role{RoleAdmin, RoleTeacher}

// ParseRole converts a stored or submitted role name into a Role.
func ParseRole(s string) (Role, bool) {
	for _, role := range AllRoles {
		if string(role) == s {
			return role, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type Account struct {
	ID                 int64       `json:"id" db:"id"`
	Username           null.String `json:"username" db:"username"`
	StudentCode        null.String `json:"student_code" db:"student_code"`
	FullName           string      `json:"full_name" db:"full_name"`
	Role               Role        `json:"role" db:"role"`
	ClassID            null.Int64  `json:"class_id" db:"class_id"`
	ClassName          null.String `json:"class_name" db:"class_name"`
	MustChangePassword bool        `json:"must_change_password" db:"must_change_password"`
	IsActive           bool        `json:"is_active" db:"is_active"`
	PasswordHash       []byte      `json:"-" db:"password"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"` // UTC
}

func (a *Account) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Account) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// Identifier is the login handle of the account: its username, else its student code.
func (a *Account) Identifier() string {
	if a.Username.Valid {
		return a.Username.String
	}
	return a.StudentCode.String
}

func (a *Account) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a *Account) IsTeacher() bool { return a.Role == RoleTeacher }
func (a *Account) IsStudent() bool { return a.Role == RoleStudent }
func (a *Account) IsStaff() bool   { return a.Role.In(StaffRoles...) }

// Profile returns the public view of the account.
func (a *Account) Profile() Profile {
	return Profile{
		ID:                 a.ID,
		Username:           a.Username,
		StudentCode:        a.StudentCode,
		FullName:           a.FullName,
		Role:               a.Role,
		ClassID:            a.ClassID,
		MustChangePassword: a.MustChangePassword,
	}
}

// Profile is what an account is allowed to know about itself after login.
type Profile struct {
	ID                 int64       `json:"id"`
	Username           null.String `json:"username"`
	StudentCode        null.String `json:"student_code"`
	FullName           string      `json:"full_name"`
	Role               Role        `json:"role"`
	ClassID            null.Int64  `json:"class_id"`
	MustChangePassword bool        `json:"must_change_password"`
}

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	Username    string `json:"username" validate:"omitempty,min=3,max=64"`
	StudentCode string `json:"student_code" validate:"omitempty,max=64"`
	FullName    string `json:"full_name" validate:"required,notblank,max=255"`
	Role        Role   `json:"role" validate:"required,role"`
	ClassID     int64  `json:"class_id" validate:"omitempty,gt=0"`
	Password    string `json:"password"`
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.StudentCode = core.CleanString(na.StudentCode)
	na.FullName = core.CleanString(na.FullName)
	return validate.Struct(na)
}

// ChangePassword is a request to replace the caller's own password.
type ChangePassword struct {
	NewPassword string `json:"newPassword" validate:"required"`
}

// SetActive toggles whether an account may use the system.
type SetActive struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func (sa SetActive) Validate(validate *validator.Validate) error { return validate.Struct(sa) }
