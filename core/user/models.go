package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/theadruss/Clix-App/core"
)

// Roles
const (
	RoleStudent      = "STUDENT"
	RoleClubAdmin    = "CLUB_ADMIN"
	RoleCollegeAdmin = "COLLEGE_ADMIN"
)

var AllRoles = []string{RoleStudent, RoleClubAdmin, RoleCollegeAdmin}

type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Avatar        string    `json:"avatar,omitempty"`
	ClubID        string    `json:"clubId,omitempty"` // managed club, club admins only
	Bio           string    `json:"bio,omitempty"`
	JoinDate      string    `json:"joinDate,omitempty"`
	JoinedClubIDs []string  `json:"joinedClubIds"`
	Year          string    `json:"year,omitempty"`
	Branch        string    `json:"branch,omitempty"`
	IsActive      bool      `json:"isActive"`
	PasswordHash  []byte    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"` // UTC
	UpdatedAt     time.Time `json:"updatedAt"` // UTC
	LastLogin     time.Time `json:"lastLogin"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool      { return u.Role == RoleStudent }
func (u *User) IsClubAdmin() bool    { return u.Role == RoleClubAdmin }
func (u *User) IsCollegeAdmin() bool { return u.Role == RoleCollegeAdmin }

// ManagesClub reports whether u is the admin of the given club.
func (u *User) ManagesClub(clubID string) bool {
	return u.IsClubAdmin() && u.ClubID != "" && u.ClubID == clubID
}

func (u *User) HasJoined(clubID string) bool {
	return core.ContainsString(u.JoinedClubIDs, clubID)
}

// Person returns the log identity of u.
func (u User) Person() core.Person {
	return core.Person{ID: u.ID, Name: u.Name, Email: u.Email}
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,userrole"`
	ClubID          string `json:"clubId"`
	Avatar          string `json:"avatar" validate:"omitempty,url"`
	Bio             string `json:"bio"`
	Year            string `json:"year"`
	Branch          string `json:"branch"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckUniqueness(nu.Email)
}

// Signup is the self-service registration payload. Accounts created this way are students.
type Signup struct {
	Name            string `json:"name" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Year            string `json:"year"`
	Branch          string `json:"branch"`
}

func (s *Signup) Validate(validate *validator.Validate, svc *Service) error {
	s.Name = core.CleanString(s.Name)
	s.Email = core.CleanString(s.Email, true /* lower */)
	s.Year = core.CleanString(s.Year)
	s.Branch = core.CleanString(s.Branch)

	if err := validate.Struct(s); err != nil {
		return err
	}
	return svc.CheckUniqueness(s.Email)
}

func (s Signup) NewUser() NewUser {
	return NewUser{
		Name:            s.Name,
		Email:           s.Email,
		Password:        s.Password,
		PasswordConfirm: s.PasswordConfirm,
		Role:            RoleStudent,
		Year:            s.Year,
		Branch:          s.Branch,
	}
}

// UpdateProfile defines what a user may change on their own account. Empty fields are left unchanged.
type UpdateProfile struct {
	Name   string  `json:"name"`
	Avatar string  `json:"avatar" validate:"omitempty,url"`
	Bio    *string `json:"bio"`
	Year   string  `json:"year"`
	Branch string  `json:"branch"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Avatar = core.CleanString(up.Avatar)
	up.Year = core.CleanString(up.Year)
	up.Branch = core.CleanString(up.Branch)
	return validate.Struct(up)
}

// UpdateUser defines what information may be provided by a college admin to modify an existing User.
type UpdateUser struct {
	Name            string  `json:"name"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Role            string  `json:"role" validate:"omitempty,userrole"`
	ClubID          *string `json:"clubId"`
	IsActive        *bool   `json:"isActive"`
	Password        string  `json:"password" validate:"omitempty"`
	PasswordConfirm string  `json:"passwordConfirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc *Service) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	role := core.CleanString(uu.Role)
	if role != "" {
		uu.Role = role
	} else {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckUniqueness(uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }

type QueryFilter struct {
	Search   string   `query:"search"`
	Roles    []string `query:"role"`
	ClubID   string   `query:"clubId"`
	IsActive *bool    `query:"isActive"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.ClubID == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClubID = core.CleanString(qf.ClubID)
}

// Orderings maps the public ordering fields to their column names.
var Orderings = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
	"lastLogin": "last_login",
}
