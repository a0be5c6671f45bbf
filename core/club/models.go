package club

import (
	"github.com/go-playground/validator/v10"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

type Club struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Banner      string `json:"banner"`
	AdminID     string `json:"adminId"`
	MemberCount int    `json:"memberCount"`
}

// Membership is the result of a join/leave toggle: both sides of the edge after the write.
type Membership struct {
	User   user.User `json:"user"`
	Club   Club      `json:"club"`
	Joined bool      `json:"joined"`
}

// NewClub contains information needed to create a new Club.
// Either AdminID references an existing user or NewAdmin describes a club admin account to create.
type NewClub struct {
	Name        string        `json:"name" validate:"required,notblank"`
	Description string        `json:"description"`
	Logo        string        `json:"logo" validate:"omitempty,url"`
	Banner      string        `json:"banner" validate:"omitempty,url"`
	AdminID     string        `json:"adminId"`
	NewAdmin    *user.NewUser `json:"newAdmin"`
}

func (nc *NewClub) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.Logo = core.CleanString(nc.Logo)
	nc.Banner = core.CleanString(nc.Banner)
	nc.AdminID = core.CleanString(nc.AdminID)

	if err := validate.Struct(nc); err != nil {
		return err
	}
	if nc.AdminID != "" && nc.NewAdmin != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "adminId", Error: "provide one of adminId or newAdmin"})
	}
	return nil
}

// UpdateClub defines what may be changed on a Club. Empty fields are left unchanged.
type UpdateClub struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Logo        string `json:"logo" validate:"omitempty,url"`
	Banner      string `json:"banner" validate:"omitempty,url"`
	AdminID     string `json:"adminId"`
}

func (uc *UpdateClub) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	uc.Logo = core.CleanString(uc.Logo)
	uc.Banner = core.CleanString(uc.Banner)
	uc.AdminID = core.CleanString(uc.AdminID)
	return validate.Struct(uc)
}
