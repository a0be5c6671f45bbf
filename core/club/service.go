package club

import (
	"context"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/user"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("club")
	ErrNameExists = core.NewConflictError("a club with this name already exists")
)

type (
	Repository interface {
		CreateClub(ctx context.Context, c Club) (Club, error)
		ListClubs(ctx context.Context) ([]Club, error)
		GetClubByID(ctx context.Context, id string) (Club, error)
		UpdateClub(ctx context.Context, c Club) (Club, error)
		// AddToMemberCount adds delta to the stored counter, never going below 0.
		AddToMemberCount(ctx context.Context, id string, delta int) (Club, error)
	}

	Service struct {
		repo   Repository
		usrSvc *user.Service
		mode   string
	}
)

// NewService returns the clubs service. mode is one of core.MemberCountDerived or core.MemberCountDenormalized.
func NewService(repo Repository, usrSvc *user.Service, mode string) *Service {
	if mode != core.MemberCountDenormalized {
		mode = core.MemberCountDerived
	}
	return &Service{repo: repo, usrSvc: usrSvc, mode: mode}
}

func (svc *Service) derived() bool {
	return svc.mode == core.MemberCountDerived
}

func (svc *Service) withCounts(ctx context.Context, clubs ...Club) ([]Club, error) {
	if !svc.derived() || len(clubs) == 0 {
		return clubs, nil
	}
	ids := make([]string, 0, len(clubs))
	for _, c := range clubs {
		ids = append(ids, c.ID)
	}
	counts, err := svc.usrSvc.Repository().CountClubMembers(ctx, ids...)
	if err != nil {
		return nil, errors.Wrap(err, "counting club members")
	}
	for i := range clubs {
		clubs[i].MemberCount = counts[clubs[i].ID]
	}
	return clubs, nil
}

func (svc *Service) List(ctx context.Context) ([]Club, error) {
	clubs, err := svc.repo.ListClubs(ctx)
	if err != nil {
		return nil, err
	}
	return svc.withCounts(ctx, clubs...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Club, error) {
	c, err := svc.repo.GetClubByID(ctx, id)
	if err != nil {
		return Club{}, err
	}
	clubs, err := svc.withCounts(ctx, c)
	if err != nil {
		return Club{}, err
	}
	return clubs[0], nil
}

// Create creates a club. The club admin, existing or new, gets the CLUB_ADMIN role and manages the club.
func (svc *Service) Create(ctx context.Context, nc NewClub) (Club, error) {
	c := Club{
		ID:          core.NewID("c"),
		Name:        nc.Name,
		Description: nc.Description,
		Logo:        nc.Logo,
		Banner:      nc.Banner,
	}

	var admin *user.User
	switch {
	case nc.NewAdmin != nil:
		na := *nc.NewAdmin
		na.Role = user.RoleClubAdmin
		na.ClubID = c.ID
		usr, err := svc.usrSvc.Create(ctx, na)
		if err != nil {
			return Club{}, errors.Wrap(err, "creating club admin")
		}
		admin = &usr
	case nc.AdminID != "":
		usr, err := svc.usrSvc.GetByID(ctx, nc.AdminID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return Club{}, core.NewValidationError(nil, core.FieldError{Field: "adminId", Error: "user not found"})
			}
			return Club{}, errors.Wrap(err, "finding club admin")
		}
		admin = &usr
	}
	if admin != nil {
		c.AdminID = admin.ID
	}

	c, err := svc.repo.CreateClub(ctx, c)
	if err != nil {
		return Club{}, errors.Wrap(err, "creating club")
	}

	if admin != nil && !admin.ManagesClub(c.ID) {
		if err := svc.assignAdmin(ctx, *admin, c.ID); err != nil {
			return Club{}, err
		}
	}
	return c, nil
}

// Update updates a club. Changing the admin unlinks the previous admin from the club.
func (svc *Service) Update(ctx context.Context, c Club, uc UpdateClub) (Club, error) {
	prevAdminID := c.AdminID
	if uc.Name != "" {
		c.Name = uc.Name
	}
	if uc.Description != "" {
		c.Description = uc.Description
	}
	if uc.Logo != "" {
		c.Logo = uc.Logo
	}
	if uc.Banner != "" {
		c.Banner = uc.Banner
	}

	var newAdmin *user.User
	if uc.AdminID != "" && uc.AdminID != prevAdminID {
		usr, err := svc.usrSvc.GetByID(ctx, uc.AdminID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return Club{}, core.NewValidationError(nil, core.FieldError{Field: "adminId", Error: "user not found"})
			}
			return Club{}, errors.Wrap(err, "finding club admin")
		}
		newAdmin = &usr
		c.AdminID = usr.ID
	}

	c, err := svc.repo.UpdateClub(ctx, c)
	if err != nil {
		return Club{}, errors.Wrap(err, "updating club")
	}

	if newAdmin != nil {
		if prevAdminID != "" {
			prev, err := svc.usrSvc.GetByID(ctx, prevAdminID)
			if err == nil && prev.ClubID == c.ID {
				prev.ClubID = ""
				if _, err = svc.usrSvc.Repository().UpdateUser(ctx, prev); err != nil {
					return Club{}, errors.Wrap(err, "unlinking previous club admin")
				}
			} else if err != nil && errors.Cause(err) != user.ErrNotFound {
				return Club{}, errors.Wrap(err, "finding previous club admin")
			}
		}
		if err := svc.assignAdmin(ctx, *newAdmin, c.ID); err != nil {
			return Club{}, err
		}
	}

	clubs, err := svc.withCounts(ctx, c)
	if err != nil {
		return Club{}, err
	}
	return clubs[0], nil
}

func (svc *Service) assignAdmin(ctx context.Context, usr user.User, clubID string) error {
	usr.Role = user.RoleClubAdmin
	usr.ClubID = clubID
	if _, err := svc.usrSvc.Repository().UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "assigning club admin")
	}
	return nil
}

func (svc *Service) Members(ctx context.Context, clubID string) ([]user.User, error) {
	if _, err := svc.repo.GetClubByID(ctx, clubID); err != nil {
		return nil, err
	}
	return svc.usrSvc.Repository().ListClubMembers(ctx, clubID)
}

// ToggleMembership joins the club when userID is not a member and leaves it otherwise.
//
// In derived mode the member count is computed from the roster, so the result is always consistent.
// In denormalized mode the roster and the stored counter are two separate writes: when the counter
// write fails the membership change stays persisted and the error is returned.
func (svc *Service) ToggleMembership(ctx context.Context, clubID, userID string) (Membership, error) {
	c, err := svc.repo.GetClubByID(ctx, clubID)
	if err != nil {
		return Membership{}, err
	}

	usr, joined, err := svc.usrSvc.Repository().ToggleJoinedClub(ctx, userID, clubID)
	if err != nil {
		return Membership{}, errors.Wrap(err, "toggling joined club")
	}

	if svc.derived() {
		clubs, err := svc.withCounts(ctx, c)
		if err != nil {
			return Membership{}, err
		}
		return Membership{User: usr, Club: clubs[0], Joined: joined}, nil
	}

	delta := -1
	if joined {
		delta = 1
	}
	c, err = svc.repo.AddToMemberCount(ctx, clubID, delta)
	if err != nil {
		return Membership{}, errors.Wrap(err, "updating member count")
	}
	return Membership{User: usr, Club: c, Joined: joined}, nil
}
