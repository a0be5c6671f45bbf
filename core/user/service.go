package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("user")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUsersByIDs(ctx context.Context, ids ...string) ([]User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		FilterUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		// UpdateUser saves every field of usr except JoinedClubIDs and LastLogin.
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetLastLogin(ctx context.Context, id string, t time.Time) (User, error)
		// ToggleJoinedClub adds clubID to the user's joined clubs if absent, removes it otherwise.
		// the read-modify-write happens under the user's row lock.
		ToggleJoinedClub(ctx context.Context, userID, clubID string) (usr User, joined bool, err error)
		ListClubMembers(ctx context.Context, clubID string) ([]User, error)
		// CountClubMembers returns the number of members per club id, for all clubs when no id is given.
		CountClubMembers(ctx context.Context, clubIDs ...string) (map[string]int, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		tokens  tokenGenerator
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
		tokens: tokenGenerator{
			secretKey: []byte(conf.SecretKey),
			timeout:   conf.PasswordResetTimeoutDelta,
		},
	}
}

// Repository exposes the repository to the services that share the users table (clubs membership).
func (svc *Service) Repository() Repository {
	return svc.repo
}

func (svc *Service) CheckUniqueness(email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		ID:            core.NewID("u"),
		Name:          nu.Name,
		Email:         nu.Email,
		Role:          nu.Role,
		Avatar:        nu.Avatar,
		ClubID:        nu.ClubID,
		Bio:           nu.Bio,
		JoinDate:      now.Format("2006-01-02"),
		JoinedClubIDs: []string{},
		Year:          nu.Year,
		Branch:        nu.Branch,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if usr.Role == "" {
		usr.Role = RoleStudent
	}
	if usr.Role != RoleClubAdmin {
		usr.ClubID = ""
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) Signup(ctx context.Context, s Signup) (User, error) {
	return svc.Create(ctx, s.NewUser())
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByIDs(ctx context.Context, ids ...string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	return svc.repo.GetUsersByIDs(ctx, ids...)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter, core.FilterOrderings(ordering, Orderings)...)
}

// Update applies a college admin's changes to usr.
func (svc *Service) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	usr.Name = uu.Name
	usr.Email = uu.Email
	usr.Role = uu.Role
	if uu.ClubID != nil {
		usr.ClubID = core.CleanString(*uu.ClubID)
	}
	if usr.Role != RoleClubAdmin {
		usr.ClubID = ""
	}
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) UpdateProfile(ctx context.Context, usr User, up UpdateProfile) (User, error) {
	if up.Name != "" {
		usr.Name = up.Name
	}
	if up.Avatar != "" {
		usr.Avatar = up.Avatar
	}
	if up.Bio != nil {
		usr.Bio = core.CleanString(*up.Bio)
	}
	if up.Year != "" {
		usr.Year = up.Year
	}
	if up.Branch != "" {
		usr.Branch = up.Branch
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr.ID, time.Now().UTC())
}

func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrNotFound
	}
	token, err := svc.tokens.makeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{"UID": EncodeUID(usr), "Token": token},
	})
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	invalid := func() error {
		return core.NewValidationError(errors.New("invalid token"))
	}
	id, err := decodeUID(data.UID)
	if err != nil {
		return invalid()
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalid()
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if err = svc.tokens.verifyToken(usr, data.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
