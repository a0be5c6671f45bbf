package volunteer

import (
	"context"
	"net/mail"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/user"
)

// Statuses
const (
	StatusPending  = "PENDING"
	StatusAccepted = "ACCEPTED"
	StatusRejected = "REJECTED"
)

var AllStatuses = []string{StatusPending, StatusAccepted, StatusRejected}

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("volunteer application")
	ErrAlreadyApplied    = core.NewConflictError("Already applied")
	ErrNoVolunteers      = core.NewValidationError(errors.New("this event is not looking for volunteers"))
	ErrAlreadyDecided    = core.NewValidationError(errors.New("this application was already decided"))
	volunteerStatusTag   = "volunteerstatus"
	volunteerStatusText  = "invalid status"
	decisionStatusValues = []string{StatusAccepted, StatusRejected}
)

type Application struct {
	ID         string    `json:"id"`
	EventID    string    `json:"eventId"`
	UserID     string    `json:"userId"`
	UserName   string    `json:"userName"`
	UserAvatar string    `json:"userAvatar"`
	Status     string    `json:"status"`
	AppliedAt  time.Time `json:"appliedAt"`
}

type Decision struct {
	Status string `json:"status" validate:"required,volunteerstatus"`
}

func (d *Decision) Validate(validate *validator.Validate) error {
	d.Status = core.CleanString(d.Status)
	return validate.Struct(d)
}

// InitValidators registers the volunteer validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(volunteerStatusTag, core.OneOfValidation(decisionStatusValues...))
	core.RegisterCustomTranslation(validate, translator, volunteerStatusTag, volunteerStatusText)
}

type Repository interface {
	// CreateApplication returns ErrAlreadyApplied when the user already applied to the event.
	CreateApplication(ctx context.Context, a Application) (Application, error)
	GetApplicationByID(ctx context.Context, id string) (Application, error)
	ListByEvent(ctx context.Context, eventID string) ([]Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	SetStatus(ctx context.Context, id, status string) (Application, error)
}

type Service struct {
	repo      Repository
	eventRepo event.Repository
	usrRepo   user.Repository
	mailSvc   core.EmailService
}

func NewService(repo Repository, eventRepo event.Repository, usrRepo user.Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, eventRepo: eventRepo, usrRepo: usrRepo, mailSvc: mailSvc}
}

func (svc *Service) Apply(ctx context.Context, actor user.User, eventID string) (Application, error) {
	e, err := svc.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return Application{}, err
	}
	if !e.VolunteersNeeded {
		return Application{}, ErrNoVolunteers
	}
	return svc.repo.CreateApplication(ctx, Application{
		ID:         core.NewID("vol"),
		EventID:    e.ID,
		UserID:     actor.ID,
		UserName:   actor.Name,
		UserAvatar: actor.Avatar,
		Status:     StatusPending,
		AppliedAt:  time.Now().UTC(),
	})
}

// ListByEvent lists the applications to an event. Only the organizing club's admin and college admins may see them.
func (svc *Service) ListByEvent(ctx context.Context, actor user.User, eventID string) ([]Application, error) {
	e, err := svc.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !(event.CanManage(actor, e) || actor.IsCollegeAdmin()) {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.ListByEvent(ctx, eventID)
}

func (svc *Service) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	return svc.repo.ListByUser(ctx, userID)
}

// Decide accepts or rejects an application and notifies the applicant.
func (svc *Service) Decide(ctx context.Context, actor user.User, id string, d Decision) (Application, error) {
	a, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	e, err := svc.eventRepo.GetEventByID(ctx, a.EventID)
	if err != nil {
		return Application{}, errors.Wrap(err, "finding event")
	}
	if !event.CanManage(actor, e) {
		return Application{}, core.ErrPermissionDenied
	}
	if a.Status != StatusPending {
		return Application{}, ErrAlreadyDecided
	}

	a, err = svc.repo.SetStatus(ctx, id, d.Status)
	if err != nil {
		return Application{}, errors.Wrap(err, "setting status")
	}

	applicant, err := svc.usrRepo.GetUserByID(ctx, a.UserID)
	if err != nil {
		return Application{}, errors.Wrap(err, "finding applicant")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: applicant.Name, Address: applicant.Email}},
		Subject:      "Volunteer application update: " + e.Title,
		TemplateName: "volunteer_decision",
		TemplateData: map[string]string{"EventTitle": e.Title, "Status": a.Status},
	})
	return a, nil
}
