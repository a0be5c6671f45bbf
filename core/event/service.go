package event

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("event")
	ErrFull              = core.NewConflictError("this event is full")
	ErrFeedbackExists    = core.NewConflictError("feedback already submitted")
	ErrNotOpen           = core.NewValidationError(errors.New("registrations are only open for approved events"))
	ErrNotRegistered     = core.NewValidationError(errors.New("only registered users can give feedback"))
	ErrInvalidTransition = core.NewValidationError(nil, core.FieldError{Field: "status", Error: "invalid status transition"})
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, e Event) (Event, error)
		GetEventByID(ctx context.Context, id string) (Event, error)
		FilterEvents(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Event, error)
		// UpdateEvent saves the proposal fields, the status and the rejection reason.
		UpdateEvent(ctx context.Context, e Event) (Event, error)
		SetStatus(ctx context.Context, id, status, reason string) (Event, error)
		// Register inserts the registration and increments RegisteredCount atomically.
		// an existing registration is left untouched and reported with created=false.
		// ErrFull is returned when the capacity is reached.
		Register(ctx context.Context, eventID, userID string) (e Event, created bool, err error)
		ListRegistrations(ctx context.Context, eventID string) ([]Registration, error)
		ListUserRegistrations(ctx context.Context, userID string) ([]string, error)
		// AppendFeedback appends fb under the event's row lock. ErrFeedbackExists if fb.UserID already gave feedback.
		AppendFeedback(ctx context.Context, eventID string, fb Feedback) (Event, error)
		SetCertificatesIssued(ctx context.Context, id string) (Event, error)
		SetWinners(ctx context.Context, id string, winners []Winner) (Event, error)
	}

	Service struct {
		repo      Repository
		clubRepo  club.Repository
		venueRepo venue.Repository
		usrSvc    *user.Service
		assistant core.Assistant
		mailSvc   core.EmailService
	}
)

func NewService(
	repo Repository,
	clubRepo club.Repository,
	venueRepo venue.Repository,
	usrSvc *user.Service,
	assistant core.Assistant,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		repo:      repo,
		clubRepo:  clubRepo,
		venueRepo: venueRepo,
		usrSvc:    usrSvc,
		assistant: assistant,
		mailSvc:   mailSvc,
	}
}

// CanManage reports whether actor administers the club organizing e.
func CanManage(actor user.User, e Event) bool {
	return actor.ManagesClub(e.ClubID)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	return svc.repo.FilterEvents(ctx, filter, core.FilterOrderings(ordering, Orderings)...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEventByID(ctx, id)
}

func (svc *Service) checkVenue(ctx context.Context, venueID string) error {
	if _, err := svc.venueRepo.GetVenueByID(ctx, venueID); err != nil {
		if errors.Cause(err) == venue.ErrNotFound {
			return core.NewValidationError(nil, core.FieldError{Field: "venueId", Error: "venue not found"})
		}
		return errors.Wrap(err, "finding venue")
	}
	return nil
}

// Propose submits a new event for the actor's club. It waits for a college admin's approval.
func (svc *Service) Propose(ctx context.Context, actor user.User, p Proposal) (Event, error) {
	if !actor.IsClubAdmin() || actor.ClubID == "" {
		return Event{}, core.ErrPermissionDenied
	}
	c, err := svc.clubRepo.GetClubByID(ctx, actor.ClubID)
	if err != nil {
		return Event{}, errors.Wrap(err, "finding club")
	}
	if err = svc.checkVenue(ctx, p.VenueID); err != nil {
		return Event{}, err
	}

	e := Event{
		ID:        core.NewID("e"),
		Organizer: c.Name,
		ClubID:    c.ID,
		Status:    StatusPending,
		Feedback:  []Feedback{},
		Winners:   []Winner{},
		CreatedAt: time.Now().UTC(),
	}
	applyProposal(&e, p)
	return svc.repo.CreateEvent(ctx, e)
}

// Resubmit edits an event and sends it back for approval, clearing any rejection reason.
func (svc *Service) Resubmit(ctx context.Context, actor user.User, e Event, p Proposal) (Event, error) {
	if !CanManage(actor, e) {
		return Event{}, core.ErrPermissionDenied
	}
	if e.Status == StatusCompleted {
		return Event{}, core.NewValidationError(errors.New("completed events cannot be edited"))
	}
	if err := svc.checkVenue(ctx, p.VenueID); err != nil {
		return Event{}, err
	}
	applyProposal(&e, p)
	e.Status = StatusPending
	e.RejectionReason = ""
	return svc.repo.UpdateEvent(ctx, e)
}

func applyProposal(e *Event, p Proposal) {
	e.Title = p.Title
	e.Description = p.Description
	e.Date = p.Date
	e.Time = p.Time
	e.VenueID = p.VenueID
	e.Capacity = p.Capacity
	e.Price = p.Price
	e.Image = p.Image
	e.Tags = p.Tags
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.VolunteersNeeded = p.VolunteersNeeded
}

// SetStatus approves, rejects or completes an event.
func (svc *Service) SetStatus(ctx context.Context, e Event, su StatusUpdate) (Event, error) {
	if !CanTransition(e.Status, su.Status) {
		return Event{}, ErrInvalidTransition
	}
	reason := ""
	if su.Status == StatusRejected {
		reason = su.Reason
	}
	return svc.repo.SetStatus(ctx, e.ID, su.Status, reason)
}

// Register registers actor for the event. Registering twice is a no-op.
func (svc *Service) Register(ctx context.Context, actor user.User, eventID string) (RegistrationResult, error) {
	e, err := svc.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return RegistrationResult{}, err
	}
	if e.Status != StatusApproved {
		return RegistrationResult{}, ErrNotOpen
	}

	e, created, err := svc.repo.Register(ctx, eventID, actor.ID)
	if err != nil {
		return RegistrationResult{}, errors.Wrap(err, "registering")
	}
	ids, err := svc.repo.ListUserRegistrations(ctx, actor.ID)
	if err != nil {
		return RegistrationResult{}, errors.Wrap(err, "listing registrations")
	}

	if created {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: actor.Name, Address: actor.Email}},
			Subject:      "Registration confirmed: " + e.Title,
			TemplateName: "registration_confirmation",
			TemplateData: e,
		})
	}
	return RegistrationResult{Event: e, RegisteredEventIDs: ids, Created: created}, nil
}

func (svc *Service) UserRegistrations(ctx context.Context, userID string) ([]string, error) {
	return svc.repo.ListUserRegistrations(ctx, userID)
}

func (svc *Service) RegisteredUsers(ctx context.Context, eventID string) ([]user.User, error) {
	regs, err := svc.repo.ListRegistrations(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.UserID)
	}
	return svc.usrSvc.GetByIDs(ctx, ids...)
}

// AddFeedback appends actor's feedback. Only registered users may give feedback, once.
func (svc *Service) AddFeedback(ctx context.Context, actor user.User, eventID string, nf NewFeedback) (Event, error) {
	ids, err := svc.repo.ListUserRegistrations(ctx, actor.ID)
	if err != nil {
		return Event{}, errors.Wrap(err, "listing registrations")
	}
	if !core.ContainsString(ids, eventID) {
		if _, err := svc.repo.GetEventByID(ctx, eventID); err != nil {
			return Event{}, err
		}
		return Event{}, ErrNotRegistered
	}
	return svc.repo.AppendFeedback(ctx, eventID, Feedback{UserID: actor.ID, Rating: nf.Rating, Comment: nf.Comment})
}

func (svc *Service) IssueCertificates(ctx context.Context, actor user.User, e Event) (Event, error) {
	if !CanManage(actor, e) {
		return Event{}, core.ErrPermissionDenied
	}
	return svc.repo.SetCertificatesIssued(ctx, e.ID)
}

func (svc *Service) SaveWinners(ctx context.Context, actor user.User, e Event, sw SaveWinners) (Event, error) {
	if !CanManage(actor, e) {
		return Event{}, core.ErrPermissionDenied
	}
	return svc.repo.SetWinners(ctx, e.ID, sw.Winners)
}

// Report generates a post-event report from the event's statistics and feedback.
func (svc *Service) Report(ctx context.Context, actor user.User, e Event) (string, error) {
	if !(CanManage(actor, e) || actor.IsCollegeAdmin()) {
		return "", core.ErrPermissionDenied
	}
	feedback := make([]string, 0, len(e.Feedback))
	for _, fb := range e.Feedback {
		if fb.Comment != "" {
			feedback = append(feedback, fb.Comment)
		}
	}
	return svc.assistant.GenerateReport(ctx, core.ReportInput{
		Title:      e.Title,
		Registered: e.RegisteredCount,
		Capacity:   e.Capacity,
		Revenue:    float64(e.RegisteredCount) * e.Price,
		Feedback:   feedback,
	})
}
