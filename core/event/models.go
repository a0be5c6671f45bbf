package event

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/theadruss/Clix-App/core"
)

// Statuses
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCompleted = "COMPLETED"
)

var AllStatuses = []string{StatusPending, StatusApproved, StatusRejected, StatusCompleted}

// transitions allowed through SetStatus. REJECTED goes back to PENDING only through a resubmission.
var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

func CanTransition(from, to string) bool {
	return core.ContainsString(transitions[from], to)
}

type Event struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Organizer          string     `json:"organizer"`
	ClubID             string     `json:"clubId"`
	Date               string     `json:"date"` // YYYY-MM-DD
	Time               string     `json:"time"` // HH:MM
	VenueID            string     `json:"venueId"`
	Status             string     `json:"status"`
	Capacity           int        `json:"capacity"`
	RegisteredCount    int        `json:"registeredCount"`
	Image              string     `json:"image,omitempty"`
	Tags               []string   `json:"tags"`
	Price              float64    `json:"price"` // 0 for free
	Feedback           []Feedback `json:"feedback"`
	VolunteersNeeded   bool       `json:"volunteersNeeded"`
	CertificatesIssued bool       `json:"certificatesIssued"`
	Winners            []Winner   `json:"winners"`
	RejectionReason    string     `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func (e *Event) IsFull() bool {
	return e.Capacity > 0 && e.RegisteredCount >= e.Capacity
}

type Feedback struct {
	UserID  string `json:"userId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type Winner struct {
	Rank  int    `json:"rank" validate:"min=1"`
	Name  string `json:"name" validate:"required,notblank"`
	Photo string `json:"photo"` // URL or data URL
}

type Registration struct {
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegistrationResult is the event after a registration and the caller's registered event ids.
type RegistrationResult struct {
	Event              Event    `json:"event"`
	RegisteredEventIDs []string `json:"registeredEventIds"`
	Created            bool     `json:"created"`
}

// Proposal contains information needed to propose (or resubmit) an event.
type Proposal struct {
	Title            string   `json:"title" validate:"required,notblank"`
	Description      string   `json:"description" validate:"required,notblank"`
	Date             string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time             string   `json:"time" validate:"required,datetime=15:04"`
	VenueID          string   `json:"venueId" validate:"required"`
	Capacity         int      `json:"capacity" validate:"min=1"`
	Price            float64  `json:"price" validate:"min=0"`
	Image            string   `json:"image"`
	Tags             []string `json:"tags" validate:"omitempty,dive,notblank"`
	VolunteersNeeded bool     `json:"volunteersNeeded"`
}

func (p *Proposal) Validate(validate *validator.Validate) error {
	p.Title = core.CleanString(p.Title)
	p.Description = core.CleanString(p.Description)
	p.Date = core.CleanString(p.Date)
	p.Time = core.CleanString(p.Time)
	p.VenueID = core.CleanString(p.VenueID)
	p.Image = core.CleanString(p.Image)
	for i, tag := range p.Tags {
		p.Tags[i] = core.CleanString(tag)
	}
	return validate.Struct(p)
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,eventstatus"`
	Reason string `json:"reason"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.Status = core.CleanString(su.Status)
	su.Reason = core.CleanString(su.Reason)
	if err := validate.Struct(su); err != nil {
		return err
	}
	if su.Status == StatusRejected && su.Reason == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "reason", Error: "a reason is required to reject an event"})
	}
	return nil
}

type NewFeedback struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment"`
}

func (nf *NewFeedback) Validate(validate *validator.Validate) error {
	nf.Comment = core.CleanString(nf.Comment)
	return validate.Struct(nf)
}

type SaveWinners struct {
	Winners []Winner `json:"winners" validate:"required,dive"`
}

func (sw *SaveWinners) Validate(validate *validator.Validate) error {
	for i := range sw.Winners {
		sw.Winners[i].Name = core.CleanString(sw.Winners[i].Name)
	}
	return validate.Struct(sw)
}

type QueryFilter struct {
	ClubID string `query:"clubId"`
	Status string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.ClubID = core.CleanString(qf.ClubID)
	qf.Status = core.CleanString(qf.Status)
}

// Orderings maps the public ordering fields to their column names.
var Orderings = map[string]string{
	"date":            "date",
	"title":           "title",
	"createdAt":       "created_at",
	"registeredCount": "registered_count",
}
