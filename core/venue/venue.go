package venue

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/theadruss/Clix-App/core"
)

var ErrNotFound = core.NewNotFoundError("venue")

type Venue struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Capacity int      `json:"capacity"`
	Features []string `json:"features"`
}

type NewVenue struct {
	ID       string   `json:"id"`
	Name     string   `json:"name" validate:"required,notblank"`
	Capacity int      `json:"capacity" validate:"min=1"`
	Features []string `json:"features" validate:"omitempty,dive,notblank"`
}

func (nv *NewVenue) Validate(validate *validator.Validate) error {
	nv.ID = core.CleanString(nv.ID)
	nv.Name = core.CleanString(nv.Name)
	return validate.Struct(nv)
}

type Repository interface {
	CreateVenue(ctx context.Context, v Venue) (Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)
	GetVenueByID(ctx context.Context, id string) (Venue, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) List(ctx context.Context) ([]Venue, error) {
	return svc.repo.ListVenues(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Venue, error) {
	return svc.repo.GetVenueByID(ctx, id)
}

// Create adds a venue. nv.ID is kept when given so fixtures can use stable ids.
func (svc *Service) Create(ctx context.Context, nv NewVenue) (Venue, error) {
	v := Venue{ID: nv.ID, Name: nv.Name, Capacity: nv.Capacity, Features: nv.Features}
	if v.ID == "" {
		v.ID = core.NewID("v")
	}
	if v.Features == nil {
		v.Features = []string{}
	}
	return svc.repo.CreateVenue(ctx, v)
}
