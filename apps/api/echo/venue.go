package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/venue"
)

type venueApi struct {
	svc      *venue.Service
	validate *validator.Validate
}

func registerVenueAPI(g *echo.Group, svc *venue.Service, validate *validator.Validate) {
	api := venueApi{svc: svc, validate: validate}
	g.GET("/venues", api.list)
	g.POST("/venues", api.create, roleMiddleware(user.RoleCollegeAdmin))
}

func (api *venueApi) list(ctx echo.Context) error {
	venues, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing venues")
	}
	if venues == nil {
		venues = []venue.Venue{}
	}
	return ctx.JSON(http.StatusOK, venues)
}

func (api *venueApi) create(ctx echo.Context) error {
	var data venue.NewVenue
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVenue")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	v, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating venue")
	}
	return ctx.JSON(http.StatusCreated, v)
}
