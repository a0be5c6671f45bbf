package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/volunteer"
)

type volunteerApi struct {
	svc      *volunteer.Service
	validate *validator.Validate
}

func registerVolunteerAPI(g *echo.Group, svc *volunteer.Service, validate *validator.Validate) {
	api := volunteerApi{svc: svc, validate: validate}
	g.PUT("/volunteers/:id", api.decide, roleMiddleware(user.RoleClubAdmin))
}

func (api *volunteerApi) decide(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data volunteer.Decision
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Decision")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.Decide(ctx.Request().Context(), usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "deciding volunteer application")
	}
	return ctx.JSON(http.StatusOK, app)
}
