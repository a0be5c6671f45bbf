package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/event"
	"github.com/theadruss/Clix-App/core/user"
	"github.com/theadruss/Clix-App/core/volunteer"
)

type eventApi struct {
	svc          *event.Service
	volunteerSvc *volunteer.Service
	validate     *validator.Validate
}

func registerEventAPI(g *echo.Group, svc *event.Service, volunteerSvc *volunteer.Service, validate *validator.Validate) {
	api := eventApi{svc: svc, volunteerSvc: volunteerSvc, validate: validate}

	eg := g.Group("/events")
	eg.GET("", api.query)
	eg.POST("", api.propose, roleMiddleware(user.RoleClubAdmin))

	dg := eg.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.resubmit, roleMiddleware(user.RoleClubAdmin))
	dg.PUT("/status", api.setStatus, roleMiddleware(user.RoleCollegeAdmin))
	dg.POST("/registrations", api.register)
	dg.GET("/registrations", api.registrations, roleMiddleware(user.RoleClubAdmin, user.RoleCollegeAdmin))
	dg.POST("/feedback", api.addFeedback)
	dg.POST("/certificates", api.issueCertificates, roleMiddleware(user.RoleClubAdmin))
	dg.PUT("/winners", api.saveWinners, roleMiddleware(user.RoleClubAdmin))
	dg.GET("/report", api.report, roleMiddleware(user.RoleClubAdmin, user.RoleCollegeAdmin))
	dg.POST("/volunteers", api.applyToVolunteer)
	dg.GET("/volunteers", api.volunteers, roleMiddleware(user.RoleClubAdmin, user.RoleCollegeAdmin))
}

// contextEvent returns the event loaded from the path and the authenticated user.
func contextEvent(ctx echo.Context) (event.Event, user.User, error) {
	e, err := getObject[event.Event](ctx)
	if err != nil {
		return event.Event{}, user.User{}, errors.Wrap(err, "retrieving object from context")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return event.Event{}, user.User{}, errors.Wrap(err, "getting context user")
	}
	return e, usr, nil
}

func (api *eventApi) query(ctx echo.Context) error {
	var filter event.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []event.Event{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	events, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	e, err := getObject[event.Event](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) propose(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data event.Proposal
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Proposal")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	e, err := api.svc.Propose(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "proposing event")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *eventApi) resubmit(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}

	var data event.Proposal
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Proposal")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	e, err = api.svc.Resubmit(ctx.Request().Context(), usr, e, data)
	if err != nil {
		return errors.Wrap(err, "resubmitting event")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) setStatus(ctx echo.Context) error {
	e, err := getObject[event.Event](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}

	var data event.StatusUpdate
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	e, err = api.svc.SetStatus(ctx.Request().Context(), e, data)
	if err != nil {
		return errors.Wrap(err, "setting event status")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) register(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.Register(ctx.Request().Context(), usr, e.ID)
	if err != nil {
		return errors.Wrap(err, "registering")
	}
	code := http.StatusOK
	if res.Created {
		code = http.StatusCreated
	}
	return ctx.JSON(code, res)
}

func (api *eventApi) registrations(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}
	if !(usr.IsCollegeAdmin() || event.CanManage(usr, e)) {
		return errHttpForbidden
	}

	users, err := api.svc.RegisteredUsers(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "listing registered users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *eventApi) addFeedback(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}

	var data event.NewFeedback
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	e, err = api.svc.AddFeedback(ctx.Request().Context(), usr, e.ID, data)
	if err != nil {
		return errors.Wrap(err, "adding feedback")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *eventApi) issueCertificates(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}
	e, err = api.svc.IssueCertificates(ctx.Request().Context(), usr, e)
	if err != nil {
		return errors.Wrap(err, "issuing certificates")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) saveWinners(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}

	var data event.SaveWinners
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveWinners")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	e, err = api.svc.SaveWinners(ctx.Request().Context(), usr, e, data)
	if err != nil {
		return errors.Wrap(err, "saving winners")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *eventApi) report(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}
	report, err := api.svc.Report(ctx.Request().Context(), usr, e)
	if err != nil {
		return errors.Wrap(err, "generating report")
	}
	return ctx.JSON(http.StatusOK, ReportResponse{Report: report})
}

func (api *eventApi) applyToVolunteer(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}
	app, err := api.volunteerSvc.Apply(ctx.Request().Context(), usr, e.ID)
	if err != nil {
		return errors.Wrap(err, "applying to volunteer")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *eventApi) volunteers(ctx echo.Context) error {
	e, usr, err := contextEvent(ctx)
	if err != nil {
		return err
	}
	apps, err := api.volunteerSvc.ListByEvent(ctx.Request().Context(), usr, e.ID)
	if err != nil {
		return errors.Wrap(err, "listing volunteer applications")
	}
	if apps == nil {
		apps = []volunteer.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

type ReportResponse struct {
	Report string `json:"report"`
}
