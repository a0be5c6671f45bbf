package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/announcement"
	"github.com/theadruss/Clix-App/core/club"
	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
)

type clubApi struct {
	svc             *club.Service
	usrSvc          *user.Service
	announcementSvc *announcement.Service
	socialSvc       *social.Service
	validate        *validator.Validate
}

func registerClubAPI(
	g *echo.Group,
	svc *club.Service,
	usrSvc *user.Service,
	announcementSvc *announcement.Service,
	socialSvc *social.Service,
	validate *validator.Validate,
) {
	api := clubApi{
		svc:             svc,
		usrSvc:          usrSvc,
		announcementSvc: announcementSvc,
		socialSvc:       socialSvc,
		validate:        validate,
	}

	cg := g.Group("/clubs")
	cg.GET("", api.list)
	cg.POST("", api.create, roleMiddleware(user.RoleCollegeAdmin))

	dg := cg.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.GET("/members", api.members)
	dg.POST("/membership", api.toggleMembership)
	dg.GET("/announcements", api.listAnnouncements)
	dg.POST("/announcements", api.createAnnouncement)
	dg.GET("/posts", api.listPosts)
	dg.POST("/posts", api.createPost)
}

func (api *clubApi) list(ctx echo.Context) error {
	clubs, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing clubs")
	}
	if clubs == nil {
		clubs = []club.Club{}
	}
	return ctx.JSON(http.StatusOK, clubs)
}

func (api *clubApi) create(ctx echo.Context) error {
	var data club.NewClub
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClub")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	if data.NewAdmin != nil {
		if err := data.NewAdmin.Validate(api.validate, api.usrSvc); err != nil {
			return err
		}
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating club")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *clubApi) retrieve(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *clubApi) update(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !(usr.IsCollegeAdmin() || usr.ManagesClub(c.ID)) {
		return errHttpForbidden
	}

	var data club.UpdateClub
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClub")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	// only college admins hand a club over
	if !usr.IsCollegeAdmin() && data.AdminID != "" && data.AdminID != c.AdminID {
		return errHttpForbidden
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating club")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *clubApi) members(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	users, err := api.svc.Members(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "listing members")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *clubApi) toggleMembership(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	m, err := api.svc.ToggleMembership(ctx.Request().Context(), c.ID, usr.ID)
	if err != nil {
		return errors.Wrap(err, "toggling membership")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *clubApi) listAnnouncements(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	anns, err := api.announcementSvc.ListByClub(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "listing announcements")
	}
	if anns == nil {
		anns = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *clubApi) createAnnouncement(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data announcement.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	a, err := api.announcementSvc.Create(ctx.Request().Context(), usr, c.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating announcement")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *clubApi) listPosts(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	posts, err := api.socialSvc.ListPosts(ctx.Request().Context(), c.ID)
	if err != nil {
		return errors.Wrap(err, "listing posts")
	}
	if posts == nil {
		posts = []social.Post{}
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *clubApi) createPost(ctx echo.Context) error {
	c, err := getObject[club.Club](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data social.NewPost
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.socialSvc.CreatePost(ctx.Request().Context(), usr, c.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, p)
}
