package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core/social"
	"github.com/theadruss/Clix-App/core/user"
)

type socialApi struct {
	svc      *social.Service
	validate *validator.Validate
}

func registerSocialAPI(g *echo.Group, svc *social.Service, validate *validator.Validate) {
	api := socialApi{svc: svc, validate: validate}

	g.GET("/posts/:id", api.retrievePost)
	g.POST("/posts/:id/likes", api.toggleLike(social.KindPost))
	g.POST("/posts/:id/comments", api.comment(social.KindPost))

	mg := g.Group("/media")
	mg.GET("", api.listMedia)
	mg.POST("", api.createMedia, roleMiddleware(user.RoleClubAdmin))
	mg.GET("/:id", api.retrieveMedia)
	mg.POST("/:id/likes", api.toggleLike(social.KindMedia))
	mg.POST("/:id/comments", api.comment(social.KindMedia))
}

func (api *socialApi) retrievePost(ctx echo.Context) error {
	p, err := api.svc.GetPost(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding post")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *socialApi) listMedia(ctx echo.Context) error {
	var filter social.MediaFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []social.MediaPost{})
	}
	media, err := api.svc.ListMedia(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing media")
	}
	if media == nil {
		media = []social.MediaPost{}
	}
	return ctx.JSON(http.StatusOK, media)
}

func (api *socialApi) retrieveMedia(ctx echo.Context) error {
	m, err := api.svc.GetMedia(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding media")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *socialApi) createMedia(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data social.NewMedia
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMedia")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	m, err := api.svc.CreateMedia(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "creating media")
	}
	return ctx.JSON(http.StatusCreated, m)
}

// toggleLike returns the target's engagement after the server-side toggle.
func (api *socialApi) toggleLike(kind social.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		eng, err := api.svc.ToggleLike(ctx.Request().Context(), usr, kind, ctx.Param("id"))
		if err != nil {
			return errors.Wrapf(err, "toggling %s like", kind)
		}
		return ctx.JSON(http.StatusOK, eng)
	}
}

// comment returns the target's engagement after the comment was appended.
func (api *socialApi) comment(kind social.Kind) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := getContextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}

		var data social.NewComment
		if err = ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding to NewComment")
		}
		if err = data.Validate(api.validate); err != nil {
			return err
		}

		eng, err := api.svc.Comment(ctx.Request().Context(), usr, kind, ctx.Param("id"), data)
		if err != nil {
			return errors.Wrapf(err, "commenting %s", kind)
		}
		return ctx.JSON(http.StatusOK, eng)
	}
}
