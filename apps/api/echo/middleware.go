package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/theadruss/Clix-App/core"
	"github.com/theadruss/Clix-App/services/ratelimit"
)

// roleMiddleware only lets users with one of roles through.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if core.ContainsString(roles, usr.Role) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// rateLimitMiddleware limits the writes of each caller: the user when authenticated, the client IP otherwise.
// reads are not limited and limiter errors let the request through.
func rateLimitMiddleware(store ratelimit.Store, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if store == nil {
				return next(ctx)
			}
			switch ctx.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(ctx)
			}

			key := "ip:" + ctx.RealIP()
			if usr, err := getContextUser(ctx); err == nil {
				key = "user:" + usr.ID
			}

			allowed, err := store.Allow(ctx.Request().Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", errors.Wrap(err, "allowing request"))
				return next(ctx)
			}
			if !allowed {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}

// objectMiddleware loads the object referenced by the `:id` path param and stores it in the context.
func objectMiddleware(load func(ctx echo.Context, id string) (interface{}, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			obj, err := load(ctx, ctx.Param("id"))
			if err != nil {
				return err
			}
			ctx.Set(objectContextKey, obj)
			return next(ctx)
		}
	}
}
