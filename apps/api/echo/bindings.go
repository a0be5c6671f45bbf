package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/theadruss/Clix-App/core"
)

var orderingParam = "ordering"

// Ordering binds the `ordering` query param, e.g. `?ordering=-date,title`.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// getObject returns the object loaded by objectMiddleware.
func getObject[T any](ctx echo.Context) (T, error) {
	obj, ok := ctx.Get(objectContextKey).(T)
	if !ok {
		var zero T
		return zero, errObjNotFoundInCtx
	}
	return obj, nil
}

type SuccessResponse struct {
	Success string `json:"success"`
}
